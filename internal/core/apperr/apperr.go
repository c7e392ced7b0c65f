// Package apperr holds the error taxonomy shared by the service layers and its
// mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"os"
)

var (
	// ErrInvalidArgument marks malformed client input. Always rejected before any upstream call.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrAOIMissing marks an unreadable AOI source.
	ErrAOIMissing = errors.New("AOI file missing")
	// ErrAOIInvalid marks an AOI source that is readable but not JSON.
	ErrAOIInvalid = errors.New("AOI file invalid")
)

// UpstreamError is a failed call to the STAC catalog. Status is 0 for transport failures.
type UpstreamError struct {
	Status  int
	Body    string
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus maps err to the status the HTTP layer responds with.
func HTTPStatus(err error) int {
	var ue *UpstreamError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ErrAOIMissing), errors.Is(err, ErrAOIInvalid):
		return http.StatusInternalServerError
	case errors.As(err, &ue):
		switch {
		case ue.Status >= 400 && ue.Status < 500:
			return ue.Status
		case ue.Timeout || errors.Is(ue.Err, os.ErrDeadlineExceeded):
			return http.StatusGatewayTimeout
		default:
			return http.StatusBadGateway
		}
	default:
		return http.StatusInternalServerError
	}
}

// Detail is the client-facing message for err. Internal failures are not echoed.
func Detail(err error) string {
	var ue *UpstreamError
	switch {
	case errors.Is(err, ErrAOIMissing):
		return ErrAOIMissing.Error()
	case errors.Is(err, ErrAOIInvalid):
		return ErrAOIInvalid.Error()
	case errors.Is(err, ErrInvalidArgument):
		return err.Error()
	case errors.As(err, &ue):
		return ue.Error()
	default:
		return "internal server error"
	}
}
