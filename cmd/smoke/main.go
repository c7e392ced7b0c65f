// Command smoke checks a running proxy and, optionally, the upstream catalog it fronts.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func getenv(key, def string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return def
}

func get(ctx context.Context, c *http.Client, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("get %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	// only a sample is needed, bodies can be large
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return b, resp.StatusCode, nil
}

func checkHealth(ctx context.Context, c *http.Client, base string) error {
	fmt.Println("health check")
	b, code, err := get(ctx, c, base+"/health")
	if err != nil {
		return err
	}
	if code != http.StatusOK || !bytes.Contains(b, []byte(`"ok":true`)) {
		return fmt.Errorf("health status %d: %s", code, b)
	}
	return nil
}

func checkAOI(ctx context.Context, c *http.Client, base string) error {
	fmt.Println("aoi check")
	b, code, err := get(ctx, c, base+"/aoi")
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("aoi status %d: %s", code, b)
	}
	var fc struct {
		Type     string            `json:"type"`
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("decode aoi: %w", err)
	}
	fmt.Printf("aoi: %s with %d features\n", fc.Type, len(fc.Features))
	return nil
}

func checkSearch(ctx context.Context, c *http.Client, base string) error {
	fmt.Println("search check")
	b, code, err := get(ctx, c, base+"/stac/search?limit=2")
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("search status %d: %s", code, b)
	}
	var out struct {
		Items []struct {
			ID         json.RawMessage `json:"id"`
			VisualHref *string         `json:"visual_href"`
		} `json:"items"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("decode search: %w", err)
	}
	for _, it := range out.Items {
		href := "<none>"
		if it.VisualHref != nil {
			href = *it.VisualHref
		}
		fmt.Printf("  %s -> %s\n", string(it.ID), href)
	}
	return nil
}

func checkUpstream(ctx context.Context, c *http.Client, stacURL string) error {
	fmt.Println("upstream catalog check")
	b, code, err := get(ctx, c, strings.TrimRight(stacURL, "/")+"/")
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("catalog landing status %d: %.512s", code, b)
	}
	return nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	base := strings.TrimRight(getenv("PROXY_URL", "http://localhost:8000"), "/")
	stacURL := os.Getenv("STAC_URL")
	client := &http.Client{Timeout: 75 * time.Second}

	if stacURL != "" {
		if err := checkUpstream(ctx, client, stacURL); err != nil {
			fmt.Println("Upstream error:", err)
			os.Exit(1)
		}
	}
	for _, check := range []func(context.Context, *http.Client, string) error{checkHealth, checkAOI, checkSearch} {
		if err := check(ctx, client, base); err != nil {
			fmt.Println("Smoke error:", err)
			os.Exit(1)
		}
	}
	fmt.Println("All checks passed")
}
