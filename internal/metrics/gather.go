package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// onlyApp drops the go_/process_ families of the default registry, which the
// provider registry already collects.
type onlyApp struct {
	g prometheus.Gatherer
}

func (o onlyApp) Gather() ([]*dto.MetricFamily, error) {
	mfs, err := o.g.Gather()
	out := mfs[:0]
	for _, mf := range mfs {
		name := mf.GetName()
		if strings.HasPrefix(name, "go_") || strings.HasPrefix(name, "process_") || strings.HasPrefix(name, "promhttp_") {
			continue
		}
		out = append(out, mf)
	}
	return out, err
}
