package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// getMetricValue reads the current value of a single gauge or counter.
func getMetricValue(c prometheus.Collector) (float64, error) {
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	m := <-ch

	pb := &dto.Metric{}
	if err := m.Write(pb); err != nil {
		return 0, err
	}
	switch {
	case pb.Gauge != nil:
		return pb.Gauge.GetValue(), nil
	case pb.Counter != nil:
		return pb.Counter.GetValue(), nil
	}
	return 0, nil
}

// countSeries returns how many label combinations c currently exports.
func countSeries(c prometheus.Collector) int {
	ch := make(chan prometheus.Metric, 64)
	go func() {
		c.Collect(ch)
		close(ch)
	}()
	n := 0
	for range ch {
		n++
	}
	return n
}
