package xslog

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	records   *prometheus.CounterVec
	errors    *prometheus.CounterVec
	rollovers *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geotech",
			Subsystem: "log",
			Name:      "records_total",
			Help:      "Log records created, by logger and level.",
		}, []string{"logger", "level"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geotech",
			Subsystem: "log",
			Name:      "handler_errors_total",
			Help:      "Records a handler failed to emit.",
		}, []string{"handler"}),
		rollovers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geotech",
			Subsystem: "log",
			Name:      "rollovers_total",
			Help:      "Timed file rotations performed.",
		}, []string{"handler"}),
	}
	if reg != nil {
		m.records = register(reg, m.records)
		m.errors = register(reg, m.errors)
		m.rollovers = register(reg, m.rollovers)
	}
	return m
}

// register reuses an identical collector already registered on reg.
func register(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	err := reg.Register(c)
	if err == nil {
		return c
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
			return existing
		}
	}
	return c
}
