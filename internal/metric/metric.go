// Package metric exposes the Prometheus instrumentation for the calendar
// service. Collectors register themselves on the default registry, so
// importing the package is enough to wire them up.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreSize tracks the number of events currently resident in the store.
	StoreSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dagaz_store_events",
		Help: "Number of events resident in the in-memory store.",
	})

	// EventsLoaded counts events read from the data file across reloads.
	EventsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dagaz_events_loaded_total",
		Help: "Total events parsed from the calendar data file.",
	})

	// ParseErrors counts failed data file loads.
	ParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dagaz_parse_errors_total",
		Help: "Total calendar data file loads that failed to parse.",
	})

	// Saves counts successful flushes of the store to the data file.
	Saves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dagaz_saves_total",
		Help: "Total successful writes of the calendar data file.",
	})
)
