package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking flow.
type BookingMetrics struct {
	attemptsTotal   *prometheus.CounterVec
	conflictsTotal  prometheus.Counter
	offlineSpooled  prometheus.Counter
	offlineDepth    prometheus.Gauge
	resolverLatency prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
		conflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "slot_conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken",
		}),
		offlineSpooled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "offline_spooled_total",
			Help:      "Booking requests spooled to the offline queue",
		}),
		offlineDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "offline_queue_depth",
			Help:      "Requests currently waiting in the offline queue",
		}),
		resolverLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "availability",
			Name:      "resolve_seconds",
			Help:      "Latency of availability resolution",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attemptsTotal, m.conflictsTotal, m.offlineSpooled, m.offlineDepth, m.resolverLatency)
	return m
}

func (m *BookingMetrics) ObserveAttempt(outcome string) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflictsTotal.Inc()
}

func (m *BookingMetrics) ObserveSpooled() {
	if m == nil {
		return
	}
	m.offlineSpooled.Inc()
}

func (m *BookingMetrics) SetOfflineDepth(depth int) {
	if m == nil {
		return
	}
	m.offlineDepth.Set(float64(depth))
}

func (m *BookingMetrics) ObserveResolveLatency(seconds float64) {
	if m == nil {
		return
	}
	m.resolverLatency.Observe(seconds)
}
