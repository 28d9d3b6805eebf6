package chaninfo

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts cache activity. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	rebuildCounter     prometheus.Counter
	tableQueryCounter  *prometheus.CounterVec
	lookupMissCounter  *prometheus.CounterVec
	fallbackCounter    *prometheus.CounterVec
	badChannelsCounter *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		rebuildCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chaninfo_translation_rebuilds_total",
			Help: "Number of times the channel translation tables were rebuilt",
		}),
		tableQueryCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chaninfo_table_queries_total",
			Help: "Number of table queries sent to the database",
		}, []string{"table"}),
		lookupMissCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chaninfo_lookup_misses_total",
			Help: "Number of translation lookups with no entry",
		}, []string{"map"}),
		fallbackCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chaninfo_calibration_fallbacks_total",
			Help: "Number of calibration queries answered with a fallback constant",
		}, []string{"quantity"}),
		badChannelsCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chaninfo_bad_channel_rebuilds_total",
			Help: "Number of times a bad channel cache was rebuilt",
		}, []string{"source"}),
	}
	if reg != nil {
		reg.MustRegister(m.rebuildCounter, m.tableQueryCounter, m.lookupMissCounter,
			m.fallbackCounter, m.badChannelsCounter)
	}
	return m
}

func (m *Metrics) rebuild() {
	if m == nil {
		return
	}
	m.rebuildCounter.Inc()
}

func (m *Metrics) tableQuery(table string) {
	if m == nil {
		return
	}
	m.tableQueryCounter.WithLabelValues(table).Inc()
}

func (m *Metrics) lookupMiss(mapName string) {
	if m == nil {
		return
	}
	m.lookupMissCounter.WithLabelValues(mapName).Inc()
}

func (m *Metrics) fallback(quantity string) {
	if m == nil {
		return
	}
	m.fallbackCounter.WithLabelValues(quantity).Inc()
}

func (m *Metrics) badChannelRebuild(source string) {
	if m == nil {
		return
	}
	m.badChannelsCounter.WithLabelValues(source).Inc()
}
