package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	MetricsNamespace        = "gastronomos"
	MetricsSubsystemExtract = "extract"
	MetricsSubsystemSearch  = "search"
	MetricsSubsystemBot     = "bot"
)

// Metrics collects pipeline outcomes. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	extractionsTotal *prometheus.CounterVec
	searchBranches   *prometheus.CounterVec
	botImportsTotal  *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: MetricsNamespace}))
	m.registry.MustRegister(collectors.NewGoCollector())

	m.extractionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemExtract,
		Name:      "extractions_total",
		Help:      "URL extractions by strategy and outcome.",
	}, []string{"strategy", "outcome"})
	m.registry.MustRegister(m.extractionsTotal)

	m.searchBranches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemSearch,
		Name:      "branch_results_total",
		Help:      "Hybrid search branch executions by branch and outcome.",
	}, []string{"branch", "outcome"})
	m.registry.MustRegister(m.searchBranches)

	m.botImportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Subsystem: MetricsSubsystemBot,
		Name:      "imports_total",
		Help:      "Bot message handling outcomes.",
	}, []string{"outcome"})
	m.registry.MustRegister(m.botImportsTotal)

	return m
}

func (m *Metrics) GetRegistry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveExtraction(strategy, outcome string) {
	if m == nil {
		return
	}
	m.extractionsTotal.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) ObserveSearchBranch(branch, outcome string) {
	if m == nil {
		return
	}
	m.searchBranches.WithLabelValues(branch, outcome).Inc()
}

func (m *Metrics) ObserveBotImport(outcome string) {
	if m == nil {
		return
	}
	m.botImportsTotal.WithLabelValues(outcome).Inc()
}
