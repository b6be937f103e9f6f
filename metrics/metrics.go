package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ProcessingMetrics struct {
	sourceAirdropsGauge prometheus.Gauge
	processedCycleCount prometheus.Counter
	sentReminderCount   prometheus.Counter
	fetchErrorCount     prometheus.Counter
	storeErrorCount     prometheus.Counter
	dispatchErrorCount  prometheus.Counter
	evictedRecordCount  prometheus.Counter
}

func NewProcessingMetrics(namespace string) *ProcessingMetrics {
	m := ProcessingMetrics{
		sourceAirdropsGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_source_airdrop_count", namespace),
			Help: "The number of airdrops in the latest catalog snapshot",
		}),
		processedCycleCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_processed_cycle_count", namespace),
			Help: "The total number of completed poll cycles",
		}),
		sentReminderCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_sent_reminder_count", namespace),
			Help: "The total number of dispatched reminder notifications",
		}),
		fetchErrorCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_fetch_error_count", namespace),
			Help: "The total number of catalog or enrichment fetch errors",
		}),
		storeErrorCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_store_error_count", namespace),
			Help: "The total number of persistence errors",
		}),
		dispatchErrorCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_dispatch_error_count", namespace),
			Help: "The total number of notification dispatch errors",
		}),
		evictedRecordCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_evicted_record_count", namespace),
			Help: "The total number of tracking records deleted by retention",
		}),
	}
	return &m
}

func (metrics *ProcessingMetrics) SetSourceAirdrops(count int) {
	metrics.sourceAirdropsGauge.Set(float64(count))
}

func (metrics *ProcessingMetrics) IncProcessedCycles() {
	metrics.processedCycleCount.Inc()
}

func (metrics *ProcessingMetrics) IncSentReminders() {
	metrics.sentReminderCount.Inc()
}

func (metrics *ProcessingMetrics) IncFetchErrors() {
	metrics.fetchErrorCount.Inc()
}

func (metrics *ProcessingMetrics) IncStoreErrors() {
	metrics.storeErrorCount.Inc()
}

func (metrics *ProcessingMetrics) IncDispatchErrors() {
	metrics.dispatchErrorCount.Inc()
}

func (metrics *ProcessingMetrics) AddEvictedRecords(count int) {
	metrics.evictedRecordCount.Add(float64(count))
}
