// Package metrics exposes reconciliation results as Prometheus gauges, written
// to a node-exporter textfile after each run.
package metrics

import (
	"fmt"
	"time"

	"catalog-sync/internal/reconcile"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the run gauges on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	pendingTexts   prometheus.Gauge
	notFoundTexts  prometheus.Gauge
	missing        *prometheus.GaugeVec
	anomalies      *prometheus.GaugeVec
	leaves         *prometheus.GaugeVec
	buildFailed    *prometheus.GaugeVec
	runDuration    prometheus.Gauge
	lastRunSeconds prometheus.Gauge
}

// NewRecorder creates a recorder with all gauges registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pendingTexts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_sync_pending_texts",
			Help: "Catalog texts with no translation row",
		}),
		notFoundTexts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_sync_not_found_texts",
			Help: "Translation rows whose text is not in the catalog",
		}),
		missing: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "catalog_sync_missing_translations",
			Help: "Texts with a translation row but no value for the language",
		}, []string{"language"}),
		anomalies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "catalog_sync_placeholder_anomalies",
			Help: "Placeholder mismatches left in written leaves",
		}, []string{"language"}),
		leaves: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "catalog_sync_catalog_leaves",
			Help: "Leaves written to the rebuilt catalog",
		}, []string{"language"}),
		buildFailed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "catalog_sync_build_failed",
			Help: "1 if the catalog build of the language was aborted",
		}, []string{"language"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_sync_run_duration_seconds",
			Help: "Duration of the last reconciliation",
		}),
		lastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catalog_sync_last_run_timestamp_seconds",
			Help: "Unix time of the last reconciliation",
		}),
	}

	r.registry.MustRegister(
		r.pendingTexts,
		r.notFoundTexts,
		r.missing,
		r.anomalies,
		r.leaves,
		r.buildFailed,
		r.runDuration,
		r.lastRunSeconds,
	)
	return r
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe sets the gauges from res. Languages are taken from the outputs and
// failures, so every built or failed language has a series.
func (r *Recorder) Observe(res *reconcile.Result, now time.Time) {
	r.pendingTexts.Set(float64(len(res.Ledger.PendingRecords())))
	r.notFoundTexts.Set(float64(len(res.NotFound)))

	missing := make(map[string]int)
	for _, langs := range res.Ledger.MissingByLanguage() {
		for _, lang := range langs {
			missing[lang]++
		}
	}
	anomalies := make(map[string]int)
	for _, a := range res.Ledger.Anomalies() {
		anomalies[a.Language]++
	}

	for _, out := range res.Outputs {
		r.leaves.WithLabelValues(out.Language).Set(float64(out.Leaves))
		r.buildFailed.WithLabelValues(out.Language).Set(0)
		r.missing.WithLabelValues(out.Language).Set(float64(missing[out.Language]))
		r.anomalies.WithLabelValues(out.Language).Set(float64(anomalies[out.Language]))
	}
	for _, f := range res.Failures {
		r.leaves.WithLabelValues(f.Language).Set(0)
		r.buildFailed.WithLabelValues(f.Language).Set(1)
		r.missing.WithLabelValues(f.Language).Set(float64(missing[f.Language]))
		r.anomalies.WithLabelValues(f.Language).Set(float64(anomalies[f.Language]))
	}

	r.runDuration.Set(res.Duration.Seconds())
	r.lastRunSeconds.Set(float64(now.Unix()))
}

// WriteTextfile writes the gauges in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
