// Package metrics exports the last run as a Prometheus textfile, for the
// node_exporter textfile collector.
package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "checkin"

var _ output.ReportRecorder = (*TextfileRecorder)(nil)

type TextfileRecorder struct {
	path     string
	registry *prometheus.Registry

	accounts        prometheus.Gauge
	succeeded       prometheus.Gauge
	lastRun         prometheus.Gauge
	runDuration     prometheus.Gauge
	accountSuccess  *prometheus.GaugeVec
	accountDuration *prometheus.GaugeVec
	failures        *prometheus.GaugeVec
}

// NewTextfileRecorder uses its own registry so only check-in metrics end
// up in the file.
func NewTextfileRecorder(path, site string) *TextfileRecorder {
	constLabels := prometheus.Labels{"site": site}

	r := &TextfileRecorder{
		path:     path,
		registry: prometheus.NewRegistry(),
		accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "accounts",
			Help:        "Number of accounts processed in the last run.",
			ConstLabels: constLabels,
		}),
		succeeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "accounts_succeeded",
			Help:        "Number of accounts whose daily action is done after the last run.",
			ConstLabels: constLabels,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last run finished.",
			ConstLabels: constLabels,
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_duration_seconds",
			Help:        "Wall time of the last run.",
			ConstLabels: constLabels,
		}),
		accountSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "account_success",
			Help:        "1 if the account's daily action is done, 0 otherwise.",
			ConstLabels: constLabels,
		}, []string{"position", "account", "outcome"}),
		accountDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "account_duration_seconds",
			Help:        "Time spent on the account in the last run.",
			ConstLabels: constLabels,
		}, []string{"position", "account"}),
		failures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "failures",
			Help:        "Failed accounts in the last run by reason.",
			ConstLabels: constLabels,
		}, []string{"reason"}),
	}

	r.registry.MustRegister(
		r.accounts, r.succeeded, r.lastRun, r.runDuration,
		r.accountSuccess, r.accountDuration, r.failures,
	)
	return r
}

func (r *TextfileRecorder) Record(_ context.Context, report *entity.Report) error {
	r.accountSuccess.Reset()
	r.accountDuration.Reset()
	r.failures.Reset()

	r.accounts.Set(float64(report.Total()))
	r.succeeded.Set(float64(report.Succeeded()))
	r.lastRun.Set(float64(report.FinishedAt.Unix()))
	r.runDuration.Set(report.FinishedAt.Sub(report.StartedAt).Seconds())

	// position keeps accounts that mask alike apart
	for i, o := range report.Outcomes {
		pos := strconv.Itoa(i + 1)
		v := 0.0
		if o.Succeeded {
			v = 1
		}
		r.accountSuccess.WithLabelValues(pos, o.Account, string(o.Kind)).Set(v)
		r.accountDuration.WithLabelValues(pos, o.Account).Set(o.Duration.Seconds())
		if !o.Succeeded {
			r.failures.WithLabelValues(o.Reason).Inc()
		}
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	// WriteToTextfile renames a temp file into place, so scrapers never
	// read a partial file.
	if err := prometheus.WriteToTextfile(r.path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
