package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opInserted = "inserted"
	opUpdated  = "updated"
	opSkipped  = "skipped"

	batchEnsureDefaults = "ensure_defaults"
	batchSyncAll        = "sync_all"
	batchStatus         = "status"
)

var (
	keysTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "settings_keys_total",
			Help: "Number of setting keys handled by reconciliation, by outcome.",
		},
		[]string{"operation"},
	)

	tenantFailures = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "settings_tenant_failures_total",
			Help: "Number of tenants a batch run failed for, by batch operation.",
		},
		[]string{"operation"},
	)
)
