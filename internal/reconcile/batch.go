package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sparti-cms/sparti-settings/internal/db/controller/setting"
	"github.com/sparti-cms/sparti-settings/internal/db/models"
	"github.com/sparti-cms/sparti-settings/internal/settings"
)

// BatchResult aggregates one SyncReport per processed tenant.
// Results follow the order of the tenant directory.
type BatchResult struct {
	RunID            string       `json:"runId"`
	TenantsProcessed int          `json:"tenantsProcessed"`
	Succeeded        int          `json:"succeeded"`
	Failed           int          `json:"failed"`
	Results          []SyncReport `json:"results"`
}

// TenantStatus is the completeness of one tenant.
type TenantStatus struct {
	TenantID    string   `json:"tenantId"`
	TenantName  string   `json:"tenantName,omitempty"`
	Total       int      `json:"total"`
	Existing    int      `json:"existing"`
	Missing     int      `json:"missing"`
	MissingKeys []string `json:"missingKeys"`
	Complete    bool     `json:"complete"`
	Error       string   `json:"error,omitempty"`
}

// StatusSummary aggregates the completeness of all tenants.
type StatusSummary struct {
	TotalTenants    int            `json:"totalTenants"`
	CompleteCount   int            `json:"completeCount"`
	IncompleteCount int            `json:"incompleteCount"`
	Tenants         []TenantStatus `json:"tenants"`
}

// forEachTenant runs fn for every tenant, sequentially or with the configured
// worker limit. fn must not return errors; it records them in its result.
func forEachTenant[T any](ctx context.Context, limit int, tenants []models.Tenant, fn func(context.Context, models.Tenant) T) []T {
	results := make([]T, len(tenants))

	if limit < 2 {
		for i, tenant := range tenants {
			results[i] = fn(ctx, tenant)
		}

		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, tenant := range tenants {
		g.Go(func() error {
			results[i] = fn(gctx, tenant)
			return nil
		})
	}

	_ = g.Wait()

	return results
}

func (e *Engine) listTenants(ctx context.Context) ([]models.Tenant, error) {
	tenants, err := e.store.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	return tenants, nil
}

func (e *Engine) finish(operation, runID string, results []SyncReport) BatchResult {
	batch := BatchResult{
		RunID:            runID,
		TenantsProcessed: len(results),
		Results:          results,
	}

	for _, r := range results {
		if r.Success {
			batch.Succeeded++
			continue
		}

		batch.Failed++

		e.logger.Warn().
			Str("run_id", runID).
			Str("operation", operation).
			Str("tenant", r.TenantID).
			Str("error", r.Error).
			Msg("tenant failed")
	}

	tenantFailures.WithLabelValues(operation).Add(float64(batch.Failed))

	e.logger.Info().
		Str("run_id", runID).
		Str("operation", operation).
		Int("processed", batch.TenantsProcessed).
		Int("succeeded", batch.Succeeded).
		Int("failed", batch.Failed).
		Msg("batch finished")

	return batch
}

// EnsureAllTenantsHaveDefaults fills the missing defaults of every tenant.
// A tenant failing does not stop the batch; its report carries the error.
func (e *Engine) EnsureAllTenantsHaveDefaults(ctx context.Context) (BatchResult, error) {
	tenants, err := e.listTenants(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	runID := uuid.NewString()
	e.logger.Info().Str("run_id", runID).Int("tenants", len(tenants)).Msg("filling defaults")

	results := forEachTenant(ctx, e.concurrency, tenants, func(ctx context.Context, t models.Tenant) SyncReport {
		report := newReport(settings.Tenant(t.ID))
		report.TenantName = t.Name

		fill, err := e.EnsureDefaults(ctx, settings.Tenant(t.ID))
		report.Inserted = append(report.Inserted, fill.Keys...)

		if err != nil {
			report.Error = err.Error()
			return report
		}

		report.Success = true

		return report
	})

	return e.finish(batchEnsureDefaults, runID, results), nil
}

// SyncAllTenantsFromMaster syncs master onto every other tenant.
// The master tenant itself is never a target.
func (e *Engine) SyncAllTenantsFromMaster(ctx context.Context, master settings.Scope, opts SyncOptions) (BatchResult, error) {
	if !master.Valid() {
		return BatchResult{}, fmt.Errorf("master %w", setting.ErrInvalidScope)
	}

	tenants, err := e.listTenants(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	targets := make([]models.Tenant, 0, len(tenants))
	for _, t := range tenants {
		if !master.IsGlobal() && t.ID == master.TenantID() {
			continue
		}

		targets = append(targets, t)
	}

	runID := uuid.NewString()
	e.logger.Info().
		Str("run_id", runID).
		Str("master", master.String()).
		Stringer("policy", opts.Policy).
		Int("tenants", len(targets)).
		Msg("syncing from master")

	results := forEachTenant(ctx, e.concurrency, targets, func(ctx context.Context, t models.Tenant) SyncReport {
		report, err := e.SyncSettings(ctx, master, settings.Tenant(t.ID), opts)
		report.TenantName = t.Name

		if err != nil {
			report.Success = false
			report.Error = err.Error()
		}

		return report
	})

	return e.finish(batchSyncAll, runID, results), nil
}

// GetAllTenantsSyncStatus reports which tenants miss schema keys.
// Tenants whose settings can not be read count as incomplete.
func (e *Engine) GetAllTenantsSyncStatus(ctx context.Context) (StatusSummary, error) {
	tenants, err := e.listTenants(ctx)
	if err != nil {
		return StatusSummary{}, err
	}

	statuses := forEachTenant(ctx, e.concurrency, tenants, func(ctx context.Context, t models.Tenant) TenantStatus {
		status := TenantStatus{
			TenantID:    t.ID,
			TenantName:  t.Name,
			Total:       len(e.schema.Fields),
			MissingKeys: make([]string, 0),
		}

		gap, err := e.MissingKeys(ctx, settings.Tenant(t.ID))
		if err != nil {
			status.Error = err.Error()
			return status
		}

		status.Existing = gap.ExistingCount
		status.Missing = gap.MissingCount
		status.MissingKeys = gap.MissingKeys
		status.Complete = gap.Complete()

		return status
	})

	summary := StatusSummary{
		TotalTenants: len(statuses),
		Tenants:      statuses,
	}

	for _, s := range statuses {
		if s.Complete {
			summary.CompleteCount++
		} else {
			summary.IncompleteCount++
		}

		if s.Error != "" {
			tenantFailures.WithLabelValues(batchStatus).Inc()
		}
	}

	return summary, nil
}
