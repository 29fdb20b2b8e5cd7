package reconcile

import (
	"context"

	"github.com/sparti-cms/sparti-settings/internal/settings"
)

// GapReport lists the schema keys a scope has no value for.
type GapReport struct {
	Scope         string   `json:"scope"`
	Total         int      `json:"total"`
	ExistingCount int      `json:"existingCount"`
	MissingCount  int      `json:"missingCount"`
	MissingKeys   []string `json:"missingKeys"`
}

// Complete reports whether no schema key is missing.
func (r GapReport) Complete() bool {
	return r.MissingCount == 0
}

// MissingKeys compares the stored settings of scope with the schema.
// Missing keys follow schema declaration order. Rows for keys the schema
// does not declare are ignored.
func (e *Engine) MissingKeys(ctx context.Context, scope settings.Scope) (GapReport, error) {
	entries, err := e.store.Query(ctx, scope, e.schema.Category)
	if err != nil {
		return GapReport{}, err
	}

	existing := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		existing[entry.Key] = struct{}{}
	}

	keys := e.schema.Keys()
	report := GapReport{
		Scope:       scope.String(),
		Total:       len(keys),
		MissingKeys: make([]string, 0),
	}

	for _, key := range keys {
		if _, ok := existing[key]; ok {
			report.ExistingCount++
			continue
		}

		report.MissingKeys = append(report.MissingKeys, key)
	}

	report.MissingCount = len(report.MissingKeys)

	return report, nil
}
