package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sparti-cms/sparti-settings/internal/db/controller/setting"
	"github.com/sparti-cms/sparti-settings/internal/settings"
)

// SyncPolicy decides what happens to keys the target already has.
type SyncPolicy int

const (
	// PolicyFillMissingOnly copies keys absent at the target and keeps existing values.
	PolicyFillMissingOnly SyncPolicy = iota
	// PolicyOverwriteAll also replaces existing target values with the source values.
	PolicyOverwriteAll
)

// ErrUnknownPolicy is returned when parsing an unknown policy name.
var ErrUnknownPolicy = errors.New("unknown sync policy")

// PolicyFromFlags maps the legacy overwrite/onlyMissing flag pair onto a policy.
// Only overwrite=true together with onlyMissing=false overwrites.
func PolicyFromFlags(overwrite, onlyMissing bool) SyncPolicy {
	if overwrite && !onlyMissing {
		return PolicyOverwriteAll
	}

	return PolicyFillMissingOnly
}

// ParsePolicy parses "fill-missing" or "overwrite".
func ParsePolicy(s string) (SyncPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fill-missing", "fill_missing_only", "only-missing":
		return PolicyFillMissingOnly, nil
	case "overwrite", "overwrite-all", "overwrite_all":
		return PolicyOverwriteAll, nil
	default:
		return PolicyFillMissingOnly, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

func (p SyncPolicy) String() string {
	if p == PolicyOverwriteAll {
		return "overwrite"
	}

	return "fill-missing"
}

// MarshalText implements encoding.TextMarshaler.
func (p SyncPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *SyncPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}

// SyncOptions controls a sync.
type SyncOptions struct {
	Policy      SyncPolicy
	ExcludeKeys []string
}

// SyncReport is the outcome of syncing (or filling) one tenant.
type SyncReport struct {
	TenantID   string   `json:"tenantId"`
	TenantName string   `json:"tenantName,omitempty"`
	Inserted   []string `json:"insertedKeys"`
	Updated    []string `json:"updatedKeys"`
	Skipped    []string `json:"skippedKeys"`
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
}

func newReport(scope settings.Scope) SyncReport {
	return SyncReport{
		TenantID: scope.String(),
		Inserted: make([]string, 0),
		Updated:  make([]string, 0),
		Skipped:  make([]string, 0),
	}
}

// SyncSettings copies the settings of source onto target.
//
// Keys are processed in the order the store returns the source settings.
// Excluded keys are skipped. Keys absent at the target are inserted. Keys
// present at the target are updated under PolicyOverwriteAll and skipped
// otherwise. A store error aborts the sync and is returned together with the
// partial report.
func (e *Engine) SyncSettings(
	ctx context.Context,
	source, target settings.Scope,
	opts SyncOptions,
) (SyncReport, error) {
	report := newReport(target)

	if source == target {
		return report, ErrSameScope
	}

	category := e.schema.Category

	sourceEntries, err := e.store.Query(ctx, source, category)
	if err != nil {
		return report, fmt.Errorf("read source %s: %w", source, err)
	}

	targetEntries, err := e.store.Query(ctx, target, category)
	if err != nil {
		return report, fmt.Errorf("read target %s: %w", target, err)
	}

	existing := make(map[string]struct{}, len(targetEntries))
	for _, entry := range targetEntries {
		existing[entry.Key] = struct{}{}
	}

	for _, entry := range sourceEntries {
		if slices.Contains(opts.ExcludeKeys, entry.Key) {
			report.Skipped = append(report.Skipped, entry.Key)
			continue
		}

		if _, ok := existing[entry.Key]; ok {
			if opts.Policy != PolicyOverwriteAll {
				report.Skipped = append(report.Skipped, entry.Key)
				continue
			}

			if err = e.store.Update(ctx, target, entry.Key, entry.Value, category); err != nil {
				return report, fmt.Errorf("update %s of %s: %w", entry.Key, target, err)
			}

			report.Updated = append(report.Updated, entry.Key)

			continue
		}

		err = e.store.Insert(ctx, target, entry.Key, entry.Value, category)

		switch {
		case errors.Is(err, setting.ErrSettingAlreadyExists):
			// written by someone else since the target was read
			report.Skipped = append(report.Skipped, entry.Key)
		case err != nil:
			return report, fmt.Errorf("insert %s into %s: %w", entry.Key, target, err)
		default:
			report.Inserted = append(report.Inserted, entry.Key)
		}
	}

	report.Success = true

	keysTotal.WithLabelValues(opInserted).Add(float64(len(report.Inserted)))
	keysTotal.WithLabelValues(opUpdated).Add(float64(len(report.Updated)))
	keysTotal.WithLabelValues(opSkipped).Add(float64(len(report.Skipped)))

	e.logger.Debug().
		Str("source", source.String()).
		Str("target", target.String()).
		Stringer("policy", opts.Policy).
		Int("inserted", len(report.Inserted)).
		Int("updated", len(report.Updated)).
		Int("skipped", len(report.Skipped)).
		Msg("settings synced")

	return report, nil
}
