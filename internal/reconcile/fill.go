package reconcile

import (
	"context"

	"github.com/sparti-cms/sparti-settings/internal/settings"
)

// FillResult lists the keys EnsureDefaults wrote.
type FillResult struct {
	Added int      `json:"added"`
	Keys  []string `json:"keys"`
}

// EnsureDefaults writes the schema default of every key missing in scope.
// Writes never replace a value stored in the meantime, so a key another writer
// filled first is not counted.
func (e *Engine) EnsureDefaults(ctx context.Context, scope settings.Scope) (FillResult, error) {
	gap, err := e.MissingKeys(ctx, scope)
	if err != nil {
		return FillResult{}, err
	}

	result := FillResult{Keys: make([]string, 0, gap.MissingCount)}

	for _, key := range gap.MissingKeys {
		field, _ := e.schema.Field(key)

		inserted, err := e.store.UpsertIfAbsent(ctx, scope, key, field.Default, e.schema.Category)
		if err != nil {
			result.Added = len(result.Keys)
			keysTotal.WithLabelValues(opInserted).Add(float64(result.Added))

			return result, err
		}

		if inserted {
			result.Keys = append(result.Keys, key)
		}
	}

	result.Added = len(result.Keys)
	keysTotal.WithLabelValues(opInserted).Add(float64(result.Added))

	if result.Added > 0 {
		e.logger.Debug().
			Str("scope", scope.String()).
			Strs("keys", result.Keys).
			Msg("defaults filled")
	}

	return result, nil
}
