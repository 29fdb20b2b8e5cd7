// Package reconcile keeps the settings of every tenant complete and in sync
// with a schema: it detects gaps, fills them with defaults and copies values
// from a master scope to other tenants.
//
// Single scope operations return store errors to the caller. Batch operations
// record them per tenant and only fail as a whole when the tenant directory
// can not be read.
package reconcile

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sparti-cms/sparti-settings/internal/db/models"
	"github.com/sparti-cms/sparti-settings/internal/settings"
)

var (
	// ErrSchemaNil is returned by New when no schema is given.
	ErrSchemaNil = errors.New("schema is nil")
	// ErrStoreNil is returned by New when no store is given.
	ErrStoreNil = errors.New("store is nil")
	// ErrSameScope is returned when a scope is synced onto itself.
	ErrSameScope = errors.New("source and target scope are the same")
)

// Store is the settings store the engine reads and writes.
// *setting.Store implements it.
type Store interface {
	Query(ctx context.Context, scope settings.Scope, category string) ([]settings.Entry, error)
	UpsertIfAbsent(ctx context.Context, scope settings.Scope, key string, value settings.Value, category string) (bool, error)
	Insert(ctx context.Context, scope settings.Scope, key string, value settings.Value, category string) error
	Update(ctx context.Context, scope settings.Scope, key string, value settings.Value, category string) error
	ListTenants(ctx context.Context) ([]models.Tenant, error)
}

// Engine reconciles tenant settings against one schema.
type Engine struct {
	store       Store
	schema      *settings.Schema
	concurrency int
	logger      zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithConcurrency bounds how many tenants a batch processes at once.
// Values below 2 keep batches sequential.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithLogger replaces the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine for schema on top of store.
func New(store Store, schema *settings.Schema, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	if schema == nil {
		return nil, ErrSchemaNil
	}

	if err := schema.Check(); err != nil {
		return nil, err
	}

	e := &Engine{
		store:       store,
		schema:      schema,
		concurrency: 1,
		logger:      log.Logger,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Schema returns the schema the engine reconciles against.
func (e *Engine) Schema() *settings.Schema {
	return e.schema
}

// Settings returns the stored settings of a scope within the schema's category.
func (e *Engine) Settings(ctx context.Context, scope settings.Scope) ([]settings.Entry, error) {
	return e.store.Query(ctx, scope, e.schema.Category)
}
