// Package schemadoc persists settings schemas as JSON documents, one row per
// scope, schema key and language.
package schemadoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/sparti-cms/sparti-settings/internal/db/controller/setting"
	"github.com/sparti-cms/sparti-settings/internal/db/models"
	"github.com/sparti-cms/sparti-settings/internal/settings"
)

const (
	// DefaultLanguage is used when no language is configured.
	DefaultLanguage = "default"

	scopeQueryPattern = "tenant_id = ? AND schema_key = ? AND language = ?"
)

// Outcome tells what Save did with the stored document.
type Outcome string

const (
	// Created means no document existed and one was written.
	Created Outcome = "created"
	// Updated means an older or unreadable document was replaced.
	Updated Outcome = "updated"
	// Unchanged means the stored document is as new as the schema.
	Unchanged Outcome = "unchanged"
)

var (
	// ErrDocumentNotFound is returned when no document exists for the scope.
	ErrDocumentNotFound = errors.New("schema document not found")
	// ErrLanguageEmpty is returned when no language is given.
	ErrLanguageEmpty = errors.New("schema language cannot be empty")
	// ErrSchemaNil is returned when no schema is given.
	ErrSchemaNil = errors.New("schema is nil")
)

// Save stores the schema document of a scope, replacing an existing one only
// when the schema version is newer than the stored version or when the stored
// document is no longer a valid schema document.
func Save(ctx context.Context, db *gorm.DB, scope settings.Scope, language string, schema *settings.Schema) (Outcome, error) {
	if db == nil {
		return "", setting.ErrDBNil
	}

	if schema == nil {
		return "", ErrSchemaNil
	}

	if language == "" {
		return "", ErrLanguageEmpty
	}

	tenantID, err := setting.TenantID(scope)
	if err != nil {
		return "", err
	}

	doc, err := settings.EncodeDocument(schema)
	if err != nil {
		return "", err
	}

	db = db.WithContext(ctx)

	var existing models.SchemaDocument

	result := db.Where(scopeQueryPattern, tenantID, schema.Key, language).First(&existing)

	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		record := &models.SchemaDocument{
			TenantID:  tenantID,
			SchemaKey: schema.Key,
			Language:  language,
			Version:   schema.Version,
			Document:  string(doc),
		}

		if err = db.Create(record).Error; err != nil {
			return "", fmt.Errorf("create schema document for %s: %w", scope, err)
		}

		return Created, nil
	case result.Error != nil:
		return "", fmt.Errorf("load schema document for %s: %w", scope, result.Error)
	}

	// the version inside the document wins over the column; a document that
	// no longer decodes is replaced whatever its version
	stored, err := settings.DecodeDocument([]byte(existing.Document))
	if err != nil {
		log.Warn().
			Err(err).
			Str("scope", scope.String()).
			Str("language", language).
			Msg("replacing unreadable schema document")
	} else {
		newer, err := schema.NewerThan(stored.Version)
		if err != nil {
			return "", err
		}

		if !newer {
			return Unchanged, nil
		}

		log.Debug().
			Str("scope", scope.String()).
			Str("language", language).
			Str("from", stored.Version).
			Str("to", schema.Version).
			Msg("upgrading schema document")
	}

	existing.Version = schema.Version
	existing.Document = string(doc)

	if err = db.Save(&existing).Error; err != nil {
		return "", fmt.Errorf("update schema document for %s: %w", scope, err)
	}

	return Updated, nil
}

// Load returns the stored schema of a scope.
func Load(ctx context.Context, db *gorm.DB, scope settings.Scope, schemaKey, language string) (*settings.Schema, error) {
	if db == nil {
		return nil, setting.ErrDBNil
	}

	tenantID, err := setting.TenantID(scope)
	if err != nil {
		return nil, err
	}

	var record models.SchemaDocument

	result := db.WithContext(ctx).Where(scopeQueryPattern, tenantID, schemaKey, language).First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}

		return nil, fmt.Errorf("load schema document for %s: %w", scope, result.Error)
	}

	return settings.DecodeDocument([]byte(record.Document))
}

// Report summarizes an InitAll run.
type Report struct {
	Created   int
	Updated   int
	Unchanged int
	Scopes    int
}

// InitAll saves the schema for the global scope and every tenant in every language.
// It stops at the first failure.
func InitAll(ctx context.Context, db *gorm.DB, schema *settings.Schema, languages []string) (Report, error) {
	var report Report

	if len(languages) == 0 {
		languages = []string{DefaultLanguage}
	}

	tenants, err := setting.New(db).ListTenants(ctx)
	if err != nil {
		return report, err
	}

	scopes := make([]settings.Scope, 0, len(tenants)+1)
	scopes = append(scopes, settings.Global())

	for _, t := range tenants {
		scopes = append(scopes, settings.Tenant(t.ID))
	}

	for _, scope := range scopes {
		for _, language := range languages {
			outcome, err := Save(ctx, db, scope, language, schema)
			if err != nil {
				return report, err
			}

			switch outcome {
			case Created:
				report.Created++
			case Updated:
				report.Updated++
			case Unchanged:
				report.Unchanged++
			}
		}
	}

	report.Scopes = len(scopes)

	log.Info().
		Int("scopes", report.Scopes).
		Int("created", report.Created).
		Int("updated", report.Updated).
		Int("unchanged", report.Unchanged).
		Msg("schema documents initialized")

	return report, nil
}
