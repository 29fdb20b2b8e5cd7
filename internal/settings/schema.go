package settings

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrSchemaKeyEmpty is returned when a schema or one of its fields has no key.
	ErrSchemaKeyEmpty = errors.New("schema key can not be empty")
	// ErrSchemaCategoryEmpty is returned when a schema has no category.
	ErrSchemaCategoryEmpty = errors.New("schema category can not be empty")
	// ErrDuplicateKey is returned when a key is declared twice.
	ErrDuplicateKey = errors.New("duplicate schema key")
	// ErrInvalidValueType is returned for an undeclared value type.
	ErrInvalidValueType = errors.New("invalid value type")
	// ErrDefaultType is returned when a default does not have the declared type.
	ErrDefaultType = errors.New("default value has the wrong type")
	// ErrDefaultInvalid is returned when a default violates its own constraints.
	ErrDefaultInvalid = errors.New("default value violates its constraints")
	// ErrInvalidPattern is returned for a pattern that does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrInvalidVersion is returned when the schema version is not semver.
	ErrInvalidVersion = errors.New("invalid schema version")
)

// Constraints are the optional validation rules of a field.
// Length, pattern, enum and format rules apply to strings, Minimum and Maximum to numbers.
type Constraints struct {
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty"   yaml:"pattern,omitempty"`
	Enum      []string `json:"enum,omitempty"      yaml:"enum,omitempty"`
	// Format is a go-playground/validator tag such as url, email, hexcolor or timezone.
	Format  string   `json:"format,omitempty"  yaml:"format,omitempty"`
	Minimum *float64 `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty" yaml:"maximum,omitempty"`
}

// Field declares one setting key.
type Field struct {
	Key         string      `json:"key"                   yaml:"key"`
	Type        ValueType   `json:"type"                  yaml:"type"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Constraints Constraints `json:"constraints"           yaml:"constraints,omitempty"`
	Default     Value       `json:"default"               yaml:"default"`
}

// Schema is the declarative description of every setting key of a category.
type Schema struct {
	Key      string  `json:"key"      yaml:"key"`
	Version  string  `json:"version"  yaml:"version"`
	Category string  `json:"category" yaml:"category"`
	Fields   []Field `json:"fields"   yaml:"fields"`
}

// Keys returns the declared keys in declaration order.
func (s *Schema) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		keys = append(keys, f.Key)
	}

	return keys
}

// Field returns the declaration of key.
func (s *Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}

	return Field{}, false
}

// Defaults returns every key mapped to its default value.
func (s *Schema) Defaults() map[string]Value {
	out := make(map[string]Value, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Key] = f.Default
	}

	return out
}

// SemVer parses the schema version.
func (s *Schema) SemVer() (*semver.Version, error) {
	v, err := semver.NewVersion(s.Version)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidVersion, s.Version, err)
	}

	return v, nil
}

// NewerThan reports whether the schema version is greater than version.
// An unparsable version is treated as older than any schema.
func (s *Schema) NewerThan(version string) (bool, error) {
	own, err := s.SemVer()
	if err != nil {
		return false, err
	}

	other, err := semver.NewVersion(version)
	if err != nil {
		return true, nil //nolint:nilerr
	}

	return own.GreaterThan(other), nil
}

// Check verifies the schema invariants: unique non-empty keys, valid types,
// compilable patterns and defaults of the declared type that satisfy their constraints.
func (s *Schema) Check() error {
	if s.Key == "" {
		return ErrSchemaKeyEmpty
	}

	if s.Category == "" {
		return ErrSchemaCategoryEmpty
	}

	if _, err := s.SemVer(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(s.Fields))

	for _, f := range s.Fields {
		if f.Key == "" {
			return ErrSchemaKeyEmpty
		}

		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, f.Key)
		}

		seen[f.Key] = struct{}{}

		if !f.Type.Valid() {
			return fmt.Errorf("%w %q for key %s", ErrInvalidValueType, f.Type, f.Key)
		}

		if f.Constraints.Pattern != "" {
			if _, err := regexp.Compile(f.Constraints.Pattern); err != nil {
				return fmt.Errorf("%w for key %s: %w", ErrInvalidPattern, f.Key, err)
			}
		}

		if f.Default.Type() != f.Type {
			return fmt.Errorf("%w: %s is %s, declared %s", ErrDefaultType, f.Key, typeName(f.Default), f.Type)
		}

		if problems := f.check(f.Default); len(problems) > 0 {
			return fmt.Errorf("%w: %s", ErrDefaultInvalid, problems[0])
		}
	}

	return nil
}

func typeName(v Value) string {
	if v.IsZero() {
		return "null"
	}

	return string(v.Type())
}
