// Package settings describes tenant settings: the typed values stored per key,
// the declarative schema every tenant is reconciled against, and the validator
// checking candidate values against that schema.
//
// A schema is a code level constant (see Branding). It is persisted per scope
// as a JSON document by the schemadoc controller, while the values themselves
// live one row per key in the settings table.
package settings
