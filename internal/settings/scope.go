package settings

import (
	"errors"
	"strings"
	"time"
)

const (
	// GlobalName is the literal selecting the global scope on the command line and in the API.
	GlobalName = "global"

	// ReservedTenantID is the tenant id the store uses for the global scope.
	ReservedTenantID = "_global"
)

var (
	// ErrEmptyScope is returned when a scope string is empty.
	ErrEmptyScope = errors.New("scope can not be empty")
	// ErrReservedTenantID is returned for a tenant id colliding with the global sentinel.
	ErrReservedTenantID = errors.New("tenant id " + ReservedTenantID + " is reserved")
)

// Scope selects whose settings an operation reads or writes: one tenant or the global scope.
type Scope struct {
	global   bool
	tenantID string
}

// Global returns the global scope.
func Global() Scope {
	return Scope{global: true}
}

// Tenant returns the scope of a single tenant.
func Tenant(id string) Scope {
	return Scope{tenantID: id}
}

// ParseScope maps "global" to the global scope and anything else to a tenant scope.
func ParseScope(s string) (Scope, error) {
	s = strings.TrimSpace(s)

	switch {
	case s == "":
		return Scope{}, ErrEmptyScope
	case strings.EqualFold(s, GlobalName):
		return Global(), nil
	case s == ReservedTenantID:
		return Scope{}, ErrReservedTenantID
	default:
		return Tenant(s), nil
	}
}

// IsGlobal reports whether s is the global scope.
func (s Scope) IsGlobal() bool {
	return s.global
}

// TenantID returns the tenant id, empty for the global scope.
func (s Scope) TenantID() string {
	return s.tenantID
}

// Valid reports whether s is the global scope or a tenant with a usable id.
func (s Scope) Valid() bool {
	return s.global || (s.tenantID != "" && s.tenantID != ReservedTenantID)
}

// String returns "global" or the tenant id.
func (s Scope) String() string {
	if s.global {
		return GlobalName
	}

	return s.tenantID
}

// Entry is one stored setting of a scope.
type Entry struct {
	Key       string    `json:"key"`
	Value     Value     `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}
