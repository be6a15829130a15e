// Package models defines data structures used throughout the feedback application.
package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Role identifies the authorization class of an account
type Role string

const (
	// RoleUser is a regular end user who submits feedback
	RoleUser Role = "user"
	// RoleAdmin is an administrator; with an organization it is a company
	// admin, without one it is a super-admin authorized over all tenants
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account represents a known account in the system
type Account struct {
	ID           string         `json:"id" yaml:"id"`
	Username     string         `json:"username" yaml:"username"`
	Email        sql.NullString `json:"email" yaml:"email"`
	Role         Role           `json:"role" yaml:"role"`
	Organization sql.NullString `json:"organization" yaml:"organization"`
	// Ephemeral marks accounts synthesized by a permissive login for an
	// unknown username; such accounts are non-authoritative.
	Ephemeral bool      `json:"ephemeral" yaml:"ephemeral"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// IsAdmin reports whether the account has the admin role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// IsSuperAdmin reports whether the account is an admin with no organization
// affiliation, authorized over all organizations.
func (a *Account) IsSuperAdmin() bool {
	return a.Role == RoleAdmin && !a.Organization.Valid
}

// Scope derives the access scope for store queries from the account.
// Scopes are built only from authenticated session state, never from
// request input.
func (a *Account) Scope() AccessScope {
	scope := AccessScope{AccountID: a.ID, Role: a.Role}
	if a.Organization.Valid {
		scope.Organization = a.Organization.String
	}
	return scope
}

// MarshalJSON customizes JSON marshaling for Account to handle sql null types properly
func (a Account) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID           string    `json:"id"`
		Username     string    `json:"username"`
		Email        *string   `json:"email"`
		Role         Role      `json:"role"`
		Organization *string   `json:"organization"`
		Ephemeral    bool      `json:"ephemeral"`
		CreatedAt    time.Time `json:"created_at"`
	}{
		ID:           a.ID,
		Username:     a.Username,
		Email:        nullStringToPointer(a.Email),
		Role:         a.Role,
		Organization: nullStringToPointer(a.Organization),
		Ephemeral:    a.Ephemeral,
		CreatedAt:    a.CreatedAt,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON, mapping JSON nulls back
// onto the sql null types.
func (a *Account) UnmarshalJSON(data []byte) error {
	aux := struct {
		ID           string    `json:"id"`
		Username     string    `json:"username"`
		Email        *string   `json:"email"`
		Role         Role      `json:"role"`
		Organization *string   `json:"organization"`
		Ephemeral    bool      `json:"ephemeral"`
		CreatedAt    time.Time `json:"created_at"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.ID = aux.ID
	a.Username = aux.Username
	a.Email = pointerToNullString(aux.Email)
	a.Role = aux.Role
	a.Organization = pointerToNullString(aux.Organization)
	a.Ephemeral = aux.Ephemeral
	a.CreatedAt = aux.CreatedAt
	return nil
}

// AccessScope is the authorization token handed to store queries.
// The store enforces the visibility table itself instead of trusting
// callers to request the right filter.
type AccessScope struct {
	AccountID    string
	Role         Role
	Organization string // empty for users without affiliation and for super-admins
}

// IsSuperAdmin reports whether the scope covers all organizations
func (s AccessScope) IsSuperAdmin() bool {
	return s.Role == RoleAdmin && s.Organization == ""
}

func nullStringToPointer(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func nullTimeToPointer(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

func pointerToNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func pointerToNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// NullString builds a valid sql.NullString; an empty value stays null
func NullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
