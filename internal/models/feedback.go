package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// FeedbackCategory classifies a feedback record
type FeedbackCategory string

const (
	// CategoryComplaint is negative feedback about an entity
	CategoryComplaint FeedbackCategory = "complaint"
	// CategorySuggestion proposes an improvement
	CategorySuggestion FeedbackCategory = "suggestion"
	// CategoryCompliment is positive feedback
	CategoryCompliment FeedbackCategory = "compliment"
)

// Valid reports whether the category is one of the known values
func (c FeedbackCategory) Valid() bool {
	switch c {
	case CategoryComplaint, CategorySuggestion, CategoryCompliment:
		return true
	}
	return false
}

// FeedbackStatus tracks a record through its lifecycle
type FeedbackStatus string

const (
	// StatusPending is the initial state of every submission
	StatusPending FeedbackStatus = "pending"
	// StatusReviewed means an admin has looked at the record
	StatusReviewed FeedbackStatus = "reviewed"
	// StatusResolved means the underlying issue was addressed
	StatusResolved FeedbackStatus = "resolved"
)

// Valid reports whether the status is one of the known values
func (s FeedbackStatus) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusResolved:
		return true
	}
	return false
}

// FeedbackRecord represents a single user-submitted feedback entry.
// Category and organization are immutable after creation; status, admin
// response and the resolution timestamp are the only mutable fields.
type FeedbackRecord struct {
	ID             string           `json:"id" yaml:"id"`
	AuthorID       string           `json:"author_id" yaml:"author_id"`
	AuthorUsername string           `json:"author_username" yaml:"author_username"`
	Entity         string           `json:"entity" yaml:"entity"`
	Organization   string           `json:"organization" yaml:"organization"`
	Category       FeedbackCategory `json:"category" yaml:"category"`
	Description    string           `json:"description" yaml:"description"`
	ContactEmail   string           `json:"contact_email" yaml:"contact_email"`
	Status         FeedbackStatus   `json:"status" yaml:"status"`
	AdminResponse  sql.NullString   `json:"admin_response" yaml:"admin_response"`
	CreatedAt      time.Time        `json:"created_at" yaml:"created_at"`
	ResolvedAt     sql.NullTime     `json:"resolved_at" yaml:"resolved_at"`
}

// MarshalJSON customizes JSON marshaling for FeedbackRecord to handle sql null types properly
func (f FeedbackRecord) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID             string           `json:"id"`
		AuthorID       string           `json:"author_id"`
		AuthorUsername string           `json:"author_username"`
		Entity         string           `json:"entity"`
		Organization   string           `json:"organization"`
		Category       FeedbackCategory `json:"category"`
		Description    string           `json:"description"`
		ContactEmail   string           `json:"contact_email"`
		Status         FeedbackStatus   `json:"status"`
		AdminResponse  *string          `json:"admin_response"`
		CreatedAt      time.Time        `json:"created_at"`
		ResolvedAt     *time.Time       `json:"resolved_at"`
	}{
		ID:             f.ID,
		AuthorID:       f.AuthorID,
		AuthorUsername: f.AuthorUsername,
		Entity:         f.Entity,
		Organization:   f.Organization,
		Category:       f.Category,
		Description:    f.Description,
		ContactEmail:   f.ContactEmail,
		Status:         f.Status,
		AdminResponse:  nullStringToPointer(f.AdminResponse),
		CreatedAt:      f.CreatedAt,
		ResolvedAt:     nullTimeToPointer(f.ResolvedAt),
	})
}

// UnmarshalJSON is the inverse of MarshalJSON, mapping JSON nulls back
// onto the sql null types.
func (f *FeedbackRecord) UnmarshalJSON(data []byte) error {
	aux := struct {
		ID             string           `json:"id"`
		AuthorID       string           `json:"author_id"`
		AuthorUsername string           `json:"author_username"`
		Entity         string           `json:"entity"`
		Organization   string           `json:"organization"`
		Category       FeedbackCategory `json:"category"`
		Description    string           `json:"description"`
		ContactEmail   string           `json:"contact_email"`
		Status         FeedbackStatus   `json:"status"`
		AdminResponse  *string          `json:"admin_response"`
		CreatedAt      time.Time        `json:"created_at"`
		ResolvedAt     *time.Time       `json:"resolved_at"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.ID = aux.ID
	f.AuthorID = aux.AuthorID
	f.AuthorUsername = aux.AuthorUsername
	f.Entity = aux.Entity
	f.Organization = aux.Organization
	f.Category = aux.Category
	f.Description = aux.Description
	f.ContactEmail = aux.ContactEmail
	f.Status = aux.Status
	f.AdminResponse = pointerToNullString(aux.AdminResponse)
	f.CreatedAt = aux.CreatedAt
	f.ResolvedAt = pointerToNullTime(aux.ResolvedAt)
	return nil
}

// StatusCounts computes per-status counts over an already-filtered slice.
// Counts are recomputed on every call; there is no stored aggregate.
func StatusCounts(records []FeedbackRecord) map[FeedbackStatus]int {
	counts := make(map[FeedbackStatus]int, 3)
	for _, r := range records {
		counts[r.Status]++
	}
	return counts
}

// CategoryCounts computes per-category counts over an already-filtered slice
func CategoryCounts(records []FeedbackRecord) map[FeedbackCategory]int {
	counts := make(map[FeedbackCategory]int, 3)
	for _, r := range records {
		counts[r.Category]++
	}
	return counts
}
