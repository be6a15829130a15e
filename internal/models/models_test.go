package models

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccount_IsAdmin(t *testing.T) {
	user := &Account{Role: RoleUser}
	admin := &Account{Role: RoleAdmin}

	assert.False(t, user.IsAdmin())
	assert.True(t, admin.IsAdmin())
}

func TestAccount_IsSuperAdmin(t *testing.T) {
	superAdmin := &Account{Role: RoleAdmin}
	companyAdmin := &Account{Role: RoleAdmin, Organization: NullString("ABC Organization")}
	user := &Account{Role: RoleUser}

	assert.True(t, superAdmin.IsSuperAdmin())
	assert.False(t, companyAdmin.IsSuperAdmin())
	assert.False(t, user.IsSuperAdmin())
}

func TestAccount_Scope(t *testing.T) {
	account := &Account{
		ID:           "acc-1",
		Role:         RoleAdmin,
		Organization: NullString("ABC Organization"),
	}

	scope := account.Scope()
	assert.Equal(t, "acc-1", scope.AccountID)
	assert.Equal(t, RoleAdmin, scope.Role)
	assert.Equal(t, "ABC Organization", scope.Organization)
	assert.False(t, scope.IsSuperAdmin())

	account.Organization = sql.NullString{}
	assert.True(t, account.Scope().IsSuperAdmin())
}

func TestAccount_JSONRoundTrip(t *testing.T) {
	account := Account{
		ID:           "acc-1",
		Username:     "alice",
		Email:        NullString("alice@example.com"),
		Role:         RoleUser,
		Organization: sql.NullString{},
		Ephemeral:    true,
		CreatedAt:    time.Date(2025, 5, 7, 10, 30, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(account)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"organization":null`)
	assert.Contains(t, string(payload), `"email":"alice@example.com"`)
	assert.NotContains(t, string(payload), "password")

	var decoded Account
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, account, decoded)
}

func TestFeedbackRecord_JSONRoundTrip(t *testing.T) {
	record := FeedbackRecord{
		ID:             "1",
		AuthorID:       "acc-1",
		AuthorUsername: "alice",
		Entity:         "IT Department",
		Organization:   "ABC Organization",
		Category:       CategoryComplaint,
		Description:    "Slow computers",
		Status:         StatusResolved,
		AdminResponse:  NullString("Replaced the hardware"),
		CreatedAt:      time.Date(2025, 5, 7, 10, 30, 0, 0, time.UTC),
		ResolvedAt:     sql.NullTime{Time: time.Date(2025, 5, 8, 11, 20, 0, 0, time.UTC), Valid: true},
	}

	payload, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"admin_response":"Replaced the hardware"`)

	var decoded FeedbackRecord
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, record, decoded)
}

func TestFeedbackRecord_JSONNulls(t *testing.T) {
	record := FeedbackRecord{
		ID:        "1",
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	payload, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"admin_response":null`)
	assert.Contains(t, string(payload), `"resolved_at":null`)

	var decoded FeedbackRecord
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.False(t, decoded.AdminResponse.Valid)
	assert.False(t, decoded.ResolvedAt.Valid)
}

func TestFeedbackCategory_Valid(t *testing.T) {
	assert.True(t, CategoryComplaint.Valid())
	assert.True(t, CategorySuggestion.Valid())
	assert.True(t, CategoryCompliment.Valid())
	assert.False(t, FeedbackCategory("rant").Valid())
	assert.False(t, FeedbackCategory("").Valid())
}

func TestFeedbackStatus_Valid(t *testing.T) {
	assert.True(t, StatusPending.Valid())
	assert.True(t, StatusReviewed.Valid())
	assert.True(t, StatusResolved.Valid())
	assert.False(t, FeedbackStatus("archived").Valid())
	assert.False(t, FeedbackStatus("").Valid())
}

func TestNullString(t *testing.T) {
	assert.False(t, NullString("").Valid)
	ns := NullString("value")
	assert.True(t, ns.Valid)
	assert.Equal(t, "value", ns.String)
}
