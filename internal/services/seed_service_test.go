package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"feedbackhub/internal/config"
	"feedbackhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSeedService(cfg *config.Config) (*SeedService, *IdentityService, *FeedbackService) {
	logger := newTestLogger()
	identity := NewIdentityService(cfg, logger)
	feedback := NewFeedbackService(cfg, logger)
	return NewSeedService(cfg, logger, identity, feedback), identity, feedback
}

func TestDefaultSeed(t *testing.T) {
	data, err := DefaultSeed()
	require.NoError(t, err)

	assert.Len(t, data.Accounts, 4)
	assert.Len(t, data.Feedback, 3)

	assert.Equal(t, "admin", data.Accounts[0].Username)
	assert.Equal(t, "admin", data.Accounts[0].Role)
	assert.Empty(t, data.Accounts[0].Organization)

	assert.Equal(t, "resolved", data.Feedback[2].Status)
	require.NotNil(t, data.Feedback[2].ResolvedAt)
}

func TestSeedService_Apply(t *testing.T) {
	cfg := newTestConfig()
	seed, identity, feedback := newTestSeedService(cfg)

	err := seed.Apply(context.Background())
	require.NoError(t, err)

	accounts, err := identity.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Len(t, accounts, 4)

	admin, err := identity.GetAccountByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsSuperAdmin())

	records, err := feedback.GetAllFeedbackSortedByRecency(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	// Newest first by created_at
	assert.Equal(t, "1", records[0].ID)
	assert.Equal(t, "3", records[2].ID)

	resolved, err := feedback.GetFeedbackByID(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, resolved.Status)
	assert.True(t, resolved.ResolvedAt.Valid)
	assert.True(t, resolved.AdminResponse.Valid)
}

func TestSeedService_Apply_Disabled(t *testing.T) {
	cfg := newTestConfig()
	cfg.Seed.Disabled = true
	seed, identity, feedback := newTestSeedService(cfg)

	err := seed.Apply(context.Background())
	require.NoError(t, err)

	accounts, err := identity.ListAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)

	records, err := feedback.GetAllFeedbackSortedByRecency(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSeedService_LoadSeedFile(t *testing.T) {
	cfg := newTestConfig()
	seed, _, _ := newTestSeedService(cfg)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `accounts:
  - username: solo
    role: user
    organization: Solo Org
feedback:
  - author_id: solo
    entity: Office
    organization: Solo Org
    category: suggestion
    description: More plants please
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	data, err := seed.LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, data.Accounts, 1)
	require.Len(t, data.Feedback, 1)
	assert.Equal(t, "solo", data.Accounts[0].Username)
	assert.Equal(t, "suggestion", data.Feedback[0].Category)
}

func TestSeedService_LoadSeedFile_InvalidSchema(t *testing.T) {
	cfg := newTestConfig()
	seed, _, _ := newTestSeedService(cfg)

	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown role",
			content: `accounts:
  - username: solo
    role: overlord
`,
		},
		{
			name: "missing description",
			content: `feedback:
  - author_id: solo
    entity: Office
    organization: Solo Org
    category: suggestion
`,
		},
		{
			name: "unknown field",
			content: `accounts:
  - username: solo
    role: user
    superpowers: true
`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "seed.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := seed.LoadSeedFile(path)
			assert.Error(t, err)
		})
	}
}

func TestSeedService_Apply_FromFile(t *testing.T) {
	cfg := newTestConfig()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `accounts:
  - id: custom1
    username: custom_user
    role: user
    organization: Custom Org
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	cfg.Seed.File = path

	seed, identity, _ := newTestSeedService(cfg)
	err := seed.Apply(context.Background())
	require.NoError(t, err)

	account, err := identity.GetAccountByUsername(context.Background(), "custom_user")
	require.NoError(t, err)
	assert.Equal(t, "custom1", account.ID)

	// The default fixtures are not loaded when a seed file is given
	_, err = identity.GetAccountByUsername(context.Background(), "admin")
	assert.Error(t, err)
}
