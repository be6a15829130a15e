package di

import (
	"context"
	"testing"

	"feedbackhub/internal/config"
	"feedbackhub/internal/observability"
	"feedbackhub/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContainer() *ServiceContainer {
	cfg := &config.Config{}
	cfg.Auth.AllowEphemeralLogins = true
	cfg.IsTest = true
	logger := observability.NewLogger(&config.OpenTelemetryConfig{EnableLogging: false})
	return NewServiceContainer(cfg, logger)
}

func TestServiceContainer_Initialize(t *testing.T) {
	container := newTestContainer()
	ctx := context.Background()

	require.NoError(t, container.Initialize(ctx))

	identityService, err := container.GetIdentityService()
	require.NoError(t, err)
	feedbackService, err := container.GetFeedbackService()
	require.NoError(t, err)
	emailService, err := container.GetEmailService()
	require.NoError(t, err)

	// Seed fixtures are applied during initialization
	accounts, err := identityService.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 4)

	records, err := feedbackService.GetAllFeedbackSortedByRecency(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	// Test mode wires the recording email double
	_, ok := emailService.(*services.TestEmailService)
	assert.True(t, ok)
}

func TestServiceContainer_Initialize_SeedDisabled(t *testing.T) {
	container := newTestContainer()
	container.cfg.Seed.Disabled = true
	ctx := context.Background()

	require.NoError(t, container.Initialize(ctx))

	identityService, err := container.GetIdentityService()
	require.NoError(t, err)
	accounts, err := identityService.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestServiceContainer_GetService(t *testing.T) {
	container := newTestContainer()
	require.NoError(t, container.Initialize(context.Background()))

	svc, err := container.GetService("identity")
	require.NoError(t, err)
	assert.NotNil(t, svc)

	_, err = container.GetService("missing")
	assert.Error(t, err)
}

func TestGetServiceAs(t *testing.T) {
	container := newTestContainer()
	require.NoError(t, container.Initialize(context.Background()))

	identityService, err := GetServiceAs[*services.IdentityService](container, "identity")
	require.NoError(t, err)
	assert.NotNil(t, identityService)

	// Wrong type assertion fails cleanly
	_, err = GetServiceAs[*services.FeedbackService](container, "identity")
	assert.Error(t, err)
}

func TestServiceContainer_Accessors(t *testing.T) {
	container := newTestContainer()

	assert.NotNil(t, container.GetConfig())
	assert.NotNil(t, container.GetLogger())
}

func TestServiceContainer_Shutdown(t *testing.T) {
	container := newTestContainer()
	require.NoError(t, container.Initialize(context.Background()))
	assert.NoError(t, container.Shutdown(context.Background()))
}
