// Package di provides a dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"sync"

	"feedbackhub/internal/config"
	"feedbackhub/internal/observability"
	"feedbackhub/internal/serviceinterfaces"
	"feedbackhub/internal/services"
	contextutils "feedbackhub/internal/utils"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetIdentityService() (serviceinterfaces.IdentityServiceInterface, error)
	GetFeedbackService() (serviceinterfaces.FeedbackServiceInterface, error)
	GetEmailService() (serviceinterfaces.EmailService, error)
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize sets up all services and applies seed data
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.initializeServices(ctx)

	seedService, ok := sc.services["seed"].(*services.SeedService)
	if !ok {
		return contextutils.ErrorWithContextf("seed service has incorrect type")
	}
	if err := seedService.Apply(ctx); err != nil {
		return contextutils.WrapErrorf(err, "failed to apply seed data")
	}

	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetIdentityService returns the identity service
func (sc *ServiceContainer) GetIdentityService() (serviceinterfaces.IdentityServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.IdentityServiceInterface](sc, "identity")
}

// GetFeedbackService returns the feedback service
func (sc *ServiceContainer) GetFeedbackService() (serviceinterfaces.FeedbackServiceInterface, error) {
	return GetServiceAs[serviceinterfaces.FeedbackServiceInterface](sc, "feedback")
}

// GetEmailService returns the email service
func (sc *ServiceContainer) GetEmailService() (serviceinterfaces.EmailService, error) {
	return GetServiceAs[serviceinterfaces.EmailService](sc, "email")
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// cleanup handles shutdown of all services
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errs []error

	for name := range sc.services {
		if lifecycleService, ok := sc.services[name].(interface{ Shutdown(context.Context) error }); ok {
			sc.logger.Info(ctx, "Shutting down service", map[string]interface{}{"service": name})
			if err := lifecycleService.Shutdown(ctx); err != nil {
				sc.logger.Error(ctx, "Failed to shutdown service", err, map[string]interface{}{"service": name})
				errs = append(errs, contextutils.WrapErrorf(err, "service %s shutdown failed", name))
			}
		}
	}

	// Shutdown funcs in reverse order of registration
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errs)
	}
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(_ context.Context) {
	// In-memory stores
	identityService := services.NewIdentityService(sc.cfg, sc.logger)
	sc.services["identity"] = identityService

	feedbackService := services.NewFeedbackService(sc.cfg, sc.logger)
	sc.services["feedback"] = feedbackService

	// Email service (test double in test mode)
	emailService := services.CreateEmailService(sc.cfg, sc.logger)
	sc.services["email"] = emailService

	// Seed service populates the stores at startup
	seedService := services.NewSeedService(sc.cfg, sc.logger, identityService, feedbackService)
	sc.services["seed"] = seedService
}
