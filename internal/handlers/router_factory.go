package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"feedbackhub/internal/config"
	"feedbackhub/internal/middleware"
	"feedbackhub/internal/observability"
	"feedbackhub/internal/serviceinterfaces"
	"feedbackhub/internal/version"
)

// NewRouter creates a new router with all the necessary middleware and routes
func NewRouter(
	cfg *config.Config,
	identityService serviceinterfaces.IdentityServiceInterface,
	feedbackService serviceinterfaces.FeedbackServiceInterface,
	emailService serviceinterfaces.EmailService,
	logger *observability.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Add HTTP request logging middleware using our observability logger
	router.Use(func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := map[string]interface{}{
			"http.method":      c.Request.Method,
			"http.path":        c.Request.URL.Path,
			"http.status_code": statusCode,
			"http.latency_ms":  latency.Milliseconds(),
			"http.client_ip":   c.ClientIP(),
			"http.user_agent":  c.Request.UserAgent(),
		}

		if len(c.Errors) > 0 {
			fields["http.error"] = c.Errors.String()
		}

		if statusCode >= 400 {
			if c.Writer.Size() > 0 {
				fields["http.response_size"] = c.Writer.Size()
			}
			if statusCode >= 500 {
				fields["http.error_type"] = "server_error"
			} else {
				fields["http.error_type"] = "client_error"
			}
		}

		if statusCode >= 500 {
			logger.Error(c.Request.Context(), "HTTP request failed", nil, fields)
		} else if statusCode >= 400 {
			logger.Warn(c.Request.Context(), "HTTP request warning", fields)
		} else {
			logger.Info(c.Request.Context(), "HTTP request", fields)
		}
	})

	// Health check endpoint (defined before any middleware)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "feedbackhub"})
	})

	// Add OpenTelemetry middleware for HTTP tracing and context propagation with automatic error attributes
	router.Use(observability.GinMiddlewareWithErrorHandling("feedbackhub"))

	// Disable automatic redirection for trailing slashes, which is better for APIs
	router.RedirectTrailingSlash = false

	// Setup CORS middleware
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Setup session middleware
	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	sessionOpts := sessions.Options{
		Path:     config.SessionPath,
		MaxAge:   int(config.SessionMaxAge.Seconds()),
		HttpOnly: config.SessionHTTPOnly,
		Secure:   config.SessionSecure,
	}
	if cfg.Server.Debug {
		sessionOpts.SameSite = http.SameSiteDefaultMode
	} else {
		sessionOpts.SameSite = http.SameSiteLaxMode
		sessionOpts.Secure = true
	}
	store.Options(sessionOpts)
	router.Use(sessions.Sessions(config.SessionName, store))

	// Setup Gin mode
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	// Security middleware
	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.ContentSecurityPolicy = config.DefaultCSP
	router.Use(secure.New(secureConfig))

	// Initialize handlers
	authHandler := NewAuthHandler(identityService, cfg, logger)
	feedbackHandler := NewFeedbackHandler(feedbackService, identityService, emailService, cfg, logger)
	accountHandler := NewAccountHandler(identityService, cfg, logger)

	v1 := router.Group("/v1")
	{
		// Version endpoint (no auth)
		v1.GET("/version", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"service":   "feedbackhub",
				"version":   version.Version,
				"commit":    version.Commit,
				"buildTime": version.BuildTime,
			})
		})

		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/status", authHandler.Status)
			auth.GET("/check", middleware.RequireAuth(), authHandler.Check)
		}

		feedback := v1.Group("/feedback")
		feedback.Use(middleware.RequireAuth())
		{
			feedback.POST("", feedbackHandler.Submit)
			feedback.GET("", feedbackHandler.List)
			feedback.GET("/stats", feedbackHandler.Stats)
			feedback.GET("/:id", feedbackHandler.GetByID)
		}

		organizations := v1.Group("/organizations")
		organizations.Use(middleware.RequireAuth())
		{
			organizations.GET("", feedbackHandler.Organizations)
			organizations.GET("/contact", feedbackHandler.OrganizationContact)
		}

		accounts := v1.Group("/accounts")
		accounts.Use(middleware.RequireAuth())
		{
			accounts.GET("/:id", accountHandler.Get)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAdmin(identityService))
		{
			admin.PATCH("/feedback/:id/status", feedbackHandler.UpdateStatus)
			admin.GET("/accounts", accountHandler.List)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}
