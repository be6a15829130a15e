package config

import "time"

// Timeout constants
const (
	// HTTP timeouts
	DefaultHTTPTimeout = 60 * time.Second
	TestTimeout        = 100 * time.Millisecond

	// Session timeouts
	SessionMaxAge = 7 * 24 * time.Hour // 7 days

	// Shutdown timeouts
	ServerShutdownTimeout = 30 * time.Second
)

// Session configuration constants
const (
	// Session settings
	SessionPath     = "/"
	SessionHTTPOnly = true
	SessionSecure   = false // Set to true in production with HTTPS

	// Session name
	SessionName = "feedbackhub-session"
)

// Security configuration constants
const (
	// Content Security Policy
	DefaultCSP = "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:;"
)
