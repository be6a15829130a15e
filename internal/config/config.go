// Package config handles application configuration loading from a YAML file
// with environment variable overrides.
package config

import (
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	contextutils "feedbackhub/internal/utils"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Authentication behavior
	Auth AuthConfig `json:"auth" yaml:"auth"`

	// Feedback lifecycle policy
	Feedback FeedbackConfig `json:"feedback" yaml:"feedback"`

	// Organization contact directory
	Organizations OrganizationsConfig `json:"organizations" yaml:"organizations"`

	// Seed data configuration
	Seed SeedConfig `json:"seed" yaml:"seed"`

	// OpenTelemetry Configuration
	OpenTelemetry OpenTelemetryConfig `json:"open_telemetry" yaml:"open_telemetry"`

	// Email Configuration
	Email EmailConfig `json:"email" yaml:"email"`

	// Internal fields
	IsTest bool `json:"is_test" yaml:"is_test"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port          string   `json:"port" yaml:"port"`
	SessionSecret string   `json:"session_secret" yaml:"session_secret"`
	Debug         bool     `json:"debug" yaml:"debug"`
	LogLevel      string   `json:"log_level" yaml:"log_level"`
	AppBaseURL    string   `json:"app_base_url" yaml:"app_base_url"`
	CORSOrigins   []string `json:"cors_origins" yaml:"cors_origins"`
}

// AuthConfig represents authentication-related configuration.
// AllowEphemeralLogins preserves the demo behavior where a login for an
// unknown username synthesizes a temporary account instead of failing;
// such accounts are flagged as ephemeral in API responses.
type AuthConfig struct {
	SignupsDisabled      bool `json:"signups_disabled" yaml:"signups_disabled"`
	AllowEphemeralLogins bool `json:"allow_ephemeral_logins" yaml:"allow_ephemeral_logins"`
}

// FeedbackConfig represents feedback lifecycle policy configuration.
// OverwriteResolutionTimestamp controls whether re-resolving a record
// refreshes its resolution timestamp; when false the timestamp marks the
// first resolution and is never updated afterwards.
type FeedbackConfig struct {
	OverwriteResolutionTimestamp bool `json:"overwrite_resolution_timestamp" yaml:"overwrite_resolution_timestamp"`
}

// OrganizationsConfig holds the per-organization contact directory
type OrganizationsConfig struct {
	Contacts       map[string]string `json:"contacts" yaml:"contacts"`
	DefaultContact string            `json:"default_contact" yaml:"default_contact"`
}

// SeedConfig controls demo seed data loading at startup
type SeedConfig struct {
	Disabled bool   `json:"disabled" yaml:"disabled"`
	File     string `json:"file" yaml:"file"`
}

// OpenTelemetryConfig represents OpenTelemetry configuration
type OpenTelemetryConfig struct {
	Endpoint       string            `json:"endpoint" yaml:"endpoint"`               // Default: "http://localhost:4317"
	Protocol       string            `json:"protocol" yaml:"protocol"`               // "grpc" or "http", default: "grpc"
	Insecure       bool              `json:"insecure" yaml:"insecure"`               // Default: true (for localhost)
	Headers        map[string]string `json:"headers" yaml:"headers"`                 // For authenticated endpoints
	ServiceName    string            `json:"service_name" yaml:"service_name"`       // Default: "feedbackhub"
	ServiceVersion string            `json:"service_version" yaml:"service_version"` // From version package
	EnableTracing  bool              `json:"enable_tracing" yaml:"enable_tracing"`   // Default: true
	EnableMetrics  bool              `json:"enable_metrics" yaml:"enable_metrics"`   // Default: true
	EnableLogging  bool              `json:"enable_logging" yaml:"enable_logging"`   // Default: true
	UseAutoSDK     bool              `json:"use_auto_sdk" yaml:"use_auto_sdk"`       // Use auto-instrumentation SDK
	SamplingRate   float64           `json:"sampling_rate" yaml:"sampling_rate"`     // Default: 1.0 (100%)
}

// EmailConfig represents email/SMTP configuration for feedback forwarding
type EmailConfig struct {
	Enabled bool       `json:"enabled" yaml:"enabled"`
	SMTP    SMTPConfig `json:"smtp" yaml:"smtp"`
}

// SMTPConfig holds SMTP connection settings
type SMTPConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
	From     string `json:"from_address" yaml:"from_address"`
}

// ContactForOrganization returns the contact address configured for an
// organization, falling back to the default contact.
func (c *Config) ContactForOrganization(organization string) string {
	if c.Organizations.Contacts != nil {
		if contact, ok := c.Organizations.Contacts[organization]; ok && contact != "" {
			return contact
		}
	}
	if c.Organizations.DefaultContact != "" {
		return c.Organizations.DefaultContact
	}
	return "contact@company.com"
}

// KnownOrganizations returns the organizations present in the contact
// directory, sorted.
func (c *Config) KnownOrganizations() []string {
	orgs := make([]string, 0, len(c.Organizations.Contacts))
	for org := range c.Organizations.Contacts {
		orgs = append(orgs, org)
	}
	sort.Strings(orgs)
	return orgs
}

// IsSignupDisabled returns whether new signups are disabled
func (c *Config) IsSignupDisabled() bool {
	return c.Auth.SignupsDisabled
}

// NewConfig loads configuration from YAML file first, then overrides with environment variables
func NewConfig() (result0 *Config, err error) {
	config, err := loadConfigWithOverrides()
	if err != nil {
		return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config: %w", err)
	}

	config.overrideFromEnv()

	return config, nil
}

// overrideFromEnv overrides config values with environment variables using reflection
func (c *Config) overrideFromEnv() {
	overrideStructFromEnvWithPrefix(c, "")
}

// overrideStructFromEnvWithPrefix recursively overrides struct fields with environment variables
func overrideStructFromEnvWithPrefix(v interface{}, prefix string) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return
	}

	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		// Skip unexported fields
		if !field.CanSet() {
			continue
		}

		yamlTag := fieldType.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		yamlTag = strings.Split(yamlTag, ",")[0]

		// Convert yaml tag to environment variable name
		envKey := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
		if prefix != "" {
			envKey = prefix + "_" + envKey
		}

		switch field.Kind() {
		case reflect.String:
			if envVal := os.Getenv(envKey); envVal != "" {
				field.SetString(envVal)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if intVal, err := strconv.ParseInt(envVal, 10, 64); err == nil {
					field.SetInt(intVal)
				}
			}
		case reflect.Float32, reflect.Float64:
			if envVal := os.Getenv(envKey); envVal != "" {
				if floatVal, err := strconv.ParseFloat(envVal, 64); err == nil {
					field.SetFloat(floatVal)
				}
			}
		case reflect.Bool:
			if envVal := os.Getenv(envKey); envVal != "" {
				if boolVal, err := strconv.ParseBool(envVal); err == nil {
					field.SetBool(boolVal)
				}
			}
		case reflect.Slice:
			if envVal := os.Getenv(envKey); envVal != "" {
				// Handle string slices (like CORS_ORIGINS)
				if field.Type().Elem().Kind() == reflect.String {
					slice := strings.Split(envVal, ",")
					field.Set(reflect.ValueOf(slice))
				}
			}
		case reflect.Struct:
			// Recursively process nested structs with the field name as prefix
			if field.CanAddr() {
				fieldPrefix := strings.ToUpper(strings.ReplaceAll(yamlTag, "-", "_"))
				if prefix != "" {
					fieldPrefix = prefix + "_" + fieldPrefix
				}
				overrideStructFromEnvWithPrefix(field.Addr().Interface(), fieldPrefix)
			}
		}
	}
}

// loadConfigWithOverrides loads the config file with potential local overrides
func loadConfigWithOverrides() (result0 *Config, err error) {
	// Try to load from environment variable first
	if envPath := os.Getenv("FEEDBACKHUB_CONFIG_FILE"); envPath != "" {
		config, err := loadConfigFromFile(envPath)
		if err != nil {
			return nil, contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to load config from %s: %w", envPath, err)
		}
		return config, nil
	}

	// If no environment variable is set, try default config.yaml
	return loadConfigFromFile("config.yaml")
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (result0 *Config, err error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(yamlFile, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
