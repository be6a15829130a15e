package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"strings"
	"time"

	"feedbackhub/internal/config"
	"feedbackhub/internal/models"
	"feedbackhub/internal/observability"
	contextutils "feedbackhub/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

//go:embed data/default_seed.yaml
var defaultSeedYAML []byte

// seedSchema validates the shape of an external seed file before the struct
// level checks run. Catches misspelled keys and wrong scalar types early.
const seedSchema = `{
	"type": "object",
	"properties": {
		"accounts": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"username": {"type": "string"},
					"email": {"type": "string"},
					"role": {"type": "string", "enum": ["user", "admin"]},
					"organization": {"type": "string"}
				},
				"required": ["username", "role"],
				"additionalProperties": false
			}
		},
		"feedback": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"id": {"type": "string"},
					"author_id": {"type": "string"},
					"author_username": {"type": "string"},
					"entity": {"type": "string"},
					"organization": {"type": "string"},
					"category": {"type": "string", "enum": ["complaint", "suggestion", "compliment"]},
					"description": {"type": "string"},
					"contact_email": {"type": "string"},
					"status": {"type": "string", "enum": ["pending", "reviewed", "resolved"]},
					"admin_response": {"type": "string"},
					"created_at": {"type": "string"},
					"resolved_at": {"type": "string"}
				},
				"required": ["author_id", "entity", "organization", "category", "description"],
				"additionalProperties": false
			}
		}
	},
	"additionalProperties": false
}`

// SeedAccount is one account fixture in a seed file
type SeedAccount struct {
	ID           string `yaml:"id" json:"id"`
	Username     string `yaml:"username" json:"username" validate:"required"`
	Email        string `yaml:"email" json:"email" validate:"omitempty,email"`
	Role         string `yaml:"role" json:"role" validate:"required,oneof=user admin"`
	Organization string `yaml:"organization" json:"organization"`
}

// SeedFeedback is one feedback fixture in a seed file
type SeedFeedback struct {
	ID             string     `yaml:"id" json:"id"`
	AuthorID       string     `yaml:"author_id" json:"author_id" validate:"required"`
	AuthorUsername string     `yaml:"author_username" json:"author_username"`
	Entity         string     `yaml:"entity" json:"entity" validate:"required"`
	Organization   string     `yaml:"organization" json:"organization" validate:"required"`
	Category       string     `yaml:"category" json:"category" validate:"required,oneof=complaint suggestion compliment"`
	Description    string     `yaml:"description" json:"description" validate:"required"`
	ContactEmail   string     `yaml:"contact_email" json:"contact_email" validate:"omitempty,email"`
	Status         string     `yaml:"status" json:"status" validate:"omitempty,oneof=pending reviewed resolved"`
	AdminResponse  string     `yaml:"admin_response" json:"admin_response"`
	CreatedAt      time.Time  `yaml:"created_at" json:"created_at"`
	ResolvedAt     *time.Time `yaml:"resolved_at" json:"resolved_at"`
}

// SeedData is the full contents of a seed file
type SeedData struct {
	Accounts []SeedAccount  `yaml:"accounts" json:"accounts" validate:"dive"`
	Feedback []SeedFeedback `yaml:"feedback" json:"feedback" validate:"dive"`
}

// SeedService loads fixture data into the in-memory stores at startup.
type SeedService struct {
	cfg      *config.Config
	logger   *observability.Logger
	identity *IdentityService
	feedback *FeedbackService
	validate *validator.Validate
}

// NewSeedService creates a new SeedService instance.
func NewSeedService(cfg *config.Config, logger *observability.Logger, identity *IdentityService, feedback *FeedbackService) *SeedService {
	return &SeedService{
		cfg:      cfg,
		logger:   logger,
		identity: identity,
		feedback: feedback,
		validate: validator.New(),
	}
}

// DefaultSeed returns the embedded demo fixtures.
func DefaultSeed() (result0 *SeedData, err error) {
	var data SeedData
	if err := yaml.Unmarshal(defaultSeedYAML, &data); err != nil {
		return nil, contextutils.WrapError(err, "failed to parse embedded seed data")
	}
	return &data, nil
}

// LoadSeedFile reads and validates an external seed file.
func (s *SeedService) LoadSeedFile(path string) (result0 *SeedData, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to read seed file %s", path)
	}

	// Round-trip through generic YAML so the JSON schema can see the
	// document structure.
	var doc interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to parse seed file %s", path)
	}
	jsonBytes, err := json.Marshal(normalizeYAML(doc))
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to convert seed data to JSON")
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(seedSchema),
		gojsonschema.NewBytesLoader(jsonBytes),
	)
	if err != nil {
		return nil, contextutils.WrapError(err, "seed schema validation failed")
	}
	if !result.Valid() {
		var messages []string
		for _, e := range result.Errors() {
			messages = append(messages, e.String())
		}
		return nil, contextutils.ErrorWithContextf("seed file failed schema validation: %s", strings.Join(messages, "; "))
	}

	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, contextutils.WrapErrorf(err, "failed to parse seed file %s", path)
	}
	if err := s.validate.Struct(&data); err != nil {
		return nil, contextutils.WrapError(err, "seed file failed validation")
	}
	return &data, nil
}

// Apply loads the configured seed into the stores. A missing or disabled
// seed is not an error; startup continues with empty stores.
func (s *SeedService) Apply(ctx context.Context) (err error) {
	ctx, span := observability.TraceSeedFunction(ctx, "apply")
	defer observability.FinishSpan(span, &err)

	if s.cfg.Seed.Disabled {
		s.logger.Info(ctx, "Seeding disabled, starting with empty stores", nil)
		return nil
	}

	var data *SeedData
	if s.cfg.Seed.File != "" {
		data, err = s.LoadSeedFile(s.cfg.Seed.File)
		if err != nil {
			return err
		}
	} else {
		data, err = DefaultSeed()
		if err != nil {
			return err
		}
	}

	span.SetAttributes(
		attribute.Int("seed.accounts", len(data.Accounts)),
		attribute.Int("seed.feedback", len(data.Feedback)),
	)
	return s.applyData(ctx, data)
}

func (s *SeedService) applyData(ctx context.Context, data *SeedData) error {
	usernames := make(map[string]string, len(data.Accounts))
	for i := range data.Accounts {
		sa := &data.Accounts[i]
		account := &models.Account{
			ID:           sa.ID,
			Username:     sa.Username,
			Email:        models.NullString(sa.Email),
			Role:         models.Role(sa.Role),
			Organization: models.NullString(sa.Organization),
		}
		created, err := s.identity.CreateAccount(ctx, account)
		if err != nil {
			return contextutils.WrapErrorf(err, "failed to seed account %q", sa.Username)
		}
		usernames[created.ID] = created.Username
	}

	for i := range data.Feedback {
		sf := &data.Feedback[i]
		authorUsername := sf.AuthorUsername
		if authorUsername == "" {
			authorUsername = usernames[sf.AuthorID]
		}
		status := models.FeedbackStatus(sf.Status)
		if sf.Status == "" {
			status = models.StatusPending
		}
		record := &models.FeedbackRecord{
			ID:             sf.ID,
			AuthorID:       sf.AuthorID,
			AuthorUsername: authorUsername,
			Entity:         sf.Entity,
			Organization:   sf.Organization,
			Category:       models.FeedbackCategory(sf.Category),
			Description:    sf.Description,
			ContactEmail:   sf.ContactEmail,
			Status:         status,
			AdminResponse:  models.NullString(sf.AdminResponse),
			CreatedAt:      sf.CreatedAt,
		}
		if sf.ResolvedAt != nil {
			record.ResolvedAt.Time = *sf.ResolvedAt
			record.ResolvedAt.Valid = true
		}
		if _, err := s.feedback.ImportRecord(ctx, record); err != nil {
			return contextutils.WrapErrorf(err, "failed to seed feedback %q", sf.ID)
		}
	}

	s.logger.Info(ctx, "Seed data applied", map[string]interface{}{
		"accounts": len(data.Accounts),
		"feedback": len(data.Feedback),
	})
	return nil
}

// normalizeYAML converts YAML decoded values into JSON-compatible ones.
// yaml.v3 produces map[string]interface{} keys already but nested timestamps
// decode as time.Time, which json.Marshal renders as RFC3339 strings, so only
// the generic containers need walking.
func normalizeYAML(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeYAML(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeYAML(item)
		}
		return out
	default:
		return v
	}
}
