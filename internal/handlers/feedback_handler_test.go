package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"feedbackhub/internal/config"
	"feedbackhub/internal/models"
	"feedbackhub/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedbackTestEnv struct {
	router   *gin.Engine
	cfg      *config.Config
	identity *services.IdentityService
	feedback *services.FeedbackService
	email    *services.TestEmailService
}

// setupFeedbackTestEnv builds the full router over real in-memory services
// populated with the default demo fixtures.
func setupFeedbackTestEnv(t *testing.T) *feedbackTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := newHandlerTestConfig()
	cfg.Server.Debug = true
	cfg.Server.SessionSecret = "test-secret"
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Organizations.Contacts = map[string]string{
		"ABC Organization": "contact@abcorg.com",
		"XYZ Company":      "contact@xyzcompany.com",
	}
	cfg.Organizations.DefaultContact = "contact@company.com"

	logger := newHandlerTestLogger()
	identity := services.NewIdentityService(cfg, logger)
	feedback := services.NewFeedbackService(cfg, logger)
	email := services.NewTestEmailService(cfg, logger)

	seed := services.NewSeedService(cfg, logger, identity, feedback)
	require.NoError(t, seed.Apply(context.Background()))

	return &feedbackTestEnv{
		router:   NewRouter(cfg, identity, feedback, email, logger),
		cfg:      cfg,
		identity: identity,
		feedback: feedback,
		email:    email,
	}
}

// login authenticates through the real login endpoint and returns the
// session cookies. Logins are permissive, so unknown usernames produce
// ephemeral accounts with the requested role and organization.
func (env *feedbackTestEnv) login(t *testing.T, username, role, organization string) []*http.Cookie {
	t.Helper()
	payload, err := json.Marshal(LoginRequest{
		Username:     username,
		Password:     "password",
		Role:         role,
		Organization: organization,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func (env *feedbackTestEnv) doJSON(t *testing.T, method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestFeedbackRoutes_RequireAuth(t *testing.T) {
	env := setupFeedbackTestEnv(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/feedback"},
		{http.MethodGet, "/v1/feedback"},
		{http.MethodGet, "/v1/feedback/stats"},
		{http.MethodGet, "/v1/feedback/1"},
		{http.MethodGet, "/v1/organizations"},
		{http.MethodPatch, "/v1/admin/feedback/1/status"},
	}
	for _, p := range paths {
		w := env.doJSON(t, p.method, p.path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}
}

func TestFeedbackSubmit(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	cookies := env.login(t, "user_abc", "user", "")

	w := env.doJSON(t, http.MethodPost, "/v1/feedback", SubmitFeedbackRequest{
		Entity:       "IT Department",
		Organization: "ABC Organization",
		Category:     "complaint",
		Description:  "The VPN keeps dropping.",
	}, cookies)

	require.Equal(t, http.StatusCreated, w.Code)

	var record models.FeedbackRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, "user1", record.AuthorID)
	assert.Equal(t, models.StatusPending, record.Status)

	// The submission is forwarded to the organization's contact
	sent := env.email.SentEmails()
	require.Len(t, sent, 1)
	assert.Equal(t, "contact@abcorg.com", sent[0].To)
	assert.Contains(t, sent[0].Subject, "complaint")
}

func TestFeedbackSubmit_UnknownOrganizationUsesDefaultContact(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	cookies := env.login(t, "user_abc", "user", "")

	w := env.doJSON(t, http.MethodPost, "/v1/feedback", SubmitFeedbackRequest{
		Entity:       "Reception",
		Organization: "Brand New Org",
		Category:     "suggestion",
		Description:  "More seating please.",
	}, cookies)

	require.Equal(t, http.StatusCreated, w.Code)

	sent := env.email.SentEmails()
	require.Len(t, sent, 1)
	assert.Equal(t, "contact@company.com", sent[0].To)
}

func TestFeedbackSubmit_InvalidCategory(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	cookies := env.login(t, "user_abc", "user", "")

	w := env.doJSON(t, http.MethodPost, "/v1/feedback", map[string]string{
		"entity":       "IT Department",
		"organization": "ABC Organization",
		"category":     "rant",
		"description":  "text",
	}, cookies)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.email.SentEmails())
}

func TestFeedbackList_UserSeesOwnOnly(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	// Seeded account user1 authored records 1 and 3
	cookies := env.login(t, "user_abc", "user", "")

	w := env.doJSON(t, http.MethodGet, "/v1/feedback", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp FeedbackListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	for _, r := range resp.Feedback {
		assert.Equal(t, "user1", r.AuthorID)
	}
}

func TestFeedbackList_SuperAdminSeesAll(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	cookies := env.login(t, "admin", "", "")

	w := env.doJSON(t, http.MethodGet, "/v1/feedback", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp FeedbackListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
}

func TestFeedbackList_SuperAdminNarrowsByOrganization(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	cookies := env.login(t, "admin", "", "")

	w := env.doJSON(t, http.MethodGet, "/v1/feedback?organization=XYZ+Company", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp FeedbackListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "XYZ Company", resp.Feedback[0].Organization)
}

func TestFeedbackList_CompanyAdminScopedToOwnOrganization(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	// Ephemeral company admin bound to ABC Organization
	cookies := env.login(t, "abc_admin", "admin", "ABC Organization")

	w := env.doJSON(t, http.MethodGet, "/v1/feedback", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp FeedbackListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "ABC Organization", resp.Feedback[0].Organization)

	// Widening past the admin's organization is rejected
	w = env.doJSON(t, http.MethodGet, "/v1/feedback?organization=XYZ+Company", nil, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFeedbackList_StatusAndCategoryFilters(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	cookies := env.login(t, "admin", "", "")

	w := env.doJSON(t, http.MethodGet, "/v1/feedback?status=resolved", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	var resp FeedbackListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, models.StatusResolved, resp.Feedback[0].Status)

	w = env.doJSON(t, http.MethodGet, "/v1/feedback?category=compliment", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, models.CategoryCompliment, resp.Feedback[0].Category)

	w = env.doJSON(t, http.MethodGet, "/v1/feedback?status=archived", nil, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFeedbackStats(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	cookies := env.login(t, "admin", "", "")

	w := env.doJSON(t, http.MethodGet, "/v1/feedback/stats", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp FeedbackStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 1, resp.ByStatus[models.StatusPending])
	assert.Equal(t, 1, resp.ByStatus[models.StatusReviewed])
	assert.Equal(t, 1, resp.ByStatus[models.StatusResolved])
	assert.Equal(t, 1, resp.ByCategory[models.CategoryComplaint])
}

func TestFeedbackGetByID(t *testing.T) {
	env := setupFeedbackTestEnv(t)

	t.Run("owner sees own record", func(t *testing.T) {
		cookies := env.login(t, "user_abc", "user", "")
		w := env.doJSON(t, http.MethodGet, "/v1/feedback/1", nil, cookies)
		require.Equal(t, http.StatusOK, w.Code)

		var record models.FeedbackRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.Equal(t, "1", record.ID)
	})

	t.Run("other user gets 404", func(t *testing.T) {
		cookies := env.login(t, "user_xyz", "user", "")
		w := env.doJSON(t, http.MethodGet, "/v1/feedback/1", nil, cookies)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("super-admin sees any record", func(t *testing.T) {
		cookies := env.login(t, "admin", "", "")
		w := env.doJSON(t, http.MethodGet, "/v1/feedback/1", nil, cookies)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing record", func(t *testing.T) {
		cookies := env.login(t, "admin", "", "")
		w := env.doJSON(t, http.MethodGet, "/v1/feedback/nope", nil, cookies)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAdminUpdateStatus(t *testing.T) {
	env := setupFeedbackTestEnv(t)

	t.Run("super-admin resolves any record", func(t *testing.T) {
		cookies := env.login(t, "admin", "", "")
		w := env.doJSON(t, http.MethodPatch, "/v1/admin/feedback/1/status", UpdateStatusRequest{
			Status:   "resolved",
			Response: "We replaced the hardware.",
		}, cookies)
		require.Equal(t, http.StatusOK, w.Code)

		var record models.FeedbackRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.Equal(t, models.StatusResolved, record.Status)
		require.NotNil(t, record.ResolvedAt)
		assert.True(t, record.ResolvedAt.Valid)
		assert.Equal(t, "We replaced the hardware.", record.AdminResponse.String)
	})

	t.Run("regular user is rejected", func(t *testing.T) {
		cookies := env.login(t, "user_abc", "user", "")
		w := env.doJSON(t, http.MethodPatch, "/v1/admin/feedback/1/status", UpdateStatusRequest{
			Status: "reviewed",
		}, cookies)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("company admin limited to own organization", func(t *testing.T) {
		cookies := env.login(t, "xyz_admin", "admin", "XYZ Company")

		// Record 2 belongs to XYZ Company
		w := env.doJSON(t, http.MethodPatch, "/v1/admin/feedback/2/status", UpdateStatusRequest{
			Status: "resolved",
		}, cookies)
		assert.Equal(t, http.StatusOK, w.Code)

		// Record 1 belongs to ABC Organization
		w = env.doJSON(t, http.MethodPatch, "/v1/admin/feedback/1/status", UpdateStatusRequest{
			Status: "reviewed",
		}, cookies)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid status body", func(t *testing.T) {
		cookies := env.login(t, "admin", "", "")
		w := env.doJSON(t, http.MethodPatch, "/v1/admin/feedback/1/status", map[string]string{
			"status": "archived",
		}, cookies)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing record", func(t *testing.T) {
		cookies := env.login(t, "admin", "", "")
		w := env.doJSON(t, http.MethodPatch, "/v1/admin/feedback/nope/status", UpdateStatusRequest{
			Status: "reviewed",
		}, cookies)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrganizationsEndpoint(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	cookies := env.login(t, "user_abc", "user", "")

	w := env.doJSON(t, http.MethodGet, "/v1/organizations", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Organizations []string `json:"organizations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"ABC Organization", "XXX Inc", "XYZ Company"}, resp.Organizations)
}

func TestOrganizationContactEndpoint(t *testing.T) {
	env := setupFeedbackTestEnv(t)
	cookies := env.login(t, "user_abc", "user", "")

	w := env.doJSON(t, http.MethodGet, "/v1/organizations/contact?name=ABC+Organization", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "contact@abcorg.com", resp["contact"])

	w = env.doJSON(t, http.MethodGet, "/v1/organizations/contact?name=Unknown+Org", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "contact@company.com", resp["contact"])

	w = env.doJSON(t, http.MethodGet, "/v1/organizations/contact", nil, cookies)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndVersionEndpoints(t *testing.T) {
	env := setupFeedbackTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.doJSON(t, http.MethodGet, "/v1/version", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "feedbackhub", resp["service"])
}
