package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmmbridge/internal/api/models"
	"pmmbridge/internal/api/service"
	"pmmbridge/internal/engine"
)

type memStore struct {
	sessions map[string]*models.Session
}

func (m *memStore) Get(id string) (*models.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return sess, nil
}

func (m *memStore) Save(sess *models.Session) error {
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memStore) Delete(id string) error {
	delete(m.sessions, id)
	return nil
}

type stubCloud struct {
	tokenErr     error
	records      []models.DatabaseRecord
	createUserFn func(dbID, username string) (*models.MonitoringUser, error)
}

func (s *stubCloud) ValidateToken(ctx context.Context, token string) error { return s.tokenErr }

func (s *stubCloud) ListDatabases(ctx context.Context, token string, eng engine.Integration, usePrivate bool, monitored map[string]string) ([]models.DatabaseRecord, error) {
	return s.records, nil
}

func (s *stubCloud) CreateUser(ctx context.Context, token string, dbID string, username string) (*models.MonitoringUser, error) {
	if s.createUserFn != nil {
		return s.createUserFn(dbID, username)
	}
	return &models.MonitoringUser{Username: username, Password: "generated"}, nil
}

type stubPMM struct {
	validateErr error
	registerFn  func(inst engine.Instance) (string, error)
	removeErr   error
}

func (s *stubPMM) ValidateCredentials(ctx context.Context, password string) error {
	return s.validateErr
}

func (s *stubPMM) ListServices(ctx context.Context, password string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (s *stubPMM) RegisterInstance(eng engine.Integration, password string, inst engine.Instance) (string, error) {
	if s.registerFn != nil {
		return s.registerFn(inst)
	}
	return "Successfully added to PMM.", nil
}

func (s *stubPMM) RemoveInstance(eng engine.Integration, password string, serviceName string) (string, error) {
	if s.removeErr != nil {
		return "", s.removeErr
	}
	return "removed", nil
}

func newTestRouter(cloud service.CloudClient, pmm service.MonitoringClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("sessionID", "test-session")
		c.Next()
	})

	workflow := service.NewWorkflowService(&memStore{sessions: map[string]*models.Session{}}, cloud, pmm, zerolog.Nop())
	CredentialsHandler(router, workflow)
	EngineHandler(router, workflow)
	DatabaseHandler(router, workflow)
	IntegrationHandler(router, workflow)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func TestEnginesEndpoint(t *testing.T) {
	router := newTestRouter(&stubCloud{}, &stubPMM{})

	rec, payload := doJSON(t, router, http.MethodGet, "/api/engines", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	engines, ok := payload["engines"].([]any)
	require.True(t, ok)
	require.Len(t, engines, 3)

	first := engines[0].(map[string]any)
	assert.Equal(t, "pg", first["id"])
	assert.Equal(t, true, first["supported"])

	last := engines[2].(map[string]any)
	assert.Equal(t, "mongodb", last["id"])
	assert.Equal(t, false, last["supported"])
}

func TestValidateToken_MissingField(t *testing.T) {
	router := newTestRouter(&stubCloud{}, &stubPMM{})

	rec, payload := doJSON(t, router, http.MethodPost, "/api/validate-token", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["message"], "required")
}

func TestValidateToken_AuthFailure(t *testing.T) {
	cloud := &stubCloud{tokenErr: &models.AuthError{Field: "do_token", Message: "Invalid DigitalOcean API token."}}
	router := newTestRouter(cloud, &stubPMM{})

	rec, payload := doJSON(t, router, http.MethodPost, "/api/validate-token", map[string]any{"do_token": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid DigitalOcean API token.", payload["message"])
}

func TestSessionReflectsValidation(t *testing.T) {
	router := newTestRouter(&stubCloud{}, &stubPMM{})

	rec, _ := doJSON(t, router, http.MethodPost, "/api/validate-token", map[string]any{"do_token": "tok"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, payload["token_valid"])
	assert.Equal(t, false, payload["pmm_valid"])
	assert.Equal(t, float64(models.StepCredentials), payload["step"])
}

func TestDatabases_GatedOnCredentials(t *testing.T) {
	router := newTestRouter(&stubCloud{}, &stubPMM{})

	rec, payload := doJSON(t, router, http.MethodPost, "/api/databases", map[string]any{"engine": "pg"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["message"], "Validate")
}

func validateSession(t *testing.T, router *gin.Engine) {
	t.Helper()
	rec, _ := doJSON(t, router, http.MethodPost, "/api/validate-token", map[string]any{"do_token": "tok"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, router, http.MethodPost, "/api/validate-pmm", map[string]any{"pmm_password": "pw"})
	require.Equal(t, http.StatusOK, rec.Code)
}

func onlineRecords() []models.DatabaseRecord {
	return []models.DatabaseRecord{
		{ID: "db-a", Name: "alpha", Engine: "pg", Host: "a.db", Port: 25060, Status: "online"},
		{ID: "db-b", Name: "beta", Engine: "pg", Host: "b.db", Port: 25060, Status: "online"},
	}
}

func TestCreateUser_ConflictEnvelope(t *testing.T) {
	cloud := &stubCloud{
		records: onlineRecords(),
		createUserFn: func(dbID, username string) (*models.MonitoringUser, error) {
			return nil, &models.UserExistsError{Username: username}
		},
	}
	router := newTestRouter(cloud, &stubPMM{})
	validateSession(t, router)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/databases", map[string]any{"engine": "pg"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, router, http.MethodPost, "/api/select", map[string]any{"db_ids": []string{"db-a"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/create-user", map[string]any{"db_id": "db-a", "username": "pmm_monitor"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, payload["ok"])
	assert.Equal(t, "user_exists", payload["error_code"])
	assert.Equal(t, "pmm_monitor", payload["username"])
	assert.Contains(t, payload["message"], "already exists")
}

func TestIntegrateAll_FullFlow(t *testing.T) {
	pmm := &stubPMM{
		registerFn: func(inst engine.Instance) (string, error) {
			if inst.Name == "beta" {
				return "", &models.RegistrationError{Message: "connection refused", Output: "dial tcp: refused"}
			}
			return "Successfully added to PMM.", nil
		},
	}
	router := newTestRouter(&stubCloud{records: onlineRecords()}, pmm)
	validateSession(t, router)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/databases", map[string]any{"engine": "pg"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, router, http.MethodPost, "/api/select", map[string]any{"db_ids": []string{"db-a", "db-b"}})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, router, http.MethodPost, "/api/create-user", map[string]any{"db_id": "db-a"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, router, http.MethodPost, "/api/create-user", map[string]any{"db_id": "db-b"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/integrate-all", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	results, ok := payload["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 2)

	first := results[0].(map[string]any)
	assert.Equal(t, "db-a", first["id"])
	assert.Equal(t, true, first["ok"])
	assert.Equal(t, "Successfully added to PMM.", first["output"])
	assert.NotEmpty(t, first["post_steps"])

	second := results[1].(map[string]any)
	assert.Equal(t, "db-b", second["id"])
	assert.Equal(t, false, second["ok"])
	assert.Equal(t, "connection refused", second["message"])
}

func TestIntegrateAll_BlockedWithoutCredentials(t *testing.T) {
	router := newTestRouter(&stubCloud{records: onlineRecords()}, &stubPMM{})
	validateSession(t, router)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/databases", map[string]any{"engine": "pg"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = doJSON(t, router, http.MethodPost, "/api/select", map[string]any{"db_ids": []string{"db-a"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/integrate-all", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, payload["message"], "ready")
}

func TestRemove_NotFoundEnvelope(t *testing.T) {
	pmm := &stubPMM{removeErr: &models.NotFoundError{Service: "gone-svc", Output: "not found"}}
	router := newTestRouter(&stubCloud{}, pmm)
	validateSession(t, router)

	rec, payload := doJSON(t, router, http.MethodPost, "/api/remove", map[string]any{"service_name": "gone-svc", "engine": "pg"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, payload["ok"])
	assert.Contains(t, payload["message"], "gone-svc")
}

func TestStartOver_Resets(t *testing.T) {
	router := newTestRouter(&stubCloud{}, &stubPMM{})
	validateSession(t, router)

	rec, _ := doJSON(t, router, http.MethodPost, "/api/start-over", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload := doJSON(t, router, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, payload["token_valid"])
	assert.Equal(t, float64(models.StepCredentials), payload["step"])
}
