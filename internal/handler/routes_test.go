package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/repository"
	"github.com/noah-isme/campus-id-api/internal/service"
	"github.com/noah-isme/campus-id-api/pkg/jobs"
	"github.com/noah-isme/campus-id-api/pkg/response"
	"github.com/noah-isme/campus-id-api/pkg/storage"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type noopQueue struct{}

func (noopQueue) Enqueue(jobs.Job) error { return nil }

type testAPI struct {
	router *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	now := time.Now()
	requests := repository.NewRequestRepository(now)

	auth := service.NewAuthService(repository.NewMemorySessionStore(), service.NewFixedCredentialVerifier(), nil, nil, logger, service.AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
	})
	wizard := service.NewWizardService(
		service.NewSimulatedSubmitter(requests, 0, logger),
		service.NewSimulatedPhotoReader(1<<20, "https://example.com/placeholder.png", 0),
		nil, nil, logger, service.DefaultFees,
	)
	auth.OnSignOut(wizard.Discard)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exporter := service.NewExportService(requests, store, storage.NewSignedURLSigner("export", time.Hour), service.ExportConfig{APIPrefix: "/api/v1"}, logger)
	reports := service.NewReportService(repository.NewReportJobRepository(), noopQueue{}, exporter, nil, nil, logger, service.ReportServiceConfig{})

	router := gin.New()
	Routes{
		Auth:        auth,
		AuthHandler: NewAuthHandler(auth),
		Dashboard: NewDashboardHandler(service.NewDashboardService(service.DashboardServiceParams{
			Requests:      requests,
			Notifications: repository.NewNotificationRepository(now),
			Logger:        logger,
		})),
		Wizard:        NewWizardHandler(wizard),
		Track:         NewTrackHandler(service.NewTrackService(requests, nil, logger, 0)),
		AdminRequests: NewAdminRequestHandler(service.NewAdminRequestService(requests, nil, logger)),
		Reports:       NewReportHandler(reports),
		Metrics:       NewMetricsHandler(service.NewMetricsService(), nil),
		AuditLogger:   logger,
	}.Register(router.Group("/api/v1"))
	return &testAPI{router: router}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, "/api/v1"+path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, "/api/v1"+path, nil)
	}
	return a.send(req, token)
}

func (a *testAPI) send(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, email string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": "password"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeEnvelope(t, rec).Data["access_token"].(string)
}

func TestRoutesGuardProtectedViews(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/dashboard", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(response.RedirectHeader))

	student := api.login(t, "student@example.com")
	rec = api.do(t, http.MethodGet, "/admin/requests", student, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get(response.RedirectHeader))

	rec = api.do(t, http.MethodGet, "/dashboard", student, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	latest := decodeEnvelope(t, rec).Data["latestRequest"].(map[string]interface{})
	assert.Equal(t, "REQ-2023-0001", latest["id"])
}

func TestRoutesAdminListsRequests(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin@example.com")

	rec := api.do(t, http.MethodGet, "/admin/requests?status=approved", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "REQ-2023-0001", envelope.Data[0]["id"])

	rec = api.do(t, http.MethodGet, "/admin", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutesAdminBatchReview(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin@example.com")

	rec := api.do(t, http.MethodPost, "/admin/request-batches/reject", admin, map[string]interface{}{
		"ids": []string{"REQ-2023-0002", "REQ-2099-0001"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var envelope struct {
		Data struct {
			Action    string                   `json:"action"`
			Processed []map[string]interface{} `json:"processed"`
			NotFound  []string                 `json:"notFound"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "reject", envelope.Data.Action)
	require.Len(t, envelope.Data.Processed, 1)
	assert.Equal(t, "REQ-2023-0002", envelope.Data.Processed[0]["id"])
	assert.Equal(t, []string{"REQ-2099-0001"}, envelope.Data.NotFound)

	rec = api.do(t, http.MethodPost, "/admin/request-batches/archive", admin, map[string]interface{}{"ids": []string{"REQ-2023-0002"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	student := api.login(t, "student@example.com")
	rec = api.do(t, http.MethodPost, "/admin/request-batches/approve", student, map[string]interface{}{"ids": []string{"REQ-2023-0002"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoutesLogoutRevokesAccess(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "student@example.com")

	rec := api.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutesWizardToTracking(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "student@example.com")

	rec := api.do(t, http.MethodPost, "/request-id", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, "/request-id/next", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/request-id/next", token, nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(PhotoFormField, "me.png")
	require.NoError(t, err)
	_, err = part.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/request-id/photo", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec = api.send(req, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/request-id/next", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPatch, "/request-id", token, map[string]interface{}{"issueType": "replacement", "reason": "Lost", "deliveryMethod": "mail", "address": "1 Campus Way"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(40), decodeEnvelope(t, rec).Data["total"])
	rec = api.do(t, http.MethodPost, "/request-id/next", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodPost, "/request-id/submit", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPatch, "/request-id", token, map[string]interface{}{"consentToTerms": true})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodPost, "/request-id/submit", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	result := decodeEnvelope(t, rec).Data
	assert.True(t, strings.HasPrefix(result["requestId"].(string), "REQ-"))
	assert.Equal(t, float64(40), result["total"])

	rec = api.do(t, http.MethodGet, "/track-request/REQ-2023-0002", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeEnvelope(t, rec).Data["paymentDue"])

	rec = api.do(t, http.MethodGet, "/track-request/"+result["requestId"].(string), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutesExportRejectsBadToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/export/not-a-token", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
