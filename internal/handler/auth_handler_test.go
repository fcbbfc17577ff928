package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
)

type fakeAuthSrv struct {
	loginClient string
	loginReq    models.LoginRequest
	loginErr    error
	registerReq models.RegisterRequest
	loggedOut   string
	forgotEmail string
	forgotErr   error
}

func (f *fakeAuthSrv) Login(_ context.Context, clientID string, req models.LoginRequest) (*models.AuthResponse, error) {
	f.loginClient = clientID
	f.loginReq = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if clientID == "" {
		clientID = "new-client"
	}
	return &models.AuthResponse{AccessToken: "token", ClientID: clientID, User: *testAdmin()}, nil
}

func (f *fakeAuthSrv) Register(_ context.Context, clientID string, req models.RegisterRequest) (*models.AuthResponse, error) {
	f.registerReq = req
	return &models.AuthResponse{AccessToken: "token", ClientID: "new-client", User: models.Session{Name: req.Name, Role: models.RoleStudent}}, nil
}

func (f *fakeAuthSrv) Logout(_ context.Context, clientID string) error {
	f.loggedOut = clientID
	return nil
}

func (f *fakeAuthSrv) ForgotPassword(_ context.Context, req models.ForgotPasswordRequest) error {
	f.forgotEmail = req.Email
	return f.forgotErr
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandlerLogin(t *testing.T) {
	srv := &fakeAuthSrv{}
	c, rec := newTestContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"admin@example.com","password":"password"}`), "", nil)

	NewAuthHandler(srv).Login(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@example.com", srv.loginReq.Email)
	assert.Empty(t, srv.loginClient)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "token", envelope.Data["access_token"])
	assert.Equal(t, "new-client", envelope.Data["client_id"])
}

func TestAuthHandlerLoginReusesClient(t *testing.T) {
	srv := &fakeAuthSrv{}
	c, _ := newTestContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"a","password":"b"}`), "existing", nil)

	NewAuthHandler(srv).Login(c)

	assert.Equal(t, "existing", srv.loginClient)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	srv := &fakeAuthSrv{loginErr: appErrors.Clone(appErrors.ErrInvalidCredentials, "Invalid email or password")}
	c, rec := newTestContext(jsonRequest(http.MethodPost, "/auth/login", `{"email":"a","password":"b"}`), "", nil)

	NewAuthHandler(srv).Login(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "INVALID_CREDENTIALS", envelope.Error["code"])
	assert.Equal(t, "Invalid email or password", envelope.Error["message"])
}

func TestAuthHandlerLoginMalformed(t *testing.T) {
	c, rec := newTestContext(jsonRequest(http.MethodPost, "/auth/login", `not json`), "", nil)

	NewAuthHandler(&fakeAuthSrv{}).Login(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandlerRegister(t *testing.T) {
	srv := &fakeAuthSrv{}
	body := `{"name":"Jane Doe","email":"jane@example.com","department":"Physics","program":"BSc Physics","password":"longenough","confirmPassword":"longenough"}`
	c, rec := newTestContext(jsonRequest(http.MethodPost, "/auth/register", body), "", nil)

	NewAuthHandler(srv).Register(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Jane Doe", srv.registerReq.Name)
}

func TestAuthHandlerLogout(t *testing.T) {
	srv := &fakeAuthSrv{}
	c, rec := newTestContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), "c1", testStudent())

	NewAuthHandler(srv).Logout(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "c1", srv.loggedOut)

	c, rec = newTestContext(httptest.NewRequest(http.MethodPost, "/auth/logout", nil), "", nil)
	NewAuthHandler(srv).Logout(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerForgotPassword(t *testing.T) {
	srv := &fakeAuthSrv{}
	c, rec := newTestContext(jsonRequest(http.MethodPost, "/auth/forgot-password", `{"email":"nobody@example.com"}`), "", nil)

	NewAuthHandler(srv).ForgotPassword(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "nobody@example.com", srv.forgotEmail)
	assert.Equal(t, ForgotPasswordMessage, decodeEnvelope(t, rec).Data["message"])
}

func TestAuthHandlerMe(t *testing.T) {
	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), "c1", testStudent())
	NewAuthHandler(&fakeAuthSrv{}).Me(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "STU-2023-1234", decodeEnvelope(t, rec).Data["studentId"])

	c, rec = newTestContext(httptest.NewRequest(http.MethodGet, "/auth/me", nil), "", nil)
	NewAuthHandler(&fakeAuthSrv{}).Me(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandlerAccess(t *testing.T) {
	cases := []struct {
		view     string
		session  *models.Session
		allowed  bool
		redirect string
	}{
		{"/admin/reports", testStudent(), false, "/dashboard"},
		{"/admin/reports", testAdmin(), true, ""},
		{"/dashboard", nil, false, "/login"},
		{"/login", nil, true, ""},
	}
	for _, tc := range cases {
		c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/auth/access?view="+tc.view, nil), "c1", tc.session)
		NewAuthHandler(&fakeAuthSrv{}).Access(c)
		require.Equal(t, http.StatusOK, rec.Code)

		decision := decodeEnvelope(t, rec).Data["decision"].(map[string]interface{})
		assert.Equal(t, tc.allowed, decision["allowed"], tc.view)
		if tc.redirect == "" {
			assert.NotContains(t, decision, "redirect", tc.view)
		} else {
			assert.Equal(t, tc.redirect, decision["redirect"], tc.view)
		}
	}

	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/auth/access", nil), "", nil)
	NewAuthHandler(&fakeAuthSrv{}).Access(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
