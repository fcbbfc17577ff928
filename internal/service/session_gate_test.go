package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/models"
	"github.com/noah-isme/campus-id-api/internal/repository"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
)

func newTestGate(t *testing.T, store SessionStore) *Gate {
	t.Helper()
	return NewGate(context.Background(), store, NewFixedCredentialVerifier(), zap.NewNop(), GateConfig{})
}

func TestGateSignInAdmin(t *testing.T) {
	store := repository.NewMemorySessionStore()
	gate := newTestGate(t, store)

	session, err := gate.SignIn(context.Background(), "admin@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "Admin User", session.Name)
	assert.Equal(t, models.RoleAdmin, session.Role)
	assert.True(t, gate.IsAuthenticated())
	assert.True(t, gate.IsAdmin())

	raw, ok, err := store.Get(context.Background(), SessionKey)
	require.NoError(t, err)
	require.True(t, ok)
	var stored models.Session
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "1", stored.ID)
}

func TestGateSignInStudent(t *testing.T) {
	gate := newTestGate(t, repository.NewMemorySessionStore())

	session, err := gate.SignIn(context.Background(), "student@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, session.Role)
	assert.Equal(t, "STU-2023-1234", session.StudentID)
	assert.False(t, gate.IsAdmin())
}

func TestGateSignInRejectsUnknownPair(t *testing.T) {
	gate := newTestGate(t, repository.NewMemorySessionStore())

	cases := []struct{ email, password string }{
		{"admin@example.com", "wrong"},
		{"someone@example.com", "password"},
		{"ADMIN@example.com", "password"},
	}
	for _, tc := range cases {
		_, err := gate.SignIn(context.Background(), tc.email, tc.password)
		require.Error(t, err)
		assert.True(t, appErrors.IsCode(err, appErrors.ErrInvalidCredentials.Code), tc.email)
	}
	assert.Nil(t, gate.Current())
}

func TestGateFailedSignInKeepsCurrentSession(t *testing.T) {
	gate := newTestGate(t, repository.NewMemorySessionStore())
	_, err := gate.SignIn(context.Background(), "student@example.com", "password")
	require.NoError(t, err)

	_, err = gate.SignIn(context.Background(), "admin@example.com", "nope")
	require.Error(t, err)

	current := gate.Current()
	require.NotNil(t, current)
	assert.Equal(t, models.RoleStudent, current.Role)
}

func TestGateSignOutClearsStorage(t *testing.T) {
	store := repository.NewMemorySessionStore()
	gate := newTestGate(t, store)
	_, err := gate.SignIn(context.Background(), "admin@example.com", "password")
	require.NoError(t, err)

	require.NoError(t, gate.SignOut(context.Background()))
	assert.False(t, gate.IsAuthenticated())
	assert.Nil(t, gate.Current())

	_, ok, err := store.Get(context.Background(), SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateRestoresPersistedSession(t *testing.T) {
	store := repository.NewMemorySessionStore()
	first := newTestGate(t, store)
	signedIn, err := first.SignIn(context.Background(), "student@example.com", "password")
	require.NoError(t, err)

	second := newTestGate(t, store)
	restored := second.Current()
	require.NotNil(t, restored)
	assert.Equal(t, *signedIn, *restored)
}

func TestGateDiscardsCorruptSession(t *testing.T) {
	store := repository.NewMemorySessionStore()
	require.NoError(t, store.Set(context.Background(), SessionKey, []byte("{not json")))

	gate := newTestGate(t, store)
	assert.Nil(t, gate.Current())

	_, ok, err := store.Get(context.Background(), SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateDiscardsSessionWithUnknownRole(t *testing.T) {
	store := repository.NewMemorySessionStore()
	require.NoError(t, store.Set(context.Background(), SessionKey, []byte(`{"id":"9","name":"X","role":"root"}`)))

	gate := newTestGate(t, store)
	assert.Nil(t, gate.Current())
}

func TestGateRegisterCreatesStudent(t *testing.T) {
	gate := newTestGate(t, repository.NewMemorySessionStore())

	session, err := gate.Register(context.Background(), models.RegisterRequest{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Department: "Physics",
		Program:    "BSc Physics",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, models.RoleStudent, session.Role)
	assert.True(t, strings.HasPrefix(session.StudentID, "STU-"))
	assert.Equal(t, "Physics", session.Department)
	assert.Equal(t, session.ID, gate.Current().ID)
}

func TestGateCurrentReturnsCopy(t *testing.T) {
	gate := newTestGate(t, repository.NewMemorySessionStore())
	_, err := gate.SignIn(context.Background(), "admin@example.com", "password")
	require.NoError(t, err)

	current := gate.Current()
	current.Role = models.RoleStudent
	assert.True(t, gate.IsAdmin())
}

func TestScopeStoreNamespacesKeys(t *testing.T) {
	store := repository.NewMemorySessionStore()
	scoped := ScopeStore(store, "abc")
	require.NoError(t, scoped.Set(context.Background(), SessionKey, []byte("1")))

	raw, ok, err := store.Get(context.Background(), "client:abc:user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1", string(raw))

	_, ok, err = ScopeStore(store, "other").Get(context.Background(), SessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
