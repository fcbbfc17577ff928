package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/task"
)

// SessionKey is the storage key under which a client's session is persisted.
const SessionKey = "user"

// SessionStore is durable key/value storage for raw session JSON.
type SessionStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type scopedStore struct {
	inner  SessionStore
	prefix string
}

// ScopeStore namespaces every key of store under one client id.
func ScopeStore(store SessionStore, clientID string) SessionStore {
	return &scopedStore{inner: store, prefix: "client:" + clientID + ":"}
}

func (s *scopedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scopedStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// GateConfig holds the simulated latencies of identity operations.
type GateConfig struct {
	SignInDelay   time.Duration
	RegisterDelay time.Duration
}

// Gate owns the single active session of one client and keeps it in sync with storage.
type Gate struct {
	mu       sync.RWMutex
	store    SessionStore
	verifier CredentialVerifier
	logger   *zap.Logger
	config   GateConfig
	now      func() time.Time
	session  *models.Session
}

// NewGate constructs a gate and synchronously restores any stored session. A stored
// value that cannot be decoded is discarded.
func NewGate(ctx context.Context, store SessionStore, verifier CredentialVerifier, logger *zap.Logger, config GateConfig) *Gate {
	g := newGate(store, verifier, logger, config)
	g.restore(ctx)
	return g
}

// newGate builds a gate with no session and without reading storage.
func newGate(store SessionStore, verifier CredentialVerifier, logger *zap.Logger, config GateConfig) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	if verifier == nil {
		verifier = NewFixedCredentialVerifier()
	}
	return &Gate{store: store, verifier: verifier, logger: logger, config: config, now: time.Now}
}

func (g *Gate) restore(ctx context.Context) {
	raw, ok, err := g.store.Get(ctx, SessionKey)
	if err != nil {
		g.logger.Warn("failed to read stored session", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil || session.ID == "" || !session.Role.Valid() {
		g.logger.Warn("discarding unreadable stored session", zap.Error(err))
		if delErr := g.store.Delete(ctx, SessionKey); delErr != nil {
			g.logger.Warn("failed to delete unreadable session", zap.Error(delErr))
		}
		return
	}
	g.session = &session
}

// SignIn verifies credentials and, on success, persists and activates the session.
// On failure the current session is left unchanged.
func (g *Gate) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	verify := task.Simulated(g.config.SignInDelay, func(ctx context.Context) (*models.Session, error) {
		return g.verifier.Verify(ctx, email, password)
	})
	session, err := task.Await(ctx, verify)
	if err != nil {
		return nil, err
	}
	if err := g.activate(ctx, session); err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// Register creates a student session from the profile. It always succeeds unless
// storage fails or ctx is cancelled.
func (g *Gate) Register(ctx context.Context, profile models.RegisterRequest) (*models.Session, error) {
	create := task.Simulated(g.config.RegisterDelay, func(ctx context.Context) (*models.Session, error) {
		name := strings.TrimSpace(profile.Name)
		if name == "" {
			name = "New User"
		}
		return &models.Session{
			ID:         uuid.NewString(),
			Name:       name,
			Email:      profile.Email,
			Role:       models.RoleStudent,
			StudentID:  fmt.Sprintf("STU-%d-%d", g.now().Year(), 1000+rand.Intn(9000)),
			Department: profile.Department,
			Program:    profile.Program,
		}, nil
	})
	session, err := task.Await(ctx, create)
	if err != nil {
		return nil, err
	}
	if err := g.activate(ctx, session); err != nil {
		return nil, err
	}
	return session.Clone(), nil
}

// SignOut clears the active session and removes it from storage.
func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Delete(ctx, SessionKey); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear session")
	}
	g.session = nil
	return nil
}

// Current returns a copy of the active session, or nil.
func (g *Gate) Current() *models.Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.Clone()
}

// IsAuthenticated reports whether a session is active.
func (g *Gate) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session != nil
}

// IsAdmin reports whether the active session carries the admin role.
func (g *Gate) IsAdmin() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.session.IsAdmin()
}

func (g *Gate) activate(ctx context.Context, session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode session")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.store.Set(ctx, SessionKey, payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist session")
	}
	g.session = session.Clone()
	return nil
}
