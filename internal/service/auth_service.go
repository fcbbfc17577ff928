package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/task"
	"github.com/noah-isme/campus-id-api/pkg/validation"
)

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret   string
	AccessTokenExpiry   time.Duration
	Issuer              string
	Gate                GateConfig
	ForgotPasswordDelay time.Duration
}

// AuthService keeps one session gate per client and issues the access tokens that
// identify those clients.
type AuthService struct {
	store     SessionStore
	verifier  CredentialVerifier
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	config    AuthConfig

	mu       sync.Mutex
	gates    map[string]*Gate
	signOuts []func(clientID string)
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(store SessionStore, verifier CredentialVerifier, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if verifier == nil {
		verifier = NewFixedCredentialVerifier()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{
		store:     store,
		verifier:  verifier,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		config:    config,
		gates:     make(map[string]*Gate),
	}
}

// OnSignOut registers fn to run after a client signs out.
func (s *AuthService) OnSignOut(fn func(clientID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signOuts = append(s.signOuts, fn)
}

// gate returns the tracked gate of clientID, or one restored from storage. A restored
// gate is tracked only when it holds a session, and storage is read without holding s.mu.
func (s *AuthService) gate(ctx context.Context, clientID string) *Gate {
	s.mu.Lock()
	g, ok := s.gates[clientID]
	s.mu.Unlock()
	if ok {
		return g
	}
	g = NewGate(ctx, ScopeStore(s.store, clientID), s.verifier, s.clientLogger(clientID), s.config.Gate)
	if g.Current() == nil {
		return g
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.gates[clientID]; ok {
		return existing
	}
	s.gates[clientID] = g
	return g
}

// attempt returns the gate a sign-in or registration runs against. A freshly minted
// client starts from an empty gate that is tracked only once the attempt succeeds.
func (s *AuthService) attempt(ctx context.Context, clientID string) (string, *Gate) {
	if clientID == "" {
		clientID = uuid.NewString()
		return clientID, newGate(ScopeStore(s.store, clientID), s.verifier, s.clientLogger(clientID), s.config.Gate)
	}
	return clientID, s.gate(ctx, clientID)
}

// activated tracks g after a successful sign-in. When the client switched to a
// different user, the sign-out hooks run so nothing of the previous user survives.
func (s *AuthService) activated(clientID string, g *Gate, previous, current *models.Session) {
	s.mu.Lock()
	s.gates[clientID] = g
	s.mu.Unlock()
	if previous != nil && previous.ID != current.ID {
		s.logger.Info("client switched user", zap.String("client_id", clientID), zap.String("previous_user_id", previous.ID), zap.String("user_id", current.ID))
		s.runSignOutHooks(clientID)
	}
}

func (s *AuthService) runSignOutHooks(clientID string) {
	s.mu.Lock()
	hooks := append([]func(string){}, s.signOuts...)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn(clientID)
	}
}

func (s *AuthService) clientLogger(clientID string) *zap.Logger {
	return s.logger.With(zap.String("client_id", clientID))
}

// Session returns the active session of clientID, or nil.
func (s *AuthService) Session(ctx context.Context, clientID string) *models.Session {
	if clientID == "" {
		return nil
	}
	return s.gate(ctx, clientID).Current()
}

// Login signs the client in. An empty clientID allocates a new client.
func (s *AuthService) Login(ctx context.Context, clientID string, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid login payload")
	}
	clientID, g := s.attempt(ctx, clientID)
	previous := g.Current()

	session, err := g.SignIn(ctx, req.Email, req.Password)
	s.metrics.RecordSignIn(err == nil)
	if err != nil {
		if appErrors.IsCode(err, appErrors.ErrInvalidCredentials.Code) {
			s.logger.Info("sign-in rejected", zap.String("client_id", clientID), zap.String("email", req.Email))
		}
		return nil, err
	}
	s.activated(clientID, g, previous, session)
	s.logger.Info("signed in", zap.String("client_id", clientID), zap.String("user_id", session.ID), zap.String("role", string(session.Role)))
	return s.issue(clientID, session)
}

// Register creates a student session for the client. An empty clientID allocates a
// new client.
func (s *AuthService) Register(ctx context.Context, clientID string, req models.RegisterRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid registration payload")
	}
	clientID, g := s.attempt(ctx, clientID)
	previous := g.Current()

	session, err := g.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.activated(clientID, g, previous, session)
	s.logger.Info("registered", zap.String("client_id", clientID), zap.String("user_id", session.ID), zap.String("student_id", session.StudentID))
	return s.issue(clientID, session)
}

// Logout clears the client's session and stops tracking the client.
func (s *AuthService) Logout(ctx context.Context, clientID string) error {
	if err := s.gate(ctx, clientID).SignOut(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.gates, clientID)
	s.mu.Unlock()
	s.runSignOutHooks(clientID)
	s.logger.Info("signed out", zap.String("client_id", clientID))
	return nil
}

// ForgotPassword simulates sending a reset link. It never reveals whether the account exists.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validation.Error(err, "invalid forgot password payload")
	}
	start := time.Now()
	_, err := task.Await(ctx, task.Simulated(s.config.ForgotPasswordDelay, func(ctx context.Context) (struct{}, error) {
		s.logger.Info("password reset requested", zap.String("email", req.Email))
		return struct{}{}, nil
	}))
	s.metrics.ObserveSimulated("forgot_password", time.Since(start))
	return err
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid || claims.ClientID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) issue(clientID string, session *models.Session) (*models.AuthResponse, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	claims := &models.AccessClaims{
		ClientID: clientID,
		UserID:   session.ID,
		Role:     session.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   clientID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}
	return &models.AuthResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		IssuedAt:    issuedAt,
		ClientID:    clientID,
		User:        *session,
	}, nil
}
