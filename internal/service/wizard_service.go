package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/task"
	"github.com/noah-isme/campus-id-api/pkg/validation"
)

// WizardService keeps at most one request wizard per client.
type WizardService struct {
	submitter RequestSubmitter
	photos    PhotoReader
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	fees      FeeSchedule

	mu      sync.Mutex
	wizards map[string]*RequestWizard
}

// NewWizardService constructs a WizardService.
func NewWizardService(submitter RequestSubmitter, photos PhotoReader, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, fees FeeSchedule) *WizardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	if fees == (FeeSchedule{}) {
		fees = DefaultFees
	}
	return &WizardService{
		submitter: submitter,
		photos:    photos,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		fees:      fees,
		wizards:   make(map[string]*RequestWizard),
	}
}

// Start enters the wizard for the client, seeding the draft from session. An existing
// wizard is resumed unchanged.
func (s *WizardService) Start(clientID string, session *models.Session) models.WizardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[clientID]
	if !ok {
		w = NewRequestWizard(session, s.fees, s.validator)
		s.wizards[clientID] = w
		s.logger.Debug("wizard started", zap.String("client_id", clientID))
	}
	return w.State()
}

// State returns the client's wizard snapshot.
func (s *WizardService) State(clientID string) (*models.WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.lookup(clientID)
	if err != nil {
		return nil, err
	}
	state := w.State()
	return &state, nil
}

// Update edits draft fields.
func (s *WizardService) Update(clientID string, patch models.DraftPatch) (*models.WizardState, error) {
	return s.apply(clientID, "update", func(w *RequestWizard) error { return w.Update(patch) })
}

// Next advances the wizard.
func (s *WizardService) Next(clientID string) (*models.WizardState, error) {
	return s.apply(clientID, "next", func(w *RequestWizard) error { return w.Next() })
}

// Back retreats the wizard. A nil state means the wizard was exited.
func (s *WizardService) Back(clientID string) (*models.WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.lookup(clientID)
	if err != nil {
		return nil, err
	}
	step := w.Step()
	exited, err := w.Back()
	s.metrics.RecordWizardTransition("back", int(step), err)
	if err != nil {
		return nil, err
	}
	if exited {
		delete(s.wizards, clientID)
		return nil, nil
	}
	state := w.State()
	return &state, nil
}

// Cancel discards the client's wizard from any step.
func (s *WizardService) Cancel(clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.lookup(clientID)
	if err != nil {
		return err
	}
	s.metrics.RecordWizardTransition("cancel", int(w.Step()), nil)
	delete(s.wizards, clientID)
	return nil
}

// Discard drops any wizard of the client without error.
func (s *WizardService) Discard(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.wizards, clientID)
}

// AttachPhoto reads the uploaded photo and records its handle on the draft.
func (s *WizardService) AttachPhoto(ctx context.Context, clientID string, r io.Reader) (*models.WizardState, error) {
	s.mu.Lock()
	_, err := s.lookup(clientID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	handle, err := task.Await(ctx, func(ctx context.Context) (string, error) { return s.photos.Read(ctx, r) })
	s.metrics.ObserveSimulated("photo_read", time.Since(start))
	if err != nil {
		return nil, err
	}
	return s.apply(clientID, "photo", func(w *RequestWizard) error {
		w.SetPhoto(handle)
		return nil
	})
}

// ClearPhoto removes the draft's photo.
func (s *WizardService) ClearPhoto(clientID string) (*models.WizardState, error) {
	return s.apply(clientID, "clear_photo", func(w *RequestWizard) error {
		w.ClearPhoto()
		return nil
	})
}

// Submit sends the draft from the payment step. The wizard ends on success; on failure
// it stays at the payment step.
func (s *WizardService) Submit(ctx context.Context, clientID string) (*models.SubmitResult, error) {
	s.mu.Lock()
	w, err := s.lookup(clientID)
	if err == nil {
		err = w.beginSubmit()
	}
	if err != nil {
		s.mu.Unlock()
		s.metrics.RecordSubmission(err)
		return nil, err
	}
	draft, total := w.Draft(), w.Total()
	s.mu.Unlock()

	start := time.Now()
	id, err := task.Await(ctx, func(ctx context.Context) (string, error) { return s.submitter.Submit(ctx, draft, total) })
	s.metrics.ObserveSimulated("submit", time.Since(start))
	s.metrics.RecordSubmission(err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		w.endSubmit()
		s.logger.Warn("request submission failed", zap.String("client_id", clientID), zap.Error(err))
		return nil, err
	}
	if current, ok := s.wizards[clientID]; ok && current == w {
		delete(s.wizards, clientID)
	}
	return &models.SubmitResult{RequestID: id, TrackPath: "/track-request/" + id, Total: total}, nil
}

func (s *WizardService) apply(clientID, action string, fn func(*RequestWizard) error) (*models.WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, err := s.lookup(clientID)
	if err != nil {
		return nil, err
	}
	if w.Submitting() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "submission in progress")
	}
	step := w.Step()
	err = fn(w)
	s.metrics.RecordWizardTransition(action, int(step), err)
	if err != nil {
		return nil, err
	}
	state := w.State()
	return &state, nil
}

func (s *WizardService) lookup(clientID string) (*RequestWizard, error) {
	w, ok := s.wizards[clientID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no request in progress")
	}
	return w, nil
}
