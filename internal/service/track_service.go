package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/dto"
	"github.com/noah-isme/campus-id-api/internal/models"
	"github.com/noah-isme/campus-id-api/internal/repository"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/task"
)

type requestFinder interface {
	FindByID(ctx context.Context, id string) (*models.IDRequest, error)
}

var timelineStageNames = []string{
	"Application Submitted",
	"Application Review",
	"ID Card Production",
	"Ready for Pickup/Delivery",
}

var timelineStates = map[models.RequestStatus][]string{
	models.StatusPending:    {models.StageComplete, models.StageCurrent, models.StageUpcoming, models.StageUpcoming},
	models.StatusApproved:   {models.StageComplete, models.StageComplete, models.StageCurrent, models.StageUpcoming},
	models.StatusProcessing: {models.StageComplete, models.StageComplete, models.StageCurrent, models.StageUpcoming},
	models.StatusReady:      {models.StageComplete, models.StageComplete, models.StageComplete, models.StageCurrent},
	models.StatusDelivered:  {models.StageComplete, models.StageComplete, models.StageComplete, models.StageComplete},
	models.StatusRejected:   {models.StageComplete, models.StageRejected, models.StageCancelled, models.StageCancelled},
}

var nextSteps = map[models.RequestStatus][]string{
	models.StatusPending: {
		"Your request is currently being reviewed by our staff.",
		"We will notify you once your application has been approved or if we need additional information.",
	},
	models.StatusApproved: {
		"Your request has been approved! We are now processing your ID card.",
		"You will receive a notification when your ID card is ready for pickup or has been shipped.",
	},
	models.StatusRejected: {
		"Unfortunately, your request has been rejected.",
		"Please review the comments above and submit a new request with the required corrections.",
	},
	models.StatusProcessing: {
		"Your ID card is being produced and will be ready soon.",
		"You will receive a notification once it's ready for pickup or has been shipped.",
	},
	models.StatusReady: {
		"Your ID card is ready for pickup at the Student Services Center.",
		"Please bring a valid government-issued photo ID for verification.",
	},
	models.StatusDelivered: {
		"Your ID card has been successfully delivered.",
		"If you have any issues with your card, please contact the Student Services Center.",
	},
}

// Timeline returns the four progress stages for status. Unknown statuses get the
// pending layout.
func Timeline(status models.RequestStatus) []models.TimelineStage {
	states, ok := timelineStates[status]
	if !ok {
		states = timelineStates[models.StatusPending]
	}
	out := make([]models.TimelineStage, len(timelineStageNames))
	for i, name := range timelineStageNames {
		out[i] = models.TimelineStage{Name: name, Status: states[i]}
	}
	return out
}

// TrackService looks up submitted requests by id.
type TrackService struct {
	repo    requestFinder
	metrics *MetricsService
	logger  *zap.Logger
	delay   time.Duration
}

// NewTrackService constructs a TrackService.
func NewTrackService(repo requestFinder, metrics *MetricsService, logger *zap.Logger, delay time.Duration) *TrackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackService{repo: repo, metrics: metrics, logger: logger, delay: delay}
}

// Track finds the request with exactly this id and renders its timeline.
func (s *TrackService) Track(ctx context.Context, id string) (*dto.TrackResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Validation("validation failed", map[string]string{"id": "Request ID is required"})
	}
	start := time.Now()
	record, err := task.Await(ctx, task.Simulated(s.delay, func(ctx context.Context) (*models.IDRequest, error) {
		return s.repo.FindByID(ctx, id)
	}))
	s.metrics.ObserveSimulated("track", time.Since(start))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Request not found. Please check the ID and try again.")
		}
		if appErrors.IsCode(err, appErrors.ErrTransportFailure.Code) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return &dto.TrackResponse{
		Request:    *record,
		Timeline:   Timeline(record.Status.Status),
		NextSteps:  nextSteps[record.Status.Status],
		PaymentDue: record.PaymentStatus == models.PaymentPending,
	}, nil
}
