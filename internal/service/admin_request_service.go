package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/dto"
	"github.com/noah-isme/campus-id-api/internal/models"
	"github.com/noah-isme/campus-id-api/internal/repository"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/validation"
)

// DefaultAdminPageSize is the admin list page size.
const DefaultAdminPageSize = 10

type requestLister interface {
	FindByID(ctx context.Context, id string) (*models.IDRequest, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.IDRequest, int, error)
}

// AdminRequestService serves the administrative request list and review actions.
type AdminRequestService struct {
	repo      requestLister
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAdminRequestService constructs an AdminRequestService.
func NewAdminRequestService(repo requestLister, validate *validator.Validate, logger *zap.Logger) *AdminRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &AdminRequestService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// List filters by status and department ("all" or empty matches any), request date
// period, and a case-insensitive search over student name, request id and student id,
// then paginates.
func (s *AdminRequestService) List(ctx context.Context, query dto.AdminRequestQuery) ([]models.IDRequest, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, validation.Error(err, "invalid query parameters")
	}
	filter := models.RequestFilter{
		Search:   strings.TrimSpace(query.Search),
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Status != "" && query.Status != "all" {
		filter.Status = models.RequestStatus(query.Status)
	}
	if dept := strings.TrimSpace(query.Department); dept != "" && dept != "all" {
		filter.Department = dept
	}
	filter.From, filter.To = DateRange(query.Date, s.now())
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = DefaultAdminPageSize
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
		TotalPages: (total + filter.PageSize - 1) / filter.PageSize,
	}
	return items, pagination, nil
}

// Act records a reviewer decision. Records are read-only, so the action is logged and
// the record returned unchanged.
func (s *AdminRequestService) Act(ctx context.Context, id string, action dto.AdminAction, req dto.AdminActionRequest, actor *models.Session) (*dto.AdminActionResponse, error) {
	if !action.Valid() {
		return nil, appErrors.Validation("validation failed", map[string]string{"action": "action must be one of approve, reject, process"})
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid action payload")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	s.logger.Info("admin request action",
		zap.String("request_id", record.ID),
		zap.String("action", string(action)),
		zap.String("actor_id", actorID),
		zap.String("current_status", string(record.Status.Status)),
	)
	return &dto.AdminActionResponse{Action: action, Request: *record, Comment: req.Comment}, nil
}

// ActBatch records one reviewer decision for every listed request. Unknown ids are
// reported back instead of failing the batch.
func (s *AdminRequestService) ActBatch(ctx context.Context, action dto.AdminAction, req dto.AdminBatchRequest, actor *models.Session) (*dto.AdminBatchResponse, error) {
	if !action.Valid() {
		return nil, appErrors.Validation("validation failed", map[string]string{"action": "action must be one of approve, reject, process"})
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid batch payload")
	}
	res := &dto.AdminBatchResponse{
		Action:    action,
		Processed: make([]models.IDRequest, 0, len(req.IDs)),
		NotFound:  []string{},
		Comment:   req.Comment,
	}
	seen := make(map[string]struct{}, len(req.IDs))
	for _, id := range req.IDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		record, err := s.repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				res.NotFound = append(res.NotFound, id)
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
		}
		res.Processed = append(res.Processed, *record)
	}
	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	s.logger.Info("admin batch action",
		zap.String("action", string(action)),
		zap.String("actor_id", actorID),
		zap.Int("processed", len(res.Processed)),
		zap.Strings("not_found", res.NotFound),
	)
	return res, nil
}

// DateRange turns a request date period into [from, to) bounds relative to now.
// "all", empty and unknown periods are unbounded. Weeks start on Monday.
func DateRange(period string, now time.Time) (time.Time, time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	switch period {
	case "today":
		return today, tomorrow
	case "this_week":
		offset := (int(today.Weekday()) + 6) % 7
		return today.AddDate(0, 0, -offset), tomorrow
	case "this_month":
		return monthStart, tomorrow
	case "last_month":
		return monthStart.AddDate(0, -1, 0), monthStart
	default:
		return time.Time{}, time.Time{}
	}
}
