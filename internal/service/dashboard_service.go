package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/dto"
	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
)

type dashboardRequestSource interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.IDRequest, error)
	Recent(ctx context.Context, n int) ([]models.IDRequest, error)
	Stats(ctx context.Context) (models.RequestStats, error)
}

type notificationSource interface {
	Latest(ctx context.Context, n int) ([]models.Notification, error)
}

// Chart labels for the statistics series.
var (
	WeekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	MonthLabels   = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

const adminDashboardCacheKey = "dash:admin"

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL           time.Duration
	NotificationsLimit int
	RecentLimit        int
}

// DashboardService composes the student and admin overview payloads.
type DashboardService struct {
	requests      dashboardRequestSource
	notifications notificationSource
	cache         *CacheService
	metrics       *MetricsService
	logger        *zap.Logger
	cfg           DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Requests      dashboardRequestSource
	Notifications notificationSource
	Cache         *CacheService
	Metrics       *MetricsService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.NotificationsLimit <= 0 {
		cfg.NotificationsLimit = 3
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		requests:      params.Requests,
		notifications: params.Notifications,
		cache:         params.Cache,
		metrics:       params.Metrics,
		logger:        logger,
		cfg:           cfg,
	}
}

// Student returns the latest request of the session's student and recent notifications.
func (s *DashboardService) Student(ctx context.Context, session *models.Session) (*dto.StudentDashboardResponse, error) {
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	resp := &dto.StudentDashboardResponse{User: *session}
	if session.StudentID != "" {
		owned, err := s.requests.ListByStudent(ctx, session.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requests")
		}
		if len(owned) > 0 {
			latest := owned[0]
			resp.LatestRequest = &latest
			resp.PaymentDue = latest.PaymentStatus == models.PaymentPending
		}
	}
	notes, err := s.notifications.Latest(ctx, s.cfg.NotificationsLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notifications")
	}
	resp.Notifications = notes
	return resp, nil
}

// Admin returns aggregate statistics and recent requests and indicates cache utilisation.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboardResponse, bool, error) {
	summary, hit, err := Remember(ctx, s.cache, adminDashboardCacheKey, s.cfg.CacheTTL, s.loadAdmin)
	if err != nil {
		return nil, false, err
	}
	summary.System = s.systemSnapshot()
	return summary, hit, nil
}

func (s *DashboardService) loadAdmin(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	stats, err := s.requests.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load statistics")
	}
	recent, err := s.requests.Recent(ctx, s.cfg.RecentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent requests")
	}
	return &dto.AdminDashboardResponse{
		Stats:          stats,
		Weekly:         Series(WeekdayLabels, stats.WeeklyData),
		Monthly:        Series(MonthLabels, stats.MonthlyData),
		RecentRequests: recent,
	}, nil
}

// Series pairs labels with values; surplus values are labelled by position.
func Series(labels []string, values []int) []dto.SeriesPoint {
	out := make([]dto.SeriesPoint, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		out[i] = dto.SeriesPoint{Label: label, Value: v}
	}
	return out
}

func (s *DashboardService) systemSnapshot() *models.SystemMetrics {
	if s.metrics == nil {
		return nil
	}
	snap := s.metrics.Snapshot()
	return &snap
}
