package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-id-api/internal/dto"
	"github.com/noah-isme/campus-id-api/internal/models"
	"github.com/noah-isme/campus-id-api/internal/repository"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
)

func newTestAdminService() *AdminRequestService {
	return NewAdminRequestService(repository.NewRequestRepository(time.Now()), nil, zap.NewNop())
}

func requestIDs(items []models.IDRequest) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func TestAdminListFilters(t *testing.T) {
	svc := newTestAdminService()

	cases := []struct {
		name  string
		query dto.AdminRequestQuery
		want  []string
	}{
		{"all", dto.AdminRequestQuery{Status: "all"}, []string{"REQ-2023-0001", "REQ-2023-0002", "REQ-2023-0003", "REQ-2023-0004", "REQ-2023-0005"}},
		{"approved", dto.AdminRequestQuery{Status: "approved"}, []string{"REQ-2023-0001"}},
		{"by name", dto.AdminRequestQuery{Search: "sarah"}, []string{"REQ-2023-0002"}},
		{"by student id", dto.AdminRequestQuery{Search: "stu-2023-1234"}, []string{"REQ-2023-0001"}},
		{"by request id", dto.AdminRequestQuery{Search: "0005"}, []string{"REQ-2023-0005"}},
		{"status and search", dto.AdminRequestQuery{Status: "pending", Search: "john"}, []string{"REQ-2023-0002"}},
		{"no match", dto.AdminRequestQuery{Status: "ready", Search: "john"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, page, err := svc.List(context.Background(), tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, requestIDs(items))
			assert.Equal(t, len(tc.want), page.TotalCount)
		})
	}
}

func TestAdminListPaginates(t *testing.T) {
	svc := newTestAdminService()

	items, page, err := svc.List(context.Background(), dto.AdminRequestQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"REQ-2023-0003", "REQ-2023-0004"}, requestIDs(items))
	assert.Equal(t, &models.Pagination{Page: 2, PageSize: 2, TotalCount: 5, TotalPages: 3}, page)

	_, page, err = svc.List(context.Background(), dto.AdminRequestQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultAdminPageSize, page.PageSize)
	assert.Equal(t, 1, page.TotalPages)
}

func TestAdminListRejectsUnknownStatus(t *testing.T) {
	_, _, err := newTestAdminService().List(context.Background(), dto.AdminRequestQuery{Status: "lost"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "status")
}

func TestAdminActLeavesRecordUnchanged(t *testing.T) {
	svc := newTestAdminService()
	admin := &models.Session{ID: "1", Role: models.RoleAdmin}

	resp, err := svc.Act(context.Background(), "REQ-2023-0002", dto.AdminActionApprove, dto.AdminActionRequest{Comment: "looks good"}, admin)
	require.NoError(t, err)
	assert.Equal(t, dto.AdminActionApprove, resp.Action)
	assert.Equal(t, models.StatusPending, resp.Request.Status.Status)
	assert.Equal(t, "looks good", resp.Comment)

	items, _, err := svc.List(context.Background(), dto.AdminRequestQuery{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, []string{"REQ-2023-0002"}, requestIDs(items))
}

func TestAdminActErrors(t *testing.T) {
	svc := newTestAdminService()

	_, err := svc.Act(context.Background(), "REQ-2023-0001", dto.AdminAction("delete"), dto.AdminActionRequest{}, nil)
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "action")

	_, err = svc.Act(context.Background(), "REQ-0000-0000", dto.AdminActionReject, dto.AdminActionRequest{}, nil)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func newFixedAdminService(now time.Time) *AdminRequestService {
	svc := NewAdminRequestService(repository.NewRequestRepository(now), nil, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestAdminListDepartmentAndDateFilters(t *testing.T) {
	// Tuesday; seeds fall on Mar 3, Mar 2, Feb 29, Feb 27 and Feb 24.
	svc := newFixedAdminService(time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC))

	cases := []struct {
		name  string
		query dto.AdminRequestQuery
		want  []string
	}{
		{"department", dto.AdminRequestQuery{Department: "engineering"}, []string{"REQ-2023-0003"}},
		{"department all", dto.AdminRequestQuery{Department: "all"}, []string{"REQ-2023-0001", "REQ-2023-0002", "REQ-2023-0003", "REQ-2023-0004", "REQ-2023-0005"}},
		{"unknown department", dto.AdminRequestQuery{Department: "Law"}, []string{}},
		{"today", dto.AdminRequestQuery{Date: "today"}, []string{}},
		{"this week", dto.AdminRequestQuery{Date: "this_week"}, []string{}},
		{"this month", dto.AdminRequestQuery{Date: "this_month"}, []string{"REQ-2023-0001", "REQ-2023-0002"}},
		{"last month", dto.AdminRequestQuery{Date: "last_month"}, []string{"REQ-2023-0003", "REQ-2023-0004", "REQ-2023-0005"}},
		{"last month and status", dto.AdminRequestQuery{Date: "last_month", Status: "rejected"}, []string{"REQ-2023-0004"}},
		{"department and month", dto.AdminRequestQuery{Department: "Medicine", Date: "this_month"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, page, err := svc.List(context.Background(), tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, requestIDs(items))
			assert.Equal(t, len(tc.want), page.TotalCount)
		})
	}
}

func TestAdminListRejectsUnknownDatePeriod(t *testing.T) {
	_, _, err := newTestAdminService().List(context.Background(), dto.AdminRequestQuery{Date: "yesterday"})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestDateRange(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 3, 13, 15, 4, 5, 0, time.UTC)
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }

	cases := []struct {
		period   string
		from, to time.Time
	}{
		{"today", day(3, 13), day(3, 14)},
		{"this_week", day(3, 11), day(3, 14)},
		{"this_month", day(3, 1), day(3, 14)},
		{"last_month", day(2, 1), day(3, 1)},
		{"all", time.Time{}, time.Time{}},
		{"", time.Time{}, time.Time{}},
	}
	for _, tc := range cases {
		t.Run(tc.period, func(t *testing.T) {
			from, to := DateRange(tc.period, now)
			assert.True(t, tc.from.Equal(from), "from %s", from)
			assert.True(t, tc.to.Equal(to), "to %s", to)
		})
	}

	sunday := time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC)
	from, _ := DateRange("this_week", sunday)
	assert.True(t, day(3, 11).Equal(from))

	january := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	from, to := DateRange("last_month", january)
	assert.True(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC).Equal(from))
	assert.True(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Equal(to))
}

func TestAdminActBatch(t *testing.T) {
	svc := newTestAdminService()
	actor := &models.Session{ID: "1", Role: models.RoleAdmin}

	res, err := svc.ActBatch(context.Background(), dto.AdminActionApprove, dto.AdminBatchRequest{
		IDs:     []string{"REQ-2023-0002", "nope", "REQ-2023-0002", "REQ-2023-0005"},
		Comment: "bulk",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, dto.AdminActionApprove, res.Action)
	assert.Equal(t, []string{"REQ-2023-0002", "REQ-2023-0005"}, requestIDs(res.Processed))
	assert.Equal(t, []string{"nope"}, res.NotFound)
	assert.Equal(t, "bulk", res.Comment)

	again, err := svc.repo.FindByID(context.Background(), "REQ-2023-0002")
	require.NoError(t, err)
	assert.Equal(t, res.Processed[0].Status, again.Status)
}

func TestAdminActBatchErrors(t *testing.T) {
	svc := newTestAdminService()

	_, err := svc.ActBatch(context.Background(), dto.AdminAction("archive"), dto.AdminBatchRequest{IDs: []string{"REQ-2023-0001"}}, nil)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.ActBatch(context.Background(), dto.AdminActionReject, dto.AdminBatchRequest{}, nil)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))

	_, err = svc.ActBatch(context.Background(), dto.AdminActionReject, dto.AdminBatchRequest{IDs: []string{""}}, nil)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}
