package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-id-api/internal/dto"
	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
)

type fakeAdminRequestSrv struct {
	query   dto.AdminRequestQuery
	id      string
	action  dto.AdminAction
	comment string
	ids     []string
	actor   *models.Session
	err     error
}

func (f *fakeAdminRequestSrv) List(_ context.Context, query dto.AdminRequestQuery) ([]models.IDRequest, *models.Pagination, error) {
	f.query = query
	if f.err != nil {
		return nil, nil, f.err
	}
	return []models.IDRequest{{ID: "REQ-2023-0001"}}, &models.Pagination{Page: 1, PageSize: 10, TotalCount: 1, TotalPages: 1}, nil
}

func (f *fakeAdminRequestSrv) Act(_ context.Context, id string, action dto.AdminAction, req dto.AdminActionRequest, actor *models.Session) (*dto.AdminActionResponse, error) {
	f.id, f.action, f.comment, f.actor = id, action, req.Comment, actor
	if f.err != nil {
		return nil, f.err
	}
	return &dto.AdminActionResponse{Action: action, Request: models.IDRequest{ID: id}, Comment: req.Comment}, nil
}

func (f *fakeAdminRequestSrv) ActBatch(_ context.Context, action dto.AdminAction, req dto.AdminBatchRequest, actor *models.Session) (*dto.AdminBatchResponse, error) {
	f.action, f.ids, f.comment, f.actor = action, req.IDs, req.Comment, actor
	if f.err != nil {
		return nil, f.err
	}
	processed := make([]models.IDRequest, 0, len(req.IDs))
	for _, id := range req.IDs {
		processed = append(processed, models.IDRequest{ID: id})
	}
	return &dto.AdminBatchResponse{Action: action, Processed: processed, NotFound: []string{}, Comment: req.Comment}, nil
}

func TestAdminRequestHandlerListBindsQuery(t *testing.T) {
	srv := &fakeAdminRequestSrv{}
	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/admin/requests?status=approved&search=john&page=2&page_size=5", nil), "c1", testAdmin())

	NewAdminRequestHandler(srv).List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.AdminRequestQuery{Status: "approved", Search: "john", Page: 2, PageSize: 5}, srv.query)
	assert.Contains(t, rec.Body.String(), `"pagination":{"page":1,"page_size":10,"total_count":1,"total_pages":1}`)
}

func TestAdminRequestHandlerListBadPage(t *testing.T) {
	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/admin/requests?page=abc", nil), "c1", testAdmin())

	NewAdminRequestHandler(&fakeAdminRequestSrv{}).List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRequestHandlerActWithoutBody(t *testing.T) {
	srv := &fakeAdminRequestSrv{}
	c, rec := newTestContext(httptest.NewRequest(http.MethodPost, "/admin/requests/REQ-2023-0002/approve", nil), "c1", testAdmin())
	c.Params = gin.Params{{Key: "id", Value: "REQ-2023-0002"}, {Key: "action", Value: "approve"}}

	NewAdminRequestHandler(srv).Act(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "REQ-2023-0002", srv.id)
	assert.Equal(t, dto.AdminActionApprove, srv.action)
	require.NotNil(t, srv.actor)
	assert.Equal(t, "1", srv.actor.ID)
	assert.Equal(t, true, decodeEnvelope(t, rec).Meta["simulated"])
}

func TestAdminRequestHandlerActWithComment(t *testing.T) {
	srv := &fakeAdminRequestSrv{}
	c, rec := newTestContext(jsonRequest(http.MethodPost, "/admin/requests/REQ-2023-0002/reject", `{"comment":"blurry photo"}`), "c1", testAdmin())
	c.Params = gin.Params{{Key: "id", Value: "REQ-2023-0002"}, {Key: "action", Value: "reject"}}

	NewAdminRequestHandler(srv).Act(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "blurry photo", srv.comment)
}

func TestAdminRequestHandlerActNotFound(t *testing.T) {
	srv := &fakeAdminRequestSrv{err: appErrors.Clone(appErrors.ErrNotFound, "request not found")}
	c, rec := newTestContext(httptest.NewRequest(http.MethodPost, "/admin/requests/nope/approve", nil), "c1", testAdmin())
	c.Params = gin.Params{{Key: "id", Value: "nope"}, {Key: "action", Value: "approve"}}

	NewAdminRequestHandler(srv).Act(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRequestHandlerListBindsDepartmentAndDate(t *testing.T) {
	srv := &fakeAdminRequestSrv{}
	c, rec := newTestContext(httptest.NewRequest(http.MethodGet, "/admin/requests?department=Engineering&date=this_week", nil), "c1", testAdmin())

	NewAdminRequestHandler(srv).List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Engineering", srv.query.Department)
	assert.Equal(t, "this_week", srv.query.Date)
}

func TestAdminRequestHandlerActBatch(t *testing.T) {
	srv := &fakeAdminRequestSrv{}
	c, rec := newTestContext(jsonRequest(http.MethodPost, "/admin/request-batches/approve", `{"ids":["REQ-2023-0001","REQ-2023-0002"],"comment":"ok"}`), "c1", testAdmin())
	c.Params = gin.Params{{Key: "action", Value: "approve"}}

	NewAdminRequestHandler(srv).ActBatch(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.AdminActionApprove, srv.action)
	assert.Equal(t, []string{"REQ-2023-0001", "REQ-2023-0002"}, srv.ids)
	assert.Equal(t, "ok", srv.comment)
	require.NotNil(t, srv.actor)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env.Meta["simulated"])
	assert.Contains(t, rec.Body.String(), `"processed":[`)
}

func TestAdminRequestHandlerActBatchRequiresBody(t *testing.T) {
	srv := &fakeAdminRequestSrv{}
	c, rec := newTestContext(httptest.NewRequest(http.MethodPost, "/admin/request-batches/approve", nil), "c1", testAdmin())
	c.Params = gin.Params{{Key: "action", Value: "approve"}}

	NewAdminRequestHandler(srv).ActBatch(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, srv.ids)
}
