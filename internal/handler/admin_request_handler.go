package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-id-api/internal/dto"
	"github.com/noah-isme/campus-id-api/internal/middleware"
	"github.com/noah-isme/campus-id-api/internal/models"
	"github.com/noah-isme/campus-id-api/pkg/response"
	"github.com/noah-isme/campus-id-api/pkg/validation"
)

type adminRequestService interface {
	List(ctx context.Context, query dto.AdminRequestQuery) ([]models.IDRequest, *models.Pagination, error)
	Act(ctx context.Context, id string, action dto.AdminAction, req dto.AdminActionRequest, actor *models.Session) (*dto.AdminActionResponse, error)
	ActBatch(ctx context.Context, action dto.AdminAction, req dto.AdminBatchRequest, actor *models.Session) (*dto.AdminBatchResponse, error)
}

// AdminRequestHandler exposes the administrative request list.
type AdminRequestHandler struct {
	service adminRequestService
}

// NewAdminRequestHandler constructs the handler.
func NewAdminRequestHandler(service adminRequestService) *AdminRequestHandler {
	return &AdminRequestHandler{service: service}
}

// List godoc
// @Summary List ID card requests
// @Tags Admin
// @Produce json
// @Param status query string false "Status filter (all, pending, approved, processing, rejected, ready, delivered)"
// @Param search query string false "Matches student name, request id or student id"
// @Param department query string false "Department, or all"
// @Param date query string false "Request date period (all, today, this_week, this_month, last_month)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/requests [get]
func (h *AdminRequestHandler) List(c *gin.Context) {
	var query dto.AdminRequestQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, validation.Error(err, "invalid query parameters"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Act godoc
// @Summary Review a request
// @Description Records an approve, reject or process decision. Records are not modified.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param action path string true "approve | reject | process"
// @Param payload body dto.AdminActionRequest false "Optional comment"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/requests/{id}/{action} [post]
func (h *AdminRequestHandler) Act(c *gin.Context) {
	var req dto.AdminActionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, validation.Error(err, "invalid action payload"))
		return
	}
	res, err := h.service.Act(c.Request.Context(), c.Param("id"), dto.AdminAction(c.Param("action")), req, sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.MarkSimulated(c)
	response.JSON(c, http.StatusOK, res, nil, middleware.Meta(c))
}

// ActBatch godoc
// @Summary Review several requests
// @Description Records one decision for every listed id. Unknown ids are returned in notFound.
// @Tags Admin
// @Accept json
// @Produce json
// @Param action path string true "approve | reject | process"
// @Param payload body dto.AdminBatchRequest true "Request ids and optional comment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/request-batches/{action} [post]
func (h *AdminRequestHandler) ActBatch(c *gin.Context) {
	var req dto.AdminBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.Error(err, "invalid batch payload"))
		return
	}
	res, err := h.service.ActBatch(c.Request.Context(), dto.AdminAction(c.Param("action")), req, sessionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.MarkSimulated(c)
	response.JSON(c, http.StatusOK, res, nil, middleware.Meta(c))
}
