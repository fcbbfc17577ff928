package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-id-api/internal/dto"
	"github.com/noah-isme/campus-id-api/pkg/response"
)

type trackService interface {
	Track(ctx context.Context, id string) (*dto.TrackResponse, error)
}

// TrackHandler serves request tracking.
type TrackHandler struct {
	service trackService
}

// NewTrackHandler constructs the handler.
func NewTrackHandler(service trackService) *TrackHandler {
	return &TrackHandler{service: service}
}

// Track godoc
// @Summary Track a request
// @Description Looks up a submitted request by its exact id and returns its progress timeline
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID, e.g. REQ-2023-0001"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 504 {object} response.Envelope
// @Router /track-request/{id} [get]
func (h *TrackHandler) Track(c *gin.Context) {
	res, err := h.service.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
