package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/response"
	"github.com/noah-isme/campus-id-api/pkg/validation"
)

// PhotoFormField is the multipart field carrying the photo upload.
const PhotoFormField = "photo"

type wizardService interface {
	Start(clientID string, session *models.Session) models.WizardState
	State(clientID string) (*models.WizardState, error)
	Update(clientID string, patch models.DraftPatch) (*models.WizardState, error)
	Next(clientID string) (*models.WizardState, error)
	Back(clientID string) (*models.WizardState, error)
	Cancel(clientID string) error
	AttachPhoto(ctx context.Context, clientID string, r io.Reader) (*models.WizardState, error)
	ClearPhoto(clientID string) (*models.WizardState, error)
	Submit(ctx context.Context, clientID string) (*models.SubmitResult, error)
}

// WizardHandler drives the ID card request wizard of the calling client.
type WizardHandler struct {
	service wizardService
}

// NewWizardHandler constructs the handler.
func NewWizardHandler(service wizardService) *WizardHandler {
	return &WizardHandler{service: service}
}

// Start godoc
// @Summary Enter the request wizard
// @Description Starts a draft seeded from the session, or resumes the one in progress
// @Tags Request Wizard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /request-id [post]
func (h *WizardHandler) Start(c *gin.Context) {
	session, clientID, ok := requireSession(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.service.Start(clientID, session), nil)
}

// State godoc
// @Summary Current wizard state
// @Tags Request Wizard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /request-id [get]
func (h *WizardHandler) State(c *gin.Context) {
	_, clientID, ok := requireSession(c)
	if !ok {
		return
	}
	h.respond(c, func() (*models.WizardState, error) { return h.service.State(clientID) })
}

// Update godoc
// @Summary Edit draft fields
// @Tags Request Wizard
// @Accept json
// @Produce json
// @Param payload body models.DraftPatch true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /request-id [patch]
func (h *WizardHandler) Update(c *gin.Context) {
	_, clientID, ok := requireSession(c)
	if !ok {
		return
	}
	var patch models.DraftPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, validation.Error(err, "invalid draft payload"))
		return
	}
	h.respond(c, func() (*models.WizardState, error) { return h.service.Update(clientID, patch) })
}

// Next godoc
// @Summary Advance one step
// @Tags Request Wizard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /request-id/next [post]
func (h *WizardHandler) Next(c *gin.Context) {
	_, clientID, ok := requireSession(c)
	if !ok {
		return
	}
	h.respond(c, func() (*models.WizardState, error) { return h.service.Next(clientID) })
}

// Back godoc
// @Summary Go back one step
// @Description From the first step the wizard is exited and the draft discarded
// @Tags Request Wizard
// @Produce json
// @Success 200 {object} response.Envelope
// @Success 204 {object} response.Envelope
// @Router /request-id/back [post]
func (h *WizardHandler) Back(c *gin.Context) {
	_, clientID, ok := requireSession(c)
	if !ok {
		return
	}
	state, err := h.service.Back(clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if state == nil {
		response.NoContent(c)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}

// Cancel godoc
// @Summary Cancel the request
// @Tags Request Wizard
// @Success 204 {object} response.Envelope
// @Router /request-id [delete]
func (h *WizardHandler) Cancel(c *gin.Context) {
	_, clientID, ok := requireSession(c)
	if !ok {
		return
	}
	if err := h.service.Cancel(clientID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AttachPhoto godoc
// @Summary Upload the card photo
// @Tags Request Wizard
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /request-id/photo [post]
func (h *WizardHandler) AttachPhoto(c *gin.Context) {
	_, clientID, ok := requireSession(c)
	if !ok {
		return
	}
	header, err := c.FormFile(PhotoFormField)
	if err != nil {
		response.Error(c, appErrors.Validation("validation failed", map[string]string{PhotoFormField: "photo file is required"}))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return
	}
	defer file.Close()
	h.respond(c, func() (*models.WizardState, error) { return h.service.AttachPhoto(c.Request.Context(), clientID, file) })
}

// ClearPhoto godoc
// @Summary Remove the card photo
// @Tags Request Wizard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /request-id/photo [delete]
func (h *WizardHandler) ClearPhoto(c *gin.Context) {
	_, clientID, ok := requireSession(c)
	if !ok {
		return
	}
	h.respond(c, func() (*models.WizardState, error) { return h.service.ClearPhoto(clientID) })
}

// Submit godoc
// @Summary Submit the request
// @Description Only from the payment step, with the terms accepted
// @Tags Request Wizard
// @Produce json
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /request-id/submit [post]
func (h *WizardHandler) Submit(c *gin.Context) {
	_, clientID, ok := requireSession(c)
	if !ok {
		return
	}
	res, err := h.service.Submit(c.Request.Context(), clientID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

func (h *WizardHandler) respond(c *gin.Context, fn func() (*models.WizardState, error)) {
	state, err := fn()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, state, nil)
}
