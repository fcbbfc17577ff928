package dto

import "github.com/noah-isme/campus-id-api/internal/models"

// TrackResponse is a request record with its progress timeline.
type TrackResponse struct {
	Request    models.IDRequest       `json:"request"`
	Timeline   []models.TimelineStage `json:"timeline"`
	NextSteps  []string               `json:"nextSteps"`
	PaymentDue bool                   `json:"paymentDue"`
}
