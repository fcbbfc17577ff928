package dto

import "github.com/noah-isme/campus-id-api/internal/models"

// AdminRequestQuery binds the admin request list query string.
type AdminRequestQuery struct {
	Status     string `form:"status" json:"status" validate:"omitempty,oneof=all pending approved processing rejected ready delivered"`
	Search     string `form:"search" json:"search" validate:"max=100"`
	Department string `form:"department" json:"department" validate:"max=100"`
	Date       string `form:"date" json:"date" validate:"omitempty,oneof=all today this_week this_month last_month"`
	Page       int    `form:"page" json:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"page_size" json:"page_size" validate:"omitempty,min=1,max=100"`
}

// AdminAction is a reviewer decision on one request.
type AdminAction string

const (
	AdminActionApprove AdminAction = "approve"
	AdminActionReject  AdminAction = "reject"
	AdminActionProcess AdminAction = "process"
)

// Valid reports whether a is a known action.
func (a AdminAction) Valid() bool {
	return a == AdminActionApprove || a == AdminActionReject || a == AdminActionProcess
}

// AdminActionRequest carries an optional reviewer comment.
type AdminActionRequest struct {
	Comment string `json:"comment" validate:"max=500"`
}

// AdminActionResponse echoes the untouched record after a simulated action.
type AdminActionResponse struct {
	Action  AdminAction      `json:"action"`
	Request models.IDRequest `json:"request"`
	Comment string           `json:"comment,omitempty"`
}

// AdminBatchRequest applies one review action to several requests.
type AdminBatchRequest struct {
	IDs     []string `json:"ids" validate:"required,min=1,max=100,dive,required"`
	Comment string   `json:"comment" validate:"max=500"`
}

// AdminBatchResponse lists the requests the action was recorded for and the ids that
// matched nothing.
type AdminBatchResponse struct {
	Action    AdminAction        `json:"action"`
	Processed []models.IDRequest `json:"processed"`
	NotFound  []string           `json:"notFound"`
	Comment   string             `json:"comment,omitempty"`
}
