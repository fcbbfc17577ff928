package models

// IssueType distinguishes first issue from replacement cards.
type IssueType string

const (
	IssueNew         IssueType = "new"
	IssueReplacement IssueType = "replacement"
)

// DeliveryMethod is how the finished card reaches the student.
type DeliveryMethod string

const (
	DeliveryPickup DeliveryMethod = "pickup"
	DeliveryMail   DeliveryMethod = "mail"
)

// RequestDraft is the in-progress form of the request wizard.
type RequestDraft struct {
	StudentID      string         `json:"studentId"`
	FirstName      string         `json:"firstName" validate:"required"`
	LastName       string         `json:"lastName" validate:"required"`
	Email          string         `json:"email" validate:"required,email"`
	Department     string         `json:"department" validate:"required"`
	Program        string         `json:"program" validate:"required"`
	IssueType      IssueType      `json:"issueType" validate:"oneof=new replacement"`
	Reason         string         `json:"reason" validate:"required_if=IssueType replacement"`
	DeliveryMethod DeliveryMethod `json:"deliveryMethod" validate:"oneof=pickup mail"`
	Address        string         `json:"address" validate:"required_if=DeliveryMethod mail"`
	Photo          string         `json:"photo,omitempty"`
	ConsentToTerms bool           `json:"consentToTerms"`
}

// DraftPatch lists the draft fields a client may change. Nil fields are left alone.
type DraftPatch struct {
	StudentID      *string         `json:"studentId"`
	FirstName      *string         `json:"firstName"`
	LastName       *string         `json:"lastName"`
	Email          *string         `json:"email"`
	Department     *string         `json:"department"`
	Program        *string         `json:"program"`
	IssueType      *IssueType      `json:"issueType" validate:"omitempty,oneof=new replacement"`
	Reason         *string         `json:"reason"`
	DeliveryMethod *DeliveryMethod `json:"deliveryMethod" validate:"omitempty,oneof=pickup mail"`
	Address        *string         `json:"address"`
	ConsentToTerms *bool           `json:"consentToTerms"`
}

// WizardStepInfo names one wizard step.
type WizardStepInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// WizardState is the client-facing snapshot of a wizard after every action.
type WizardState struct {
	Step           int              `json:"step"`
	StepName       string           `json:"stepName"`
	Steps          []WizardStepInfo `json:"steps"`
	Draft          RequestDraft     `json:"draft"`
	Total          int              `json:"total"`
	ForwardEnabled bool             `json:"forwardEnabled"`
	Submitting     bool             `json:"submitting"`
}

// SubmitResult is returned once a request has been accepted.
type SubmitResult struct {
	RequestID string `json:"requestId"`
	TrackPath string `json:"trackPath"`
	Total     int    `json:"total"`
}
