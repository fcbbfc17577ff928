package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/campus-id-api/internal/models"
	appErrors "github.com/noah-isme/campus-id-api/pkg/errors"
	"github.com/noah-isme/campus-id-api/pkg/validation"
)

// WizardStep is a state of the request wizard.
type WizardStep int

const (
	StepPersonalInformation WizardStep = iota + 1
	StepPhotoUpload
	StepReviewSubmit
	StepPayment
)

var stepNames = map[WizardStep]string{
	StepPersonalInformation: "Personal Information",
	StepPhotoUpload:         "Photo Upload",
	StepReviewSubmit:        "Review & Submit",
	StepPayment:             "Payment",
}

// Name returns the display name of the step.
func (s WizardStep) Name() string {
	return stepNames[s]
}

// WizardSteps lists every step in order.
func WizardSteps() []models.WizardStepInfo {
	out := make([]models.WizardStepInfo, 0, len(stepNames))
	for s := StepPersonalInformation; s <= StepPayment; s++ {
		out = append(out, models.WizardStepInfo{ID: int(s), Name: s.Name()})
	}
	return out
}

// FeeSchedule prices an ID card request.
type FeeSchedule struct {
	Base        int
	Replacement int
	Shipping    int
}

// DefaultFees is the standard pricing.
var DefaultFees = FeeSchedule{Base: 15, Replacement: 20, Shipping: 5}

// Total computes the cost of draft.
func (f FeeSchedule) Total(draft models.RequestDraft) int {
	total := f.Base
	if draft.IssueType == models.IssueReplacement {
		total += f.Replacement
	}
	if draft.DeliveryMethod == models.DeliveryMail {
		total += f.Shipping
	}
	return total
}

// transition is a forward edge of the wizard. enabled reports whether the edge may be
// attempted at all; guard validates the draft before it is taken.
type transition struct {
	to      WizardStep
	enabled func(*RequestWizard) bool
	guard   func(*RequestWizard) error
}

var forwardEdges = map[WizardStep]transition{
	StepPersonalInformation: {
		to:    StepPhotoUpload,
		guard: func(w *RequestWizard) error { return w.validateFields("FirstName", "LastName", "Email", "Department", "Program", "IssueType", "Reason") },
	},
	StepPhotoUpload: {
		to:      StepReviewSubmit,
		enabled: func(w *RequestWizard) bool { return w.draft.Photo != "" },
	},
	StepReviewSubmit: {
		to:    StepPayment,
		guard: func(w *RequestWizard) error { return w.validateFields("DeliveryMethod", "Address") },
	},
}

// Messages shown for failed draft fields, keyed by JSON field and validator tag.
var draftMessages = map[string]string{
	"firstName.required":   "First name is required",
	"lastName.required":    "Last name is required",
	"email.required":       "Email is required",
	"email.email":          "Invalid email address",
	"department.required":  "Department is required",
	"program.required":     "Program is required",
	"reason.required_if":   "Reason is required",
	"address.required_if":  "Address is required",
	"issueType.oneof":      "Issue type must be new or replacement",
	"deliveryMethod.oneof": "Delivery method must be pickup or mail",
}

// RequestWizard is the four-step state machine that builds one request draft. It is
// not safe for concurrent use; WizardService serialises access.
type RequestWizard struct {
	step       WizardStep
	draft      models.RequestDraft
	fees       FeeSchedule
	validator  *validator.Validate
	submitting bool
}

// NewRequestWizard starts at step one with defaults taken from session.
func NewRequestWizard(session *models.Session, fees FeeSchedule, validate *validator.Validate) *RequestWizard {
	if validate == nil {
		validate = validation.New()
	}
	return &RequestWizard{
		step:      StepPersonalInformation,
		draft:     DraftFromSession(session),
		fees:      fees,
		validator: validate,
	}
}

// DraftFromSession seeds a draft: first and second words of the name become first and
// last name.
func DraftFromSession(session *models.Session) models.RequestDraft {
	draft := models.RequestDraft{
		IssueType:      models.IssueNew,
		DeliveryMethod: models.DeliveryPickup,
	}
	if session == nil {
		return draft
	}
	parts := strings.Split(session.Name, " ")
	draft.FirstName = parts[0]
	if len(parts) > 1 {
		draft.LastName = parts[1]
	}
	draft.StudentID = session.StudentID
	draft.Email = session.Email
	draft.Department = session.Department
	draft.Program = session.Program
	return draft
}

// Step returns the current step.
func (w *RequestWizard) Step() WizardStep { return w.step }

// Draft returns a copy of the draft.
func (w *RequestWizard) Draft() models.RequestDraft { return w.draft }

// Total returns the derived cost of the current draft.
func (w *RequestWizard) Total() int { return w.fees.Total(w.draft) }

// Submitting reports whether a submission is in flight.
func (w *RequestWizard) Submitting() bool { return w.submitting }

// ForwardEnabled reports whether the forward action of the current step may be attempted.
func (w *RequestWizard) ForwardEnabled() bool {
	if w.submitting {
		return false
	}
	if w.step == StepPayment {
		return true
	}
	edge, ok := forwardEdges[w.step]
	if !ok {
		return false
	}
	return edge.enabled == nil || edge.enabled(w)
}

// Next advances one step when the current step's gate passes. On failure the step is
// unchanged.
func (w *RequestWizard) Next() error {
	if w.submitting {
		return appErrors.Clone(appErrors.ErrConflict, "submission in progress")
	}
	edge, ok := forwardEdges[w.step]
	if !ok {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "the final step is completed by submitting the request")
	}
	if edge.enabled != nil && !edge.enabled(w) {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "a photo is required before continuing")
	}
	if edge.guard != nil {
		if err := edge.guard(w); err != nil {
			return err
		}
	}
	w.step = edge.to
	return nil
}

// Back retreats one step. It returns true when called on the first step, meaning the
// wizard is exited and the draft discarded.
func (w *RequestWizard) Back() (exited bool, err error) {
	if w.submitting {
		return false, appErrors.Clone(appErrors.ErrConflict, "submission in progress")
	}
	if w.step == StepPersonalInformation {
		return true, nil
	}
	w.step--
	return false, nil
}

// Update applies patch to the draft at any step. Earlier steps are not re-validated.
func (w *RequestWizard) Update(patch models.DraftPatch) error {
	if w.submitting {
		return appErrors.Clone(appErrors.ErrConflict, "submission in progress")
	}
	if err := w.validator.Struct(patch); err != nil {
		return draftError(err)
	}
	d := &w.draft
	setString(&d.StudentID, patch.StudentID)
	setString(&d.FirstName, patch.FirstName)
	setString(&d.LastName, patch.LastName)
	setString(&d.Email, patch.Email)
	setString(&d.Department, patch.Department)
	setString(&d.Program, patch.Program)
	setString(&d.Reason, patch.Reason)
	setString(&d.Address, patch.Address)
	if patch.IssueType != nil {
		d.IssueType = *patch.IssueType
	}
	if patch.DeliveryMethod != nil {
		d.DeliveryMethod = *patch.DeliveryMethod
	}
	if patch.ConsentToTerms != nil {
		d.ConsentToTerms = *patch.ConsentToTerms
	}
	return nil
}

// SetPhoto records the displayable photo handle.
func (w *RequestWizard) SetPhoto(handle string) {
	w.draft.Photo = handle
}

// ClearPhoto removes the photo, disabling forward on the photo step.
func (w *RequestWizard) ClearPhoto() {
	w.draft.Photo = ""
}

// beginSubmit checks the submission preconditions and marks the wizard in flight.
func (w *RequestWizard) beginSubmit() error {
	if w.submitting {
		return appErrors.Clone(appErrors.ErrConflict, "submission already in progress")
	}
	if w.step != StepPayment {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "requests can only be submitted from the payment step")
	}
	if !w.draft.ConsentToTerms {
		return appErrors.Validation("validation failed", map[string]string{
			"consentToTerms": "You must agree to the terms and conditions",
		})
	}
	w.submitting = true
	return nil
}

func (w *RequestWizard) endSubmit() {
	w.submitting = false
}

// State renders the client-facing snapshot.
func (w *RequestWizard) State() models.WizardState {
	return models.WizardState{
		Step:           int(w.step),
		StepName:       w.step.Name(),
		Steps:          WizardSteps(),
		Draft:          w.draft,
		Total:          w.Total(),
		ForwardEnabled: w.ForwardEnabled(),
		Submitting:     w.submitting,
	}
}

func (w *RequestWizard) validateFields(fields ...string) error {
	if err := w.validator.StructPartial(w.draft, fields...); err != nil {
		return draftError(err)
	}
	return nil
}

func draftError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return validation.Error(err, "validation failed")
	}
	fields := validation.Fields(err)
	for _, fe := range ve {
		if msg, ok := draftMessages[fe.Field()+"."+fe.Tag()]; ok {
			fields[fe.Field()] = msg
		}
	}
	e := appErrors.Validation("validation failed", fields)
	e.Err = err
	return e
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
