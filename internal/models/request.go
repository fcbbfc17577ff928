package models

import "time"

// RequestStatus is the lifecycle state of a submitted ID card request.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusApproved   RequestStatus = "approved"
	StatusRejected   RequestStatus = "rejected"
	StatusProcessing RequestStatus = "processing"
	StatusReady      RequestStatus = "ready"
	StatusDelivered  RequestStatus = "delivered"
)

// AllStatuses lists statuses in display order.
var AllStatuses = []RequestStatus{
	StatusPending, StatusApproved, StatusProcessing, StatusRejected, StatusReady, StatusDelivered,
}

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// StatusInfo is the display descriptor attached to every record.
type StatusInfo struct {
	ID         string        `json:"id"`
	Status     RequestStatus `json:"status"`
	StatusText string        `json:"statusText"`
	Color      string        `json:"color"`
}

var statusInfos = map[RequestStatus]StatusInfo{
	StatusPending:    {ID: "pending", Status: StatusPending, StatusText: "Pending", Color: "text-amber-500"},
	StatusApproved:   {ID: "approved", Status: StatusApproved, StatusText: "Approved", Color: "text-green-500"},
	StatusRejected:   {ID: "rejected", Status: StatusRejected, StatusText: "Rejected", Color: "text-red-500"},
	StatusProcessing: {ID: "processing", Status: StatusProcessing, StatusText: "Processing", Color: "text-blue-500"},
	StatusReady:      {ID: "ready", Status: StatusReady, StatusText: "Ready for Pickup", Color: "text-teal-500"},
	StatusDelivered:  {ID: "delivered", Status: StatusDelivered, StatusText: "Delivered", Color: "text-gray-500"},
}

// Info returns the display descriptor for s.
func (s RequestStatus) Info() StatusInfo {
	if info, ok := statusInfos[s]; ok {
		return info
	}
	return StatusInfo{ID: string(s), Status: s, StatusText: string(s)}
}

// PaymentStatus captures whether the card fee has been paid.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// IDRequest is an immutable, previously submitted request.
type IDRequest struct {
	ID            string        `json:"id"`
	StudentID     string        `json:"studentId"`
	StudentName   string        `json:"studentName"`
	Department    string        `json:"department"`
	Program       string        `json:"program"`
	RequestDate   string        `json:"requestDate"`
	Status        StatusInfo    `json:"status"`
	PhotoURL      string        `json:"photoUrl,omitempty"`
	Comments      string        `json:"comments,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	UpdatedAt     string        `json:"updatedAt"`
}

// RequestFilter captures admin listing criteria. Zero values mean "no constraint".
// From and To bound the request date as [From, To).
type RequestFilter struct {
	Status     RequestStatus
	Search     string
	Department string
	From       time.Time
	To         time.Time
	Page       int
	PageSize   int
}

// Timeline stage states.
const (
	StageComplete  = "complete"
	StageCurrent   = "current"
	StageUpcoming  = "upcoming"
	StageRejected  = "rejected"
	StageCancelled = "cancelled"
)

// TimelineStage is one step of the tracking timeline.
type TimelineStage struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// NotificationType classifies notifications.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a read-only message shown on the student dashboard.
type Notification struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Date    string           `json:"date"`
	Read    bool             `json:"read"`
	Type    NotificationType `json:"type"`
}

// RequestStats are the aggregate counters shown on admin views.
type RequestStats struct {
	Total       int   `json:"total"`
	Pending     int   `json:"pending"`
	Approved    int   `json:"approved"`
	Processing  int   `json:"processing"`
	Ready       int   `json:"ready"`
	Rejected    int   `json:"rejected"`
	WeeklyData  []int `json:"weeklyData"`
	MonthlyData []int `json:"monthlyData"`
}

// DateLayout is the calendar date format used by mock records.
const DateLayout = "2006-01-02"

// DaysAgo formats the date n days before now.
func DaysAgo(now time.Time, n int) string {
	return now.AddDate(0, 0, -n).Format(DateLayout)
}
