package dto

import "github.com/noah-isme/campus-id-api/internal/models"

// StudentDashboardResponse is the signed-in student's overview.
type StudentDashboardResponse struct {
	User          models.Session        `json:"user"`
	LatestRequest *models.IDRequest     `json:"latestRequest"`
	PaymentDue    bool                  `json:"paymentDue"`
	Notifications []models.Notification `json:"notifications"`
}

// AdminDashboardResponse aggregates request statistics for administrators.
type AdminDashboardResponse struct {
	Stats          models.RequestStats   `json:"stats"`
	Weekly         []SeriesPoint         `json:"weekly"`
	Monthly        []SeriesPoint         `json:"monthly"`
	RecentRequests []models.IDRequest    `json:"recentRequests"`
	System         *models.SystemMetrics `json:"system,omitempty"`
}

// SeriesPoint is one labelled value of a chart series.
type SeriesPoint struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}
