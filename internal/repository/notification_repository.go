package repository

import (
	"context"
	"time"

	"github.com/noah-isme/campus-id-api/internal/models"
)

// NotificationRepository serves the fixed student notifications, newest first.
type NotificationRepository struct {
	items []models.Notification
}

// NewNotificationRepository seeds notifications with dates relative to now.
func NewNotificationRepository(now time.Time) *NotificationRepository {
	return &NotificationRepository{items: []models.Notification{
		{
			ID:      "1",
			Title:   "ID Card Approved",
			Message: "Your ID card request has been approved. It is now being processed.",
			Date:    models.DaysAgo(now, 1),
			Read:    false,
			Type:    models.NotificationSuccess,
		},
		{
			ID:      "2",
			Title:   "Photo Rejected",
			Message: "Your photo was rejected. Please upload a new photo that meets the requirements.",
			Date:    models.DaysAgo(now, 3),
			Read:    true,
			Type:    models.NotificationError,
		},
		{
			ID:      "3",
			Title:   "ID Card Ready",
			Message: "Your ID card is ready for pickup at the Student Services Center.",
			Date:    models.DaysAgo(now, 5),
			Read:    false,
			Type:    models.NotificationInfo,
		},
		{
			ID:      "4",
			Title:   "Payment Required",
			Message: "Please complete the payment for your ID card request.",
			Date:    models.DaysAgo(now, 7),
			Read:    true,
			Type:    models.NotificationWarning,
		},
	}}
}

// Latest returns up to n notifications.
func (r *NotificationRepository) Latest(ctx context.Context, n int) ([]models.Notification, error) {
	if n <= 0 || n > len(r.items) {
		n = len(r.items)
	}
	out := make([]models.Notification, n)
	copy(out, r.items[:n])
	return out, nil
}
