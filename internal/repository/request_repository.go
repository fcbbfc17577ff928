package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/noah-isme/campus-id-api/internal/models"
)

// RequestRepository serves the fixed, read-only collection of ID card requests.
// Records are seeded once; nothing mutates them afterwards.
type RequestRepository struct {
	records []models.IDRequest
	stats   models.RequestStats
	seq     int64
	now     func() time.Time
}

// NewRequestRepository seeds the mock collection with dates relative to now.
func NewRequestRepository(now time.Time) *RequestRepository {
	records := seedRequests(now)
	return &RequestRepository{
		records: records,
		stats:   seedStats(),
		seq:     highestSequence(records),
		now:     time.Now,
	}
}

// FindByID returns the record whose id matches exactly (case-sensitive).
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.IDRequest, error) {
	for i := range r.records {
		if r.records[i].ID == id {
			rec := r.records[i]
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("find request %q: %w", id, ErrNotFound)
}

// List filters and paginates the collection, returning the page and the filtered total.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.IDRequest, int, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	matched := make([]models.IDRequest, 0, len(r.records))
	for _, rec := range r.records {
		if filter.Status != "" && rec.Status.Status != filter.Status {
			continue
		}
		if search != "" && !matchesSearch(rec, search) {
			continue
		}
		if filter.Department != "" && !strings.EqualFold(rec.Department, filter.Department) {
			continue
		}
		if !withinDates(rec, filter.From, filter.To) {
			continue
		}
		matched = append(matched, rec)
	}

	total := len(matched)
	if filter.PageSize <= 0 {
		return matched, total, nil
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * filter.PageSize
	if start >= total {
		return []models.IDRequest{}, total, nil
	}
	end := start + filter.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// ListByStudent returns the records belonging to one student id, newest first as seeded.
func (r *RequestRepository) ListByStudent(ctx context.Context, studentID string) ([]models.IDRequest, error) {
	out := make([]models.IDRequest, 0)
	for _, rec := range r.records {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Recent returns up to n records in collection order.
func (r *RequestRepository) Recent(ctx context.Context, n int) ([]models.IDRequest, error) {
	if n <= 0 || n > len(r.records) {
		n = len(r.records)
	}
	out := make([]models.IDRequest, n)
	copy(out, r.records[:n])
	return out, nil
}

// Stats returns the aggregate counters.
func (r *RequestRepository) Stats(ctx context.Context) (models.RequestStats, error) {
	s := r.stats
	s.WeeklyData = append([]int(nil), r.stats.WeeklyData...)
	s.MonthlyData = append([]int(nil), r.stats.MonthlyData...)
	return s, nil
}

// NextID mints a fresh request identifier continuing after the seeded collection.
// The identifier is never stored.
func (r *RequestRepository) NextID() string {
	n := atomic.AddInt64(&r.seq, 1)
	return fmt.Sprintf("REQ-%d-%04d", r.now().Year(), n)
}

func matchesSearch(rec models.IDRequest, needle string) bool {
	return strings.Contains(strings.ToLower(rec.StudentName), needle) ||
		strings.Contains(strings.ToLower(rec.ID), needle) ||
		strings.Contains(strings.ToLower(rec.StudentID), needle)
}

func withinDates(rec models.IDRequest, from, to time.Time) bool {
	if from.IsZero() && to.IsZero() {
		return true
	}
	loc := to.Location()
	if !from.IsZero() {
		loc = from.Location()
	}
	date, err := time.ParseInLocation(models.DateLayout, rec.RequestDate, loc)
	if err != nil {
		return false
	}
	if !from.IsZero() && date.Before(from) {
		return false
	}
	return to.IsZero() || date.Before(to)
}

func highestSequence(records []models.IDRequest) int64 {
	var max int64
	for _, rec := range records {
		idx := strings.LastIndex(rec.ID, "-")
		if idx < 0 {
			continue
		}
		if n, err := strconv.ParseInt(rec.ID[idx+1:], 10, 64); err == nil && n > max {
			max = n
		}
	}
	return max
}

func seedRequests(now time.Time) []models.IDRequest {
	return []models.IDRequest{
		{
			ID:            "REQ-2023-0001",
			StudentID:     "STU-2023-1234",
			StudentName:   "John Smith",
			Department:    "Computer Science",
			Program:       "BSc Computer Science",
			RequestDate:   models.DaysAgo(now, 2),
			Status:        models.StatusApproved.Info(),
			PhotoURL:      "https://images.pexels.com/photos/220453/pexels-photo-220453.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2",
			PaymentStatus: models.PaymentPaid,
			UpdatedAt:     models.DaysAgo(now, 1),
		},
		{
			ID:            "REQ-2023-0002",
			StudentID:     "STU-2023-2345",
			StudentName:   "Sarah Johnson",
			Department:    "Business Administration",
			Program:       "MBA",
			RequestDate:   models.DaysAgo(now, 3),
			Status:        models.StatusPending.Info(),
			PaymentStatus: models.PaymentPending,
			UpdatedAt:     models.DaysAgo(now, 3),
		},
		{
			ID:            "REQ-2023-0003",
			StudentID:     "STU-2023-3456",
			StudentName:   "Michael Brown",
			Department:    "Engineering",
			Program:       "MSc Electrical Engineering",
			RequestDate:   models.DaysAgo(now, 5),
			Status:        models.StatusProcessing.Info(),
			PhotoURL:      "https://images.pexels.com/photos/2379004/pexels-photo-2379004.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2",
			PaymentStatus: models.PaymentPaid,
			UpdatedAt:     models.DaysAgo(now, 2),
		},
		{
			ID:            "REQ-2023-0004",
			StudentID:     "STU-2023-4567",
			StudentName:   "Emily Davis",
			Department:    "Arts and Humanities",
			Program:       "BA Fine Arts",
			RequestDate:   models.DaysAgo(now, 7),
			Status:        models.StatusRejected.Info(),
			Comments:      "Photo does not meet requirements. Please upload a new photo with a white background.",
			PaymentStatus: models.PaymentPaid,
			UpdatedAt:     models.DaysAgo(now, 6),
		},
		{
			ID:            "REQ-2023-0005",
			StudentID:     "STU-2023-5678",
			StudentName:   "David Wilson",
			Department:    "Medicine",
			Program:       "MD",
			RequestDate:   models.DaysAgo(now, 10),
			Status:        models.StatusReady.Info(),
			PhotoURL:      "https://images.pexels.com/photos/614810/pexels-photo-614810.jpeg?auto=compress&cs=tinysrgb&w=1260&h=750&dpr=2",
			PaymentStatus: models.PaymentPaid,
			UpdatedAt:     models.DaysAgo(now, 3),
		},
	}
}

func seedStats() models.RequestStats {
	return models.RequestStats{
		Total:       120,
		Pending:     45,
		Approved:    35,
		Processing:  25,
		Ready:       10,
		Rejected:    5,
		WeeklyData:  []int{12, 19, 15, 7, 9, 3, 5},
		MonthlyData: []int{65, 85, 90, 81, 67, 72, 92, 98, 110, 120, 105, 98},
	}
}
