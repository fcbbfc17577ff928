package models

import "time"

// SystemMetrics is a lightweight snapshot of process counters shown on the admin dashboard.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	SignInsSucceeded         uint64    `json:"sign_ins_succeeded"`
	SignInsFailed            uint64    `json:"sign_ins_failed"`
	RequestsSubmitted        uint64    `json:"requests_submitted"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
