package dto

import "time"

type RateLimitInfo struct {
	Allowed   bool       `json:"allowed"`
	Remaining int        `json:"remaining"`
	ResetTime *time.Time `json:"reset_time,omitempty"`
}

type RateLimitStats struct {
	MaxRequests   int       `json:"max_requests"`
	WindowSeconds int       `json:"window_seconds"`
	ActiveWindows int       `json:"active_windows"`
	Timestamp     time.Time `json:"timestamp"`
}
