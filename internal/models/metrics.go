package models

import "time"

// MetricsSnapshot is a lightweight aggregate served next to /metrics.
type MetricsSnapshot struct {
	RequestsTotal             uint64    `json:"requestsTotal"`
	AverageRequestDurationMs  float64   `json:"averageRequestDurationMs"`
	UpstreamCalls             uint64    `json:"upstreamCalls"`
	AverageUpstreamDurationMs float64   `json:"averageUpstreamDurationMs"`
	Refreshes                 uint64    `json:"refreshes"`
	RefreshFailures           uint64    `json:"refreshFailures"`
	StorageHitRatio           float64   `json:"storageHitRatio"`
	ImportedRows              uint64    `json:"importedRows"`
	FailedRows                uint64    `json:"failedRows"`
	Votes                     uint64    `json:"votes"`
	Goroutines                int       `json:"goroutines"`
	GeneratedAt               time.Time `json:"generatedAt"`
}
