package models

import "time"

// SystemMetrics is a point-in-time view of process counters.
type SystemMetrics struct {
	RequestsTotal       uint64    `json:"requestsTotal"`
	RemoteCalls         uint64    `json:"remoteCalls"`
	RemoteFailures      uint64    `json:"remoteFailures"`
	NotificationsSent   uint64    `json:"notificationsSent"`
	NotificationsFailed uint64    `json:"notificationsFailed"`
	Goroutines          int       `json:"goroutines"`
	UptimeSeconds       int64     `json:"uptimeSeconds"`
	GeneratedAt         time.Time `json:"generatedAt"`
}
