package tasks

import "time"

// Task Types
const (
	// Maintenance tasks
	TaskTypeReservationExpiry    = "reservation:expire"
	TaskTypeAuthTransactionPurge = "auth:purge-transactions"
	TaskTypeActivityLogRetention = "activity:retention"
)

// Task Queues
const (
	QueueCritical = "critical" // For time-sensitive tasks like reservation expiry
	QueueDefault  = "default"  // For regular tasks
	QueueLow      = "low"      // For background tasks like cleanup
)

// Task Priorities (1-10, higher is more important)
const (
	PriorityCritical = 10
	PriorityHigh     = 8
	PriorityNormal   = 5
	PriorityLow      = 3
	PriorityBG       = 1
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
	TimeoutLong   = 30 * time.Minute
)

// Task Retry Settings
const (
	RetryMax     = 5
	RetryDefault = 3
	RetryMin     = 1
)

// Retention windows enforced by the cleanup tasks.
const (
	AuthTransactionRetention = 30 * 24 * time.Hour
	ActivityLogRetention     = 180 * 24 * time.Hour
)
