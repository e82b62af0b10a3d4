package models

import "time"

// Severity of a toast message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Toast is a transient user-visible message.
type Toast struct {
	ID        uint64
	Message   string
	Severity  Severity
	CreatedAt time.Time
}
