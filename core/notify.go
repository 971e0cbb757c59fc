package core

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// NotificationSink is any service that can show transient messages to the user.
// Notifications stack: each one is dismissed after its own duration.
type NotificationSink interface {
	Show(message string, severity Severity, duration time.Duration)
}

// Dialog is the host's modal UI for blocking questions.
type Dialog interface {
	// Confirm asks a yes/no question. false aborts the operation.
	Confirm(prompt string) bool
	// Secret asks for a hidden value (e.g. a password). ok is false when the user cancels.
	Secret(prompt string) (value string, ok bool)
}
