package domain

// TriggerForm identifies which trigger syntax matched an inbound command.
type TriggerForm string

const (
	// TriggerSlash is the `/command args` form.
	TriggerSlash TriggerForm = "slash"
	// TriggerDot is the case-insensitive `.command args` form.
	TriggerDot TriggerForm = "dot"
)

// Invocation is a single inbound text event flowing through the router.
// It lives for exactly one dispatch and is never persisted.
type Invocation struct {
	UserID    string
	ChatID    string
	MessageID string
	Trigger   TriggerForm
	Text      string
}

// DedupKey combines user and message identity for redelivery detection.
func (i Invocation) DedupKey() string {
	return i.UserID + ":" + i.MessageID
}
