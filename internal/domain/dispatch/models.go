package dispatch

import "errors"

// Domain errors
var (
	// ErrGatewayUnavailable means the multicast send call itself could not be
	// completed. Per-token delivery failures are data, not errors.
	ErrGatewayUnavailable = errors.New("push gateway unavailable")
)

// Delivery failure codes, normalized from the gateway's per-token errors.
const (
	ErrCodeInvalidToken  = "messaging/invalid-registration-token"
	ErrCodeUnregistered  = "messaging/registration-token-not-registered"
	ErrCodeQuotaExceeded = "messaging/quota-exceeded"
	ErrCodeUnavailable   = "messaging/unavailable"
	ErrCodeInternal      = "messaging/internal-error"
	ErrCodeUnknown       = "messaging/unknown-error"
)

// Record is the notification document that triggers a dispatch. It is
// created by an upstream business process and never mutated here.
type Record struct {
	ID      string         `json:"id"`
	UserID  string         `json:"userId"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// Recipient is a user together with their registered push tokens,
// as read from the recipient store at resolution time.
type Recipient struct {
	UserID string
	Tokens []string
}

// Message is the platform-neutral multicast payload. Derived and transient;
// never persisted.
type Message struct {
	Tokens  []string
	Title   string
	Body    string
	Data    map[string]string
	Android AndroidHints
	APNS    APNSHints
}

// AndroidHints carries Android-specific delivery hints.
type AndroidHints struct {
	ChannelID         string
	Priority          string
	Sound             string
	ClickAction       string
	Tag               string
	Visibility        string
	NotificationCount int
	Icon              string
}

// APNSHints carries Apple-specific delivery hints.
type APNSHints struct {
	Sound            string
	Badge            int
	ContentAvailable bool
}

// DeliveryOutcome is the result of sending to a single token. Outcomes are
// returned in the same order as the message's token list.
type DeliveryOutcome struct {
	Success   bool
	ErrorCode string
}

// IsPermanentFailure reports whether a delivery failure code means the token
// will never succeed again and should be removed from the recipient.
// Anything else (quota, transient transport errors, unknown codes) leaves the
// token in place for the next triggering event.
func IsPermanentFailure(code string) bool {
	return code == ErrCodeInvalidToken || code == ErrCodeUnregistered
}

// Result summarizes one pipeline pass for a single notification record.
type Result struct {
	Skipped       bool
	Tokens        int
	Delivered     int
	Failed        int
	RemovedTokens []string
}
