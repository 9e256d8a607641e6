package dispatch

import (
	"fmt"
	"strconv"
)

// BuilderConfig holds the static platform hints merged into every message.
type BuilderConfig struct {
	ChannelID   string
	ClickAction string
	DefaultTag  string
	Icon        string
}

// DefaultBuilderConfig returns the delivery hints used by the mobile client.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		ChannelID:   "expenses_updates",
		ClickAction: "FLUTTER_NOTIFICATION_CLICK",
		DefaultTag:  "default",
		Icon:        "@mipmap/ic_launcher",
	}
}

// Builder turns a notification record into a multicast message.
type Builder struct {
	cfg BuilderConfig
}

func NewBuilder(cfg BuilderConfig) *Builder {
	return &Builder{cfg: cfg}
}

// Build is a pure transform: title and body are copied verbatim, every data
// field is looked up with an empty-string default so a missing or nil data
// map never fails the build, and all values are coerced to strings because
// the transport's data channel is string-only. The notification tag is the
// record's groupId, falling back to the configured default.
func (b *Builder) Build(record *Record, tokens []string) *Message {
	groupID := stringField(record.Data, "groupId")

	tag := groupID
	if tag == "" {
		tag = b.cfg.DefaultTag
	}

	return &Message{
		Tokens: tokens,
		Title:  record.Title,
		Body:   record.Message,
		Data: map[string]string{
			"groupId":      groupID,
			"expenseId":    stringField(record.Data, "expenseId"),
			"amount":       stringField(record.Data, "amount"),
			"click_action": b.cfg.ClickAction,
		},
		Android: AndroidHints{
			ChannelID:         b.cfg.ChannelID,
			Priority:          "high",
			Sound:             "default",
			ClickAction:       b.cfg.ClickAction,
			Tag:               tag,
			Visibility:        "public",
			NotificationCount: 1,
			Icon:              b.cfg.Icon,
		},
		APNS: APNSHints{
			Sound:            "default",
			Badge:            1,
			ContentAvailable: true,
		},
	}
}

// stringField reads an optional data field, coercing scalars to strings.
// Absent or nil values normalize to "".
func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}

	switch v := v.(type) {
	case string:
		return v
	case float64: // JSON numbers decode as float64
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
