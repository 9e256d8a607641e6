package dispatch

import (
	"testing"
)

func TestBuild_CopiesTitleAndBody(t *testing.T) {
	builder := NewBuilder(DefaultBuilderConfig())

	msg := builder.Build(&Record{Title: "T", Message: "M"}, []string{"t1"})

	if msg.Title != "T" {
		t.Errorf("Title = %q, want %q", msg.Title, "T")
	}
	if msg.Body != "M" {
		t.Errorf("Body = %q, want %q", msg.Body, "M")
	}
	if len(msg.Tokens) != 1 || msg.Tokens[0] != "t1" {
		t.Errorf("Tokens = %v, want [t1]", msg.Tokens)
	}
}

func TestBuild_DataFieldDefaults(t *testing.T) {
	builder := NewBuilder(DefaultBuilderConfig())

	tests := []struct {
		name string
		data map[string]any
		want map[string]string
	}{
		{
			name: "nil data map",
			data: nil,
			want: map[string]string{
				"groupId":      "",
				"expenseId":    "",
				"amount":       "",
				"click_action": "FLUTTER_NOTIFICATION_CLICK",
			},
		},
		{
			name: "all fields present",
			data: map[string]any{"groupId": "g1", "expenseId": "e1", "amount": "12.50"},
			want: map[string]string{
				"groupId":      "g1",
				"expenseId":    "e1",
				"amount":       "12.50",
				"click_action": "FLUTTER_NOTIFICATION_CLICK",
			},
		},
		{
			name: "numeric amount coerced to string",
			data: map[string]any{"groupId": "g1", "amount": float64(42.5)},
			want: map[string]string{
				"groupId":      "g1",
				"expenseId":    "",
				"amount":       "42.5",
				"click_action": "FLUTTER_NOTIFICATION_CLICK",
			},
		},
		{
			name: "integer amount",
			data: map[string]any{"amount": 7},
			want: map[string]string{
				"groupId":      "",
				"expenseId":    "",
				"amount":       "7",
				"click_action": "FLUTTER_NOTIFICATION_CLICK",
			},
		},
		{
			name: "nil field value",
			data: map[string]any{"groupId": nil},
			want: map[string]string{
				"groupId":      "",
				"expenseId":    "",
				"amount":       "",
				"click_action": "FLUTTER_NOTIFICATION_CLICK",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := builder.Build(&Record{Title: "T", Message: "M", Data: tt.data}, []string{"t1"})

			if len(msg.Data) != len(tt.want) {
				t.Fatalf("Data = %v, want %v", msg.Data, tt.want)
			}
			for k, want := range tt.want {
				if got := msg.Data[k]; got != want {
					t.Errorf("Data[%q] = %q, want %q", k, got, want)
				}
			}
		})
	}
}

func TestBuild_TagFromGroupID(t *testing.T) {
	builder := NewBuilder(DefaultBuilderConfig())

	msg := builder.Build(&Record{Data: map[string]any{"groupId": "g1"}}, nil)
	if msg.Android.Tag != "g1" {
		t.Errorf("Android.Tag = %q, want %q", msg.Android.Tag, "g1")
	}

	msg = builder.Build(&Record{}, nil)
	if msg.Android.Tag != "default" {
		t.Errorf("Android.Tag = %q, want fallback %q", msg.Android.Tag, "default")
	}
}

func TestBuild_StaticPlatformHints(t *testing.T) {
	builder := NewBuilder(DefaultBuilderConfig())

	msg := builder.Build(&Record{Title: "T", Message: "M"}, []string{"t1"})

	android := msg.Android
	if android.ChannelID != "expenses_updates" {
		t.Errorf("ChannelID = %q, want %q", android.ChannelID, "expenses_updates")
	}
	if android.Priority != "high" {
		t.Errorf("Priority = %q, want %q", android.Priority, "high")
	}
	if android.Sound != "default" {
		t.Errorf("Sound = %q, want %q", android.Sound, "default")
	}
	if android.Visibility != "public" {
		t.Errorf("Visibility = %q, want %q", android.Visibility, "public")
	}
	if android.NotificationCount != 1 {
		t.Errorf("NotificationCount = %d, want 1", android.NotificationCount)
	}
	if android.Icon != "@mipmap/ic_launcher" {
		t.Errorf("Icon = %q, want %q", android.Icon, "@mipmap/ic_launcher")
	}

	apns := msg.APNS
	if apns.Sound != "default" || apns.Badge != 1 || !apns.ContentAvailable {
		t.Errorf("APNS hints = %+v, want default sound, badge 1, content-available", apns)
	}
}
