package fcm

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"notifyd/internal/domain/dispatch"
)

const fcmBatchLimit = 500

// Client implements dispatch.Gateway using Firebase Cloud Messaging.
type Client struct {
	msgClient *messaging.Client
}

// NewClient initializes a Firebase app and returns an FCM gateway client.
// With an empty credentialsFile the SDK falls back to application default
// credentials.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return &Client{msgClient: msgClient}, nil
}

// Send delivers the multicast message and returns one outcome per token, in
// input token order. Batches into chunks of 500 (Firebase API limit).
// Per-token failures are reported as outcomes, never as errors; the call
// itself fails only when a batch cannot be submitted at all, wrapping
// dispatch.ErrGatewayUnavailable.
func (c *Client) Send(ctx context.Context, msg *dispatch.Message) ([]dispatch.DeliveryOutcome, error) {
	if len(msg.Tokens) == 0 {
		return nil, nil
	}

	outcomes := make([]dispatch.DeliveryOutcome, 0, len(msg.Tokens))
	var totalSuccess, totalFailure int

	for _, batch := range chunkTokens(msg.Tokens, fcmBatchLimit) {
		resp, err := c.msgClient.SendEachForMulticast(ctx, toMulticastMessage(msg, batch))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", dispatch.ErrGatewayUnavailable, err)
		}

		totalSuccess += resp.SuccessCount
		totalFailure += resp.FailureCount
		for _, sendResp := range resp.Responses {
			if sendResp.Error == nil {
				outcomes = append(outcomes, dispatch.DeliveryOutcome{Success: true})
				continue
			}
			outcomes = append(outcomes, dispatch.DeliveryOutcome{
				ErrorCode: classifySendError(sendResp.Error),
			})
		}
	}

	log.Printf("FCM multicast: %d success, %d failure", totalSuccess, totalFailure)
	return outcomes, nil
}

// classifySendError normalizes a per-token SDK error into a stable code
// string that the reconciler can classify.
func classifySendError(err error) string {
	switch {
	case messaging.IsUnregistered(err):
		return dispatch.ErrCodeUnregistered
	case messaging.IsInvalidArgument(err):
		return dispatch.ErrCodeInvalidToken
	case messaging.IsQuotaExceeded(err):
		return dispatch.ErrCodeQuotaExceeded
	case messaging.IsUnavailable(err):
		return dispatch.ErrCodeUnavailable
	case messaging.IsInternal(err):
		return dispatch.ErrCodeInternal
	default:
		return dispatch.ErrCodeUnknown
	}
}

func toMulticastMessage(msg *dispatch.Message, tokens []string) *messaging.MulticastMessage {
	count := msg.Android.NotificationCount
	badge := msg.APNS.Badge

	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: msg.Android.Priority,
			Notification: &messaging.AndroidNotification{
				ChannelID:             msg.Android.ChannelID,
				Sound:                 msg.Android.Sound,
				ClickAction:           msg.Android.ClickAction,
				Tag:                   msg.Android.Tag,
				Icon:                  msg.Android.Icon,
				Priority:              messaging.PriorityHigh,
				Visibility:            androidVisibility(msg.Android.Visibility),
				NotificationCount:     &count,
				DefaultSound:          true,
				DefaultVibrateTimings: true,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound:            msg.APNS.Sound,
					Badge:            &badge,
					ContentAvailable: msg.APNS.ContentAvailable,
					Alert: &messaging.ApsAlert{
						Title: msg.Title,
						Body:  msg.Body,
					},
				},
			},
		},
	}
}

func androidVisibility(v string) messaging.AndroidNotificationVisibility {
	switch v {
	case "public":
		return messaging.VisibilityPublic
	case "secret":
		return messaging.VisibilitySecret
	default:
		return messaging.VisibilityPrivate
	}
}

func chunkTokens(tokens []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(tokens); i += size {
		end := i + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, tokens[i:end])
	}
	return chunks
}
