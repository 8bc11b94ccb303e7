package firebase

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

const fcmBatchLimit = 500

// EndpointDeactivator is called to drop a push endpoint that FCM reports
// as unregistered. Provided by the caller to avoid coupling to the
// repository.
type EndpointDeactivator func(ctx context.Context, endpoint string) error

// Client implements push.Messenger using Firebase Cloud Messaging.
// Subscription endpoints are FCM registration tokens.
type Client struct {
	msgClient   *messaging.Client
	deactivator EndpointDeactivator
}

// NewClient initializes a Firebase app and returns an FCM client.
// deactivator may be nil.
func NewClient(ctx context.Context, credentialsFile string, deactivator EndpointDeactivator) (*Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	msgClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging client: %w", err)
	}

	return &Client{msgClient: msgClient, deactivator: deactivator}, nil
}

// Send delivers a push notification to a single endpoint.
func (c *Client) Send(ctx context.Context, endpoint string, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: endpoint,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	_, err := c.msgClient.Send(ctx, msg)
	if err != nil {
		if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
			log.Printf("Stale push endpoint (removing): %s", endpoint)
			c.deactivateEndpoint(ctx, endpoint)
			return fmt.Errorf("invalid endpoint: %w", err)
		}
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	return nil
}

// SendMulticast delivers a push notification to multiple endpoints,
// batching into chunks of 500 (Firebase API limit). Partial delivery
// failures are logged and stale endpoints removed; they do not fail the
// call.
func (c *Client) SendMulticast(ctx context.Context, endpoints []string, title, body string, data map[string]string) error {
	if len(endpoints) == 0 {
		return nil
	}

	var totalSuccess, totalFailure int
	for _, batch := range chunkEndpoints(endpoints, fcmBatchLimit) {
		msg := &messaging.MulticastMessage{
			Tokens: batch,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data: data,
		}

		resp, err := c.msgClient.SendEachForMulticast(ctx, msg)
		if err != nil {
			return fmt.Errorf("failed to send FCM multicast: %w", err)
		}

		totalSuccess += resp.SuccessCount
		totalFailure += resp.FailureCount
		if resp.FailureCount > 0 {
			c.handleMulticastFailures(ctx, batch, resp)
		}
	}

	log.Printf("FCM multicast: %d success, %d failure", totalSuccess, totalFailure)
	return nil
}

func (c *Client) handleMulticastFailures(ctx context.Context, endpoints []string, resp *messaging.BatchResponse) {
	for i, sendResp := range resp.Responses {
		if sendResp.Error == nil {
			continue
		}
		if messaging.IsUnregistered(sendResp.Error) || messaging.IsInvalidArgument(sendResp.Error) {
			log.Printf("Stale push endpoint at index %d (removing %s): %v", i, endpoints[i], sendResp.Error)
			c.deactivateEndpoint(ctx, endpoints[i])
		} else {
			log.Printf("FCM send error at index %d: %v", i, sendResp.Error)
		}
	}
}

func (c *Client) deactivateEndpoint(ctx context.Context, endpoint string) {
	if c.deactivator == nil {
		return
	}
	if err := c.deactivator(ctx, endpoint); err != nil {
		log.Printf("Failed to remove push endpoint %s: %v", endpoint, err)
	}
}

func chunkEndpoints(endpoints []string, size int) [][]string {
	var chunks [][]string
	for i := 0; i < len(endpoints); i += size {
		end := i + size
		if end > len(endpoints) {
			end = len(endpoints)
		}
		chunks = append(chunks, endpoints[i:end])
	}
	return chunks
}
