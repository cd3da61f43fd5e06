// Package push delivers operator push notifications to registered devices.
// Fan-out over many device tokens is this package's concern; callers hand it
// the full token list and a single message.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"lieux_backend/platform/config"

	"golang.org/x/sync/errgroup"
)

// maxTokensPerRequest is the gateway's batch size limit.
const maxTokensPerRequest = 500

// Notifier sends one message to a list of device tokens.
type Notifier interface {
	SendBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}

// NoopNotifier is used when no push gateway is configured.
type NoopNotifier struct{}

// SendBatch does nothing.
func (NoopNotifier) SendBatch(context.Context, []string, string, string, map[string]string) error {
	return nil
}

// HTTPNotifier posts notification batches to an FCM-compatible HTTP gateway.
type HTTPNotifier struct {
	gatewayURL string
	serverKey  string
	client     *http.Client
}

// NewNotifier builds a notifier from configuration, falling back to a noop
// when the gateway is not configured.
func NewNotifier(cfg config.PushConfig) Notifier {
	if !cfg.IsPushEnabled() {
		return NoopNotifier{}
	}
	return &HTTPNotifier{
		gatewayURL: cfg.GetPushGatewayURL(),
		serverKey:  cfg.GetPushServerKey(),
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type pushRequest struct {
	RegistrationIDs []string         `json:"registration_ids"`
	Notification    pushNotification `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SendBatch dispatches the message to all tokens, splitting into requests of
// at most maxTokensPerRequest. Chunks are sent concurrently; the first
// failure is returned after all chunks settle.
func (n *HTTPNotifier) SendBatch(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	if len(tokens) == 0 {
		return nil
	}

	group, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(tokens); start += maxTokensPerRequest {
		end := start + maxTokensPerRequest
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := tokens[start:end]
		group.Go(func() error {
			return n.send(ctx, chunk, title, body, data)
		})
	}

	return group.Wait()
}

func (n *HTTPNotifier) send(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	payload, err := json.Marshal(pushRequest{
		RegistrationIDs: tokens,
		Notification:    pushNotification{Title: title, Body: body},
		Data:            data,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+n.serverKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	return nil
}
