// Package notifier dispatches outbound WhatsApp messages. Delivery is fire
// and forget: callers log failures and move on, they never propagate them.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// WhatsAppSender posts to the WhatsApp relay endpoint with a bearer token.
type WhatsAppSender struct {
	apiURL     string
	token      string
	httpClient *http.Client
}

func NewWhatsAppSender(apiURL, token string) *WhatsAppSender {
	return &WhatsAppSender{
		apiURL:     apiURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WhatsAppSender) Send(ctx context.Context, phone, message string) error {
	payload, err := json.Marshal(map[string]string{
		"phone":   phone,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("failed to encode whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp relay returned HTTP %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// DisabledSender is wired when no WhatsApp relay is configured. Every send is
// a logged no-op so envelope reconciliation still completes.
type DisabledSender struct {
	Logger *zap.Logger
}

func (s *DisabledSender) Send(ctx context.Context, phone, message string) error {
	if s.Logger != nil {
		s.Logger.Info("WhatsApp sender disabled, dropping message", zap.String("phone", phone))
	}
	return nil
}
