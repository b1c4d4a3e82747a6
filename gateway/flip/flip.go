// Package flip implements the Flip gateway adapter. Bill creation is a
// form-encoded request authenticated with the static secret key over HTTP
// basic auth; callbacks arrive as JSON and are verified against the
// configured callback validation token.
package flip

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "payment-service/common/errors"
	"payment-service/gateway"
	"payment-service/models"
)

const (
	Name = "flip"

	billPath = "/pwf/bill"

	successStatus = "SUCCESSFUL"
)

// Config carries the static credentials and endpoints injected at
// construction.
type Config struct {
	SecretKey       string
	ValidationToken string
	BaseURL         string
	ReturnURL       string
}

type Adapter struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config, client *http.Client) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Adapter{cfg: cfg, httpClient: client}
}

func (a *Adapter) Name() string { return Name }

// Recognizes matches Flip callbacks: no Duitku-style signature, and either
// Flip's bill link id or its callback token present.
func (a *Adapter) Recognizes(raw *gateway.RawNotification) bool {
	if raw.Has("signature") {
		return false
	}
	return raw.Has("bill_link_id") || raw.Has("token")
}

type billResponse struct {
	LinkID      json.Number `json:"link_id"`
	LinkURL     string      `json:"link_url"`
	Title       string      `json:"title"`
	Status      string      `json:"status"`
	ExpiredDate string      `json:"expired_date"`
}

type billError struct {
	Code   json.RawMessage `json:"code"`
	Errors []struct {
		Attribute string      `json:"attribute"`
		Code      json.Number `json:"code"`
		Message   string      `json:"message"`
	} `json:"errors"`
	Message string `json:"message"`
}

func billTitle(intent *models.PaymentIntent) string {
	if intent.Kind == models.KindSubscription {
		return fmt.Sprintf("Paket %s", intent.PackageType)
	}
	return "Amplop Digital"
}

// CreatePayment opens a Flip payment-with-form bill. Provider errors are
// mapped into typed gateway errors carrying the provider message.
func (a *Adapter) CreatePayment(ctx context.Context, intent *models.PaymentIntent, orderID string) (*gateway.PaymentResult, error) {
	expiredDate := time.Now().Add(24 * time.Hour).Format("2006-01-02")

	form := url.Values{}
	form.Set("title", billTitle(intent))
	form.Set("amount", strconv.Itoa(intent.Amount))
	form.Set("type", "SINGLE")
	form.Set("expired_date", expiredDate)
	form.Set("redirect_url", strings.TrimRight(a.cfg.ReturnURL, "/")+"/payment/status/"+orderID)
	form.Set("is_address_required", "0")
	form.Set("is_phone_number_required", "0")
	form.Set("step", "2")
	form.Set("sender_name", intent.CustomerName)
	form.Set("sender_email", intent.CustomerEmail)
	form.Set("sender_phone_number", intent.CustomerPhone)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+billPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.Gateway("flip: failed to build request", err)
	}
	req.SetBasicAuth(a.cfg.SecretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Gateway("flip: bill request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Gateway("flip: failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.Gateway("flip: "+billErrorMessage(respBody, resp.StatusCode), nil)
	}

	var result billResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, apperrors.Gateway("flip: unexpected response", err)
	}
	if result.LinkURL == "" {
		return nil, apperrors.Gateway("flip: "+billErrorMessage(respBody, resp.StatusCode), nil)
	}

	return &gateway.PaymentResult{
		Reference:  result.LinkID.String(),
		PaymentURL: result.LinkURL,
	}, nil
}

func billErrorMessage(body []byte, status int) string {
	var be billError
	if err := json.Unmarshal(body, &be); err == nil {
		if len(be.Errors) > 0 && be.Errors[0].Message != "" {
			return be.Errors[0].Message
		}
		if be.Message != "" {
			return be.Message
		}
	}
	return fmt.Sprintf("bill creation failed (HTTP %d)", status)
}

// VerifyNotification checks the callback validation token before accepting
// anything from the payload. Flip carries no payload signature; the token is
// the shared authenticity material.
func (a *Adapter) VerifyNotification(raw *gateway.RawNotification) (*gateway.Notification, error) {
	token := raw.Get("token")
	if token == "" {
		return nil, apperrors.Authenticity("flip: callback missing validation token", nil)
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.cfg.ValidationToken)) != 1 {
		return nil, apperrors.Authenticity("flip: callback token mismatch", nil)
	}

	orderID := raw.OrderID()
	if orderID == "" {
		return nil, apperrors.MissingOrderID("flip: callback missing order reference")
	}

	return &gateway.Notification{
		Gateway:    Name,
		OrderID:    orderID,
		ResultCode: raw.Get("status"),
		Reference:  raw.Get("bill_link_id"),
	}, nil
}

// IsSuccess maps Flip's bill status: only "SUCCESSFUL" is success.
func (a *Adapter) IsSuccess(resultCode string) bool {
	return resultCode == successStatus
}
