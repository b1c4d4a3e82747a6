// Package duitku implements the Duitku gateway adapter. Bill creation is a
// JSON inquiry request signed with an MD5 concatenation of merchant secret
// material; callbacks arrive form-encoded carrying the same style of
// signature, which is verified before any state is touched.
package duitku

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "payment-service/common/errors"
	"payment-service/gateway"
	"payment-service/models"
)

const (
	Name = "duitku"

	inquiryPath = "/webapi/api/merchant/v2/inquiry"

	// expiry window forwarded to the gateway, in minutes (24 hours)
	expiryPeriodMinutes = 1440

	successCode = "00"
)

// Config carries the merchant credentials and endpoints injected at
// construction. No ambient lookups happen inside the adapter.
type Config struct {
	MerchantCode string
	APIKey       string
	BaseURL      string
	CallbackURL  string
	ReturnURL    string
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

// Recognizes matches Duitku callbacks by the presence of their signature field.
func (a *Adapter) Recognizes(raw *gateway.RawNotification) bool {
	return raw.Has("signature")
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// createSignature is MD5(merchantCode + merchantOrderId + amount + apiKey),
// Duitku's documented inquiry signing scheme.
func (a *Adapter) createSignature(orderID string, amount int) string {
	return md5Hex(a.cfg.MerchantCode + orderID + strconv.Itoa(amount) + a.cfg.APIKey)
}

// callbackSignature is MD5(merchantCode + amount + merchantOrderId + apiKey),
// the scheme Duitku signs its callbacks with. Note the field order differs
// from the inquiry signature.
func (a *Adapter) callbackSignature(orderID, amount string) string {
	return md5Hex(a.cfg.MerchantCode + amount + orderID + a.cfg.APIKey)
}

type inquiryRequest struct {
	MerchantCode    string `json:"merchantCode"`
	PaymentAmount   int    `json:"paymentAmount"`
	PaymentMethod   string `json:"paymentMethod"`
	MerchantOrderID string `json:"merchantOrderId"`
	ProductDetails  string `json:"productDetails"`
	CustomerVaName  string `json:"customerVaName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	CallbackURL     string `json:"callbackUrl"`
	ReturnURL       string `json:"returnUrl"`
	Signature       string `json:"signature"`
	ExpiryPeriod    int    `json:"expiryPeriod"`
}

type inquiryResponse struct {
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	Reference     string `json:"reference"`
	PaymentURL    string `json:"paymentUrl"`
	VANumber      string `json:"vaNumber"`
	QRString      string `json:"qrString"`
}

func productDetails(intent *models.PaymentIntent) string {
	if intent.Kind == models.KindSubscription {
		return fmt.Sprintf("Paket %s - NikahKit", intent.PackageType)
	}
	return "Amplop Digital - NikahKit"
}

// vaName truncates the payer name to Duitku's 20-character VA display limit.
// The cut is by rune so multi-byte names stay valid UTF-8.
func vaName(name string) string {
	runes := []rune(name)
	if len(runes) > 20 {
		return string(runes[:20])
	}
	return name
}

// CreatePayment opens a Duitku inquiry for the intent. Any non-"00" status
// from the provider is a hard failure; it never reaches persistence.
func (a *Adapter) CreatePayment(ctx context.Context, intent *models.PaymentIntent, orderID string) (*gateway.PaymentResult, error) {
	payload := inquiryRequest{
		MerchantCode:    a.cfg.MerchantCode,
		PaymentAmount:   intent.Amount,
		PaymentMethod:   intent.PaymentChannel,
		MerchantOrderID: orderID,
		ProductDetails:  productDetails(intent),
		CustomerVaName:  vaName(intent.CustomerName),
		Email:           intent.CustomerEmail,
		PhoneNumber:     intent.CustomerPhone,
		CallbackURL:     a.cfg.CallbackURL,
		ReturnURL:       strings.TrimRight(a.cfg.ReturnURL, "/") + "/payment/status/" + orderID,
		Signature:       a.createSignature(orderID, intent.Amount),
		ExpiryPeriod:    expiryPeriodMinutes,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Gateway("duitku: failed to encode inquiry", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+inquiryPath, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Gateway("duitku: failed to build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Gateway("duitku: inquiry request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Gateway("duitku: failed to read response", err)
	}

	var result inquiryResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, apperrors.Gateway(fmt.Sprintf("duitku: unexpected response (HTTP %d)", resp.StatusCode), err)
	}

	if result.StatusCode != successCode {
		msg := result.StatusMessage
		if msg == "" {
			msg = fmt.Sprintf("inquiry rejected (HTTP %d)", resp.StatusCode)
		}
		return nil, apperrors.Gateway("duitku: "+msg, nil)
	}

	return &gateway.PaymentResult{
		Reference:  result.Reference,
		PaymentURL: result.PaymentURL,
		VANumber:   result.VANumber,
		QRString:   result.QRString,
	}, nil
}

// VerifyNotification validates the callback signature and normalizes the
// payload. A missing or mismatching signature rejects the notification.
func (a *Adapter) VerifyNotification(raw *gateway.RawNotification) (*gateway.Notification, error) {
	orderID := raw.Get("merchantOrderId")
	amount := raw.Get("amount")
	signature := raw.Get("signature")

	if orderID == "" || amount == "" || signature == "" {
		return nil, apperrors.Authenticity("duitku: callback missing signing fields", nil)
	}

	expected := a.callbackSignature(orderID, amount)
	got := strings.ToLower(signature)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
		return nil, apperrors.Authenticity("duitku: callback signature mismatch", nil)
	}

	return &gateway.Notification{
		Gateway:    Name,
		OrderID:    orderID,
		ResultCode: raw.Get("resultCode"),
		Reference:  raw.Get("reference"),
	}, nil
}

// IsSuccess maps Duitku's result code: only "00" is success.
func (a *Adapter) IsSuccess(resultCode string) bool {
	return resultCode == successCode
}
