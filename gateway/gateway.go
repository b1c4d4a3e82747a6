// Package gateway defines the adapter boundary between the reconciliation
// core and the concrete payment providers. Adapters own all provider-specific
// request building, signing and signature verification, and normalize raw
// provider payloads into the common types below.
package gateway

import (
	"context"

	"payment-service/models"
)

// PaymentResult is the normalized outcome of a successful bill creation.
type PaymentResult struct {
	Reference  string
	PaymentURL string
	VANumber   string
	QRString   string
}

// Notification is the parsed, gateway-agnostic webhook payload. Downstream
// logic never touches raw provider fields.
type Notification struct {
	Gateway    string
	OrderID    string
	ResultCode string
	Reference  string
}

// Adapter is implemented once per payment provider.
type Adapter interface {
	// Name returns the gateway discriminator used in requests and records.
	Name() string

	// CreatePayment builds the provider-specific request for the intent,
	// signs it, performs the outbound call and maps provider failures into
	// typed gateway errors. A non-ok provider status must fail loudly.
	CreatePayment(ctx context.Context, intent *models.PaymentIntent, orderID string) (*PaymentResult, error)

	// Recognizes reports whether a raw webhook payload has this provider's
	// shape. Callback routing walks adapters in registration order.
	Recognizes(raw *RawNotification) bool

	// VerifyNotification validates the provider's signature over the raw
	// payload and extracts the normalized notification. It must reject
	// unverified input before any state mutation happens.
	VerifyNotification(raw *RawNotification) (*Notification, error)

	// IsSuccess maps the provider's result code to a boolean. Unrecognized
	// codes are never success.
	IsSuccess(resultCode string) bool
}

// Registry holds the closed set of configured adapters. Adding a gateway
// means adding an adapter package and a registration here, nothing else.
type Registry struct {
	order    []Adapter
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.order = append(r.order, a)
		r.adapters[a.Name()] = a
	}
	return r
}

// ByName returns the adapter for a gateway discriminator.
func (r *Registry) ByName(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// ForNotification selects the adapter whose payload shape matches the raw
// webhook, in registration order.
func (r *Registry) ForNotification(raw *RawNotification) (Adapter, bool) {
	for _, a := range r.order {
		if a.Recognizes(raw) {
			return a, true
		}
	}
	return nil, false
}
