package models

import "time"

// PaymentIntent is the creation request accepted by POST /payments.
type PaymentIntent struct {
	Kind           PaymentKind `json:"type"`
	Amount         int         `json:"amount"`
	Gateway        string      `json:"gateway"`
	PaymentMethod  string      `json:"payment_method"`
	PaymentChannel string      `json:"payment_channel"`
	CustomerName   string      `json:"customer_name"`
	CustomerEmail  string      `json:"customer_email"`
	CustomerPhone  string      `json:"customer_phone"`

	// subscription fields
	PackageType string   `json:"package_type,omitempty"`
	Addons      []string `json:"addons,omitempty"`
	UserID      string   `json:"user_id,omitempty"`

	// envelope fields
	InvitationID string `json:"invitation_id,omitempty"`
	Message      string `json:"message,omitempty"`
	IsAnonymous  bool   `json:"is_anonymous,omitempty"`
}

// CreatedPayment is the normalized payload returned to the caller after a
// pending record has been persisted.
type CreatedPayment struct {
	MerchantOrderID string    `json:"merchant_order_id"`
	PaymentURL      string    `json:"payment_url"`
	VANumber        string    `json:"va_number,omitempty"`
	QRString        string    `json:"qr_string,omitempty"`
	Amount          int       `json:"amount"`
	ExpiredAt       time.Time `json:"expired_at"`
}
