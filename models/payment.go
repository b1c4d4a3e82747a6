package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PaymentKind discriminates the two payment flavors. It decides which table
// a record lives in and which side effects run after a verified success.
type PaymentKind string

const (
	KindSubscription PaymentKind = "subscription"
	KindEnvelope     PaymentKind = "envelope"
)

// Order id prefixes, one per kind. The reconciliation path routes a webhook
// to the right table from the prefix alone, without probing both tables.
const (
	OrderIDPrefixSubscription = "SUB-"
	OrderIDPrefixEnvelope     = "ENV-"
)

// KindFromOrderID derives the payment kind from an order id prefix.
func KindFromOrderID(orderID string) (PaymentKind, error) {
	switch {
	case strings.HasPrefix(orderID, OrderIDPrefixSubscription):
		return KindSubscription, nil
	case strings.HasPrefix(orderID, OrderIDPrefixEnvelope):
		return KindEnvelope, nil
	default:
		return "", fmt.Errorf("unrecognized order id prefix: %q", orderID)
	}
}

// Payment statuses. pending is the only non-terminal state; expired is a
// read-time condition derived from expired_at, never written.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusExpired = "expired"
)

// TerminalStatuses are the states no record ever leaves.
var TerminalStatuses = map[string]bool{
	StatusSuccess: true,
	StatusFailed:  true,
}

// PaymentRecord carries the columns shared by both payment tables.
type PaymentRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	MerchantOrderID  string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	PaymentGateway   string    `gorm:"type:varchar(20);not null"`
	PaymentMethod    string    `gorm:"type:varchar(40)"`
	PaymentChannel   string    `gorm:"type:varchar(40)"`
	Amount           int       `gorm:"not null"` // minor currency unit
	Status           string    `gorm:"type:varchar(20);not null;index"`
	GatewayReference *string   `gorm:"type:varchar(128)"`
	PaymentURL       *string   `gorm:"type:varchar(1024)"`
	VANumber         *string   `gorm:"type:varchar(64)"`
	QRString         *string   `gorm:"type:text"`
	ExpiredAt        time.Time
	PaidAt           *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

// Expired reports whether a still-pending record has outlived its expiry
// window. Expiry is evaluated lazily by readers; nothing sweeps the table.
func (r *PaymentRecord) Expired(now time.Time) bool {
	return r.Status == StatusPending && now.After(r.ExpiredAt)
}

// EffectiveStatus is the status a reader should report, folding in lazy expiry.
func (r *PaymentRecord) EffectiveStatus(now time.Time) string {
	if r.Expired(now) {
		return StatusExpired
	}
	return r.Status
}

// Order is a subscription payment attempt.
type Order struct {
	PaymentRecord `gorm:"embedded"`
	UserID        *uuid.UUID     `gorm:"type:uuid;index"`
	InvitationID  *uuid.UUID     `gorm:"type:uuid;index"`
	PackageType   string         `gorm:"type:varchar(40)"`
	Addons        datatypes.JSON `gorm:"type:jsonb"`
	BasePrice     int
	TotalAmount   int
}

func (Order) TableName() string { return "orders" }

// EnvelopePayment is a one-off gift payment tied to an invitation.
type EnvelopePayment struct {
	PaymentRecord `gorm:"embedded"`
	InvitationID  *uuid.UUID `gorm:"type:uuid;index"`
	GuestName     string     `gorm:"type:varchar(120)"`
	Message       *string    `gorm:"type:text"`
	IsAnonymous   bool
}

func (EnvelopePayment) TableName() string { return "envelope_payments" }
