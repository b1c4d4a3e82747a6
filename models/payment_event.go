package models

import "time"

// PaymentEvent is the standardized event published downstream after a
// payment reaches a terminal state.
type PaymentEvent struct {
	Type            string    `json:"type"` // "payment_success" or "payment_failed"
	MerchantOrderID string    `json:"merchant_order_id"`
	Kind            string    `json:"kind"`
	Gateway         string    `json:"gateway"`
	Amount          int       `json:"amount"`
	UserID          string    `json:"user_id,omitempty"`
	InvitationID    string    `json:"invitation_id,omitempty"`
	Timestamp       time.Time `json:"timestamp"` // UTC event time
}
