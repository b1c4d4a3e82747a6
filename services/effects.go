package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"payment-service/notifier"
	"payment-service/repository"
)

// Months of subscription granted per package tier. Unknown tiers fall back
// to the shortest plan rather than failing the effect.
var tierMonths = map[string]int{
	"sakinah":  6,
	"mawaddah": 12,
	"warahmah": 120,
}

const defaultTierMonths = 6

// Effects are the side effects fired after a fresh, verified transition into
// success. They are isolated from reconciliation: a failure here is logged
// and never corrupts or rolls back the committed payment state.
type Effects struct {
	users    repository.UserRepository
	notifier notifier.Sender
	logger   *zap.Logger
}

func NewEffects(users repository.UserRepository, sender notifier.Sender, logger *zap.Logger) *Effects {
	return &Effects{users: users, notifier: sender, logger: logger}
}

// ActivateSubscription writes the paid tier and its computed expiry onto the
// owning user. Expiry is "now + N months"; a retried activation recomputes
// from now rather than extending a previous expiry, matching the billing
// model this system inherited.
func (e *Effects) ActivateSubscription(ctx context.Context, merchantOrderID string, userID *uuid.UUID, packageType string) error {
	if userID == nil {
		e.logger.Warn("subscription order has no owning user, skipping activation",
			zap.String("merchant_order_id", merchantOrderID))
		return nil
	}

	months, ok := tierMonths[packageType]
	if !ok {
		months = defaultTierMonths
	}
	expiresAt := time.Now().AddDate(0, months, 0)

	writeCtx, cancel := storageContext(ctx)
	err := e.users.ActivateSubscription(writeCtx, *userID, packageType, expiresAt)
	cancel()
	if err != nil {
		return err
	}

	e.logger.Info("subscription activated",
		zap.String("merchant_order_id", merchantOrderID),
		zap.String("user_id", userID.String()),
		zap.String("tier", packageType),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}

// NotifyEnvelopeReceived messages the invitation owner about a received
// gift. A missing invitation or missing contact number is a silent no-op.
func (e *Effects) NotifyEnvelopeReceived(ctx context.Context, merchantOrderID string, invitationID *uuid.UUID, guestName string, anonymous bool, amount int, message string) error {
	if invitationID == nil {
		return nil
	}

	lookupCtx, cancel := storageContext(ctx)
	owner, err := e.users.FindInvitationOwner(lookupCtx, *invitationID)
	cancel()
	if err != nil {
		return err
	}
	if owner == nil || owner.Phone == "" {
		e.logger.Info("invitation owner has no contact number, skipping notification",
			zap.String("merchant_order_id", merchantOrderID))
		return nil
	}

	text := notifier.FormatEnvelopeMessage(guestName, anonymous, amount, message)
	if err := e.notifier.Send(ctx, owner.Phone, text); err != nil {
		return err
	}

	e.logger.Info("envelope notification dispatched",
		zap.String("merchant_order_id", merchantOrderID),
		zap.String("invitation_id", invitationID.String()),
	)
	return nil
}
