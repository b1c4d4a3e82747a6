package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "payment-service/common/errors"
	"payment-service/events"
	"payment-service/gateway"
	"payment-service/models"
	"payment-service/repository"
)

// ReconcileOutcome reports how a webhook was resolved.
type ReconcileOutcome struct {
	MerchantOrderID string
	Kind            models.PaymentKind
	Status          string
	// Fresh is true when this delivery performed the pending->terminal
	// transition. Duplicates and conflicts come back with Fresh=false.
	Fresh bool
	// Conflict is true when the notification's outcome disagrees with an
	// already-terminal record. Logged, still answered OK.
	Conflict bool
}

// ReconcileService matches asynchronous gateway notifications to pending
// records and finalizes their state exactly once. Authenticity verification
// happens before any state is touched; the transition itself is a storage
// level compare-and-swap, so duplicated or concurrent deliveries cannot race
// in application code.
type ReconcileService struct {
	gateways  *gateway.Registry
	orders    repository.OrderRepository
	effects   *Effects
	publisher events.Publisher
	logger    *zap.Logger
}

func NewReconcileService(gateways *gateway.Registry, orders repository.OrderRepository, effects *Effects, publisher events.Publisher, logger *zap.Logger) *ReconcileService {
	return &ReconcileService{
		gateways:  gateways,
		orders:    orders,
		effects:   effects,
		publisher: publisher,
		logger:    logger,
	}
}

// target is the slice of a payment row reconciliation needs, regardless of
// which table it lives in.
type target struct {
	status       string
	amount       int
	userID       *uuid.UUID
	invitationID *uuid.UUID
	packageType  string
	guestName    string
	message      string
	isAnonymous  bool
}

// Reconcile runs the webhook state machine over an already-decoded payload.
func (s *ReconcileService) Reconcile(ctx context.Context, raw *gateway.RawNotification) (*ReconcileOutcome, error) {
	merchantOrderID := raw.OrderID()
	if merchantOrderID == "" {
		return nil, apperrors.MissingOrderID("no recognizable order id field in notification")
	}

	kind, err := models.KindFromOrderID(merchantOrderID)
	if err != nil {
		return nil, apperrors.Validation("unrecognized order id", err)
	}

	adapter, ok := s.gateways.ForNotification(raw)
	if !ok {
		return nil, apperrors.Validation("notification matches no configured gateway", nil)
	}

	notif, err := adapter.VerifyNotification(raw)
	if err != nil {
		s.logger.Warn("rejected unverified notification",
			zap.String("merchant_order_id", merchantOrderID),
			zap.String("gateway", adapter.Name()),
			zap.Error(err),
		)
		return nil, err
	}

	tgt, err := s.loadTarget(ctx, kind, merchantOrderID)
	if err != nil {
		return nil, err
	}
	if tgt == nil {
		return nil, apperrors.UnknownOrder(merchantOrderID)
	}

	newStatus := models.StatusFailed
	var paidAt *time.Time
	if adapter.IsSuccess(notif.ResultCode) {
		newStatus = models.StatusSuccess
		now := time.Now()
		paidAt = &now
	}

	var gatewayRef *string
	if notif.Reference != "" {
		gatewayRef = &notif.Reference
	}

	casCtx, cancel := storageContext(ctx)
	updated, err := s.orders.MarkTerminal(casCtx, kind, merchantOrderID, newStatus, gatewayRef, paidAt)
	cancel()
	if err != nil {
		return nil, err
	}

	outcome := &ReconcileOutcome{
		MerchantOrderID: merchantOrderID,
		Kind:            kind,
		Status:          newStatus,
		Fresh:           updated,
	}

	if !updated {
		// The CAS found no pending row: a previous delivery already
		// finalized this record (possibly between our read and the update).
		if models.TerminalStatuses[tgt.status] && tgt.status != newStatus {
			outcome.Conflict = true
			outcome.Status = tgt.status
			s.logger.Warn("notification outcome conflicts with terminal record, keeping committed state",
				zap.String("merchant_order_id", merchantOrderID),
				zap.String("committed_status", tgt.status),
				zap.String("notified_status", newStatus),
				zap.String("gateway", notif.Gateway),
			)
			return outcome, nil
		}
		s.logger.Info("duplicate notification for terminal record, no-op",
			zap.String("merchant_order_id", merchantOrderID),
			zap.String("status", newStatus),
		)
		return outcome, nil
	}

	s.logger.Info("payment reconciled",
		zap.String("merchant_order_id", merchantOrderID),
		zap.String("kind", string(kind)),
		zap.String("gateway", notif.Gateway),
		zap.String("status", newStatus),
	)

	if newStatus == models.StatusSuccess {
		s.fireEffects(ctx, kind, merchantOrderID, tgt)
	}
	s.publishEvent(ctx, kind, merchantOrderID, notif.Gateway, newStatus, tgt)

	return outcome, nil
}

func (s *ReconcileService) loadTarget(ctx context.Context, kind models.PaymentKind, merchantOrderID string) (*target, error) {
	ctx, cancel := storageContext(ctx)
	defer cancel()

	switch kind {
	case models.KindEnvelope:
		payment, err := s.orders.FindEnvelopePayment(ctx, merchantOrderID)
		if err != nil || payment == nil {
			return nil, err
		}
		message := ""
		if payment.Message != nil {
			message = *payment.Message
		}
		return &target{
			status:       payment.Status,
			amount:       payment.Amount,
			invitationID: payment.InvitationID,
			guestName:    payment.GuestName,
			message:      message,
			isAnonymous:  payment.IsAnonymous,
		}, nil
	default:
		order, err := s.orders.FindSubscriptionOrder(ctx, merchantOrderID)
		if err != nil || order == nil {
			return nil, err
		}
		return &target{
			status:       order.Status,
			amount:       order.Amount,
			userID:       order.UserID,
			invitationID: order.InvitationID,
			packageType:  order.PackageType,
		}, nil
	}
}

// fireEffects runs the kind-specific side effect for a fresh success. Effect
// failures are logged and swallowed: the financial state is already durable,
// and the webhook response must not tell the gateway to retry.
func (s *ReconcileService) fireEffects(ctx context.Context, kind models.PaymentKind, merchantOrderID string, tgt *target) {
	var err error
	switch kind {
	case models.KindSubscription:
		err = s.effects.ActivateSubscription(ctx, merchantOrderID, tgt.userID, tgt.packageType)
	case models.KindEnvelope:
		err = s.effects.NotifyEnvelopeReceived(ctx, merchantOrderID, tgt.invitationID, tgt.guestName, tgt.isAnonymous, tgt.amount, tgt.message)
	}
	if err != nil {
		s.logger.Error("post-success side effect failed",
			zap.String("merchant_order_id", merchantOrderID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

func (s *ReconcileService) publishEvent(ctx context.Context, kind models.PaymentKind, merchantOrderID, gatewayName, status string, tgt *target) {
	if s.publisher == nil {
		return
	}
	event := models.PaymentEvent{
		Type:            "payment_" + status,
		MerchantOrderID: merchantOrderID,
		Kind:            string(kind),
		Gateway:         gatewayName,
		Amount:          tgt.amount,
		Timestamp:       time.Now().UTC(),
	}
	if tgt.userID != nil {
		event.UserID = tgt.userID.String()
	}
	if tgt.invitationID != nil {
		event.InvitationID = tgt.invitationID.String()
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish payment event",
			zap.String("merchant_order_id", merchantOrderID),
			zap.Error(err),
		)
	}
}
