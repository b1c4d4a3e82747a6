package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	apperrors "payment-service/common/errors"
	"payment-service/gateway"
	"payment-service/models"
	"payment-service/orderid"
	"payment-service/repository"
)

// expiryWindow is the lifetime of a pending payment. It matches the expiry
// period forwarded to the gateways.
const expiryWindow = 24 * time.Hour

// storageTimeout bounds every repository call. Request and webhook contexts
// carry no deadline of their own, so a stalled connection must not pin the
// handling goroutine.
const storageTimeout = 5 * time.Second

func storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storageTimeout)
}

// PaymentService orchestrates intent creation: validate, generate the order
// id, call the selected gateway, persist the pending record, and hand back a
// normalized payload.
type PaymentService struct {
	gateways *gateway.Registry
	orders   repository.OrderRepository
	logger   *zap.Logger
}

func NewPaymentService(gateways *gateway.Registry, orders repository.OrderRepository, logger *zap.Logger) *PaymentService {
	return &PaymentService{gateways: gateways, orders: orders, logger: logger}
}

// Create runs the full creation flow. Creation is atomic from the caller's
// point of view: either a fully formed pending record exists afterwards, or
// none does. A timed-out gateway call surfaces as a gateway error with no
// local record; the gateway may still have accepted the payment, which is an
// accepted residual risk rather than a silently hidden one.
func (s *PaymentService) Create(ctx context.Context, intent *models.PaymentIntent) (*models.CreatedPayment, error) {
	if err := validateIntent(intent); err != nil {
		return nil, err
	}

	adapter, ok := s.gateways.ByName(intent.Gateway)
	if !ok {
		return nil, apperrors.Validation("unrecognized gateway: "+intent.Gateway, nil)
	}

	merchantOrderID := orderid.Generate(intent.Kind)

	result, err := adapter.CreatePayment(ctx, intent, merchantOrderID)
	if err != nil {
		s.logger.Warn("gateway rejected payment creation",
			zap.String("gateway", intent.Gateway),
			zap.String("merchant_order_id", merchantOrderID),
			zap.Error(err),
		)
		return nil, err
	}

	now := time.Now()
	record := models.PaymentRecord{
		ID:              uuid.New(),
		MerchantOrderID: merchantOrderID,
		PaymentGateway:  intent.Gateway,
		PaymentMethod:   intent.PaymentMethod,
		PaymentChannel:  intent.PaymentChannel,
		Amount:          intent.Amount,
		Status:          models.StatusPending,
		ExpiredAt:       now.Add(expiryWindow),
	}
	if result.Reference != "" {
		record.GatewayReference = &result.Reference
	}
	if result.PaymentURL != "" {
		record.PaymentURL = &result.PaymentURL
	}
	if result.VANumber != "" {
		record.VANumber = &result.VANumber
	}
	if result.QRString != "" {
		record.QRString = &result.QRString
	}

	if err := s.persist(ctx, intent, record); err != nil {
		return nil, err
	}

	s.logger.Info("payment created",
		zap.String("merchant_order_id", merchantOrderID),
		zap.String("gateway", intent.Gateway),
		zap.String("kind", string(intent.Kind)),
		zap.Int("amount", intent.Amount),
	)

	return &models.CreatedPayment{
		MerchantOrderID: merchantOrderID,
		PaymentURL:      result.PaymentURL,
		VANumber:        result.VANumber,
		QRString:        result.QRString,
		Amount:          intent.Amount,
		ExpiredAt:       record.ExpiredAt,
	}, nil
}

func (s *PaymentService) persist(ctx context.Context, intent *models.PaymentIntent, record models.PaymentRecord) error {
	ctx, cancel := storageContext(ctx)
	defer cancel()

	switch intent.Kind {
	case models.KindSubscription:
		order := &models.Order{
			PaymentRecord: record,
			PackageType:   intent.PackageType,
			BasePrice:     intent.Amount,
			TotalAmount:   intent.Amount,
		}
		if intent.UserID != "" {
			id := uuid.MustParse(intent.UserID) // validated upfront
			order.UserID = &id
		}
		if intent.InvitationID != "" {
			id := uuid.MustParse(intent.InvitationID)
			order.InvitationID = &id
		}
		if len(intent.Addons) > 0 {
			addons, err := json.Marshal(intent.Addons)
			if err != nil {
				return apperrors.Validation("malformed addons", err)
			}
			order.Addons = datatypes.JSON(addons)
		}
		return s.orders.CreateSubscriptionOrder(ctx, order)

	case models.KindEnvelope:
		payment := &models.EnvelopePayment{
			PaymentRecord: record,
			GuestName:     intent.CustomerName,
			IsAnonymous:   intent.IsAnonymous,
		}
		if intent.InvitationID != "" {
			id := uuid.MustParse(intent.InvitationID)
			payment.InvitationID = &id
		}
		if intent.Message != "" {
			msg := intent.Message
			payment.Message = &msg
		}
		return s.orders.CreateEnvelopePayment(ctx, payment)
	}
	return apperrors.Validation("unrecognized payment type: "+string(intent.Kind), nil)
}

func validateIntent(intent *models.PaymentIntent) error {
	if intent.Amount <= 0 {
		return apperrors.Validation("amount must be positive", nil)
	}
	switch intent.Kind {
	case models.KindSubscription:
		if intent.PackageType == "" {
			return apperrors.Validation("package_type is required for subscription payments", nil)
		}
	case models.KindEnvelope:
		if intent.InvitationID == "" {
			return apperrors.Validation("invitation_id is required for envelope payments", nil)
		}
	default:
		return apperrors.Validation("unrecognized payment type: "+string(intent.Kind), nil)
	}
	if intent.CustomerName == "" {
		return apperrors.Validation("customer_name is required", nil)
	}
	if intent.CustomerEmail == "" {
		return apperrors.Validation("customer_email is required", nil)
	}
	for _, id := range []string{intent.UserID, intent.InvitationID} {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return apperrors.Validation("malformed id: "+id, err)
		}
	}
	return nil
}
