package repository

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	apperrors "payment-service/common/errors"
	"payment-service/models"
)

// OrderRepository is the single owner of payment rows. Both tables are only
// ever touched through it.
type OrderRepository interface {
	CreateSubscriptionOrder(ctx context.Context, order *models.Order) error
	CreateEnvelopePayment(ctx context.Context, payment *models.EnvelopePayment) error

	// Find* return (nil, nil) when no row matches the order id.
	FindSubscriptionOrder(ctx context.Context, merchantOrderID string) (*models.Order, error)
	FindEnvelopePayment(ctx context.Context, merchantOrderID string) (*models.EnvelopePayment, error)

	// MarkTerminal moves a record from pending to the given terminal status
	// with a single conditional UPDATE. It reports false when no pending row
	// matched, which is how duplicate and conflicting webhooks are detected.
	MarkTerminal(ctx context.Context, kind models.PaymentKind, merchantOrderID, status string, gatewayReference *string, paidAt *time.Time) (bool, error)
}

type gormOrderRepo struct {
	db *gorm.DB
}

func NewGormOrderRepo(db *gorm.DB) OrderRepository {
	return &gormOrderRepo{db: db}
}

func (r *gormOrderRepo) CreateSubscriptionOrder(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return apperrors.Storage("failed to persist subscription order", err)
	}
	return nil
}

func (r *gormOrderRepo) CreateEnvelopePayment(ctx context.Context, payment *models.EnvelopePayment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return apperrors.Storage("failed to persist envelope payment", err)
	}
	return nil
}

func (r *gormOrderRepo) FindSubscriptionOrder(ctx context.Context, merchantOrderID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("merchant_order_id = ?", merchantOrderID).First(&order).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load subscription order", err)
	}
	return &order, nil
}

func (r *gormOrderRepo) FindEnvelopePayment(ctx context.Context, merchantOrderID string) (*models.EnvelopePayment, error) {
	var payment models.EnvelopePayment
	err := r.db.WithContext(ctx).Where("merchant_order_id = ?", merchantOrderID).First(&payment).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Storage("failed to load envelope payment", err)
	}
	return &payment, nil
}

// MarkTerminal is the compare-and-swap at the heart of reconciliation: the
// WHERE clause pins the expected current status so concurrent or retried
// webhook deliveries race at the database, not in application code.
func (r *gormOrderRepo) MarkTerminal(ctx context.Context, kind models.PaymentKind, merchantOrderID, status string, gatewayReference *string, paidAt *time.Time) (bool, error) {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if gatewayReference != nil {
		updates["gateway_reference"] = *gatewayReference
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}

	var model interface{} = &models.Order{}
	if kind == models.KindEnvelope {
		model = &models.EnvelopePayment{}
	}

	res := r.db.WithContext(ctx).Model(model).
		Where("merchant_order_id = ? AND status = ?", merchantOrderID, models.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, apperrors.Storage("failed to update payment status", res.Error)
	}
	return res.RowsAffected > 0, nil
}
