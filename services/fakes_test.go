package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "payment-service/common/errors"
	"payment-service/gateway"
	"payment-service/models"
)

// fakeAdapter implements gateway.Adapter with programmable behavior.
type fakeAdapter struct {
	name        string
	createErr   error
	result      gateway.PaymentResult
	verifyErr   error
	successCode string
	recognize   func(raw *gateway.RawNotification) bool

	createCalls int
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) CreatePayment(ctx context.Context, intent *models.PaymentIntent, orderID string) (*gateway.PaymentResult, error) {
	a.createCalls++
	if a.createErr != nil {
		return nil, a.createErr
	}
	result := a.result
	return &result, nil
}

func (a *fakeAdapter) Recognizes(raw *gateway.RawNotification) bool {
	if a.recognize != nil {
		return a.recognize(raw)
	}
	return true
}

func (a *fakeAdapter) VerifyNotification(raw *gateway.RawNotification) (*gateway.Notification, error) {
	if a.verifyErr != nil {
		return nil, a.verifyErr
	}
	return &gateway.Notification{
		Gateway:    a.name,
		OrderID:    raw.OrderID(),
		ResultCode: raw.Get("resultCode"),
		Reference:  raw.Get("reference"),
	}, nil
}

func (a *fakeAdapter) IsSuccess(code string) bool { return code == a.successCode }

// memOrderRepo is an in-memory OrderRepository with real CAS semantics on
// MarkTerminal, so idempotence and race behavior can be exercised.
type memOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]*models.Order
	envelopes map[string]*models.EnvelopePayment

	insertErr error
	findErr   error
	markErr   error

	lastCreateCtx context.Context
	lastFindCtx   context.Context
	lastMarkCtx   context.Context
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders:    make(map[string]*models.Order),
		envelopes: make(map[string]*models.EnvelopePayment),
	}
}

func (r *memOrderRepo) CreateSubscriptionOrder(ctx context.Context, order *models.Order) error {
	r.lastCreateCtx = ctx
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *order
	r.orders[order.MerchantOrderID] = &clone
	return nil
}

func (r *memOrderRepo) CreateEnvelopePayment(ctx context.Context, payment *models.EnvelopePayment) error {
	r.lastCreateCtx = ctx
	if r.insertErr != nil {
		return r.insertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *payment
	r.envelopes[payment.MerchantOrderID] = &clone
	return nil
}

func (r *memOrderRepo) FindSubscriptionOrder(ctx context.Context, id string) (*models.Order, error) {
	r.lastFindCtx = ctx
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	clone := *order
	return &clone, nil
}

func (r *memOrderRepo) FindEnvelopePayment(ctx context.Context, id string) (*models.EnvelopePayment, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.envelopes[id]
	if !ok {
		return nil, nil
	}
	clone := *payment
	return &clone, nil
}

func (r *memOrderRepo) MarkTerminal(ctx context.Context, kind models.PaymentKind, id, status string, ref *string, paidAt *time.Time) (bool, error) {
	r.lastMarkCtx = ctx
	if r.markErr != nil {
		return false, r.markErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var record *models.PaymentRecord
	if kind == models.KindEnvelope {
		if payment, ok := r.envelopes[id]; ok {
			record = &payment.PaymentRecord
		}
	} else {
		if order, ok := r.orders[id]; ok {
			record = &order.PaymentRecord
		}
	}
	if record == nil || record.Status != models.StatusPending {
		return false, nil
	}
	record.Status = status
	if ref != nil {
		record.GatewayReference = ref
	}
	if paidAt != nil {
		record.PaidAt = paidAt
	}
	return true, nil
}

// fakeUserRepo records subscription activations and serves invitation owners.
type fakeUserRepo struct {
	mu          sync.Mutex
	activations []activation
	owners      map[uuid.UUID]*models.User

	activateErr error
	lastCtx     context.Context
}

type activation struct {
	userID    uuid.UUID
	tier      string
	expiresAt time.Time
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{owners: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) ActivateSubscription(ctx context.Context, userID uuid.UUID, tier string, expiresAt time.Time) error {
	r.lastCtx = ctx
	if r.activateErr != nil {
		return r.activateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activations = append(r.activations, activation{userID, tier, expiresAt})
	return nil
}

func (r *fakeUserRepo) FindInvitationOwner(ctx context.Context, invitationID uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owners[invitationID], nil
}

// fakeSender captures outbound notification messages.
type fakeSender struct {
	mu       sync.Mutex
	messages []sentMessage
	sendErr  error
}

type sentMessage struct {
	phone, message string
}

func (s *fakeSender) Send(ctx context.Context, phone, message string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, sentMessage{phone, message})
	return nil
}

// fakePublisher captures published payment events.
type fakePublisher struct {
	mu     sync.Mutex
	events []models.PaymentEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event models.PaymentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

var errGatewayDown = apperrors.Gateway("provider unreachable", nil)
