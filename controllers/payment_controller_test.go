package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "payment-service/common/errors"
	"payment-service/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCreator struct {
	created *models.CreatedPayment
	err     error
	got     *models.PaymentIntent
}

func (s *stubCreator) Create(ctx context.Context, intent *models.PaymentIntent) (*models.CreatedPayment, error) {
	s.got = intent
	return s.created, s.err
}

type stubOrders struct {
	order    *models.Order
	envelope *models.EnvelopePayment
	err      error
}

func (s *stubOrders) CreateSubscriptionOrder(ctx context.Context, order *models.Order) error {
	return nil
}
func (s *stubOrders) CreateEnvelopePayment(ctx context.Context, payment *models.EnvelopePayment) error {
	return nil
}
func (s *stubOrders) FindSubscriptionOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.order, s.err
}
func (s *stubOrders) FindEnvelopePayment(ctx context.Context, id string) (*models.EnvelopePayment, error) {
	return s.envelope, s.err
}
func (s *stubOrders) MarkTerminal(ctx context.Context, kind models.PaymentKind, id, status string, ref *string, paidAt *time.Time) (bool, error) {
	return false, nil
}

func newPaymentRouter(creator *stubCreator, orders *stubOrders) *gin.Engine {
	pc := NewPaymentController(creator, orders, zap.NewNop())
	r := gin.New()
	r.POST("/payments", pc.CreatePayment)
	r.GET("/payments/:orderID", pc.GetPayment)
	return r
}

func TestCreatePayment_Success(t *testing.T) {
	creator := &stubCreator{created: &models.CreatedPayment{
		MerchantOrderID: "SUB-1700000000000-ABCD1234",
		PaymentURL:      "https://pay.example/x",
		Amount:          150000,
	}}
	router := newPaymentRouter(creator, &stubOrders{})

	body := `{"type":"subscription","amount":150000,"gateway":"duitku","package_type":"sakinah","customer_name":"Siti","customer_email":"siti@example.com"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			MerchantOrderID string `json:"merchant_order_id"`
			PaymentURL      string `json:"payment_url"`
			Amount          int    `json:"amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "SUB-1700000000000-ABCD1234", resp.Data.MerchantOrderID)
	assert.Equal(t, "https://pay.example/x", resp.Data.PaymentURL)
	assert.Equal(t, 150000, resp.Data.Amount)

	require.NotNil(t, creator.got)
	assert.Equal(t, "duitku", creator.got.Gateway)
	assert.Equal(t, "sakinah", creator.got.PackageType)
}

func TestCreatePayment_ValidationError(t *testing.T) {
	creator := &stubCreator{err: apperrors.Validation("amount must be positive", nil)}
	router := newPaymentRouter(creator, &stubOrders{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(`{"type":"subscription"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "amount must be positive")
}

func TestCreatePayment_MalformedJSON(t *testing.T) {
	router := newPaymentRouter(&stubCreator{}, &stubOrders{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePayment_StorageErrorIsOpaque(t *testing.T) {
	creator := &stubCreator{err: apperrors.Storage("insert failed: connection refused", nil)}
	router := newPaymentRouter(creator, &stubOrders{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString(`{"type":"subscription","amount":1,"gateway":"duitku"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused", "internals must not leak to clients")
}

func TestGetPayment_LazyExpiry(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	orders := &stubOrders{order: &models.Order{PaymentRecord: models.PaymentRecord{
		MerchantOrderID: "SUB-1-ABCD1234",
		Status:          models.StatusPending,
		Amount:          150000,
		ExpiredAt:       expired,
	}}}
	router := newPaymentRouter(&stubCreator{}, orders)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments/SUB-1-ABCD1234", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"expired"`)
}

func TestGetPayment_TerminalStatusNotMasked(t *testing.T) {
	// a record that succeeded before its window elapsed stays success forever
	paidAt := time.Now().Add(-48 * time.Hour)
	orders := &stubOrders{order: &models.Order{PaymentRecord: models.PaymentRecord{
		MerchantOrderID: "SUB-1-ABCD1234",
		Status:          models.StatusSuccess,
		ExpiredAt:       time.Now().Add(-24 * time.Hour),
		PaidAt:          &paidAt,
	}}}
	router := newPaymentRouter(&stubCreator{}, orders)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments/SUB-1-ABCD1234", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"success"`)
}

func TestGetPayment_UnknownOrder(t *testing.T) {
	router := newPaymentRouter(&stubCreator{}, &stubOrders{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments/ENV-1-ABCD1234", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPayment_BadPrefix(t *testing.T) {
	router := newPaymentRouter(&stubCreator{}, &stubOrders{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/payments/WHATEVER-123", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
