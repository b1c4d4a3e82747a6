package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "payment-service/common/errors"
	"payment-service/models"
	"payment-service/repository"
)

// lookupTimeout bounds status reads that hit storage directly.
const lookupTimeout = 5 * time.Second

// PaymentCreator is the slice of the payment service the HTTP layer needs.
type PaymentCreator interface {
	Create(ctx context.Context, intent *models.PaymentIntent) (*models.CreatedPayment, error)
}

type PaymentController struct {
	Payments PaymentCreator
	Orders   repository.OrderRepository
	Logger   *zap.Logger
}

func NewPaymentController(payments PaymentCreator, orders repository.OrderRepository, logger *zap.Logger) *PaymentController {
	return &PaymentController{Payments: payments, Orders: orders, Logger: logger}
}

// Creates a payment against the requested gateway and stores the pending record
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var intent models.PaymentIntent
	if err := c.ShouldBindJSON(&intent); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body: " + err.Error()})
		return
	}

	created, err := pc.Payments.Create(c.Request.Context(), &intent)
	if err != nil {
		pc.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": created})
}

// Reports the current status of a payment, folding in lazy expiry
func (pc *PaymentController) GetPayment(c *gin.Context) {
	merchantOrderID := c.Param("orderID")

	kind, err := models.KindFromOrderID(merchantOrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unrecognized order id"})
		return
	}

	// gin request contexts carry no deadline, bound the lookup ourselves
	ctx, cancel := context.WithTimeout(c.Request.Context(), lookupTimeout)
	defer cancel()

	var record *models.PaymentRecord
	switch kind {
	case models.KindEnvelope:
		payment, ferr := pc.Orders.FindEnvelopePayment(ctx, merchantOrderID)
		if ferr != nil {
			pc.respondError(c, ferr)
			return
		}
		if payment != nil {
			record = &payment.PaymentRecord
		}
	default:
		order, ferr := pc.Orders.FindSubscriptionOrder(ctx, merchantOrderID)
		if ferr != nil {
			pc.respondError(c, ferr)
			return
		}
		if order != nil {
			record = &order.PaymentRecord
		}
	}

	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "unknown order " + merchantOrderID})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"merchant_order_id": record.MerchantOrderID,
		"status":            record.EffectiveStatus(time.Now()),
		"amount":            record.Amount,
		"payment_url":       record.PaymentURL,
		"va_number":         record.VANumber,
		"qr_string":         record.QRString,
		"expired_at":        record.ExpiredAt,
		"paid_at":           record.PaidAt,
	}})
}

func (pc *PaymentController) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		pc.Logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"success": false, "error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}
