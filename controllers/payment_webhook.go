package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "payment-service/common/errors"
	"payment-service/gateway"
	"payment-service/services"
)

// webhookBodyLimit caps callback payload size. Gateway notifications are a
// handful of fields, anything bigger is garbage.
const webhookBodyLimit = 64 << 10

// Reconciler finalizes a decoded gateway notification.
type Reconciler interface {
	Reconcile(ctx context.Context, raw *gateway.RawNotification) (*services.ReconcileOutcome, error)
}

type WebhookController struct {
	Reconciler Reconciler
	Logger     *zap.Logger
}

func NewWebhookController(reconciler Reconciler, logger *zap.Logger) *WebhookController {
	return &WebhookController{Reconciler: reconciler, Logger: logger}
}

// Shared callback endpoint for every configured gateway. Providers retry on
// non-200, so every finalized outcome, including duplicates and conflicts,
// answers plain OK.
func (wc *WebhookController) HandleCallback(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable body")
		return
	}

	raw, err := gateway.ParseBody(c.ContentType(), body)
	if err != nil {
		wc.Logger.Warn("undecodable callback body",
			zap.String("content_type", c.ContentType()),
			zap.Error(err),
		)
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	outcome, err := wc.Reconciler.Reconcile(c.Request.Context(), raw)
	if err != nil {
		wc.respondError(c, err)
		return
	}

	if !outcome.Fresh {
		wc.Logger.Info("callback acknowledged without transition",
			zap.String("merchant_order_id", outcome.MerchantOrderID),
			zap.Bool("conflict", outcome.Conflict),
		)
	}
	c.String(http.StatusOK, "OK")
}

func (wc *WebhookController) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		wc.Logger.Error("callback processing failed", zap.Error(err))
		c.String(status, "internal error")
		return
	}
	switch apperrors.KindOf(err) {
	case apperrors.KindMissingOrderID:
		c.String(status, "missing order id")
	case apperrors.KindAuthenticity:
		c.String(status, "invalid signature")
	case apperrors.KindUnknownOrder:
		c.String(status, "unknown order")
	default:
		c.String(status, "bad request")
	}
}
