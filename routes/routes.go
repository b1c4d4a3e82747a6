package routes

import (
	"net/http"

	"payment-service/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController, wc *controllers.WebhookController) {
	payments := r.Group("/payments")
	payments.POST("", pc.CreatePayment)
	payments.GET("/:orderID", pc.GetPayment)

	// Gateway callbacks (no auth, authenticity is verified per gateway)
	r.POST("/payments/callback", wc.HandleCallback)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
