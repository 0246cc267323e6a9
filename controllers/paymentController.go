package controllers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/loomline/loomline-api/initializers"
	"github.com/loomline/loomline-api/middlewares"
	"github.com/loomline/loomline-api/models"
	"github.com/loomline/loomline-api/payments"
	"github.com/loomline/loomline-api/services"
	"github.com/loomline/loomline-api/utils"
)

const (
	eventPaymentCaptured   = "payment.captured"
	eventPaymentAuthorized = "payment.authorized"
	eventPaymentFailed     = "payment.failed"
)

// webhookPayload is the strict shape we accept from the gateway. Anything
// that does not parse into it is rejected outright.
type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandlePaymentWebhook is the asynchronous entry point, called by the gateway
// with at-least-once delivery. Signature failures return 400 with no state
// change; reconciliation failures after a valid signature return 500 so the
// gateway retries into the idempotent path; duplicates get 200.
func HandlePaymentWebhook(ctx *gin.Context) {
	body, err := ctx.GetRawData()
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Failed to read request body")
		return
	}

	secret := os.Getenv("RAZORPAY_WEBHOOK_SECRET")
	signature := ctx.GetHeader("X-Razorpay-Signature")
	if err := payments.VerifyWebhookSignature(body, signature, secret); err != nil {
		if errors.Is(err, payments.ErrMissingSecret) {
			log.Error("RAZORPAY_WEBHOOK_SECRET is not set; refusing to process unsigned webhooks")
			sendErrorResponse(ctx, http.StatusInternalServerError, "Missing payment configuration")
			return
		}
		log.Warnf("Webhook signature mismatch: expected %s, received %s",
			payments.ComputeSignature(body, secret), signature)
		sendErrorResponse(ctx, http.StatusBadRequest, "invalid signature")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "invalid payload")
		return
	}
	entity := payload.Payload.Payment.Entity
	if entity.OrderID == "" {
		sendErrorResponse(ctx, http.StatusBadRequest, "invalid payload")
		return
	}

	reconciler := services.NewReconcileService(initializers.DB)

	switch payload.Event {
	case eventPaymentCaptured, eventPaymentAuthorized:
		order, err := reconciler.MarkPaid(ctx.Request.Context(), entity.OrderID, entity.ID)
		if errors.Is(err, services.ErrAlreadyProcessed) {
			sendJSONResponse(ctx, http.StatusOK, gin.H{"status": "already processed"})
			return
		}
		if errors.Is(err, services.ErrOrderNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "order not found")
			return
		}
		if err != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, "reconciliation failed")
			return
		}
		checkCapturedAmount(order, entity.Amount)
		notifyOrderPaid(order)
		sendJSONResponse(ctx, http.StatusOK, gin.H{"status": "processed"})

	case eventPaymentFailed:
		_, err := reconciler.MarkFailed(ctx.Request.Context(), entity.OrderID)
		if errors.Is(err, services.ErrAlreadyProcessed) {
			sendJSONResponse(ctx, http.StatusOK, gin.H{"status": "already processed"})
			return
		}
		if errors.Is(err, services.ErrOrderNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, "order not found")
			return
		}
		if err != nil {
			sendErrorResponse(ctx, http.StatusInternalServerError, "reconciliation failed")
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"status": "processed"})

	default:
		sendJSONResponse(ctx, http.StatusOK, gin.H{"status": "ignored"})
	}
}

// VerifyPayment is the synchronous entry point, called by the storefront
// after the gateway redirect. It shares the reconciliation core with the
// webhook; whichever arrives second becomes a no-op.
func VerifyPayment(ctx *gin.Context) {
	userId, ok := middlewares.CurrentUserID(ctx)
	if !ok {
		sendErrorResponse(ctx, http.StatusUnauthorized, "User not found in context")
		return
	}

	var body struct {
		GatewayPaymentID string `json:"gatewayPaymentId" binding:"required"`
		GatewayOrderID   string `json:"gatewayOrderId" binding:"required"`
		Signature        string `json:"signature" binding:"required"`
		OrderID          uint   `json:"orderId"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	if err := payments.VerifyPaymentSignature(body.GatewayOrderID, body.GatewayPaymentID, body.Signature, secret); err != nil {
		if errors.Is(err, payments.ErrMissingSecret) {
			log.Error("RAZORPAY_KEY_SECRET is not set; refusing to verify payments")
			sendErrorResponse(ctx, http.StatusInternalServerError, "Missing payment configuration")
			return
		}
		log.Warnf("Payment signature mismatch for gateway order %s: expected %s, received %s",
			body.GatewayOrderID,
			payments.ComputeSignature([]byte(body.GatewayOrderID+"|"+body.GatewayPaymentID), secret),
			body.Signature)
		sendErrorResponse(ctx, http.StatusBadRequest, "invalid signature")
		return
	}

	var order models.Order
	result := initializers.DB.Where("gateway_order_id = ?", body.GatewayOrderID).Find(&order)
	if result.Error != nil {
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		sendErrorResponse(ctx, http.StatusNotFound, "order not found")
		return
	}
	if order.UserID != int(userId) {
		sendErrorResponse(ctx, http.StatusForbidden, "You do not have access to this order")
		return
	}
	if body.OrderID != 0 && body.OrderID != order.ID {
		sendErrorResponse(ctx, http.StatusBadRequest, "order reference mismatch")
		return
	}

	paid, err := services.NewReconcileService(initializers.DB).MarkPaid(ctx.Request.Context(), body.GatewayOrderID, body.GatewayPaymentID)
	if errors.Is(err, services.ErrAlreadyProcessed) {
		sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "status": "already processed"})
		return
	}
	if err != nil {
		log.Errorf("Verify reconciliation failed for order %d: %v", order.ID, err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "reconciliation failed")
		return
	}

	notifyOrderPaid(paid)
	sendJSONResponse(ctx, http.StatusOK, gin.H{"success": true, "orderId": paid.ID})
}

// checkCapturedAmount flags drift between the amount the gateway captured and
// the total stored at intake. Logged only; the reconciled state stands and the
// mismatch is left to manual review.
func checkCapturedAmount(order *models.Order, amountMinor int64) {
	if amountMinor == 0 {
		return
	}
	expected := int64(math.Round(order.Total * 100))
	if amountMinor != expected {
		log.Warnf("Order %d captured for %d minor units but was created for %d", order.ID, amountMinor, expected)
	}
}

// notifyOrderPaid sends the confirmation mail in the background. Failures are
// logged; the payment outcome is already committed.
func notifyOrderPaid(order *models.Order) {
	var user models.User
	if err := initializers.DB.First(&user, order.UserID).Error; err != nil {
		log.Errorf("Order %d paid but user lookup for confirmation mail failed: %v", order.ID, err)
		return
	}

	go func() {
		if err := utils.SendOrderConfirmation(user.Email, user.Fullname, order.ID, order.Total); err != nil {
			log.Errorf("Failed to send confirmation mail for order %d: %v", order.ID, err)
		}
	}()
}
