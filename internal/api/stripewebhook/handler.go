package stripewebhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"salonbook/internal/domain/billing"
	"salonbook/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
	"go.uber.org/zap"
)

const maxBodyBytes = 65536

// Syncer applies processor events to local tenant state.
type Syncer interface {
	ApplyCheckoutCompleted(ctx context.Context, sessionID string) error
	ApplySubscriptionUpdated(ctx context.Context, sub billing.RemoteSubscription) error
	ApplySubscriptionDeleted(ctx context.Context, sub billing.RemoteSubscription) error
}

type Handler struct {
	endpointSecret string
	sync           Syncer
	log            *zap.Logger
}

func NewHandler(endpointSecret string, sync Syncer, log *zap.Logger) *Handler {
	return &Handler{endpointSecret: endpointSecret, sync: sync, log: log}
}

func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.endpointSecret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.log.Warn("stripe signature verification failed", zap.Error(err))
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "400").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	status, body := h.dispatch(c.Request.Context(), event)
	metrics.WebhookEventsTotal.WithLabelValues(string(event.Type), strconv.Itoa(status)).Inc()
	c.JSON(status, body)
}

// dispatch returns 500 for failures Stripe should retry and 200 for
// everything else, including events this service does not handle.
func (h *Handler) dispatch(ctx context.Context, event stripe.Event) (int, gin.H) {
	log := h.log.With(zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))

	var err error
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if jsonErr := json.Unmarshal(event.Data.Raw, &session); jsonErr != nil {
			return http.StatusBadRequest, gin.H{"error": "Failed to parse session"}
		}
		err = handleCheckoutSessionCompleted(ctx, h.sync, &session)

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if jsonErr := json.Unmarshal(event.Data.Raw, &sub); jsonErr != nil {
			return http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"}
		}
		err = handleSubscriptionUpdated(ctx, h.sync, &sub)

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if jsonErr := json.Unmarshal(event.Data.Raw, &sub); jsonErr != nil {
			return http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"}
		}
		err = handleSubscriptionDeleted(ctx, h.sync, &sub)

	default:
		return http.StatusOK, gin.H{"received": true, "status": "ignored"}
	}

	if err != nil {
		log.Error("stripe webhook processing failed", zap.Error(err))
		return http.StatusInternalServerError, gin.H{"error": err.Error()}
	}
	log.Info("stripe webhook processed")
	return http.StatusOK, gin.H{"received": true}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
