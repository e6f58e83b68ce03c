package billing

import (
	"context"
	"errors"
	"net/http"

	"salonbook/internal/app/http/middleware"
	"salonbook/internal/domain/billing"
	"salonbook/internal/domain/plans"
	"salonbook/internal/service/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Lifecycle is the subscription lifecycle the billing routes drive.
type Lifecycle interface {
	Cancel(ctx context.Context, subscriptionID, tenantID string) (billing.RemoteSubscription, error)
	StartCheckout(ctx context.Context, tenantID string, tier plans.Tier) (string, error)
	OpenBillingPortal(ctx context.Context, tenantID string) (string, error)
	ChangePlan(ctx context.Context, tenantID string, tier plans.Tier) (subscription.ChangeResult, error)
	CancelDowngrade(ctx context.Context, tenantID string) (bool, error)
}

type Handler struct {
	lifecycle Lifecycle
	log       *zap.Logger
}

func NewHandler(lifecycle Lifecycle, log *zap.Logger) *Handler {
	return &Handler{lifecycle: lifecycle, log: log}
}

// authorizeTenant aborts with 403 when the caller's token is scoped to a
// different tenant.
func authorizeTenant(c *gin.Context, tenantID string) bool {
	claims, ok := middleware.GetClaims(c)
	if !ok || !claims.CanActOnTenant(tenantID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for this tenant"})
		return false
	}
	return true
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, subscription.ErrTenantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
	case errors.Is(err, subscription.ErrSubscriptionMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "Subscription does not belong to this tenant"})
	case errors.Is(err, subscription.ErrNoCustomer):
		c.JSON(http.StatusConflict, gin.H{"error": "No billing account yet. Subscribe to a plan first."})
	case errors.Is(err, subscription.ErrNoSubscription):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active subscription to change. Use checkout first."})
	case errors.Is(err, subscription.ErrPlanUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Plan is not available for purchase"})
	default:
		h.log.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
