package account

import (
	"context"
	"errors"
	"net/http"
	"time"

	"salonbook/internal/app/http/middleware"
	"salonbook/internal/domain/access"
	"salonbook/internal/domain/billing"
	"salonbook/internal/domain/plans"
	"salonbook/internal/domain/tenants"
	"salonbook/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TenantReader interface {
	Get(ctx context.Context, id string) (tenants.Tenant, error)
}

type SubscriptionReader interface {
	GetByStripeID(ctx context.Context, stripeSubscriptionID string) (billing.Subscription, error)
}

type Handler struct {
	tenants TenantReader
	subs    SubscriptionReader
	catalog plans.Catalog
	log     *zap.Logger
	now     func() time.Time
}

func NewHandler(tenants TenantReader, subs SubscriptionReader, catalog plans.Catalog, log *zap.Logger) *Handler {
	return &Handler{
		tenants: tenants,
		subs:    subs,
		catalog: catalog,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GetAccount summarizes the caller's tenant: plan, subscription, pending
// downgrade and current access.
func (h *Handler) GetAccount(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	tenantID := claims.TenantID
	if tenantID == "" {
		tenantID = c.Query("tenantId")
	}
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenantId is required"})
		return
	}
	if !claims.CanActOnTenant(tenantID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for this tenant"})
		return
	}

	ctx := c.Request.Context()
	tenant, err := h.tenants.Get(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
		return
	}
	if err != nil {
		h.log.Error("load tenant", zap.String("tenant_id", tenantID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tenant"})
		return
	}

	var mirror *billing.Subscription
	if tenant.HasSubscription() {
		sub, err := h.subs.GetByStripeID(ctx, *tenant.StripeSubscriptionID)
		switch {
		case err == nil:
			mirror = &sub
		case !errors.Is(err, repository.ErrNotFound):
			h.log.Warn("load subscription mirror", zap.String("tenant_id", tenantID), zap.Error(err))
		}
	}

	now := h.now()
	policy := access.ComputePolicy(now, tenant, h.catalog)

	c.JSON(http.StatusOK, AccountResponse{
		Success: true,
		Tenant: TenantDTO{
			ID:         tenant.ID,
			Name:       tenant.Name,
			OwnerEmail: tenant.OwnerEmail,
		},
		Billing: BillingDTO{
			Plan:          BuildPlanDTO(h.catalog, tenant.PlanTier),
			Status:        string(tenant.PlanStatus),
			Paid:          tenant.PaymentCompleted,
			Subscription:  BuildSubscriptionDTO(tenant, mirror),
			PendingChange: BuildPendingChangeDTO(h.catalog, tenant),
		},
		Access: BuildAccessDTO(now, tenant, policy),
	})
}
