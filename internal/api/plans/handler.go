package plans

import (
	"context"
	"errors"
	"net/http"

	"salonbook/internal/app/http/middleware"
	"salonbook/internal/domain/access"
	"salonbook/internal/domain/plans"
	"salonbook/internal/service/plancheck"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Validator interface {
	Status(ctx context.Context, tenantID string) (plancheck.Result, error)
	Reconcile(ctx context.Context, tenantID string) (plancheck.Result, error)
	Access(ctx context.Context, tenantID string, catalog plans.Catalog) (access.Policy, error)
}

type Handler struct {
	validator Validator
	catalog   plans.Catalog
	log       *zap.Logger
}

func NewHandler(validator Validator, catalog plans.Catalog, log *zap.Logger) *Handler {
	return &Handler{validator: validator, catalog: catalog, log: log}
}

func statusBody(res plancheck.Result) gin.H {
	return gin.H{
		"success":          true,
		"isActive":         res.IsActive,
		"plan":             res.Plan,
		"status":           res.Status,
		"paymentCompleted": res.PaymentCompleted,
		"periodEnd":        res.PeriodEnd,
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, plancheck.ErrTenantNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
		return
	}
	h.log.Error("plan check failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check plan"})
}

func allowed(c *gin.Context, tenantID string) bool {
	claims, ok := middleware.GetClaims(c)
	if !ok || !claims.CanActOnTenant(tenantID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for this tenant"})
		return false
	}
	return true
}

// ValidatePlan evaluates the tenant's plan and repairs a stale active status.
func (h *Handler) ValidatePlan(c *gin.Context) {
	var body struct {
		TenantID string `json:"tenantId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.TenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenantId is required"})
		return
	}
	if !allowed(c, body.TenantID) {
		return
	}

	res, err := h.validator.Reconcile(c.Request.Context(), body.TenantID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statusBody(res))
}

// PlanStatus is the read-only variant of ValidatePlan.
func (h *Handler) PlanStatus(c *gin.Context) {
	tenantID := c.Param("tenantId")
	if !allowed(c, tenantID) {
		return
	}

	res, err := h.validator.Status(c.Request.Context(), tenantID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, statusBody(res))
}

func (h *Handler) ListPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "plans": h.catalog.Plans()})
}

// Entitlements reports what the caller's tenant may use right now.
func (h *Handler) Entitlements(c *gin.Context) {
	tenantID := c.GetString("tenant_id")
	if tenantID == "" {
		tenantID = c.Query("tenantId")
	}
	if tenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenantId is required"})
		return
	}
	if !allowed(c, tenantID) {
		return
	}

	policy, err := h.validator.Access(c.Request.Context(), tenantID, h.catalog)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"isActive":     policy.State == access.AccessFull,
		"state":        policy.State,
		"plan":         policy.Plan,
		"entitlements": policy.Entitlements,
		"features":     policy.Features,
	})
}
