package billing

import (
	"net/http"

	"salonbook/internal/domain/plans"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body struct {
		TenantID string `json:"tenantId"`
		Plan     string `json:"plan"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.TenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenantId and plan are required"})
		return
	}
	tier, err := plans.ParseTier(body.Plan)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !authorizeTenant(c, body.TenantID) {
		return
	}

	url, err := h.lifecycle.StartCheckout(c.Request.Context(), body.TenantID, tier)
	if err != nil {
		h.fail(c, "create checkout session", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}

func (h *Handler) CreateBillingPortal(c *gin.Context) {
	var body struct {
		TenantID string `json:"tenantId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.TenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tenantId is required"})
		return
	}
	if !authorizeTenant(c, body.TenantID) {
		return
	}

	url, err := h.lifecycle.OpenBillingPortal(c.Request.Context(), body.TenantID)
	if err != nil {
		h.fail(c, "create billing portal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
