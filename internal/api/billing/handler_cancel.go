package billing

import (
	"net/http"

	stripeinfra "salonbook/internal/infra/stripe"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CancelSubscription(c *gin.Context) {
	var body struct {
		SubscriptionID string `json:"subscriptionId"`
		TenantID       string `json:"tenantId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.SubscriptionID == "" || body.TenantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subscriptionId and tenantId are required"})
		return
	}
	if !stripeinfra.IsSafeStripeID(body.SubscriptionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscriptionId"})
		return
	}
	if !authorizeTenant(c, body.TenantID) {
		return
	}

	sub, err := h.lifecycle.Cancel(c.Request.Context(), body.SubscriptionID, body.TenantID)
	if err != nil {
		h.fail(c, "cancel subscription", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "subscription": sub})
}
