package billing

import (
	"net/http"

	"salonbook/internal/domain/plans"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ChangePlan(c *gin.Context) {
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

	res, err := h.lifecycle.ChangePlan(c.Request.Context(), body.TenantID, tier)
	if err != nil {
		h.fail(c, "change plan", err)
		return
	}

	if res.Unchanged {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Already on this plan"})
		return
	}
	if res.IsUpgrade {
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Plan upgraded",
			"isUpgrade": true,
			"plan":      res.Tier,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Downgrade scheduled for the end of the current period",
		"isUpgrade":   false,
		"plan":        res.Tier,
		"effectiveAt": res.EffectiveAt,
		"scheduleId":  res.ScheduleID,
	})
}

func (h *Handler) CancelDowngrade(c *gin.Context) {
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

	released, err := h.lifecycle.CancelDowngrade(c.Request.Context(), body.TenantID)
	if err != nil {
		h.fail(c, "cancel downgrade", err)
		return
	}
	if !released {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "No pending downgrade to cancel"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Pending downgrade cancelled"})
}
