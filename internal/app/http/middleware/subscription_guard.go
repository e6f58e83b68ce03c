package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"salonbook/internal/service/plancheck"

	"github.com/gin-gonic/gin"
)

type PlanStatusReader interface {
	Status(ctx context.Context, tenantID string) (plancheck.Result, error)
}

// RequireActivePlan rejects callers whose tenant is not on an active, paid
// plan with 402. The tenant comes from the token, or from the JSON body's
// tenantId for tokens without one.
func RequireActivePlan(plans PlanStatusReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetString("tenant_id")
		if tenantID == "" {
			tenantID = peekTenantID(c)
		}
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "tenantId is required"})
			return
		}

		res, err := plans.Status(c.Request.Context(), tenantID)
		if errors.Is(err, plancheck.ErrTenantNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check plan"})
			return
		}
		if !res.IsActive {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "Your plan is not active"})
			return
		}

		c.Next()
	}
}

func peekTenantID(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	buf, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(buf))
	if err != nil {
		return ""
	}
	var body struct {
		TenantID string `json:"tenantId"`
	}
	_ = json.Unmarshal(buf, &body)
	return body.TenantID
}
