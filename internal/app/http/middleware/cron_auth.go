package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const CronSecretHeader = "X-Cron-Secret"

// CronOrServiceAuth admits schedulers presenting the shared cron secret, or
// callers with an admin/service_role bearer token.
func CronOrServiceAuth(cronSecret string, jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if provided := c.GetHeader(CronSecretHeader); provided != "" {
			if cronSecret != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(cronSecret)) == 1 {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid cron secret"})
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		claims, err := ParseToken(tokenString, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid or expired token"})
			return
		}
		if !claims.Privileged() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "Access denied"})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}
