package appointments

import (
	"context"
	"net/http"

	"salonbook/internal/service/autocomplete"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Sweeper interface {
	Sweep(ctx context.Context) (autocomplete.Result, error)
}

type Handler struct {
	sweeper Sweeper
	log     *zap.Logger
}

func NewHandler(sweeper Sweeper, log *zap.Logger) *Handler {
	return &Handler{sweeper: sweeper, log: log}
}

// AutoComplete runs one sweep. Callers are authenticated by
// middleware.CronOrServiceAuth.
func (h *Handler) AutoComplete(c *gin.Context) {
	res, err := h.sweeper.Sweep(c.Request.Context())
	if err != nil {
		h.log.Error("auto-complete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    res,
		"message": "Appointments auto-completed",
	})
}
