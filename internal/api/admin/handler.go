package admin

import (
	"context"
	"errors"
	"net/http"
	"time"

	"salonbook/internal/domain/ipblock"
	"salonbook/internal/service/blocklist"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Blocklist manages blocked client addresses.
type Blocklist interface {
	Block(ctx context.Context, ip, reason string, ttl time.Duration) (ipblock.BlockedIP, error)
	Unblock(ctx context.Context, ip string) (bool, error)
	List(ctx context.Context) ([]ipblock.BlockedIP, error)
}

type Handler struct {
	blocks Blocklist
	log    *zap.Logger
}

func NewHandler(blocks Blocklist, log *zap.Logger) *Handler {
	return &Handler{blocks: blocks, log: log}
}

type blockIPRequest struct {
	IP              string `json:"ip" binding:"required"`
	Reason          string `json:"reason"`
	DurationMinutes int    `json:"durationMinutes"`
}

func (h *Handler) ListIPBlocks(c *gin.Context) {
	blocks, err := h.blocks.List(c.Request.Context())
	if err != nil {
		h.log.Error("list ip blocks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to load blocked IPs"})
		return
	}
	if blocks == nil {
		blocks = []ipblock.BlockedIP{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "blocks": blocks})
}

// BlockIP blocks an address. A non-positive duration blocks it until removed.
func (h *Handler) BlockIP(c *gin.Context) {
	var req blockIPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "ip is required"})
		return
	}

	var ttl time.Duration
	if req.DurationMinutes > 0 {
		ttl = time.Duration(req.DurationMinutes) * time.Minute
	}

	block, err := h.blocks.Block(c.Request.Context(), req.IP, req.Reason, ttl)
	if errors.Is(err, blocklist.ErrInvalidIP) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid IP address"})
		return
	}
	if err != nil {
		h.log.Error("block ip", zap.String("ip", req.IP), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to block IP"})
		return
	}

	h.log.Info("ip blocked", zap.String("ip", block.IP), zap.String("reason", block.Reason))
	c.JSON(http.StatusOK, gin.H{"success": true, "block": block})
}

func (h *Handler) UnblockIP(c *gin.Context) {
	ip := c.Param("ip")
	removed, err := h.blocks.Unblock(c.Request.Context(), ip)
	if errors.Is(err, blocklist.ErrInvalidIP) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid IP address"})
		return
	}
	if err != nil {
		h.log.Error("unblock ip", zap.String("ip", ip), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to unblock IP"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}
