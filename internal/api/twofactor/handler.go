package twofactor

import (
	"context"
	"errors"
	"net/http"

	"salonbook/internal/app/http/middleware"
	"salonbook/internal/domain/twofactor"
	"salonbook/internal/service/verification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Verifier interface {
	RequestCode(ctx context.Context, userID string, method twofactor.MethodType, destination string) (verification.Challenge, error)
	VerifyCode(ctx context.Context, userID string, method twofactor.MethodType, code, secretKey string) error
	DisableMethod(ctx context.Context, userID string, method twofactor.MethodType) error
	ListMethods(ctx context.Context, userID string) ([]verification.MethodStatus, error)
}

type Handler struct {
	verifier Verifier
	log      *zap.Logger
}

func NewHandler(verifier Verifier, log *zap.Logger) *Handler {
	return &Handler{verifier: verifier, log: log}
}

type methodRequest struct {
	UserID      string `json:"userId"`
	MethodType  string `json:"methodType"`
	Destination string `json:"destination"`
	Code        string `json:"code"`
	SecretKey   string `json:"secretKey"`
}

// bind parses the body and checks the caller may act for userId.
func bind(c *gin.Context, needCode bool) (methodRequest, twofactor.MethodType, bool) {
	var req methodRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.MethodType == "" || (needCode && req.Code == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return req, "", false
	}
	method, err := twofactor.ParseMethodType(req.MethodType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, "", false
	}
	claims, ok := middleware.GetClaims(c)
	if !ok || !claims.CanActOnUser(req.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for this user"})
		return req, "", false
	}
	return req, method, true
}

func (h *Handler) SendCode(c *gin.Context) {
	req, method, ok := bind(c, false)
	if !ok {
		return
	}

	destination := req.Destination
	if destination == "" && method == twofactor.MethodEmail {
		destination = c.GetString("email")
	}

	ch, err := h.verifier.RequestCode(c.Request.Context(), req.UserID, method, destination)
	switch {
	case errors.Is(err, verification.ErrNoDestination):
		c.JSON(http.StatusBadRequest, gin.H{"error": "destination is required for this method"})
		return
	case errors.Is(err, verification.ErrChannelUnavailable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "verification method " + string(method) + " is not available"})
		return
	case err != nil:
		h.log.Error("send 2fa code failed", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		return
	}

	resp := gin.H{"success": true, "message": "Verification code sent"}
	if method == twofactor.MethodAuthenticator {
		resp["message"] = "Scan the QR code with your authenticator app"
		resp["secret"] = ch.Secret
		resp["otpauthUrl"] = ch.OTPAuthURL
	}
	if ch.Code != "" {
		resp["code"] = ch.Code
	}
	if ch.ExpiresAt != nil {
		resp["expiresAt"] = ch.ExpiresAt
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) VerifyCode(c *gin.Context) {
	req, method, ok := bind(c, true)
	if !ok {
		return
	}

	err := h.verifier.VerifyCode(c.Request.Context(), req.UserID, method, req.Code, req.SecretKey)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Verification successful"})
	case errors.Is(err, verification.ErrInvalidCode), errors.Is(err, verification.ErrNoPendingCode):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid verification code"})
	case errors.Is(err, verification.ErrCodeExpired):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Verification code expired"})
	case errors.Is(err, verification.ErrTooManyAttempts):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Too many attempts. Request a new code."})
	default:
		h.log.Error("verify 2fa code failed", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify code"})
	}
}

func (h *Handler) Disable(c *gin.Context) {
	req, method, ok := bind(c, false)
	if !ok {
		return
	}

	err := h.verifier.DisableMethod(c.Request.Context(), req.UserID, method)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "2FA method disabled"})
	case errors.Is(err, verification.ErrMethodNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "2FA method not configured"})
	default:
		h.log.Error("disable 2fa failed", zap.String("user_id", req.UserID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to disable 2FA method"})
	}
}

// ListMethods lists the caller's own methods; privileged callers may pass
// ?userId=.
func (h *Handler) ListMethods(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)
	userID := claims.UserID
	if q := c.Query("userId"); q != "" {
		if !claims.CanActOnUser(q) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied for this user"})
			return
		}
		userID = q
	}

	methods, err := h.verifier.ListMethods(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list 2fa methods failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list 2FA methods"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "methods": methods})
}
