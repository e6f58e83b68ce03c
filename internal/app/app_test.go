package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salonbook/config"
	"salonbook/internal/app/http/middleware"
	"salonbook/internal/domain/plans"
	"salonbook/internal/domain/tenants"
	"salonbook/internal/repository"
	"salonbook/internal/service/blocklist"
	"salonbook/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func testConfig() config.Config {
	return config.Config{
		Environment:          "test",
		JWTSecret:            testutil.JWTSecret,
		CronSecret:           "cron-secret",
		CORSOrigins:          []string{"http://localhost:5173"},
		AppURL:               "http://localhost:5173",
		StripeWebhookSecret:  "whsec_test",
		AutoCompleteAfter:    24 * time.Hour,
		TwoFactorCodeTTL:     10 * time.Minute,
		TwoFactorMaxAttempts: 5,
		TwoFactorExposeCode:  true,
	}
}

func newApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	return New(testConfig(), db, nil, zap.NewNop()), db
}

func send(a *App, method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	a, _ := newApp(t)

	w := send(a, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = send(a, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")
}

func TestPublicPlans(t *testing.T) {
	a, _ := newApp(t)
	w := send(a, http.MethodGet, "/plans", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), string(plans.TierPremium))
}

func TestAuthenticatedRoutesRequireToken(t *testing.T) {
	a, _ := newApp(t)
	for _, path := range []string{"/cancel-subscription", "/validate-plan", "/send-2fa-code", "/change-plan"} {
		w := send(a, http.MethodPost, path, "", `{}`)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAutoCompleteRequiresCronOrServiceCredential(t *testing.T) {
	a, _ := newApp(t)

	w := send(a, http.MethodPost, "/appointments/auto-complete", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(a, http.MethodPost, "/appointments/auto-complete", "", "", middleware.CronSecretHeader, "cron-secret")
	require.Equal(t, http.StatusOK, w.Code)

	w = send(a, http.MethodPost, "/appointments/auto-complete", testutil.Token(t, "svc", middleware.RoleService, ""), "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestChangePlanRequiresActivePlan(t *testing.T) {
	a, db := newApp(t)
	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repository.NewTenantRepository(db).Create(context.Background(), &tenants.Tenant{
		ID:               "t1",
		PlanTier:         plans.TierEssential,
		PlanStatus:       tenants.StatusActive,
		PaymentCompleted: true,
		CurrentPeriodEnd: &past,
	}))

	w := send(a, http.MethodPost, "/change-plan", testutil.Token(t, "u1", "owner", "t1"), `{"tenantId":"t1","plan":"premium"}`)
	require.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestBlockedClientIsRejected(t *testing.T) {
	a, db := newApp(t)
	_, err := blocklist.NewService(repository.NewBlockedIPRepository(db), nil).Block(context.Background(), "198.51.100.4", "abuse", 0)
	require.NoError(t, err)

	fromBlocked := func(path, forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "198.51.100.4:40000"
		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
		}
		w := httptest.NewRecorder()
		a.Engine.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusForbidden, fromBlocked("/plans", ""))
	require.Equal(t, http.StatusForbidden, fromBlocked("/plans", "203.0.113.1"))
	require.Equal(t, http.StatusOK, fromBlocked("/health", ""))

	// no trusted proxies configured, so the header cannot name a blocked client
	w := send(a, http.MethodGet, "/plans", "", "", "X-Forwarded-For", "198.51.100.4")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestTrustedProxyForwardsClientAddress(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	cfg := testConfig()
	cfg.TrustedProxies = []string{"192.0.2.0/24"}
	a := New(cfg, db, nil, zap.NewNop())
	_, err := blocklist.NewService(repository.NewBlockedIPRepository(db), nil).Block(context.Background(), "198.51.100.4", "abuse", 0)
	require.NoError(t, err)

	// httptest requests come from 192.0.2.1
	w := send(a, http.MethodGet, "/plans", "", "", "X-Forwarded-For", "198.51.100.4")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	a, _ := newApp(t)

	w := send(a, http.MethodGet, "/admin/ip-blocks", testutil.Token(t, "u1", "owner", "t1"), "")
	require.Equal(t, http.StatusForbidden, w.Code)

	w = send(a, http.MethodGet, "/admin/ip-blocks", testutil.Token(t, "root", middleware.RoleAdmin, ""), "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSendersFollowConfig(t *testing.T) {
	cfg := testConfig()
	require.Empty(t, Senders(cfg))

	cfg.SMTPHost = "smtp.example.com"
	cfg.SMSGatewayURL = "https://sms.example.com/send"
	require.Len(t, Senders(cfg), 2)
}
