package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salonbook/internal/service/plancheck"
	"salonbook/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware([]byte(testutil.JWTSecret)), func(c *gin.Context) {
		claims, ok := GetClaims(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user": claims.UserID, "tenant": claims.TenantID})
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	require.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	w = serve(r, withBearer(httptest.NewRequest(http.MethodGet, "/me", nil), "not-a-jwt"))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, withBearer(httptest.NewRequest(http.MethodGet, "/me", nil), testutil.Token(t, "u1", "owner", "t1")))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user":"u1","tenant":"t1"}`, w.Body.String())
}

func TestClaimsScope(t *testing.T) {
	owner := Claims{UserID: "u1", TenantID: "t1", Role: "owner"}
	require.True(t, owner.CanActOnTenant("t1"))
	require.False(t, owner.CanActOnTenant("t2"))
	require.True(t, owner.CanActOnUser("u1"))
	require.False(t, owner.CanActOnUser("u2"))

	service := Claims{UserID: "svc", TenantID: "t1", Role: RoleService}
	require.True(t, service.CanActOnTenant("t2"))
	require.True(t, service.CanActOnUser("u2"))

	unscoped := Claims{UserID: "u3", Role: "owner"}
	require.False(t, unscoped.CanActOnTenant("t1"))
	require.False(t, unscoped.CanActOnTenant(""))
	require.True(t, unscoped.CanActOnUser("u3"))

	admin := Claims{UserID: "root", Role: RoleAdmin}
	require.True(t, admin.CanActOnTenant("t1"))
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthMiddleware([]byte(testutil.JWTSecret)), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := serve(r, withBearer(httptest.NewRequest(http.MethodGet, "/admin", nil), testutil.Token(t, "u1", "owner", "")))
	require.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, withBearer(httptest.NewRequest(http.MethodGet, "/admin", nil), testutil.Token(t, "u1", RoleAdmin, "")))
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestCronOrServiceAuth(t *testing.T) {
	r := gin.New()
	r.POST("/cron", CronOrServiceAuth("cron-secret", []byte(testutil.JWTSecret)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"no credential", "", "", http.StatusUnauthorized},
		{"cron secret", CronSecretHeader, "cron-secret", http.StatusNoContent},
		{"wrong cron secret", CronSecretHeader, "guess", http.StatusUnauthorized},
		{"service token", "Authorization", "Bearer " + testutil.Token(t, "svc", RoleService, ""), http.StatusNoContent},
		{"owner token", "Authorization", "Bearer " + testutil.Token(t, "u1", "owner", "t1"), http.StatusForbidden},
		{"garbage token", "Authorization", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/cron", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			require.Equal(t, tt.want, serve(r, req).Code)
		})
	}
}

func TestCronSecretUnsetRejectsHeader(t *testing.T) {
	r := gin.New()
	r.POST("/cron", CronOrServiceAuth("", []byte(testutil.JWTSecret)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodPost, "/cron", nil)
	req.Header.Set(CronSecretHeader, "")
	require.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/cron", nil)
	req.Header.Set(CronSecretHeader, "anything")
	require.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

type blockSet map[string]bool

const lookupFailsIP = "203.0.113.250"

func (b blockSet) IsBlocked(_ context.Context, ip string) (bool, error) {
	if ip == lookupFailsIP {
		return false, errors.New("db down")
	}
	return b[ip], nil
}

func blockingEngine(t *testing.T, trusted []string) *gin.Engine {
	t.Helper()
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(trusted))
	r.Use(BlockIPs(blockSet{"198.51.100.9": true}, zap.NewNop(), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/plans", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func from(path, remoteAddr, forwardedFor string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	return req
}

func TestBlockIPs(t *testing.T) {
	r := blockingEngine(t, nil)

	require.Equal(t, http.StatusForbidden, serve(r, from("/plans", "198.51.100.9:5100", "")).Code)
	require.Equal(t, http.StatusOK, serve(r, from("/health", "198.51.100.9:5100", "")).Code)
	require.Equal(t, http.StatusOK, serve(r, from("/plans", "203.0.113.1:5100", "")).Code)
	// lookup errors let the request through
	require.Equal(t, http.StatusOK, serve(r, from("/plans", lookupFailsIP+":5100", "")).Code)
}

func TestBlockIPsIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := blockingEngine(t, nil)

	// a blocked client cannot hide behind a made-up header
	require.Equal(t, http.StatusForbidden, serve(r, from("/plans", "198.51.100.9:5100", "203.0.113.1")).Code)
	// nor can an unblocked client frame someone else
	require.Equal(t, http.StatusOK, serve(r, from("/plans", "203.0.113.1:5100", "198.51.100.9")).Code)
}

func TestBlockIPsHonorsForwardedForFromTrustedProxy(t *testing.T) {
	r := blockingEngine(t, []string{"10.0.0.0/8"})

	require.Equal(t, http.StatusForbidden, serve(r, from("/plans", "10.0.0.1:443", "198.51.100.9")).Code)
	require.Equal(t, http.StatusForbidden, serve(r, from("/plans", "10.0.0.1:443", "198.51.100.9, 10.0.0.7")).Code)
	require.Equal(t, http.StatusOK, serve(r, from("/plans", "10.0.0.1:443", "203.0.113.1")).Code)
	// the hop left of an untrusted address is ignored
	require.Equal(t, http.StatusOK, serve(r, from("/plans", "10.0.0.1:443", "198.51.100.9, 203.0.113.1")).Code)
}

func TestSanitizeInput(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeJSON())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", body)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"tenantId":"<script>alert(1)</script>t1","n":3}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"tenantId":"t1","n":3}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"tags":[" <b>vip</b> "],"owner":{"name":"<i>Ana</i>"},"price":49.90}`))
	req.Header.Set("Content-Type", "application/json")
	w = serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"tags":["vip"],"owner":{"name":"Ana"},"price":49.90}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/echo", nil)
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{broken`))
	req.Header.Set("Content-Type", "application/json")
	require.Equal(t, http.StatusBadRequest, serve(r, req).Code)
}

type planStub map[string]plancheck.Result

func (p planStub) Status(_ context.Context, tenantID string) (plancheck.Result, error) {
	res, ok := p[tenantID]
	if !ok {
		return plancheck.Result{}, plancheck.ErrTenantNotFound
	}
	return res, nil
}

func TestRequireActivePlan(t *testing.T) {
	r := gin.New()
	r.POST("/change-plan",
		AuthMiddleware([]byte(testutil.JWTSecret)),
		RequireActivePlan(planStub{"paid": {IsActive: true}, "expired": {IsActive: false}}),
		func(c *gin.Context) {
			body, _ := io.ReadAll(c.Request.Body)
			c.Data(http.StatusOK, "application/json", body)
		},
	)

	req := withBearer(httptest.NewRequest(http.MethodPost, "/change-plan", strings.NewReader(`{}`)), testutil.Token(t, "u1", "owner", "expired"))
	require.Equal(t, http.StatusPaymentRequired, serve(r, req).Code)

	req = withBearer(httptest.NewRequest(http.MethodPost, "/change-plan", strings.NewReader(`{}`)), testutil.Token(t, "u1", "owner", "ghost"))
	require.Equal(t, http.StatusNotFound, serve(r, req).Code)

	// no tenant in the token: the body decides and is still readable afterwards
	req = withBearer(httptest.NewRequest(http.MethodPost, "/change-plan", strings.NewReader(`{"tenantId":"paid"}`)), testutil.Token(t, "svc", RoleService, ""))
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"tenantId":"paid"}`, w.Body.String())

	req = withBearer(httptest.NewRequest(http.MethodPost, "/change-plan", strings.NewReader(`{}`)), testutil.Token(t, "svc", RoleService, ""))
	require.Equal(t, http.StatusBadRequest, serve(r, req).Code)
}
