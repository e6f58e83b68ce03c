package admin

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"salonbook/internal/app/http/middleware"
	"salonbook/internal/repository"
	"salonbook/internal/service/blocklist"
	"salonbook/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := blocklist.NewService(repository.NewBlockedIPRepository(testutil.NewDB(t)), zap.NewNop())
	h := NewHandler(svc, zap.NewNop())

	r := gin.New()
	g := r.Group("/admin")
	g.Use(middleware.AuthMiddleware([]byte(testutil.JWTSecret)), middleware.RequireRole(middleware.RoleAdmin))
	g.GET("/ip-blocks", h.ListIPBlocks)
	g.POST("/ip-blocks", h.BlockIP)
	g.DELETE("/ip-blocks/:ip", h.UnblockIP)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBlockListUnblock(t *testing.T) {
	r := setupRouter(t)
	token := testutil.Token(t, "admin-1", middleware.RoleAdmin, "")

	w := do(t, r, http.MethodPost, "/admin/ip-blocks", token, map[string]any{
		"ip": "203.0.113.7", "reason": "abuse", "durationMinutes": 30,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/admin/ip-blocks", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Success bool `json:"success"`
		Blocks  []struct {
			IP     string `json:"ip"`
			Reason string `json:"reason"`
		} `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.True(t, listed.Success)
	require.Len(t, listed.Blocks, 1)
	require.Equal(t, "203.0.113.7", listed.Blocks[0].IP)
	require.Equal(t, "abuse", listed.Blocks[0].Reason)

	w = do(t, r, http.MethodDelete, "/admin/ip-blocks/203.0.113.7", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"removed":true`)

	w = do(t, r, http.MethodGet, "/admin/ip-blocks", token, nil)
	require.Contains(t, w.Body.String(), `"blocks":[]`)
}

func TestBlockIPValidation(t *testing.T) {
	r := setupRouter(t)
	token := testutil.Token(t, "admin-1", middleware.RoleAdmin, "")

	w := do(t, r, http.MethodPost, "/admin/ip-blocks", token, map[string]any{"reason": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/admin/ip-blocks", token, map[string]any{"ip": "not-an-ip"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/admin/ip-blocks/nope", token, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/admin/ip-blocks", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/admin/ip-blocks", testutil.Token(t, "u1", "authenticated", "t1"), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}
