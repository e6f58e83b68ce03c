package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salonbook/internal/app/http/middleware"
	"salonbook/internal/domain/appointments"
	"salonbook/internal/repository"
	"salonbook/internal/service/autocomplete"
	"salonbook/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func router(s Sweeper) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/appointments/auto-complete",
		middleware.CronOrServiceAuth("cron-secret", []byte(testutil.JWTSecret)),
		NewHandler(s, zap.NewNop()).AutoComplete,
	)
	return r
}

func TestAutoCompleteWithCronSecret(t *testing.T) {
	repo := repository.NewAppointmentRepository(testutil.NewDB(t))
	old := time.Now().UTC().Add(-25 * time.Hour)
	recent := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(context.Background(), &appointments.Appointment{TenantID: "t1", Status: appointments.StatusConfirmed, ConfirmedAt: &old}))
	require.NoError(t, repo.Create(context.Background(), &appointments.Appointment{TenantID: "t1", Status: appointments.StatusConfirmed, ConfirmedAt: &recent}))

	req := httptest.NewRequest(http.MethodPost, "/appointments/auto-complete", nil)
	req.Header.Set(middleware.CronSecretHeader, "cron-secret")
	w := httptest.NewRecorder()
	router(autocomplete.NewSweeper(repo, 24*time.Hour, zap.NewNop())).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Completed int64     `json:"completed"`
			Cutoff    time.Time `json:"cutoff"`
		} `json:"data"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, int64(1), resp.Data.Completed)
	require.False(t, resp.Data.Cutoff.IsZero())
}

func TestAutoCompleteRequiresCredential(t *testing.T) {
	w := httptest.NewRecorder()
	router(failingSweeper{}).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/appointments/auto-complete", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

type failingSweeper struct{}

func (failingSweeper) Sweep(context.Context) (autocomplete.Result, error) {
	return autocomplete.Result{}, errors.New("database unavailable")
}

func TestAutoCompleteStoreFailure(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/appointments/auto-complete", nil)
	req.Header.Set("Authorization", "Bearer "+testutil.Token(t, "svc", middleware.RoleService, ""))
	w := httptest.NewRecorder()
	router(failingSweeper{}).ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"success":false,"error":"database unavailable"}`, w.Body.String())
}
