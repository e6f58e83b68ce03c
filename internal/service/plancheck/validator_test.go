package plancheck

import (
	"context"
	"testing"
	"time"

	"salonbook/internal/domain/access"
	"salonbook/internal/domain/plans"
	"salonbook/internal/domain/tenants"
	"salonbook/internal/repository"
	"salonbook/internal/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newValidator(t *testing.T) (*Validator, *repository.TenantRepository) {
	t.Helper()
	repo := repository.NewTenantRepository(testutil.NewDB(t))
	return NewValidator(repo, zap.NewNop()), repo
}

func createTenant(t *testing.T, repo *repository.TenantRepository, tenant tenants.Tenant) tenants.Tenant {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &tenant))
	return tenant
}

func TestStatusActivePremium(t *testing.T) {
	v, repo := newValidator(t)
	end := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	tenant := createTenant(t, repo, tenants.Tenant{
		ID:               "t1",
		PlanTier:         "premium",
		PlanStatus:       tenants.StatusActive,
		PaymentCompleted: true,
		CurrentPeriodEnd: &end,
	})

	res, err := v.Status(context.Background(), tenant.ID)
	require.NoError(t, err)
	require.True(t, res.IsActive)
	require.Equal(t, "premium", string(res.Plan))
	require.Equal(t, tenants.StatusActive, res.Status)
	require.True(t, res.PaymentCompleted)
	require.True(t, end.Equal(*res.PeriodEnd))
}

func TestStatusDoesNotWrite(t *testing.T) {
	v, repo := newValidator(t)
	past := time.Now().UTC().Add(-48 * time.Hour)
	tenant := createTenant(t, repo, tenants.Tenant{
		PlanTier:         "essential",
		PlanStatus:       tenants.StatusActive,
		PaymentCompleted: true,
		CurrentPeriodEnd: &past,
	})

	res, err := v.Status(context.Background(), tenant.ID)
	require.NoError(t, err)
	require.False(t, res.IsActive)
	require.Equal(t, tenants.StatusActive, res.Status)

	stored, err := repo.Get(context.Background(), tenant.ID)
	require.NoError(t, err)
	require.Equal(t, tenants.StatusActive, stored.PlanStatus)
	require.True(t, stored.PaymentCompleted)
}

func TestReconcileExpiredTenantRegardlessOfStatus(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour)
	for _, status := range []tenants.PlanStatus{tenants.StatusActive, tenants.StatusPending, tenants.StatusCanceled} {
		t.Run(string(status), func(t *testing.T) {
			v, repo := newValidator(t)
			tenant := createTenant(t, repo, tenants.Tenant{
				PlanTier:         "professional",
				PlanStatus:       status,
				PaymentCompleted: true,
				CurrentPeriodEnd: &past,
			})

			res, err := v.Reconcile(context.Background(), tenant.ID)
			require.NoError(t, err)
			require.False(t, res.IsActive)
			require.False(t, res.PaymentCompleted)
			require.Equal(t, tenants.RepairedStatus(status), res.Status)

			stored, err := repo.Get(context.Background(), tenant.ID)
			require.NoError(t, err)
			require.Equal(t, tenants.RepairedStatus(status), stored.PlanStatus)
			require.False(t, stored.PaymentCompleted)
		})
	}
}

func TestReconcileLeavesActiveTenantAlone(t *testing.T) {
	v, repo := newValidator(t)
	future := time.Now().UTC().Add(30 * 24 * time.Hour)
	tenant := createTenant(t, repo, tenants.Tenant{
		PlanTier:         "essential",
		PlanStatus:       tenants.StatusActive,
		PaymentCompleted: true,
		CurrentPeriodEnd: &future,
	})

	res, err := v.Reconcile(context.Background(), tenant.ID)
	require.NoError(t, err)
	require.True(t, res.IsActive)
	require.False(t, res.Repaired)
}

func TestReconcileUnpaidPendingIsNoop(t *testing.T) {
	v, repo := newValidator(t)
	tenant := createTenant(t, repo, tenants.Tenant{PlanTier: "essential", PlanStatus: tenants.StatusPending})

	res, err := v.Reconcile(context.Background(), tenant.ID)
	require.NoError(t, err)
	require.False(t, res.IsActive)
	require.False(t, res.Repaired)
}

func TestUnknownTenant(t *testing.T) {
	v, _ := newValidator(t)

	_, err := v.Status(context.Background(), "nope")
	require.ErrorIs(t, err, ErrTenantNotFound)

	_, err = v.Reconcile(context.Background(), "nope")
	require.ErrorIs(t, err, ErrTenantNotFound)
}

func TestAccessPolicy(t *testing.T) {
	v, repo := newValidator(t)
	future := time.Now().UTC().Add(48 * time.Hour)
	tenant := createTenant(t, repo, tenants.Tenant{
		PlanTier:             "professional",
		PlanStatus:           tenants.StatusActive,
		PaymentCompleted:     true,
		CurrentPeriodEnd:     &future,
		StripeSubscriptionID: testutil.StrPtr("sub_1"),
	})

	policy, err := v.Access(context.Background(), tenant.ID, plans.NewCatalog(nil))
	require.NoError(t, err)
	require.Equal(t, access.AccessFull, policy.State)
	require.True(t, policy.Allows(plans.FeatureWhatsAppReminders))

	_, err = v.Access(context.Background(), "nope", plans.NewCatalog(nil))
	require.ErrorIs(t, err, ErrTenantNotFound)
}
