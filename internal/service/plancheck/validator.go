package plancheck

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonbook/internal/domain/access"
	"salonbook/internal/domain/plans"
	"salonbook/internal/domain/tenants"
	"salonbook/internal/metrics"
	"salonbook/internal/repository"

	"go.uber.org/zap"
)

var ErrTenantNotFound = errors.New("tenant not found")

// TenantStore is the slice of the tenant repository the validator needs.
type TenantStore interface {
	Get(ctx context.Context, id string) (tenants.Tenant, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
}

// Result is the computed plan state of a tenant. IsActive is always freshly
// computed; Status and PaymentCompleted are the stored values.
type Result struct {
	TenantID         string             `json:"-"`
	IsActive         bool               `json:"isActive"`
	Plan             plans.Tier         `json:"plan"`
	Status           tenants.PlanStatus `json:"status"`
	PaymentCompleted bool               `json:"paymentCompleted"`
	PeriodEnd        *time.Time         `json:"periodEnd"`
	Repaired         bool               `json:"-"`
}

type Validator struct {
	tenants TenantStore
	log     *zap.Logger
	now     func() time.Time
}

func NewValidator(store TenantStore, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{
		tenants: store,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Status reads the tenant and evaluates it. It never writes.
func (v *Validator) Status(ctx context.Context, tenantID string) (Result, error) {
	tenant, err := v.load(ctx, tenantID)
	if err != nil {
		return Result{}, err
	}
	return evaluate(tenant, v.now()), nil
}

// Reconcile evaluates the tenant and, when it is no longer entitled but the
// stored row still says otherwise, writes the repaired status back.
func (v *Validator) Reconcile(ctx context.Context, tenantID string) (Result, error) {
	tenant, err := v.load(ctx, tenantID)
	if err != nil {
		return Result{}, err
	}

	res := evaluate(tenant, v.now())
	if res.IsActive {
		metrics.PlanReconciliationsTotal.WithLabelValues("unchanged").Inc()
		return res, nil
	}

	repaired := tenants.RepairedStatus(tenant.PlanStatus)
	if repaired == tenant.PlanStatus && !tenant.PaymentCompleted {
		metrics.PlanReconciliationsTotal.WithLabelValues("unchanged").Inc()
		return res, nil
	}

	if err := v.tenants.Update(ctx, tenant.ID, map[string]interface{}{
		"plan_status":       repaired,
		"payment_completed": false,
	}); err != nil {
		return Result{}, fmt.Errorf("repair tenant plan status: %w", err)
	}

	v.log.Info("tenant plan downgraded",
		zap.String("tenant_id", tenant.ID),
		zap.String("from_status", string(tenant.PlanStatus)),
		zap.String("to_status", string(repaired)),
	)
	metrics.PlanReconciliationsTotal.WithLabelValues("repaired").Inc()

	res.Status = repaired
	res.PaymentCompleted = false
	res.Repaired = true
	return res, nil
}

// Access resolves the tenant's feature policy. Like Status it never writes.
func (v *Validator) Access(ctx context.Context, tenantID string, catalog plans.Catalog) (access.Policy, error) {
	tenant, err := v.load(ctx, tenantID)
	if err != nil {
		return access.Policy{}, err
	}
	return access.ComputePolicy(v.now(), tenant, catalog), nil
}

func (v *Validator) load(ctx context.Context, tenantID string) (tenants.Tenant, error) {
	tenant, err := v.tenants.Get(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return tenants.Tenant{}, ErrTenantNotFound
	}
	if err != nil {
		return tenants.Tenant{}, fmt.Errorf("load tenant: %w", err)
	}
	return tenant, nil
}

func evaluate(t tenants.Tenant, now time.Time) Result {
	return Result{
		TenantID:         t.ID,
		IsActive:         tenants.IsActive(t, now),
		Plan:             t.PlanTier,
		Status:           t.PlanStatus,
		PaymentCompleted: t.PaymentCompleted,
		PeriodEnd:        t.CurrentPeriodEnd,
	}
}
