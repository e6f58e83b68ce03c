package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salonbook/internal/domain/billing"
	"salonbook/internal/domain/plans"
	"salonbook/internal/domain/tenants"
	"salonbook/internal/repository"

	"go.uber.org/zap"
)

var (
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrSubscriptionMismatch = errors.New("subscription does not belong to tenant")
	ErrNoCustomer           = errors.New("tenant has no billing customer yet")
	ErrNoSubscription       = errors.New("tenant has no subscription")
	ErrPlanUnavailable      = errors.New("plan has no configured price")
	ErrUnknownPrice         = errors.New("subscription price is not in the plan catalog")
)

// Processor is the payment processor surface the lifecycle drives.
type Processor interface {
	CancelSubscription(ctx context.Context, subscriptionID string) (billing.RemoteSubscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (billing.RemoteSubscription, error)
	CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error)
	CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (billing.CheckoutResult, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (billing.CheckoutResult, error)
	CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error)
	UpgradeSubscription(ctx context.Context, sub billing.RemoteSubscription, priceID string) (billing.RemoteSubscription, error)
	ScheduleDowngrade(ctx context.Context, sub billing.RemoteSubscription, priceID string) (string, error)
	ReleaseSchedule(ctx context.Context, scheduleID string) error
}

type TenantStore interface {
	Get(ctx context.Context, id string) (tenants.Tenant, error)
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (tenants.Tenant, error)
	FindByCustomerID(ctx context.Context, customerID string) (tenants.Tenant, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
}

type SubscriptionStore interface {
	Upsert(ctx context.Context, sub *billing.Subscription) error
	UpdateStatus(ctx context.Context, stripeSubscriptionID, status string) error
}

type SubscriberStore interface {
	Upsert(ctx context.Context, sub *billing.Subscriber) error
	SetSubscribed(ctx context.Context, tenantID string, subscribed bool) error
}

// Coordinator drives the tenant plan lifecycle against the processor and
// mirrors the result into the tenant, subscription and subscriber tables.
// The tenant row is authoritative: failing to write it fails the operation,
// while mirror failures are only logged.
type Coordinator struct {
	processor   Processor
	tenants     TenantStore
	subs        SubscriptionStore
	subscribers SubscriberStore
	catalog     plans.Catalog
	appURL      string
	log         *zap.Logger
	now         func() time.Time
}

type Options struct {
	Processor     Processor
	Tenants       TenantStore
	Subscriptions SubscriptionStore
	Subscribers   SubscriberStore
	Catalog       plans.Catalog
	AppURL        string
	Logger        *zap.Logger
}

func NewCoordinator(opts Options) *Coordinator {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		processor:   opts.Processor,
		tenants:     opts.Tenants,
		subs:        opts.Subscriptions,
		subscribers: opts.Subscribers,
		catalog:     opts.Catalog,
		appURL:      opts.AppURL,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (c *Coordinator) loadTenant(ctx context.Context, tenantID string) (tenants.Tenant, error) {
	tenant, err := c.tenants.Get(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return tenants.Tenant{}, ErrTenantNotFound
	}
	if err != nil {
		return tenants.Tenant{}, fmt.Errorf("load tenant: %w", err)
	}
	return tenant, nil
}

func (c *Coordinator) updateTenant(ctx context.Context, tenantID string, updates map[string]interface{}) error {
	err := c.tenants.Update(ctx, tenantID, updates)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTenantNotFound
	}
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	return nil
}

func (c *Coordinator) priceFor(tier plans.Tier) (string, error) {
	plan, ok := c.catalog.Plan(tier)
	if !ok || plan.StripePriceID == "" {
		return "", ErrPlanUnavailable
	}
	return plan.StripePriceID, nil
}
