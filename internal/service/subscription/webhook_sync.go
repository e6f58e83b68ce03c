package subscription

import (
	"context"
	"errors"
	"fmt"

	"salonbook/internal/domain/billing"
	"salonbook/internal/domain/plans"
	"salonbook/internal/domain/tenants"
	"salonbook/internal/metrics"
	"salonbook/internal/repository"

	"go.uber.org/zap"
)

// ApplyCheckoutCompleted activates the tenant that paid through a checkout
// session. Sessions that cannot be tied to a tenant are logged and ignored.
func (c *Coordinator) ApplyCheckoutCompleted(ctx context.Context, sessionID string) error {
	session, err := c.processor.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load checkout session: %w", err)
	}
	if session.SubscriptionID == "" {
		c.log.Warn("checkout session without subscription", zap.String("session_id", sessionID))
		return nil
	}

	remote, err := c.processor.GetSubscription(ctx, session.SubscriptionID)
	if err != nil {
		return fmt.Errorf("load subscription: %w", err)
	}

	tenantID := remote.Metadata["tenant_id"]
	if tenantID == "" {
		tenantID = session.ClientReferenceID
	}
	if tenantID == "" {
		c.log.Warn("checkout session has no tenant reference", zap.String("session_id", sessionID))
		return nil
	}

	tenant, err := c.tenants.Get(ctx, tenantID)
	if errors.Is(err, repository.ErrNotFound) {
		c.log.Warn("checkout completed for unknown tenant", zap.String("tenant_id", tenantID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load tenant: %w", err)
	}

	tier, ok := c.catalog.TierForPrice(remote.PriceID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPrice, remote.PriceID)
	}

	// a tenant switching plans through checkout ends up with two live
	// subscriptions; the old one is canceled
	if tenant.HasSubscription() && *tenant.StripeSubscriptionID != remote.ID {
		old := *tenant.StripeSubscriptionID
		if _, err := c.processor.CancelSubscription(ctx, old); err != nil {
			c.log.Warn("failed to cancel previous subscription",
				zap.String("tenant_id", tenant.ID),
				zap.String("subscription_id", old),
				zap.Error(err),
			)
		}
	}

	customerID := session.CustomerID
	if customerID == "" {
		customerID = remote.CustomerID
	}
	status, paid := tenants.StatusFromStripe(remote.Status)

	if err := c.updateTenant(ctx, tenant.ID, map[string]interface{}{
		"plan_tier":               tier,
		"plan_status":             status,
		"payment_completed":       paid,
		"current_period_end":      remote.CurrentPeriodEnd,
		"stripe_customer_id":      customerID,
		"stripe_subscription_id":  remote.ID,
		"pending_plan_tier":       nil,
		"pending_plan_start_date": nil,
		"stripe_schedule_id":      nil,
	}); err != nil {
		return err
	}

	c.mirror(ctx, tenant, remote, tier, customerID)
	c.log.Info("checkout completed",
		zap.String("tenant_id", tenant.ID),
		zap.String("plan", tier.String()),
		zap.String("status", string(status)),
	)
	return nil
}

// ApplySubscriptionUpdated refreshes the tenant from a subscription change
// made at the processor (renewals, portal changes, scheduled downgrades).
func (c *Coordinator) ApplySubscriptionUpdated(ctx context.Context, remote billing.RemoteSubscription) error {
	tenant, ok, err := c.resolveTenant(ctx, remote)
	if err != nil || !ok {
		return err
	}

	tier, known := c.catalog.TierForPrice(remote.PriceID)
	if !known {
		tier = tenant.PlanTier
		c.log.Warn("subscription price not in catalog", zap.String("price_id", remote.PriceID))
	}

	if tenant.HasSubscription() && *tenant.StripeSubscriptionID != remote.ID {
		c.mirrorSubscription(ctx, tenant.ID, remote)
		return nil
	}

	status, paid := tenants.StatusFromStripe(remote.Status)
	updates := map[string]interface{}{
		"plan_tier":              tier,
		"plan_status":            status,
		"payment_completed":      paid,
		"current_period_end":     remote.CurrentPeriodEnd,
		"stripe_subscription_id": remote.ID,
	}
	if tenant.PendingPlanTier != nil && *tenant.PendingPlanTier == tier {
		updates["pending_plan_tier"] = nil
		updates["pending_plan_start_date"] = nil
		updates["stripe_schedule_id"] = nil
	}
	if err := c.updateTenant(ctx, tenant.ID, updates); err != nil {
		return err
	}

	c.mirror(ctx, tenant, remote, tier, remote.CustomerID)
	return nil
}

// ApplySubscriptionDeleted marks the tenant canceled once its subscription
// has ended at the processor.
func (c *Coordinator) ApplySubscriptionDeleted(ctx context.Context, remote billing.RemoteSubscription) error {
	tenant, ok, err := c.resolveTenant(ctx, remote)
	if err != nil || !ok {
		return err
	}

	c.mirrorSubscription(ctx, tenant.ID, remote)
	// an older subscription replaced through checkout; the tenant moved on
	if tenant.HasSubscription() && *tenant.StripeSubscriptionID != remote.ID {
		return nil
	}

	if err := c.updateTenant(ctx, tenant.ID, map[string]interface{}{
		"plan_status":             tenants.StatusCanceled,
		"payment_completed":       false,
		"current_period_end":      remote.CurrentPeriodEnd,
		"pending_plan_tier":       nil,
		"pending_plan_start_date": nil,
		"stripe_schedule_id":      nil,
	}); err != nil {
		return err
	}

	if err := c.subscribers.SetSubscribed(ctx, tenant.ID, false); err != nil && !errors.Is(err, repository.ErrNotFound) {
		metrics.MirrorUpdateFailuresTotal.WithLabelValues("subscribers").Inc()
		c.log.Warn("failed to update subscriber", zap.String("tenant_id", tenant.ID), zap.Error(err))
	}
	c.log.Info("subscription ended", zap.String("tenant_id", tenant.ID), zap.String("subscription_id", remote.ID))
	return nil
}

// resolveTenant finds the tenant a subscription belongs to: metadata first,
// then the stored subscription ID, then the customer ID.
func (c *Coordinator) resolveTenant(ctx context.Context, remote billing.RemoteSubscription) (tenants.Tenant, bool, error) {
	lookups := []func() (tenants.Tenant, error){}
	if id := remote.Metadata["tenant_id"]; id != "" {
		lookups = append(lookups, func() (tenants.Tenant, error) { return c.tenants.Get(ctx, id) })
	}
	if remote.ID != "" {
		lookups = append(lookups, func() (tenants.Tenant, error) { return c.tenants.FindBySubscriptionID(ctx, remote.ID) })
	}
	if remote.CustomerID != "" {
		lookups = append(lookups, func() (tenants.Tenant, error) { return c.tenants.FindByCustomerID(ctx, remote.CustomerID) })
	}

	for _, lookup := range lookups {
		tenant, err := lookup()
		if err == nil {
			return tenant, true, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return tenants.Tenant{}, false, fmt.Errorf("resolve tenant: %w", err)
		}
	}

	c.log.Warn("no tenant for subscription",
		zap.String("subscription_id", remote.ID),
		zap.String("customer_id", remote.CustomerID),
	)
	return tenants.Tenant{}, false, nil
}

func (c *Coordinator) mirror(ctx context.Context, tenant tenants.Tenant, remote billing.RemoteSubscription, tier plans.Tier, customerID string) {
	c.mirrorSubscription(ctx, tenant.ID, remote)

	status, _ := tenants.StatusFromStripe(remote.Status)
	end := remote.CurrentPeriodEnd
	sub := &billing.Subscriber{
		TenantID:         tenant.ID,
		Email:            tenant.OwnerEmail,
		Subscribed:       status == tenants.StatusActive,
		SubscriptionTier: tier.String(),
		SubscriptionEnd:  &end,
		UpdatedAt:        c.now(),
	}
	if customerID != "" {
		sub.StripeCustomerID = &customerID
	}
	if err := c.subscribers.Upsert(ctx, sub); err != nil {
		metrics.MirrorUpdateFailuresTotal.WithLabelValues("subscribers").Inc()
		c.log.Warn("failed to mirror subscriber", zap.String("tenant_id", tenant.ID), zap.Error(err))
	}
}

func (c *Coordinator) mirrorSubscription(ctx context.Context, tenantID string, remote billing.RemoteSubscription) {
	end := remote.CurrentPeriodEnd
	row := &billing.Subscription{
		TenantID:             tenantID,
		StripeSubscriptionID: remote.ID,
		StripeCustomerID:     remote.CustomerID,
		Status:               remote.Status,
		PriceID:              remote.PriceID,
		CurrentPeriodEnd:     &end,
		CancelAtPeriodEnd:    remote.CancelAtPeriodEnd,
		UpdatedAt:            c.now(),
	}
	if err := c.subs.Upsert(ctx, row); err != nil {
		metrics.MirrorUpdateFailuresTotal.WithLabelValues("subscriptions").Inc()
		c.log.Warn("failed to mirror subscription", zap.String("subscription_id", remote.ID), zap.Error(err))
	}
}
