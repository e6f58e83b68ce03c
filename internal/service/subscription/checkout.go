package subscription

import (
	"context"
	"fmt"
	"strings"

	"salonbook/internal/domain/billing"
	"salonbook/internal/domain/plans"

	"go.uber.org/zap"
)

// StartCheckout opens a subscription checkout for tier, creating the tenant's
// processor customer first when it has none. The tenant stays pending until
// the checkout.session.completed webhook arrives.
func (c *Coordinator) StartCheckout(ctx context.Context, tenantID string, tier plans.Tier) (string, error) {
	priceID, err := c.priceFor(tier)
	if err != nil {
		return "", err
	}

	tenant, err := c.loadTenant(ctx, tenantID)
	if err != nil {
		return "", err
	}

	customerID := ""
	if tenant.HasCustomer() {
		customerID = *tenant.StripeCustomerID
	} else {
		customerID, err = c.processor.CreateCustomer(ctx, tenant.OwnerEmail, map[string]string{
			"tenant_id": tenant.ID,
		})
		if err != nil {
			return "", fmt.Errorf("ensure customer: %w", err)
		}
		if err := c.updateTenant(ctx, tenant.ID, map[string]interface{}{
			"stripe_customer_id": customerID,
		}); err != nil {
			return "", err
		}
		c.log.Info("billing customer created", zap.String("tenant_id", tenant.ID), zap.String("customer_id", customerID))
	}

	base := strings.TrimRight(c.appURL, "/")
	session, err := c.processor.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		CustomerID:        customerID,
		PriceID:           priceID,
		SuccessURL:        base + "/settings/billing?checkout=success",
		CancelURL:         base + "/settings/billing?checkout=canceled",
		ClientReferenceID: tenant.ID,
		Metadata: map[string]string{
			"tenant_id": tenant.ID,
			"plan":      tier.String(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("start checkout: %w", err)
	}
	return session.URL, nil
}

// OpenBillingPortal returns a processor-hosted billing portal URL.
func (c *Coordinator) OpenBillingPortal(ctx context.Context, tenantID string) (string, error) {
	tenant, err := c.loadTenant(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if !tenant.HasCustomer() {
		return "", ErrNoCustomer
	}

	url, err := c.processor.CreateBillingPortalSession(ctx, *tenant.StripeCustomerID, strings.TrimRight(c.appURL, "/")+"/settings/billing")
	if err != nil {
		return "", fmt.Errorf("open billing portal: %w", err)
	}
	return url, nil
}
