package subscription

import (
	"context"
	"fmt"

	"salonbook/internal/domain/billing"
	"salonbook/internal/domain/tenants"
	"salonbook/internal/metrics"

	"go.uber.org/zap"
)

// Cancel cancels the subscription at the processor and then records the
// cancellation locally. Only the tenant update can fail the call; the
// subscriber and subscription mirrors are best effort.
func (c *Coordinator) Cancel(ctx context.Context, subscriptionID, tenantID string) (billing.RemoteSubscription, error) {
	tenant, err := c.loadTenant(ctx, tenantID)
	if err != nil {
		return billing.RemoteSubscription{}, err
	}
	if tenant.HasSubscription() && *tenant.StripeSubscriptionID != subscriptionID {
		return billing.RemoteSubscription{}, ErrSubscriptionMismatch
	}

	remote, err := c.processor.CancelSubscription(ctx, subscriptionID)
	if err != nil {
		metrics.CancellationsTotal.WithLabelValues("processor_error").Inc()
		return billing.RemoteSubscription{}, fmt.Errorf("cancel subscription %s: %w", subscriptionID, err)
	}

	if err := c.updateTenant(ctx, tenantID, map[string]interface{}{
		"plan_status":       tenants.StatusCanceled,
		"payment_completed": false,
	}); err != nil {
		metrics.CancellationsTotal.WithLabelValues("store_error").Inc()
		c.log.Error("subscription canceled at processor but tenant update failed",
			zap.String("tenant_id", tenantID),
			zap.String("subscription_id", subscriptionID),
			zap.Error(err),
		)
		return billing.RemoteSubscription{}, err
	}

	if err := c.subscribers.SetSubscribed(ctx, tenantID, false); err != nil {
		metrics.MirrorUpdateFailuresTotal.WithLabelValues("subscribers").Inc()
		c.log.Warn("failed to update subscriber after cancel",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
	}

	status := remote.Status
	if status == "" {
		status = "canceled"
	}
	if err := c.subs.UpdateStatus(ctx, subscriptionID, status); err != nil {
		metrics.MirrorUpdateFailuresTotal.WithLabelValues("subscriptions").Inc()
		c.log.Warn("failed to update subscription after cancel",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err),
		)
	}

	metrics.CancellationsTotal.WithLabelValues("ok").Inc()
	c.log.Info("subscription canceled",
		zap.String("tenant_id", tenantID),
		zap.String("subscription_id", subscriptionID),
	)
	return remote, nil
}
