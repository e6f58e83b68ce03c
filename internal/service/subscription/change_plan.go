package subscription

import (
	"context"
	"fmt"
	"time"

	"salonbook/internal/domain/plans"

	"go.uber.org/zap"
)

type ChangeResult struct {
	Unchanged   bool
	IsUpgrade   bool
	Tier        plans.Tier
	EffectiveAt time.Time
	ScheduleID  string
}

// ChangePlan moves the tenant to tier. Upgrades apply immediately with
// prorations; downgrades are scheduled for the end of the current period and
// recorded as pending on the tenant.
func (c *Coordinator) ChangePlan(ctx context.Context, tenantID string, tier plans.Tier) (ChangeResult, error) {
	priceID, err := c.priceFor(tier)
	if err != nil {
		return ChangeResult{}, err
	}

	tenant, err := c.loadTenant(ctx, tenantID)
	if err != nil {
		return ChangeResult{}, err
	}
	if !tenant.HasSubscription() {
		return ChangeResult{}, ErrNoSubscription
	}

	sub, err := c.processor.GetSubscription(ctx, *tenant.StripeSubscriptionID)
	if err != nil {
		return ChangeResult{}, fmt.Errorf("change plan: %w", err)
	}
	if sub.PriceID == priceID {
		return ChangeResult{Unchanged: true, Tier: tier}, nil
	}

	if tier.IsUpgradeFrom(tenant.PlanTier) {
		// a pending downgrade schedule would otherwise apply its last phase
		// at period end and undo the upgrade
		if scheduleID := pendingSchedule(tenant.StripeScheduleID, sub.ScheduleID); scheduleID != "" {
			if err := c.processor.ReleaseSchedule(ctx, scheduleID); err != nil {
				return ChangeResult{}, fmt.Errorf("change plan: %w", err)
			}
			sub.ScheduleID = ""
		}
		updated, err := c.processor.UpgradeSubscription(ctx, sub, priceID)
		if err != nil {
			return ChangeResult{}, fmt.Errorf("change plan: %w", err)
		}
		if err := c.updateTenant(ctx, tenant.ID, map[string]interface{}{
			"plan_tier":               tier,
			"current_period_end":      updated.CurrentPeriodEnd,
			"pending_plan_tier":       nil,
			"pending_plan_start_date": nil,
			"stripe_schedule_id":      nil,
		}); err != nil {
			return ChangeResult{}, err
		}
		c.log.Info("plan upgraded",
			zap.String("tenant_id", tenant.ID),
			zap.String("from", tenant.PlanTier.String()),
			zap.String("to", tier.String()),
		)
		return ChangeResult{IsUpgrade: true, Tier: tier, EffectiveAt: c.now()}, nil
	}

	scheduleID, err := c.processor.ScheduleDowngrade(ctx, sub, priceID)
	if err != nil {
		return ChangeResult{}, fmt.Errorf("change plan: %w", err)
	}
	effectiveAt := sub.CurrentPeriodEnd
	if err := c.updateTenant(ctx, tenant.ID, map[string]interface{}{
		"pending_plan_tier":       tier,
		"pending_plan_start_date": effectiveAt,
		"stripe_schedule_id":      scheduleID,
		"current_period_end":      effectiveAt,
	}); err != nil {
		return ChangeResult{}, err
	}
	c.log.Info("plan downgrade scheduled",
		zap.String("tenant_id", tenant.ID),
		zap.String("to", tier.String()),
		zap.Time("effective_at", effectiveAt),
	)
	return ChangeResult{Tier: tier, EffectiveAt: effectiveAt, ScheduleID: scheduleID}, nil
}

func pendingSchedule(stored *string, remote string) string {
	if stored != nil && *stored != "" {
		return *stored
	}
	return remote
}

// CancelDowngrade releases a pending downgrade schedule so the subscription
// renews on the current plan. It reports false when nothing was pending.
func (c *Coordinator) CancelDowngrade(ctx context.Context, tenantID string) (bool, error) {
	tenant, err := c.loadTenant(ctx, tenantID)
	if err != nil {
		return false, err
	}
	if tenant.StripeScheduleID == nil || *tenant.StripeScheduleID == "" || tenant.PendingPlanTier == nil {
		return false, nil
	}

	if err := c.processor.ReleaseSchedule(ctx, *tenant.StripeScheduleID); err != nil {
		return false, fmt.Errorf("cancel downgrade: %w", err)
	}
	if err := c.updateTenant(ctx, tenant.ID, map[string]interface{}{
		"pending_plan_tier":       nil,
		"pending_plan_start_date": nil,
		"stripe_schedule_id":      nil,
	}); err != nil {
		return false, err
	}
	return true, nil
}
