package tenants

import (
	"time"

	"salonbook/internal/domain/plans"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PlanStatus string

const (
	StatusPending  PlanStatus = "pending"
	StatusActive   PlanStatus = "active"
	StatusCanceled PlanStatus = "canceled"
)

type Tenant struct {
	ID          string `gorm:"primaryKey;type:varchar(36)"`
	Name        string
	OwnerUserID string `gorm:"column:owner_user_id;index"`
	OwnerEmail  string `gorm:"column:owner_email"`

	PlanTier         plans.Tier `gorm:"column:plan_tier;type:varchar(20);not null;default:'essential'"`
	PlanStatus       PlanStatus `gorm:"column:plan_status;type:varchar(20);not null;default:'pending'"`
	PaymentCompleted bool       `gorm:"column:payment_completed;not null;default:false"`
	CurrentPeriodEnd *time.Time `gorm:"column:current_period_end"`

	StripeCustomerID     *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_tenants_stripe_customer_id"`
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id;uniqueIndex:idx_tenants_stripe_subscription_id"`

	// pending downgrade, applied by Stripe at the end of the current period
	PendingPlanTier      *plans.Tier `gorm:"column:pending_plan_tier;type:varchar(20)"`
	PendingPlanStartDate *time.Time  `gorm:"column:pending_plan_start_date"`
	StripeScheduleID     *string     `gorm:"column:stripe_schedule_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (t Tenant) HasCustomer() bool {
	return t.StripeCustomerID != nil && *t.StripeCustomerID != ""
}

func (t Tenant) HasSubscription() bool {
	return t.StripeSubscriptionID != nil && *t.StripeSubscriptionID != ""
}
