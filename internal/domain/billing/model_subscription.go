package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription mirrors the processor subscription backing a tenant.
type Subscription struct {
	ID                   string `gorm:"primaryKey;type:varchar(36)"`
	TenantID             string `gorm:"column:tenant_id;type:varchar(36);not null;index"`
	StripeSubscriptionID string `gorm:"column:stripe_subscription_id;not null;uniqueIndex:idx_subscriptions_stripe_subscription_id"`
	StripeCustomerID     string `gorm:"column:stripe_customer_id"`
	Status               string `gorm:"column:status;type:varchar(32);not null"`
	PriceID              string `gorm:"column:price_id"`
	CurrentPeriodEnd     *time.Time
	CancelAtPeriodEnd    bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
