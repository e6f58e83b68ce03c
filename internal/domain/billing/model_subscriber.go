package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscriber is a denormalized per-tenant billing summary. It may lag the
// tenant row; the tenant is authoritative.
type Subscriber struct {
	ID               string `gorm:"primaryKey;type:varchar(36)"`
	TenantID         string `gorm:"column:tenant_id;type:varchar(36);not null;uniqueIndex:idx_subscribers_tenant_id"`
	Email            string
	Subscribed       bool   `gorm:"not null;default:false"`
	SubscriptionTier string `gorm:"column:subscription_tier;type:varchar(20)"`
	SubscriptionEnd  *time.Time
	StripeCustomerID *string `gorm:"column:stripe_customer_id"`
	UpdatedAt        time.Time
}

func (s *Subscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
