package account

import (
	"time"

	"salonbook/internal/domain/plans"
)

type AccountResponse struct {
	Success bool       `json:"success"`
	Tenant  TenantDTO  `json:"tenant"`
	Billing BillingDTO `json:"billing"`
	Access  AccessDTO  `json:"access"`
}

/* ---------- TENANT ---------- */

type TenantDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	OwnerEmail string `json:"ownerEmail"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Plan          *PlanDTO          `json:"plan"`
	Status        string            `json:"status"`
	Paid          bool              `json:"paymentCompleted"`
	Subscription  *SubscriptionDTO  `json:"subscription"`
	PendingChange *PendingChangeDTO `json:"pendingChange"`
}

type PlanDTO struct {
	Tier       plans.Tier `json:"tier"`
	Name       string     `json:"name"`
	Interval   string     `json:"interval"`
	PriceCents int64      `json:"priceCents"`
	Currency   string     `json:"currency"`
}

type SubscriptionDTO struct {
	Status               string     `json:"status"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd"`
	CancelAtPeriodEnd    bool       `json:"cancelAtPeriodEnd"`
	StripeSubscriptionID *string    `json:"stripeSubscriptionId"`
	StripeScheduleID     *string    `json:"stripeScheduleId"`
}

type PendingChangeDTO struct {
	EffectiveAt *time.Time `json:"effectiveAt"`
	Plan        *PlanDTO   `json:"plan"`
}

/* ---------- ACCESS ---------- */

type AccessDTO struct {
	State        string             `json:"state"` // full|limited|locked
	Features     []plans.Feature    `json:"features"`
	Entitlements plans.Entitlements `json:"entitlements"`
	DaysLeft     *int               `json:"daysLeft"`
}
