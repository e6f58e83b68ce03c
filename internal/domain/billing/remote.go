package billing

import "time"

// RemoteSubscription is the processor's view of a subscription, reduced to
// what the lifecycle needs.
type RemoteSubscription struct {
	ID                 string            `json:"id"`
	CustomerID         string            `json:"customerId"`
	Status             string            `json:"status"`
	ItemID             string            `json:"itemId,omitempty"`
	PriceID            string            `json:"priceId"`
	ScheduleID         string            `json:"scheduleId,omitempty"`
	CancelAtPeriodEnd  bool              `json:"cancelAtPeriodEnd"`
	CurrentPeriodStart time.Time         `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time         `json:"currentPeriodEnd"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// CheckoutResult is a processor-side checkout session.
type CheckoutResult struct {
	SessionID         string
	URL               string
	SubscriptionID    string
	CustomerID        string
	ClientReferenceID string
}

// CheckoutRequest describes a subscription-mode checkout for one price.
type CheckoutRequest struct {
	CustomerID        string
	PriceID           string
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
	Metadata          map[string]string
}
