package stripe

import (
	"context"
	"fmt"
	"time"

	"salonbook/internal/domain/billing"

	stripelib "github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// Client talks to Stripe with an API key bound at construction instead of
// the package-level stripe.Key.
type Client struct {
	api *client.API
}

func NewClient(secretKey string) *Client {
	return &Client{api: client.New(secretKey, nil)}
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) (billing.RemoteSubscription, error) {
	params := &stripelib.SubscriptionCancelParams{}
	params.Context = ctx
	sub, err := c.api.Subscriptions.Cancel(subscriptionID, params)
	if err != nil {
		return billing.RemoteSubscription{}, fmt.Errorf("cancel stripe subscription: %w", err)
	}
	return ToRemoteSubscription(sub), nil
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (billing.RemoteSubscription, error) {
	params := &stripelib.SubscriptionParams{}
	params.Context = ctx
	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return billing.RemoteSubscription{}, fmt.Errorf("fetch stripe subscription: %w", err)
	}
	return ToRemoteSubscription(sub), nil
}

func (c *Client) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (string, error) {
	params := &stripelib.CustomerParams{
		Email:    stripelib.String(email),
		Metadata: metadata,
	}
	params.Context = ctx
	cus, err := c.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	return cus.ID, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (billing.CheckoutResult, error) {
	params := &stripelib.CheckoutSessionParams{
		SuccessURL: stripelib.String(req.SuccessURL),
		CancelURL:  stripelib.String(req.CancelURL),
		Mode:       stripelib.String(string(stripelib.CheckoutSessionModeSubscription)),
		Customer:   stripelib.String(req.CustomerID),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{Price: stripelib.String(req.PriceID), Quantity: stripelib.Int64(1)},
		},
		ClientReferenceID: stripelib.String(req.ClientReferenceID),
		SubscriptionData: &stripelib.CheckoutSessionSubscriptionDataParams{
			Metadata: req.Metadata,
		},
	}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return billing.CheckoutResult{}, fmt.Errorf("create checkout session: %w", err)
	}
	return toCheckoutResult(s), nil
}

func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (billing.CheckoutResult, error) {
	params := &stripelib.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("subscription")
	params.AddExpand("customer")

	s, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return billing.CheckoutResult{}, fmt.Errorf("fetch checkout session: %w", err)
	}
	return toCheckoutResult(s), nil
}

func (c *Client) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripelib.BillingPortalSessionParams{
		Customer:  stripelib.String(customerID),
		ReturnURL: stripelib.String(returnURL),
	}
	params.Context = ctx
	portal, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return portal.URL, nil
}

// UpgradeSubscription swaps the subscription item to priceID now, letting
// Stripe prorate the difference.
func (c *Client) UpgradeSubscription(ctx context.Context, sub billing.RemoteSubscription, priceID string) (billing.RemoteSubscription, error) {
	params := &stripelib.SubscriptionParams{
		Items: []*stripelib.SubscriptionItemsParams{
			{
				ID:    stripelib.String(sub.ItemID),
				Price: stripelib.String(priceID),
			},
		},
		ProrationBehavior: stripelib.String("create_prorations"),
	}
	params.Context = ctx
	updated, err := c.api.Subscriptions.Update(sub.ID, params)
	if err != nil {
		return billing.RemoteSubscription{}, fmt.Errorf("upgrade stripe subscription: %w", err)
	}
	return ToRemoteSubscription(updated), nil
}

// ScheduleDowngrade keeps the current price until the period ends and moves
// to priceID afterwards, creating the schedule when the subscription has none.
func (c *Client) ScheduleDowngrade(ctx context.Context, sub billing.RemoteSubscription, priceID string) (string, error) {
	scheduleID := sub.ScheduleID
	if scheduleID == "" {
		params := &stripelib.SubscriptionScheduleParams{
			FromSubscription: stripelib.String(sub.ID),
		}
		params.Context = ctx
		schedule, err := c.api.SubscriptionSchedules.New(params)
		if err != nil {
			return "", fmt.Errorf("create subscription schedule: %w", err)
		}
		scheduleID = schedule.ID
	}

	periodStart := sub.CurrentPeriodStart.Unix()
	periodEnd := sub.CurrentPeriodEnd.Unix()
	params := &stripelib.SubscriptionScheduleParams{
		EndBehavior: stripelib.String("release"),
		Phases: []*stripelib.SubscriptionSchedulePhaseParams{
			{
				StartDate: stripelib.Int64(periodStart),
				EndDate:   stripelib.Int64(periodEnd),
				Items: []*stripelib.SubscriptionSchedulePhaseItemParams{
					{Price: stripelib.String(sub.PriceID), Quantity: stripelib.Int64(1)},
				},
			},
			{
				StartDate: stripelib.Int64(periodEnd),
				Items: []*stripelib.SubscriptionSchedulePhaseItemParams{
					{Price: stripelib.String(priceID), Quantity: stripelib.Int64(1)},
				},
			},
		},
	}
	params.Context = ctx
	if _, err := c.api.SubscriptionSchedules.Update(scheduleID, params); err != nil {
		return "", fmt.Errorf("update schedule phases: %w", err)
	}
	return scheduleID, nil
}

func (c *Client) ReleaseSchedule(ctx context.Context, scheduleID string) error {
	params := &stripelib.SubscriptionScheduleReleaseParams{}
	params.Context = ctx
	if _, err := c.api.SubscriptionSchedules.Release(scheduleID, params); err != nil {
		return fmt.Errorf("release subscription schedule: %w", err)
	}
	return nil
}

// ToRemoteSubscription reduces a Stripe subscription (API response or webhook
// payload) to the fields the lifecycle uses.
func ToRemoteSubscription(sub *stripelib.Subscription) billing.RemoteSubscription {
	if sub == nil {
		return billing.RemoteSubscription{}
	}
	out := billing.RemoteSubscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Metadata:          sub.Metadata,
	}
	if sub.CurrentPeriodStart > 0 {
		out.CurrentPeriodStart = time.Unix(sub.CurrentPeriodStart, 0).UTC()
	}
	if sub.CurrentPeriodEnd > 0 {
		out.CurrentPeriodEnd = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	if sub.Schedule != nil {
		out.ScheduleID = sub.Schedule.ID
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0] != nil {
		item := sub.Items.Data[0]
		out.ItemID = item.ID
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
	}
	return out
}

func toCheckoutResult(s *stripelib.CheckoutSession) billing.CheckoutResult {
	out := billing.CheckoutResult{
		SessionID:         s.ID,
		URL:               s.URL,
		ClientReferenceID: s.ClientReferenceID,
	}
	if s.Subscription != nil {
		out.SubscriptionID = s.Subscription.ID
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	return out
}
