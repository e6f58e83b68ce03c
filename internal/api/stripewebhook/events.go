package stripewebhooks

import (
	"context"
	"errors"

	stripeinfra "salonbook/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
)

func handleCheckoutSessionCompleted(ctx context.Context, sync Syncer, session *stripe.CheckoutSession) error {
	if session.ID == "" {
		return errors.New("checkout session missing id")
	}
	// subscription checkouts only; one-off payments carry no plan
	if session.Mode != "" && session.Mode != stripe.CheckoutSessionModeSubscription {
		return nil
	}
	return sync.ApplyCheckoutCompleted(ctx, session.ID)
}

func handleSubscriptionUpdated(ctx context.Context, sync Syncer, sub *stripe.Subscription) error {
	if sub.ID == "" {
		return errors.New("subscription missing id")
	}
	return sync.ApplySubscriptionUpdated(ctx, stripeinfra.ToRemoteSubscription(sub))
}

func handleSubscriptionDeleted(ctx context.Context, sync Syncer, sub *stripe.Subscription) error {
	if sub.ID == "" {
		return nil
	}
	return sync.ApplySubscriptionDeleted(ctx, stripeinfra.ToRemoteSubscription(sub))
}
