package repository

import (
	"context"
	"time"

	"salonbook/internal/domain/billing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository struct {
	database *gorm.DB
}

func NewSubscriptionRepository(database *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{database: database}
}

// Upsert inserts the mirror row or refreshes it by Stripe subscription ID.
func (repo *SubscriptionRepository) Upsert(ctx context.Context, sub *billing.Subscription) error {
	return repo.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stripe_subscription_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"tenant_id",
				"stripe_customer_id",
				"status",
				"price_id",
				"current_period_end",
				"cancel_at_period_end",
				"updated_at",
			}),
		}).
		Create(sub).Error
}

func (repo *SubscriptionRepository) GetByStripeID(ctx context.Context, stripeSubscriptionID string) (billing.Subscription, error) {
	var sub billing.Subscription
	if err := repo.database.WithContext(ctx).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		First(&sub).Error; err != nil {
		return billing.Subscription{}, notFound(err)
	}
	return sub, nil
}

func (repo *SubscriptionRepository) UpdateStatus(ctx context.Context, stripeSubscriptionID, status string) error {
	result := repo.database.WithContext(ctx).
		Model(&billing.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
