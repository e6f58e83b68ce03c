package repository

import (
	"context"
	"time"

	"salonbook/internal/domain/billing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriberRepository struct {
	database *gorm.DB
}

func NewSubscriberRepository(database *gorm.DB) *SubscriberRepository {
	return &SubscriberRepository{database: database}
}

func (repo *SubscriberRepository) Upsert(ctx context.Context, sub *billing.Subscriber) error {
	return repo.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"email",
				"subscribed",
				"subscription_tier",
				"subscription_end",
				"stripe_customer_id",
				"updated_at",
			}),
		}).
		Create(sub).Error
}

func (repo *SubscriberRepository) GetByTenant(ctx context.Context, tenantID string) (billing.Subscriber, error) {
	var sub billing.Subscriber
	if err := repo.database.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&sub).Error; err != nil {
		return billing.Subscriber{}, notFound(err)
	}
	return sub, nil
}

func (repo *SubscriberRepository) SetSubscribed(ctx context.Context, tenantID string, subscribed bool) error {
	result := repo.database.WithContext(ctx).
		Model(&billing.Subscriber{}).
		Where("tenant_id = ?", tenantID).
		Updates(map[string]interface{}{
			"subscribed": subscribed,
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
