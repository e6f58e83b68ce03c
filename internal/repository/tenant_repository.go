package repository

import (
	"context"

	"salonbook/internal/domain/tenants"

	"gorm.io/gorm"
)

type TenantRepository struct {
	database *gorm.DB
}

func NewTenantRepository(database *gorm.DB) *TenantRepository {
	return &TenantRepository{database: database}
}

func (repo *TenantRepository) Create(ctx context.Context, tenant *tenants.Tenant) error {
	return repo.database.WithContext(ctx).Create(tenant).Error
}

func (repo *TenantRepository) Get(ctx context.Context, id string) (tenants.Tenant, error) {
	var tenant tenants.Tenant
	if err := repo.database.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return tenants.Tenant{}, notFound(err)
	}
	return tenant, nil
}

func (repo *TenantRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (tenants.Tenant, error) {
	var tenant tenants.Tenant
	if err := repo.database.WithContext(ctx).
		Where("stripe_subscription_id = ?", subscriptionID).
		First(&tenant).Error; err != nil {
		return tenants.Tenant{}, notFound(err)
	}
	return tenant, nil
}

func (repo *TenantRepository) FindByCustomerID(ctx context.Context, customerID string) (tenants.Tenant, error) {
	var tenant tenants.Tenant
	if err := repo.database.WithContext(ctx).
		Where("stripe_customer_id = ?", customerID).
		First(&tenant).Error; err != nil {
		return tenants.Tenant{}, notFound(err)
	}
	return tenant, nil
}

// Update applies column updates to one tenant and fails with ErrNotFound
// when the tenant does not exist.
func (repo *TenantRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	result := repo.database.WithContext(ctx).
		Model(&tenants.Tenant{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
