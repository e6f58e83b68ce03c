package repository

import (
	"context"

	"salonbook/internal/domain/ipblock"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlockedIPRepository struct {
	database *gorm.DB
}

func NewBlockedIPRepository(database *gorm.DB) *BlockedIPRepository {
	return &BlockedIPRepository{database: database}
}

func (repo *BlockedIPRepository) Upsert(ctx context.Context, block *ipblock.BlockedIP) error {
	return repo.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ip"}},
			DoUpdates: clause.AssignmentColumns([]string{"reason", "expires_at"}),
		}).
		Create(block).Error
}

func (repo *BlockedIPRepository) Find(ctx context.Context, ip string) (ipblock.BlockedIP, bool, error) {
	var block ipblock.BlockedIP
	result := repo.database.WithContext(ctx).Where("ip = ?", ip).Limit(1).Find(&block)
	if result.Error != nil {
		return ipblock.BlockedIP{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return ipblock.BlockedIP{}, false, nil
	}
	return block, true, nil
}

func (repo *BlockedIPRepository) List(ctx context.Context) ([]ipblock.BlockedIP, error) {
	blocks := make([]ipblock.BlockedIP, 0)
	if err := repo.database.WithContext(ctx).Order("created_at DESC").Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (repo *BlockedIPRepository) Delete(ctx context.Context, ip string) (bool, error) {
	result := repo.database.WithContext(ctx).Where("ip = ?", ip).Delete(&ipblock.BlockedIP{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
