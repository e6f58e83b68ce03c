package repository

import (
	"context"
	"time"

	"salonbook/internal/domain/twofactor"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TwoFactorRepository struct {
	database *gorm.DB
}

func NewTwoFactorRepository(database *gorm.DB) *TwoFactorRepository {
	return &TwoFactorRepository{database: database}
}

func (repo *TwoFactorRepository) Find(ctx context.Context, userID string, method twofactor.MethodType) (twofactor.Method, bool, error) {
	var row twofactor.Method
	result := repo.database.WithContext(ctx).
		Where("user_id = ? AND method_type = ?", userID, method).
		Limit(1).
		Find(&row)
	if result.Error != nil {
		return twofactor.Method{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return twofactor.Method{}, false, nil
	}
	return row, true, nil
}

func (repo *TwoFactorRepository) ListByUser(ctx context.Context, userID string) ([]twofactor.Method, error) {
	rows := make([]twofactor.Method, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("method_type ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save upserts the row keyed by (user_id, method_type). Concurrent writers
// race last-write-wins. The row's own ID is ignored so a previously loaded
// row can be saved back.
func (repo *TwoFactorRepository) Save(ctx context.Context, row *twofactor.Method) error {
	record := *row
	record.ID = 0
	record.UpdatedAt = time.Now().UTC()
	return repo.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "method_type"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"enabled",
				"verified",
				"code_hash",
				"code_expires_at",
				"attempts",
				"totp_secret",
				"updated_at",
			}),
		}).
		Create(&record).Error
}

// IncrementAttempts bumps the failed-attempt counter atomically.
func (repo *TwoFactorRepository) IncrementAttempts(ctx context.Context, userID string, method twofactor.MethodType) error {
	return repo.database.WithContext(ctx).
		Model(&twofactor.Method{}).
		Where("user_id = ? AND method_type = ?", userID, method).
		Update("attempts", gorm.Expr("attempts + ?", 1)).Error
}
