package repository

import (
	"context"
	"time"

	"salonbook/internal/domain/appointments"

	"gorm.io/gorm"
)

type AppointmentRepository struct {
	database *gorm.DB
}

func NewAppointmentRepository(database *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{database: database}
}

func (repo *AppointmentRepository) Create(ctx context.Context, appt *appointments.Appointment) error {
	return repo.database.WithContext(ctx).Create(appt).Error
}

func (repo *AppointmentRepository) Get(ctx context.Context, id string) (appointments.Appointment, error) {
	var appt appointments.Appointment
	if err := repo.database.WithContext(ctx).Where("id = ?", id).First(&appt).Error; err != nil {
		return appointments.Appointment{}, notFound(err)
	}
	return appt, nil
}

// CompleteConfirmedBefore marks every confirmed appointment with
// confirmed_at <= cutoff as completed in a single statement and returns how
// many rows moved.
func (repo *AppointmentRepository) CompleteConfirmedBefore(ctx context.Context, cutoff, now time.Time) (int64, error) {
	result := repo.database.WithContext(ctx).
		Model(&appointments.Appointment{}).
		Where("status = ? AND confirmed_at IS NOT NULL AND confirmed_at <= ?", appointments.StatusConfirmed, cutoff).
		Updates(map[string]interface{}{
			"status":       appointments.StatusCompleted,
			"completed_at": now,
			"updated_at":   now,
		})
	return result.RowsAffected, result.Error
}
