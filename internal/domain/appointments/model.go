package appointments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

type Appointment struct {
	ID             string `gorm:"primaryKey;type:varchar(36)"`
	TenantID       string `gorm:"column:tenant_id;type:varchar(36);not null;index"`
	ProfessionalID string `gorm:"column:professional_id;type:varchar(36)"`
	ClientName     string
	StartsAt       time.Time
	Status         Status     `gorm:"type:varchar(20);not null;default:'pending';index:idx_appointments_status_confirmed_at,priority:1"`
	ConfirmedAt    *time.Time `gorm:"index:idx_appointments_status_confirmed_at,priority:2"`
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
