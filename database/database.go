package database

import (
	"fmt"
	"strings"
	"time"

	"salonbook/internal/domain/appointments"
	"salonbook/internal/domain/billing"
	"salonbook/internal/domain/ipblock"
	"salonbook/internal/domain/tenants"
	"salonbook/internal/domain/twofactor"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// Open connects to PostgreSQL, or to a local SQLite file when the URL starts
// with sqlite:// (development and tests).
func Open(dbURL string, log *zap.Logger) (*gorm.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DB_URL not set")
	}
	if log == nil {
		log = zap.NewNop()
	}

	stdLog, err := zap.NewStdLogAt(log, zapcore.WarnLevel)
	if err != nil {
		return nil, fmt.Errorf("gorm logger: %w", err)
	}

	gcfg := &gorm.Config{
		Logger: gormlogger.New(
			stdLog,
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	if strings.HasPrefix(dbURL, sqlitePrefix) {
		path := strings.TrimPrefix(dbURL, sqlitePrefix)
		db, err := gorm.Open(sqlite.Open(path+"?_pragma=busy_timeout(5000)"), gcfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}

	db, err := gorm.Open(postgres.Open(dbURL), gcfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&tenants.Tenant{},
		&billing.Subscription{},
		&billing.Subscriber{},
		&appointments.Appointment{},
		&twofactor.Method{},
		&ipblock.BlockedIP{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
