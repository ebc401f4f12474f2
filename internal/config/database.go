package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"encho_fleet/internal/logger"
	"encho_fleet/internal/store"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB

	// Store is the driver / weekly entry adapter built on DB
	Store *store.Store
)

// InitDB opens the configured database, runs migrations for the configured
// weekly schema convention and publishes DB and Store.
func InitDB(s *Settings) error {
	db, err := Open(s)
	if err != nil {
		return err
	}

	convention, err := store.ParseConvention(s.WeeklySchema)
	if err != nil {
		return err
	}
	st, err := store.New(db, convention)
	if err != nil {
		return err
	}
	if err := st.Migrate(); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"driver":        s.DBDriver,
		"weekly_schema": convention,
	}).Info("database ready")

	Use(st)
	return nil
}

// Use publishes st as the global store. Tests use it to swap in sqlite.
func Use(st *store.Store) {
	Store = st
	DB = st.DB()
}

// Open connects to postgres (through lib/pq) or to a local sqlite file.
func Open(s *Settings) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: gormlogger.New(logger.GormLogger(), gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var dialector gorm.Dialector
	switch s.DBDriver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(s.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dialector = sqlite.Open(fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", s.SQLitePath))
	default:
		dialector = postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        s.DSN(),
		})
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}
