// Package store is the persistence adapter for drivers and weekly entries.
//
// Two naming conventions exist for the weekly table. The convention is picked
// once, from configuration, when the Store is built; queries never probe the
// database to find out which one is present.
package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"encho_fleet/internal/models"
)

// Convention names a weekly table layout.
type Convention string

const (
	// Current is weekly_entries(week_start, week_end, earnings, trips).
	Current Convention = "current"
	// Legacy is weekly_earnings(week_start_date, week_end_date, earnings_in_inr, trips_completed).
	Legacy Convention = "legacy"
)

// ParseConvention validates a configured convention name.
func ParseConvention(s string) (Convention, error) {
	switch c := Convention(s); c {
	case Current, Legacy:
		return c, nil
	case "":
		return Current, nil
	default:
		return "", fmt.Errorf("unknown weekly schema convention %q (want %q or %q)", s, Current, Legacy)
	}
}

type weeklyColumns struct {
	table     string
	weekStart string
	weekEnd   string
	earnings  string
	trips     string
}

var conventionColumns = map[Convention]weeklyColumns{
	Current: {table: "weekly_entries", weekStart: "week_start", weekEnd: "week_end", earnings: "earnings", trips: "trips"},
	Legacy:  {table: "weekly_earnings", weekStart: "week_start_date", weekEnd: "week_end_date", earnings: "earnings_in_inr", trips: "trips_completed"},
}

// Store reads and writes drivers and weekly entries.
type Store struct {
	db         *gorm.DB
	convention Convention
	cols       weeklyColumns
}

// New builds a Store over db using the given weekly convention.
func New(db *gorm.DB, convention Convention) (*Store, error) {
	cols, ok := conventionColumns[convention]
	if !ok {
		return nil, fmt.Errorf("unknown weekly schema convention %q", convention)
	}
	return &Store{db: db, convention: convention, cols: cols}, nil
}

// DB exposes the underlying handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Convention returns the weekly table convention in use.
func (s *Store) Convention() Convention { return s.convention }

// Migrate creates or updates the tables for the configured convention.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.Driver{}, s.weeklyModel()); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) weeklyModel() interface{} {
	if s.convention == Legacy {
		return &models.LegacyWeeklyEarning{}
	}
	return &models.WeeklyEntry{}
}
