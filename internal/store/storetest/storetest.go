// Package storetest opens throwaway sqlite-backed stores for tests.
package storetest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"encho_fleet/internal/models"
	"encho_fleet/internal/store"
	"encho_fleet/internal/week"
)

// Open returns a migrated store using the current weekly convention.
func Open(t *testing.T) *store.Store {
	return OpenWith(t, store.Current)
}

// OpenWith returns a migrated store using convention c.
func OpenWith(t *testing.T, c store.Convention) *store.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "encho-test.db")
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s, err := store.New(db, c)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

// Date parses a YYYY-MM-DD literal or fails the test.
func Date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := week.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

// CreateDriver inserts a driver with sane defaults.
func CreateDriver(t *testing.T, s *store.Store, name string) models.Driver {
	t.Helper()
	d := models.Driver{
		Name:     name,
		Phone:    "9876543210",
		JoinDate: Date(t, "2025-01-06"),
	}
	if err := s.CreateDriver(context.Background(), &d); err != nil {
		t.Fatalf("create driver %q: %v", name, err)
	}
	return d
}

// CreateEntry inserts a weekly entry for the week starting weekStart.
func CreateEntry(t *testing.T, s *store.Store, driverID, weekStart string, earnings float64, trips int) models.WeeklyEntry {
	t.Helper()
	r := week.FromStart(Date(t, weekStart))
	e := models.WeeklyEntry{
		DriverID:  driverID,
		WeekStart: r.Start,
		WeekEnd:   r.End,
		Earnings:  earnings,
		Trips:     trips,
	}
	if err := s.CreateWeekly(context.Background(), &e); err != nil {
		t.Fatalf("create weekly entry: %v", err)
	}
	return e
}
