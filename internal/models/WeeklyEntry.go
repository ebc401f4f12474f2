package models

import (
	"time"
)

// WeeklyEntry is one driver's earnings and trips for a Monday–Sunday week.
// At most one entry exists per (driver, week start).
type WeeklyEntry struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	DriverID  string    `json:"driverId" gorm:"type:varchar(36);not null;uniqueIndex:idx_weekly_driver_week"`
	WeekStart time.Time `json:"weekStart" gorm:"type:date;not null;uniqueIndex:idx_weekly_driver_week"`
	WeekEnd   time.Time `json:"weekEnd" gorm:"type:date;not null;index"`
	Earnings  float64   `json:"earnings" gorm:"not null;default:0"`
	Trips     int       `json:"trips" gorm:"not null;default:0"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Driver is only populated by list queries.
	Driver *DriverRef `json:"driver,omitempty" gorm:"-"`
}

// DriverRef is the minimal driver info joined onto weekly listings.
type DriverRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LegacyWeeklyEarning is the older naming of the weekly table. Databases
// created before the rename still carry these columns.
type LegacyWeeklyEarning struct {
	ID             uint      `gorm:"primaryKey"`
	DriverID       string    `gorm:"type:varchar(36);not null;index"`
	WeekStartDate  time.Time `gorm:"type:date;not null"`
	WeekEndDate    time.Time `gorm:"type:date;not null;index"`
	EarningsInINR  float64   `gorm:"column:earnings_in_inr;not null;default:0"`
	TripsCompleted int       `gorm:"not null;default:0"`
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Driver Driver `gorm:"foreignKey:DriverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (LegacyWeeklyEarning) TableName() string {
	return "weekly_earnings"
}

// Entry converts a legacy row to the current shape.
func (l LegacyWeeklyEarning) Entry() WeeklyEntry {
	return WeeklyEntry{
		ID:        l.ID,
		DriverID:  l.DriverID,
		WeekStart: l.WeekStartDate,
		WeekEnd:   l.WeekEndDate,
		Earnings:  l.EarningsInINR,
		Trips:     l.TripsCompleted,
		Notes:     l.Notes,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// LegacyFromEntry converts a current-shape entry to a legacy row.
func LegacyFromEntry(e WeeklyEntry) LegacyWeeklyEarning {
	return LegacyWeeklyEarning{
		ID:             e.ID,
		DriverID:       e.DriverID,
		WeekStartDate:  e.WeekStart,
		WeekEndDate:    e.WeekEnd,
		EarningsInINR:  e.Earnings,
		TripsCompleted: e.Trips,
		Notes:          e.Notes,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
