// internal/models/driver.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Driver is a taxi driver registered with the platform.
type Driver struct {
	ID              string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name            string     `json:"name" gorm:"not null"`
	Phone           string     `json:"phone" gorm:"not null"`          // digits only
	LicenseNumber   *string    `json:"licenseNumber"`                  // upper-cased, optional
	JoinDate        time.Time  `json:"joinDate" gorm:"type:date;not null"`
	ProfileImageURL *string    `json:"profileImageUrl"`
	Hidden          bool       `json:"hidden" gorm:"not null;default:false"`
	RemovedAt       *time.Time `json:"removedAt" gorm:"index"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	WeeklyEntries []WeeklyEntry `gorm:"foreignKey:DriverID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"weeklyEntries,omitempty"`
}

// BeforeCreate assigns a uuid when the caller did not pick one.
func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Visible reports whether the driver should appear on the dashboard.
func (d Driver) Visible() bool {
	return !d.Hidden && d.RemovedAt == nil
}
