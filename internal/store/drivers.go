package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"encho_fleet/internal/models"
)

// DriverChanges holds the optional fields of a driver update. A nil field is
// left untouched; an empty LicenseNumber or ProfileImageURL clears the value.
type DriverChanges struct {
	Name            *string
	Phone           *string
	LicenseNumber   *string
	JoinDate        *time.Time
	ProfileImageURL *string
	Hidden          *bool
	Removed         *bool
}

// Empty reports whether no field was set.
func (c DriverChanges) Empty() bool {
	return c.Name == nil && c.Phone == nil && c.LicenseNumber == nil && c.JoinDate == nil &&
		c.ProfileImageURL == nil && c.Hidden == nil && c.Removed == nil
}

// ListDrivers returns every driver, newest registration first.
func (s *Store) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	drivers := []models.Driver{}
	err := s.db.WithContext(ctx).Order("created_at desc").Order("name asc").Find(&drivers).Error
	return drivers, translate("list drivers", err)
}

// GetDriver loads one driver by id.
func (s *Store) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	var d models.Driver
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, translate("get driver", err)
	}
	return &d, nil
}

// CreateDriver inserts d and fills its id and timestamps.
func (s *Store) CreateDriver(ctx context.Context, d *models.Driver) error {
	return translate("create driver", s.db.WithContext(ctx).Create(d).Error)
}

// UpdateDriver applies changes to the driver and returns the saved record.
func (s *Store) UpdateDriver(ctx context.Context, id string, changes DriverChanges) (*models.Driver, error) {
	d, err := s.GetDriver(ctx, id)
	if err != nil {
		return nil, err
	}

	if changes.Name != nil {
		d.Name = *changes.Name
	}
	if changes.Phone != nil {
		d.Phone = *changes.Phone
	}
	if changes.LicenseNumber != nil {
		d.LicenseNumber = optional(*changes.LicenseNumber)
	}
	if changes.JoinDate != nil {
		d.JoinDate = *changes.JoinDate
	}
	if changes.ProfileImageURL != nil {
		d.ProfileImageURL = optional(*changes.ProfileImageURL)
	}
	if changes.Hidden != nil {
		d.Hidden = *changes.Hidden
	}
	if changes.Removed != nil {
		if *changes.Removed {
			if d.RemovedAt == nil {
				now := time.Now().UTC()
				d.RemovedAt = &now
			}
		} else {
			d.RemovedAt = nil
		}
	}

	if err := s.db.WithContext(ctx).Save(d).Error; err != nil {
		return nil, translate("update driver", err)
	}
	return d, nil
}

// DeleteDriver removes the driver and all of its weekly entries in one
// transaction. The weekly rows are deleted explicitly so the cascade does not
// depend on the database enforcing foreign keys.
func (s *Store) DeleteDriver(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("driver_id = ?", id).Delete(s.weeklyModel()).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Driver{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return translate("delete driver", err)
}

// DriversWithEntries returns the drivers shown on the dashboard (not hidden,
// not removed) with their weekly entries, most recent week first.
func (s *Store) DriversWithEntries(ctx context.Context) ([]models.Driver, error) {
	drivers := []models.Driver{}
	err := s.db.WithContext(ctx).
		Where("hidden = ? AND removed_at IS NULL", false).
		Order("created_at desc").
		Find(&drivers).Error
	if err != nil {
		return nil, translate("list dashboard drivers", err)
	}
	if len(drivers) == 0 {
		return drivers, nil
	}

	ids := make([]string, 0, len(drivers))
	for _, d := range drivers {
		ids = append(ids, d.ID)
	}
	entries, err := s.listWeekly(ctx, WeeklyFilter{}, ids)
	if err != nil {
		return nil, err
	}

	byDriver := make(map[string][]models.WeeklyEntry, len(drivers))
	for _, e := range entries {
		e.Driver = nil
		byDriver[e.DriverID] = append(byDriver[e.DriverID], e)
	}
	for i := range drivers {
		drivers[i].WeeklyEntries = byDriver[drivers[i].ID]
	}
	return drivers, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
