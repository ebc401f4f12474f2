package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"encho_fleet/internal/models"
	"encho_fleet/internal/week"
)

// WeeklyFilter narrows a weekly listing. Zero values mean no restriction.
// RangeStart and RangeEnd keep entries that lie entirely inside the range.
type WeeklyFilter struct {
	DriverID   string
	RangeStart *time.Time
	RangeEnd   *time.Time
}

// WeeklyChanges holds the optional fields of a weekly entry update. An empty
// Notes clears the notes.
type WeeklyChanges struct {
	WeekStart *time.Time
	WeekEnd   *time.Time
	Earnings  *float64
	Trips     *int
	Notes     *string
}

// Empty reports whether no field was set.
func (c WeeklyChanges) Empty() bool {
	return c.WeekStart == nil && c.WeekEnd == nil && c.Earnings == nil && c.Trips == nil && c.Notes == nil
}

// weeklyRow is the convention-neutral scan target for weekly queries.
type weeklyRow struct {
	ID         uint
	DriverID   string
	WeekStart  time.Time
	WeekEnd    time.Time
	Earnings   float64
	Trips      int
	Notes      *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DriverName *string
}

func (r weeklyRow) entry() models.WeeklyEntry {
	e := models.WeeklyEntry{
		ID:        r.ID,
		DriverID:  r.DriverID,
		WeekStart: week.Date(r.WeekStart),
		WeekEnd:   week.Date(r.WeekEnd),
		Earnings:  r.Earnings,
		Trips:     r.Trips,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.DriverName != nil {
		e.Driver = &models.DriverRef{ID: r.DriverID, Name: *r.DriverName}
	}
	return e
}

// weeklyQuery selects weekly rows under their current names whatever the
// configured convention, joined with the owning driver's name.
func (s *Store) weeklyQuery(ctx context.Context) *gorm.DB {
	c := s.cols
	sel := fmt.Sprintf(
		"%[1]s.id, %[1]s.driver_id, %[1]s.%[2]s AS week_start, %[1]s.%[3]s AS week_end, "+
			"%[1]s.%[4]s AS earnings, %[1]s.%[5]s AS trips, %[1]s.notes, %[1]s.created_at, %[1]s.updated_at, "+
			"drivers.name AS driver_name",
		c.table, c.weekStart, c.weekEnd, c.earnings, c.trips,
	)
	return s.db.WithContext(ctx).
		Table(c.table).
		Select(sel).
		Joins(fmt.Sprintf("LEFT JOIN drivers ON drivers.id = %s.driver_id", c.table))
}

// ListWeekly returns weekly entries matching f, most recent week end first.
func (s *Store) ListWeekly(ctx context.Context, f WeeklyFilter) ([]models.WeeklyEntry, error) {
	return s.listWeekly(ctx, f, nil)
}

func (s *Store) listWeekly(ctx context.Context, f WeeklyFilter, driverIDs []string) ([]models.WeeklyEntry, error) {
	c := s.cols
	q := s.weeklyQuery(ctx)
	if f.DriverID != "" {
		q = q.Where(c.table+".driver_id = ?", f.DriverID)
	}
	if driverIDs != nil {
		q = q.Where(c.table+".driver_id IN ?", driverIDs)
	}
	if f.RangeStart != nil {
		q = q.Where(fmt.Sprintf("%s.%s >= ?", c.table, c.weekStart), week.Date(*f.RangeStart))
	}
	if f.RangeEnd != nil {
		q = q.Where(fmt.Sprintf("%s.%s <= ?", c.table, c.weekEnd), week.Date(*f.RangeEnd))
	}

	var rows []weeklyRow
	err := q.Order(fmt.Sprintf("%s.%s desc", c.table, c.weekEnd)).
		Order(c.table + ".id desc").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("list weekly entries", err)
	}

	entries := make([]models.WeeklyEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.entry())
	}
	return entries, nil
}

// GetWeekly loads one weekly entry by id.
func (s *Store) GetWeekly(ctx context.Context, id uint) (*models.WeeklyEntry, error) {
	var rows []weeklyRow
	err := s.weeklyQuery(ctx).
		Where(s.cols.table+".id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, translate("get weekly entry", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	e := rows[0].entry()
	return &e, nil
}

// FindDuplicate returns the entry the driver already has inside r, or nil
// when there is none. A store failure is returned as an error; callers must
// not fall through to an insert in that case.
func (s *Store) FindDuplicate(ctx context.Context, driverID string, r week.Range) (*models.WeeklyEntry, error) {
	start, end := r.Start, r.End
	matches, err := s.ListWeekly(ctx, WeeklyFilter{DriverID: driverID, RangeStart: &start, RangeEnd: &end})
	if err != nil {
		return nil, fmt.Errorf("check existing entries: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

// CreateWeekly inserts e and fills its id and timestamps.
func (s *Store) CreateWeekly(ctx context.Context, e *models.WeeklyEntry) error {
	db := s.db.WithContext(ctx)
	if s.convention == Legacy {
		row := models.LegacyFromEntry(*e)
		if err := db.Omit("Driver").Create(&row).Error; err != nil {
			return translate("create weekly entry", err)
		}
		e.ID, e.CreatedAt, e.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
		return nil
	}
	return translate("create weekly entry", db.Create(e).Error)
}

// UpdateWeekly applies changes to entry id and returns the saved entry.
func (s *Store) UpdateWeekly(ctx context.Context, id uint, changes WeeklyChanges) (*models.WeeklyEntry, error) {
	c := s.cols
	updates := map[string]interface{}{"updated_at": time.Now().UTC()}
	if changes.WeekStart != nil {
		updates[c.weekStart] = week.Date(*changes.WeekStart)
	}
	if changes.WeekEnd != nil {
		updates[c.weekEnd] = week.Date(*changes.WeekEnd)
	}
	if changes.Earnings != nil {
		updates[c.earnings] = *changes.Earnings
	}
	if changes.Trips != nil {
		updates[c.trips] = *changes.Trips
	}
	if changes.Notes != nil {
		updates["notes"] = optional(*changes.Notes)
	}

	res := s.db.WithContext(ctx).Table(c.table).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, translate("update weekly entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetWeekly(ctx, id)
}

// DeleteWeekly removes entry id.
func (s *Store) DeleteWeekly(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(s.weeklyModel())
	if res.Error != nil {
		return translate("delete weekly entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
