package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"encho_fleet/internal/config"
	"encho_fleet/internal/models"
	"encho_fleet/internal/store"
	"encho_fleet/internal/validation"
	"encho_fleet/internal/week"
)

// weeklyQuery holds the optional listing filters.
type weeklyQuery struct {
	DriverID   string `form:"driverId" json:"driverId"`
	RangeStart string `form:"rangeStart" json:"rangeStart" binding:"omitempty,ymd"`
	RangeEnd   string `form:"rangeEnd" json:"rangeEnd" binding:"omitempty,ymd"`
}

func (q weeklyQuery) filter() store.WeeklyFilter {
	f := store.WeeklyFilter{DriverID: strings.TrimSpace(q.DriverID)}
	if d, err := week.ParseDate(q.RangeStart); err == nil {
		f.RangeStart = &d
	}
	if d, err := week.ParseDate(q.RangeEnd); err == nil {
		f.RangeEnd = &d
	}
	return f
}

// bindWeeklyQuery reads the listing filters, answering 422 when a date is
// malformed.
func bindWeeklyQuery(c *gin.Context) (store.WeeklyFilter, bool) {
	validation.Setup()
	var q weeklyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		issues, ok := validation.Describe(err)
		if !ok {
			issues = validation.Issues{"query": err.Error()}
		}
		validationFailed(c, issues)
		return store.WeeklyFilter{}, false
	}
	return q.filter(), true
}

// createWeeklyInput is the weekly entry form. weekStart may be any day of
// the week; it is moved back to that week's Monday.
type createWeeklyInput struct {
	DriverID  string   `json:"driverId" binding:"required"`
	WeekStart string   `json:"weekStart" binding:"required,ymd"`
	Earnings  *float64 `json:"earnings" binding:"required,min=0"`
	Trips     *int     `json:"trips" binding:"required,min=0"`
	Notes     *string  `json:"notes"`
}

func (in *createWeeklyInput) normalize() {
	in.DriverID = strings.TrimSpace(in.DriverID)
	in.WeekStart = strings.TrimSpace(in.WeekStart)
	trim(in.Notes)
}

// updateWeeklyInput is a partial update. An empty notes string clears the
// notes.
type updateWeeklyInput struct {
	WeekStart *string  `json:"weekStart" binding:"omitnil,ymd"`
	WeekEnd   *string  `json:"weekEnd" binding:"omitnil,ymd"`
	Earnings  *float64 `json:"earnings" binding:"omitnil,min=0"`
	Trips     *int     `json:"trips" binding:"omitnil,min=0"`
	Notes     *string  `json:"notes"`
}

func (in *updateWeeklyInput) normalize() {
	trim(in.WeekStart)
	trim(in.WeekEnd)
	trim(in.Notes)
}

func (in updateWeeklyInput) empty() bool {
	return in.WeekStart == nil && in.WeekEnd == nil && in.Earnings == nil && in.Trips == nil && in.Notes == nil
}

// changes resolves the date fields against the stored entry. A weekStart is
// moved back to its Monday and brings that week's Sunday along; a weekEnd
// must be the sixth day after the (new or stored) start.
func (in updateWeeklyInput) changes(current models.WeeklyEntry) (store.WeeklyChanges, validation.Issues) {
	ch := store.WeeklyChanges{Earnings: in.Earnings, Trips: in.Trips, Notes: in.Notes}
	r := week.FromStart(current.WeekStart)
	if in.WeekStart != nil {
		day, _ := week.ParseDate(*in.WeekStart)
		r = week.Of(day)
		ch.WeekStart, ch.WeekEnd = &r.Start, &r.End
	}
	if in.WeekEnd != nil {
		end, _ := week.ParseDate(*in.WeekEnd)
		if !end.Equal(r.End) {
			return ch, validation.Issues{"weekEnd": "weekEnd must be " + r.EndISO() + " (6 days after weekStart)"}
		}
		ch.WeekEnd = &r.End
	}
	return ch, nil
}

// --- Weekly Controller Functions ---

// ListWeekly returns weekly entries, optionally filtered by driver and date
// range, most recent week first.
func ListWeekly(c *gin.Context) {
	filter, ok := bindWeeklyQuery(c)
	if !ok {
		return
	}

	entries, err := config.Store.ListWeekly(c.Request.Context(), filter)
	if err != nil {
		storeFailed(c, err, http.StatusInternalServerError, "Failed to fetch weekly entries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": toWeeklyResponses(entries)})
}

// GetWeekly returns one weekly entry.
func GetWeekly(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}
	entry, err := config.Store.GetWeekly(c.Request.Context(), id)
	if err != nil {
		storeFailed(c, err, http.StatusInternalServerError, "Failed to fetch weekly entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": toWeeklyResponse(*entry)})
}

// CreateWeekly records a driver's week. If the driver already has an entry
// for that week the existing entry is returned with 409 so the caller can
// decide to overwrite it through PATCH.
//
// The duplicate check and the insert are separate statements. Two concurrent
// submissions can both pass the check; the unique index on
// (driver_id, week_start) then rejects the second insert, which is also
// answered with 409.
func CreateWeekly(c *gin.Context) {
	var input createWeeklyInput
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	day, _ := week.ParseDate(input.WeekStart)
	r := week.Of(day)

	driver, err := config.Store.GetDriver(ctx, input.DriverID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		storeFailed(c, err, http.StatusInternalServerError, "Failed to fetch driver")
		return
	}

	existing, err := config.Store.FindDuplicate(ctx, driver.ID, r)
	if err != nil {
		storeFailed(c, err, http.StatusInternalServerError, "Could not check for an existing entry")
		return
	}
	if existing != nil {
		duplicateWeek(c, *existing)
		return
	}

	entry := models.WeeklyEntry{
		DriverID:  driver.ID,
		WeekStart: r.Start,
		WeekEnd:   r.End,
		Earnings:  *input.Earnings,
		Trips:     *input.Trips,
		Notes:     nonEmpty(input.Notes),
	}
	if err := config.Store.CreateWeekly(ctx, &entry); err != nil {
		if errors.Is(err, store.ErrDuplicateWeek) {
			logrus.WithFields(logrus.Fields{"driver_id": driver.ID, "week": r.String()}).Warn("concurrent weekly create rejected by unique index")
			if existing, ferr := config.Store.FindDuplicate(ctx, driver.ID, r); ferr == nil && existing != nil {
				duplicateWeek(c, *existing)
				return
			}
			c.JSON(http.StatusConflict, gin.H{"error": "An entry already exists for this driver and week"})
			return
		}
		storeFailed(c, err, http.StatusInternalServerError, "Failed to create weekly entry")
		return
	}

	entry.Driver = &models.DriverRef{ID: driver.ID, Name: driver.Name}
	logrus.WithFields(logrus.Fields{"driver_id": driver.ID, "week": r.String(), "entry_id": entry.ID}).Info("weekly entry created")
	c.JSON(http.StatusCreated, gin.H{"entry": toWeeklyResponse(entry)})
}

// UpdateWeekly applies a partial update to an entry. This is also how a
// duplicate is overwritten after a 409.
func UpdateWeekly(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}
	var input updateWeeklyInput
	if !bindJSON(c, &input) {
		return
	}
	if input.empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	ctx := c.Request.Context()

	current, err := config.Store.GetWeekly(ctx, id)
	if err != nil {
		storeFailed(c, err, http.StatusInternalServerError, "Failed to fetch weekly entry")
		return
	}
	changes, issues := input.changes(*current)
	if len(issues) > 0 {
		validationFailed(c, issues)
		return
	}

	// Moving to another week runs the same duplicate check as create; the
	// legacy table has no unique index to fall back on.
	if changes.WeekStart != nil && !changes.WeekStart.Equal(week.Date(current.WeekStart)) {
		target := week.Range{Start: *changes.WeekStart, End: *changes.WeekEnd}
		existing, err := config.Store.FindDuplicate(ctx, current.DriverID, target)
		if err != nil {
			storeFailed(c, err, http.StatusInternalServerError, "Could not check for an existing entry")
			return
		}
		if existing != nil && existing.ID != id {
			duplicateWeek(c, *existing)
			return
		}
	}

	entry, err := config.Store.UpdateWeekly(ctx, id, changes)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateWeek) {
			c.JSON(http.StatusConflict, gin.H{"error": "Another entry already exists for this driver and week"})
			return
		}
		storeFailed(c, err, http.StatusInternalServerError, "Failed to update weekly entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": toWeeklyResponse(*entry)})
}

// DeleteWeekly removes one entry.
func DeleteWeekly(c *gin.Context) {
	id, ok := parseEntryID(c)
	if !ok {
		return
	}
	if err := config.Store.DeleteWeekly(c.Request.Context(), id); err != nil {
		storeFailed(c, err, http.StatusBadRequest, "Failed to delete weekly entry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func duplicateWeek(c *gin.Context, existing models.WeeklyEntry) {
	c.JSON(http.StatusConflict, gin.H{
		"error":    "An entry already exists for this driver and week",
		"existing": toWeeklyResponse(existing),
	})
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
