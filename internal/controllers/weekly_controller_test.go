package controllers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encho_fleet/internal/config"
	"encho_fleet/internal/store"
)

func TestCreateWeeklyAlignsToMonday(t *testing.T) {
	r, _ := setupRouter(t)
	d := createDriver(t, r, "Asha")

	rec := do(t, r, http.MethodPost, "/weekly", gin.H{
		"driverId":  d.ID,
		"weekStart": "2025-11-12",
		"earnings":  5400.5,
		"trips":     42,
		"notes":     "  festival week ",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body entryBody
	decode(t, rec, &body)
	e := body.Entry
	assert.NotZero(t, e.ID)
	assert.Equal(t, "2025-11-10", e.WeekStart)
	assert.Equal(t, "2025-11-16", e.WeekEnd)
	assert.Equal(t, 5400.5, e.Earnings)
	assert.Equal(t, 42, e.Trips)
	require.NotNil(t, e.Notes)
	assert.Equal(t, "festival week", *e.Notes)
	require.NotNil(t, e.Driver)
	assert.Equal(t, "Asha", e.Driver.Name)
}

func TestCreateWeeklyDuplicateReturnsExisting(t *testing.T) {
	r, _ := setupRouter(t)
	d := createDriver(t, r, "Bala")
	first := createEntry(t, r, d.ID, "2025-11-10", 1000, 12)

	// Sunday of the same week resolves to the same Monday.
	rec := do(t, r, http.MethodPost, "/weekly", gin.H{"driverId": d.ID, "weekStart": "2025-11-16", "earnings": 1500, "trips": 15})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	var body errorBody
	decode(t, rec, &body)
	require.NotNil(t, body.Existing)
	assert.Equal(t, first.ID, body.Existing.ID)
	assert.Equal(t, 1000.0, body.Existing.Earnings)

	// Overwrite goes through PATCH on the existing id.
	rec = do(t, r, http.MethodPatch, "/weekly/"+itoa(body.Existing.ID), gin.H{"earnings": 1500, "trips": 15})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/weekly?driverId="+d.ID, nil)
	var list entriesBody
	decode(t, rec, &list)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, 1500.0, list.Entries[0].Earnings)
	assert.Equal(t, 15, list.Entries[0].Trips)
}

func TestCreateWeeklyDuplicateUnderLegacySchema(t *testing.T) {
	r, _ := setupRouter(t)
	legacy := storeWith(t, store.Legacy)
	config.Use(legacy)

	d := createDriver(t, r, "Legacy")
	createEntry(t, r, d.ID, "2025-11-03", 400, 4)

	rec := do(t, r, http.MethodPost, "/weekly", gin.H{"driverId": d.ID, "weekStart": "2025-11-05", "earnings": 1, "trips": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateWeeklyErrors(t *testing.T) {
	r, _ := setupRouter(t)
	d := createDriver(t, r, "Chitra")

	rec := do(t, r, http.MethodPost, "/weekly", gin.H{"driverId": "nobody", "weekStart": "2025-11-10", "earnings": 10, "trips": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodPost, "/weekly", gin.H{"driverId": d.ID, "weekStart": "10/11/2025", "earnings": -5})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "weekStart must be a valid date (YYYY-MM-DD)", body.Issues["weekStart"])
	assert.Contains(t, body.Issues, "earnings")
	assert.Equal(t, "trips is required", body.Issues["trips"])

	rec = do(t, r, http.MethodPost, "/weekly", `{"driverId": "`+d.ID+`", "weekStart": "2025-11-10", "earnings": 10, "trips": 2.5}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body = errorBody{}
	decode(t, rec, &body)
	assert.Contains(t, body.Issues, "trips")

	rec = do(t, r, http.MethodPost, "/weekly", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateWeekly(t *testing.T) {
	r, _ := setupRouter(t)
	d := createDriver(t, r, "Dinesh")
	e := createEntry(t, r, d.ID, "2025-11-10", 800, 9)
	path := "/weekly/" + itoa(e.ID)

	rec := do(t, r, http.MethodPatch, path, gin.H{"notes": "rain"})
	require.Equal(t, http.StatusOK, rec.Code)
	var body entryBody
	decode(t, rec, &body)
	require.NotNil(t, body.Entry.Notes)
	assert.Equal(t, "rain", *body.Entry.Notes)

	rec = do(t, r, http.MethodPatch, path, gin.H{"notes": ""})
	require.Equal(t, http.StatusOK, rec.Code)
	body = entryBody{}
	decode(t, rec, &body)
	assert.Nil(t, body.Entry.Notes)

	rec = do(t, r, http.MethodPatch, path, gin.H{"weekStart": "2025-11-17"})
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &body)
	assert.Equal(t, "2025-11-17", body.Entry.WeekStart)
	assert.Equal(t, "2025-11-23", body.Entry.WeekEnd)

	rec = do(t, r, http.MethodPatch, path, gin.H{"weekStart": "2025-11-17", "weekEnd": "2025-11-10"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodPatch, path, gin.H{"trips": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, r, http.MethodPatch, path, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPatch, "/weekly/abc", gin.H{"trips": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPatch, "/weekly/999", gin.H{"trips": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateWeeklyIntoTakenWeekConflicts(t *testing.T) {
	r, _ := setupRouter(t)
	d := createDriver(t, r, "Esha")
	createEntry(t, r, d.ID, "2025-11-10", 800, 9)
	older := createEntry(t, r, d.ID, "2025-11-03", 600, 6)

	rec := do(t, r, http.MethodPatch, "/weekly/"+itoa(older.ID), gin.H{"weekStart": "2025-11-10"})
	require.Equal(t, http.StatusConflict, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	require.NotNil(t, body.Existing)
	assert.Equal(t, "2025-11-10", body.Existing.WeekStart)
}

func TestUpdateWeeklyIntoTakenWeekConflictsUnderLegacySchema(t *testing.T) {
	r, _ := setupRouter(t)
	config.Use(storeWith(t, store.Legacy))

	d := createDriver(t, r, "Gita")
	taken := createEntry(t, r, d.ID, "2025-11-10", 800, 9)
	older := createEntry(t, r, d.ID, "2025-11-03", 600, 6)

	rec := do(t, r, http.MethodPatch, "/weekly/"+itoa(older.ID), gin.H{"weekStart": "2025-11-10"})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	var body errorBody
	decode(t, rec, &body)
	require.NotNil(t, body.Existing)
	assert.Equal(t, taken.ID, body.Existing.ID)

	rec = do(t, r, http.MethodGet, "/weekly?driverId="+d.ID, nil)
	var list entriesBody
	decode(t, rec, &list)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, []string{"2025-11-16", "2025-11-09"}, weekEnds(list))

	// Staying inside its own week is not a conflict.
	rec = do(t, r, http.MethodPatch, "/weekly/"+itoa(older.ID), gin.H{"weekStart": "2025-11-05", "trips": 7})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateWeeklyStartAlignsToMonday(t *testing.T) {
	r, _ := setupRouter(t)
	d := createDriver(t, r, "Hari")
	e := createEntry(t, r, d.ID, "2025-11-03", 600, 6)

	rec := do(t, r, http.MethodPatch, "/weekly/"+itoa(e.ID), gin.H{"weekStart": "2025-11-12"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body entryBody
	decode(t, rec, &body)
	assert.Equal(t, "2025-11-10", body.Entry.WeekStart)
	assert.Equal(t, "2025-11-16", body.Entry.WeekEnd)

	rec = do(t, r, http.MethodPost, "/weekly", gin.H{"driverId": d.ID, "weekStart": "2025-11-12", "earnings": 100, "trips": 1})
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict errorBody
	decode(t, rec, &conflict)
	require.NotNil(t, conflict.Existing)
	assert.Equal(t, e.ID, conflict.Existing.ID)
}

func TestUpdateWeeklyEndMustCloseTheWeek(t *testing.T) {
	r, _ := setupRouter(t)
	d := createDriver(t, r, "Indu")
	e := createEntry(t, r, d.ID, "2025-11-10", 600, 6)
	path := "/weekly/" + itoa(e.ID)

	rec := do(t, r, http.MethodPatch, path, gin.H{"weekEnd": "2025-11-01"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Contains(t, body.Issues["weekEnd"], "2025-11-16")

	rec = do(t, r, http.MethodPatch, path, gin.H{"weekEnd": "2025-11-16", "earnings": 650})
	require.Equal(t, http.StatusOK, rec.Code)
	var ok entryBody
	decode(t, rec, &ok)
	assert.Equal(t, "2025-11-10", ok.Entry.WeekStart)
	assert.Equal(t, "2025-11-16", ok.Entry.WeekEnd)

	rec = do(t, r, http.MethodPatch, path, gin.H{"weekStart": "2025-11-17", "weekEnd": "2025-11-30"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListWeeklyFilters(t *testing.T) {
	r, _ := setupRouter(t)
	a := createDriver(t, r, "Asha")
	b := createDriver(t, r, "Bala")
	createEntry(t, r, a.ID, "2025-10-27", 100, 1)
	createEntry(t, r, a.ID, "2025-11-10", 300, 3)
	createEntry(t, r, b.ID, "2025-11-03", 200, 2)

	rec := do(t, r, http.MethodGet, "/weekly", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list entriesBody
	decode(t, rec, &list)
	require.Len(t, list.Entries, 3)
	assert.Equal(t, []string{"2025-11-16", "2025-11-09", "2025-11-02"}, weekEnds(list))
	require.NotNil(t, list.Entries[1].Driver)
	assert.Equal(t, "Bala", list.Entries[1].Driver.Name)

	rec = do(t, r, http.MethodGet, "/weekly?driverId="+a.ID+"&rangeStart=2025-11-01&rangeEnd=2025-11-30", nil)
	list = entriesBody{}
	decode(t, rec, &list)
	assert.Equal(t, []string{"2025-11-16"}, weekEnds(list))

	rec = do(t, r, http.MethodGet, "/weekly?rangeStart=11/01/2025", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Contains(t, body.Issues, "rangeStart")
}

func TestGetAndDeleteWeekly(t *testing.T) {
	r, _ := setupRouter(t)
	d := createDriver(t, r, "Farah")
	e := createEntry(t, r, d.ID, "2025-11-10", 800, 9)
	path := "/weekly/" + itoa(e.ID)

	rec := do(t, r, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body entryBody
	decode(t, rec, &body)
	assert.Equal(t, "2025-11-10", body.Entry.WeekStart)

	rec = do(t, r, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodDelete, path, nil).Code)
}

func TestSchemaMismatchAsksForMigration(t *testing.T) {
	r, st := setupRouter(t)
	// Tables were migrated for the current convention; pretend the database
	// is configured as legacy.
	mismatched, err := store.New(st.DB(), store.Legacy)
	require.NoError(t, err)
	config.Use(mismatched)

	rec := do(t, r, http.MethodGet, "/weekly", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.True(t, body.NeedsMigration)
	assert.Contains(t, rec.Body.String(), "WEEKLY_SCHEMA")
}

func weekEnds(list entriesBody) []string {
	out := make([]string, 0, len(list.Entries))
	for _, e := range list.Entries {
		out = append(out, e.WeekEnd)
	}
	return out
}
