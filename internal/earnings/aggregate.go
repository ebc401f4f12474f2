// Package earnings aggregates weekly entries into the performance dashboard.
package earnings

import (
	"math"
	"sort"

	"encho_fleet/internal/models"
	"encho_fleet/internal/week"
)

// Display week labels.
const (
	ThisWeek   = "This Week"
	RecentWeek = "Recent Week"
)

// DisplayWeek is the week shown for a driver or for the fleet. Label is
// RecentWeek when the current week had no entry and an older one is shown.
type DisplayWeek struct {
	Label string              `json:"label"`
	Start string              `json:"start"`
	End   string              `json:"end"`
	Entry *models.WeeklyEntry `json:"entry,omitempty"`
}

// Totals are lifetime figures for one driver.
type Totals struct {
	Earnings    float64 `json:"earnings"`
	Trips       int     `json:"trips"`
	BestWeek    float64 `json:"bestWeek"`
	LastWeekEnd string  `json:"lastWeekEnd"`
}

// KPIs are the fleet figures for the resolved display week.
type KPIs struct {
	Week          DisplayWeek `json:"week"`
	TotalEarnings float64     `json:"totalEarnings"`
	ActiveDrivers int         `json:"activeDrivers"`
	Average       float64     `json:"average"`
	TopEarner     *TopEarner  `json:"topEarner"`
}

// TopEarner is the driver with the largest single entry in the display week.
// A week where nobody earned anything has no top earner.
type TopEarner struct {
	DriverID string  `json:"driverId"`
	Name     string  `json:"name"`
	Earnings float64 `json:"earnings"`
}

// DriverSummary is one row of the dashboard.
type DriverSummary struct {
	ID              string               `json:"id"`
	Name            string               `json:"name"`
	LicenseNumber   *string              `json:"licenseNumber"`
	ProfileImageURL *string              `json:"profileImageUrl"`
	Week            DisplayWeek          `json:"week"`
	Totals          Totals               `json:"totals"`
	Entries         []models.WeeklyEntry `json:"entries"`
}

// Dashboard is the full performance view.
type Dashboard struct {
	CurrentWeek week.Range      `json:"-"`
	KPIs        KPIs            `json:"kpis"`
	Drivers     []DriverSummary `json:"drivers"`
}

// Amount turns a stored amount into something safe to add: NaN and
// infinities count as zero.
func Amount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func count(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// PickDisplayWeek prefers the entry for exactly the current week and falls
// back to the entry with the latest week end.
func PickDisplayWeek(entries []models.WeeklyEntry, current week.Range) DisplayWeek {
	for i := range entries {
		if entryRange(entries[i]).Equal(current) {
			e := entries[i]
			return DisplayWeek{Label: ThisWeek, Start: current.StartISO(), End: current.EndISO(), Entry: &e}
		}
	}
	if latest := latestEntry(entries); latest != nil {
		r := entryRange(*latest)
		return DisplayWeek{Label: RecentWeek, Start: r.StartISO(), End: r.EndISO(), Entry: latest}
	}
	return DisplayWeek{Label: ThisWeek, Start: current.StartISO(), End: current.EndISO()}
}

// FleetWeek resolves the week the fleet KPIs are computed for: the current
// week when any driver has an entry for it, otherwise the most recent week
// any driver has.
func FleetWeek(drivers []models.Driver, current week.Range) (week.Range, string) {
	var latest *models.WeeklyEntry
	for i := range drivers {
		for j := range drivers[i].WeeklyEntries {
			e := &drivers[i].WeeklyEntries[j]
			if entryRange(*e).Equal(current) {
				return current, ThisWeek
			}
			if latest == nil || e.WeekEnd.After(latest.WeekEnd) {
				latest = e
			}
		}
	}
	if latest == nil {
		return current, ThisWeek
	}
	return entryRange(*latest), RecentWeek
}

// FleetKPIs computes total, active count, average and top earner over the
// entries that match the resolved fleet week.
func FleetKPIs(drivers []models.Driver, current week.Range) KPIs {
	r, label := FleetWeek(drivers, current)
	k := KPIs{Week: DisplayWeek{Label: label, Start: r.StartISO(), End: r.EndISO()}}

	for _, d := range drivers {
		e := entryFor(d.WeeklyEntries, r)
		if e == nil {
			continue
		}
		amt := Amount(e.Earnings)
		k.TotalEarnings += amt
		k.ActiveDrivers++
		if amt > 0 && (k.TopEarner == nil || amt > k.TopEarner.Earnings) {
			k.TopEarner = &TopEarner{DriverID: d.ID, Name: d.Name, Earnings: amt}
		}
	}
	if k.ActiveDrivers > 0 {
		k.Average = math.Round(k.TotalEarnings / float64(k.ActiveDrivers))
	}
	return k
}

// Lifetime sums every entry of one driver.
func Lifetime(entries []models.WeeklyEntry) Totals {
	var t Totals
	for i, e := range entries {
		amt := Amount(e.Earnings)
		t.Earnings += amt
		t.Trips += count(e.Trips)
		if i == 0 || amt > t.BestWeek {
			t.BestWeek = amt
		}
		if end := week.FormatDate(e.WeekEnd); end > t.LastWeekEnd {
			t.LastWeekEnd = end
		}
	}
	return t
}

// SortDrivers orders summaries by latest week end (newest first), then by
// lifetime earnings (highest first), then by name.
func SortDrivers(rows []DriverSummary) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Totals.LastWeekEnd != b.Totals.LastWeekEnd {
			return a.Totals.LastWeekEnd > b.Totals.LastWeekEnd
		}
		if a.Totals.Earnings != b.Totals.Earnings {
			return a.Totals.Earnings > b.Totals.Earnings
		}
		return a.Name < b.Name
	})
}

// Build assembles the dashboard for drivers as of the current week.
func Build(drivers []models.Driver, current week.Range) Dashboard {
	rows := make([]DriverSummary, 0, len(drivers))
	for _, d := range drivers {
		entries := d.WeeklyEntries
		if entries == nil {
			entries = []models.WeeklyEntry{}
		}
		rows = append(rows, DriverSummary{
			ID:              d.ID,
			Name:            d.Name,
			LicenseNumber:   d.LicenseNumber,
			ProfileImageURL: d.ProfileImageURL,
			Week:            PickDisplayWeek(entries, current),
			Totals:          Lifetime(entries),
			Entries:         entries,
		})
	}
	SortDrivers(rows)

	return Dashboard{
		CurrentWeek: current,
		KPIs:        FleetKPIs(drivers, current),
		Drivers:     rows,
	}
}

func entryRange(e models.WeeklyEntry) week.Range {
	return week.Range{Start: e.WeekStart, End: e.WeekEnd}
}

func entryFor(entries []models.WeeklyEntry, r week.Range) *models.WeeklyEntry {
	for i := range entries {
		if entryRange(entries[i]).Equal(r) {
			return &entries[i]
		}
	}
	return nil
}

func latestEntry(entries []models.WeeklyEntry) *models.WeeklyEntry {
	var latest *models.WeeklyEntry
	for i := range entries {
		if latest == nil || entries[i].WeekEnd.After(latest.WeekEnd) {
			e := entries[i]
			latest = &e
		}
	}
	return latest
}
