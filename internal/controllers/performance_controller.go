package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"encho_fleet/internal/config"
	"encho_fleet/internal/earnings"
	"encho_fleet/internal/validation"
	"encho_fleet/internal/week"
)

// DisplayWeekResponse is a resolved display week with its entry, if any.
type DisplayWeekResponse struct {
	Label           string          `json:"label"`
	Start           string          `json:"start"`
	End             string          `json:"end"`
	Entry           *WeeklyResponse `json:"entry"`
	EarningsDisplay string          `json:"earningsDisplay"`
}

func toDisplayWeekResponse(w earnings.DisplayWeek) DisplayWeekResponse {
	out := DisplayWeekResponse{Label: w.Label, Start: w.Start, End: w.End}
	var amount float64
	if w.Entry != nil {
		e := toWeeklyResponse(*w.Entry)
		out.Entry = &e
		amount = earnings.Amount(w.Entry.Earnings)
	}
	out.EarningsDisplay = earnings.FormatINR(amount)
	return out
}

// TotalsResponse carries lifetime figures and their rupee renderings.
type TotalsResponse struct {
	earnings.Totals
	EarningsDisplay string `json:"earningsDisplay"`
	BestWeekDisplay string `json:"bestWeekDisplay"`
}

// DriverPerformanceResponse is one dashboard row.
type DriverPerformanceResponse struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	LicenseNumber   *string             `json:"licenseNumber"`
	ProfileImageURL *string             `json:"profileImageUrl"`
	Week            DisplayWeekResponse `json:"week"`
	Totals          TotalsResponse      `json:"totals"`
	Entries         []WeeklyResponse    `json:"entries"`
}

// KPIsResponse is the fleet summary.
type KPIsResponse struct {
	Week                 DisplayWeekResponse `json:"week"`
	TotalEarnings        float64             `json:"totalEarnings"`
	TotalEarningsDisplay string              `json:"totalEarningsDisplay"`
	ActiveDrivers        int                 `json:"activeDrivers"`
	Average              float64             `json:"average"`
	AverageDisplay       string              `json:"averageDisplay"`
	TopEarner            *earnings.TopEarner `json:"topEarner"`
}

// PerformanceResponse is the body of GET /performance.
type PerformanceResponse struct {
	CurrentWeek struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"currentWeek"`
	KPIs    KPIsResponse                `json:"kpis"`
	Drivers []DriverPerformanceResponse `json:"drivers"`
}

func toPerformanceResponse(d earnings.Dashboard) PerformanceResponse {
	var out PerformanceResponse
	out.CurrentWeek.Start = d.CurrentWeek.StartISO()
	out.CurrentWeek.End = d.CurrentWeek.EndISO()

	// The fleet week has no single entry; only the dates are shown.
	fleetWeek := toDisplayWeekResponse(earnings.DisplayWeek{Label: d.KPIs.Week.Label, Start: d.KPIs.Week.Start, End: d.KPIs.Week.End})
	fleetWeek.EarningsDisplay = earnings.FormatINR(d.KPIs.TotalEarnings)
	out.KPIs = KPIsResponse{
		Week:                 fleetWeek,
		TotalEarnings:        d.KPIs.TotalEarnings,
		TotalEarningsDisplay: earnings.FormatINR(d.KPIs.TotalEarnings),
		ActiveDrivers:        d.KPIs.ActiveDrivers,
		Average:              d.KPIs.Average,
		AverageDisplay:       earnings.FormatINR(d.KPIs.Average),
		TopEarner:            d.KPIs.TopEarner,
	}

	out.Drivers = make([]DriverPerformanceResponse, 0, len(d.Drivers))
	for _, row := range d.Drivers {
		out.Drivers = append(out.Drivers, DriverPerformanceResponse{
			ID:              row.ID,
			Name:            row.Name,
			LicenseNumber:   row.LicenseNumber,
			ProfileImageURL: row.ProfileImageURL,
			Week:            toDisplayWeekResponse(row.Week),
			Totals: TotalsResponse{
				Totals:          row.Totals,
				EarningsDisplay: earnings.FormatINR(row.Totals.Earnings),
				BestWeekDisplay: earnings.FormatINR(row.Totals.BestWeek),
			},
			Entries: toWeeklyResponses(row.Entries),
		})
	}
	return out
}

// GetPerformance builds the dashboard from every visible driver's entries.
// asOf (YYYY-MM-DD) replaces today when picking the current week.
func GetPerformance(c *gin.Context) {
	now := time.Now()
	if asOf := strings.TrimSpace(c.Query("asOf")); asOf != "" {
		d, err := week.ParseDate(asOf)
		if err != nil {
			validationFailed(c, validation.Issues{"asOf": "asOf must be a valid date (YYYY-MM-DD)"})
			return
		}
		now = d
	}

	drivers, err := config.Store.DriversWithEntries(c.Request.Context())
	if err != nil {
		storeFailed(c, err, http.StatusInternalServerError, "Failed to load performance data")
		return
	}

	dashboard := earnings.Build(drivers, week.Current(now))
	c.JSON(http.StatusOK, toPerformanceResponse(dashboard))
}
