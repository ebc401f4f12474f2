package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"encho_fleet/internal/config"
	"encho_fleet/internal/earnings"
	"encho_fleet/internal/models"
	"encho_fleet/internal/week"
)

const (
	exportSheet       = "Weekly"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFileName    = "weekly-entries.xlsx"
	exportDefaultName = "Sheet1"
)

var exportHeader = []interface{}{"Driver", "Week Start", "Week End", "Earnings (INR)", "Trips", "Notes"}

// ExportWeekly streams the filtered weekly listing as an xlsx workbook with a
// totals row at the bottom.
func ExportWeekly(c *gin.Context) {
	filter, ok := bindWeeklyQuery(c)
	if !ok {
		return
	}

	entries, err := config.Store.ListWeekly(c.Request.Context(), filter)
	if err != nil {
		storeFailed(c, err, http.StatusInternalServerError, "Failed to fetch weekly entries")
		return
	}

	data, err := weeklyWorkbook(entries)
	if err != nil {
		logrus.WithError(err).Error("ExportWeekly: failed to build workbook")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func weeklyWorkbook(entries []models.WeeklyEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(exportDefaultName, exportSheet); err != nil {
		return nil, err
	}

	rows := make([][]interface{}, 0, len(entries)+2)
	rows = append(rows, exportHeader)

	var total float64
	var trips int
	for _, e := range entries {
		name := e.DriverID
		if e.Driver != nil {
			name = e.Driver.Name
		}
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}
		amount := earnings.Amount(e.Earnings)
		total += amount
		trips += e.Trips
		rows = append(rows, []interface{}{name, week.FormatDate(e.WeekStart), week.FormatDate(e.WeekEnd), amount, e.Trips, notes})
	}
	rows = append(rows, []interface{}{"Total", "", "", total, trips, earnings.FormatINR(total)})

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
