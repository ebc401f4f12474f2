package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"encho_fleet/internal/config"
	"encho_fleet/internal/models"
	"encho_fleet/internal/store"
	"encho_fleet/internal/validation"
	"encho_fleet/internal/week"
)

// DriverResponse is the API shape of a driver. Dates go out as YYYY-MM-DD.
type DriverResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	LicenseNumber   *string    `json:"licenseNumber"`
	JoinDate        string     `json:"joinDate"`
	ProfileImageURL *string    `json:"profileImageUrl"`
	Hidden          bool       `json:"hidden"`
	RemovedAt       *time.Time `json:"removedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func toDriverResponse(d models.Driver) DriverResponse {
	return DriverResponse{
		ID:              d.ID,
		Name:            d.Name,
		Phone:           d.Phone,
		LicenseNumber:   d.LicenseNumber,
		JoinDate:        week.FormatDate(d.JoinDate),
		ProfileImageURL: d.ProfileImageURL,
		Hidden:          d.Hidden,
		RemovedAt:       d.RemovedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// WeeklyResponse is the API shape of a weekly entry.
type WeeklyResponse struct {
	ID        uint              `json:"id"`
	DriverID  string            `json:"driverId"`
	WeekStart string            `json:"weekStart"`
	WeekEnd   string            `json:"weekEnd"`
	Earnings  float64           `json:"earnings"`
	Trips     int               `json:"trips"`
	Notes     *string           `json:"notes"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Driver    *models.DriverRef `json:"driver,omitempty"`
}

func toWeeklyResponse(e models.WeeklyEntry) WeeklyResponse {
	return WeeklyResponse{
		ID:        e.ID,
		DriverID:  e.DriverID,
		WeekStart: week.FormatDate(e.WeekStart),
		WeekEnd:   week.FormatDate(e.WeekEnd),
		Earnings:  e.Earnings,
		Trips:     e.Trips,
		Notes:     e.Notes,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		Driver:    e.Driver,
	}
}

func toWeeklyResponses(entries []models.WeeklyEntry) []WeeklyResponse {
	out := make([]WeeklyResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toWeeklyResponse(e))
	}
	return out
}

// normalizer is implemented by payloads that trim or reshape their fields
// before validation runs.
type normalizer interface {
	normalize()
}

// maxBodyBytes caps request bodies; the largest form is a few hundred bytes.
const maxBodyBytes = 1 << 20

// bindJSON decodes a single JSON object from the body into dst, normalizes it
// and validates it. It writes the error response itself and reports whether
// the handler may go on.
func bindJSON(c *gin.Context, dst normalizer) bool {
	validation.Setup()
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return false
		}
		if issues, ok := validation.Describe(err); ok {
			validationFailed(c, issues)
			return false
		}
		if errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Request body is required"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: unexpected data after the JSON object"})
		return false
	}
	dst.normalize()
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		issues, ok := validation.Describe(err)
		if !ok {
			issues = validation.Issues{"body": err.Error()}
		}
		validationFailed(c, issues)
		return false
	}
	return true
}

func validationFailed(c *gin.Context, issues validation.Issues) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "issues": issues})
}

// storeFailed maps a store error onto a JSON error response. status is used
// for failures that are neither a missing record nor a schema mismatch.
func storeFailed(c *gin.Context, err error, status int, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case store.IsSchemaMismatch(err):
		logrus.WithError(err).Error(msg + ": schema mismatch")
		body := gin.H{
			"error":          msg + ": " + err.Error(),
			"needsMigration": true,
			"hint":           "The weekly table does not match the configured schema. Run the migrations or set WEEKLY_SCHEMA to the convention the database uses.",
		}
		if config.Store != nil {
			body["weeklySchema"] = config.Store.Convention()
		}
		c.JSON(http.StatusInternalServerError, body)
	default:
		logrus.WithError(err).Error(msg)
		c.JSON(status, gin.H{"error": msg + ": " + err.Error()})
	}
}

func parseEntryID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return 0, false
	}
	return uint(id), true
}
