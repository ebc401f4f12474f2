package controllers

import (
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

// --- Helper Structs for Request Bodies ---

// createDriverInput is the registration form. licenceNumber is accepted as an
// alternative spelling of licenseNumber.
type createDriverInput struct {
	Name            string `json:"name" binding:"required,min=2"`
	Phone           string `json:"phone" binding:"required,phone10"`
	LicenseNumber   string `json:"licenseNumber" binding:"omitempty,min=3"`
	LicenceNumber   string `json:"licenceNumber"`
	JoinDate        string `json:"joinDate" binding:"required,ymd"`
	ProfileImageURL string `json:"profileImageUrl" binding:"omitempty,url"`
}

func (in *createDriverInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if strings.TrimSpace(in.LicenseNumber) == "" {
		in.LicenseNumber = in.LicenceNumber
	}
	in.LicenseNumber = strings.ToUpper(strings.TrimSpace(in.LicenseNumber))
	in.JoinDate = strings.TrimSpace(in.JoinDate)
	in.ProfileImageURL = strings.TrimSpace(in.ProfileImageURL)
}

// updateDriverInput holds the fields a client may change. An empty
// licenseNumber or profileImageUrl clears the value.
type updateDriverInput struct {
	Name            *string `json:"name" binding:"omitnil,min=2"`
	Phone           *string `json:"phone" binding:"omitnil,phone10"`
	LicenseNumber   *string `json:"licenseNumber"`
	LicenceNumber   *string `json:"licenceNumber"`
	JoinDate        *string `json:"joinDate" binding:"omitnil,ymd"`
	ProfileImageURL *string `json:"profileImageUrl"`
	Hidden          *bool   `json:"hidden"`
	Removed         *bool   `json:"removed"`
}

func (in *updateDriverInput) normalize() {
	if in.LicenseNumber == nil {
		in.LicenseNumber = in.LicenceNumber
	}
	trim(in.Name)
	trim(in.Phone)
	trim(in.JoinDate)
	trim(in.ProfileImageURL)
	if in.LicenseNumber != nil {
		v := strings.ToUpper(strings.TrimSpace(*in.LicenseNumber))
		in.LicenseNumber = &v
	}
}

// clearableIssues checks the fields where an empty string means "clear";
// struct tags cannot express that for pointers.
func (in updateDriverInput) clearableIssues() validation.Issues {
	issues := validation.Issues{}
	if in.LicenseNumber != nil && !validation.Check(*in.LicenseNumber, "omitempty,min=3") {
		issues["licenseNumber"] = "licenseNumber must be at least 3 characters in length"
	}
	if in.ProfileImageURL != nil && !validation.Check(*in.ProfileImageURL, "omitempty,url") {
		issues["profileImageUrl"] = "profileImageUrl must be a valid URL"
	}
	return issues
}

func (in updateDriverInput) changes() store.DriverChanges {
	ch := store.DriverChanges{
		Name:            in.Name,
		LicenseNumber:   in.LicenseNumber,
		ProfileImageURL: in.ProfileImageURL,
		Hidden:          in.Hidden,
		Removed:         in.Removed,
	}
	if in.Phone != nil {
		digits := validation.Digits(*in.Phone)
		ch.Phone = &digits
	}
	if in.JoinDate != nil {
		if d, err := week.ParseDate(*in.JoinDate); err == nil {
			ch.JoinDate = &d
		}
	}
	return ch
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// --- Driver Controller Functions ---

// ListDrivers returns every registered driver, newest first.
func ListDrivers(c *gin.Context) {
	drivers, err := config.Store.ListDrivers(c.Request.Context())
	if err != nil {
		storeFailed(c, err, http.StatusInternalServerError, "Failed to fetch drivers")
		return
	}

	out := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, toDriverResponse(d))
	}
	c.JSON(http.StatusOK, gin.H{"drivers": out})
}

// CreateDriver registers a new driver.
func CreateDriver(c *gin.Context) {
	var input createDriverInput
	if !bindJSON(c, &input) {
		return
	}

	joinDate, _ := week.ParseDate(input.JoinDate)
	driver := models.Driver{
		Name:            input.Name,
		Phone:           validation.Digits(input.Phone),
		LicenseNumber:   optional(input.LicenseNumber),
		JoinDate:        joinDate,
		ProfileImageURL: optional(input.ProfileImageURL),
	}
	if err := config.Store.CreateDriver(c.Request.Context(), &driver); err != nil {
		storeFailed(c, err, http.StatusInternalServerError, "Failed to create driver")
		return
	}

	logrus.WithFields(logrus.Fields{"driver_id": driver.ID, "name": driver.Name}).Info("driver registered")
	c.JSON(http.StatusCreated, gin.H{"driver": toDriverResponse(driver)})
}

// GetDriver returns one driver.
func GetDriver(c *gin.Context) {
	driver, err := config.Store.GetDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		storeFailed(c, err, http.StatusInternalServerError, "Failed to fetch driver")
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": toDriverResponse(*driver)})
}

// UpdateDriver applies a partial update, including hiding a driver from the
// dashboard or marking them removed.
func UpdateDriver(c *gin.Context) {
	var input updateDriverInput
	if !bindJSON(c, &input) {
		return
	}
	if issues := input.clearableIssues(); len(issues) > 0 {
		validationFailed(c, issues)
		return
	}
	changes := input.changes()
	if changes.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	driver, err := config.Store.UpdateDriver(c.Request.Context(), c.Param("id"), changes)
	if err != nil {
		storeFailed(c, err, http.StatusInternalServerError, "Failed to update driver")
		return
	}
	c.JSON(http.StatusOK, gin.H{"driver": toDriverResponse(*driver)})
}

// DeleteDriver removes a driver together with all of their weekly entries.
func DeleteDriver(c *gin.Context) {
	id := c.Param("id")
	if err := config.Store.DeleteDriver(c.Request.Context(), id); err != nil {
		storeFailed(c, err, http.StatusBadRequest, "Failed to delete driver")
		return
	}

	logrus.WithField("driver_id", id).Info("driver deleted")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
