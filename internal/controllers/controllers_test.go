package controllers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"encho_fleet/internal/config"
	"encho_fleet/internal/controllers"
	"encho_fleet/internal/routes"
	"encho_fleet/internal/store"
	"encho_fleet/internal/store/storetest"
)

type driverBody struct {
	Driver controllers.DriverResponse `json:"driver"`
}

type entryBody struct {
	Entry controllers.WeeklyResponse `json:"entry"`
}

type entriesBody struct {
	Entries []controllers.WeeklyResponse `json:"entries"`
}

type errorBody struct {
	Error          string                      `json:"error"`
	Issues         map[string]string           `json:"issues"`
	Existing       *controllers.WeeklyResponse `json:"existing"`
	NeedsMigration bool                        `json:"needsMigration"`
}

func setupRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st := storetest.Open(t)
	config.Use(st)
	return routes.SetupRouter(io.Discard), st
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func createDriver(t *testing.T, r http.Handler, name string) controllers.DriverResponse {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/drivers", gin.H{"name": name, "phone": "9876543210", "joinDate": "2025-01-06"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body driverBody
	decode(t, rec, &body)
	return body.Driver
}

func createEntry(t *testing.T, r http.Handler, driverID, weekStart string, earnings float64, trips int) controllers.WeeklyResponse {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/weekly", gin.H{"driverId": driverID, "weekStart": weekStart, "earnings": earnings, "trips": trips})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body entryBody
	decode(t, rec, &body)
	return body.Entry
}

func storeWith(t *testing.T, c store.Convention) *store.Store {
	t.Helper()
	return storetest.OpenWith(t, c)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
