//go:build integration

package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asset-tracker-api/internal/models"
	"asset-tracker-api/internal/testutil"
)

func reportCount[T any](t *testing.T, path string) []T {
	t.Helper()
	w := doJSON(t, "GET", path, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	return decodeAs[[]T](t, w)
}

func TestDevicesByTypeReport(t *testing.T) {
	testutil.RequireIntegration(t)

	dt := createDeviceType(t, "Printer-Report")
	createDevice(t, dt.ID, "PR-0001")
	createDevice(t, dt.ID, "PR-0002")
	retired := createDevice(t, dt.ID, "PR-0003")
	w := doJSON(t, "PUT", fmt.Sprintf("/devices/%d/retire", retired.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	rows := reportCount[models.DevicesByTypeRow](t, "/reports/devices-by-type")
	var found *models.DevicesByTypeRow
	for i := range rows {
		if rows[i].Type == "Printer-Report" {
			found = &rows[i]
		}
	}
	require.NotNil(t, found, "type missing from report")
	assert.Equal(t, int64(2), found.Count, "retired devices must not count")
}

func TestDeviceStatusReport(t *testing.T) {
	testutil.RequireIntegration(t)

	dt := createDeviceType(t, "Dock-Status")
	createDevice(t, dt.ID, "ST-0001")
	out := createDevice(t, dt.ID, "ST-0002")
	user := createUser(t, "st-holder")
	checkout(t, out.ID, user.ID)

	rows := reportCount[models.DeviceStatusRow](t, "/reports/device-status")
	counts := map[string]int64{}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	assert.GreaterOrEqual(t, counts["Available"], int64(1))
	assert.GreaterOrEqual(t, counts["Checked Out"], int64(1))
	assert.Contains(t, counts, "Retired")
}

func TestUserAssignmentsReport(t *testing.T) {
	testutil.RequireIntegration(t)

	dt := createDeviceType(t, "Phone-Load")
	heavy := createUser(t, "load-heavy")
	light := createUser(t, "load-light")

	for i := 0; i < 3; i++ {
		d := createDevice(t, dt.ID, fmt.Sprintf("LD-%04d", i))
		checkout(t, d.ID, heavy.ID)
	}
	d := createDevice(t, dt.ID, "LD-9999")
	checkout(t, d.ID, light.ID)

	// Returned assignments stay out of the count; only open ones weigh in.
	returned := createDevice(t, dt.ID, "LD-8888")
	ra := checkout(t, returned.ID, heavy.ID)
	w := doJSON(t, "PUT", fmt.Sprintf("/assignments/%d/return", ra.ID), map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)

	rows := reportCount[models.UserAssignmentsRow](t, "/reports/user-assignments?limit=100")
	byUser := map[int64]models.UserAssignmentsRow{}
	for _, r := range rows {
		byUser[r.UserID] = r
	}
	require.Contains(t, byUser, heavy.ID)
	assert.Equal(t, int64(3), byUser[heavy.ID].Count)
	assert.Equal(t, "Test User", byUser[heavy.ID].Name)

	// Rows come sorted by count, busiest first.
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Count, rows[i].Count)
	}

	limited := reportCount[models.UserAssignmentsRow](t, "/reports/user-assignments?limit=1")
	assert.Len(t, limited, 1)
}

func TestExpiringWarrantiesReport(t *testing.T) {
	testutil.RequireIntegration(t)

	dt := createDeviceType(t, "Camera-Warranty")

	within30 := models.Today().AddDays(15)
	within90 := models.Today().AddDays(60)
	past := models.Today().AddDays(-10)
	far := models.Today().AddDays(400)

	for serial, exp := range map[string]models.Date{
		"WR-0001": within30,
		"WR-0002": within90,
		"WR-0003": past,
		"WR-0004": far,
	} {
		w := doJSON(t, "POST", "/devices", map[string]any{
			"device_type_id":      dt.ID,
			"serial_number":       serial,
			"warranty_expiration": exp.String(),
		})
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	}

	serialsOf := func(rows []models.ExpiringWarrantyRow) map[string]bool {
		out := map[string]bool{}
		for _, r := range rows {
			out[r.SerialNumber] = true
		}
		return out
	}

	def := serialsOf(reportCount[models.ExpiringWarrantyRow](t, "/reports/expiring-warranties"))
	assert.True(t, def["WR-0001"])
	assert.True(t, def["WR-0002"])
	assert.False(t, def["WR-0003"], "already expired must be excluded")
	assert.False(t, def["WR-0004"], "outside default window")

	narrow := serialsOf(reportCount[models.ExpiringWarrantyRow](t, "/reports/expiring-warranties?days=30"))
	assert.True(t, narrow["WR-0001"])
	assert.False(t, narrow["WR-0002"])
}
