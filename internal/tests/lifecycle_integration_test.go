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

func TestCheckoutReturnLifecycle(t *testing.T) {
	testutil.RequireIntegration(t)

	dt := createDeviceType(t, "Laptop-Lifecycle")
	device := createDevice(t, dt.ID, "LC-0001")
	user := createUser(t, "lc-holder")

	assert.False(t, device.IsCheckedOut)

	a := checkout(t, device.ID, user.ID)
	assert.Equal(t, device.ID, a.DeviceID)
	assert.Equal(t, user.ID, a.UserID)
	assert.Nil(t, a.ActualReturnDate)
	assert.Equal(t, models.Today().String(), a.CheckoutDate.String())

	// Device flag flipped by the checkout.
	w := doJSON(t, "GET", fmt.Sprintf("/devices/%d", device.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeAs[models.DeviceDetail](t, w)
	assert.True(t, detail.IsCheckedOut)
	require.NotNil(t, detail.ActiveAssignment)
	assert.Equal(t, a.ID, detail.ActiveAssignment.ID)

	// A second checkout of the same device must fail.
	w = doJSON(t, "POST", "/assignments", map[string]any{
		"device_id": device.ID,
		"user_id":   user.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Device is already checked out", errDetail(t, w))

	// Return it.
	w = doJSON(t, "PUT", fmt.Sprintf("/assignments/%d/return", a.ID), map[string]any{
		"return_condition": "good",
	})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	returned := decodeAs[models.Assignment](t, w)
	require.NotNil(t, returned.ActualReturnDate)
	assert.Equal(t, models.Today().String(), returned.ActualReturnDate.String())

	// Flag cleared, no active assignment.
	w = doJSON(t, "GET", fmt.Sprintf("/devices/%d", device.ID), nil)
	detail = decodeAs[models.DeviceDetail](t, w)
	assert.False(t, detail.IsCheckedOut)
	assert.Nil(t, detail.ActiveAssignment)

	// Device can be checked out again after return.
	checkout(t, device.ID, user.ID)
}

func TestDoubleReturnRejected(t *testing.T) {
	testutil.RequireIntegration(t)

	dt := createDeviceType(t, "Laptop-DoubleReturn")
	device := createDevice(t, dt.ID, "DR-0001")
	user := createUser(t, "dr-holder")
	a := checkout(t, device.ID, user.ID)

	w := doJSON(t, "PUT", fmt.Sprintf("/assignments/%d/return", a.ID), map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, "PUT", fmt.Sprintf("/assignments/%d/return", a.ID), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Device has already been returned", errDetail(t, w))
}

func TestReturnNotesAppended(t *testing.T) {
	testutil.RequireIntegration(t)

	dt := createDeviceType(t, "Laptop-Notes")
	device := createDevice(t, dt.ID, "RN-0001")
	user := createUser(t, "rn-holder")

	w := doJSON(t, "POST", "/assignments", map[string]any{
		"device_id": device.ID,
		"user_id":   user.ID,
		"notes":     "issued with charger",
	})
	require.Equal(t, http.StatusOK, w.Code)
	a := decodeAs[models.Assignment](t, w)

	w = doJSON(t, "PUT", fmt.Sprintf("/assignments/%d/return", a.ID), map[string]any{
		"notes": "screen scratched",
	})
	require.Equal(t, http.StatusOK, w.Code)
	returned := decodeAs[models.Assignment](t, w)
	require.NotNil(t, returned.Notes)
	assert.Equal(t, "issued with charger\n\nReturn Notes: screen scratched", *returned.Notes)

	// Without checkout notes the return notes stand alone.
	device2 := createDevice(t, dt.ID, "RN-0002")
	a2 := checkout(t, device2.ID, user.ID)
	w = doJSON(t, "PUT", fmt.Sprintf("/assignments/%d/return", a2.ID), map[string]any{
		"notes": "screen scratched",
	})
	require.Equal(t, http.StatusOK, w.Code)
	returned = decodeAs[models.Assignment](t, w)
	require.NotNil(t, returned.Notes)
	assert.Equal(t, "Return Notes: screen scratched", *returned.Notes)
}

func TestAssignmentGuards(t *testing.T) {
	testutil.RequireIntegration(t)

	dt := createDeviceType(t, "Laptop-Guards")
	user := createUser(t, "guard-holder")

	t.Run("retired device", func(t *testing.T) {
		device := createDevice(t, dt.ID, "GD-0001")
		w := doJSON(t, "PUT", fmt.Sprintf("/devices/%d/retire", device.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, "POST", "/assignments", map[string]any{
			"device_id": device.ID,
			"user_id":   user.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Cannot assign a retired device", errDetail(t, w))
	})

	t.Run("inactive user", func(t *testing.T) {
		device := createDevice(t, dt.ID, "GD-0002")
		inactive := createUser(t, "guard-inactive")
		w := doJSON(t, "PUT", fmt.Sprintf("/users/%d", inactive.ID), map[string]any{
			"is_active": false,
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, "POST", "/assignments", map[string]any{
			"device_id": device.ID,
			"user_id":   inactive.ID,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Cannot assign to inactive user", errDetail(t, w))
	})

	t.Run("missing device is 404", func(t *testing.T) {
		w := doJSON(t, "POST", "/assignments", map[string]any{
			"device_id": 999999,
			"user_id":   user.ID,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing user is 404", func(t *testing.T) {
		device := createDevice(t, dt.ID, "GD-0003")
		w := doJSON(t, "POST", "/assignments", map[string]any{
			"device_id": device.ID,
			"user_id":   999999,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRetireLifecycle(t *testing.T) {
	testutil.RequireIntegration(t)

	dt := createDeviceType(t, "Laptop-Retire")
	user := createUser(t, "retire-holder")

	t.Run("checked out device cannot be retired", func(t *testing.T) {
		device := createDevice(t, dt.ID, "RT-0001")
		a := checkout(t, device.ID, user.ID)

		w := doJSON(t, "PUT", fmt.Sprintf("/devices/%d/retire", device.ID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Cannot retire a device that is checked out", errDetail(t, w))

		// After return, retire succeeds.
		w = doJSON(t, "PUT", fmt.Sprintf("/assignments/%d/return", a.ID), map[string]any{})
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, "PUT", fmt.Sprintf("/devices/%d/retire", device.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeAs[models.Device](t, w).IsRetired)
	})

	t.Run("retire is idempotent", func(t *testing.T) {
		device := createDevice(t, dt.ID, "RT-0002")
		w := doJSON(t, "PUT", fmt.Sprintf("/devices/%d/retire", device.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, "PUT", fmt.Sprintf("/devices/%d/retire", device.ID), nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeAs[models.Device](t, w).IsRetired)
	})
}

func TestActiveOnlyAssignmentFilter(t *testing.T) {
	testutil.RequireIntegration(t)

	dt := createDeviceType(t, "Laptop-Filter")
	user := createUser(t, "filter-holder")

	d1 := createDevice(t, dt.ID, "FL-0001")
	d2 := createDevice(t, dt.ID, "FL-0002")
	a1 := checkout(t, d1.ID, user.ID)
	a2 := checkout(t, d2.ID, user.ID)

	w := doJSON(t, "PUT", fmt.Sprintf("/assignments/%d/return", a1.ID), map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, "GET", fmt.Sprintf("/assignments?user_id=%d&active_only=true", user.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	active := decodeAs[[]models.Assignment](t, w)
	require.Len(t, active, 1)
	assert.Equal(t, a2.ID, active[0].ID)

	w = doJSON(t, "GET", fmt.Sprintf("/assignments?user_id=%d", user.ID), nil)
	all := decodeAs[[]models.Assignment](t, w)
	assert.Len(t, all, 2)

	// Detail view resolves device and holder.
	w = doJSON(t, "GET", fmt.Sprintf("/assignments/%d", a2.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decodeAs[models.AssignmentDetail](t, w)
	assert.Equal(t, "FL-0002", detail.Device.SerialNumber)
	assert.Equal(t, "filter-holder", detail.User.Username)
}
