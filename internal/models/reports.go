package models

// DevicesByTypeRow is one row of the devices-by-type report.
type DevicesByTypeRow struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// DeviceStatusRow is one bucket of the device-status report.
type DeviceStatusRow struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// UserAssignmentsRow is one row of the user-assignment-load report.
type UserAssignmentsRow struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Count  int64  `json:"count"`
}

// ExpiringWarrantyRow is one row of the expiring-warranties report.
type ExpiringWarrantyRow struct {
	DeviceID           int64   `json:"device_id"`
	SerialNumber       string  `json:"serial_number"`
	DeviceName         *string `json:"device_name,omitempty"`
	Model              *string `json:"model,omitempty"`
	WarrantyExpiration Date    `json:"warranty_expiration"`
}
