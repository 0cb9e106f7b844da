package models

import "time"

// Device is a tracked physical asset unit.
type Device struct {
	ID                 int64     `json:"device_id"`
	DeviceTypeID       int64     `json:"device_type_id"`
	SerialNumber       string    `json:"serial_number"`
	DeviceName         *string   `json:"device_name,omitempty"`
	Model              *string   `json:"model,omitempty"`
	PurchaseID         *int64    `json:"purchase_id,omitempty"`
	IsCheckedOut       bool      `json:"is_checked_out"`
	IsRetired          bool      `json:"is_retired"`
	WarrantyExpiration *Date     `json:"warranty_expiration,omitempty"`
	Notes              *string   `json:"notes,omitempty"`
	CreatedDate        time.Time `json:"created_date"`
	LastModifiedDate   time.Time `json:"last_modified_date"`
}

// DeviceBrief is the nested device projection used in detail responses.
type DeviceBrief struct {
	ID           int64   `json:"device_id"`
	SerialNumber string  `json:"serial_number"`
	DeviceName   *string `json:"device_name,omitempty"`
	Model        *string `json:"model,omitempty"`
	IsCheckedOut bool    `json:"is_checked_out"`
	IsRetired    bool    `json:"is_retired"`
}

// DeviceDetail is a device with its type, purchase, and open assignment.
type DeviceDetail struct {
	Device
	DeviceType       DeviceTypeBrief  `json:"device_type"`
	Purchase         *PurchaseBrief   `json:"purchase,omitempty"`
	ActiveAssignment *AssignmentBrief `json:"active_assignment,omitempty"`
}

// CreateDeviceRequest represents the request body for registering a device.
type CreateDeviceRequest struct {
	DeviceTypeID       int64   `json:"device_type_id" validate:"required"`
	SerialNumber       string  `json:"serial_number" validate:"required,max=50"`
	DeviceName         *string `json:"device_name,omitempty" validate:"omitempty,max=100"`
	Model              *string `json:"model,omitempty" validate:"omitempty,max=100"`
	PurchaseID         *int64  `json:"purchase_id,omitempty"`
	WarrantyExpiration *Date   `json:"warranty_expiration,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// UpdateDeviceRequest represents a partial device update. Checkout state is
// owned by the lifecycle layer and cannot be set here; retirement goes
// through the retire endpoint.
type UpdateDeviceRequest struct {
	DeviceTypeID       Optional[int64]  `json:"device_type_id"`
	SerialNumber       Optional[string] `json:"serial_number"`
	DeviceName         Optional[string] `json:"device_name"`
	Model              Optional[string] `json:"model"`
	PurchaseID         Optional[int64]  `json:"purchase_id"`
	WarrantyExpiration Optional[Date]   `json:"warranty_expiration"`
	Notes              Optional[string] `json:"notes"`
}
