package models

import "time"

// DeviceType is a category of device sharing a refresh-cycle policy.
type DeviceType struct {
	ID                 int64     `json:"device_type_id"`
	TypeName           string    `json:"type_name"`
	Description        *string   `json:"description,omitempty"`
	RefreshCycleMonths *int      `json:"refresh_cycle_months,omitempty"`
	CreatedDate        time.Time `json:"created_date"`
	LastModifiedDate   time.Time `json:"last_modified_date"`
}

// DeviceTypeBrief is the nested type projection used in device details.
type DeviceTypeBrief struct {
	ID       int64  `json:"device_type_id"`
	TypeName string `json:"type_name"`
}

// CreateDeviceTypeRequest represents the request body for creating a device type.
type CreateDeviceTypeRequest struct {
	TypeName           string  `json:"type_name" validate:"required,max=50"`
	Description        *string `json:"description,omitempty" validate:"omitempty,max=255"`
	RefreshCycleMonths *int    `json:"refresh_cycle_months,omitempty" validate:"omitempty,min=1"`
}

// UpdateDeviceTypeRequest represents a partial device type update.
type UpdateDeviceTypeRequest struct {
	TypeName           Optional[string] `json:"type_name"`
	Description        Optional[string] `json:"description"`
	RefreshCycleMonths Optional[int]    `json:"refresh_cycle_months"`
}
