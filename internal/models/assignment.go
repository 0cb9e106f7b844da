package models

import "time"

// Assignment is a checkout record linking a device to a holding user. An
// assignment with no actual return date is the device's open checkout.
type Assignment struct {
	ID                 int64     `json:"assignment_id"`
	DeviceID           int64     `json:"device_id"`
	UserID             int64     `json:"user_id"`
	CheckoutDate       Date      `json:"checkout_date"`
	ExpectedReturnDate *Date     `json:"expected_return_date,omitempty"`
	ActualReturnDate   *Date     `json:"actual_return_date,omitempty"`
	CheckoutCondition  *string   `json:"checkout_condition,omitempty"`
	ReturnCondition    *string   `json:"return_condition,omitempty"`
	Notes              *string   `json:"notes,omitempty"`
	CreatedBy          *int64    `json:"created_by,omitempty"`
	CreatedDate        time.Time `json:"created_date"`
	LastModifiedDate   time.Time `json:"last_modified_date"`
}

// IsActive reports whether the device is still out under this assignment.
func (a *Assignment) IsActive() bool {
	return a.ActualReturnDate == nil
}

// AssignmentBrief is the nested assignment projection used in detail responses.
type AssignmentBrief struct {
	ID                 int64 `json:"assignment_id"`
	CheckoutDate       Date  `json:"checkout_date"`
	ExpectedReturnDate *Date `json:"expected_return_date,omitempty"`
	ActualReturnDate   *Date `json:"actual_return_date,omitempty"`
}

// AssignmentDetail is an assignment with its device, holder, and creator.
type AssignmentDetail struct {
	Assignment
	Device        DeviceBrief `json:"device"`
	User          UserBrief   `json:"user"`
	CreatedByUser *UserBrief  `json:"created_by_user,omitempty"`
}

// CreateAssignmentRequest represents the request body for checking out a
// device. CheckoutDate defaults to today when omitted.
type CreateAssignmentRequest struct {
	DeviceID           int64   `json:"device_id" validate:"required"`
	UserID             int64   `json:"user_id" validate:"required"`
	CheckoutDate       *Date   `json:"checkout_date,omitempty"`
	ExpectedReturnDate *Date   `json:"expected_return_date,omitempty"`
	CheckoutCondition  *string `json:"checkout_condition,omitempty" validate:"omitempty,max=255"`
	Notes              *string `json:"notes,omitempty"`
	CreatedBy          *int64  `json:"created_by,omitempty"`
}

// ReturnRequest represents the request body for returning a device.
// ActualReturnDate defaults to today when omitted.
type ReturnRequest struct {
	ActualReturnDate *Date   `json:"actual_return_date,omitempty"`
	ReturnCondition  *string `json:"return_condition,omitempty" validate:"omitempty,max=255"`
	Notes            *string `json:"notes,omitempty"`
}
