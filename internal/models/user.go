package models

import "time"

// User represents an employee who can hold device assignments.
type User struct {
	ID               int64     `json:"user_id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     *string   `json:"-"` // Never expose in JSON
	StartDate        *Date     `json:"start_date,omitempty"`
	EndDate          *Date     `json:"end_date,omitempty"`
	IsActive         bool      `json:"is_active"`
	IsAdmin          bool      `json:"is_admin"`
	CreatedDate      time.Time `json:"created_date"`
	LastModifiedDate time.Time `json:"last_modified_date"`
}

// DisplayName returns the user's full name as "First Last".
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// UserBrief is the nested user projection used in detail responses.
type UserBrief struct {
	ID        int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
}

// UserDetail is a user plus their currently open assignments.
type UserDetail struct {
	User
	ActiveAssignments []AssignmentBrief `json:"active_assignments"`
}

// CreateUserRequest represents the request body for creating a user.
type CreateUserRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Username  string  `json:"username" validate:"required,max=50"`
	Email     string  `json:"email" validate:"required,email,max=100"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
	StartDate *Date   `json:"start_date,omitempty"`
	EndDate   *Date   `json:"end_date,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
	IsAdmin   *bool   `json:"is_admin,omitempty"`
}

// UpdateUserRequest represents a partial user update. Absent fields are left
// unchanged; explicit nulls clear the nullable ones.
type UpdateUserRequest struct {
	FirstName Optional[string] `json:"first_name"`
	LastName  Optional[string] `json:"last_name"`
	Username  Optional[string] `json:"username"`
	Email     Optional[string] `json:"email"`
	Password  Optional[string] `json:"password"`
	StartDate Optional[Date]   `json:"start_date"`
	EndDate   Optional[Date]   `json:"end_date"`
	IsActive  Optional[bool]   `json:"is_active"`
	IsAdmin   Optional[bool]   `json:"is_admin"`
}

// LoginRequest represents the request body for /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents the response body for a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
