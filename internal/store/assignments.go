package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"asset-tracker-api/internal/models"
)

const assignmentCols = `assignment_id, device_id, user_id, checkout_date, expected_return_date,
	actual_return_date, checkout_condition, return_condition, notes, created_by,
	created_date, last_modified_date`

func scanAssignment(sc rowScanner) (*models.Assignment, error) {
	var a models.Assignment
	err := sc.Scan(
		&a.ID, &a.DeviceID, &a.UserID, &a.CheckoutDate, &a.ExpectedReturnDate,
		&a.ActualReturnDate, &a.CheckoutCondition, &a.ReturnCondition, &a.Notes,
		&a.CreatedBy, &a.CreatedDate, &a.LastModifiedDate,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAssignment returns the assignment with the given id.
func (s *Store) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+assignmentCols+` FROM device_assignments WHERE assignment_id = $1`, id)
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, notFound("assignment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return a, nil
}

// AssignmentFilter narrows ListAssignments. ActiveOnly keeps assignments
// whose device has not been returned yet.
type AssignmentFilter struct {
	DeviceID   *int64
	UserID     *int64
	ActiveOnly bool
	Skip       int
	Limit      int
}

// ListAssignments returns assignments ordered by checkout date, newest first.
func (s *Store) ListAssignments(ctx context.Context, f AssignmentFilter) ([]models.Assignment, error) {
	clauses := []string{}
	args := []any{}
	arg := 1

	if f.DeviceID != nil {
		clauses = append(clauses, fmt.Sprintf("device_id = $%d", arg))
		args = append(args, *f.DeviceID)
		arg++
	}
	if f.UserID != nil {
		clauses = append(clauses, fmt.Sprintf("user_id = $%d", arg))
		args = append(args, *f.UserID)
		arg++
	}
	if f.ActiveOnly {
		clauses = append(clauses, "actual_return_date IS NULL")
	}

	sqlStr := `SELECT ` + assignmentCols + ` FROM device_assignments`
	if len(clauses) > 0 {
		sqlStr += " WHERE " + strings.Join(clauses, " AND ")
	}
	skip, limit := normalizePage(f.Skip, f.Limit)
	sqlStr += fmt.Sprintf(" ORDER BY checkout_date DESC LIMIT %d OFFSET %d", limit, skip)

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, *a)
	}
	return assignments, rows.Err()
}

// CreateAssignment checks out a device to a user. The assignment insert and
// the device flag update commit together; the device row is locked first so
// two concurrent checkouts cannot both pass the precondition checks.
func (s *Store) CreateAssignment(ctx context.Context, req models.CreateAssignmentRequest) (*models.Assignment, error) {
	var a *models.Assignment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var checkedOut, retired bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_checked_out, is_retired FROM devices WHERE device_id = $1 FOR UPDATE`,
			req.DeviceID).Scan(&checkedOut, &retired)
		if err == sql.ErrNoRows {
			return notFound("device", req.DeviceID)
		}
		if err != nil {
			return fmt.Errorf("lock device: %w", err)
		}
		if checkedOut {
			return conflict("Device is already checked out")
		}
		if retired {
			return conflict("Cannot assign a retired device")
		}

		var active bool
		err = tx.QueryRowContext(ctx,
			`SELECT is_active FROM users WHERE user_id = $1`, req.UserID).Scan(&active)
		if err == sql.ErrNoRows {
			return notFound("user", req.UserID)
		}
		if err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if !active {
			return conflict("Cannot assign to inactive user")
		}

		if req.CreatedBy != nil {
			var exists bool
			err = tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM users WHERE user_id = $1)`, *req.CreatedBy).Scan(&exists)
			if err != nil {
				return fmt.Errorf("check creator: %w", err)
			}
			if !exists {
				return notFound("user", *req.CreatedBy)
			}
		}

		checkoutDate := models.Today()
		if req.CheckoutDate != nil {
			checkoutDate = *req.CheckoutDate
		}

		row := tx.QueryRowContext(ctx, `
			INSERT INTO device_assignments (device_id, user_id, checkout_date, expected_return_date, checkout_condition, notes, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+assignmentCols,
			req.DeviceID, req.UserID, checkoutDate, req.ExpectedReturnDate,
			req.CheckoutCondition, req.Notes, req.CreatedBy)
		a, err = scanAssignment(row)
		if err != nil {
			if isUniqueViolation(err) {
				return conflict("Device is already checked out")
			}
			return fmt.Errorf("insert assignment: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE devices SET is_checked_out = true WHERE device_id = $1`, req.DeviceID); err != nil {
			return fmt.Errorf("mark device checked out: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ReturnAssignment closes an open assignment and makes the device available
// again. Both writes commit together.
func (s *Store) ReturnAssignment(ctx context.Context, id int64, req models.ReturnRequest) (*models.Assignment, error) {
	var a *models.Assignment
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var deviceID int64
		var returned sql.NullTime
		var notes *string
		err := tx.QueryRowContext(ctx, `
			SELECT device_id, actual_return_date, notes
			FROM device_assignments WHERE assignment_id = $1 FOR UPDATE`, id).
			Scan(&deviceID, &returned, &notes)
		if err == sql.ErrNoRows {
			return notFound("assignment", id)
		}
		if err != nil {
			return fmt.Errorf("lock assignment: %w", err)
		}
		if returned.Valid {
			return conflict("Device has already been returned")
		}

		returnDate := models.Today()
		if req.ActualReturnDate != nil {
			returnDate = *req.ActualReturnDate
		}
		notes = appendReturnNotes(notes, req.Notes)

		row := tx.QueryRowContext(ctx, `
			UPDATE device_assignments
			SET actual_return_date = $1, return_condition = $2, notes = $3
			WHERE assignment_id = $4
			RETURNING `+assignmentCols,
			returnDate, req.ReturnCondition, notes, id)
		a, err = scanAssignment(row)
		if err != nil {
			return fmt.Errorf("close assignment: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE devices SET is_checked_out = false WHERE device_id = $1`, deviceID); err != nil {
			return fmt.Errorf("mark device available: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// appendReturnNotes merges return notes into the assignment's existing notes.
// With prior notes the return text is appended after a blank line; otherwise
// it becomes the sole note content.
func appendReturnNotes(existing, returnNotes *string) *string {
	if returnNotes == nil || *returnNotes == "" {
		return existing
	}
	if existing != nil && *existing != "" {
		merged := *existing + "\n\nReturn Notes: " + *returnNotes
		return &merged
	}
	merged := "Return Notes: " + *returnNotes
	return &merged
}

// GetAssignmentDetail returns the assignment with its device, holder, and
// creator projections.
func (s *Store) GetAssignmentDetail(ctx context.Context, id int64) (*models.AssignmentDetail, error) {
	a, err := s.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.AssignmentDetail{Assignment: *a}

	err = s.db.QueryRowContext(ctx, `
		SELECT device_id, serial_number, device_name, model, is_checked_out, is_retired
		FROM devices WHERE device_id = $1`, a.DeviceID).
		Scan(&detail.Device.ID, &detail.Device.SerialNumber, &detail.Device.DeviceName,
			&detail.Device.Model, &detail.Device.IsCheckedOut, &detail.Device.IsRetired)
	if err != nil {
		return nil, fmt.Errorf("assignment device brief: %w", err)
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT user_id, first_name, last_name, username, email, is_active
		FROM users WHERE user_id = $1`, a.UserID).
		Scan(&detail.User.ID, &detail.User.FirstName, &detail.User.LastName,
			&detail.User.Username, &detail.User.Email, &detail.User.IsActive)
	if err != nil {
		return nil, fmt.Errorf("assignment user brief: %w", err)
	}

	if a.CreatedBy != nil {
		var cb models.UserBrief
		err = s.db.QueryRowContext(ctx, `
			SELECT user_id, first_name, last_name, username, email, is_active
			FROM users WHERE user_id = $1`, *a.CreatedBy).
			Scan(&cb.ID, &cb.FirstName, &cb.LastName, &cb.Username, &cb.Email, &cb.IsActive)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("assignment creator brief: %w", err)
		}
		if err == nil {
			detail.CreatedByUser = &cb
		}
	}
	return detail, nil
}
