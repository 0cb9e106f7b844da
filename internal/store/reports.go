package store

import (
	"context"
	"fmt"

	"asset-tracker-api/internal/models"
)

// DevicesByTypeReport counts non-retired devices grouped by type name.
func (s *Store) DevicesByTypeReport(ctx context.Context) ([]models.DevicesByTypeRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT dt.type_name, COUNT(d.device_id)
		FROM device_types dt
		JOIN devices d ON d.device_type_id = dt.device_type_id
		WHERE d.is_retired = false
		GROUP BY dt.type_name
		ORDER BY dt.type_name`)
	if err != nil {
		return nil, fmt.Errorf("devices by type report: %w", err)
	}
	defer rows.Close()

	out := []models.DevicesByTypeRow{}
	for rows.Next() {
		var r models.DevicesByTypeRow
		if err := rows.Scan(&r.Type, &r.Count); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeviceStatusReport returns the three fixed buckets: Available, Checked
// Out, Retired.
func (s *Store) DeviceStatusReport(ctx context.Context) ([]models.DeviceStatusRow, error) {
	var available, checkedOut, retired int64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE NOT is_checked_out AND NOT is_retired),
			COUNT(*) FILTER (WHERE is_checked_out AND NOT is_retired),
			COUNT(*) FILTER (WHERE is_retired)
		FROM devices`).Scan(&available, &checkedOut, &retired)
	if err != nil {
		return nil, fmt.Errorf("device status report: %w", err)
	}
	return []models.DeviceStatusRow{
		{Status: "Available", Count: available},
		{Status: "Checked Out", Count: checkedOut},
		{Status: "Retired", Count: retired},
	}, nil
}

// UserAssignmentsReport returns the top users by open assignment count.
func (s *Store) UserAssignmentsReport(ctx context.Context, limit int) ([]models.UserAssignmentsRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.user_id, u.first_name, u.last_name, COUNT(a.assignment_id)
		FROM users u
		JOIN device_assignments a ON a.user_id = u.user_id
		WHERE a.actual_return_date IS NULL
		GROUP BY u.user_id, u.first_name, u.last_name
		ORDER BY COUNT(a.assignment_id) DESC, u.user_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("user assignments report: %w", err)
	}
	defer rows.Close()

	out := []models.UserAssignmentsRow{}
	for rows.Next() {
		var r models.UserAssignmentsRow
		var first, last string
		if err := rows.Scan(&r.UserID, &first, &last, &r.Count); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		r.Name = first + " " + last
		out = append(out, r)
	}
	return out, rows.Err()
}

// ExpiringWarrantiesReport lists non-retired devices whose warranty expires
// within [today, today+days], soonest first.
func (s *Store) ExpiringWarrantiesReport(ctx context.Context, days int) ([]models.ExpiringWarrantyRow, error) {
	if days <= 0 {
		days = 90
	}
	today := models.Today()
	until := today.AddDays(days)

	rows, err := s.db.QueryContext(ctx, `
		SELECT device_id, serial_number, device_name, model, warranty_expiration
		FROM devices
		WHERE is_retired = false
		  AND warranty_expiration BETWEEN $1 AND $2
		ORDER BY warranty_expiration`, today, until)
	if err != nil {
		return nil, fmt.Errorf("expiring warranties report: %w", err)
	}
	defer rows.Close()

	out := []models.ExpiringWarrantyRow{}
	for rows.Next() {
		var r models.ExpiringWarrantyRow
		if err := rows.Scan(&r.DeviceID, &r.SerialNumber, &r.DeviceName, &r.Model, &r.WarrantyExpiration); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
