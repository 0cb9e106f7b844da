package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"asset-tracker-api/internal/models"
)

const deviceTypeCols = `device_type_id, type_name, description, refresh_cycle_months,
	created_date, last_modified_date`

func scanDeviceType(sc rowScanner) (*models.DeviceType, error) {
	var dt models.DeviceType
	err := sc.Scan(&dt.ID, &dt.TypeName, &dt.Description, &dt.RefreshCycleMonths,
		&dt.CreatedDate, &dt.LastModifiedDate)
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

// GetDeviceType returns the device type with the given id.
func (s *Store) GetDeviceType(ctx context.Context, id int64) (*models.DeviceType, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deviceTypeCols+` FROM device_types WHERE device_type_id = $1`, id)
	dt, err := scanDeviceType(row)
	if err == sql.ErrNoRows {
		return nil, notFound("device type", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get device type: %w", err)
	}
	return dt, nil
}

// GetDeviceTypeByName returns the device type with the given type name.
func (s *Store) GetDeviceTypeByName(ctx context.Context, name string) (*models.DeviceType, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deviceTypeCols+` FROM device_types WHERE type_name = $1`, name)
	dt, err := scanDeviceType(row)
	if err == sql.ErrNoRows {
		return nil, notFound("device type", 0)
	}
	if err != nil {
		return nil, fmt.Errorf("get device type by name: %w", err)
	}
	return dt, nil
}

// DeviceTypeFilter narrows ListDeviceTypes.
type DeviceTypeFilter struct {
	Search string
	Skip   int
	Limit  int
}

// ListDeviceTypes returns device types ordered by id.
func (s *Store) ListDeviceTypes(ctx context.Context, f DeviceTypeFilter) ([]models.DeviceType, error) {
	clauses := []string{}
	args := []any{}
	if f.Search != "" {
		clauses = append(clauses, "(type_name ILIKE $1 OR description ILIKE $1)")
		args = append(args, "%"+f.Search+"%")
	}

	sqlStr := `SELECT ` + deviceTypeCols + ` FROM device_types`
	if len(clauses) > 0 {
		sqlStr += " WHERE " + strings.Join(clauses, " AND ")
	}
	skip, limit := normalizePage(f.Skip, f.Limit)
	sqlStr += fmt.Sprintf(" ORDER BY device_type_id LIMIT %d OFFSET %d", limit, skip)

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list device types: %w", err)
	}
	defer rows.Close()

	types := []models.DeviceType{}
	for rows.Next() {
		dt, err := scanDeviceType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device type: %w", err)
		}
		types = append(types, *dt)
	}
	return types, rows.Err()
}

func (s *Store) typeNameTaken(ctx context.Context, q querier, name string, excludeID int64) (bool, error) {
	var taken bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM device_types WHERE type_name = $1 AND device_type_id <> $2)`,
		name, excludeID).Scan(&taken)
	return taken, err
}

// CreateDeviceType inserts a device type after checking name uniqueness.
func (s *Store) CreateDeviceType(ctx context.Context, req models.CreateDeviceTypeRequest) (*models.DeviceType, error) {
	if taken, err := s.typeNameTaken(ctx, s.db, req.TypeName, 0); err != nil {
		return nil, fmt.Errorf("check type name: %w", err)
	} else if taken {
		return nil, conflict("Device type already registered")
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO device_types (type_name, description, refresh_cycle_months)
		VALUES ($1, $2, $3)
		RETURNING `+deviceTypeCols,
		req.TypeName, req.Description, req.RefreshCycleMonths)
	dt, err := scanDeviceType(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Device type already registered")
		}
		return nil, fmt.Errorf("create device type: %w", err)
	}
	return dt, nil
}

// UpdateDeviceType applies the supplied fields only, re-checking name
// uniqueness against other rows when the name changes.
func (s *Store) UpdateDeviceType(ctx context.Context, id int64, req models.UpdateDeviceTypeRequest) (*models.DeviceType, error) {
	if _, err := s.GetDeviceType(ctx, id); err != nil {
		return nil, err
	}

	sets := make([]setClause, 0, 3)
	if req.TypeName.Set {
		if !req.TypeName.Valid {
			return nil, conflict("type_name cannot be null")
		}
		if taken, err := s.typeNameTaken(ctx, s.db, req.TypeName.Value, id); err != nil {
			return nil, fmt.Errorf("check type name: %w", err)
		} else if taken {
			return nil, conflict("Device type name already exists")
		}
		sets = append(sets, setClause{"type_name", req.TypeName.Value})
	}
	if req.Description.Set {
		sets = append(sets, setClause{"description", argOf(req.Description)})
	}
	if req.RefreshCycleMonths.Set {
		sets = append(sets, setClause{"refresh_cycle_months", argOf(req.RefreshCycleMonths)})
	}

	if len(sets) == 0 {
		return s.GetDeviceType(ctx, id)
	}

	sqlStr := "UPDATE device_types SET "
	args := make([]any, 0, len(sets)+1)
	for i, set := range sets {
		if i > 0 {
			sqlStr += ", "
		}
		sqlStr += fmt.Sprintf("%s = $%d", set.col, i+1)
		args = append(args, set.val)
	}
	sqlStr += fmt.Sprintf(" WHERE device_type_id = $%d RETURNING %s", len(args)+1, deviceTypeCols)
	args = append(args, id)

	dt, err := scanDeviceType(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err == sql.ErrNoRows {
		return nil, notFound("device type", id)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Device type name already exists")
		}
		return nil, fmt.Errorf("update device type: %w", err)
	}
	return dt, nil
}
