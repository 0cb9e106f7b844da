package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"asset-tracker-api/internal/models"
)

const deviceCols = `device_id, device_type_id, serial_number, device_name, model, purchase_id,
	is_checked_out, is_retired, warranty_expiration, notes, created_date, last_modified_date`

func scanDevice(sc rowScanner) (*models.Device, error) {
	var d models.Device
	err := sc.Scan(
		&d.ID, &d.DeviceTypeID, &d.SerialNumber, &d.DeviceName, &d.Model, &d.PurchaseID,
		&d.IsCheckedOut, &d.IsRetired, &d.WarrantyExpiration, &d.Notes,
		&d.CreatedDate, &d.LastModifiedDate,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDevice returns the device with the given id.
func (s *Store) GetDevice(ctx context.Context, id int64) (*models.Device, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deviceCols+` FROM devices WHERE device_id = $1`, id)
	d, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, notFound("device", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get device: %w", err)
	}
	return d, nil
}

// GetDeviceBySerial returns the device with the given serial number.
func (s *Store) GetDeviceBySerial(ctx context.Context, serial string) (*models.Device, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+deviceCols+` FROM devices WHERE serial_number = $1`, serial)
	d, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, notFound("device", 0)
	}
	if err != nil {
		return nil, fmt.Errorf("get device by serial: %w", err)
	}
	return d, nil
}

// DeviceFilter narrows ListDevices. Search matches serial number, device
// name, and model, case-insensitively.
type DeviceFilter struct {
	DeviceTypeID *int64
	IsCheckedOut *bool
	IsRetired    *bool
	Search       string
	Skip         int
	Limit        int
}

// ListDevices returns devices ordered by id ascending.
func (s *Store) ListDevices(ctx context.Context, f DeviceFilter) ([]models.Device, error) {
	clauses := []string{}
	args := []any{}
	arg := 1

	if f.DeviceTypeID != nil {
		clauses = append(clauses, fmt.Sprintf("device_type_id = $%d", arg))
		args = append(args, *f.DeviceTypeID)
		arg++
	}
	if f.IsCheckedOut != nil {
		clauses = append(clauses, fmt.Sprintf("is_checked_out = $%d", arg))
		args = append(args, *f.IsCheckedOut)
		arg++
	}
	if f.IsRetired != nil {
		clauses = append(clauses, fmt.Sprintf("is_retired = $%d", arg))
		args = append(args, *f.IsRetired)
		arg++
	}
	if f.Search != "" {
		clauses = append(clauses, fmt.Sprintf(
			"(serial_number ILIKE $%d OR device_name ILIKE $%d OR model ILIKE $%d)", arg, arg, arg))
		args = append(args, "%"+f.Search+"%")
		arg++
	}

	sqlStr := `SELECT ` + deviceCols + ` FROM devices`
	if len(clauses) > 0 {
		sqlStr += " WHERE " + strings.Join(clauses, " AND ")
	}
	skip, limit := normalizePage(f.Skip, f.Limit)
	sqlStr += fmt.Sprintf(" ORDER BY device_id LIMIT %d OFFSET %d", limit, skip)

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	devices := []models.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan device: %w", err)
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

func (s *Store) serialTaken(ctx context.Context, q querier, serial string, excludeID int64) (bool, error) {
	var taken bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM devices WHERE serial_number = $1 AND device_id <> $2)`,
		serial, excludeID).Scan(&taken)
	return taken, err
}

func (s *Store) deviceTypeExists(ctx context.Context, q querier, id int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM device_types WHERE device_type_id = $1)`, id).Scan(&exists)
	return exists, err
}

func (s *Store) purchaseExists(ctx context.Context, q querier, id int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchases WHERE purchase_id = $1)`, id).Scan(&exists)
	return exists, err
}

// CreateDevice registers a device after checking serial uniqueness and that
// the referenced device type and purchase exist.
func (s *Store) CreateDevice(ctx context.Context, req models.CreateDeviceRequest) (*models.Device, error) {
	if taken, err := s.serialTaken(ctx, s.db, req.SerialNumber, 0); err != nil {
		return nil, fmt.Errorf("check serial: %w", err)
	} else if taken {
		return nil, conflict("Serial number already registered")
	}
	if exists, err := s.deviceTypeExists(ctx, s.db, req.DeviceTypeID); err != nil {
		return nil, fmt.Errorf("check device type: %w", err)
	} else if !exists {
		return nil, notFound("device type", req.DeviceTypeID)
	}
	if req.PurchaseID != nil {
		if exists, err := s.purchaseExists(ctx, s.db, *req.PurchaseID); err != nil {
			return nil, fmt.Errorf("check purchase: %w", err)
		} else if !exists {
			return nil, notFound("purchase", *req.PurchaseID)
		}
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO devices (device_type_id, serial_number, device_name, model, purchase_id, warranty_expiration, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+deviceCols,
		req.DeviceTypeID, req.SerialNumber, req.DeviceName, req.Model,
		req.PurchaseID, req.WarrantyExpiration, req.Notes)
	d, err := scanDevice(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Serial number already registered")
		}
		return nil, fmt.Errorf("create device: %w", err)
	}
	return d, nil
}

// UpdateDevice applies the supplied fields only. Serial uniqueness is
// re-checked excluding the device's own row; foreign keys are re-validated
// when they change.
func (s *Store) UpdateDevice(ctx context.Context, id int64, req models.UpdateDeviceRequest) (*models.Device, error) {
	if _, err := s.GetDevice(ctx, id); err != nil {
		return nil, err
	}

	sets := make([]setClause, 0, 7)
	if req.DeviceTypeID.Set {
		if !req.DeviceTypeID.Valid {
			return nil, conflict("device_type_id cannot be null")
		}
		if exists, err := s.deviceTypeExists(ctx, s.db, req.DeviceTypeID.Value); err != nil {
			return nil, fmt.Errorf("check device type: %w", err)
		} else if !exists {
			return nil, notFound("device type", req.DeviceTypeID.Value)
		}
		sets = append(sets, setClause{"device_type_id", req.DeviceTypeID.Value})
	}
	if req.SerialNumber.Set {
		if !req.SerialNumber.Valid {
			return nil, conflict("serial_number cannot be null")
		}
		if taken, err := s.serialTaken(ctx, s.db, req.SerialNumber.Value, id); err != nil {
			return nil, fmt.Errorf("check serial: %w", err)
		} else if taken {
			return nil, conflict("Serial number already registered")
		}
		sets = append(sets, setClause{"serial_number", req.SerialNumber.Value})
	}
	if req.DeviceName.Set {
		sets = append(sets, setClause{"device_name", argOf(req.DeviceName)})
	}
	if req.Model.Set {
		sets = append(sets, setClause{"model", argOf(req.Model)})
	}
	if req.PurchaseID.Set {
		if req.PurchaseID.Valid {
			if exists, err := s.purchaseExists(ctx, s.db, req.PurchaseID.Value); err != nil {
				return nil, fmt.Errorf("check purchase: %w", err)
			} else if !exists {
				return nil, notFound("purchase", req.PurchaseID.Value)
			}
		}
		sets = append(sets, setClause{"purchase_id", argOf(req.PurchaseID)})
	}
	if req.WarrantyExpiration.Set {
		sets = append(sets, setClause{"warranty_expiration", argOf(req.WarrantyExpiration)})
	}
	if req.Notes.Set {
		sets = append(sets, setClause{"notes", argOf(req.Notes)})
	}

	if len(sets) == 0 {
		return s.GetDevice(ctx, id)
	}

	sqlStr := "UPDATE devices SET "
	args := make([]any, 0, len(sets)+1)
	for i, set := range sets {
		if i > 0 {
			sqlStr += ", "
		}
		sqlStr += fmt.Sprintf("%s = $%d", set.col, i+1)
		args = append(args, set.val)
	}
	sqlStr += fmt.Sprintf(" WHERE device_id = $%d RETURNING %s", len(args)+1, deviceCols)
	args = append(args, id)

	d, err := scanDevice(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err == sql.ErrNoRows {
		return nil, notFound("device", id)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Serial number already registered")
		}
		return nil, fmt.Errorf("update device: %w", err)
	}
	return d, nil
}

// RetireDevice moves a device into the terminal retired state. A checked-out
// device cannot be retired; retiring an already retired device succeeds and
// leaves it retired.
func (s *Store) RetireDevice(ctx context.Context, id int64) (*models.Device, error) {
	var d *models.Device
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var checkedOut bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_checked_out FROM devices WHERE device_id = $1 FOR UPDATE`, id).Scan(&checkedOut)
		if err == sql.ErrNoRows {
			return notFound("device", id)
		}
		if err != nil {
			return fmt.Errorf("lock device: %w", err)
		}
		if checkedOut {
			return conflict("Cannot retire a device that is checked out")
		}

		row := tx.QueryRowContext(ctx,
			`UPDATE devices SET is_retired = true WHERE device_id = $1 RETURNING `+deviceCols, id)
		d, err = scanDevice(row)
		if err != nil {
			return fmt.Errorf("retire device: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetDeviceDetail returns the device with its type, purchase, and currently
// open assignment, when any.
func (s *Store) GetDeviceDetail(ctx context.Context, id int64) (*models.DeviceDetail, error) {
	d, err := s.GetDevice(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.DeviceDetail{Device: *d}

	err = s.db.QueryRowContext(ctx,
		`SELECT device_type_id, type_name FROM device_types WHERE device_type_id = $1`,
		d.DeviceTypeID).Scan(&detail.DeviceType.ID, &detail.DeviceType.TypeName)
	if err != nil {
		return nil, fmt.Errorf("device type brief: %w", err)
	}

	if d.PurchaseID != nil {
		var pb models.PurchaseBrief
		err = s.db.QueryRowContext(ctx,
			`SELECT purchase_id, purchase_order, purchase_date, vendor FROM purchases WHERE purchase_id = $1`,
			*d.PurchaseID).Scan(&pb.ID, &pb.PurchaseOrder, &pb.PurchaseDate, &pb.Vendor)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("purchase brief: %w", err)
		}
		if err == nil {
			detail.Purchase = &pb
		}
	}

	var ab models.AssignmentBrief
	err = s.db.QueryRowContext(ctx, `
		SELECT assignment_id, checkout_date, expected_return_date, actual_return_date
		FROM device_assignments
		WHERE device_id = $1 AND actual_return_date IS NULL`, id).
		Scan(&ab.ID, &ab.CheckoutDate, &ab.ExpectedReturnDate, &ab.ActualReturnDate)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("active assignment brief: %w", err)
	}
	if err == nil {
		detail.ActiveAssignment = &ab
	}
	return detail, nil
}
