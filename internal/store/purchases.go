package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"asset-tracker-api/internal/models"
)

const purchaseCols = `purchase_id, purchase_order, purchase_date, vendor, total_amount, notes,
	created_date, last_modified_date`

func scanPurchase(sc rowScanner) (*models.Purchase, error) {
	var p models.Purchase
	err := sc.Scan(&p.ID, &p.PurchaseOrder, &p.PurchaseDate, &p.Vendor, &p.TotalAmount,
		&p.Notes, &p.CreatedDate, &p.LastModifiedDate)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPurchase returns the purchase with the given id.
func (s *Store) GetPurchase(ctx context.Context, id int64) (*models.Purchase, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+purchaseCols+` FROM purchases WHERE purchase_id = $1`, id)
	p, err := scanPurchase(row)
	if err == sql.ErrNoRows {
		return nil, notFound("purchase", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// GetPurchaseByOrder returns the purchase with the given purchase order.
func (s *Store) GetPurchaseByOrder(ctx context.Context, po string) (*models.Purchase, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+purchaseCols+` FROM purchases WHERE purchase_order = $1`, po)
	p, err := scanPurchase(row)
	if err == sql.ErrNoRows {
		return nil, notFound("purchase", 0)
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase by order: %w", err)
	}
	return p, nil
}

// PurchaseFilter narrows ListPurchases.
type PurchaseFilter struct {
	Search string
	Skip   int
	Limit  int
}

// ListPurchases returns purchases ordered by purchase date, newest first.
func (s *Store) ListPurchases(ctx context.Context, f PurchaseFilter) ([]models.Purchase, error) {
	clauses := []string{}
	args := []any{}
	if f.Search != "" {
		clauses = append(clauses, "(purchase_order ILIKE $1 OR vendor ILIKE $1)")
		args = append(args, "%"+f.Search+"%")
	}

	sqlStr := `SELECT ` + purchaseCols + ` FROM purchases`
	if len(clauses) > 0 {
		sqlStr += " WHERE " + strings.Join(clauses, " AND ")
	}
	skip, limit := normalizePage(f.Skip, f.Limit)
	sqlStr += fmt.Sprintf(" ORDER BY purchase_date DESC NULLS LAST LIMIT %d OFFSET %d", limit, skip)

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []models.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

// purchaseOrderTaken only considers rows with a purchase order set; the
// column is nullable and NULLs never conflict.
func (s *Store) purchaseOrderTaken(ctx context.Context, q querier, po string, excludeID int64) (bool, error) {
	var taken bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchases WHERE purchase_order = $1 AND purchase_id <> $2)`,
		po, excludeID).Scan(&taken)
	return taken, err
}

// CreatePurchase inserts a purchase after checking purchase order uniqueness.
func (s *Store) CreatePurchase(ctx context.Context, req models.CreatePurchaseRequest) (*models.Purchase, error) {
	if req.PurchaseOrder != nil {
		if taken, err := s.purchaseOrderTaken(ctx, s.db, *req.PurchaseOrder, 0); err != nil {
			return nil, fmt.Errorf("check purchase order: %w", err)
		} else if taken {
			return nil, conflict("Purchase order already exists")
		}
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO purchases (purchase_order, purchase_date, vendor, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+purchaseCols,
		req.PurchaseOrder, req.PurchaseDate, req.Vendor, req.TotalAmount, req.Notes)
	p, err := scanPurchase(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Purchase order already exists")
		}
		return nil, fmt.Errorf("create purchase: %w", err)
	}
	return p, nil
}

// UpdatePurchase applies the supplied fields only, re-checking purchase order
// uniqueness against other rows when it changes.
func (s *Store) UpdatePurchase(ctx context.Context, id int64, req models.UpdatePurchaseRequest) (*models.Purchase, error) {
	if _, err := s.GetPurchase(ctx, id); err != nil {
		return nil, err
	}

	sets := make([]setClause, 0, 5)
	if req.PurchaseOrder.Set {
		if req.PurchaseOrder.Valid {
			if taken, err := s.purchaseOrderTaken(ctx, s.db, req.PurchaseOrder.Value, id); err != nil {
				return nil, fmt.Errorf("check purchase order: %w", err)
			} else if taken {
				return nil, conflict("Purchase order already exists")
			}
		}
		sets = append(sets, setClause{"purchase_order", argOf(req.PurchaseOrder)})
	}
	if req.PurchaseDate.Set {
		sets = append(sets, setClause{"purchase_date", argOf(req.PurchaseDate)})
	}
	if req.Vendor.Set {
		sets = append(sets, setClause{"vendor", argOf(req.Vendor)})
	}
	if req.TotalAmount.Set {
		sets = append(sets, setClause{"total_amount", argOf(req.TotalAmount)})
	}
	if req.Notes.Set {
		sets = append(sets, setClause{"notes", argOf(req.Notes)})
	}

	if len(sets) == 0 {
		return s.GetPurchase(ctx, id)
	}

	sqlStr := "UPDATE purchases SET "
	args := make([]any, 0, len(sets)+1)
	for i, set := range sets {
		if i > 0 {
			sqlStr += ", "
		}
		sqlStr += fmt.Sprintf("%s = $%d", set.col, i+1)
		args = append(args, set.val)
	}
	sqlStr += fmt.Sprintf(" WHERE purchase_id = $%d RETURNING %s", len(args)+1, purchaseCols)
	args = append(args, id)

	p, err := scanPurchase(s.db.QueryRowContext(ctx, sqlStr, args...))
	if err == sql.ErrNoRows {
		return nil, notFound("purchase", id)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("Purchase order already exists")
		}
		return nil, fmt.Errorf("update purchase: %w", err)
	}
	return p, nil
}

// GetPurchaseDetail returns the purchase plus the devices bought under it.
func (s *Store) GetPurchaseDetail(ctx context.Context, id int64) (*models.PurchaseDetail, error) {
	p, err := s.GetPurchase(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT device_id, serial_number, device_name, model, is_checked_out, is_retired
		FROM devices
		WHERE purchase_id = $1
		ORDER BY device_id`, id)
	if err != nil {
		return nil, fmt.Errorf("purchase devices: %w", err)
	}
	defer rows.Close()

	detail := &models.PurchaseDetail{Purchase: *p, Devices: []models.DeviceBrief{}}
	for rows.Next() {
		var b models.DeviceBrief
		if err := rows.Scan(&b.ID, &b.SerialNumber, &b.DeviceName, &b.Model, &b.IsCheckedOut, &b.IsRetired); err != nil {
			return nil, fmt.Errorf("scan device brief: %w", err)
		}
		detail.Devices = append(detail.Devices, b)
	}
	return detail, rows.Err()
}
