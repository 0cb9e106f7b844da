// Package importer loads device inventories from Excel workbooks.
//
// Workbook sheets are matched against a YAML mapping file that lists the
// accepted header aliases for each device field. Rows are keyed on serial
// number: known serials are updated, new ones inserted. A dry run executes
// the full import inside a transaction and rolls it back.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"
)

// Options configures a single import run.
type Options struct {
	MappingPath string // default "configs/mapping/devices.yaml"
	DryRun      bool
	MaxErrors   int // default 50
}

// RowError describes a row that could not be imported.
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// SheetSummary holds per-sheet import counts.
type SheetSummary struct {
	Name     string     `json:"name"`
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"error_samples,omitempty"`
}

// Summary holds the overall import counts.
type Summary struct {
	Inserted int            `json:"inserted"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Errors   int            `json:"errors"`
	Sheets   []SheetSummary `json:"sheets"`
	DryRun   bool           `json:"dry_run"`
}

// MappingConfig is the YAML mapping file. Sheet names not listed here are
// skipped. Aliases map canonical device fields to the spreadsheet headers
// that may carry them; the canonical name itself always matches.
type MappingConfig struct {
	Version int                    `yaml:"version"`
	Sheets  map[string]SheetConfig `yaml:"sheets"`
}

type SheetConfig struct {
	Aliases map[string][]string `yaml:"aliases"`
}

// Device fields an import row may carry. serial_number is the row key and,
// together with device_type, the only required field; device_type is
// resolved (or created) by name.
var deviceFields = []string{
	"serial_number",
	"device_name",
	"model",
	"device_type",
	"warranty_expiration",
	"notes",
}

// LoadMapping reads and parses a mapping file.
func LoadMapping(path string) (*MappingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}
	var cfg MappingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse mapping file: %w", err)
	}
	if len(cfg.Sheets) == 0 {
		return nil, errors.New("mapping file defines no sheets")
	}
	return &cfg, nil
}

// ImportExcel reads an xlsx workbook and upserts its device rows.
// The whole run happens in one transaction, with each row in its own
// savepoint; a dry run rolls the transaction back.
func ImportExcel(ctx context.Context, db *pgxpool.Pool, r io.Reader, opts Options) (Summary, error) {
	summary := Summary{
		DryRun: opts.DryRun,
		Sheets: []SheetSummary{},
	}

	if opts.MappingPath == "" {
		opts.MappingPath = "configs/mapping/devices.yaml"
	}
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}

	mapping, err := LoadMapping(opts.MappingPath)
	if err != nil {
		return summary, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("read workbook: %w", err)
	}
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("open workbook: %w", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return summary, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	typeCache := map[string]int64{}

	for _, sheet := range wb.Sheets {
		cfg, ok := mapping.Sheets[sheet.Name]
		if !ok {
			continue
		}

		ss := processSheet(ctx, tx, sheet, cfg, typeCache, opts.MaxErrors-summary.Errors)
		summary.Sheets = append(summary.Sheets, ss)
		summary.Inserted += ss.Inserted
		summary.Updated += ss.Updated
		summary.Skipped += ss.Skipped
		summary.Errors += ss.Errors

		if summary.Errors >= opts.MaxErrors {
			return summary, fmt.Errorf("too many errors (%d), aborting import", summary.Errors)
		}
	}

	if !opts.DryRun {
		if err := tx.Commit(ctx); err != nil {
			return summary, fmt.Errorf("commit import transaction: %w", err)
		}
	}
	return summary, nil
}

func processSheet(ctx context.Context, tx pgx.Tx, sheet *xlsx.Sheet, cfg SheetConfig, typeCache map[string]int64, maxErrors int) SheetSummary {
	ss := SheetSummary{Name: sheet.Name}

	header, err := sheet.Row(0)
	if err != nil {
		ss.Errors++
		ss.Samples = append(ss.Samples, RowError{Sheet: sheet.Name, Row: 1, Message: "missing header row"})
		return ss
	}
	cols := headerColumns(header, cfg.Aliases)
	if !hasField(cols, "serial_number") {
		ss.Errors++
		ss.Samples = append(ss.Samples, RowError{Sheet: sheet.Name, Row: 1, Message: "no serial number column found"})
		return ss
	}

	for rowIdx := 1; ; rowIdx++ {
		row, err := sheet.Row(rowIdx)
		if err != nil {
			break
		}

		values := map[string]string{}
		for colIdx, field := range cols {
			cell := row.GetCell(colIdx)
			if cell == nil {
				continue
			}
			if v := strings.TrimSpace(cell.String()); v != "" {
				values[field] = v
			}
		}
		if len(values) == 0 {
			ss.Skipped++
			continue
		}

		inserted, err := importRowTx(ctx, tx, values, typeCache)
		if err != nil {
			ss.Errors++
			if len(ss.Samples) < 10 {
				ss.Samples = append(ss.Samples, RowError{Sheet: sheet.Name, Row: rowIdx + 1, Message: err.Error()})
			}
			if ss.Errors >= maxErrors {
				break
			}
			continue
		}
		if inserted {
			ss.Inserted++
		} else {
			ss.Updated++
		}
	}
	return ss
}

// importRowTx runs one row inside a savepoint so a statement failure does
// not abort the surrounding transaction for the remaining rows.
func importRowTx(ctx context.Context, tx pgx.Tx, values map[string]string, typeCache map[string]int64) (bool, error) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin savepoint: %w", err)
	}
	inserted, err := importRow(ctx, sp, values, typeCache)
	if err != nil {
		_ = sp.Rollback(ctx)
		// A device type created inside the savepoint is rolled back with
		// it, so cached ids can no longer be trusted.
		clear(typeCache)
		return false, err
	}
	if err := sp.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit savepoint: %w", err)
	}
	return inserted, nil
}

// headerColumns maps column indexes to canonical device fields, matching
// either the field name itself or one of its configured aliases.
func headerColumns(header *xlsx.Row, aliases map[string][]string) map[int]string {
	byHeader := map[string]string{}
	for _, field := range deviceFields {
		byHeader[normalizeHeader(field)] = field
		for _, alias := range aliases[field] {
			byHeader[normalizeHeader(alias)] = field
		}
	}

	cols := map[int]string{}
	for colIdx := 0; ; colIdx++ {
		cell := header.GetCell(colIdx)
		if cell == nil {
			break
		}
		name := normalizeHeader(cell.String())
		if name == "" {
			continue
		}
		if field, ok := byHeader[name]; ok {
			cols[colIdx] = field
		}
	}
	return cols
}

// normalizeHeader folds case and collapses separators so that
// "Serial Number", "serial_number" and "SERIAL-NUMBER" all compare equal.
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ", "/", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func hasField(cols map[int]string, field string) bool {
	for _, f := range cols {
		if f == field {
			return true
		}
	}
	return false
}

func importRow(ctx context.Context, tx pgx.Tx, values map[string]string, typeCache map[string]int64) (bool, error) {
	serial, ok := values["serial_number"]
	if !ok {
		return false, errors.New("serial number is empty")
	}
	typeName, ok := values["device_type"]
	if !ok {
		return false, errors.New("device type is empty")
	}

	typeID, err := ensureDeviceType(ctx, tx, typeCache, typeName)
	if err != nil {
		return false, err
	}

	var warranty *time.Time
	if v, ok := values["warranty_expiration"]; ok {
		t, err := parseDate(v)
		if err != nil {
			return false, err
		}
		warranty = &t
	}

	name := optString(values, "device_name")
	model := optString(values, "model")
	notes := optString(values, "notes")

	var deviceID int64
	err = tx.QueryRow(ctx, `SELECT device_id FROM devices WHERE serial_number = $1`, serial).Scan(&deviceID)
	switch {
	case err == nil:
		_, err = tx.Exec(ctx, `
			UPDATE devices
			SET device_type_id = $1,
			    device_name = COALESCE($2, device_name),
			    model = COALESCE($3, model),
			    warranty_expiration = COALESCE($4, warranty_expiration),
			    notes = COALESCE($5, notes)
			WHERE device_id = $6`,
			typeID, name, model, warranty, notes, deviceID)
		if err != nil {
			return false, fmt.Errorf("update device %s: %w", serial, err)
		}
		return false, nil
	case errors.Is(err, pgx.ErrNoRows):
		_, err = tx.Exec(ctx, `
			INSERT INTO devices (serial_number, device_type_id, device_name, model, warranty_expiration, notes)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			serial, typeID, name, model, warranty, notes)
		if err != nil {
			return false, fmt.Errorf("insert device %s: %w", serial, err)
		}
		return true, nil
	default:
		return false, fmt.Errorf("look up device %s: %w", serial, err)
	}
}

// ensureDeviceType resolves a device type by name, creating it on first use.
// Lookups are case-insensitive so "laptop" and "Laptop" share a type.
func ensureDeviceType(ctx context.Context, tx pgx.Tx, cache map[string]int64, name string) (int64, error) {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	var id int64
	err := tx.QueryRow(ctx, `SELECT device_type_id FROM device_types WHERE lower(type_name) = $1`, key).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx, `INSERT INTO device_types (type_name) VALUES ($1) RETURNING device_type_id`, name).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve device type %q: %w", name, err)
	}

	cache[key] = id
	return id, nil
}

func optString(values map[string]string, field string) *string {
	if v, ok := values[field]; ok {
		return &v
	}
	return nil
}

var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"2-Jan-06",
}

func parseDate(value string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
