package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Serial Number", "serial number"},
		{"serial_number", "serial number"},
		{"SERIAL-NUMBER", "serial number"},
		{"  Warranty  Expiration ", "warranty expiration"},
		{"S/N", "s n"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHeader(tt.in), "input %q", tt.in)
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2026-03-15", "03/15/2026", "3/15/2026", "15-Mar-26"} {
		got, err := parseDate(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, "2026-03-15", got.Format("2006-01-02"), "input %q", in)
	}

	_, err := parseDate("next tuesday")
	assert.Error(t, err)
}

func TestLoadMapping(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "devices.yaml")
	content := `
version: 1
sheets:
  Devices:
    aliases:
      serial_number: ["Serial", "S/N"]
      device_type: ["Type"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Version)
	require.Contains(t, cfg.Sheets, "Devices")
	assert.Equal(t, []string{"Serial", "S/N"}, cfg.Sheets["Devices"].Aliases["serial_number"])
}

func TestLoadMappingErrors(t *testing.T) {
	_, err := LoadMapping(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("version: 1\n"), 0o644))
	_, err = LoadMapping(empty)
	assert.Error(t, err)
}

func TestShippedMappingParses(t *testing.T) {
	cfg, err := LoadMapping(filepath.Join("..", "..", "configs", "mapping", "devices.yaml"))
	require.NoError(t, err)
	assert.Contains(t, cfg.Sheets, "Devices")
}

func TestHeaderColumns(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Devices")
	require.NoError(t, err)

	header := sheet.AddRow()
	for _, h := range []string{"Serial", "Hostname", "Type", "Warranty Expiry", "Owner"} {
		header.AddCell().SetString(h)
	}

	aliases := map[string][]string{
		"serial_number":       {"Serial"},
		"device_name":         {"Hostname"},
		"device_type":         {"Type"},
		"warranty_expiration": {"Warranty Expiry"},
	}
	cols := headerColumns(header, aliases)

	assert.Equal(t, map[int]string{
		0: "serial_number",
		1: "device_name",
		2: "device_type",
		3: "warranty_expiration",
	}, cols)
	assert.True(t, hasField(cols, "serial_number"))
	assert.False(t, hasField(cols, "notes"))
}

func TestHeaderColumnsMatchesCanonicalNames(t *testing.T) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Devices")
	require.NoError(t, err)

	header := sheet.AddRow()
	header.AddCell().SetString("serial_number")
	header.AddCell().SetString("notes")

	cols := headerColumns(header, nil)
	assert.Equal(t, map[int]string{0: "serial_number", 1: "notes"}, cols)
}
