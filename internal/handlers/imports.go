// Package handlers holds HTTP handlers that carry their own dependencies
// instead of hanging off the main server.
package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"asset-tracker-api/pkg/importer"
)

// ImportsHandler accepts Excel workbook uploads for bulk device import.
type ImportsHandler struct {
	Pool       *pgxpool.Pool
	Log        *zap.Logger
	MaxBytes   int64
	DefaultMap string
}

func NewImportsHandler(pool *pgxpool.Pool, log *zap.Logger) *ImportsHandler {
	return &ImportsHandler{
		Pool:       pool,
		Log:        log,
		MaxBytes:   20 << 20, // 20 MB
		DefaultMap: "configs/mapping/devices.yaml",
	}
}

// UploadExcel handles multipart uploads of .xlsx device inventories.
// Form fields: file (required), dry_run, mapping, max_errors.
func (h *ImportsHandler) UploadExcel(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)

	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.writeDetail(w, http.StatusBadRequest, "content-type must be multipart/form-data")
		return
	}
	if err := r.ParseMultipartForm(h.MaxBytes); err != nil {
		h.writeDetail(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	dryRun := r.FormValue("dry_run") == "true"
	mapping := r.FormValue("mapping")
	if mapping == "" {
		mapping = h.DefaultMap
	}
	maxErrors := 50
	if v := r.FormValue("max_errors"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxErrors = n
		}
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeDetail(w, http.StatusBadRequest, "file is required: "+err.Error())
		return
	}
	defer file.Close()

	if !isXLSX(header) {
		h.writeDetail(w, http.StatusBadRequest, "only .xlsx files are accepted")
		return
	}

	sum, impErr := importer.ImportExcel(r.Context(), h.Pool, file, importer.Options{
		MappingPath: mapping,
		DryRun:      dryRun,
		MaxErrors:   maxErrors,
	})
	if impErr != nil {
		h.Log.Warn("excel import failed",
			zap.String("filename", header.Filename),
			zap.Int("errors", sum.Errors),
			zap.Error(impErr))
		h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail":  impErr.Error(),
			"summary": sum,
		})
		return
	}

	h.Log.Info("excel import complete",
		zap.String("filename", header.Filename),
		zap.Bool("dry_run", sum.DryRun),
		zap.Int("inserted", sum.Inserted),
		zap.Int("updated", sum.Updated),
		zap.Int("skipped", sum.Skipped),
		zap.Int("errors", sum.Errors))
	h.writeJSON(w, http.StatusOK, sum)
}

func isXLSX(h *multipart.FileHeader) bool {
	return strings.HasSuffix(strings.ToLower(h.Filename), ".xlsx")
}

func (h *ImportsHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Log.Error("encode response", zap.Error(err))
	}
}

func (h *ImportsHandler) writeDetail(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"detail": msg})
}
