package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/service/export"
)

// ExportHandler serves the ledger in portable formats.
type ExportHandler struct {
	svc    *export.Service
	logger *zap.Logger
}

// NewExportHandler constructs the HTTP adapter for exports.
func NewExportHandler(svc *export.Service, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{svc: svc, logger: logger}
}

// LoadsCSV downloads the matching loads as CSV.
func (h *ExportHandler) LoadsCSV(c *gin.Context) {
	filter, ok := loadFilter(c)
	if !ok {
		return
	}

	data, err := h.svc.LoadsCSV(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="loads.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// LoadsJSON downloads the matching loads as JSON.
func (h *ExportHandler) LoadsJSON(c *gin.Context) {
	filter, ok := loadFilter(c)
	if !ok {
		return
	}

	data, err := h.svc.LoadsJSON(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="loads.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// LoadsXLSX downloads the matching loads as a workbook.
func (h *ExportHandler) LoadsXLSX(c *gin.Context) {
	filter, ok := loadFilter(c)
	if !ok {
		return
	}

	data, err := h.svc.LoadsXLSX(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="loads.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Backup downloads a full JSON snapshot of the ledger.
func (h *ExportHandler) Backup(c *gin.Context) {
	data, err := h.svc.BackupJSON(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="ledger-backup.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// PushToSheet mirrors the matching loads into the configured spreadsheet.
func (h *ExportHandler) PushToSheet(c *gin.Context) {
	filter, ok := loadFilter(c)
	if !ok {
		return
	}

	pushed, err := h.svc.PushLoadsToSheet(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, export.ErrMirrorDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": pushed, "message": fmt.Sprintf("%d rows mirrored", pushed)})
}
