package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/service/reporting"
)

// ReportsHandler exposes the read-only aggregates.
type ReportsHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
	now    func() time.Time
}

// NewReportsHandler constructs the HTTP adapter for reports.
func NewReportsHandler(svc *reporting.Service, logger *zap.Logger, now func() time.Time) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &ReportsHandler{svc: svc, logger: logger, now: now}
}

// DailySummary aggregates one calendar day, defaulting to today.
func (h *ReportsHandler) DailySummary(c *gin.Context) {
	day := h.now()
	if raw, ok := parseOptionalDate(c, "date"); !ok {
		return
	} else if raw != nil {
		day = *raw
	}

	summary, err := h.svc.DailySummary(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// OutstandingMills reports pending receivables per mill.
func (h *ReportsHandler) OutstandingMills(c *gin.Context) {
	rows, err := h.svc.OutstandingByMill(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// OutstandingFarmers reports pending payables per farmer.
func (h *ReportsHandler) OutstandingFarmers(c *gin.Context) {
	rows, err := h.svc.OutstandingByFarmer(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Profit aggregates per-load profit over an inclusive date range. Defaults
// to the current month when no range is given.
func (h *ReportsHandler) Profit(c *gin.Context) {
	fromPtr, ok := parseOptionalDate(c, "from")
	if !ok {
		return
	}
	toPtr, ok := parseOptionalDate(c, "to")
	if !ok {
		return
	}

	now := h.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now
	if fromPtr != nil {
		from = *fromPtr
	}
	if toPtr != nil {
		to = toPtr.Add(24*time.Hour - time.Nanosecond)
	}

	report, err := h.svc.ProfitReport(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
