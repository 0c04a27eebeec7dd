package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
	"github.com/ricetradesolutions/riceledger/internal/engine"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
	"github.com/ricetradesolutions/riceledger/internal/service/loads"
)

// AuditReader exposes the change history of a record.
type AuditReader interface {
	ListChanges(ctx context.Context, entity, entityID string) ([]models.ChangeEntry, error)
}

// LoadsHandler exposes load intake, preview, invoicing and history.
type LoadsHandler struct {
	svc    *loads.Service
	audit  AuditReader
	logger *zap.Logger
}

// NewLoadsHandler constructs the HTTP adapter for loads.
func NewLoadsHandler(svc *loads.Service, audit AuditReader, logger *zap.Logger) *LoadsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoadsHandler{svc: svc, audit: audit, logger: logger}
}

// Create records a new load with its computed settlement.
func (h *LoadsHandler) Create(c *gin.Context) {
	var req loads.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.svc.Create(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Preview computes a settlement without persisting anything.
func (h *LoadsHandler) Preview(c *gin.Context) {
	var in engine.LoadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	settlement, err := h.svc.Preview(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settlement)
}

// Get returns one load by ID.
func (h *LoadsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	load, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, load)
}

// GetByNumber returns one load by its human-facing number.
func (h *LoadsHandler) GetByNumber(c *gin.Context) {
	load, err := h.svc.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, load)
}

// List returns loads filtered by date range, party and payment status.
func (h *LoadsHandler) List(c *gin.Context) {
	filter, ok := loadFilter(c)
	if !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Update rewrites a load's core fields and recomputes the settlement.
func (h *LoadsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req loads.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, req, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete soft-deletes a load.
func (h *LoadsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id, actor(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Invoice returns the ADD/LESS bill breakdown for a load.
func (h *LoadsHandler) Invoice(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.svc.Invoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// Profit returns the broker's profit breakdown for a load.
func (h *LoadsHandler) Profit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	profit, err := h.svc.Profit(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profit)
}

// History returns a load's audit trail, oldest change first.
func (h *LoadsHandler) History(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	entries, err := h.audit.ListChanges(c.Request.Context(), "loads", id.Hex())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// loadFilter builds the listing filter from query parameters.
func loadFilter(c *gin.Context) (mongodb.LoadFilter, bool) {
	filter := mongodb.LoadFilter{
		MillPaymentStatus:   models.PaymentStatus(c.Query("mill_payment_status")),
		FarmerPaymentStatus: models.PaymentStatus(c.Query("farmer_payment_status")),
		IncludeInactive:     c.Query("include_inactive") == "true",
	}

	var ok bool
	if filter.From, ok = parseOptionalDate(c, "from"); !ok {
		return mongodb.LoadFilter{}, false
	}
	if filter.To, ok = parseOptionalDate(c, "to"); !ok {
		return mongodb.LoadFilter{}, false
	}
	if filter.FarmerID, ok = parseOptionalID(c, "farmer_id"); !ok {
		return mongodb.LoadFilter{}, false
	}
	if filter.MillID, ok = parseOptionalID(c, "mill_id"); !ok {
		return mongodb.LoadFilter{}, false
	}
	return filter, true
}
