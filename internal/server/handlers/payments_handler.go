package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/service/payments"
)

// PaymentsHandler exposes mill receipts, farmer payouts and advances.
type PaymentsHandler struct {
	svc    *payments.Service
	logger *zap.Logger
}

// NewPaymentsHandler constructs the HTTP adapter for payments.
func NewPaymentsHandler(svc *payments.Service, logger *zap.Logger) *PaymentsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentsHandler{svc: svc, logger: logger}
}

// CreateMillPayment records a mill receipt and allocates it FIFO.
func (h *PaymentsHandler) CreateMillPayment(c *gin.Context) {
	var req payments.MillPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.svc.RecordMillPayment(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListMillPayments returns mill receipts, optionally scoped to one mill.
func (h *PaymentsHandler) ListMillPayments(c *gin.Context) {
	millID, ok := parseOptionalID(c, "mill_id")
	if !ok {
		return
	}
	result, err := h.svc.ListMillPayments(c.Request.Context(), millID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateFarmerPayout pays a farmer against one load, applying any eligible
// early-payment credit cut.
func (h *PaymentsHandler) CreateFarmerPayout(c *gin.Context) {
	var req payments.FarmerPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.svc.RecordFarmerPayout(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListFarmerPayouts returns payouts, optionally scoped to one farmer.
func (h *PaymentsHandler) ListFarmerPayouts(c *gin.Context) {
	farmerID, ok := parseOptionalID(c, "farmer_id")
	if !ok {
		return
	}
	result, err := h.svc.ListFarmerPayouts(c.Request.Context(), farmerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// PreviewCreditCut shows the cut a farmer would receive if paid on a date.
func (h *PaymentsHandler) PreviewCreditCut(c *gin.Context) {
	loadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var paymentDate time.Time
	if raw, ok := parseOptionalDate(c, "payment_date"); !ok {
		return
	} else if raw != nil {
		paymentDate = *raw
	}

	result, err := h.svc.PreviewCreditCut(c.Request.Context(), loadID, paymentDate)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateAdvance appends an advance to the farmer's ledger history.
func (h *PaymentsHandler) CreateAdvance(c *gin.Context) {
	var req payments.AdvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	created, err := h.svc.RecordAdvance(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListAdvances returns advances, optionally scoped to one farmer.
func (h *PaymentsHandler) ListAdvances(c *gin.Context) {
	farmerID, ok := parseOptionalID(c, "farmer_id")
	if !ok {
		return
	}
	result, err := h.svc.ListAdvances(c.Request.Context(), farmerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
