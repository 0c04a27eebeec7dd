package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
)

// MastersHandler exposes CRUD over farmers, mills and vehicles.
type MastersHandler struct {
	store  mongodb.MasterStore
	logger *zap.Logger
}

// NewMastersHandler constructs the HTTP adapter for master data.
func NewMastersHandler(store mongodb.MasterStore, logger *zap.Logger) *MastersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MastersHandler{store: store, logger: logger}
}

func includeInactive(c *gin.Context) bool {
	return c.Query("include_inactive") == "true"
}

// CreateFarmer registers a new farmer.
func (h *MastersHandler) CreateFarmer(c *gin.Context) {
	var farmer models.Farmer
	if err := c.ShouldBindJSON(&farmer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(farmer.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "name is required"})
		return
	}

	created, err := h.store.AddFarmer(c.Request.Context(), farmer, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetFarmer returns one farmer by ID.
func (h *MastersHandler) GetFarmer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	farmer, err := h.store.GetFarmer(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, farmer)
}

// ListFarmers returns active farmers, or all with include_inactive=true.
func (h *MastersHandler) ListFarmers(c *gin.Context) {
	farmers, err := h.store.ListFarmers(c.Request.Context(), includeInactive(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, farmers)
}

// UpdateFarmer replaces a farmer's editable fields.
func (h *MastersHandler) UpdateFarmer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var farmer models.Farmer
	if err := c.ShouldBindJSON(&farmer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	farmer.ID = id

	updated, err := h.store.UpdateFarmer(c.Request.Context(), farmer, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteFarmer soft-deletes a farmer. Loads referencing them are untouched.
func (h *MastersHandler) DeleteFarmer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.SoftDeleteFarmer(c.Request.Context(), id, actor(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateMill registers a new mill.
func (h *MastersHandler) CreateMill(c *gin.Context) {
	var mill models.Mill
	if err := c.ShouldBindJSON(&mill); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(mill.Name) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "name is required"})
		return
	}

	created, err := h.store.AddMill(c.Request.Context(), mill, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetMill returns one mill by ID.
func (h *MastersHandler) GetMill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	mill, err := h.store.GetMill(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mill)
}

// ListMills returns active mills, or all with include_inactive=true.
func (h *MastersHandler) ListMills(c *gin.Context) {
	mills, err := h.store.ListMills(c.Request.Context(), includeInactive(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, mills)
}

// UpdateMill replaces a mill's editable fields.
func (h *MastersHandler) UpdateMill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var mill models.Mill
	if err := c.ShouldBindJSON(&mill); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	mill.ID = id

	updated, err := h.store.UpdateMill(c.Request.Context(), mill, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMill soft-deletes a mill.
func (h *MastersHandler) DeleteMill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.SoftDeleteMill(c.Request.Context(), id, actor(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateVehicle registers a new vehicle. Numbers are unique.
func (h *MastersHandler) CreateVehicle(c *gin.Context) {
	var vehicle models.Vehicle
	if err := c.ShouldBindJSON(&vehicle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(vehicle.Number) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "number is required"})
		return
	}

	created, err := h.store.AddVehicle(c.Request.Context(), vehicle, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetVehicle returns one vehicle by ID.
func (h *MastersHandler) GetVehicle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	vehicle, err := h.store.GetVehicle(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// ListVehicles returns active vehicles, or all with include_inactive=true.
func (h *MastersHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.store.ListVehicles(c.Request.Context(), includeInactive(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// UpdateVehicle replaces a vehicle's editable fields.
func (h *MastersHandler) UpdateVehicle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var vehicle models.Vehicle
	if err := c.ShouldBindJSON(&vehicle); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	vehicle.ID = id

	updated, err := h.store.UpdateVehicle(c.Request.Context(), vehicle, actor(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteVehicle soft-deletes a vehicle.
func (h *MastersHandler) DeleteVehicle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.store.SoftDeleteVehicle(c.Request.Context(), id, actor(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
