package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/domain/models"
	"github.com/ricetradesolutions/riceledger/internal/engine"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
)

// SettingsHandler exposes the singleton rate configuration.
type SettingsHandler struct {
	store  mongodb.SettingsStore
	logger *zap.Logger
}

// NewSettingsHandler constructs the HTTP adapter for settings.
func NewSettingsHandler(store mongodb.SettingsStore, logger *zap.Logger) *SettingsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsHandler{store: store, logger: logger}
}

// Get returns the current settings document.
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Put validates and replaces the settings document. Saved loads keep the
// settlement they were computed with; new rates apply to new loads only.
func (h *SettingsHandler) Put(c *gin.Context) {
	var settings models.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		h.logger.Warn("invalid settings payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := engine.ValidateSettings(settings); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.store.SaveSettings(c.Request.Context(), settings, actor(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
