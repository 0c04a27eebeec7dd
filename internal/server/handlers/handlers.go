// Package handlers adapts the ledger services to HTTP. Handlers stay thin:
// bind, call the service, map the error.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ricetradesolutions/riceledger/internal/engine"
	"github.com/ricetradesolutions/riceledger/internal/repository/mongodb"
	"github.com/ricetradesolutions/riceledger/internal/service/loads"
	"github.com/ricetradesolutions/riceledger/internal/service/payments"
)

const (
	actorHeader  = "X-Actor"
	defaultActor = "admin"
	dateLayout   = "2006-01-02"
)

// actor extracts who is making the change for the audit trail.
func actor(c *gin.Context) string {
	if a := c.GetHeader(actorHeader); a != "" {
		return a
	}
	return defaultActor
}

func parseID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseOptionalID reads an ObjectID query parameter, returning nil when absent.
func parseOptionalID(c *gin.Context, key string) (*primitive.ObjectID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
		return nil, false
	}
	return &id, true
}

// parseOptionalDate reads a YYYY-MM-DD query parameter, returning nil when absent.
func parseOptionalDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key + ", expected " + dateLayout})
		return nil, false
	}
	return &t, true
}

// respondError maps service and store errors onto HTTP statuses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validationErr *engine.ValidationError
	var configErr *engine.ConfigurationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid input", "fields": validationErr.Fields})
	case errors.As(err, &configErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid settings", "fields": configErr.Fields})
	case errors.Is(err, mongodb.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, mongodb.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, payments.ErrNonPositiveAmount),
		errors.Is(err, payments.ErrPayoutExceedsPending),
		errors.Is(err, payments.ErrLoadAlreadySettled),
		errors.Is(err, loads.ErrLoadNumberExhausted):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
