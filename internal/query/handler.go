package query

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	v1 "github.com/checkout-lab/checkout-pipeline/internal/api/v1"
	httperr "github.com/checkout-lab/checkout-pipeline/internal/core/errors"
	"github.com/checkout-lab/checkout-pipeline/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the payment query routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/payments", s.HandleListPayments)
	r.PUT("/v1/payments/:payment_intent_id/viewed", s.HandleMarkViewed)
}

// HandleListPayments handles GET /v1/payments
// Query parameters: filter (paid|unpaid|viewed|unviewed), limit
func (s *Service) HandleListPayments(c *gin.Context) {
	filterName := c.Query("filter")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidJsonError,
				Message:   "Invalid limit parameter",
				Details:   err.Error(),
			})
			return
		}
		limit = parsed
	}

	if _, err := filterFromName(filterName); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid filter parameter",
			Details:   err.Error(),
		})
		return
	}

	records, err := s.ListPayments(c.Request.Context(), filterName, limit)
	if err != nil {
		slog.Error("[Query] Failed to list payments", "filter", filterName, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to list payments",
		})
		return
	}

	if records == nil {
		records = make([]*v1.PaymentRecord, 0)
	}

	c.JSON(http.StatusOK, gin.H{"payments": records})
}

// HandleMarkViewed handles PUT /v1/payments/:payment_intent_id/viewed
func (s *Service) HandleMarkViewed(c *gin.Context) {
	paymentIntentID := c.Param("payment_intent_id")

	if err := s.MarkViewed(c.Request.Context(), paymentIntentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "No payments for that payment intent",
			})
			return
		}

		slog.Error("[Query] Failed to mark payment viewed",
			"payment_intent_id", paymentIntentID,
			"error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to mark payment viewed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "viewed"})
}
