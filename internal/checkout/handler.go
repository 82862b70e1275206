package checkout

import (
	"log/slog"
	"net/http"

	httperr "github.com/checkout-lab/checkout-pipeline/internal/core/errors"
	"github.com/gin-gonic/gin"
)

const formContentType = "application/x-www-form-urlencoded"

// CheckoutHandler handles POST /v1/checkout: an urlencoded line-item form in,
// a 303 redirect to the provider's hosted checkout page out.
func (s *Service) CheckoutHandler(c *gin.Context) {
	if c.ContentType() != formContentType {
		c.JSON(http.StatusUnsupportedMediaType, httperr.ErrorResponse{
			ErrorType: httperr.HttpUnsupportedMediaError,
			Message:   "Content-Type must be " + formContentType,
		})
		return
	}

	if err := c.Request.ParseForm(); err != nil {
		slog.Warn("[Checkout] Failed to parse form body", "error", err)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidFormError,
			Message:   "Malformed form body",
		})
		return
	}

	form, fieldErrs := parseForm(c.Request.PostForm)
	if len(fieldErrs) > 0 {
		slog.Warn("[Checkout] Invalid checkout form", "field_errors", fieldErrs)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidFormError,
			Message:   "Invalid checkout form",
			Details:   fieldErrs,
		})
		return
	}

	redirectURL, err := s.sessions.CreateSession(c.Request.Context(), form)
	if err != nil {
		slog.Error("[Checkout] Failed to create checkout session",
			"item", form.Name,
			"error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to create checkout session",
		})
		return
	}

	slog.Info("[Checkout] Redirecting to checkout session",
		"item", form.Name,
		"quantity", form.Quantity)
	c.Redirect(http.StatusSeeOther, redirectURL)
}
