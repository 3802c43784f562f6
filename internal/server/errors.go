package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kwachapos/fiscalgate/internal/authority"
	offlinedomain "github.com/kwachapos/fiscalgate/internal/offline/domain"
	productdomain "github.com/kwachapos/fiscalgate/internal/product/domain"
	salesdomain "github.com/kwachapos/fiscalgate/internal/sales/domain"
	taxdomain "github.com/kwachapos/fiscalgate/internal/tax/domain"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, terminaldomain.ErrBlocked):
		return http.StatusForbidden, errorPayload{
			Type:    "terminal_blocked",
			Message: err.Error(),
		}
	case errors.Is(err, salesdomain.ErrRejected):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "authority_rejected",
			Message: err.Error(),
		}
	case errors.Is(err, offlinedomain.ErrDuplicateInvoice):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "duplicate invoice number",
		}
	case errors.Is(err, authority.ErrTransport),
		errors.Is(err, authority.ErrMalformedResponse):
		return http.StatusBadGateway, errorPayload{
			Type:    "authority_unreachable",
			Message: "fiscal authority unreachable",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, salesdomain.ErrNoLineItems),
		errors.Is(err, salesdomain.ErrInvalidQuantity),
		errors.Is(err, salesdomain.ErrInvalidPaymentMethod),
		errors.Is(err, salesdomain.ErrUnknownProduct),
		errors.Is(err, salesdomain.ErrUnknownTaxRate),
		errors.Is(err, taxdomain.ErrInvalidAmount),
		errors.Is(err, taxdomain.ErrDiscountExceedsPrice),
		errors.Is(err, terminaldomain.ErrUnknownDevice),
		errors.Is(err, terminaldomain.ErrMissingTaxpayer):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, terminaldomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, taxdomain.ErrNotFound),
		errors.Is(err, offlinedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
