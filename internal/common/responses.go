package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// StatusForKind maps an error kind to its HTTP status.
func StatusForKind(kind ErrorKind) int {
	switch kind {
	case KindDuplicateSKU:
		return http.StatusConflict
	case KindInvalidProductData:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAmbiguousSlot:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// SendError writes err as a standardized error response. Internal errors are logged and
// replaced with a generic message.
func SendError(c echo.Context, err error) error {
	var ae *AppError
	if !errors.As(err, &ae) {
		log.Printf("ERROR: %s %s: %v", c.Request().Method, c.Path(), err)
		return SendServerError(c, "Internal server error")
	}
	if ae.Kind == KindInternal {
		log.Printf("ERROR: %s %s: %v", c.Request().Method, c.Path(), err)
		return SendServerError(c, "Internal server error")
	}
	return c.JSON(StatusForKind(ae.Kind), CreateErrorResponse(string(ae.Kind), ae.Error(), ae.Fields))
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse(string(KindInvalidProductData), "Validation failed", details))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// ValidateUUID validates UUID format with comprehensive checks
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}

	// Check exact length
	if len(idStr) != 36 {
		return uuid.Nil, fmt.Errorf("%s must be exactly 36 characters (including hyphens)", fieldName)
	}

	// Check hyphen placement
	for _, pos := range []int{8, 13, 18, 23} {
		if idStr[pos] != '-' {
			return uuid.Nil, fmt.Errorf("%s has invalid UUID format: hyphens must be at positions 9, 14, 19, and 24", fieldName)
		}
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s contains invalid characters: %v", fieldName, err)
	}

	return id, nil
}

// ValidateRequiredString validates required string fields with an upper bound in characters
func ValidateRequiredString(value, fieldName string, maxLength int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if utf8.RuneCountInString(value) > maxLength {
		return fmt.Errorf("%s cannot exceed %d characters", fieldName, maxLength)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD date as a UTC day
func ParseDate(dateStr, fieldName string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(dateStr))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format", fieldName)
	}
	return date.UTC(), nil
}

// ValidatePaginationParams clamps pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// PaginationSummary renders "Showing X to Y out of Z" for a page.
func PaginationSummary(offset, pageLen, total int) string {
	if total < 1 || pageLen < 1 {
		return fmt.Sprintf("Showing 0 to 0 out of %d", total)
	}
	return fmt.Sprintf("Showing %d to %d out of %d", offset+1, offset+pageLen, total)
}
