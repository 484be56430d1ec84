package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ikkim/kicks-storefront/internal/storage"
	"github.com/ikkim/kicks-storefront/pkg/platzi"
	"gorm.io/gorm"
)

// ErrorInfo is a classified error
type ErrorInfo struct {
	Status  int    // HTTP status
	Code    string // error code (see codes.go)
	Message string // human readable message
}

// ParseError maps low-level failures to a status, code and message without
// leaking upstream details. context names the resource, e.g. "product".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Status:  http.StatusInternalServerError,
			Code:    InternalServerError,
			Message: "Something went wrong",
		}
	}

	// 1. Request validation
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    ValidationInvalidInput,
			Message: validationMessage(verrs),
		}
	}

	// 2. Catalog
	if errors.Is(err, platzi.ErrNotFound) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    CatalogProductNotFound,
			Message: getNotFoundMessage(context),
		}
	}
	if errors.Is(err, platzi.ErrNetwork) || errors.Is(err, platzi.ErrUnexpectedStatus) || errors.Is(err, platzi.ErrDecode) {
		return ErrorInfo{
			Status:  http.StatusBadGateway,
			Code:    CatalogUnavailable,
			Message: "The catalog is unavailable. Please try again shortly",
		}
	}

	// 3. Storage
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Status:  http.StatusNotFound,
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// 4. Deadlines and raw connection failures
	errStrLower := strings.ToLower(err.Error())
	if isTimeout(err) ||
		strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") {
		return ErrorInfo{
			Status:  http.StatusBadGateway,
			Code:    InternalExternalAPI,
			Message: "An upstream service did not respond. Please try again shortly",
		}
	}

	// 5. Fallback
	return ErrorInfo{
		Status:  http.StatusInternalServerError,
		Code:    InternalServerError,
		Message: getDefaultErrorMessage(context),
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// validationMessage describes the first failing field.
func validationMessage(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "Some fields are invalid"
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "cart_size":
		return "size must be one of 38-47"
	case "cart_color":
		return "color must be black or green"
	case "min", "gte", "gt":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte", "lt":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidationFields lists every failing field for RespondWithValidationError.
func ValidationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = validationMessage(validator.ValidationErrors{fe})
	}
	return fields
}

func getNotFoundMessage(context string) string {
	if context == "" {
		return "Not found"
	}
	return fmt.Sprintf("The %s could not be found", context)
}

func getDefaultErrorMessage(context string) string {
	if context == "" {
		return "Something went wrong. Please try again later"
	}
	return fmt.Sprintf("Failed to process %s. Please try again later", context)
}
