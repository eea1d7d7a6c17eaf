package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code and user-facing message derived from an error
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps persistence errors to user-facing codes without leaking
// driver details. context names the entity being touched ("product", "cart item").
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: notFoundCode(context), Message: getNotFoundMessage(context)}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrorInfo{Code: ResourceConflict, Message: "A referenced record does not exist or is still in use"}
	}

	errLower := strings.ToLower(err.Error())

	// Postgres 23505 / SQLite "UNIQUE constraint failed"
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		if strings.Contains(errLower, "email") {
			return ErrorInfo{Code: ResourceAlreadyExists, Message: "This email is already registered"}
		}
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "This record already exists"}
	}

	// Postgres 23503 / SQLite "FOREIGN KEY constraint failed"
	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "The record is still in use and cannot be deleted"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
	}

	// Postgres 23502 / SQLite "NOT NULL constraint failed"
	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{Code: InternalDatabaseError, Message: "The database is unavailable, please try again later"}
	}

	return ErrorInfo{Code: InternalServerError, Message: getDefaultErrorMessage(context)}
}

// Status is the HTTP status that goes with the code
func (e ErrorInfo) Status() int {
	switch e.Code {
	case ProductNotFound, CartItemNotFound, ResourceNotFound:
		return http.StatusNotFound
	case ResourceAlreadyExists, ResourceConflict:
		return http.StatusConflict
	case ValidationRequired, ValidationInvalidInput, ValidationInvalidID:
		return http.StatusBadRequest
	case InternalDatabaseError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func notFoundCode(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "cart"):
		return CartItemNotFound
	case strings.Contains(contextLower, "product"):
		return ProductNotFound
	default:
		return ResourceNotFound
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "cart"):
		return "Item not found"
	case strings.Contains(contextLower, "product"):
		return "Product not found"
	case strings.Contains(contextLower, "user"):
		return "User not found"
	default:
		return "The requested record was not found"
	}
}

func getDefaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "create"), strings.Contains(contextLower, "add"):
		return "Could not save, please try again later"
	case strings.Contains(contextLower, "update"):
		return "Could not update, please try again later"
	case strings.Contains(contextLower, "delete"), strings.Contains(contextLower, "remove"):
		return "Could not delete, please try again later"
	default:
		return "Something went wrong, please try again later"
	}
}

// ParseAndRespond parses err and writes the envelope with statusCode
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}
