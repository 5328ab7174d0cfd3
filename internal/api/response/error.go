package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/wonny/stockspider/internal/api/middleware"
	"github.com/wonny/stockspider/internal/domain/spider"
	spidersvc "github.com/wonny/stockspider/internal/service/spider"
)

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes
const (
	// General errors
	ErrCodeInternalServer   = "INTERNAL_SERVER_ERROR"
	ErrCodeInvalidParameter = "INVALID_PARAMETER"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"

	// Document errors
	ErrCodeSchemaNotFound = "SCHEMA_NOT_FOUND"
	ErrCodeParse          = "PARSE_ERROR"

	// External API errors
	ErrCodeExternalAPIError = "EXTERNAL_API_ERROR"
)

// Error sends an error response
func Error(c *gin.Context, statusCode int, code, message string) {
	ErrorWithDetails(c, statusCode, code, message, "")
}

// ErrorWithDetails sends an error response with additional details
func ErrorWithDetails(c *gin.Context, statusCode int, code, message, details string) {
	response := ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: middleware.GetRequestID(c),
			Timestamp: time.Now(),
		},
	}

	event := log.Warn()
	if statusCode >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.
		Str("request_id", response.Error.RequestID).
		Str("error_code", code).
		Str("message", message).
		Str("details", details).
		Int("status", statusCode).
		Msg("API error response")

	c.JSON(statusCode, response)
}

// BadRequest sends a 400 Bad Request error
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, ErrCodeInvalidParameter, message)
}

// NotFound sends a 404 Not Found error
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// InternalError sends a 500 Internal Server Error
func InternalError(c *gin.Context, err error) {
	details := ""
	if err != nil {
		details = err.Error()
	}
	ErrorWithDetails(c, http.StatusInternalServerError, ErrCodeInternalServer, "An unexpected error occurred", details)
}

// ExternalAPIError sends an external API error response
func ExternalAPIError(c *gin.Context, serviceName string, err error) {
	message := "External service error"
	if serviceName != "" {
		message = serviceName + " service error"
	}

	details := ""
	if err != nil {
		details = err.Error()
	}

	ErrorWithDetails(c, http.StatusBadGateway, ErrCodeExternalAPIError, message, details)
}

// FromError maps a service error onto its HTTP response
func FromError(c *gin.Context, err error) {
	switch {
	case spider.IsInputError(err):
		ErrorWithDetails(c, http.StatusBadRequest, ErrCodeInvalidParameter, "Invalid request", err.Error())
	case spider.IsNotFoundError(err):
		ErrorWithDetails(c, http.StatusNotFound, ErrCodeSchemaNotFound, "Expected document section not found", err.Error())
	case errors.Is(err, spider.ErrParse):
		ErrorWithDetails(c, http.StatusBadGateway, ErrCodeParse, "Document could not be parsed", err.Error())
	case spider.IsExternalError(err):
		ExternalAPIError(c, "upstream", err)
	case errors.Is(err, spidersvc.ErrFetchLogDisabled):
		ErrorWithDetails(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "Fetch log is not configured", err.Error())
	default:
		InternalError(c, err)
	}
}
