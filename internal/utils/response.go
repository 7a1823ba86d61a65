package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// Error types carried in the "type" field of error responses
const (
	ErrorTypeInput     = "data.validation.input"
	ErrorTypeNotFound  = "data.notfound"
	ErrorTypeVersion   = "version"
	ErrorTypeForbidden = "data.authorization"
	ErrorTypeInternal  = "data.internal"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      errorType,
	})
}

// VersionErrorResponse sends a version conflict error (409)
func VersionErrorResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(ErrorResponseStruct{
		Status:       fiber.StatusConflict,
		Message:      "E_VERSION - Refresh and reconcile with current version and retry.",
		Ok:           false,
		VersionError: true,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		URL:          c.OriginalURL(),
		Type:         ErrorTypeVersion,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, ErrorTypeNotFound)
}

// DeleteSuccessResponse sends the success response of a document delete
func DeleteSuccessResponse(c *fiber.Ctx, id string) error {
	return c.Status(fiber.StatusOK).JSON(DeleteResponseStruct{
		Message:   "Success",
		Ok:        true,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status       int    `json:"status"`
	Message      string `json:"message"`
	Ok           bool   `json:"ok"`
	Timestamp    string `json:"timestamp"`
	URL          string `json:"url"`
	Type         string `json:"type,omitempty"`
	VersionError bool   `json:"versionError,omitempty"`
}

// DeleteResponseStruct defines the schema for delete success responses
type DeleteResponseStruct struct {
	Message   string `json:"message"`
	Ok        bool   `json:"ok"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
}
