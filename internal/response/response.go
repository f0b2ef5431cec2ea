package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the standardized API response envelope.
type Response struct {
	Status   string      `json:"status"`
	Results  *int        `json:"results,omitempty"`
	Data     interface{} `json:"data"`
	Error    *ErrorBody  `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// ErrorBody represents a structured error response.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Metadata includes request tracing and timing.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Success sends a successful JSON response with the given status code and data.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{
		Status:   StatusSuccess,
		Data:     data,
		Metadata: buildMetadata(c),
	})
}

// SuccessList sends a successful response for list endpoints with a results count.
func SuccessList(c *gin.Context, statusCode int, data interface{}, count int) {
	c.JSON(statusCode, Response{
		Status:   StatusSuccess,
		Results:  &count,
		Data:     data,
		Metadata: buildMetadata(c),
	})
}

// NoContent sends 204 with an empty body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail sends an error response using the code's default message.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	FailWithError(c, NewError(statusCode, code, ""))
}

// FailWithFields sends an error response with field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	FailWithError(c, NewError(statusCode, code, "").WithFields(fields))
}

// FailWithError renders an AppError.
func FailWithError(c *gin.Context, appErr *AppError) {
	c.JSON(appErr.Status, errorEnvelope(c, appErr))
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	AbortWithError(c, NewError(statusCode, code, ""))
}

// AbortWithError aborts the middleware chain and renders an AppError.
func AbortWithError(c *gin.Context, appErr *AppError) {
	c.AbortWithStatusJSON(appErr.Status, errorEnvelope(c, appErr))
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

func errorEnvelope(c *gin.Context, appErr *AppError) Response {
	return Response{
		Status: StatusError,
		Data:   nil,
		Error: &ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Fields:  appErr.Fields,
		},
		Metadata: buildMetadata(c),
	}
}

func buildMetadata(c *gin.Context) Metadata {
	reqID, _ := c.Get(ContextKeyRequestID)
	id, ok := reqID.(string)
	if !ok || id == "" {
		id = uuid.New().String() // Fallback if middleware not applied
	}
	return Metadata{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
