package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the standardized API response envelope.
type Response struct {
	Data       any         `json:"data"`
	Error      *ErrorBody  `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Metadata   Metadata    `json:"metadata"`
}

// ErrorBody represents a structured error response.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Pagination holds pagination information.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination derives the page count from the item total.
func NewPagination(page, perPage int, total int64) *Pagination {
	pages := 0
	if perPage > 0 {
		pages = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return &Pagination{Page: page, PerPage: perPage, TotalItems: total, TotalPages: pages}
}

// Metadata traces a response. ServerTimeMs lets test clients align their
// countdown display with the server clock that owns the timers.
type Metadata struct {
	RequestID    string `json:"request_id"`
	Timestamp    string `json:"timestamp"`
	ServerTimeMs int64  `json:"server_time_ms"`
}

// Success sends data with the given status code.
func Success(c *gin.Context, statusCode int, data any) {
	send(c, statusCode, Response{Data: data})
}

// SuccessWithPagination sends one page of data.
func SuccessWithPagination(c *gin.Context, statusCode int, data any, pagination *Pagination) {
	send(c, statusCode, Response{Data: data, Pagination: pagination})
}

// Fail sends code with its default message.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	send(c, statusCode, Response{Error: &ErrorBody{Code: code, Message: GetMessage(code)}})
}

// FailWithFields sends a validation failure with per-field messages.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	send(c, statusCode, Response{Error: &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields}})
}

// FailMessage sends code with message in place of its default text.
func FailMessage(c *gin.Context, statusCode int, code ErrCode, message string) {
	send(c, statusCode, Response{Error: &ErrorBody{Code: code, Message: message}})
}

// AbortFail stops the middleware chain with code.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.Abort()
	Fail(c, statusCode, code)
}

func send(c *gin.Context, statusCode int, body Response) {
	now := time.Now().UTC()
	body.Metadata = Metadata{
		RequestID:    requestID(c),
		Timestamp:    now.Format(time.RFC3339),
		ServerTimeMs: now.UnixMilli(),
	}
	c.JSON(statusCode, body)
}

func requestID(c *gin.Context) string {
	if id := c.GetString(ContextKeyRequestID); id != "" {
		return id
	}
	return uuid.NewString()
}
