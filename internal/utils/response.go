package utils

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response defines the standard API response envelope.
type Response struct {
	Success      bool          `json:"success"`
	Code         int           `json:"code"`
	Message      string        `json:"message"`
	Data         interface{}   `json:"data,omitempty"`
	Error        *ErrorInfo    `json:"error,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	Meta         Meta          `json:"meta"`
}

// ErrorInfo provides details for error responses.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Notification tells the browser what to show the user. Transient
// notifications auto-dismiss after AutoCloseMs; blocking ones wait for the user.
type Notification struct {
	Level       string `json:"level"`
	Message     string `json:"message"`
	AutoCloseMs int64  `json:"autoCloseMs,omitempty"`
	Blocking    bool   `json:"blocking,omitempty"`
}

// Notification levels.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelWarning = "warning"
)

// Toast builds a transient notification.
func Toast(level, message string, autoClose time.Duration) *Notification {
	return &Notification{Level: level, Message: message, AutoCloseMs: autoClose.Milliseconds()}
}

// Alert builds a blocking notification.
func Alert(message string) *Notification {
	return &Notification{Level: LevelError, Message: message, Blocking: true}
}

// Meta contains request-scoped metadata.
type Meta struct {
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// Success writes a success response with the standard envelope.
func Success(c *gin.Context, code int, message string, data interface{}) {
	SuccessWithNotice(c, code, message, data, nil)
}

// SuccessWithNotice writes a success response carrying a notification.
func SuccessWithNotice(c *gin.Context, code int, message string, data interface{}, notice *Notification) {
	c.JSON(code, Response{
		Success:      true,
		Code:         code,
		Message:      message,
		Data:         data,
		Notification: notice,
		Meta:         newMeta(c),
	})
}

// Error writes an error response with provided API error code and message.
func Error(c *gin.Context, code int, errCode, message string) {
	ErrorWithNotice(c, code, errCode, message, nil, nil)
}

// ErrorWithNotice writes an error response carrying a notification and
// optional data (for example the unchanged form view).
func ErrorWithNotice(c *gin.Context, code int, errCode, message string, data interface{}, notice *Notification) {
	c.JSON(code, Response{
		Success: false,
		Code:    code,
		Message: message,
		Data:    data,
		Error: &ErrorInfo{
			Code:    errCode,
			Message: message,
		},
		Notification: notice,
		Meta:         newMeta(c),
	})
}

func newMeta(c *gin.Context) Meta {
	return Meta{
		RequestID: getRequestID(c),
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return uuid.New().String()[:8]
}
