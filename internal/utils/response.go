// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/autoimport-backend/internal/i18n"
)

// Keys under which middleware stores request-scoped values on the gin context.
const (
	ContextKeyLang      = "lang"
	ContextKeyUserID    = "user_id"
	ContextKeyEmail     = "email"
	ContextKeyUserType  = "user_type"
	ContextKeyRequestID = "request_id"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

type Meta struct {
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    result.Data,
		Meta: &Meta{Pagination: &PaginationMeta{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
		}},
	})
}

// ErrorResponse writes the error envelope and tags it with the request id so
// a reported failure can be found in the logs.
func ErrorResponse(c *gin.Context, statusCode int, code, message string, details interface{}) {
	c.JSON(statusCode, APIResponse{
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: c.GetString(ContextKeyRequestID),
		},
	})
}

// errorWithDefault falls back to the translated key when message is empty.
func errorWithDefault(c *gin.Context, statusCode int, code, message, key string, args ...interface{}) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), key, args...)
	}
	ErrorResponse(c, statusCode, code, message, nil)
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	if message == "" {
		message = i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func ValidationErrorResponse(c *gin.Context, fields []ValidationError) {
	message := i18n.T(GetLangFromContext(c), i18n.KeyValidationInvalid, "input")
	ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", message, fields)
}

// ConfirmationRequiredResponse reports a declined destructive action; details
// carry the question the client should ask before retrying with confirm=true.
func ConfirmationRequiredResponse(c *gin.Context, prompt string) {
	message := i18n.T(GetLangFromContext(c), i18n.KeyConfirmationRequired)
	ErrorResponse(c, http.StatusBadRequest, "CONFIRMATION_REQUIRED", message, gin.H{"prompt": prompt})
}

func UnauthorizedResponse(c *gin.Context, message string) {
	errorWithDefault(c, http.StatusUnauthorized, "UNAUTHORIZED", message, i18n.KeyAuthRequired)
}

func ForbiddenResponse(c *gin.Context, message string) {
	errorWithDefault(c, http.StatusForbidden, "FORBIDDEN", message, i18n.KeyAdminAccessDenied)
}

// NotFoundResponse translates "<resource>.not_found".
func NotFoundResponse(c *gin.Context, resource string) {
	errorWithDefault(c, http.StatusNotFound, "NOT_FOUND", "", resource+".not_found")
}

func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, "CONFLICT", message, nil)
}

func InvalidTransitionResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION", message, nil)
}

func TooManyRequestsResponse(c *gin.Context) {
	errorWithDefault(c, http.StatusTooManyRequests, "RATE_LIMITED", "", i18n.KeyRateLimited)
}

func InternalErrorResponse(c *gin.Context, message string) {
	errorWithDefault(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, i18n.KeyInternalError)
}

func GetLangFromContext(c *gin.Context) string {
	if lang := c.GetString(ContextKeyLang); lang != "" {
		return lang
	}
	return i18n.DefaultLanguage()
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(ContextKeyUserID)
	return id, id != ""
}

func GetUserTypeFromContext(c *gin.Context) (string, bool) {
	userType := c.GetString(ContextKeyUserType)
	return userType, userType != ""
}
