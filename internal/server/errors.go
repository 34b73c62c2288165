package server

import (
	"errors"
	"net/http"
	"strings"

	activitydomain "github.com/copperline/crm/internal/activity/domain"
	alertdomain "github.com/copperline/crm/internal/alert/domain"
	dealdomain "github.com/copperline/crm/internal/deal/domain"
	leaddomain "github.com/copperline/crm/internal/lead/domain"
	taskdomain "github.com/copperline/crm/internal/task/domain"
	userdomain "github.com/copperline/crm/internal/user/domain"
	"github.com/gin-gonic/gin"
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
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
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

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, userdomain.ErrUserExists),
		errors.Is(err, dealdomain.ErrDealClosed),
		errors.Is(err, dealdomain.ErrStageBackward),
		errors.Is(err, leaddomain.ErrNotConvertible),
		errors.Is(err, taskdomain.ErrTaskCompleted):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
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
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isUserValidationError(err),
		isLeadValidationError(err),
		isDealValidationError(err),
		isActivityValidationError(err),
		isTaskValidationError(err),
		isAlertValidationError(err):
		return true
	default:
		return false
	}
}

func isUserValidationError(err error) bool {
	switch err {
	case userdomain.ErrInvalidEmail,
		userdomain.ErrInvalidName,
		userdomain.ErrInvalidRole,
		userdomain.ErrInvalidQuota,
		userdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isLeadValidationError(err error) bool {
	switch err {
	case leaddomain.ErrInvalidName,
		leaddomain.ErrInvalidOwner,
		leaddomain.ErrInvalidStatus,
		leaddomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isDealValidationError(err error) bool {
	switch err {
	case dealdomain.ErrInvalidName,
		dealdomain.ErrInvalidOwner,
		dealdomain.ErrInvalidAmount,
		dealdomain.ErrInvalidStage,
		dealdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isActivityValidationError(err error) bool {
	switch err {
	case activitydomain.ErrInvalidOwner,
		activitydomain.ErrInvalidKind,
		activitydomain.ErrInvalidSince:
		return true
	default:
		return false
	}
}

func isTaskValidationError(err error) bool {
	switch err {
	case taskdomain.ErrInvalidOwner,
		taskdomain.ErrInvalidTitle,
		taskdomain.ErrInvalidType,
		taskdomain.ErrInvalidOutcome,
		taskdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isAlertValidationError(err error) bool {
	switch err {
	case alertdomain.ErrInvalidCadence,
		alertdomain.ErrInvalidUser,
		alertdomain.ErrInvalidWindow,
		alertdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, leaddomain.ErrNotFound),
		errors.Is(err, dealdomain.ErrNotFound),
		errors.Is(err, taskdomain.ErrNotFound),
		errors.Is(err, alertdomain.ErrExclusionMissing),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
