package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hotel-booking-backend/internal/apperr"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func statusFor(k apperr.Kind) int {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAuthorization:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Storage and unknown errors
// are logged with their cause and answered with a generic message.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = &apperr.Error{Kind: apperr.KindUnknown, Message: "internal error", Err: err}
	}

	status := statusFor(appErr.Kind)
	body := errorBody{Code: appErr.Kind.String(), Message: appErr.Message, Details: appErr.Fields}
	if status == http.StatusInternalServerError {
		requestLogger(c).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		body = errorBody{Code: appErr.Kind.String(), Message: "Something went wrong"}
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// bindError converts a gin binding failure into a validation error with
// per-field messages.
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Invalid request body", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperr.Validation("Validation failed", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Must be a valid UUID"
	case "min", "gte":
		return "Value must be at least " + fe.Param()
	case "max", "lte":
		return "Value must be at most " + fe.Param()
	case "url":
		return "Must be a valid URL"
	case "booking_status":
		return "Must be pending, confirmed, approved, cancelled or completed"
	case "payment_status":
		return "Must be pending, paid or failed"
	case "room_type":
		return "Must be standard, deluxe, executive, family or other"
	default:
		return "Invalid value"
	}
}

func requestLogger(c *gin.Context) *zerolog.Logger {
	l := zerolog.Ctx(c.Request.Context())
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}
