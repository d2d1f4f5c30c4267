package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/finbooks/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
	fieldTitler   = cases.Title(language.AmericanEnglish)
)

// SetupValidator configures the request validator with custom tags.
// The period tag accepts accounting periods in YYYY-MM form; the
// currency tag accepts three-letter ISO 4217 codes.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use JSON tag names for field names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("period", func(fl validator.FieldLevel) bool {
		return periodPattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("currency_code", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if code == "" {
			return true
		}
		if len(code) != 3 {
			return false
		}
		return strings.ToUpper(code) == code
	})
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Label:   fieldLabel(e.Field()),
				Message: getValidationMessage(e),
			})
		}
	}

	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError writes a 400 response describing the failed fields.
// Errors that are not validator errors fall back to a bare bad-request body.
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, err.Error(), requestID))
		return
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, requestID))
}

// fieldLabel turns a snake_case field name into a display label
func fieldLabel(field string) string {
	return fieldTitler.String(strings.ReplaceAll(field, "_", " "))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "period":
		return "Must be a period in YYYY-MM form"
	case "currency_code":
		return "Must be a three-letter ISO 4217 code"
	default:
		return "Invalid value"
	}
}
