package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"reflect"
	"strings"
	"time"

	"agroledger/internal/common"
	"agroledger/internal/repositories"
	"agroledger/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// RequestValidator plugs go-playground/validator into echo's c.Validate
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validator: v}
}

func (v *RequestValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func apiError(status int, code, message string, details map[string]string) *echo.HTTPError {
	return echo.NewHTTPError(status, common.CreateErrorResponse(code, message, details))
}

// bindRequest binds and validates the body; the returned error is ready to hand back to echo
func bindRequest(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apiError(http.StatusBadRequest, "CLIENT_ERROR", "Invalid request format", nil)
	}
	if err := c.Validate(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			details := make(map[string]string, len(fieldErrs))
			for _, fe := range fieldErrs {
				details[fe.Field()] = fmt.Sprintf("failed on '%s' rule", fe.Tag())
			}
			return apiError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", details)
		}
		return apiError(http.StatusBadRequest, "CLIENT_ERROR", err.Error(), nil)
	}
	return nil
}

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := common.ValidateUUID(c.Param(name), name)
	if err != nil {
		return uuid.Nil, apiError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", map[string]string{name: err.Error()})
	}
	return id, nil
}

// handleError maps service errors onto the error envelope
func handleError(err error, resource string) error {
	var validation *services.ValidationError
	var stock *services.InsufficientStockError
	var missing *services.MissingInventoryError

	switch {
	case errors.As(err, &validation):
		return apiError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", validation.Fields)
	case errors.As(err, &stock), errors.As(err, &missing):
		return apiError(http.StatusBadRequest, "CLIENT_ERROR", err.Error(), nil)
	case errors.Is(err, repositories.ErrNotFound):
		return apiError(http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s not found", resource), nil)
	case errors.Is(err, services.ErrInvalidTransition):
		return apiError(http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		return apiError(http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
	case errors.Is(err, services.ErrInvalidToken):
		return apiError(http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
	case errors.Is(err, services.ErrAttachmentsDisabled):
		return apiError(http.StatusServiceUnavailable, "UNAVAILABLE", err.Error(), nil)
	default:
		log.Printf("%s request failed: %v", resource, err)
		return apiError(http.StatusInternalServerError, "SERVER_ERROR", "Internal server error", nil)
	}
}

// patchBody is a decoded JSON object used to tell absent fields from explicit nulls
type patchBody map[string]json.RawMessage

func decodePatch(c echo.Context) (patchBody, error) {
	var body patchBody
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return nil, apiError(http.StatusBadRequest, "CLIENT_ERROR", "Invalid request format", nil)
	}
	return body, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func (b patchBody) has(key string) bool {
	_, ok := b[key]
	return ok
}

func (b patchBody) stringField(key string, errs map[string]string) *string {
	raw, ok := b[key]
	if !ok || isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		errs[key] = "must be a string"
		return nil
	}
	return &s
}

func (b patchBody) uuidField(key string, errs map[string]string) *uuid.UUID {
	s := b.stringField(key, errs)
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		errs[key] = "must be a valid UUID"
		return nil
	}
	return &id
}

func (b patchBody) decimalField(key string, errs map[string]string) *decimal.Decimal {
	raw, ok := b[key]
	if !ok || isNull(raw) {
		return nil
	}
	var d decimal.Decimal
	if err := json.Unmarshal(raw, &d); err != nil {
		errs[key] = "must be a number"
		return nil
	}
	return &d
}

func (b patchBody) dateField(key string, errs map[string]string) *time.Time {
	s := b.stringField(key, errs)
	if s == nil {
		return nil
	}
	t, err := common.ParseDate(*s, key)
	if err != nil {
		errs[key] = err.Error()
		return nil
	}
	return &t
}

func patchError(errs map[string]string) error {
	if len(errs) == 0 {
		return nil
	}
	return apiError(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
}
