package handlers

import (
	"errors"
	"fmt"
	"reflect"

	"furnitureshop/internal/apperr"
	"furnitureshop/internal/middleware"
	"furnitureshop/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Kind    apperr.Kind       `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respondError writes err as an ErrorResponse with the status of its kind.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		log.Error("Unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Kind:    apperr.KindInternal,
			Message: "internal server error",
		})
	}

	status := apperr.HTTPStatus(ae.Kind)
	if status >= fiber.StatusInternalServerError {
		log.Error("Request failed", "method", c.Method(), "path", c.Path(), "kind", ae.Kind, "error", err)
	} else {
		log.Debug("Request rejected", "method", c.Method(), "path", c.Path(), "kind", ae.Kind, "error", err)
	}
	if ae.Retryable() {
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(status).JSON(ErrorResponse{
		Kind:    ae.Kind,
		Message: ae.Message,
		Fields:  ae.Fields,
	})
}

// ErrorHandler renders errors that escape a handler, such as unknown routes
// or bodies over the size limit, in the same shape as respondError.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			kind := apperr.KindInternal
			switch fe.Code {
			case fiber.StatusNotFound:
				kind = apperr.KindNotFound
			case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed:
				kind = apperr.KindValidation
			case fiber.StatusUnauthorized:
				kind = apperr.KindUnauthorized
			}
			return c.Status(fe.Code).JSON(ErrorResponse{Kind: kind, Message: fe.Message})
		}
		return respondError(c, log, err)
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// parseAndValidate decodes the JSON body into dst and runs struct
// validation on it.
func parseAndValidate(c *fiber.Ctx, v *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody(err)
	}
	if err := v.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return errInvalidBody(err)
		}
		fields := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return apperr.ValidationFields(fields)
	}
	return nil
}

func errInvalidBody(err error) error {
	return apperr.Validation("invalid request body: %v", err)
}

// callerID returns the authenticated user's ID.
func callerID(c *fiber.Ctx) (string, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return "", apperr.Unauthorized("authentication required")
	}
	return id.UserID, nil
}
