package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"storeapi/internal/apperr"
	"storeapi/pkg/validator"
)

var (
	errInvalidBody  = apperr.NewValidation("INVALID_BODY", "invalid request body")
	errInvalidQuery = apperr.NewValidation("INVALID_QUERY", "invalid query parameters")
)

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Internal errors are logged
// and never exposed to the client.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	if fields := validator.Fields(err); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   "VALIDATION_FAILED",
			"errors":  fields,
		})
	}

	var appErr apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind() == apperr.KindInternal {
		log.Error("request failed",
			zap.String("method", utils.CopyString(c.Method())),
			zap.String("path", utils.CopyString(c.Path())),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
			"error":   "INTERNAL",
		})
	}

	return c.Status(statusOf(appErr.Kind())).JSON(fiber.Map{
		"message": appErr.Msg(),
		"error":   appErr.Code(),
	})
}

// bindBody parses the JSON body into dst and validates it.
func bindBody(c *fiber.Ctx, v validator.Validator, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody.WrapParent(err)
	}
	return v.Validate(dst)
}
