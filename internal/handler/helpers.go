package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursework-api/internal/middleware"
	"github.com/noah-isme/coursework-api/internal/service"
	"github.com/noah-isme/coursework-api/internal/utils"
)

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	value := c.Params(name)
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

// domainErrors maps service sentinels to the status and client message they produce.
var domainErrors = []struct {
	target  error
	status  int
	message string
}{
	{service.ErrCourseNotFound, fiber.StatusNotFound, "Course does not exist"},
	{service.ErrSubjectNotFound, fiber.StatusNotFound, "Subject does not exist"},
	{service.ErrAssignmentNotFound, fiber.StatusNotFound, "Assignment does not exist"},
	{service.ErrStudentNotFound, fiber.StatusNotFound, "Student does not exist, invalid studentID"},
	{service.ErrEntryNotFound, fiber.StatusNotFound, "Assignment entry not found for student"},
	{service.ErrNotOwner, fiber.StatusForbidden, "Unauthorized request, please try again later"},
	{service.ErrAlreadySubmitted, fiber.StatusConflict, "Assignment has been submitted, no changes can be attempted!"},
	{service.ErrNotSubmitted, fiber.StatusConflict, "Assignment has not been submitted yet, it cannot be graded"},
	{service.ErrGradingClosed, fiber.StatusConflict, service.MessageGradingHalted},
}

func respondError(c *fiber.Ctx, logger *zerolog.Logger, err error, action string) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return utils.SendValidationError(c, validationErrors)
	}

	var inputErr *service.InputError
	if errors.As(err, &inputErr) {
		return utils.SendError(c, fiber.StatusBadRequest, inputErr.Message)
	}

	for _, mapping := range domainErrors {
		if errors.Is(err, mapping.target) {
			return utils.SendError(c, mapping.status, mapping.message)
		}
	}

	logger.Error().Err(err).Str("action", action).Msg("request failed")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
