package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/middleware"
	"github.com/noah-isme/coursework-api/internal/service"
	"github.com/noah-isme/coursework-api/internal/utils"
)

// StudentTaskHandler serves a student's assigned tasks and submissions.
type StudentTaskHandler struct {
	service       service.StudentTaskService
	submitLimiter fiber.Handler
	logger        zerolog.Logger
}

// NewStudentTaskHandler constructs the handler. submitLimiter may be nil.
func NewStudentTaskHandler(service service.StudentTaskService, submitLimiter fiber.Handler, logger zerolog.Logger) *StudentTaskHandler {
	return &StudentTaskHandler{
		service:       service,
		submitLimiter: submitLimiter,
		logger:        logger.With().Str("component", "student_task_handler").Logger(),
	}
}

// Register attaches student endpoints to the router group.
func (h *StudentTaskHandler) Register(router fiber.Router) {
	student := middleware.RequireStudent()

	router.Get("/view-task", student, h.list)
	router.Get("/view-task/:submissionId", student, h.get)

	submit := []fiber.Handler{student}
	if h.submitLimiter != nil {
		submit = append(submit, h.submitLimiter)
	}
	submit = append(submit, h.submit)
	router.Patch("/submit-task/:submissionId", submit...)
}

func (h *StudentTaskHandler) list(c *fiber.Ctx) error {
	tasks, err := h.service.ViewTasks(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondError(c, requestLogger(h.logger, c), err, "view_tasks")
	}

	return utils.SendSuccess(c, "tasks retrieved", tasks)
}

func (h *StudentTaskHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "submissionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	entries, err := h.service.ViewTask(c.UserContext(), userIDFromContext(c), id)
	if err != nil {
		return respondError(c, requestLogger(h.logger, c), err, "view_task")
	}

	return utils.SendSuccess(c, "task retrieved", entries)
}

func (h *StudentTaskHandler) submit(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "submissionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.service.Submit(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return respondError(c, requestLogger(h.logger, c), err, "submit_task")
	}

	return utils.SendSuccess(c, "assignment submitted", student)
}
