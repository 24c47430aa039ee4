package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/middleware"
	"github.com/noah-isme/coursework-api/internal/service"
	"github.com/noah-isme/coursework-api/internal/utils"
)

// AssignmentHandler wires the lecturer's assignment routes.
type AssignmentHandler struct {
	assignments  service.AssignmentService
	distribution service.DistributionService
	grading      service.GradingService
	logger       zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(assignments service.AssignmentService, distribution service.DistributionService, grading service.GradingService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments:  assignments,
		distribution: distribution,
		grading:      grading,
		logger:       logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches lecturer endpoints to the router group. The bare /:assignmentId delete route
// goes last so it never shadows the named routes.
func (h *AssignmentHandler) Register(router fiber.Router) {
	lecturer := middleware.RequireLecturer()

	router.Get("/uploaded-task", lecturer, h.list)
	router.Post("/create-task", lecturer, h.create)
	router.Patch("/update-task/:assignmentId", lecturer, h.update)
	router.Patch("/assign-task/:id", lecturer, h.assign)
	router.Get("/grade-paper", lecturer, h.viewPaper)
	router.Patch("/grade-paper", lecturer, h.gradePaper)
	router.Patch("/:assignmentId", lecturer, h.delete)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	tasks, err := h.assignments.ViewTasks(c.UserContext(), userIDFromContext(c))
	if err != nil {
		return respondError(c, requestLogger(h.logger, c), err, "list_tasks")
	}

	return utils.SendSuccess(c, "assignments retrieved", tasks)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	var payload dto.TaskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.assignments.CreateTask(c.UserContext(), userIDFromContext(c), payload)
	if err != nil {
		return respondError(c, requestLogger(h.logger, c), err, "create_task")
	}

	message := fmt.Sprintf("%s has been created successfully", assignment.TopicName)
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, message, assignment)
}

func (h *AssignmentHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.TaskRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assignment, err := h.assignments.UpdateTask(c.UserContext(), userIDFromContext(c), id, payload)
	if err != nil {
		return respondError(c, requestLogger(h.logger, c), err, "update_task")
	}

	return utils.SendSuccess(c, "assignment updated", assignment)
}

func (h *AssignmentHandler) assign(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.distribution.AssignTask(c.UserContext(), userIDFromContext(c), id)
	if err != nil {
		return respondError(c, requestLogger(h.logger, c), err, "assign_task")
	}

	return utils.SendSuccess(c, service.MessageTaskAssigned, report)
}

func (h *AssignmentHandler) viewPaper(c *fiber.Ctx) error {
	var query dto.GradeQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	review, err := h.grading.ViewPaper(c.UserContext(), query.AssignmentID)
	if err != nil {
		return respondError(c, requestLogger(h.logger, c), err, "view_paper")
	}

	message := "papers retrieved"
	if review.Message != "" {
		message = review.Message
	}
	return utils.SendSuccess(c, message, review)
}

func (h *AssignmentHandler) gradePaper(c *fiber.Ctx) error {
	var query dto.GradeQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	var payload dto.GradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	student, err := h.grading.GradePaper(c.UserContext(), userIDFromContext(c), query, payload)
	if err != nil {
		return respondError(c, requestLogger(h.logger, c), err, "grade_paper")
	}

	return utils.SendSuccess(c, "paper graded", student)
}

func (h *AssignmentHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.assignments.DeleteTask(c.UserContext(), userIDFromContext(c), id)
	if err != nil {
		return respondError(c, requestLogger(h.logger, c), err, "delete_task")
	}

	return utils.SendSuccess(c, result.Message, result)
}
