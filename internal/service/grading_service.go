package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/events"
	"github.com/noah-isme/coursework-api/internal/observability"
	"github.com/noah-isme/coursework-api/internal/repository"
)

// MessageGradingHalted replaces the student list once the due date has passed.
const MessageGradingHalted = "Assignment submission due date has passed, all actions on student grades have been halted!"

// GradingService lets lecturers review submitted papers and attach grades.
type GradingService interface {
	ViewPaper(ctx context.Context, assignmentID uint) (dto.PaperReviewResponse, error)
	GradePaper(ctx context.Context, lecturerID uint, query dto.GradeQuery, payload dto.GradeRequest) (dto.StudentResponse, error)
}

type gradingService struct {
	students       repository.StudentRepository
	assignments    repository.AssignmentRepository
	activity       ActivityRecorder
	publisher      events.Publisher
	validator      *validator.Validate
	sanitizer      *bluemonday.Policy
	enforceDueGate bool
	tracer         trace.Tracer
	logger         zerolog.Logger
	now            func() time.Time
}

// NewGradingService constructs the grading service. With enforceDueGate set, grades are refused
// once the assignment is past due; otherwise the due date only affects ViewPaper.
func NewGradingService(students repository.StudentRepository, assignments repository.AssignmentRepository, validate *validator.Validate, activity ActivityRecorder, publisher events.Publisher, enforceDueGate bool, logger zerolog.Logger) GradingService {
	return &gradingService{
		students:       students,
		assignments:    assignments,
		validator:      validate,
		activity:       activity,
		publisher:      publisher,
		sanitizer:      bluemonday.StrictPolicy(),
		enforceDueGate: enforceDueGate,
		tracer:         otel.Tracer("github.com/noah-isme/coursework-api/internal/service/grading"),
		logger:         logger.With().Str("component", "grading_service").Logger(),
		now:            time.Now,
	}
}

func (s *gradingService) ViewPaper(ctx context.Context, assignmentID uint) (dto.PaperReviewResponse, error) {
	if assignmentID == 0 {
		return dto.PaperReviewResponse{}, invalidInput("assignmentId is not provided")
	}

	students, err := s.students.ListWithSubmittedEntry(ctx, assignmentID)
	if err != nil {
		return dto.PaperReviewResponse{}, err
	}

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PaperReviewResponse{}, ErrAssignmentNotFound
		}
		return dto.PaperReviewResponse{}, err
	}

	response := dto.PaperReviewResponse{
		TopicName: assignment.TopicName,
		TopicURL:  assignment.TopicURL,
		Due:       assignment.Due,
	}

	if !assignment.IsOpen(s.now()) {
		response.Message = MessageGradingHalted
		return response, nil
	}

	papers := make([]dto.StudentPaperResponse, 0, len(students))
	for _, student := range students {
		papers = append(papers, dto.StudentPaperResponse{
			StudentID:   student.StudentID,
			Course:      student.CourseID,
			IsActive:    student.IsActive,
			Assignments: dto.NewTrackingEntryResponseSlice(student.Assignments),
		})
	}
	response.Students = &papers

	return response, nil
}

// GradePaper attaches a grade and comments to the student's entry for the assignment. Only
// submitted entries can be graded.
func (s *gradingService) GradePaper(ctx context.Context, lecturerID uint, query dto.GradeQuery, payload dto.GradeRequest) (dto.StudentResponse, error) {
	ctx, span := s.tracer.Start(ctx, "grading.update")
	span.SetAttributes(
		attribute.String("grading.student_id", query.StudentID),
		attribute.Int64("grading.assignment_id", int64(query.AssignmentID)),
		attribute.Int64("grading.actor_id", int64(lecturerID)),
	)
	defer span.End()

	studentID := strings.TrimSpace(query.StudentID)
	if studentID == "" || query.AssignmentID == 0 {
		span.SetStatus(codes.Error, "validation_failed")
		return dto.StudentResponse{}, invalidInput("StudentID or task is not provided")
	}

	grade := strings.TrimSpace(s.sanitizer.Sanitize(payload.Grade))
	comments := strings.TrimSpace(s.sanitizer.Sanitize(payload.Comments))
	if grade == "" || comments == "" {
		span.SetStatus(codes.Error, "validation_failed")
		observability.Grades().WithLabelValues("invalid").Inc()
		return dto.StudentResponse{}, invalidInput("Invalid Input")
	}
	if err := s.validator.Struct(dto.GradeRequest{Grade: grade, Comments: comments}); err != nil {
		span.SetStatus(codes.Error, "validation_failed")
		observability.Grades().WithLabelValues("invalid").Inc()
		return dto.StudentResponse{}, err
	}

	student, err := s.students.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "student_not_found")
			observability.Grades().WithLabelValues("not_found").Inc()
			return dto.StudentResponse{}, fmt.Errorf("%w: invalid studentID %q", ErrStudentNotFound, studentID)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_lookup_failed")
		return dto.StudentResponse{}, err
	}

	idx := student.FindEntryForAssignment(query.AssignmentID)
	if idx < 0 {
		span.SetStatus(codes.Error, "entry_not_found")
		observability.Grades().WithLabelValues("not_found").Inc()
		return dto.StudentResponse{}, ErrEntryNotFound
	}
	if !student.Assignments[idx].IsSubmitted() {
		span.SetStatus(codes.Error, "not_submitted")
		observability.Grades().WithLabelValues("not_submitted").Inc()
		return dto.StudentResponse{}, ErrNotSubmitted
	}

	if s.enforceDueGate {
		if err := s.checkDueGate(ctx, query.AssignmentID); err != nil {
			span.SetStatus(codes.Error, "due_gate")
			observability.Grades().WithLabelValues("closed").Inc()
			return dto.StudentResponse{}, err
		}
	}

	entry := &student.Assignments[idx]
	entry.Grade = grade
	entry.Comments = comments

	if err := s.students.Save(ctx, &student); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_update_failed")
		return dto.StudentResponse{}, err
	}

	observability.Grades().WithLabelValues("graded").Inc()
	span.SetAttributes(attribute.String("grading.grade", grade))
	s.logger.Info().Str("student_id", student.StudentID).Uint("assignment_id", query.AssignmentID).Msg("paper graded")

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    lecturerID,
		ActorRole:  RoleLecturer,
		Action:     "paper.graded",
		EntityType: "tracking_entry",
		EntityID:   uintPtr(entry.ID),
		Metadata: map[string]interface{}{
			"student_id": student.StudentID,
			"assignment": entry.AssignmentID,
			"grade":      grade,
			"submitted":  entry.Submission,
		},
	})
	publishEvent(ctx, s.publisher, s.logger, events.Event{
		Type:         events.PaperGraded,
		ActorID:      lecturerID,
		ActorRole:    RoleLecturer,
		AssignmentID: entry.AssignmentID,
		StudentID:    student.StudentID,
		Data:         map[string]interface{}{"grade": grade},
	})

	return dto.NewStudentResponse(student), nil
}

func (s *gradingService) checkDueGate(ctx context.Context, assignmentID uint) error {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	if !assignment.IsOpen(s.now()) {
		return ErrGradingClosed
	}

	return nil
}
