package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/events"
	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/internal/observability"
	"github.com/noah-isme/coursework-api/internal/repository"
)

// MessageTaskAssigned is returned after an assign-task run.
const MessageTaskAssigned = "Task assigned to all students within the course successfully."

// DistributionService hands assignments to the students of their course.
type DistributionService interface {
	AssignTask(ctx context.Context, lecturerID, assignmentID uint) (dto.DistributionReport, error)
}

type distributionService struct {
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	activity    ActivityRecorder
	publisher   events.Publisher
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// NewDistributionService constructs the distribution engine.
func NewDistributionService(assignments repository.AssignmentRepository, students repository.StudentRepository, activity ActivityRecorder, publisher events.Publisher, logger zerolog.Logger) DistributionService {
	return &distributionService{
		assignments: assignments,
		students:    students,
		activity:    activity,
		publisher:   publisher,
		tracer:      otel.Tracer("github.com/noah-isme/coursework-api/internal/service/distribution"),
		logger:      logger.With().Str("component", "distribution_service").Logger(),
		now:         time.Now,
	}
}

// AssignTask appends a tracking entry to every active student of the assignment's course that does
// not hold one yet. Students are saved one by one; a failed save is reported in the result list and
// the run continues. Once the due date has passed nothing is distributed, but the assignment is
// still saved with its current counter.
func (s *distributionService) AssignTask(ctx context.Context, lecturerID, assignmentID uint) (dto.DistributionReport, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.distribute")
	span.SetAttributes(
		attribute.Int64("assignment.id", int64(assignmentID)),
		attribute.Int64("assignment.actor_id", int64(lecturerID)),
	)
	defer span.End()

	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "assignment_not_found")
			return dto.DistributionReport{}, ErrAssignmentNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "assignment_lookup_failed")
		return dto.DistributionReport{}, err
	}

	report := dto.DistributionReport{
		AssignmentID: assignment.ID,
		DueGateOpen:  assignment.IsOpen(s.now()),
		Results:      []dto.DistributionResult{},
	}
	counter := assignment.StudentAssigned

	if report.DueGateOpen {
		students, err := s.students.ListByCourse(ctx, assignment.CourseID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "student_lookup_failed")
			return dto.DistributionReport{}, err
		}

		for i := range students {
			student := &students[i]
			if !student.IsActive {
				continue
			}

			result := s.distributeTo(ctx, assignment, student)
			if result.Status == dto.DistributionAssigned {
				counter++
			}
			observability.DistributionEntries().WithLabelValues(result.Status).Inc()
			report.Add(result)
		}
	} else {
		s.logger.Info().Uint("assignment_id", assignment.ID).Time("due", assignment.Due).Msg("due date passed, distribution skipped")
	}

	assignment.StudentAssigned = counter
	if err := s.assignments.Update(ctx, &assignment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assignment_update_failed")
		return dto.DistributionReport{}, err
	}
	report.StudentAssigned = counter

	span.SetAttributes(
		attribute.Bool("assignment.due_gate_open", report.DueGateOpen),
		attribute.Int("assignment.assigned", report.Assigned),
		attribute.Int("assignment.failed", report.Failed),
	)
	if report.Failed > 0 {
		span.SetStatus(codes.Error, "partial_distribution")
		s.logger.Warn().Uint("assignment_id", assignment.ID).Int("failed", report.Failed).Msg("assignment partially distributed")
	}

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Int("assigned", report.Assigned).
		Int("already_assigned", report.AlreadyAssigned).
		Int("student_assigned", counter).
		Msg("assignment distributed")

	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    lecturerID,
		ActorRole:  RoleLecturer,
		Action:     "assignment.distributed",
		EntityType: "assignment",
		EntityID:   uintPtr(assignment.ID),
		Metadata: map[string]interface{}{
			"due_gate_open":    report.DueGateOpen,
			"assigned":         report.Assigned,
			"already_assigned": report.AlreadyAssigned,
			"failed":           report.Failed,
		},
	})
	if report.Assigned > 0 {
		publishEvent(ctx, s.publisher, s.logger, events.Event{
			Type:         events.AssignmentDistributed,
			ActorID:      lecturerID,
			ActorRole:    RoleLecturer,
			AssignmentID: assignment.ID,
			Data:         map[string]interface{}{"assigned": report.Assigned, "student_assigned": counter},
		})
	}

	return report, nil
}

func (s *distributionService) distributeTo(ctx context.Context, assignment models.Assignment, student *models.Student) dto.DistributionResult {
	result := dto.DistributionResult{Student: student.ID, StudentID: student.StudentID}

	if student.HasAssignment(assignment.ID) {
		result.Status = dto.DistributionAlreadyAssigned
		return result
	}

	student.Assignments = append(student.Assignments, models.TrackingEntry{AssignmentID: assignment.ID})
	if err := s.students.Save(ctx, student); err != nil {
		s.logger.Error().Err(err).Uint("student", student.ID).Uint("assignment_id", assignment.ID).Msg("failed to append tracking entry")
		result.Status = dto.DistributionFailed
		result.Error = err.Error()
		return result
	}

	result.Status = dto.DistributionAssigned
	return result
}
