package service

import (
	"context"
	"errors"
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
	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/internal/observability"
	"github.com/noah-isme/coursework-api/internal/repository"
	"github.com/noah-isme/coursework-api/internal/validation"
)

// MessageAssignmentRemoved is returned after a successful delete.
const MessageAssignmentRemoved = "Assignment has been removed"

// AssignmentService exposes the lecturer's assignment use cases.
type AssignmentService interface {
	ViewTasks(ctx context.Context, lecturerID uint) ([]dto.LecturerTaskResponse, error)
	CreateTask(ctx context.Context, lecturerID uint, payload dto.TaskRequest) (dto.AssignmentResponse, error)
	UpdateTask(ctx context.Context, lecturerID, assignmentID uint, payload dto.TaskRequest) (dto.AssignmentResponse, error)
	DeleteTask(ctx context.Context, lecturerID, assignmentID uint) (dto.DeleteTaskResponse, error)
}

type assignmentService struct {
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	lookup      *CourseLookup
	validator   *validator.Validate
	activity    ActivityRecorder
	publisher   events.Publisher
	sanitizer   *bluemonday.Policy
	tracer      trace.Tracer
	logger      zerolog.Logger
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(assignments repository.AssignmentRepository, students repository.StudentRepository, lookup *CourseLookup, validate *validator.Validate, activity ActivityRecorder, publisher events.Publisher, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		assignments: assignments,
		students:    students,
		lookup:      lookup,
		validator:   validate,
		activity:    activity,
		publisher:   publisher,
		sanitizer:   bluemonday.StrictPolicy(),
		tracer:      otel.Tracer("github.com/noah-isme/coursework-api/internal/service/assignment"),
		logger:      logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) ViewTasks(ctx context.Context, lecturerID uint) ([]dto.LecturerTaskResponse, error) {
	assignments, err := s.assignments.ListByUploader(ctx, lecturerID)
	if err != nil {
		return nil, err
	}

	namer := s.lookup.namer()
	responses := make([]dto.LecturerTaskResponse, 0, len(assignments))
	for _, assignment := range assignments {
		courseName, subjectName, err := namer.resolve(ctx, assignment.CourseID, assignment.SubjectID)
		if err != nil {
			if !errors.Is(err, ErrCourseNotFound) && !errors.Is(err, ErrSubjectNotFound) {
				return nil, err
			}
			s.logger.Warn().Err(err).Uint("assignment_id", assignment.ID).Msg("assignment references a missing course or subject")
		}

		responses = append(responses, dto.LecturerTaskResponse{
			CourseName:         courseName,
			SubjectName:        subjectName,
			AssignmentResponse: dto.NewAssignmentResponse(assignment),
		})
	}

	return responses, nil
}

func (s *assignmentService) CreateTask(ctx context.Context, lecturerID uint, payload dto.TaskRequest) (dto.AssignmentResponse, error) {
	fields, err := s.validateTask(ctx, payload)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment := models.Assignment{UploadedBy: lecturerID}
	fields.apply(&assignment)

	if err := s.assignments.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("lecturer_id", lecturerID).Msg("assignment created")
	s.audit(ctx, lecturerID, "assignment.created", assignment)
	publishEvent(ctx, s.publisher, s.logger, events.Event{
		Type:         events.AssignmentCreated,
		ActorID:      lecturerID,
		ActorRole:    RoleLecturer,
		AssignmentID: assignment.ID,
		Data:         map[string]interface{}{"course": assignment.CourseID, "due": assignment.Due},
	})

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) UpdateTask(ctx context.Context, lecturerID, assignmentID uint, payload dto.TaskRequest) (dto.AssignmentResponse, error) {
	fields, err := s.validateTask(ctx, payload)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.load(ctx, assignmentID)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if !assignment.IsOwnedBy(lecturerID) {
		s.logger.Warn().Uint("assignment_id", assignmentID).Uint("lecturer_id", lecturerID).Msg("update rejected for non-owner")
		return dto.AssignmentResponse{}, ErrNotOwner
	}

	fields.apply(&assignment)

	if err := s.assignments.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")
	s.audit(ctx, lecturerID, "assignment.updated", assignment)
	publishEvent(ctx, s.publisher, s.logger, events.Event{
		Type:         events.AssignmentUpdated,
		ActorID:      lecturerID,
		ActorRole:    RoleLecturer,
		AssignmentID: assignment.ID,
	})

	return dto.NewAssignmentResponse(assignment), nil
}

// DeleteTask removes the assignment, then strips its tracking entries from every student of the
// course. Each student is saved on its own; failures are reported per student and do not undo the
// deletion.
func (s *assignmentService) DeleteTask(ctx context.Context, lecturerID, assignmentID uint) (dto.DeleteTaskResponse, error) {
	ctx, span := s.tracer.Start(ctx, "assignment.delete")
	span.SetAttributes(
		attribute.Int64("assignment.id", int64(assignmentID)),
		attribute.Int64("assignment.actor_id", int64(lecturerID)),
	)
	defer span.End()

	assignment, err := s.load(ctx, assignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assignment_lookup_failed")
		return dto.DeleteTaskResponse{}, err
	}

	if !assignment.IsOwnedBy(lecturerID) {
		span.SetStatus(codes.Error, "not_owner")
		return dto.DeleteTaskResponse{}, ErrNotOwner
	}

	if err := s.assignments.Delete(ctx, assignment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.DeleteTaskResponse{}, ErrAssignmentNotFound
		}
		span.RecordError(err)
		return dto.DeleteTaskResponse{}, err
	}

	students, err := s.students.ListByCourse(ctx, assignment.CourseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "student_lookup_failed")
		return dto.DeleteTaskResponse{}, err
	}

	results := make([]dto.CascadeResult, 0, len(students))
	removed := 0
	for i := range students {
		student := &students[i]
		result := dto.CascadeResult{Student: student.ID, StudentID: student.StudentID}
		if student.RemoveAssignment(assignment.ID) {
			if err := s.students.Save(ctx, student); err != nil {
				s.logger.Error().Err(err).Uint("student", student.ID).Uint("assignment_id", assignment.ID).Msg("failed to strip tracking entry")
				result.Error = err.Error()
			} else {
				result.Removed = true
				removed++
			}
		}
		results = append(results, result)
	}

	observability.CascadeRemovals().Add(float64(removed))
	span.SetAttributes(attribute.Int("assignment.cascade_removed", removed))

	s.logger.Info().Uint("assignment_id", assignment.ID).Int("entries_removed", removed).Msg("assignment deleted")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    lecturerID,
		ActorRole:  RoleLecturer,
		Action:     "assignment.deleted",
		EntityType: "assignment",
		EntityID:   uintPtr(assignment.ID),
		Metadata:   map[string]interface{}{"topic_name": assignment.TopicName, "entries_removed": removed},
	})
	publishEvent(ctx, s.publisher, s.logger, events.Event{
		Type:         events.AssignmentDeleted,
		ActorID:      lecturerID,
		ActorRole:    RoleLecturer,
		AssignmentID: assignment.ID,
		Data:         map[string]interface{}{"entries_removed": removed},
	})

	return dto.DeleteTaskResponse{Message: MessageAssignmentRemoved, Students: results}, nil
}

type taskFields struct {
	courseID  uint
	subjectID uint
	topicName string
	topicURL  string
	due       time.Time
}

func (f taskFields) apply(assignment *models.Assignment) {
	assignment.CourseID = f.courseID
	assignment.SubjectID = f.subjectID
	assignment.TopicName = f.topicName
	assignment.TopicURL = f.topicURL
	assignment.Due = f.due
}

// validateTask checks the payload in the order clients expect: required fields, topic URL,
// then the course/subject pair.
func (s *assignmentService) validateTask(ctx context.Context, payload dto.TaskRequest) (taskFields, error) {
	if err := s.validator.Struct(payload); err != nil {
		return taskFields{}, err
	}

	if result := validation.ValidateURL(payload.TopicURL); !result.Valid {
		return taskFields{}, invalidInput(result.Message)
	}

	topicName := strings.TrimSpace(s.sanitizer.Sanitize(payload.TopicName))
	if topicName == "" {
		return taskFields{}, invalidInput("topicName must not be empty")
	}

	if _, _, err := s.lookup.ResolveSubject(ctx, payload.Course, payload.Subject); err != nil {
		return taskFields{}, err
	}

	due, err := parseDue(payload.Due)
	if err != nil {
		return taskFields{}, err
	}

	return taskFields{
		courseID:  payload.Course,
		subjectID: payload.Subject,
		topicName: topicName,
		topicURL:  strings.TrimSpace(payload.TopicURL),
		due:       due,
	}, nil
}

func (s *assignmentService) load(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *assignmentService) audit(ctx context.Context, lecturerID uint, action string, assignment models.Assignment) {
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    lecturerID,
		ActorRole:  RoleLecturer,
		Action:     action,
		EntityType: "assignment",
		EntityID:   uintPtr(assignment.ID),
		Metadata: map[string]interface{}{
			"course":     assignment.CourseID,
			"subject":    assignment.SubjectID,
			"topic_name": assignment.TopicName,
		},
	})
}
