package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/events"
	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/internal/observability"
	"github.com/noah-isme/coursework-api/internal/repository"
	"github.com/noah-isme/coursework-api/internal/validation"
)

// StudentTaskService exposes the student's view of assigned tasks and the submission flow.
type StudentTaskService interface {
	ViewTasks(ctx context.Context, studentRef uint) ([]dto.StudentTaskResponse, error)
	ViewTask(ctx context.Context, studentRef, submissionID uint) ([]dto.TrackingEntryResponse, error)
	Submit(ctx context.Context, studentRef, submissionID uint, payload dto.SubmitRequest) (dto.StudentResponse, error)
}

type studentTaskService struct {
	students    repository.StudentRepository
	assignments repository.AssignmentRepository
	lookup      *CourseLookup
	activity    ActivityRecorder
	publisher   events.Publisher
	logger      zerolog.Logger
}

// NewStudentTaskService constructs the student task service.
func NewStudentTaskService(students repository.StudentRepository, assignments repository.AssignmentRepository, lookup *CourseLookup, activity ActivityRecorder, publisher events.Publisher, logger zerolog.Logger) StudentTaskService {
	return &studentTaskService{
		students:    students,
		assignments: assignments,
		lookup:      lookup,
		activity:    activity,
		publisher:   publisher,
		logger:      logger.With().Str("component", "student_task_service").Logger(),
	}
}

func (s *studentTaskService) ViewTasks(ctx context.Context, studentRef uint) ([]dto.StudentTaskResponse, error) {
	student, err := s.load(ctx, studentRef)
	if err != nil {
		return nil, err
	}

	namer := s.lookup.namer()
	responses := make([]dto.StudentTaskResponse, 0, len(student.Assignments))
	for _, entry := range student.Assignments {
		assignment, err := s.assignments.GetByID(ctx, entry.AssignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn().Uint("entry_id", entry.ID).Uint("assignment_id", entry.AssignmentID).Msg("tracking entry references a deleted assignment")
				continue
			}
			return nil, err
		}

		courseName, subjectName, err := namer.resolve(ctx, assignment.CourseID, assignment.SubjectID)
		if err != nil && !errors.Is(err, ErrCourseNotFound) && !errors.Is(err, ErrSubjectNotFound) {
			return nil, err
		}

		responses = append(responses, dto.StudentTaskResponse{
			CourseName:            courseName,
			SubjectName:           subjectName,
			Course:                assignment.CourseID,
			Subject:               assignment.SubjectID,
			TopicName:             assignment.TopicName,
			TopicURL:              assignment.TopicURL,
			Due:                   assignment.Due,
			TrackingEntryResponse: dto.NewTrackingEntryResponse(entry),
		})
	}

	return responses, nil
}

func (s *studentTaskService) ViewTask(ctx context.Context, studentRef, submissionID uint) ([]dto.TrackingEntryResponse, error) {
	student, err := s.load(ctx, studentRef)
	if err != nil {
		return nil, err
	}

	matches := make([]dto.TrackingEntryResponse, 0, 1)
	if idx := student.FindEntry(submissionID); idx >= 0 {
		matches = append(matches, dto.NewTrackingEntryResponse(student.Assignments[idx]))
	}

	return matches, nil
}

// Submit records the submission file on the tracking entry. Entries are write-once. When no entry
// matches submissionID the student is saved unchanged and returned.
func (s *studentTaskService) Submit(ctx context.Context, studentRef, submissionID uint, payload dto.SubmitRequest) (dto.StudentResponse, error) {
	student, err := s.load(ctx, studentRef)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	if submissionID == 0 {
		return dto.StudentResponse{}, invalidInput("submission ID does not exist")
	}

	file := strings.TrimSpace(payload.SubmissionFile)
	if result := validation.ValidateURL(file); !result.Valid {
		observability.Submissions().WithLabelValues("invalid").Inc()
		return dto.StudentResponse{}, invalidInput(result.Message)
	}

	idx := student.FindEntry(submissionID)
	if idx >= 0 {
		entry := &student.Assignments[idx]
		if entry.IsSubmitted() {
			observability.Submissions().WithLabelValues("conflict").Inc()
			return dto.StudentResponse{}, ErrAlreadySubmitted
		}
		entry.SubmissionFile = file
		entry.Submission = true
	} else {
		s.logger.Warn().Uint("student", student.ID).Uint("submission_id", submissionID).Msg("submission id matched no tracking entry")
	}

	if err := s.students.Save(ctx, &student); err != nil {
		return dto.StudentResponse{}, err
	}

	if idx < 0 {
		observability.Submissions().WithLabelValues("unmatched").Inc()
		return dto.NewStudentResponse(student), nil
	}

	entry := student.Assignments[idx]
	observability.Submissions().WithLabelValues("submitted").Inc()
	s.logger.Info().Uint("student", student.ID).Uint("entry_id", entry.ID).Msg("assignment submitted")
	recordActivity(ctx, s.activity, s.logger, ActivityEntry{
		ActorID:    student.ID,
		ActorRole:  RoleStudent,
		Action:     "submission.received",
		EntityType: "tracking_entry",
		EntityID:   uintPtr(entry.ID),
		Metadata:   map[string]interface{}{"assignment": entry.AssignmentID, "submission_file": entry.SubmissionFile},
	})
	publishEvent(ctx, s.publisher, s.logger, events.Event{
		Type:         events.SubmissionReceived,
		ActorID:      student.ID,
		ActorRole:    RoleStudent,
		AssignmentID: entry.AssignmentID,
		StudentID:    student.StudentID,
	})

	return dto.NewStudentResponse(student), nil
}

func (s *studentTaskService) load(ctx context.Context, studentRef uint) (models.Student, error) {
	student, err := s.students.GetByID(ctx, studentRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Student{}, ErrStudentNotFound
		}
		return models.Student{}, err
	}
	return student, nil
}
