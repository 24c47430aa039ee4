package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/coursework-api/internal/events"
	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/internal/repository"
	"github.com/noah-isme/coursework-api/internal/validation"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

type fixture struct {
	db          *gorm.DB
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	activityLog repository.ActivityLogRepository
	lookup      *CourseLookup
	activity    ActivityRecorder
	publisher   *recordingPublisher
	course      models.Course
	other       models.Course
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	course := models.Course{CourseName: "Computer Science", Subjects: []models.Subject{
		{SubjectName: "Algorithms", Position: 1},
		{SubjectName: "Databases", Position: 2},
	}}
	require.NoError(t, db.Create(&course).Error)

	other := models.Course{CourseName: "Mathematics", Subjects: []models.Subject{
		{SubjectName: "Calculus", Position: 1},
	}}
	require.NoError(t, db.Create(&other).Error)

	activityLog := repository.NewActivityLogRepository(db)
	return &fixture{
		db:          db,
		assignments: repository.NewAssignmentRepository(db),
		students:    repository.NewStudentRepository(db),
		activityLog: activityLog,
		lookup:      NewCourseLookup(repository.NewCourseRepository(db)),
		activity:    NewActivityService(activityLog, testLogger()),
		publisher:   &recordingPublisher{},
		course:      course,
		other:       other,
	}
}

func (f *fixture) assignmentService() AssignmentService {
	return NewAssignmentService(f.assignments, f.students, f.lookup, validation.New(), f.activity, f.publisher, testLogger())
}

func (f *fixture) distributionService() DistributionService {
	return NewDistributionService(f.assignments, f.students, f.activity, f.publisher, testLogger())
}

func (f *fixture) studentTaskService() StudentTaskService {
	return NewStudentTaskService(f.students, f.assignments, f.lookup, f.activity, f.publisher, testLogger())
}

func (f *fixture) gradingService(enforceDueGate bool) GradingService {
	return NewGradingService(f.students, f.assignments, validation.New(), f.activity, f.publisher, enforceDueGate, testLogger())
}

func (f *fixture) addAssignment(t *testing.T, lecturerID uint, due time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		UploadedBy: lecturerID,
		CourseID:   f.course.ID,
		SubjectID:  f.course.Subjects[0].ID,
		TopicName:  "Sorting",
		TopicURL:   "https://example.com/sorting.pdf",
		Due:        due,
	}
	require.NoError(t, f.assignments.Create(context.Background(), &assignment))
	return assignment
}

func (f *fixture) addStudent(t *testing.T, studentID string, courseID uint, active bool, entries ...models.TrackingEntry) models.Student {
	t.Helper()
	student := models.Student{StudentID: studentID, CourseID: courseID, IsActive: active, Password: "hashed", Gender: "f", Assignments: entries}
	require.NoError(t, f.students.Save(context.Background(), &student))
	return student
}

func (f *fixture) reloadStudent(t *testing.T, id uint) models.Student {
	t.Helper()
	student, err := f.students.GetByID(context.Background(), id)
	require.NoError(t, err)
	return student
}

func (f *fixture) reloadAssignment(t *testing.T, id uint) models.Assignment {
	t.Helper()
	assignment, err := f.assignments.GetByID(context.Background(), id)
	require.NoError(t, err)
	return assignment
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.Type)
	}
	return types
}

// flakyStudentRepo fails Save for one student to exercise partial fan-out.
type flakyStudentRepo struct {
	repository.StudentRepository
	failFor uint
}

var errSaveFailed = errors.New("write conflict")

func (r *flakyStudentRepo) Save(ctx context.Context, student *models.Student) error {
	if student.ID == r.failFor {
		return errSaveFailed
	}
	return r.StudentRepository.Save(ctx, student)
}
