package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/coursework-api/internal/config"
	"github.com/noah-isme/coursework-api/internal/events"
	"github.com/noah-isme/coursework-api/internal/handler"
	"github.com/noah-isme/coursework-api/internal/middleware"
	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/internal/repository"
	"github.com/noah-isme/coursework-api/internal/router"
	"github.com/noah-isme/coursework-api/internal/service"
	"github.com/noah-isme/coursework-api/internal/validation"
)

const (
	headerUser = "X-Test-User"
	headerRole = "X-Test-Role"
)

type testApp struct {
	app    *fiber.App
	db     *gorm.DB
	course models.Course
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// fakeJWT trusts identity headers so tests can act as any user.
func fakeJWT(c *fiber.Ctx) error {
	if raw := c.Get(headerUser); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		c.Locals("user_id", uint(id))
	}
	if role := c.Get(headerRole); role != "" {
		c.Locals("user_role", role)
	}
	return c.Next()
}

func setupApp(t *testing.T, submitLimiter fiber.Handler) *testApp {
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

	logger := zerolog.New(io.Discard)
	publisher := events.Nop{}

	assignmentRepo := repository.NewAssignmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	lookup := service.NewCourseLookup(repository.NewCourseRepository(db))
	activity := service.NewActivityService(repository.NewActivityLogRepository(db), logger)

	assignmentHandler := handler.NewAssignmentHandler(
		service.NewAssignmentService(assignmentRepo, studentRepo, lookup, validation.New(), activity, publisher, logger),
		service.NewDistributionService(assignmentRepo, studentRepo, activity, publisher, logger),
		service.NewGradingService(studentRepo, assignmentRepo, validation.New(), activity, publisher, false, logger),
		logger,
	)
	studentTaskHandler := handler.NewStudentTaskHandler(
		service.NewStudentTaskService(studentRepo, assignmentRepo, lookup, activity, publisher, logger),
		submitLimiter,
		logger,
	)

	app := fiber.New()
	app.Use(middleware.CorrelationID())
	router.Register(app, config.Config{AppName: "Test", AppEnv: "test", JWTSecret: "secret"}, router.Dependencies{
		AssignmentHandler:  assignmentHandler,
		StudentTaskHandler: studentTaskHandler,
		JWTMiddleware:      fakeJWT,
	})

	return &testApp{app: app, db: db, course: course}
}

func (a *testApp) do(t *testing.T, method, path string, userID uint, role string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set(headerUser, strconv.FormatUint(uint64(userID), 10))
	}
	if role != "" {
		req.Header.Set(headerRole, role)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var payload envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp, payload
}

func (a *testApp) addAssignment(t *testing.T, lecturerID uint, due time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{
		UploadedBy: lecturerID,
		CourseID:   a.course.ID,
		SubjectID:  a.course.Subjects[0].ID,
		TopicName:  "Sorting",
		TopicURL:   "https://example.com/sorting.pdf",
		Due:        due,
	}
	require.NoError(t, a.db.Create(&assignment).Error)
	return assignment
}

func (a *testApp) addStudent(t *testing.T, studentID string, entries ...models.TrackingEntry) models.Student {
	t.Helper()
	student := models.Student{StudentID: studentID, CourseID: a.course.ID, IsActive: true, Password: "hashed", Assignments: entries}
	require.NoError(t, repository.NewStudentRepository(a.db).Save(context.Background(), &student))
	return student
}

func taskPayload(course models.Course, due time.Time) map[string]interface{} {
	return map[string]interface{}{
		"course":    course.ID,
		"subject":   course.Subjects[1].ID,
		"topicName": "Joins",
		"topicURL":  "https://example.com/joins.pdf",
		"due":       due.UTC().Format(time.RFC3339),
	}
}
