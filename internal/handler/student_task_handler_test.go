package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursework-api/internal/dto"
	"github.com/noah-isme/coursework-api/internal/middleware"
	"github.com/noah-isme/coursework-api/internal/models"
)

func TestStudentViewsAndSubmitsTask(t *testing.T) {
	a := setupApp(t, nil)
	assignment := a.addAssignment(t, 1, time.Now().Add(time.Hour))
	student := a.addStudent(t, "S1", models.TrackingEntry{AssignmentID: assignment.ID})
	entryID := student.Assignments[0].ID

	resp, body := a.do(t, http.MethodGet, "/api/assignment/view-task", student.ID, "student", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var tasks []dto.StudentTaskResponse
	require.NoError(t, json.Unmarshal(body.Data, &tasks))
	require.Len(t, tasks, 1)
	require.Equal(t, "Sorting", tasks[0].TopicName)
	require.Equal(t, "Algorithms", tasks[0].SubjectName)

	resp, body = a.do(t, http.MethodGet, fmt.Sprintf("/api/assignment/view-task/%d", entryID), student.ID, "student", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var single []dto.TrackingEntryResponse
	require.NoError(t, json.Unmarshal(body.Data, &single))
	require.Len(t, single, 1)

	path := fmt.Sprintf("/api/assignment/submit-task/%d", entryID)
	resp, body = a.do(t, http.MethodPatch, path, student.ID, "student", map[string]string{"submissionFile": "https://files.example.com/s1.pdf"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated dto.StudentResponse
	require.NoError(t, json.Unmarshal(body.Data, &updated))
	require.True(t, updated.Assignments[0].Submission)

	resp, body = a.do(t, http.MethodPatch, path, student.ID, "student", map[string]string{"submissionFile": "https://files.example.com/other.pdf"})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, "Assignment has been submitted, no changes can be attempted!", body.Message)
}

func TestSubmitTaskRejectsInvalidURL(t *testing.T) {
	a := setupApp(t, nil)
	assignment := a.addAssignment(t, 1, time.Now().Add(time.Hour))
	student := a.addStudent(t, "S1", models.TrackingEntry{AssignmentID: assignment.ID})
	path := fmt.Sprintf("/api/assignment/submit-task/%d", student.Assignments[0].ID)

	resp, body := a.do(t, http.MethodPatch, path, student.ID, "student", map[string]string{"submissionFile": "ftp://files.example.com/s1.pdf"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "URL must use http or https", body.Message)

	resp, body = a.do(t, http.MethodPatch, path, student.ID, "student", map[string]string{})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "URL is required", body.Message)
}

func TestStudentRoutesRejectLecturers(t *testing.T) {
	a := setupApp(t, nil)

	resp, _ := a.do(t, http.MethodGet, "/api/assignment/view-task", 1, "lecturer", nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestUnknownStudentIsNotFound(t *testing.T) {
	a := setupApp(t, nil)

	resp, body := a.do(t, http.MethodGet, "/api/assignment/view-task", 404, "student", nil)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "Student does not exist, invalid studentID", body.Message)
}

func TestSubmitTaskIsRateLimited(t *testing.T) {
	a := setupApp(t, middleware.RateLimit("submit-task", 1, time.Minute, nil))
	assignment := a.addAssignment(t, 1, time.Now().Add(time.Hour))
	student := a.addStudent(t, "S1", models.TrackingEntry{AssignmentID: assignment.ID})
	path := fmt.Sprintf("/api/assignment/submit-task/%d", student.Assignments[0].ID)
	payload := map[string]string{"submissionFile": "https://files.example.com/s1.pdf"}

	resp, _ := a.do(t, http.MethodPatch, path, student.ID, "student", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = a.do(t, http.MethodPatch, path, student.ID, "student", payload)
	require.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
