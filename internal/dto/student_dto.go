package dto

import (
	"time"

	"github.com/noah-isme/coursework-api/internal/models"
)

// SubmitRequest is the body of a student's submission.
type SubmitRequest struct {
	SubmissionFile string `json:"submissionFile" form:"submissionFile"`
}

// TrackingEntryResponse serializes a student's tracking entry.
type TrackingEntryResponse struct {
	ID             uint   `json:"id"`
	Assignment     uint   `json:"assignment"`
	Submission     bool   `json:"submission"`
	SubmissionFile string `json:"submissionFile,omitempty"`
	Grade          string `json:"grade,omitempty"`
	Comments       string `json:"comments,omitempty"`
}

// StudentResponse is a student without password, date of birth and gender.
type StudentResponse struct {
	ID          uint                    `json:"id"`
	StudentID   string                  `json:"studentID"`
	Course      uint                    `json:"course"`
	IsActive    bool                    `json:"isActive"`
	Assignments []TrackingEntryResponse `json:"assignments"`
}

// StudentTaskResponse is a tracking entry flattened with its assignment, course and subject.
type StudentTaskResponse struct {
	CourseName  string    `json:"courseName"`
	SubjectName string    `json:"subjectName"`
	Course      uint      `json:"course"`
	Subject     uint      `json:"subject"`
	TopicName   string    `json:"topicName"`
	TopicURL    string    `json:"topicURL"`
	Due         time.Time `json:"due"`
	TrackingEntryResponse
}

// NewTrackingEntryResponse converts a tracking entry into a DTO.
func NewTrackingEntryResponse(entry models.TrackingEntry) TrackingEntryResponse {
	return TrackingEntryResponse{
		ID:             entry.ID,
		Assignment:     entry.AssignmentID,
		Submission:     entry.Submission,
		SubmissionFile: entry.SubmissionFile,
		Grade:          entry.Grade,
		Comments:       entry.Comments,
	}
}

// NewTrackingEntryResponseSlice converts entries into DTOs, never returning nil.
func NewTrackingEntryResponseSlice(entries []models.TrackingEntry) []TrackingEntryResponse {
	responses := make([]TrackingEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewTrackingEntryResponse(entry))
	}
	return responses
}

// NewStudentResponse converts a student aggregate into its public projection.
func NewStudentResponse(model models.Student) StudentResponse {
	return StudentResponse{
		ID:          model.ID,
		StudentID:   model.StudentID,
		Course:      model.CourseID,
		IsActive:    model.IsActive,
		Assignments: NewTrackingEntryResponseSlice(model.Assignments),
	}
}
