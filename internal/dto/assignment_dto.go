package dto

import (
	"time"

	"github.com/noah-isme/coursework-api/internal/models"
)

// TaskRequest is the body for creating or updating an assignment.
type TaskRequest struct {
	Course    uint   `json:"course" form:"course" validate:"required,gt=0"`
	Subject   uint   `json:"subject" form:"subject" validate:"required,gt=0"`
	TopicName string `json:"topicName" form:"topicName" validate:"required,max=255"`
	TopicURL  string `json:"topicURL" form:"topicURL"`
	Due       string `json:"due" form:"due" validate:"required"`
}

// AssignmentResponse is the serialized representation of an assignment.
type AssignmentResponse struct {
	ID              uint      `json:"id"`
	UploadedBy      uint      `json:"uploadedBy"`
	Course          uint      `json:"course"`
	Subject         uint      `json:"subject"`
	TopicName       string    `json:"topicName"`
	TopicURL        string    `json:"topicURL"`
	Due             time.Time `json:"due"`
	StudentAssigned int       `json:"studentAssigned"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// LecturerTaskResponse is an assignment enriched with its course and subject names.
type LecturerTaskResponse struct {
	CourseName  string `json:"courseName"`
	SubjectName string `json:"subjectName"`
	AssignmentResponse
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:              model.ID,
		UploadedBy:      model.UploadedBy,
		Course:          model.CourseID,
		Subject:         model.SubjectID,
		TopicName:       model.TopicName,
		TopicURL:        model.TopicURL,
		Due:             model.Due,
		StudentAssigned: model.StudentAssigned,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// CascadeResult reports how deleting an assignment affected one student.
type CascadeResult struct {
	Student   uint   `json:"student"`
	StudentID string `json:"studentID"`
	Removed   bool   `json:"removed"`
	Error     string `json:"error,omitempty"`
}

// DeleteTaskResponse summarises an assignment deletion.
type DeleteTaskResponse struct {
	Message  string          `json:"message"`
	Students []CascadeResult `json:"students"`
}
