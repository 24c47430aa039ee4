package dto

import "time"

// GradeQuery identifies the student and assignment being graded.
type GradeQuery struct {
	StudentID    string `query:"studentID"`
	AssignmentID uint   `query:"assignmentId"`
}

// GradeRequest is the body of a grading call.
type GradeRequest struct {
	Grade    string `json:"grade" form:"grade" validate:"max=32"`
	Comments string `json:"comments" form:"comments" validate:"max=2000"`
}

// StudentPaperResponse is a student projected to the single entry under review.
type StudentPaperResponse struct {
	StudentID   string                  `json:"studentID"`
	Course      uint                    `json:"course"`
	IsActive    bool                    `json:"isActive"`
	Assignments []TrackingEntryResponse `json:"assignments"`
}

// PaperReviewResponse is returned to lecturers reviewing submissions. Students is nil once the
// assignment is past due and Message carries the frozen notice; while open it is always present,
// possibly empty.
type PaperReviewResponse struct {
	TopicName string                  `json:"topicName"`
	TopicURL  string                  `json:"topicURL"`
	Due       time.Time               `json:"due"`
	Students  *[]StudentPaperResponse `json:"students,omitempty"`
	Message   string                  `json:"message,omitempty"`
}
