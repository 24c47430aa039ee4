package models

import "time"

// TrackingEntry records a student's submission and grading state for one assignment.
type TrackingEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StudentRef     uint      `gorm:"not null;uniqueIndex:idx_student_assignment" json:"-"`
	AssignmentID   uint      `gorm:"not null;uniqueIndex:idx_student_assignment;index" json:"assignment"`
	Submission     bool      `gorm:"not null;default:false" json:"submission"`
	SubmissionFile string    `gorm:"size:1024" json:"submissionFile,omitempty"`
	Grade          string    `gorm:"size:32" json:"grade,omitempty"`
	Comments       string    `gorm:"type:text" json:"comments,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName matches the embedded "assignments" list of a student.
func (TrackingEntry) TableName() string {
	return "student_assignments"
}

// IsSubmitted reports whether the student already handed in work for the entry.
func (e TrackingEntry) IsSubmitted() bool {
	return e.Submission
}
