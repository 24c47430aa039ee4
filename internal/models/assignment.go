package models

import "time"

// Assignment is a task uploaded by a lecturer for one subject of a course.
type Assignment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UploadedBy      uint      `gorm:"not null;index" json:"uploadedBy"`
	CourseID        uint      `gorm:"not null;index" json:"course"`
	SubjectID       uint      `gorm:"not null" json:"subject"`
	TopicName       string    `gorm:"size:255;not null" json:"topicName"`
	TopicURL        string    `gorm:"size:1024;not null" json:"topicURL"`
	Due             time.Time `gorm:"not null" json:"due"`
	StudentAssigned int       `gorm:"not null;default:0" json:"studentAssigned"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsOpen reports whether the due date is strictly after the reference instant.
func (a Assignment) IsOpen(reference time.Time) bool {
	return a.Due.After(reference)
}

// IsOwnedBy reports whether the lecturer uploaded the assignment.
func (a Assignment) IsOwnedBy(lecturerID uint) bool {
	return a.UploadedBy == lecturerID
}
