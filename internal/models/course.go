package models

import "time"

// Course groups the subjects students enrol under.
type Course struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CourseName string    `gorm:"size:255;not null" json:"courseName"`
	Subjects   []Subject `gorm:"foreignKey:CourseID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"subjects"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Subject is an ordered entry of a course.
type Subject struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CourseID    uint   `gorm:"not null;index" json:"-"`
	SubjectName string `gorm:"size:255;not null" json:"subjectName"`
	Position    int    `gorm:"not null;default:0" json:"-"`
}

// TableName keeps subjects scoped to their course.
func (Subject) TableName() string {
	return "course_subjects"
}

// FindSubject returns the subject with the given id when it belongs to the course.
func (c Course) FindSubject(subjectID uint) (Subject, bool) {
	for _, subject := range c.Subjects {
		if subject.ID == subjectID {
			return subject, true
		}
	}
	return Subject{}, false
}
