package models

import "time"

// Student is a learner enrolled in a single course. Tracking entries live inside the aggregate.
type Student struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	StudentID   string          `gorm:"size:64;uniqueIndex;not null" json:"studentID"`
	CourseID    uint            `gorm:"not null;index" json:"course"`
	IsActive    bool            `gorm:"not null" json:"isActive"`
	Password    string          `gorm:"size:255" json:"-"`
	DOB         *time.Time      `json:"-"`
	Gender      string          `gorm:"size:16" json:"-"`
	Assignments []TrackingEntry `gorm:"foreignKey:StudentRef;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignments"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// FindEntry returns the index of the tracking entry with the given id, or -1.
func (s Student) FindEntry(entryID uint) int {
	for i, entry := range s.Assignments {
		if entry.ID == entryID {
			return i
		}
	}
	return -1
}

// FindEntryForAssignment returns the index of the entry referencing the assignment, or -1.
func (s Student) FindEntryForAssignment(assignmentID uint) int {
	for i, entry := range s.Assignments {
		if entry.AssignmentID == assignmentID {
			return i
		}
	}
	return -1
}

// HasAssignment reports whether the assignment was already distributed to the student.
func (s Student) HasAssignment(assignmentID uint) bool {
	return s.FindEntryForAssignment(assignmentID) >= 0
}

// RemoveAssignment strips every entry referencing the assignment and reports whether any was removed.
func (s *Student) RemoveAssignment(assignmentID uint) bool {
	kept := s.Assignments[:0]
	removed := false
	for _, entry := range s.Assignments {
		if entry.AssignmentID == assignmentID {
			removed = true
			continue
		}
		kept = append(kept, entry)
	}
	s.Assignments = kept
	return removed
}
