package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/internal/repository"
)

// CourseLookup resolves courses and confirms subjects belong to them.
type CourseLookup struct {
	courses repository.CourseRepository
}

// NewCourseLookup builds a lookup over the course repository.
func NewCourseLookup(courses repository.CourseRepository) *CourseLookup {
	return &CourseLookup{courses: courses}
}

// Course loads a course, mapping a missing record to ErrCourseNotFound.
func (l *CourseLookup) Course(ctx context.Context, courseID uint) (models.Course, error) {
	course, err := l.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}

// ResolveSubject returns the course and the subject within it.
func (l *CourseLookup) ResolveSubject(ctx context.Context, courseID, subjectID uint) (models.Course, models.Subject, error) {
	course, err := l.Course(ctx, courseID)
	if err != nil {
		return models.Course{}, models.Subject{}, err
	}

	subject, ok := course.FindSubject(subjectID)
	if !ok {
		return models.Course{}, models.Subject{}, ErrSubjectNotFound
	}

	return course, subject, nil
}

// names resolves course and subject names for presentation, remembering courses for the
// lifetime of one call.
type names struct {
	lookup  *CourseLookup
	courses map[uint]models.Course
}

func (l *CourseLookup) namer() *names {
	return &names{lookup: l, courses: make(map[uint]models.Course)}
}

func (n *names) resolve(ctx context.Context, courseID, subjectID uint) (string, string, error) {
	course, ok := n.courses[courseID]
	if !ok {
		loaded, err := n.lookup.Course(ctx, courseID)
		if err != nil {
			return "", "", err
		}
		n.courses[courseID] = loaded
		course = loaded
	}

	subject, found := course.FindSubject(subjectID)
	if !found {
		return course.CourseName, "", ErrSubjectNotFound
	}

	return course.CourseName, subject.SubjectName, nil
}
