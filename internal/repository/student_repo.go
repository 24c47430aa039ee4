package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/coursework-api/internal/models"
)

// StudentRepository provides access to student aggregates and their tracking entries.
type StudentRepository interface {
	GetByID(ctx context.Context, id uint) (models.Student, error)
	GetByStudentID(ctx context.Context, studentID string) (models.Student, error)
	ListByCourse(ctx context.Context, courseID uint) ([]models.Student, error)
	ListWithSubmittedEntry(ctx context.Context, assignmentID uint) ([]models.Student, error)
	Save(ctx context.Context, student *models.Student) error
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) withEntries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Assignments", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

func (r *studentRepository) GetByID(ctx context.Context, id uint) (models.Student, error) {
	var student models.Student
	if err := r.withEntries(ctx).First(&student, id).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) GetByStudentID(ctx context.Context, studentID string) (models.Student, error) {
	var student models.Student
	if err := r.withEntries(ctx).Where("student_id = ?", studentID).First(&student).Error; err != nil {
		return models.Student{}, err
	}

	return student, nil
}

func (r *studentRepository) ListByCourse(ctx context.Context, courseID uint) ([]models.Student, error) {
	var students []models.Student
	if err := r.withEntries(ctx).Where("course_id = ?", courseID).Order("id ASC").Find(&students).Error; err != nil {
		return nil, err
	}

	return students, nil
}

// ListWithSubmittedEntry returns students holding a submitted entry for the assignment. Only that
// entry is loaded into each student's Assignments.
func (r *studentRepository) ListWithSubmittedEntry(ctx context.Context, assignmentID uint) ([]models.Student, error) {
	submitted := r.db.Model(&models.TrackingEntry{}).
		Select("student_ref").
		Where("assignment_id = ? AND submission = ?", assignmentID, true)

	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("id IN (?)", submitted).
		Preload("Assignments", "assignment_id = ?", assignmentID).
		Order("student_id ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}

	return students, nil
}

// Save writes the student row and replaces its tracking entries in one transaction.
// Entries missing from student.Assignments are deleted.
func (r *studentRepository) Save(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(student).Error; err != nil {
			return err
		}

		keep := make([]uint, 0, len(student.Assignments))
		for _, entry := range student.Assignments {
			if entry.ID != 0 {
				keep = append(keep, entry.ID)
			}
		}

		stale := tx.Where("student_ref = ?", student.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.TrackingEntry{}).Error; err != nil {
			return err
		}

		for i := range student.Assignments {
			entry := &student.Assignments[i]
			entry.StudentRef = student.ID
			if err := tx.Save(entry).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
