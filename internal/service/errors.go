package service

import "errors"

var (
	// ErrCourseNotFound indicates the referenced course does not exist.
	ErrCourseNotFound = errors.New("course does not exist")
	// ErrSubjectNotFound indicates the subject is not part of the course.
	ErrSubjectNotFound = errors.New("subject does not exist")
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrStudentNotFound indicates the student record could not be resolved.
	ErrStudentNotFound = errors.New("student not found")
	// ErrEntryNotFound indicates the student holds no tracking entry for the assignment.
	ErrEntryNotFound = errors.New("assignment entry not found for student")
	// ErrNotOwner indicates the lecturer did not upload the assignment.
	ErrNotOwner = errors.New("unauthorized request, please try again later")
	// ErrAlreadySubmitted indicates the tracking entry is write-once and was already submitted.
	ErrAlreadySubmitted = errors.New("assignment has been submitted, no changes can be attempted")
	// ErrNotSubmitted indicates grading was attempted on an entry the student has not submitted.
	ErrNotSubmitted = errors.New("assignment has not been submitted yet")
	// ErrGradingClosed indicates grading was attempted after the due date while the gate is enforced.
	ErrGradingClosed = errors.New("assignment submission due date has passed, grading is closed")
	// ErrInvalidInput matches every InputError.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError is a validation failure whose message is safe to return to the client.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrInvalidInput) match.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(message string) error {
	return &InputError{Message: message}
}
