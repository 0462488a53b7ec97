// Package record holds the typed entities exchanged with the Records API, the
// normalization applied to every raw payload entering the app, and the API
// contract the dashboard, the HTTP client and the stores agree on.
package record

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Resource is the CRUD surface of one collection.
type Resource[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id string, rec T) (T, error)
	Delete(ctx context.Context, id string) error
}

// API is the Records API as seen by the app.
type API interface {
	Health(ctx context.Context) HealthStatus

	Students() Resource[Student]
	Classes() Resource[Class]
	Exams() Resource[Exam]
	Courses() Resource[Course]
	// ClassSubjects scopes subject assignments to one class.
	// Update changes the assigned teacher only.
	ClassSubjects(classID string) Resource[ClassSubject]

	ListSubjects(ctx context.Context) ([]Subject, error)
	ListTeachers(ctx context.Context) ([]Teacher, error)
	ListClassStudents(ctx context.Context, class, section string) ([]Student, error)

	ListMarks(ctx context.Context, q MarkQuery) ([]Mark, error)
	UpsertMarks(ctx context.Context, batch MarkBatch) (MarkBatch, error)
	DeleteMark(ctx context.Context, id string) error
	StudentReport(ctx context.Context, studentID, examID string) (StudentReport, error)

	GetAttendance(ctx context.Context, q AttendanceQuery) (AttendanceSheet, error)
	SaveAttendance(ctx context.Context, sheet AttendanceSheet) (AttendanceSheet, error)
}

// HealthStatus is the outcome of a health check, it never carries a Go error.
type HealthStatus struct {
	OK      bool        `json:"ok"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// APIError is a non-2xx reply of the Records API.
type APIError struct {
	Status int
	Body   interface{} // decoded JSON or raw text
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Message extracts a human readable message from the error body, if any.
func (e *APIError) Message() string {
	switch b := e.Body.(type) {
	case string:
		return b
	case map[string]interface{}:
		for _, k := range []string{"message", "error"} {
			if s, ok := b[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// StatusOf returns the HTTP status carried by err, 0 when none.
func StatusOf(err error) int {
	if apiErr, ok := errors.Cause(err).(*APIError); ok {
		return apiErr.Status
	}
	return 0
}
