package record

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ams/core"
)

func TestStudent_Validate(t *testing.T) {
	existing := []Student{
		{ID: "s1", Name: "Ann", Class: "10", Section: "A", RollNumber: "1"},
		{ID: "s2", Name: "Ben", Class: "10", Section: "B", RollNumber: "1"},
	}
	valid := Student{Name: "Cy", Class: "10", Section: "A", RollNumber: "2"}

	tests := []struct {
		name       string
		student    Student
		wantFields map[string]string
	}{
		{name: "valid", student: valid},
		{
			name:    "required fields",
			student: Student{},
			wantFields: map[string]string{
				"name":       "name is required",
				"class":      "class is required",
				"section":    "section is required",
				"rollNumber": "rollNumber is required",
			},
		},
		{
			name:       "bad email",
			student:    Student{Name: "Cy", Email: "nope", Class: "10", Section: "A", RollNumber: "2"},
			wantFields: map[string]string{"email": "invalid email"},
		},
		{name: "loose email accepted", student: Student{Name: "Cy", Email: "a@b.c", Class: "10", Section: "A", RollNumber: "2"}},
		{
			name:       "duplicate roll number",
			student:    Student{Name: "Cy", Class: "10", Section: "A", RollNumber: "1"},
			wantFields: map[string]string{"rollNumber": rollNumberTakenText},
		},
		{
			name:       "duplicate roll number with padding",
			student:    Student{Name: "Cy", Class: "10", Section: "A", RollNumber: " 1 "}.Clean(),
			wantFields: map[string]string{"rollNumber": rollNumberTakenText},
		},
		{name: "same roll in another section", student: Student{Name: "Cy", Class: "10", Section: "C", RollNumber: "1"}},
		{name: "editing itself", student: Student{ID: "s1", Name: "Ann", Class: "10", Section: "A", RollNumber: "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.student.Validate(existing)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, core.IsValidationError(err), err)
			assert.Equal(t, tt.wantFields, core.FieldErrors(err))
		})
	}
}

func TestClassAndExam_Validate(t *testing.T) {
	assert.NoError(t, Class{Name: "Ten", GradeLevel: "10"}.Validate())
	assert.Equal(t, map[string]string{"gradeLevel": "gradeLevel is required"}, core.FieldErrors(Class{Name: "Ten"}.Validate()))

	assert.NoError(t, Exam{Name: "Mid", StartDate: "2024-01-01", EndDate: "2024-01-02"}.Validate())
	assert.Equal(t, map[string]string{"name": "name is required"}, core.FieldErrors(Exam{}.Validate()))
	assert.Equal(t, map[string]string{"endDate": endBeforeStartText},
		core.FieldErrors(Exam{Name: "Mid", StartDate: "2024-01-05", EndDate: "2024-01-02"}.Validate()))
	assert.Contains(t, core.FieldErrors(Exam{Name: "Mid", StartDate: "05/01/2024"}.Validate()), "startDate")

	assert.NoError(t, Course{Code: "CS1", Title: "T"}.Validate())
	assert.Len(t, core.FieldErrors(Course{}.Validate()), 2)
}

func TestMarkBatch_Validate(t *testing.T) {
	tests := []struct {
		name    string
		batch   MarkBatch
		wantErr string
	}{
		{name: "no exam", batch: MarkBatch{SubjectID: "x", Class: "10", Section: "A"}, wantErr: "Please select Exam and Subject."},
		{name: "no subject", batch: MarkBatch{ExamID: "e", Class: "10", Section: "A"}, wantErr: "Please select Exam and Subject."},
		{
			name:    "score out of range",
			batch:   MarkBatch{ExamID: "e", SubjectID: "x", Class: "10", Section: "A", Entries: []MarkEntry{{StudentID: "s1", Score: 101}}},
			wantErr: "invalid form",
		},
		{
			name:  "valid",
			batch: MarkBatch{ExamID: "e", SubjectID: "x", Class: "10", Section: "A", Entries: []MarkEntry{{StudentID: "s1", Score: 100}, {StudentID: "s2"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.batch.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Equal(t, tt.wantErr, err.Error())
				assert.True(t, core.IsValidationError(err))
			}
		})
	}
}

func TestMarkBatch_Marks(t *testing.T) {
	b := MarkBatch{ExamID: "e", Class: "10", Section: "A", SubjectID: "x", Entries: []MarkEntry{{StudentID: "s1", Score: 50, MarkID: "m1"}}}
	assert.Equal(t, []Mark{{ID: "m1", StudentID: "s1", SubjectID: "x", ExamID: "e", Class: "10", Section: "A", Score: 50}}, b.Marks())
}

func TestBuildStudentReport(t *testing.T) {
	empty := BuildStudentReport("s1", "e1", nil)
	assert.Equal(t, "F", empty.Grade)
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.Marks)
}

func TestAPIError(t *testing.T) {
	err := &APIError{Status: 404, Body: map[string]interface{}{"error": "not found"}}
	assert.Equal(t, "not found", err.Message())
	assert.Equal(t, 404, StatusOf(err))
	assert.Equal(t, 0, StatusOf(nil))
	assert.Equal(t, "oops", (&APIError{Status: 500, Body: "oops"}).Message())
}

func TestSearchAndSortStudents(t *testing.T) {
	students := []Student{
		{ID: "1", Name: "bob", Class: "10", Section: "B", RollNumber: "2"},
		{ID: "2", Name: "Alice", Class: "9", Section: "A", RollNumber: "10"},
		{ID: "3", Name: "Carl", Class: "10", Section: "A", RollNumber: "1"},
	}

	ids := func(list []Student) []string {
		out := make([]string, 0, len(list))
		for _, s := range list {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3"}, ids(SearchStudents(students, "  ")))
	assert.Equal(t, []string{"2", "3"}, ids(SearchStudents(students, "a")))
	assert.Equal(t, []string{"1"}, ids(SearchStudents(students, "B")))

	tests := []struct {
		ordering string
		want     []string
	}{
		{ordering: "name", want: []string{"2", "1", "3"}},
		{ordering: "-name", want: []string{"3", "1", "2"}},
		{ordering: "rollNumber", want: []string{"3", "2", "1"}}, // text order
		{ordering: "class,section", want: []string{"3", "1", "2"}},
		{ordering: "unknown", want: []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.ordering, func(t *testing.T) {
			list := append([]Student(nil), students...)
			SortStudents(list, core.ParseOrdering(tt.ordering))
			assert.Equal(t, tt.want, ids(list))
		})
	}
}
