package sqlxrepos

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/user"
	"github.com/trezcool/ams/storage/database"
)

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{tag: "id,omitempty", want: "id,omitempty"},
		{tag: "rollNumber", want: "roll_number"},
		{tag: "subjectName", want: "subject_name"},
		{tag: "teacherId,omitempty", want: "teacher_id,omitempty"},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, snakeCase(tt.tag))
		})
	}
}

// openTestDB migrates a scratch database named by TEST_DATABASE_URL.
func openTestDB(t *testing.T) *sqlx.DB {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Open(ctx, url)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(db.DB, "up"); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	db.MustExec("TRUNCATE users, students, classes, class_subjects, exams, courses, marks, attendance")
	return db
}

func TestRecordsAPI(t *testing.T) {
	db := openTestDB(t)
	api := NewRecordsAPI(db)
	ctx := context.Background()

	assert.True(t, api.Health(ctx).OK)

	ann, err := api.Students().Create(ctx, record.Student{Name: "Ann", Class: "10", Section: "A", RollNumber: "1", Status: record.StatusActive})
	assert.NoError(t, err)
	assert.NotEmpty(t, ann.ID)

	ann.RollNumber = "2"
	_, err = api.Students().Update(ctx, ann.ID, ann)
	assert.NoError(t, err)
	_, err = api.Students().Update(ctx, "ghost", ann)
	assert.Equal(t, record.ErrNotFound, err)

	students, err := api.ListClassStudents(ctx, "10", "")
	assert.NoError(t, err)
	assert.Equal(t, []record.Student{ann}, students)

	cls, err := api.Classes().Create(ctx, record.Class{Name: "Grade 10", GradeLevel: "10"})
	assert.NoError(t, err)
	subjects := api.ClassSubjects(cls.ID)
	cs, err := subjects.Create(ctx, record.ClassSubject{SubjectID: "subj-math", TeacherID: "t-1"})
	assert.NoError(t, err)
	assert.Equal(t, "Mathematics", cs.SubjectName)
	assert.Equal(t, "Alice Johnson", cs.TeacherName)
	_, err = subjects.Create(ctx, record.ClassSubject{SubjectID: "subj-math"})
	assert.Equal(t, record.ErrConflict, err)

	cs, err = subjects.Update(ctx, cs.ID, record.ClassSubject{})
	assert.NoError(t, err)
	assert.Empty(t, cs.TeacherID)

	assert.NoError(t, api.Classes().Delete(ctx, cls.ID))
	list, err := subjects.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, list)

	batch := record.MarkBatch{
		ExamID: "ex1", SubjectID: "subj-sci", Class: "10", Section: "A",
		Entries: []record.MarkEntry{{StudentID: ann.ID, Score: 91}},
	}
	saved, err := api.UpsertMarks(ctx, batch)
	assert.NoError(t, err)
	markID := saved.Entries[0].MarkID
	assert.NotEmpty(t, markID)

	batch.Entries[0].Score = 64
	saved, err = api.UpsertMarks(ctx, batch)
	assert.NoError(t, err)
	assert.Equal(t, markID, saved.Entries[0].MarkID)

	rep, err := api.StudentReport(ctx, ann.ID, "ex1")
	assert.NoError(t, err)
	assert.Equal(t, "D", rep.Grade)

	q := record.AttendanceQuery{Date: "2024-03-01", Class: "10", Section: "A"}
	sheet, err := api.GetAttendance(ctx, q)
	assert.NoError(t, err)
	assert.Equal(t, 1, sheet.Present())
	sheet.Entries[0].Present = false
	_, err = api.SaveAttendance(ctx, sheet)
	assert.NoError(t, err)
	sheet, err = api.GetAttendance(ctx, q)
	assert.NoError(t, err)
	assert.Equal(t, 0, sheet.Present())

	assert.NoError(t, api.DeleteMark(ctx, markID))
	assert.Equal(t, record.ErrNotFound, api.DeleteMark(ctx, markID))
}

func TestUserRepository(t *testing.T) {
	db := openTestDB(t)
	svc := user.NewService(NewUserRepository(db))
	ctx := context.Background()

	usr, err := svc.UpsertAdmin(ctx, "Head", "head@school.test", "pwd", user.RoleAdmin)
	assert.NoError(t, err)

	got, err := svc.Authenticate(ctx, user.Credentials{Email: "head@school.test", Password: "pwd"})
	assert.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = svc.UpsertAdmin(ctx, "", "head@school.test", "new-pwd", user.RoleTeacher)
	assert.NoError(t, err)
	got, err = svc.GetByID(ctx, usr.ID)
	assert.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, got.Role)
	assert.Equal(t, "Head", got.Name)

	_, err = svc.GetByID(ctx, "ghost")
	assert.Equal(t, user.ErrNotFound, err)
}
