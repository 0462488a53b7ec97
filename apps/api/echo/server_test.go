package echoapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/user"
)

func TestHealth(t *testing.T) {
	app := setup(t, false)
	runHTTPTests(t, app, []httpTest{
		{name: "health", path: "/health", wantData: []byte(`{"ok":true,"data":{"status":"ok","storage":"memory"}}`)},
		{name: "unknown route", path: "/nope", wantCode: http.StatusNotFound, wantData: []byte(`{"error":"Not Found"}`)},
	})
}

func TestStudentsAPI(t *testing.T) {
	app := setup(t, false)
	ctx := context.Background()
	ann, _ := app.api.Students().Create(ctx, record.Student{Name: "Ann", Class: "10", Section: "A", RollNumber: "2", Status: "Active"})
	bob, _ := app.api.Students().Create(ctx, record.Student{Name: "bob", Class: "10", Section: "A", RollNumber: "1", Status: "Active"})

	created := record.Student{ID: "student-3", Name: "Cy", Class: "10", Section: "B", RollNumber: "1", Status: "Active"}

	runHTTPTests(t, app, []httpTest{
		{name: "list", path: "/students", wantData: marshalObj(t, []record.Student{ann, bob})},
		{name: "ordering", path: "/students?ordering=-name", wantData: marshalObj(t, []record.Student{bob, ann})},
		{name: "ordering by roll", path: "/students?ordering=rollNumber", wantData: marshalObj(t, []record.Student{bob, ann})},
		{name: "search", path: "/students?search=BO", wantData: marshalObj(t, []record.Student{bob})},
		{
			name: "create missing fields", method: http.MethodPost, path: "/students", body: []byte(`{"name":" "}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"name":"name is required","class":"class is required","section":"section is required","rollNumber":"rollNumber is required"}`),
		},
		{
			name: "create duplicate roll", method: http.MethodPost, path: "/students",
			body:     []byte(`{"name":"Dup","klass":"10","section":"A","rollNumber":"1"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"rollNumber":"Roll number must be unique within Class + Section"}`),
		},
		{
			name: "create", method: http.MethodPost, path: "/students",
			body:     []byte(`{"id":"tmp-99","name":"Cy","klass":"10","section":"B","rollNumber":"1"}`),
			wantCode: http.StatusCreated, wantData: marshalObj(t, created),
		},
		{
			name: "update keeps own roll number", method: http.MethodPut, path: "/students/" + bob.ID,
			body:     []byte(`{"name":"Bob","class":"10","section":"A","rollNumber":"1"}`),
			wantData: []byte(`{"id":"student-2","name":"Bob","email":"","class":"10","section":"A","rollNumber":"1","status":"Active"}`),
		},
		{
			name: "update unknown", method: http.MethodPut, path: "/students/ghost",
			body:     []byte(`{"name":"G","class":"1","section":"A","rollNumber":"1"}`),
			wantCode: http.StatusNotFound, wantData: []byte(`{"error":"not found"}`),
		},
		{name: "delete", method: http.MethodDelete, path: "/students/" + ann.ID, wantData: []byte(`{"ok":true,"id":"student-1"}`)},
		{name: "delete again", method: http.MethodDelete, path: "/students/" + ann.ID, wantCode: http.StatusNotFound},
		{name: "bad json", method: http.MethodPost, path: "/exams", body: []byte(`{`), wantCode: http.StatusBadRequest},
	})
}

func TestAcademicsAPI(t *testing.T) {
	app := setup(t, false)
	ctx := context.Background()
	stu, _ := app.api.Students().Create(ctx, record.Student{Name: "Ann", Class: "10", Section: "A", RollNumber: "1"})

	runHTTPTests(t, app, []httpTest{
		{name: "subjects", path: "/subjects", wantData: marshalObj(t, record.DefaultSubjects())},
		{name: "teachers", path: "/teachers", wantData: marshalObj(t, record.DefaultTeachers())},
		{name: "class students", path: "/classes/10/sections/A/students", wantData: marshalObj(t, []record.Student{stu})},
		{
			name: "marks need exam and subject", method: http.MethodPost, path: "/marks",
			body:     []byte(`{"class":"10","section":"A","entries":[]}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"error":"Please select Exam and Subject."}`),
		},
		{
			name: "marks out of range", method: http.MethodPost, path: "/marks",
			body:     []byte(`{"examId":"ex1","subjectId":"subj-math","class":"10","section":"A","entries":[{"studentId":"student-1","score":101}]}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "upsert marks", method: http.MethodPost, path: "/marks",
			body:     []byte(`{"examId":"ex1","subjectId":"subj-math","klass":"10","section":"A","entries":[{"studentId":"student-1","score":"85"}]}`),
			wantData: []byte(`{"examId":"ex1","class":"10","section":"A","subjectId":"subj-math","entries":[{"studentId":"student-1","score":85,"markId":"mark-2"}]}`),
		},
		{
			name: "list marks", path: "/marks?examId=ex1&class=10&section=A",
			wantData: []byte(`[{"id":"mark-2","studentId":"student-1","subjectId":"subj-math","examId":"ex1","class":"10","section":"A","score":85}]`),
		},
		{
			name: "report", path: "/reports/students/student-1?examId=ex1",
			wantData: []byte(`{"studentId":"student-1","examId":"ex1","marks":[{"subjectId":"subj-math","subjectName":"Mathematics","score":85}],"total":85,"average":85,"percentage":85,"grade":"B"}`),
		},
		{name: "delete mark", method: http.MethodDelete, path: "/marks/mark-2", wantData: []byte(`{"ok":true,"markId":"mark-2"}`)},
		{name: "attendance needs date", path: "/attendance?class=10", wantCode: http.StatusBadRequest},
		{
			name: "attendance", path: "/attendance?date=2024-03-01&class=10&section=A",
			wantData: []byte(`{"date":"2024-03-01","class":"10","section":"A","entries":[{"studentId":"student-1","name":"Ann","present":true}]}`),
		},
		{
			name: "save attendance", method: http.MethodPut, path: "/attendance",
			body:     []byte(`{"date":"2024-03-01","class":"10","section":"A","entries":[{"studentId":"student-1","present":false}]}`),
			wantData: []byte(`{"date":"2024-03-01","class":"10","section":"A","entries":[{"studentId":"student-1","present":false}]}`),
		},
	})
}

func TestClassSubjectsAPI(t *testing.T) {
	app := setup(t, false)
	cls, _ := app.api.Classes().Create(context.Background(), record.Class{Name: "Grade 10", GradeLevel: "10"})
	base := "/classes/" + cls.ID + "/subjects"

	runHTTPTests(t, app, []httpTest{
		{name: "empty", path: base, wantData: []byte(`[]`)},
		{name: "subject required", method: http.MethodPost, path: base, body: []byte(`{"teacherId":"t-1"}`), wantCode: http.StatusBadRequest},
		{
			name: "assign", method: http.MethodPost, path: base, body: []byte(`{"subjectId":"subj-eng","teacherId":null}`),
			wantCode: http.StatusCreated,
			wantData: []byte(`{"id":"classSubject-2","classId":"class-1","subjectId":"subj-eng","subjectName":"English"}`),
		},
		{name: "assign twice", method: http.MethodPost, path: base, body: []byte(`{"subjectId":"subj-eng"}`), wantCode: http.StatusConflict},
		{
			name: "change teacher", method: http.MethodPut, path: base + "/classSubject-2/teacher", body: []byte(`{"teacherId":"t-1"}`),
			wantData: []byte(`{"id":"classSubject-2","classId":"class-1","subjectId":"subj-eng","subjectName":"English","teacherId":"t-1","teacherName":"Alice Johnson"}`),
		},
		{
			name: "unassign teacher", method: http.MethodPut, path: base + "/classSubject-2/teacher", body: []byte(`{"teacherId":null}`),
			wantData: []byte(`{"id":"classSubject-2","classId":"class-1","subjectId":"subj-eng","subjectName":"English"}`),
		},
		{name: "remove", method: http.MethodDelete, path: base + "/classSubject-2", wantData: []byte(`{"ok":true,"id":"classSubject-2"}`)},
	})
}

func TestAuthAPI(t *testing.T) {
	app := setup(t, true)
	ctx := context.Background()
	admin, err := app.users.UpsertAdmin(ctx, "Admin", "admin@school.test", "pwd", user.RoleAdmin)
	assert.NoError(t, err)
	teacher, err := app.users.UpsertAdmin(ctx, "Teacher", "teacher@school.test", "pwd", user.RoleTeacher)
	assert.NoError(t, err)
	stu, _ := app.api.Students().Create(ctx, record.Student{Name: "Ann", Class: "10", Section: "A", RollNumber: "1"})

	runHTTPTests(t, app, []httpTest{
		{name: "records need a token", path: "/students", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "teacher lists", path: "/students", token: getToken(t, teacher), wantData: marshalObj(t, []record.Student{stu})},
		{
			name: "teacher cannot delete", method: http.MethodDelete, path: "/students/" + stu.ID, token: getToken(t, teacher),
			wantCode: http.StatusForbidden, wantData: []byte(`{"error":"permission denied"}`),
		},
		{name: "admin deletes", method: http.MethodDelete, path: "/students/" + stu.ID, token: getToken(t, admin)},
		{name: "me", path: "/auth/me", token: getToken(t, teacher), wantData: marshalObj(t, teacher)},
		{name: "me without token", path: "/auth/me", wantCode: http.StatusUnauthorized},
		{
			name: "bad credentials", method: http.MethodPost, path: "/auth/login",
			body:     []byte(`{"email":"teacher@school.test","password":"nope"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"error":"authentication failed"}`),
		},
		{
			name: "register invalid", method: http.MethodPost, path: "/auth/register",
			body:     []byte(`{"name":"Jo","email":"teacher@school.test","password":"k8#Lm2qZ"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"email":"a user with this email already exists"}`),
		},
	})

	req, rec := newRequest(http.MethodPost, "/auth/login", []byte(`{"email":"Teacher@school.test","password":"pwd"}`))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	var login user.AuthResult
	if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login)) {
		assert.NotEmpty(t, login.Token)
		if assert.NotNil(t, login.User) {
			assert.Equal(t, user.RoleTeacher, login.User.Role)
		}
	}

	req, rec = newRequest(http.MethodPost, "/auth/register", []byte(`{"name":"Jo Ann","email":"jo@school.test","password":"k8#Lm2qZ"}`))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var reg user.AuthResult
	if assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg)) {
		assert.NotEmpty(t, reg.Token)
		if assert.NotNil(t, reg.User) {
			assert.Equal(t, "jo@school.test", reg.User.Email)
		}
	}
}
