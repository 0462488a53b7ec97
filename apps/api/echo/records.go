package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ams/core/record"
)

type recordsApi struct {
	api record.API
}

// routes mounts handlers behind auth, destructive ones behind admin as well.
type routes struct {
	g interface {
		Add(method, path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	}
	auth  echo.MiddlewareFunc
	admin echo.MiddlewareFunc
}

func (r routes) add(method, path string, h echo.HandlerFunc) {
	r.g.Add(method, path, h, r.auth)
}

func (r routes) destroy(path string, h echo.HandlerFunc) {
	r.g.Add(http.MethodDelete, path, h, r.auth, r.admin)
}

func registerRecordsAPI(r routes, api record.API) {
	h := recordsApi{api: api}

	registerResource(r, "/students", api.Students, record.NormalizeStudent, h.prepareStudent, h.listStudents)
	registerResource(r, "/classes", api.Classes, record.NormalizeClass, prepareWith(record.Class.Clean, record.Class.Validate), nil)
	registerResource(r, "/exams", api.Exams, record.NormalizeExam, prepareWith(record.Exam.Clean, record.Exam.Validate), nil)
	registerResource(r, "/courses", api.Courses, record.NormalizeCourse, prepareWith(record.Course.Clean, record.Course.Validate), nil)

	r.add(http.MethodGet, "/subjects", h.listSubjects)
	r.add(http.MethodGet, "/teachers", h.listTeachers)
	r.add(http.MethodGet, "/classes/:class/sections/:section/students", h.listClassStudents)

	r.add(http.MethodGet, "/classes/:id/subjects", h.listClassSubjects)
	r.add(http.MethodPost, "/classes/:id/subjects", h.assignSubject)
	r.add(http.MethodPut, "/classes/:id/subjects/:csid", h.assignTeacher)
	r.add(http.MethodPut, "/classes/:id/subjects/:csid/teacher", h.assignTeacher)
	r.destroy("/classes/:id/subjects/:csid", h.unassignSubject)

	r.add(http.MethodGet, "/marks", h.listMarks)
	r.add(http.MethodPost, "/marks", h.upsertMarks)
	r.destroy("/marks/:id", h.deleteMark)
	r.add(http.MethodGet, "/reports/students/:id", h.studentReport)

	r.add(http.MethodGet, "/attendance", h.getAttendance)
	r.add(http.MethodPut, "/attendance", h.saveAttendance)
}

type identified[T any] interface {
	RecordID() string
	WithID(id string) T
}

// prepareFunc cleans and validates a record about to be stored under id ("" on create).
type prepareFunc[T any] func(ctx context.Context, rec T, id string) (T, error)

func prepareWith[T any](clean func(T) T, validate func(T) error) prepareFunc[T] {
	return func(_ context.Context, rec T, _ string) (T, error) {
		rec = clean(rec)
		return rec, validate(rec)
	}
}

// registerResource mounts list, create, update and delete handlers for a collection.
// A nil list lists the whole collection.
func registerResource[T identified[T]](
	r routes,
	path string,
	resource func() record.Resource[T],
	normalize func(record.Raw, int) T,
	prepare prepareFunc[T],
	list echo.HandlerFunc,
) {
	if list == nil {
		list = func(ctx echo.Context) error {
			recs, err := resource().List(ctx.Request().Context())
			if err != nil {
				return err
			}
			return ctx.JSON(http.StatusOK, recs)
		}
	}
	r.add(http.MethodGet, path, list)

	r.add(http.MethodPost, path, func(ctx echo.Context) error {
		raw, err := bindRaw(ctx)
		if err != nil {
			return err
		}
		rec, err := prepare(ctx.Request().Context(), normalize(raw, 0).WithID(""), "")
		if err != nil {
			return err
		}
		created, err := resource().Create(ctx.Request().Context(), rec)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, created)
	})

	r.add(http.MethodPut, path+"/:id", func(ctx echo.Context) error {
		id := ctx.Param("id")
		raw, err := bindRaw(ctx)
		if err != nil {
			return err
		}
		rec, err := prepare(ctx.Request().Context(), normalize(raw, 0).WithID(id), id)
		if err != nil {
			return err
		}
		updated, err := resource().Update(ctx.Request().Context(), id, rec)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, updated)
	})

	r.destroy(path+"/:id", func(ctx echo.Context) error {
		id := ctx.Param("id")
		if err := resource().Delete(ctx.Request().Context(), id); err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, echo.Map{"ok": true, "id": id})
	})
}

// Handlers

func (h *recordsApi) listStudents(ctx echo.Context) error {
	students, err := h.api.Students().List(ctx.Request().Context())
	if err != nil {
		return err
	}
	students = record.SearchStudents(students, ctx.QueryParam("search"))
	record.SortStudents(students, bindOrdering(ctx))
	return ctx.JSON(http.StatusOK, students)
}

// prepareStudent enforces roll number uniqueness within class and section.
func (h *recordsApi) prepareStudent(ctx context.Context, s record.Student, _ string) (record.Student, error) {
	s = s.Clean()
	existing, err := h.api.ListClassStudents(ctx, s.Class, s.Section)
	if err != nil {
		return s, errors.Wrap(err, "listing class students")
	}
	return s, s.Validate(existing)
}

func (h *recordsApi) listSubjects(ctx echo.Context) error {
	subjects, err := h.api.ListSubjects(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (h *recordsApi) listTeachers(ctx echo.Context) error {
	teachers, err := h.api.ListTeachers(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (h *recordsApi) listClassStudents(ctx echo.Context) error {
	students, err := h.api.ListClassStudents(ctx.Request().Context(), ctx.Param("class"), ctx.Param("section"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (h *recordsApi) listClassSubjects(ctx echo.Context) error {
	list, err := h.api.ClassSubjects(ctx.Param("id")).List(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, list)
}

func (h *recordsApi) assignSubject(ctx echo.Context) error {
	raw, err := bindRaw(ctx)
	if err != nil {
		return err
	}
	cs := record.NormalizeClassSubject(raw, 0)
	cs.ID = ""
	if !raw.Has("subjectId", "subject.id", "id") {
		cs.SubjectID = ""
	}
	if err := cs.Validate(); err != nil {
		return err
	}
	created, err := h.api.ClassSubjects(ctx.Param("id")).Create(ctx.Request().Context(), cs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, created)
}

// assignTeacher changes the teacher of a class subject; a null teacherId unassigns.
func (h *recordsApi) assignTeacher(ctx echo.Context) error {
	raw, err := bindRaw(ctx)
	if err != nil {
		return err
	}
	cs := record.ClassSubject{TeacherID: raw.Str("", "teacherId", "teacher.id")}
	updated, err := h.api.ClassSubjects(ctx.Param("id")).Update(ctx.Request().Context(), ctx.Param("csid"), cs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, updated)
}

func (h *recordsApi) unassignSubject(ctx echo.Context) error {
	id := ctx.Param("csid")
	if err := h.api.ClassSubjects(ctx.Param("id")).Delete(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true, "id": id})
}

func (h *recordsApi) listMarks(ctx echo.Context) error {
	var q record.MarkQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to MarkQuery")
	}
	q.Class = firstNonEmpty(q.Class, ctx.QueryParam("klass"))
	marks, err := h.api.ListMarks(ctx.Request().Context(), q)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (h *recordsApi) upsertMarks(ctx echo.Context) error {
	raw, err := bindRaw(ctx)
	if err != nil {
		return err
	}
	batch := record.NormalizeMarkBatch(raw)
	if err := batch.Validate(); err != nil {
		return err
	}
	saved, err := h.api.UpsertMarks(ctx.Request().Context(), batch)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, saved)
}

func (h *recordsApi) deleteMark(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := h.api.DeleteMark(ctx.Request().Context(), id); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"ok": true, "markId": id})
}

func (h *recordsApi) studentReport(ctx echo.Context) error {
	rep, err := h.api.StudentReport(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("examId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (h *recordsApi) getAttendance(ctx echo.Context) error {
	var q record.AttendanceQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to AttendanceQuery")
	}
	if err := q.Validate(); err != nil {
		return err
	}
	sheet, err := h.api.GetAttendance(ctx.Request().Context(), q)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sheet)
}

func (h *recordsApi) saveAttendance(ctx echo.Context) error {
	raw, err := bindRaw(ctx)
	if err != nil {
		return err
	}
	sheet := record.NormalizeAttendanceSheet(raw)
	if err := sheet.Validate(); err != nil {
		return err
	}
	saved, err := h.api.SaveAttendance(ctx.Request().Context(), sheet)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, saved)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
