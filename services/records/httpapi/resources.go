package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core/record"
)

type identified[T any] interface {
	RecordID() string
	WithID(id string) T
}

// resource is a REST collection at path with items at path/{id}.
type resource[T identified[T]] struct {
	c         *Client
	path      string
	entity    string
	normalize func(record.Raw, int) T
}

func (r resource[T]) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r resource[T]) List(ctx context.Context) ([]T, error) {
	body, err := r.c.get(ctx, r.path)
	if err != nil {
		return nil, errors.Wrap(err, "listing "+r.entity+"s")
	}
	return record.NormalizeAll(array(body), r.normalize), nil
}

// Create returns the server's rendition; its id is blank when the server sent none.
func (r resource[T]) Create(ctx context.Context, rec T) (T, error) {
	body, err := r.c.do(ctx, http.MethodPost, r.path, rec)
	if err != nil {
		var zero T
		return zero, errors.Wrap(err, "creating "+r.entity)
	}
	return r.reply(body, rec, ""), nil
}

func (r resource[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	body, err := r.c.do(ctx, http.MethodPut, r.itemPath(id), rec)
	if err != nil {
		var zero T
		return zero, errors.Wrap(err, "updating "+r.entity)
	}
	return r.reply(body, rec, id), nil
}

func (r resource[T]) Delete(ctx context.Context, id string) error {
	if _, err := r.c.do(ctx, http.MethodDelete, r.itemPath(id), nil); err != nil {
		return errors.Wrap(err, "deleting "+r.entity)
	}
	return nil
}

// reply normalizes an object reply; anything else echoes sent with id.
func (r resource[T]) reply(body interface{}, sent T, id string) T {
	obj, ok := body.(map[string]interface{})
	if !ok || len(obj) == 0 {
		return sent.WithID(id)
	}
	raw := record.Raw(obj)
	rec := r.normalize(raw, 0)
	if !raw.Has("id") {
		rec = rec.WithID(id)
	}
	return rec
}

func (c *Client) Students() record.Resource[record.Student] {
	return resource[record.Student]{c: c, path: "/students", entity: "student", normalize: record.NormalizeStudent}
}

func (c *Client) Classes() record.Resource[record.Class] {
	return resource[record.Class]{c: c, path: "/classes", entity: "class", normalize: record.NormalizeClass}
}

func (c *Client) Exams() record.Resource[record.Exam] {
	return resource[record.Exam]{c: c, path: "/exams", entity: "exam", normalize: record.NormalizeExam}
}

func (c *Client) Courses() record.Resource[record.Course] {
	return resource[record.Course]{c: c, path: "/courses", entity: "course", normalize: record.NormalizeCourse}
}

// ClassSubjects serves /classes/{id}/subjects; Update changes the teacher
// through the .../teacher endpoint.
func (c *Client) ClassSubjects(classID string) record.Resource[record.ClassSubject] {
	return classSubjects{resource[record.ClassSubject]{
		c:         c,
		path:      "/classes/" + url.PathEscape(classID) + "/subjects",
		entity:    "class subject",
		normalize: record.NormalizeClassSubject,
	}}
}

type classSubjects struct {
	resource[record.ClassSubject]
}

func (cs classSubjects) Create(ctx context.Context, rec record.ClassSubject) (record.ClassSubject, error) {
	payload := map[string]interface{}{"subjectId": rec.SubjectID, "teacherId": nilIfEmpty(rec.TeacherID)}
	body, err := cs.c.do(ctx, http.MethodPost, cs.path, payload)
	if err != nil {
		return record.ClassSubject{}, errors.Wrap(err, "assigning subject")
	}
	return cs.reply(body, rec, ""), nil
}

func (cs classSubjects) Update(ctx context.Context, id string, rec record.ClassSubject) (record.ClassSubject, error) {
	payload := map[string]interface{}{"teacherId": nilIfEmpty(rec.TeacherID)}
	body, err := cs.c.do(ctx, http.MethodPut, cs.itemPath(id)+"/teacher", payload)
	if err != nil {
		return record.ClassSubject{}, errors.Wrap(err, "assigning teacher")
	}
	raw := object(body)
	rec.ID = id
	if raw.Has("teacherId", "teacher.id") {
		rec.TeacherID = raw.Str("", "teacherId", "teacher.id")
		rec.TeacherName = raw.Str(rec.TeacherName, "teacherName", "teacher.name")
	}
	return rec, nil
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
