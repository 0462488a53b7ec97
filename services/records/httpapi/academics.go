package httpapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core/record"
)

func (c *Client) ListSubjects(ctx context.Context) ([]record.Subject, error) {
	body, err := c.get(ctx, "/subjects")
	if err != nil {
		return nil, errors.Wrap(err, "listing subjects")
	}
	return record.NormalizeAll(array(body), record.NormalizeSubject), nil
}

func (c *Client) ListTeachers(ctx context.Context) ([]record.Teacher, error) {
	body, err := c.get(ctx, "/teachers")
	if err != nil {
		return nil, errors.Wrap(err, "listing teachers")
	}
	return record.NormalizeAll(array(body), record.NormalizeTeacher), nil
}

func (c *Client) ListClassStudents(ctx context.Context, class, section string) ([]record.Student, error) {
	path := "/classes/" + url.PathEscape(class) + "/sections/" + url.PathEscape(section) + "/students"
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, errors.Wrap(err, "listing class students")
	}
	return record.NormalizeAll(array(body), record.NormalizeStudent), nil
}

func (c *Client) ListMarks(ctx context.Context, q record.MarkQuery) ([]record.Mark, error) {
	params := url.Values{}
	params.Set("examId", q.ExamID)
	params.Set("class", q.Class)
	params.Set("section", q.Section)
	body, err := c.get(ctx, "/marks?"+params.Encode())
	if err != nil {
		return nil, errors.Wrap(err, "listing marks")
	}
	return record.NormalizeAll(array(body), record.NormalizeMark), nil
}

// UpsertMarks returns the saved batch; a reply without entries echoes batch.
func (c *Client) UpsertMarks(ctx context.Context, batch record.MarkBatch) (record.MarkBatch, error) {
	body, err := c.do(ctx, http.MethodPost, "/marks", batch)
	if err != nil {
		return record.MarkBatch{}, errors.Wrap(err, "saving marks")
	}
	raw := object(body)
	if !raw.Has("entries") {
		return batch, nil
	}
	saved := record.NormalizeMarkBatch(raw)
	if saved.ExamID == "" {
		saved.ExamID = batch.ExamID
	}
	if saved.SubjectID == "" {
		saved.SubjectID = batch.SubjectID
	}
	if saved.Class == "" {
		saved.Class, saved.Section = batch.Class, batch.Section
	}
	return saved, nil
}

func (c *Client) DeleteMark(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/marks/"+url.PathEscape(id), nil); err != nil {
		return errors.Wrap(err, "deleting mark")
	}
	return nil
}

func (c *Client) StudentReport(ctx context.Context, studentID, examID string) (record.StudentReport, error) {
	path := "/reports/students/" + url.PathEscape(studentID) + "?examId=" + url.QueryEscape(examID)
	body, err := c.get(ctx, path)
	if err != nil {
		return record.StudentReport{}, errors.Wrap(err, "loading student report")
	}
	rep := record.NormalizeStudentReport(object(body))
	if rep.StudentID == "" {
		rep.StudentID = studentID
	}
	if rep.ExamID == "" {
		rep.ExamID = examID
	}
	return rep, nil
}

func (c *Client) GetAttendance(ctx context.Context, q record.AttendanceQuery) (record.AttendanceSheet, error) {
	params := url.Values{}
	params.Set("date", q.Date)
	params.Set("class", q.Class)
	params.Set("section", q.Section)
	body, err := c.get(ctx, "/attendance?"+params.Encode())
	if err != nil {
		return record.AttendanceSheet{}, errors.Wrap(err, "loading attendance")
	}
	sheet := record.NormalizeAttendanceSheet(object(body))
	sheet.AttendanceQuery = q
	return sheet, nil
}

func (c *Client) SaveAttendance(ctx context.Context, sheet record.AttendanceSheet) (record.AttendanceSheet, error) {
	body, err := c.do(ctx, http.MethodPut, "/attendance", sheet)
	if err != nil {
		return record.AttendanceSheet{}, errors.Wrap(err, "saving attendance")
	}
	raw := object(body)
	if !raw.Has("entries") {
		return sheet, nil
	}
	saved := record.NormalizeAttendanceSheet(raw)
	saved.AttendanceQuery = sheet.AttendanceQuery
	return saved, nil
}
