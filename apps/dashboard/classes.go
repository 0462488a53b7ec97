package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/optimistic"
	"github.com/trezcool/ams/core/record"
)

var ErrSubjectRequired = errors.New("subject is required")

// ClassesView lists classes and manages the subjects taught in each.
type ClassesView struct {
	listView[record.Class]

	api    record.API
	logger core.Logger

	mu    sync.Mutex
	query string
}

func newClassesView(api record.API, logger core.Logger) *ClassesView {
	return &ClassesView{
		listView: listView[record.Class]{list: optimistic.NewList[record.Class](api.Classes(), optimistic.Options[record.Class]{
			Entity:       "class",
			Plural:       "classes",
			TempIDPrefix: "cls",
			Logger:       logger,
		})},
		api:    api,
		logger: logger,
	}
}

func (v *ClassesView) SetQuery(q string) {
	v.mu.Lock()
	v.query = q
	v.mu.Unlock()
}

// Rows are the classes whose name or grade level contains the query.
func (v *ClassesView) Rows() []record.Class {
	v.mu.Lock()
	q := v.query
	v.mu.Unlock()
	return filter(v.Items(), q, func(c record.Class) []string { return []string{c.Name, c.GradeLevel} })
}

func (v *ClassesView) Create(ctx context.Context, c record.Class) (*optimistic.Mutation, error) {
	c = c.Clean()
	c.ID = ""
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return v.list.Create(ctx, c), nil
}

func (v *ClassesView) Update(ctx context.Context, c record.Class) (*optimistic.Mutation, error) {
	c = c.Clean()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return v.list.Update(ctx, c), nil
}

// OpenDetail loads the subject assignments of the class together with the
// subject and teacher catalogs offered by the assignment form.
func (v *ClassesView) OpenDetail(ctx context.Context, classID string) (*ClassDetail, error) {
	cls, ok := v.list.Get(classID)
	if !ok {
		return nil, errors.Wrap(record.ErrNotFound, "opening class "+classID)
	}
	d := &ClassDetail{
		Class: cls,
		list: optimistic.NewList[record.ClassSubject](v.api.ClassSubjects(cls.ID), optimistic.Options[record.ClassSubject]{
			Entity:       "class subject",
			TempIDPrefix: "csub",
			Merge:        record.MergeAssignment,
			Logger:       v.logger,
		}),
	}

	var err error
	if d.subjects, err = v.api.ListSubjects(ctx); err != nil {
		v.debug("loading subjects", err)
	}
	if d.teachers, err = v.api.ListTeachers(ctx); err != nil {
		v.debug("loading teachers", err)
	}
	_ = d.list.Load(ctx) // failure is shown through Err
	return d, nil
}

func (v *ClassesView) debug(msg string, err error) {
	if v.logger != nil {
		v.logger.Debug(msg, err)
	}
}

// ClassDetail is the subject/teacher panel of one class.
type ClassDetail struct {
	Class record.Class

	list     *optimistic.List[record.ClassSubject]
	subjects []record.Subject
	teachers []record.Teacher
}

// Rows are the current assignments, newest first.
func (d *ClassDetail) Rows() []record.ClassSubject { return d.list.Items() }

func (d *ClassDetail) Subjects() []record.Subject { return d.subjects }

func (d *ClassDetail) Teachers() []record.Teacher { return d.teachers }

func (d *ClassDetail) Err() string { return d.list.Err() }

func (d *ClassDetail) Saving() bool { return d.list.Pending() > 0 }

func (d *ClassDetail) OnChange(fn func()) { d.list.OnChange(fn) }

func (d *ClassDetail) Close() { d.list.Close() }

// Assign adds subjectID to the class, taught by teacherID when not blank.
// An unknown subject is shown under its id until the server names it.
func (d *ClassDetail) Assign(ctx context.Context, subjectID, teacherID string) (*optimistic.Mutation, error) {
	subjectID = core.CleanString(subjectID)
	if subjectID == "" {
		return nil, core.NewValidationError(ErrSubjectRequired,
			core.FieldError{Field: "subjectId", Error: ErrSubjectRequired.Error()})
	}

	cs := record.ClassSubject{ClassID: d.Class.ID, SubjectID: subjectID, SubjectName: subjectID}
	if subj := record.FindSubject(d.subjects, subjectID); subj != nil {
		cs.SubjectID, cs.SubjectName = subj.ID, subj.Name
	}
	cs = withTeacher(cs, d.teachers, core.CleanString(teacherID))
	return d.list.Create(ctx, cs), nil
}

// ChangeTeacher reassigns the subject row; a blank teacherID clears the assignment.
func (d *ClassDetail) ChangeTeacher(ctx context.Context, rowID, teacherID string) *optimistic.Mutation {
	cs, ok := d.list.Get(rowID)
	if !ok {
		cs.ID = rowID // rejected by the list as not found
	}
	return d.list.Update(ctx, withTeacher(cs, d.teachers, core.CleanString(teacherID)))
}

// Unassign removes the subject row from the class.
func (d *ClassDetail) Unassign(ctx context.Context, rowID string) *optimistic.Mutation {
	return d.list.Delete(ctx, rowID)
}

// withTeacher assigns the catalog teacher with id teacherID. Ids missing from the
// catalog are kept without a name.
func withTeacher(cs record.ClassSubject, teachers []record.Teacher, teacherID string) record.ClassSubject {
	if t := record.FindTeacher(teachers, teacherID); t != nil {
		return cs.WithTeacher(t)
	}
	cs = cs.WithTeacher(nil)
	cs.TeacherID = teacherID
	return cs
}
