package record

import "github.com/trezcool/ams/core"

type Class struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name" validate:"required"`
	GradeLevel  string `json:"gradeLevel" validate:"required"`
	Description string `json:"description"`
}

func (c Class) RecordID() string { return c.ID }

func (c Class) WithID(id string) Class {
	c.ID = id
	return c
}

func NormalizeClass(r Raw, idx int) Class {
	return Class{
		ID:          r.Str(seqID("cls", idx), "id"),
		Name:        r.Str("", "name"),
		GradeLevel:  r.Str("", "gradeLevel", "grade"),
		Description: r.Str("", "description"),
	}
}

func (c Class) Clean() Class {
	c.Name = core.CleanString(c.Name)
	c.GradeLevel = core.CleanString(c.GradeLevel)
	c.Description = core.CleanString(c.Description)
	return c
}

func (c Class) Validate() error { return check(c) }

// ClassSubject is a subject taught in a class, optionally by an assigned teacher.
type ClassSubject struct {
	ID          string `json:"id,omitempty"`
	ClassID     string `json:"classId,omitempty"`
	SubjectID   string `json:"subjectId" validate:"required"`
	SubjectName string `json:"subjectName"`
	TeacherID   string `json:"teacherId,omitempty"`
	TeacherName string `json:"teacherName,omitempty"`
}

func (cs ClassSubject) RecordID() string { return cs.ID }

func (cs ClassSubject) WithID(id string) ClassSubject {
	cs.ID = id
	return cs
}

func NormalizeClassSubject(r Raw, idx int) ClassSubject {
	return ClassSubject{
		ID:          r.Str(seqID("cs", idx), "id"),
		ClassID:     r.Str("", "classId"),
		SubjectID:   r.Str(seqID("sub", idx), "subjectId", "id", "subject.id"),
		SubjectName: r.Str("", "subjectName", "subject.name", "name"),
		TeacherID:   r.Str("", "teacherId", "teacher.id"),
		TeacherName: r.Str("", "teacherName", "teacher.name"),
	}
}

func (cs ClassSubject) Validate() error { return check(cs) }

// WithTeacher assigns t, or clears the assignment when t is nil.
func (cs ClassSubject) WithTeacher(t *Teacher) ClassSubject {
	if t == nil {
		cs.TeacherID, cs.TeacherName = "", ""
		return cs
	}
	cs.TeacherID, cs.TeacherName = t.ID, t.Name
	return cs
}

// MergeAssignment confirms a local assignment with the server reply, keeping
// local teacher fields the server left out.
func MergeAssignment(local, created ClassSubject) ClassSubject {
	if created.ID != "" {
		local.ID = created.ID
	}
	if created.TeacherID != "" {
		local.TeacherID = created.TeacherID
	}
	if created.TeacherName != "" {
		local.TeacherName = created.TeacherName
	}
	return local
}
