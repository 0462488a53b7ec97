package dummydb

import (
	"context"

	"github.com/trezcool/ams/core/record"
)

type classSubjects struct {
	db      *DB
	classID string
}

func (api *recordsAPI) ClassSubjects(classID string) record.Resource[record.ClassSubject] {
	return &classSubjects{db: api.db, classID: classID}
}

func (cs *classSubjects) List(context.Context) ([]record.ClassSubject, error) {
	cs.db.classSubjects.RLock()
	defer cs.db.classSubjects.RUnlock()
	return append([]record.ClassSubject{}, cs.db.classSubjects.byClass[cs.classID]...), nil
}

// Create assigns a subject to the class; a subject is assigned at most once.
// Subject and teacher names are filled from the catalog when missing.
func (cs *classSubjects) Create(_ context.Context, rec record.ClassSubject) (record.ClassSubject, error) {
	rec = cs.resolveNames(rec)

	t := cs.db.classSubjects
	t.Lock()
	defer t.Unlock()
	for _, existing := range t.byClass[cs.classID] {
		if existing.SubjectID == rec.SubjectID {
			return record.ClassSubject{}, record.ErrConflict
		}
	}
	rec.ID = cs.db.opts.IDFunc("classSubject")
	rec.ClassID = cs.classID
	t.byClass[cs.classID] = append(t.byClass[cs.classID], rec)
	return rec, nil
}

// Update changes the assigned teacher; a blank teacher id unassigns.
func (cs *classSubjects) Update(_ context.Context, id string, rec record.ClassSubject) (record.ClassSubject, error) {
	var teacher *record.Teacher
	if rec.TeacherID != "" {
		teacher = &record.Teacher{ID: rec.TeacherID, Name: rec.TeacherName}
		cs.db.catalog.RLock()
		if found := record.FindTeacher(cs.db.catalog.teachers, rec.TeacherID); found != nil {
			teacher.Name = found.Name
		}
		cs.db.catalog.RUnlock()
	}

	t := cs.db.classSubjects
	t.Lock()
	defer t.Unlock()
	rows := t.byClass[cs.classID]
	for i := range rows {
		if rows[i].ID == id {
			rows[i] = rows[i].WithTeacher(teacher)
			return rows[i], nil
		}
	}
	return record.ClassSubject{}, record.ErrNotFound
}

func (cs *classSubjects) Delete(_ context.Context, id string) error {
	t := cs.db.classSubjects
	t.Lock()
	defer t.Unlock()
	rows := t.byClass[cs.classID]
	for i := range rows {
		if rows[i].ID == id {
			t.byClass[cs.classID] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return record.ErrNotFound
}

func (cs *classSubjects) resolveNames(rec record.ClassSubject) record.ClassSubject {
	cs.db.catalog.RLock()
	defer cs.db.catalog.RUnlock()
	if rec.SubjectName == "" {
		if sub := record.FindSubject(cs.db.catalog.subjects, rec.SubjectID); sub != nil {
			rec.SubjectName = sub.Name
		}
	}
	if rec.TeacherID != "" && rec.TeacherName == "" {
		if t := record.FindTeacher(cs.db.catalog.teachers, rec.TeacherID); t != nil {
			rec.TeacherName = t.Name
		}
	}
	return rec
}
