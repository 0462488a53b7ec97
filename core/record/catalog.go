package record

import "strconv"

type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NormalizeSubject(r Raw, idx int) Subject {
	return Subject{
		ID:   r.Str(seqID("sub", idx), "id"),
		Name: r.Str("", "name"),
	}
}

type Teacher struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func NormalizeTeacher(r Raw, idx int) Teacher {
	return Teacher{
		ID:    r.Str(seqID("t", idx), "id"),
		Name:  r.Str("Teacher "+strconv.Itoa(idx+1), "name", "fullName", "email"),
		Email: r.Str("", "email"),
	}
}

// DefaultSubjects is the catalog served when no backend is configured.
func DefaultSubjects() []Subject {
	return []Subject{
		{ID: "subj-eng", Name: "English"},
		{ID: "subj-math", Name: "Mathematics"},
		{ID: "subj-sci", Name: "Science"},
	}
}

// DefaultTeachers is the staff list served when no backend is configured.
func DefaultTeachers() []Teacher {
	return []Teacher{
		{ID: "t-1", Name: "Alice Johnson"},
		{ID: "t-2", Name: "Bob Smith"},
		{ID: "t-3", Name: "Carlos Diaz"},
	}
}

// FindTeacher returns the teacher with the given id, nil if absent.
func FindTeacher(teachers []Teacher, id string) *Teacher {
	for i := range teachers {
		if teachers[i].ID == id {
			return &teachers[i]
		}
	}
	return nil
}

// FindSubject returns the subject with the given id, nil if absent.
func FindSubject(subjects []Subject, id string) *Subject {
	for i := range subjects {
		if subjects[i].ID == id {
			return &subjects[i]
		}
	}
	return nil
}
