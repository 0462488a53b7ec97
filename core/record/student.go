package record

import (
	"sort"
	"strings"

	"github.com/trezcool/ams/core"
)

const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"

	rollNumberTakenText = "Roll number must be unique within Class + Section"
)

type Student struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"omitempty,looseemail"`
	Class      string `json:"class" validate:"required"`
	Section    string `json:"section" validate:"required"`
	RollNumber string `json:"rollNumber" validate:"required"`
	Status     string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

func (s Student) RecordID() string { return s.ID }

func (s Student) WithID(id string) Student {
	s.ID = id
	return s
}

// NormalizeStudent builds a Student from a raw payload; idx numbers id-less rows.
// "klass" is accepted as a legacy spelling of "class".
func NormalizeStudent(r Raw, idx int) Student {
	return Student{
		ID:         r.Str(seqID("tmp", idx), "id"),
		Name:       r.Str("", "name"),
		Email:      r.Str("", "email"),
		Class:      r.Str("", "class", "klass"),
		Section:    r.Str("", "section"),
		RollNumber: r.Str("", "rollNumber"),
		Status:     r.Str(StatusActive, "status"),
	}
}

// Clean trims the form fields.
func (s Student) Clean() Student {
	s.Name = core.CleanString(s.Name)
	s.Email = core.CleanString(s.Email)
	s.Class = core.CleanString(s.Class)
	s.Section = core.CleanString(s.Section)
	s.RollNumber = core.CleanString(s.RollNumber)
	if s.Status == "" {
		s.Status = StatusActive
	}
	return s
}

// Validate checks a cleaned form against the students already listed.
// The roll number must be unique within class and section, s itself excluded.
func (s Student) Validate(existing []Student) error {
	var extra []core.FieldError
	if s.RollNumber != "" && RollNumberTaken(s, existing) {
		extra = append(extra, core.FieldError{Field: "rollNumber", Error: rollNumberTakenText})
	}
	return check(s, extra...)
}

// RollNumberTaken reports whether another student shares s's class, section and roll number.
func RollNumberTaken(s Student, existing []Student) bool {
	key := rollKey(s)
	for _, other := range existing {
		if s.ID != "" && other.ID == s.ID {
			continue
		}
		if rollKey(other) == key {
			return true
		}
	}
	return false
}

func rollKey(s Student) string {
	return strings.Join([]string{
		strings.TrimSpace(s.Class),
		strings.TrimSpace(s.Section),
		strings.TrimSpace(s.RollNumber),
	}, "::")
}

// SearchStudents keeps the students whose name, class, section or roll number
// contains q, ignoring case. A blank q keeps everyone.
func SearchStudents(students []Student, q string) []Student {
	q = core.CleanString(q, true /* lower */)
	out := make([]Student, 0, len(students))
	for _, s := range students {
		if q == "" ||
			strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Class), q) ||
			strings.Contains(strings.ToLower(s.Section), q) ||
			strings.Contains(strings.ToLower(s.RollNumber), q) {
			out = append(out, s)
		}
	}
	return out
}

// SortStudents sorts in place by the given orderings, comparing lowered text.
// Unknown fields compare equal; ties keep their order.
func SortStudents(students []Student, ords []core.Ordering) {
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range ords {
			a, b := studentField(students[i], ord.Field), studentField(students[j], ord.Field)
			if a == b {
				continue
			}
			if ord.Ascending {
				return a < b
			}
			return a > b
		}
		return false
	})
}

func studentField(s Student, field string) string {
	var v string
	switch field {
	case "name":
		v = s.Name
	case "class":
		v = s.Class
	case "section":
		v = s.Section
	case "rollNumber":
		v = s.RollNumber
	case "email":
		v = s.Email
	case "status":
		v = s.Status
	}
	return strings.ToLower(v)
}
