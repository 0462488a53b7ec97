package record

import (
	"math"

	"github.com/trezcool/ams/core"
)

type Course struct {
	ID         string `json:"id,omitempty"`
	Code       string `json:"code" validate:"required"`
	Title      string `json:"title" validate:"required"`
	Instructor string `json:"instructor"`
	Enrolled   int    `json:"enrolled" validate:"min=0"`
}

func (c Course) RecordID() string { return c.ID }

func (c Course) WithID(id string) Course {
	c.ID = id
	return c
}

// NormalizeCourse falls back to the course code as id.
func NormalizeCourse(r Raw, idx int) Course {
	return Course{
		ID:         r.Str(r.Str(seqID("course", idx), "code"), "id"),
		Code:       r.Str("", "code"),
		Title:      r.Str("", "title"),
		Instructor: r.Str("", "instructor"),
		Enrolled:   int(math.Max(0, r.Num("enrolled"))),
	}
}

func (c Course) Clean() Course {
	c.Code = core.CleanString(c.Code)
	c.Title = core.CleanString(c.Title)
	c.Instructor = core.CleanString(c.Instructor)
	return c
}

func (c Course) Validate() error { return check(c) }

// SeedCourses is the catalog shown before any course is recorded.
func SeedCourses() []Course {
	return []Course{
		{ID: "CS101", Code: "CS101", Title: "Intro to CS", Instructor: "Dr. Smith", Enrolled: 45},
		{ID: "MA201", Code: "MA201", Title: "Linear Algebra", Instructor: "Prof. Johnson", Enrolled: 38},
	}
}
