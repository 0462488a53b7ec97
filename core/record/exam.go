package record

import "github.com/trezcool/ams/core"

const (
	DefaultTerm = "Term 1"

	endBeforeStartText = "endDate must not be before startDate"
)

type Exam struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name" validate:"required"`
	Term      string `json:"term"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

func (e Exam) RecordID() string { return e.ID }

func (e Exam) WithID(id string) Exam {
	e.ID = id
	return e
}

func NormalizeExam(r Raw, idx int) Exam {
	return Exam{
		ID:        r.Str(seqID("exam", idx), "id"),
		Name:      r.Str("", "name"),
		Term:      r.Str(DefaultTerm, "term", "semester"),
		StartDate: r.Str("", "startDate", "from"),
		EndDate:   r.Str("", "endDate", "to"),
	}
}

func (e Exam) Clean() Exam {
	e.Name = core.CleanString(e.Name)
	e.Term = core.CleanString(e.Term)
	if e.Term == "" {
		e.Term = DefaultTerm
	}
	e.StartDate = core.CleanString(e.StartDate)
	e.EndDate = core.CleanString(e.EndDate)
	return e
}

// Validate requires a name; ISO dates compare lexically.
func (e Exam) Validate() error {
	var extra []core.FieldError
	if e.StartDate != "" && e.EndDate != "" && e.EndDate < e.StartDate {
		extra = append(extra, core.FieldError{Field: "endDate", Error: endBeforeStartText})
	}
	return check(e, extra...)
}
