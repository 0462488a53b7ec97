package record

import (
	"strings"

	"github.com/trezcool/ams/core"
)

const dateLayout = "2006-01-02"

type AttendanceQuery struct {
	Date    string `json:"date" query:"date" validate:"required,datetime=2006-01-02"`
	Class   string `json:"class" query:"class" validate:"required"`
	Section string `json:"section" query:"section"`
}

func (q AttendanceQuery) Validate() error { return check(q) }

// Key identifies the register of one class section on one day.
func (q AttendanceQuery) Key() string {
	return strings.Join([]string{q.Date, q.Class, q.Section}, "/")
}

type AttendanceEntry struct {
	StudentID string `json:"studentId" validate:"required"`
	Name      string `json:"name,omitempty"`
	Present   bool   `json:"present"`
}

// AttendanceSheet is the register of one class section for one day.
type AttendanceSheet struct {
	AttendanceQuery
	Entries []AttendanceEntry `json:"entries" validate:"dive"`
}

func (s AttendanceSheet) Validate() error { return check(s) }

// Present counts the students marked present.
func (s AttendanceSheet) Present() int {
	var n int
	for _, e := range s.Entries {
		if e.Present {
			n++
		}
	}
	return n
}

// Clone deep copies the sheet.
func (s AttendanceSheet) Clone() AttendanceSheet {
	s.Entries = append([]AttendanceEntry(nil), s.Entries...)
	return s
}

// NewAttendanceSheet marks every student present, the register's default.
func NewAttendanceSheet(q AttendanceQuery, students []Student) AttendanceSheet {
	sheet := AttendanceSheet{AttendanceQuery: q, Entries: make([]AttendanceEntry, 0, len(students))}
	for _, s := range students {
		sheet.Entries = append(sheet.Entries, AttendanceEntry{StudentID: s.ID, Name: s.Name, Present: true})
	}
	return sheet
}

func NormalizeAttendanceSheet(r Raw) AttendanceSheet {
	sheet := AttendanceSheet{AttendanceQuery: AttendanceQuery{
		Date:    r.Str("", "date"),
		Class:   r.Str("", "class", "klass"),
		Section: r.Str("", "section"),
	}}
	sheet.Entries = NormalizeAll(r["entries"], func(e Raw, _ int) AttendanceEntry {
		present := true
		if v, ok := e.lookup("present"); ok {
			present, _ = v.(bool)
		}
		return AttendanceEntry{StudentID: e.Str("", "studentId", "id"), Name: e.Str("", "name"), Present: present}
	})
	return sheet
}

// Today returns the current date in the register's layout.
func Today() string {
	return core.NowFunc().Format(dateLayout)
}
