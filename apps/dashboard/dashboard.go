// Package dashboard holds the headless view models of the school dashboard.
// A renderer binds to a view's state accessors and calls its operations; every
// mutation is applied locally first and rolled back if the Records API refuses it.
package dashboard

import (
	"context"

	"github.com/trezcool/ams/core"
	"github.com/trezcool/ams/core/grade"
	"github.com/trezcool/ams/core/record"
	"github.com/trezcool/ams/core/user"
)

// Page names a dashboard page.
type Page string

const (
	PageHome       Page = "home"
	PageStudents   Page = "students"
	PageClasses    Page = "classes"
	PageExams      Page = "exams"
	PageCourses    Page = "courses"
	PageMarks      Page = "marks"
	PageAttendance Page = "attendance"
	PageResults    Page = "results"
	PageSettings   Page = "settings"
)

// pageRoles lists the roles allowed on a page; pages missing here only need a sign in.
var pageRoles = map[Page][]string{
	PageClasses:    {user.RoleAdmin},
	PageExams:      {user.RoleAdmin},
	PageMarks:      {user.RoleAdmin, user.RoleTeacher},
	PageAttendance: {user.RoleAdmin, user.RoleTeacher},
	PageResults:    {user.RoleAdmin, user.RoleTeacher},
}

type Options struct {
	// Session gates the pages; nil leaves every page open.
	Session *user.Session
	// Thresholds grade the results, the default table when nil.
	Thresholds []grade.Threshold
	Logger     core.Logger
}

type Dashboard struct {
	api  record.API
	opts Options
}

func New(api record.API, opts Options) *Dashboard {
	return &Dashboard{api: api, opts: opts}
}

func (d *Dashboard) Session() *user.Session { return d.opts.Session }

// Authorize reports whether the session may open page.
func (d *Dashboard) Authorize(page Page) error {
	if d.opts.Session == nil {
		return nil
	}
	return user.RequireRole(d.opts.Session, pageRoles[page]...)
}

func (d *Dashboard) Home(ctx context.Context) (*HomeView, error) {
	if err := d.Authorize(PageHome); err != nil {
		return nil, err
	}
	v := &HomeView{api: d.api}
	v.Refresh(ctx)
	return v, nil
}

func (d *Dashboard) Students(ctx context.Context) (*StudentsView, error) {
	if err := d.Authorize(PageStudents); err != nil {
		return nil, err
	}
	v := newStudentsView(d.api, d.opts.Logger)
	_ = v.list.Load(ctx) // failure is shown through Err
	return v, nil
}

func (d *Dashboard) Classes(ctx context.Context) (*ClassesView, error) {
	if err := d.Authorize(PageClasses); err != nil {
		return nil, err
	}
	v := newClassesView(d.api, d.opts.Logger)
	_ = v.list.Load(ctx)
	return v, nil
}

func (d *Dashboard) Exams(ctx context.Context) (*ExamsView, error) {
	if err := d.Authorize(PageExams); err != nil {
		return nil, err
	}
	v := newExamsView(d.api, d.opts.Logger)
	_ = v.list.Load(ctx)
	return v, nil
}

func (d *Dashboard) Courses(ctx context.Context) (*CoursesView, error) {
	if err := d.Authorize(PageCourses); err != nil {
		return nil, err
	}
	v := newCoursesView(d.api, d.opts.Logger)
	_ = v.list.Load(ctx)
	return v, nil
}

func (d *Dashboard) Marks(ctx context.Context) (*MarksView, error) {
	if err := d.Authorize(PageMarks); err != nil {
		return nil, err
	}
	v := newMarksView(d.api, d.opts.Logger)
	v.LoadCatalog(ctx)
	return v, nil
}

func (d *Dashboard) Attendance(ctx context.Context) (*AttendanceView, error) {
	if err := d.Authorize(PageAttendance); err != nil {
		return nil, err
	}
	v := newAttendanceView(d.api, d.opts.Logger)
	_ = v.Load(ctx)
	return v, nil
}

func (d *Dashboard) Results(ctx context.Context) (*ResultsView, error) {
	if err := d.Authorize(PageResults); err != nil {
		return nil, err
	}
	v := newResultsView(d.api, d.opts.Thresholds, d.opts.Logger)
	v.LoadCatalog(ctx)
	return v, nil
}

func (d *Dashboard) Settings() (Settings, error) {
	if err := d.Authorize(PageSettings); err != nil {
		return Settings{}, err
	}
	return CurrentSettings(), nil
}
