package usecase

import (
	"log/slog"

	"github.com/p-n-ai/pai-study/internal/course"
)

// Dashboard lists courses and starts course creation.
type Dashboard struct {
	store course.Store
	out   DashboardOutput
}

// NewDashboard creates the dashboard interactor.
func NewDashboard(store course.Store, out DashboardOutput) *Dashboard {
	return &Dashboard{store: store, out: out}
}

// GetCourses shows every course in store order. An empty store is reported
// as a failure, not as an empty dashboard.
func (d *Dashboard) GetCourses() error {
	courses, err := d.store.FindAll()
	if err != nil {
		slog.Warn("list courses failed", "error", err)
		d.out.PresentDashboardFailure(err.Error())
		return nil
	}
	if len(courses) == 0 {
		d.out.PresentDashboardFailure(noCourseMessage)
		return nil
	}

	d.out.PresentDashboard(DashboardOutputData{Courses: courses})
	return nil
}

// CreateCourse navigates to the course creation screen.
func (d *Dashboard) CreateCourse() {
	d.out.PresentCreate()
}
