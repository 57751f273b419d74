package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/p-n-ai/pai-study/internal/course"
)

// Workspace handles CRUD and navigation for a single course.
type Workspace struct {
	store course.Store
	out   WorkspaceOutput
}

// NewWorkspace creates the workspace interactor.
func NewWorkspace(store course.Store, out WorkspaceOutput) *Workspace {
	return &Workspace{store: store, out: out}
}

// FindCourseByID opens a course in the workspace, or in the editor when
// editMode is set. A blank id is looked up like any other and fails as not found.
func (w *Workspace) FindCourseByID(id string, editMode bool) error {
	c, err := w.store.FindByID(id)
	if err != nil {
		w.fail("find course", id, err)
		return nil
	}

	out := WorkspaceOutputData{Course: *c}
	if editMode {
		w.out.PresentEdit(out)
	} else {
		w.out.PresentWorkspace(out)
	}
	return nil
}

// CreateCourse persists a new course and opens it.
func (w *Workspace) CreateCourse(c *course.Course) error {
	if err := course.Validate(c); err != nil {
		return err
	}

	if err := w.store.Create(*c); err != nil {
		w.fail("create course", c.ID, err)
		return nil
	}

	slog.Info("course created", "course_id", c.ID)
	w.out.PresentWorkspace(WorkspaceOutputData{Course: c.Clone()})
	return nil
}

// UpdateCourse replaces an existing course and opens it.
func (w *Workspace) UpdateCourse(c *course.Course) error {
	if err := course.Validate(c); err != nil {
		return err
	}

	if err := w.store.Update(*c); err != nil {
		w.fail("update course", c.ID, err)
		return nil
	}

	slog.Info("course updated", "course_id", c.ID)
	w.out.PresentWorkspace(WorkspaceOutputData{Course: c.Clone()})
	return nil
}

// DeleteCourse removes a course, present or not, and returns to the dashboard.
func (w *Workspace) DeleteCourse(id string) error {
	if strings.TrimSpace(id) == "" {
		return invalid("course id is required")
	}

	if err := w.store.Delete(id); err != nil {
		w.fail("delete course", id, err)
		return nil
	}

	courses, err := w.store.FindAll()
	if err != nil {
		w.fail("list courses", id, err)
		return nil
	}

	slog.Info("course deleted", "course_id", id, "remaining", len(courses))
	w.out.PresentDashboard(DashboardOutputData{Courses: courses})
	return nil
}

// AttachFile adds a document to a course and reopens it in the editor.
func (w *Workspace) AttachFile(courseID, path string) error {
	return w.editFiles(courseID, path, func(c *course.Course) {
		c.AttachFile(path)
	})
}

// DetachFile removes a document by exact path and reopens the course in the
// editor. Detaching a path that is not attached succeeds without change.
func (w *Workspace) DetachFile(courseID, path string) error {
	return w.editFiles(courseID, path, func(c *course.Course) {
		c.DetachFile(path)
	})
}

// RemoveMissingFile detaches path from every course that lists it. It runs
// for documents that disappeared from disk, so the active view is left alone.
func (w *Workspace) RemoveMissingFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return invalid("file path is required")
	}

	courses, err := w.store.FindAll()
	if err != nil {
		w.fail("list courses", "", err)
		return nil
	}

	var changed []course.Course
	for _, c := range courses {
		if !c.DetachFile(path) {
			continue
		}
		if err := w.store.Update(c); err != nil {
			w.fail("detach missing file", c.ID, err)
			return nil
		}
		slog.Info("material detached after removal", "course_id", c.ID, "path", path)
		changed = append(changed, c)
	}

	w.out.PresentMaterialsRemoved(MaterialsRemovedData{Path: path, Courses: changed})
	return nil
}

func (w *Workspace) editFiles(courseID, path string, edit func(*course.Course)) error {
	if strings.TrimSpace(courseID) == "" {
		return invalid("course id is required")
	}
	if strings.TrimSpace(path) == "" {
		return invalid("file path is required")
	}

	c, err := w.store.FindByID(courseID)
	if err != nil {
		w.fail("find course", courseID, err)
		return nil
	}

	edit(c)
	if err := w.store.Update(*c); err != nil {
		w.fail("update course files", courseID, err)
		return nil
	}

	w.out.PresentEdit(WorkspaceOutputData{Course: *c})
	return nil
}

func (w *Workspace) fail(op, id string, err error) {
	slog.Warn("workspace operation failed", "op", op, "course_id", id, "error", err)
	w.out.PresentWorkspaceFailure(failureMessage(id, err))
}

func failureMessage(id string, err error) string {
	switch {
	case errors.Is(err, course.ErrNotFound):
		return noCourseMessage
	case errors.Is(err, course.ErrAlreadyExists):
		return fmt.Sprintf("Course already exists: %s", id)
	default:
		return err.Error()
	}
}
