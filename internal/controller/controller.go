// Package controller turns user actions into interactor calls.
//
// Every action goes through the worker so presenters are only ever called
// from one goroutine. Course edits wait for their job; generation returns
// a handle immediately.
package controller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/usecase"
	"github.com/p-n-ai/pai-study/internal/worker"
)

// Config holds the interactors and the runner.
type Config struct {
	Workspace  *usecase.Workspace
	Dashboard  *usecase.Dashboard
	MockTest   *usecase.MockTest
	Evaluate   *usecase.Evaluate
	Notes      *usecase.LectureNotes
	Flashcards *usecase.Flashcards
	Timeline   *usecase.Timeline
	Runner     *worker.Runner // nil runs every action inline
}

// Controller dispatches user actions.
type Controller struct {
	workspace  *usecase.Workspace
	dashboard  *usecase.Dashboard
	mockTest   *usecase.MockTest
	evaluate   *usecase.Evaluate
	notes      *usecase.LectureNotes
	flashcards *usecase.Flashcards
	timeline   *usecase.Timeline
	runner     *worker.Runner
}

// New creates a controller.
func New(cfg Config) *Controller {
	return &Controller{
		workspace:  cfg.Workspace,
		dashboard:  cfg.Dashboard,
		mockTest:   cfg.MockTest,
		evaluate:   cfg.Evaluate,
		notes:      cfg.Notes,
		flashcards: cfg.Flashcards,
		timeline:   cfg.Timeline,
		runner:     cfg.Runner,
	}
}

func (c *Controller) ShowDashboard(ctx context.Context) error {
	return c.do(ctx, "show_dashboard", func(context.Context) error {
		return c.dashboard.GetCourses()
	})
}

func (c *Controller) StartCreate(ctx context.Context) error {
	return c.do(ctx, "start_create", func(context.Context) error {
		c.dashboard.CreateCourse()
		return nil
	})
}

func (c *Controller) OpenCourse(ctx context.Context, id string) error {
	return c.do(ctx, "open_course", func(context.Context) error {
		return c.workspace.FindCourseByID(id, false)
	})
}

func (c *Controller) EditCourse(ctx context.Context, id string) error {
	return c.do(ctx, "edit_course", func(context.Context) error {
		return c.workspace.FindCourseByID(id, true)
	})
}

func (c *Controller) CreateCourse(ctx context.Context, in course.Course) error {
	return c.do(ctx, "create_course", func(context.Context) error {
		return c.workspace.CreateCourse(&in)
	})
}

func (c *Controller) SaveCourse(ctx context.Context, in course.Course) error {
	return c.do(ctx, "save_course", func(context.Context) error {
		return c.workspace.UpdateCourse(&in)
	})
}

func (c *Controller) DeleteCourse(ctx context.Context, id string) error {
	return c.do(ctx, "delete_course", func(context.Context) error {
		return c.workspace.DeleteCourse(id)
	})
}

func (c *Controller) AttachFile(ctx context.Context, courseID, path string) error {
	return c.do(ctx, "attach_file", func(context.Context) error {
		return c.workspace.AttachFile(courseID, path)
	})
}

func (c *Controller) DetachFile(ctx context.Context, courseID, path string) error {
	return c.do(ctx, "detach_file", func(context.Context) error {
		return c.workspace.DetachFile(courseID, path)
	})
}

// RemoveMissingFile detaches a document that vanished from disk. It runs on
// the worker like every other course edit.
func (c *Controller) RemoveMissingFile(ctx context.Context, path string) error {
	return c.do(ctx, "remove_missing_file", func(context.Context) error {
		return c.workspace.RemoveMissingFile(path)
	})
}

func (c *Controller) ShowTimeline(ctx context.Context, courseID string) error {
	return c.do(ctx, "show_timeline", func(context.Context) error {
		return c.timeline.ShowTimeline(courseID)
	})
}

// GenerateMockTest queues test generation for a course.
func (c *Controller) GenerateMockTest(courseID string) (*worker.Handle, error) {
	return c.spawn("mock_test", func(ctx context.Context) error {
		return c.mockTest.GenerateMockTest(ctx, courseID)
	})
}

// SubmitAnswers queues grading of a completed attempt.
func (c *Controller) SubmitAnswers(in usecase.EvaluationInput) (*worker.Handle, error) {
	return c.spawn("evaluate", func(ctx context.Context) error {
		return c.evaluate.EvaluateTest(ctx, in)
	})
}

// GenerateNotes queues lecture notes for a topic.
func (c *Controller) GenerateNotes(courseID, topic string) (*worker.Handle, error) {
	return c.spawn("lecture_notes", func(ctx context.Context) error {
		return c.notes.GenerateNotes(ctx, courseID, topic)
	})
}

// GenerateFlashcards queues a flashcard deck for a course.
func (c *Controller) GenerateFlashcards(courseID string) (*worker.Handle, error) {
	return c.spawn("flashcards", func(ctx context.Context) error {
		return c.flashcards.GenerateFlashcards(ctx, courseID)
	})
}

// do runs fn on the worker and waits for it.
func (c *Controller) do(ctx context.Context, name string, fn func(context.Context) error) error {
	if c.runner == nil {
		return fn(ctx)
	}

	var err error
	h, serr := c.runner.Submit(name, func(jctx context.Context) {
		err = fn(jctx)
	})
	if serr != nil {
		return fmt.Errorf("%s: %w", name, serr)
	}
	if werr := h.Wait(ctx); werr != nil {
		return werr
	}
	return err
}

// spawn queues fn and returns without waiting.
func (c *Controller) spawn(name string, fn func(context.Context) error) (*worker.Handle, error) {
	if c.runner == nil {
		if err := fn(context.Background()); err != nil {
			return nil, err
		}
		return nil, nil
	}

	h, err := c.runner.Submit(name, func(ctx context.Context) {
		if err := fn(ctx); err != nil {
			slog.Error("action rejected", "action", name, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return h, nil
}
