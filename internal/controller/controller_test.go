package controller_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/p-n-ai/pai-study/internal/ai"
	"github.com/p-n-ai/pai-study/internal/controller"
	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/generator"
	"github.com/p-n-ai/pai-study/internal/material"
	"github.com/p-n-ai/pai-study/internal/presenter"
	"github.com/p-n-ai/pai-study/internal/timeline"
	"github.com/p-n-ai/pai-study/internal/usecase"
	"github.com/p-n-ai/pai-study/internal/viewstate"
	"github.com/p-n-ai/pai-study/internal/worker"
)

type staticReader string

func (r staticReader) ReadAll(context.Context, []course.PDFFile) (string, error) {
	return string(r), nil
}

type app struct {
	ctrl   *controller.Controller
	models *viewstate.Models
	store  *course.MemoryStore
	tl     *timeline.MemoryLogger
	mock   *ai.MockProvider
}

func newApp(t *testing.T, runner *worker.Runner) *app {
	t.Helper()

	store := course.NewMemoryStore()
	tl := timeline.NewMemoryLogger()
	models := viewstate.NewModels()
	pres := presenter.New(models)
	reader := staticReader("Sets are collections of distinct objects.")
	mock := &ai.MockProvider{Responses: map[ai.TaskType]string{
		ai.TaskTestGeneration: `{"questions":[{"question":"2+2?\nA) 1\nB) 2\nC) 4\nD) 3","answer":"4","type":"Multiple Choice"}]}`,
		ai.TaskEvaluation:     `{"results":[{"correct":true,"feedback":"Right."}],"score":100}`,
		ai.TaskLectureNotes:   "# Sets\nA set is a collection.",
		ai.TaskFlashcards:     `{"flashcards":[{"front":"Set","back":"Collection"}]}`,
	}}
	gen := generator.New(generator.Config{Completer: mock, Reader: reader})
	materials := material.NewProvider(store)

	ctrl := controller.New(controller.Config{
		Workspace:  usecase.NewWorkspace(store, pres),
		Dashboard:  usecase.NewDashboard(store, pres),
		MockTest:   usecase.NewMockTest(materials, gen, pres),
		Evaluate:   usecase.NewEvaluate(materials, gen, pres),
		Notes:      usecase.NewLectureNotes(store, gen, tl, pres),
		Flashcards: usecase.NewFlashcards(store, materials, reader, gen, pres),
		Timeline:   usecase.NewTimeline(tl, pres),
		Runner:     runner,
	})
	return &app{ctrl: ctrl, models: models, store: store, tl: tl, mock: mock}
}

func startRunner(t *testing.T) *worker.Runner {
	t.Helper()
	r := worker.New(8)
	go r.Start(context.Background())
	t.Cleanup(r.Stop)
	return r
}

func wait(t *testing.T, h *worker.Handle) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Wait(ctx); err != nil {
		t.Fatalf("job %s: %v", h.Name(), err)
	}
}

func TestController_StudySession(t *testing.T) {
	a := newApp(t, startRunner(t))
	ctx := context.Background()

	if err := a.ctrl.ShowDashboard(ctx); err != nil {
		t.Fatalf("ShowDashboard() error = %v", err)
	}
	if a.models.Dashboard.Get().Error != "There is no course" {
		t.Errorf("dashboard = %+v", a.models.Dashboard.Get())
	}

	if err := a.ctrl.StartCreate(ctx); err != nil {
		t.Fatal(err)
	}
	if a.models.Manager.Active() != viewstate.ViewCreate {
		t.Fatalf("Active() = %q", a.models.Manager.Active())
	}

	if err := a.ctrl.CreateCourse(ctx, course.Course{ID: "math101", Name: "Discrete Math"}); err != nil {
		t.Fatal(err)
	}
	if err := a.ctrl.AttachFile(ctx, "math101", "/docs/sets.pdf"); err != nil {
		t.Fatal(err)
	}
	if ws := a.models.Workspace.Get(); a.models.Manager.Active() != viewstate.ViewEdit || len(ws.Files) != 1 {
		t.Fatalf("after attach: %q %+v", a.models.Manager.Active(), ws)
	}

	h, err := a.ctrl.GenerateMockTest("math101")
	if err != nil {
		t.Fatalf("GenerateMockTest() error = %v", err)
	}
	wait(t, h)
	test := a.models.Test.Get()
	if a.models.Manager.Active() != viewstate.ViewTest {
		t.Fatalf("Active() = %q, workspace error = %q", a.models.Manager.Active(), a.models.Workspace.Get().Error)
	}
	if !reflect.DeepEqual(test.Choices, [][]string{{"1", "2", "4", "3"}}) {
		t.Errorf("choices = %q", test.Choices)
	}
	if a.models.Loading.Get().Active {
		t.Error("loading still active")
	}

	h, err = a.ctrl.SubmitAnswers(usecase.EvaluationInput{
		CourseID:    test.CourseID,
		Questions:   test.Questions,
		Answers:     test.Answers,
		UserAnswers: []string{"4"},
	})
	if err != nil {
		t.Fatalf("SubmitAnswers() error = %v", err)
	}
	wait(t, h)
	if eval := a.models.Evaluation.Get(); a.models.Manager.Active() != viewstate.ViewEvaluation || eval.Score != 100 {
		t.Errorf("evaluation = %q %+v", a.models.Manager.Active(), eval)
	}

	if err := a.ctrl.OpenCourse(ctx, "math101"); err != nil {
		t.Fatal(err)
	}
	h, _ = a.ctrl.GenerateNotes("math101", "Sets")
	wait(t, h)
	if n := a.models.Notes.Get(); a.models.Manager.Active() != viewstate.ViewNotes || n.Topic != "Sets" {
		t.Errorf("notes = %q %+v", a.models.Manager.Active(), n)
	}

	h, _ = a.ctrl.GenerateFlashcards("math101")
	wait(t, h)
	if fc := a.models.Flashcards.Get(); len(fc.Cards) != 1 || fc.CourseName != "Discrete Math" {
		t.Errorf("flashcards = %+v", fc)
	}

	if err := a.ctrl.ShowTimeline(ctx, "math101"); err != nil {
		t.Fatal(err)
	}
	if entries := a.models.Timeline.Get().Entries; len(entries) != 1 || entries[0].Title != "Lecture notes: Sets" {
		t.Errorf("timeline = %+v", entries)
	}

	if err := a.ctrl.DeleteCourse(ctx, "math101"); err != nil {
		t.Fatal(err)
	}
	if a.models.Manager.Active() != viewstate.ViewDashboard || a.models.Workspace.Get().CourseID != "" {
		t.Errorf("after delete: %q %+v", a.models.Manager.Active(), a.models.Workspace.Get())
	}
}

func TestController_CreateValidationIsSynchronous(t *testing.T) {
	a := newApp(t, startRunner(t))

	if err := a.ctrl.CreateCourse(context.Background(), course.Course{}); !errors.Is(err, course.ErrInvalidArgument) {
		t.Errorf("CreateCourse() error = %v", err)
	}
	if err := a.ctrl.DeleteCourse(context.Background(), " "); !errors.Is(err, course.ErrInvalidArgument) {
		t.Errorf("DeleteCourse() error = %v", err)
	}
	if a.models.Dashboard.Get().Error != "" || a.models.Workspace.Get().Error != "" {
		t.Error("validation errors should not reach the screens")
	}
}

func TestController_BlankGenerationInputsAreReported(t *testing.T) {
	a := newApp(t, startRunner(t))
	_ = a.store.Create(course.Course{ID: "c", Files: []course.PDFFile{{Path: "/x.pdf"}}})
	if err := a.ctrl.OpenCourse(context.Background(), "c"); err != nil {
		t.Fatal(err)
	}

	h, err := a.ctrl.GenerateNotes("c", "")
	if err != nil {
		t.Fatalf("GenerateNotes() error = %v", err)
	}
	wait(t, h)
	if got := a.models.Workspace.Get().Error; got != "Please enter a topic for the lecture notes." {
		t.Errorf("notes failure = %q", got)
	}

	h, err = a.ctrl.GenerateMockTest("")
	if err != nil {
		t.Fatalf("GenerateMockTest() error = %v", err)
	}
	wait(t, h)
	if got := a.models.Workspace.Get().Error; !strings.HasPrefix(got, "Failed to generate mock test:") {
		t.Errorf("mock test failure = %q", got)
	}
	if a.models.Loading.Get().Active {
		t.Error("loading still active after failures")
	}
	if len(a.mock.Requests()) != 0 {
		t.Error("no generation should have run")
	}
}

func TestController_SubmitPartialAnswers(t *testing.T) {
	a := newApp(t, startRunner(t))
	_ = a.store.Create(course.Course{ID: "c", Files: []course.PDFFile{{Path: "/x.pdf"}}})

	h, err := a.ctrl.SubmitAnswers(usecase.EvaluationInput{
		CourseID:  "c",
		Questions: []string{"2+2?"},
		Answers:   []string{"4"},
	})
	if err != nil {
		t.Fatalf("SubmitAnswers() error = %v", err)
	}
	wait(t, h)

	if a.models.Manager.Active() != viewstate.ViewEvaluation {
		t.Fatalf("Active() = %q, want evaluation", a.models.Manager.Active())
	}
	if got := a.models.Evaluation.Get().UserAnswers; !reflect.DeepEqual(got, []string{""}) {
		t.Errorf("UserAnswers = %q, want one blank answer", got)
	}
}

func TestController_CancelledGenerationReportsOnce(t *testing.T) {
	runner := worker.New(4)
	a := newApp(t, runner)
	_ = a.store.Create(course.Course{ID: "c", Files: []course.PDFFile{{Path: "/x.pdf"}}})

	h, err := a.ctrl.GenerateMockTest("c")
	if err != nil {
		t.Fatal(err)
	}
	h.Cancel()

	changes := 0
	a.models.Workspace.Subscribe(func(viewstate.WorkspaceState) { changes++ })

	go runner.Start(context.Background())
	t.Cleanup(runner.Stop)
	wait(t, h)

	if changes != 1 || a.models.Workspace.Get().Error == "" {
		t.Errorf("workspace changes = %d error = %q, want one failure", changes, a.models.Workspace.Get().Error)
	}
	if a.models.Loading.Get().Active {
		t.Error("loading still active after cancelled job")
	}
}

func TestController_Inline(t *testing.T) {
	a := newApp(t, nil)
	_ = a.store.Create(course.Course{ID: "c"})

	if err := a.ctrl.OpenCourse(context.Background(), "c"); err != nil {
		t.Fatal(err)
	}
	h, err := a.ctrl.GenerateNotes("c", "Intro")
	if err != nil || h != nil {
		t.Fatalf("GenerateNotes() = %v, %v", h, err)
	}
	if a.models.Manager.Active() != viewstate.ViewNotes {
		t.Errorf("Active() = %q", a.models.Manager.Active())
	}
}

func TestController_StoppedRunner(t *testing.T) {
	runner := worker.New(1)
	runner.Stop()
	a := newApp(t, runner)

	if err := a.ctrl.ShowDashboard(context.Background()); !errors.Is(err, worker.ErrStopped) {
		t.Errorf("ShowDashboard() error = %v, want ErrStopped", err)
	}
}

func TestController_RemovedFileQueuesBehindSave(t *testing.T) {
	runner := startRunner(t)
	a := newApp(t, runner)
	ctx := context.Background()

	_ = a.store.Create(course.Course{ID: "c", Name: "Old", Files: []course.PDFFile{{Path: "/docs/x.pdf"}}})
	if err := a.ctrl.EditCourse(ctx, "c"); err != nil {
		t.Fatal(err)
	}

	w, err := material.NewWatcher(a.store, a.ctrl, time.Minute)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	// Hold the worker so both actions queue up in a known order.
	started, release := make(chan struct{}), make(chan struct{})
	block, err := runner.Submit("block", func(context.Context) {
		close(started)
		<-release
	})
	if err != nil {
		t.Fatal(err)
	}
	<-started

	errs := make(chan error, 2)
	go func() {
		errs <- a.ctrl.SaveCourse(ctx, course.Course{ID: "c", Name: "New", Files: []course.PDFFile{{Path: "/docs/x.pdf"}}})
	}()
	waitPending(t, runner, 1)
	go func() {
		_, err := w.Handle(ctx, fsnotify.Event{Name: "/docs/x.pdf", Op: fsnotify.Remove})
		errs <- err
	}()
	waitPending(t, runner, 2)

	if got, _ := a.store.FindByID("c"); len(got.Files) != 1 || got.Name != "Old" {
		t.Fatalf("store changed before the worker ran: %+v", got)
	}

	close(release)
	wait(t, block)
	for range 2 {
		if err := <-errs; err != nil {
			t.Fatalf("action error = %v", err)
		}
	}

	got, _ := a.store.FindByID("c")
	if got.Name != "New" || len(got.Files) != 0 {
		t.Errorf("course = %+v, want saved name with file removed", got)
	}
	if ws := a.models.Workspace.Get(); ws.Name != "New" || len(ws.Files) != 0 {
		t.Errorf("workspace = %+v", ws)
	}
}

func waitPending(t *testing.T, r *worker.Runner, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for r.Pending() < n {
		if time.Now().After(deadline) {
			t.Fatalf("Pending() = %d, want %d", r.Pending(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
