package usecase_test

import (
	"context"
	"errors"

	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/study"
	"github.com/p-n-ai/pai-study/internal/timeline"
	"github.com/p-n-ai/pai-study/internal/usecase"
)

// recorder implements every output boundary and records calls in order.
type recorder struct {
	calls []string

	workspace  []usecase.WorkspaceOutputData
	edit       []usecase.WorkspaceOutputData
	dashboard  []usecase.DashboardOutputData
	test       []usecase.TestOutputData
	evaluation []usecase.EvaluationOutputData
	notes      []usecase.NotesOutputData
	flashcards []usecase.FlashcardsOutputData
	timeline   []usecase.TimelineOutputData
	removed    []usecase.MaterialsRemovedData
	failures   []string
	loading    []string
}

func (r *recorder) PresentWorkspace(out usecase.WorkspaceOutputData) {
	r.calls = append(r.calls, "workspace")
	r.workspace = append(r.workspace, out)
}

func (r *recorder) PresentEdit(out usecase.WorkspaceOutputData) {
	r.calls = append(r.calls, "edit")
	r.edit = append(r.edit, out)
}

func (r *recorder) PresentDashboard(out usecase.DashboardOutputData) {
	r.calls = append(r.calls, "dashboard")
	r.dashboard = append(r.dashboard, out)
}

func (r *recorder) PresentMaterialsRemoved(out usecase.MaterialsRemovedData) {
	r.calls = append(r.calls, "materials_removed")
	r.removed = append(r.removed, out)
}

func (r *recorder) PresentCreate() {
	r.calls = append(r.calls, "create")
}

func (r *recorder) PresentTest(out usecase.TestOutputData) {
	r.calls = append(r.calls, "test")
	r.test = append(r.test, out)
}

func (r *recorder) PresentEvaluation(out usecase.EvaluationOutputData) {
	r.calls = append(r.calls, "evaluation")
	r.evaluation = append(r.evaluation, out)
}

func (r *recorder) PresentNotes(out usecase.NotesOutputData) {
	r.calls = append(r.calls, "notes")
	r.notes = append(r.notes, out)
}

func (r *recorder) PresentFlashcards(out usecase.FlashcardsOutputData) {
	r.calls = append(r.calls, "flashcards")
	r.flashcards = append(r.flashcards, out)
}

func (r *recorder) PresentTimeline(out usecase.TimelineOutputData) {
	r.calls = append(r.calls, "timeline")
	r.timeline = append(r.timeline, out)
}

func (r *recorder) PresentLoading(task string) {
	r.calls = append(r.calls, "loading")
	r.loading = append(r.loading, task)
}

func (r *recorder) fail(msg string) {
	r.calls = append(r.calls, "failure")
	r.failures = append(r.failures, msg)
}

func (r *recorder) PresentWorkspaceFailure(msg string)  { r.fail(msg) }
func (r *recorder) PresentDashboardFailure(msg string)  { r.fail(msg) }
func (r *recorder) PresentTestFailure(msg string)       { r.fail(msg) }
func (r *recorder) PresentEvaluationFailure(msg string) { r.fail(msg) }
func (r *recorder) PresentNotesFailure(msg string)      { r.fail(msg) }
func (r *recorder) PresentFlashcardsFailure(msg string) { r.fail(msg) }
func (r *recorder) PresentTimelineFailure(msg string)   { r.fail(msg) }

// outcomes counts presenter calls other than loading.
func (r *recorder) outcomes() int {
	n := 0
	for _, c := range r.calls {
		if c != "loading" {
			n++
		}
	}
	return n
}

type fakeMaterials struct {
	files []course.PDFFile
	err   error
}

func (m fakeMaterials) GetCourseMaterials(string) ([]course.PDFFile, error) {
	return m.files, m.err
}

type fakeReader struct {
	text string
	err  error
}

func (r fakeReader) ReadAll(context.Context, []course.PDFFile) (string, error) {
	return r.text, r.err
}

type fakeGenerator struct {
	testData   study.TestData
	evaluation study.EvaluationData
	notes      study.LectureNotes
	flashcards study.FlashcardSet
	err        error
	panicWith  any

	notesCalls      int
	evalCalls       int
	lastUserAnswers []string
	lastTopic  string
	lastCourse course.Course
	lastFiles  []course.PDFFile
	lastText   string
}

func (g *fakeGenerator) GenerateTestData(_ context.Context, files []course.PDFFile) (study.TestData, error) {
	g.lastFiles = files
	if g.panicWith != nil {
		panic(g.panicWith)
	}
	return g.testData, g.err
}

func (g *fakeGenerator) GenerateEvaluation(_ context.Context, files []course.PDFFile, userAnswers, _, _ []string) (study.EvaluationData, error) {
	g.evalCalls++
	g.lastFiles = files
	g.lastUserAnswers = userAnswers
	return g.evaluation, g.err
}

func (g *fakeGenerator) GenerateNotes(_ context.Context, c course.Course, topic string) (study.LectureNotes, error) {
	g.notesCalls++
	g.lastCourse = c
	g.lastTopic = topic
	if g.panicWith != nil {
		panic(g.panicWith)
	}
	return g.notes, g.err
}

func (g *fakeGenerator) GenerateFlashcards(_ context.Context, courseName, content string) (study.FlashcardSet, error) {
	g.lastText = content
	if g.err != nil {
		return study.FlashcardSet{}, g.err
	}
	set := g.flashcards
	set.CourseName = courseName
	return set, nil
}

type failingTimeline struct {
	calls int
}

func (f *failingTimeline) LogNotesGenerated(string, string, string, string, string) error {
	f.calls++
	return errors.New("timeline table missing")
}

func (f *failingTimeline) Entries(string) ([]timeline.Entry, error) {
	return nil, errors.New("timeline table missing")
}

func seededStore(courses ...course.Course) *course.MemoryStore {
	s := course.NewMemoryStore()
	for _, c := range courses {
		_ = s.Create(c)
	}
	return s
}
