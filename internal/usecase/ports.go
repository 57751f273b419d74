// Package usecase holds the interactors that mediate between the course
// store, the content generator and the presenters.
//
// Every operation ends in exactly one presenter call, success or failure,
// and then returns nil. The only errors returned to the caller are
// validation errors wrapping course.ErrInvalidArgument, which indicate a
// caller bug and never reach a presenter.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/study"
	"github.com/p-n-ai/pai-study/internal/timeline"
)

const noCourseMessage = "There is no course"

// Loading task labels shown while a generation runs.
const (
	TaskMockTest   = "Generating mock test"
	TaskEvaluation = "Evaluating answers"
	TaskNotes      = "Writing lecture notes"
	TaskFlashcards = "Creating flashcards"
)

// Gateways.

type CourseStore = course.Store

type CourseLookup interface {
	FindByID(id string) (*course.Course, error)
}

type MaterialsProvider interface {
	GetCourseMaterials(courseID string) ([]course.PDFFile, error)
}

type MaterialReader interface {
	ReadAll(ctx context.Context, files []course.PDFFile) (string, error)
}

type TestGenerator interface {
	GenerateTestData(ctx context.Context, materials []course.PDFFile) (study.TestData, error)
}

type EvaluationGenerator interface {
	GenerateEvaluation(ctx context.Context, materials []course.PDFFile, userAnswers, questions, answers []string) (study.EvaluationData, error)
}

type NotesGenerator interface {
	GenerateNotes(ctx context.Context, c course.Course, topic string) (study.LectureNotes, error)
}

type FlashcardsGenerator interface {
	GenerateFlashcards(ctx context.Context, courseName, content string) (study.FlashcardSet, error)
}

type TimelineLogger = timeline.Logger

type TimelineReader = timeline.Reader

// Output data.

type WorkspaceOutputData struct {
	Course course.Course
}

// MaterialsRemovedData lists the courses a vanished document was detached from.
type MaterialsRemovedData struct {
	Path    string
	Courses []course.Course
}

type DashboardOutputData struct {
	Courses []course.Course
}

type TestOutputData struct {
	CourseID      string
	Questions     []string
	Answers       []string
	QuestionTypes []string
	Choices       [][]string
}

type EvaluationOutputData struct {
	CourseID   string
	Evaluation study.EvaluationData
}

type NotesOutputData struct {
	CourseID    string
	Topic       string
	Content     string
	GeneratedAt time.Time
}

type FlashcardsOutputData struct {
	CourseID   string
	CourseName string
	Cards      []study.Flashcard
}

type TimelineOutputData struct {
	CourseID string
	Entries  []timeline.Entry
}

// Output boundaries.

type WorkspaceOutput interface {
	PresentWorkspace(out WorkspaceOutputData)
	PresentEdit(out WorkspaceOutputData)
	PresentDashboard(out DashboardOutputData)
	PresentWorkspaceFailure(msg string)
	// PresentMaterialsRemoved refreshes any screen showing the changed
	// courses without moving the active view.
	PresentMaterialsRemoved(out MaterialsRemovedData)
}

type DashboardOutput interface {
	PresentDashboard(out DashboardOutputData)
	PresentCreate()
	PresentDashboardFailure(msg string)
}

type LoadingOutput interface {
	PresentLoading(task string)
}

type MockTestOutput interface {
	LoadingOutput
	PresentTest(out TestOutputData)
	PresentTestFailure(msg string)
}

type EvaluationOutput interface {
	LoadingOutput
	PresentEvaluation(out EvaluationOutputData)
	PresentEvaluationFailure(msg string)
}

type NotesOutput interface {
	LoadingOutput
	PresentNotes(out NotesOutputData)
	PresentNotesFailure(msg string)
}

type FlashcardsOutput interface {
	LoadingOutput
	PresentFlashcards(out FlashcardsOutputData)
	PresentFlashcardsFailure(msg string)
}

type TimelineOutput interface {
	PresentTimeline(out TimelineOutputData)
	PresentTimelineFailure(msg string)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{course.ErrInvalidArgument}, args...)...)
}

// protect runs a gateway call and turns a panic into an error so the
// interactor can still report exactly one outcome.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return fn()
}
