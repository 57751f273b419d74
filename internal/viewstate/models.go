package viewstate

import (
	"time"

	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/study"
	"github.com/p-n-ai/pai-study/internal/timeline"
)

// DashboardState backs the course list.
type DashboardState struct {
	Courses []course.Course `json:"courses"`
	Error   string          `json:"error,omitempty"`
}

// WorkspaceState backs the workspace, edit and create screens.
type WorkspaceState struct {
	CourseID    string           `json:"course_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Files       []course.PDFFile `json:"files"`
	EditMode    bool             `json:"edit_mode"`
	Creating    bool             `json:"creating"`
	Error       string           `json:"error,omitempty"`
}

// TestState backs the test-taking screen.
type TestState struct {
	CourseID      string     `json:"course_id"`
	Questions     []string   `json:"questions"`
	Answers       []string   `json:"answers"`
	QuestionTypes []string   `json:"question_types"`
	Choices       [][]string `json:"choices"`
	Error         string     `json:"error,omitempty"`
}

// EvaluationState backs the results screen.
type EvaluationState struct {
	CourseID    string   `json:"course_id"`
	Questions   []string `json:"questions"`
	Answers     []string `json:"answers"`
	UserAnswers []string `json:"user_answers"`
	Correct     []bool   `json:"correct"`
	Feedback    []string `json:"feedback"`
	Score       int      `json:"score"`
	Error       string   `json:"error,omitempty"`
}

// NotesState backs the lecture notes screen.
type NotesState struct {
	CourseID    string    `json:"course_id"`
	Topic       string    `json:"topic"`
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generated_at"`
	Error       string    `json:"error,omitempty"`
}

// TimelineState backs the course timeline screen.
type TimelineState struct {
	CourseID string           `json:"course_id"`
	Entries  []timeline.Entry `json:"entries"`
	Error    string           `json:"error,omitempty"`
}

// FlashcardsState backs the flashcard deck screen.
type FlashcardsState struct {
	CourseID   string            `json:"course_id"`
	CourseName string            `json:"course_name"`
	Cards      []study.Flashcard `json:"cards"`
	Error      string            `json:"error,omitempty"`
}

// LoadingState is an overlay shown while a generation runs. It is never the active view.
type LoadingState struct {
	Active bool   `json:"active"`
	Task   string `json:"task,omitempty"`
}

// Models holds exactly one state per screen kind plus the active-view pointer.
type Models struct {
	Manager    *Manager
	Dashboard  *State[DashboardState]
	Workspace  *State[WorkspaceState]
	Test       *State[TestState]
	Evaluation *State[EvaluationState]
	Notes      *State[NotesState]
	Timeline   *State[TimelineState]
	Flashcards *State[FlashcardsState]
	Loading    *State[LoadingState]
}

// NewModels creates empty states with the dashboard active.
func NewModels() *Models {
	return &Models{
		Manager:    NewManager(),
		Dashboard:  NewState(DashboardState{}),
		Workspace:  NewState(WorkspaceState{}),
		Test:       NewState(TestState{}),
		Evaluation: NewState(EvaluationState{}),
		Notes:      NewState(NotesState{}),
		Timeline:   NewState(TimelineState{}),
		Flashcards: NewState(FlashcardsState{}),
		Loading:    NewState(LoadingState{}),
	}
}

// Snapshot returns the current state value backing view.
func (m *Models) Snapshot(view ViewName) any {
	switch view {
	case ViewDashboard:
		return m.Dashboard.Get()
	case ViewWorkspace, ViewEdit, ViewCreate:
		return m.Workspace.Get()
	case ViewTest:
		return m.Test.Get()
	case ViewEvaluation:
		return m.Evaluation.Get()
	case ViewNotes:
		return m.Notes.Get()
	case ViewTimeline:
		return m.Timeline.Get()
	case ViewFlashcards:
		return m.Flashcards.Get()
	default:
		return nil
	}
}
