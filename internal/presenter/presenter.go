// Package presenter turns interactor output into view state and navigation.
//
// A successful transition builds a fresh state value for the destination
// screen, publishes it, and then activates the screen. Entering the
// workspace family resets the dashboard and vice versa. Failures only set
// the error on the originating screen and never move the active view.
package presenter

import (
	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/usecase"
	"github.com/p-n-ai/pai-study/internal/viewstate"
)

// Presenter implements every output boundary over one set of view models.
type Presenter struct {
	models *viewstate.Models
}

// New creates a presenter writing to models.
func New(models *viewstate.Models) *Presenter {
	return &Presenter{models: models}
}

var (
	_ usecase.WorkspaceOutput  = (*Presenter)(nil)
	_ usecase.DashboardOutput  = (*Presenter)(nil)
	_ usecase.MockTestOutput   = (*Presenter)(nil)
	_ usecase.EvaluationOutput = (*Presenter)(nil)
	_ usecase.NotesOutput      = (*Presenter)(nil)
	_ usecase.FlashcardsOutput = (*Presenter)(nil)
	_ usecase.TimelineOutput   = (*Presenter)(nil)
)

func (p *Presenter) PresentWorkspace(out usecase.WorkspaceOutputData) {
	p.enterWorkspace(workspaceState(out, false), viewstate.ViewWorkspace)
}

func (p *Presenter) PresentEdit(out usecase.WorkspaceOutputData) {
	p.enterWorkspace(workspaceState(out, true), viewstate.ViewEdit)
}

func (p *Presenter) PresentCreate() {
	p.enterWorkspace(viewstate.WorkspaceState{Creating: true}, viewstate.ViewCreate)
}

func (p *Presenter) PresentDashboard(out usecase.DashboardOutputData) {
	p.models.Dashboard.Set(viewstate.DashboardState{Courses: out.Courses})
	p.models.Workspace.Set(viewstate.WorkspaceState{})
	p.models.Manager.Activate(viewstate.ViewDashboard)
}

// PresentMaterialsRemoved swaps the changed courses into whichever of the
// workspace or dashboard states holds them.
func (p *Presenter) PresentMaterialsRemoved(out usecase.MaterialsRemovedData) {
	if len(out.Courses) == 0 {
		return
	}
	byID := make(map[string]int, len(out.Courses))
	for i, c := range out.Courses {
		byID[c.ID] = i
	}

	if ws := p.models.Workspace.Get(); ws.CourseID != "" {
		if i, ok := byID[ws.CourseID]; ok {
			ws.Files = out.Courses[i].Files
			p.models.Workspace.Set(ws)
		}
	}

	ds := p.models.Dashboard.Get()
	touched := false
	courses := make([]course.Course, len(ds.Courses))
	for i, c := range ds.Courses {
		if j, ok := byID[c.ID]; ok {
			c = out.Courses[j]
			touched = true
		}
		courses[i] = c
	}
	if touched {
		ds.Courses = courses
		p.models.Dashboard.Set(ds)
	}
}

func (p *Presenter) PresentDashboardFailure(msg string) {
	p.dashboardError(msg)
}

// PresentWorkspaceFailure reports on whichever of dashboard or workspace is showing.
func (p *Presenter) PresentWorkspaceFailure(msg string) {
	if p.models.Manager.Active() == viewstate.ViewDashboard {
		p.dashboardError(msg)
		return
	}
	p.workspaceError(msg)
}

func (p *Presenter) PresentLoading(task string) {
	p.models.Loading.Set(viewstate.LoadingState{Active: true, Task: task})
}

func (p *Presenter) PresentTest(out usecase.TestOutputData) {
	p.stopLoading()
	p.models.Test.Set(viewstate.TestState{
		CourseID:      out.CourseID,
		Questions:     out.Questions,
		Answers:       out.Answers,
		QuestionTypes: out.QuestionTypes,
		Choices:       out.Choices,
	})
	p.models.Manager.Activate(viewstate.ViewTest)
}

func (p *Presenter) PresentTestFailure(msg string) {
	p.stopLoading()
	p.workspaceError(msg)
}

func (p *Presenter) PresentEvaluation(out usecase.EvaluationOutputData) {
	p.stopLoading()
	e := out.Evaluation
	p.models.Evaluation.Set(viewstate.EvaluationState{
		CourseID:    out.CourseID,
		Questions:   e.Questions,
		Answers:     e.Answers,
		UserAnswers: e.UserAnswers,
		Correct:     e.Correct,
		Feedback:    e.Feedback,
		Score:       e.Score,
	})
	p.models.Manager.Activate(viewstate.ViewEvaluation)
}

// PresentEvaluationFailure keeps the attempt on screen so it can be resubmitted.
func (p *Presenter) PresentEvaluationFailure(msg string) {
	p.stopLoading()
	s := p.models.Test.Get()
	s.Error = msg
	p.models.Test.Set(s)
}

func (p *Presenter) PresentNotes(out usecase.NotesOutputData) {
	p.stopLoading()
	p.models.Notes.Set(viewstate.NotesState{
		CourseID:    out.CourseID,
		Topic:       out.Topic,
		Content:     out.Content,
		GeneratedAt: out.GeneratedAt,
	})
	p.models.Manager.Activate(viewstate.ViewNotes)
}

func (p *Presenter) PresentNotesFailure(msg string) {
	p.stopLoading()
	p.workspaceError(msg)
}

func (p *Presenter) PresentFlashcards(out usecase.FlashcardsOutputData) {
	p.stopLoading()
	p.models.Flashcards.Set(viewstate.FlashcardsState{
		CourseID:   out.CourseID,
		CourseName: out.CourseName,
		Cards:      out.Cards,
	})
	p.models.Manager.Activate(viewstate.ViewFlashcards)
}

func (p *Presenter) PresentFlashcardsFailure(msg string) {
	p.stopLoading()
	p.workspaceError(msg)
}

func (p *Presenter) PresentTimeline(out usecase.TimelineOutputData) {
	p.models.Timeline.Set(viewstate.TimelineState{CourseID: out.CourseID, Entries: out.Entries})
	p.models.Manager.Activate(viewstate.ViewTimeline)
}

func (p *Presenter) PresentTimelineFailure(msg string) {
	p.workspaceError(msg)
}

func (p *Presenter) enterWorkspace(s viewstate.WorkspaceState, view viewstate.ViewName) {
	p.models.Workspace.Set(s)
	p.models.Dashboard.Set(viewstate.DashboardState{})
	p.models.Manager.Activate(view)
}

func (p *Presenter) dashboardError(msg string) {
	s := p.models.Dashboard.Get()
	s.Error = msg
	p.models.Dashboard.Set(s)
}

func (p *Presenter) workspaceError(msg string) {
	s := p.models.Workspace.Get()
	s.Error = msg
	p.models.Workspace.Set(s)
}

func (p *Presenter) stopLoading() {
	if p.models.Loading.Get().Active {
		p.models.Loading.Set(viewstate.LoadingState{})
	}
}

func workspaceState(out usecase.WorkspaceOutputData, edit bool) viewstate.WorkspaceState {
	c := out.Course
	return viewstate.WorkspaceState{
		CourseID:    c.ID,
		Name:        c.Name,
		Description: c.Description,
		Files:       c.Files,
		EditMode:    edit,
	}
}
