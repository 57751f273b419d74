// Package remoteview mirrors view state to websocket clients and feeds their
// actions back to the controller.
package remoteview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/usecase"
	"github.com/p-n-ai/pai-study/internal/viewstate"
	"github.com/p-n-ai/pai-study/internal/worker"
)

const (
	sendBuffer   = 32
	writeTimeout = 5 * time.Second
)

// Frame types sent to clients.
const (
	FrameView    = "view"
	FrameState   = "state"
	FrameLoading = "loading"
	FrameError   = "error"
)

// Frame is one message to a client.
type Frame struct {
	Type  string             `json:"type"`
	View  viewstate.ViewName `json:"view,omitempty"`
	State any                `json:"state,omitempty"`
	Error string             `json:"error,omitempty"`
}

// Action is one message from a client.
type Action struct {
	Action   string         `json:"action"`
	CourseID string         `json:"course_id,omitempty"`
	Path     string         `json:"path,omitempty"`
	Topic    string         `json:"topic,omitempty"`
	Course   *course.Course `json:"course,omitempty"`
	Answers  []string       `json:"answers,omitempty"`
}

// Actions is the controller surface the hub dispatches to.
type Actions interface {
	ShowDashboard(ctx context.Context) error
	StartCreate(ctx context.Context) error
	OpenCourse(ctx context.Context, id string) error
	EditCourse(ctx context.Context, id string) error
	CreateCourse(ctx context.Context, in course.Course) error
	SaveCourse(ctx context.Context, in course.Course) error
	DeleteCourse(ctx context.Context, id string) error
	AttachFile(ctx context.Context, courseID, path string) error
	DetachFile(ctx context.Context, courseID, path string) error
	ShowTimeline(ctx context.Context, courseID string) error
	GenerateMockTest(courseID string) (*worker.Handle, error)
	SubmitAnswers(in usecase.EvaluationInput) (*worker.Handle, error)
	GenerateNotes(courseID, topic string) (*worker.Handle, error)
	GenerateFlashcards(courseID string) (*worker.Handle, error)
}

// ErrUnknownAction is returned for an action name the hub does not handle.
var ErrUnknownAction = errors.New("unknown action")

type client struct {
	conn *websocket.Conn
	send chan Frame
}

// Hub broadcasts view changes to every connected client.
type Hub struct {
	models  *viewstate.Models
	actions Actions
	origins []string

	mu      sync.Mutex
	clients map[*client]struct{}
	unsubs  []func()
}

// NewHub subscribes to models and returns a hub ready to serve connections.
// origins lists allowed Origin host patterns; empty allows same-origin only.
func NewHub(models *viewstate.Models, actions Actions, origins ...string) *Hub {
	h := &Hub{
		models:  models,
		actions: actions,
		origins: origins,
		clients: make(map[*client]struct{}),
	}

	h.unsubs = append(h.unsubs,
		models.Manager.Subscribe(func(v viewstate.ViewName) {
			h.broadcast(Frame{Type: FrameView, View: v, State: models.Snapshot(v)})
		}),
		models.Loading.Subscribe(func(l viewstate.LoadingState) {
			h.broadcast(Frame{Type: FrameLoading, State: l})
		}),
	)
	watchState(h, models.Dashboard, viewstate.ViewDashboard)
	watchState(h, models.Workspace, viewstate.ViewWorkspace, viewstate.ViewEdit, viewstate.ViewCreate)
	watchState(h, models.Test, viewstate.ViewTest)
	watchState(h, models.Evaluation, viewstate.ViewEvaluation)
	watchState(h, models.Notes, viewstate.ViewNotes)
	watchState(h, models.Timeline, viewstate.ViewTimeline)
	watchState(h, models.Flashcards, viewstate.ViewFlashcards)
	return h
}

// watchState forwards in-place changes of the state backing the active view,
// such as an inline error.
func watchState[T any](h *Hub, s *viewstate.State[T], views ...viewstate.ViewName) {
	h.unsubs = append(h.unsubs, s.Subscribe(func(v T) {
		active := h.models.Manager.Active()
		for _, view := range views {
			if view == active {
				h.broadcast(Frame{Type: FrameState, View: active, State: v})
				return
			}
		}
	}))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close unsubscribes from the models and disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	unsubs := h.unsubs
	h.unsubs = nil
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	for c := range clients {
		close(c.send)
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	c := &client{conn: conn, send: make(chan Frame, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	// Snapshot only once registered, so a change made in between is either
	// broadcast or already part of the snapshot.
	active := h.models.Manager.Active()
	h.sendTo(c, Frame{Type: FrameView, View: active, State: h.models.Snapshot(active)})
	slog.Info("remote view connected", "remote", r.RemoteAddr)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go h.writeLoop(ctx, c)

	for {
		var act Action
		if err := wsjson.Read(ctx, conn, &act); err != nil {
			if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
				slog.Debug("remote view read failed", "error", err)
			}
			break
		}
		if err := h.dispatch(ctx, act); err != nil {
			slog.Warn("remote action failed", "action", act.Action, "error", err)
			h.sendTo(c, Frame{Type: FrameError, Error: err.Error()})
		}
	}

	h.remove(c)
	slog.Info("remote view disconnected", "remote", r.RemoteAddr)
}

// writeLoop sends frames until the client is removed, then closes the connection.
func (h *Hub) writeLoop(ctx context.Context, c *client) {
	for f := range c.send {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := wsjson.Write(wctx, c.conn, f)
		cancel()
		if err != nil {
			slog.Debug("remote view write failed", "error", err)
			c.conn.CloseNow()
			return
		}
	}
	c.conn.Close(websocket.StatusGoingAway, "")
}

func (h *Hub) dispatch(ctx context.Context, a Action) error {
	switch a.Action {
	case "show_dashboard":
		return h.actions.ShowDashboard(ctx)
	case "start_create":
		return h.actions.StartCreate(ctx)
	case "open_course":
		return h.actions.OpenCourse(ctx, a.CourseID)
	case "edit_course":
		return h.actions.EditCourse(ctx, a.CourseID)
	case "create_course", "save_course":
		if a.Course == nil {
			return fmt.Errorf("%w: course is required", course.ErrInvalidArgument)
		}
		if a.Action == "create_course" {
			return h.actions.CreateCourse(ctx, *a.Course)
		}
		return h.actions.SaveCourse(ctx, *a.Course)
	case "delete_course":
		return h.actions.DeleteCourse(ctx, a.CourseID)
	case "attach_file":
		return h.actions.AttachFile(ctx, a.CourseID, a.Path)
	case "detach_file":
		return h.actions.DetachFile(ctx, a.CourseID, a.Path)
	case "show_timeline":
		return h.actions.ShowTimeline(ctx, a.CourseID)
	case "generate_test":
		_, err := h.actions.GenerateMockTest(a.CourseID)
		return err
	case "submit_answers":
		t := h.models.Test.Get()
		_, err := h.actions.SubmitAnswers(usecase.EvaluationInput{
			CourseID:    t.CourseID,
			Questions:   t.Questions,
			Answers:     t.Answers,
			UserAnswers: a.Answers,
		})
		return err
	case "generate_notes":
		_, err := h.actions.GenerateNotes(a.CourseID, a.Topic)
		return err
	case "generate_flashcards":
		_, err := h.actions.GenerateFlashcards(a.CourseID)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Action)
	}
}

// broadcast never blocks; a client that cannot keep up is dropped.
func (h *Hub) broadcast(f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- f:
		default:
			slog.Warn("dropping slow remote view client")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *Hub) sendTo(c *client, f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- f:
	default:
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
