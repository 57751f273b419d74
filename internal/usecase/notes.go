package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/study"
	"github.com/p-n-ai/pai-study/internal/timeline"
)

const (
	notesFailureMessage = "Failed to generate lecture notes. Please try again."
	notesSnippetLength  = 160
	noTopicMessage      = "Please enter a topic for the lecture notes."
)

// LectureNotes generates topic notes and records them on the course timeline.
type LectureNotes struct {
	courses  CourseLookup
	gen      NotesGenerator
	timeline TimelineLogger
	out      NotesOutput
}

// NewLectureNotes creates the lecture notes interactor. A nil timeline disables logging.
func NewLectureNotes(courses CourseLookup, gen NotesGenerator, tl TimelineLogger, out NotesOutput) *LectureNotes {
	if tl == nil {
		tl = timeline.NopLogger{}
	}
	return &LectureNotes{courses: courses, gen: gen, timeline: tl, out: out}
}

// GenerateNotes writes notes on topic for courseID. An unknown course or a
// blank topic fails without calling the generator; generator failures are
// reported with a fixed message.
func (n *LectureNotes) GenerateNotes(ctx context.Context, courseID, topic string) error {
	n.out.PresentLoading(TaskNotes)

	c, err := n.courses.FindByID(courseID)
	if err != nil || c == nil {
		slog.Warn("lecture notes for unknown course", "course_id", courseID, "error", err)
		n.out.PresentNotesFailure(fmt.Sprintf("Course not found: %s", courseID))
		return nil
	}
	if strings.TrimSpace(topic) == "" {
		n.out.PresentNotesFailure(noTopicMessage)
		return nil
	}

	var notes study.LectureNotes
	err = protect(func() error {
		var err error
		notes, err = n.gen.GenerateNotes(ctx, *c, topic)
		return err
	})
	if err != nil {
		slog.Warn("lecture notes generation failed", "course_id", courseID, "topic", topic, "error", err)
		n.out.PresentNotesFailure(notesFailureMessage)
		return nil
	}

	n.out.PresentNotes(NotesOutputData{
		CourseID:    c.ID,
		Topic:       topic,
		Content:     notes.Content,
		GeneratedAt: notes.GeneratedAt,
	})

	n.logTimeline(*c, topic, notes)
	return nil
}

func (n *LectureNotes) logTimeline(c course.Course, topic string, notes study.LectureNotes) {
	err := protect(func() error {
		return n.timeline.LogNotesGenerated(
			c.ID,
			uuid.NewString(),
			"Lecture notes: "+topic,
			timeline.Snippet(notes.Content, notesSnippetLength),
			notes.Content,
		)
	})
	if err != nil {
		slog.Warn("timeline logging failed", "course_id", c.ID, "error", err)
	}
}
