package usecase

import "log/slog"

// Timeline shows the recorded study events for a course.
type Timeline struct {
	reader TimelineReader
	out    TimelineOutput
}

// NewTimeline creates the timeline interactor.
func NewTimeline(reader TimelineReader, out TimelineOutput) *Timeline {
	return &Timeline{reader: reader, out: out}
}

// ShowTimeline presents the course's entries, newest first. An empty timeline is not a failure.
func (t *Timeline) ShowTimeline(courseID string) error {
	entries, err := t.reader.Entries(courseID)
	if err != nil {
		slog.Warn("timeline read failed", "course_id", courseID, "error", err)
		t.out.PresentTimelineFailure("Failed to load timeline: " + err.Error())
		return nil
	}

	t.out.PresentTimeline(TimelineOutputData{CourseID: courseID, Entries: entries})
	return nil
}
