// Package timeline records study events (generated notes and similar) per course.
package timeline

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// KindLectureNotes marks an entry produced by lecture-notes generation.
const KindLectureNotes = "lecture_notes"

// Entry is one record on a course timeline.
type Entry struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"course_id"`
	ContentID string    `json:"content_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Snippet   string    `json:"snippet"`
	FullText  string    `json:"full_text"`
	CreatedAt time.Time `json:"created_at"`
}

// Logger appends timeline records. Callers treat it as best-effort.
type Logger interface {
	LogNotesGenerated(courseRef, contentID, title, snippet, fullText string) error
}

// Reader lists timeline records for a course, newest first.
type Reader interface {
	Entries(courseID string) ([]Entry, error)
}

// Snippet shortens text to at most max runes, appending "..." when truncated.
func Snippet(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	cut := max - 3
	if cut < 0 {
		cut = 0
	}
	return strings.TrimSpace(string(runes[:cut])) + "..."
}

func newEntry(courseRef, contentID, title, snippet, fullText string) (Entry, error) {
	if courseRef == "" {
		return Entry{}, fmt.Errorf("course ref is required")
	}
	if contentID == "" {
		return Entry{}, fmt.Errorf("content id is required")
	}
	return Entry{
		ID:        uuid.NewString(),
		CourseID:  courseRef,
		ContentID: contentID,
		Kind:      KindLectureNotes,
		Title:     title,
		Snippet:   snippet,
		FullText:  fullText,
		CreatedAt: time.Now(),
	}, nil
}

// NopLogger ignores all records and lists none.
type NopLogger struct{}

func (NopLogger) LogNotesGenerated(string, string, string, string, string) error {
	return nil
}

func (NopLogger) Entries(string) ([]Entry, error) {
	return []Entry{}, nil
}

// MemoryLogger keeps timeline records in memory.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{
		entries: []Entry{},
	}
}

func (l *MemoryLogger) LogNotesGenerated(courseRef, contentID, title, snippet, fullText string) error {
	entry, err := newEntry(courseRef, contentID, title, snippet, fullText)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return nil
}

func (l *MemoryLogger) Entries(courseID string) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Appends are chronological, so walking backwards yields newest first.
	out := []Entry{}
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].CourseID == courseID {
			out = append(out, l.entries[i])
		}
	}
	return out, nil
}
