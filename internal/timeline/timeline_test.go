package timeline_test

import (
	"strings"
	"testing"

	"github.com/p-n-ai/pai-study/internal/timeline"
)

func TestMemoryLogger_LogNotesGenerated(t *testing.T) {
	logger := timeline.NewMemoryLogger()

	err := logger.LogNotesGenerated("cs101", "content-1", "Lecture notes: Graphs", "Graphs are...", "Graphs are everywhere.")
	if err != nil {
		t.Fatalf("LogNotesGenerated() error = %v", err)
	}

	entries, err := logger.Entries("cs101")
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Kind != timeline.KindLectureNotes {
		t.Errorf("Kind = %q, want %q", e.Kind, timeline.KindLectureNotes)
	}
	if e.FullText != "Graphs are everywhere." {
		t.Errorf("FullText = %q", e.FullText)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("ID and CreatedAt should be set")
	}
}

func TestMemoryLogger_RequiresRefs(t *testing.T) {
	logger := timeline.NewMemoryLogger()

	if err := logger.LogNotesGenerated("", "content-1", "t", "s", "f"); err == nil {
		t.Error("expected error for empty course ref")
	}
	if err := logger.LogNotesGenerated("cs101", "", "t", "s", "f"); err == nil {
		t.Error("expected error for empty content id")
	}
}

func TestMemoryLogger_EntriesNewestFirstPerCourse(t *testing.T) {
	logger := timeline.NewMemoryLogger()
	_ = logger.LogNotesGenerated("cs101", "1", "first", "", "")
	_ = logger.LogNotesGenerated("bio", "2", "other course", "", "")
	_ = logger.LogNotesGenerated("cs101", "3", "second", "", "")

	entries, _ := logger.Entries("cs101")
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Title != "second" || entries[1].Title != "first" {
		t.Errorf("order = %q, %q; want second, first", entries[0].Title, entries[1].Title)
	}
}

func TestPostgresLogger_NilPool(t *testing.T) {
	logger := timeline.NewPostgresLogger(nil)

	if err := logger.LogNotesGenerated("cs101", "c", "t", "s", "f"); err == nil {
		t.Fatal("expected error for nil pool")
	}
	if _, err := logger.Entries("cs101"); err == nil {
		t.Fatal("expected error for nil pool")
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"short", "hello world", 20, "hello world"},
		{"collapses whitespace", "hello\n\n  world", 20, "hello world"},
		{"truncates", "abcdefghij", 8, "abcde..."},
		{"no limit", "abc", 0, "abc"},
		{"multibyte", "ééééééééé", 6, "ééé..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timeline.Snippet(tt.text, tt.max)
			if got != tt.want {
				t.Errorf("Snippet() = %q, want %q", got, tt.want)
			}
			if tt.max > 0 && len([]rune(got)) > tt.max {
				t.Errorf("Snippet() length %d exceeds %d", len([]rune(got)), tt.max)
			}
		})
	}
	if got := timeline.Snippet(strings.Repeat("x", 500), 160); len(got) != 160 {
		t.Errorf("len(Snippet(500x, 160)) = %d, want 160", len(got))
	}
}
