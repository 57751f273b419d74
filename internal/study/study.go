// Package study defines the generated study artifacts: mock tests, evaluations,
// lecture notes and flashcards.
package study

import (
	"fmt"
	"time"
)

// Question type tags as produced by the generator.
const (
	TypeMultipleChoice = "Multiple Choice"
	TypeShortAnswer    = "Short Answer"
	TypeTrueFalse      = "True/False"
)

// TestData is a generated mock test. Questions, Answers and QuestionTypes are
// parallel; Choices is filled in after generation and is parallel too.
type TestData struct {
	Questions     []string   `json:"questions"`
	Answers       []string   `json:"answers"`
	QuestionTypes []string   `json:"question_types"`
	Choices       [][]string `json:"choices,omitempty"`
}

// Len returns the number of questions.
func (t TestData) Len() int {
	return len(t.Questions)
}

// Check reports whether the parallel sequences line up. Choices is only
// checked once it has been populated.
func (t TestData) Check() error {
	n := len(t.Questions)
	if len(t.Answers) != n || len(t.QuestionTypes) != n {
		return fmt.Errorf("test data length mismatch: %d questions, %d answers, %d types",
			n, len(t.Answers), len(t.QuestionTypes))
	}
	if t.Choices != nil && len(t.Choices) != n {
		return fmt.Errorf("test data length mismatch: %d questions, %d choice lists", n, len(t.Choices))
	}
	return nil
}

// EvaluationData is the scored result of one attempt. All slices share the
// length of the submitted questions.
type EvaluationData struct {
	Questions   []string `json:"questions"`
	Answers     []string `json:"answers"`
	UserAnswers []string `json:"user_answers"`
	Correct     []bool   `json:"correct"`
	Feedback    []string `json:"feedback"`
	Score       int      `json:"score"`
}

// Check reports whether the parallel sequences line up.
func (e EvaluationData) Check() error {
	n := len(e.Questions)
	if len(e.Answers) != n || len(e.UserAnswers) != n || len(e.Correct) != n || len(e.Feedback) != n {
		return fmt.Errorf("evaluation length mismatch: questions=%d answers=%d user=%d correct=%d feedback=%d",
			n, len(e.Answers), len(e.UserAnswers), len(e.Correct), len(e.Feedback))
	}
	return nil
}

// LectureNotes are generated notes for one topic of a course.
type LectureNotes struct {
	CourseID    string    `json:"course_id"`
	Topic       string    `json:"topic"`
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Flashcard is a single prompt/answer pair.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardSet is a generated deck for a course.
type FlashcardSet struct {
	CourseName string      `json:"course_name"`
	Cards      []Flashcard `json:"cards"`
}
