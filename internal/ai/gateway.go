// Package ai provides a provider-agnostic completion gateway with fallback routing.
package ai

import "context"

// TaskType names the study artifact a completion is for. Providers and the
// router use it for logging and budget accounting.
type TaskType int

const (
	TaskTestGeneration TaskType = iota
	TaskEvaluation
	TaskLectureNotes
	TaskFlashcards
)

func (t TaskType) String() string {
	switch t {
	case TaskTestGeneration:
		return "test_generation"
	case TaskEvaluation:
		return "evaluation"
	case TaskLectureNotes:
		return "lecture_notes"
	case TaskFlashcards:
		return "flashcards"
	default:
		return "unknown"
	}
}

// Message is one chat turn sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input to an AI completion.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Task        TaskType  `json:"task,omitempty"`
	// JSON asks the provider to constrain its output to a JSON object.
	JSON bool `json:"json,omitempty"`
}

// CompletionResponse is the output from an AI completion.
type CompletionResponse struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// TotalTokens returns the sum of input and output tokens.
func (r CompletionResponse) TotalTokens() int {
	return r.InputTokens + r.OutputTokens
}

// Provider is the interface all AI providers must implement.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	HealthCheck(ctx context.Context) error
}

// Completer is the narrow view of a provider used by generators.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}
