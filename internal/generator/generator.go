// Package generator produces study artifacts from course materials using an AI completer.
package generator

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/p-n-ai/pai-study/internal/ai"
	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/study"
)

var (
	ErrMalformedOutput = errors.New("malformed generator output")
	ErrBudgetExceeded  = errors.New("token budget exceeded")
	ErrNoMaterials     = errors.New("no readable course materials")
)

const (
	defaultQuestions  = 10
	defaultFlashcards = 20
	defaultMaxTokens  = 4096
	defaultCacheTTL   = 24 * time.Hour
	globalBudgetKey   = "global"
)

// MaterialReader extracts text from attached documents.
type MaterialReader interface {
	ReadAll(ctx context.Context, files []course.PDFFile) (string, error)
}

// ArtifactCache stores generated payloads. A miss is (nil, false, nil).
type ArtifactCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config holds dependencies for the generator.
type Config struct {
	Completer ai.Completer
	Reader    MaterialReader
	Cache     ArtifactCache    // optional
	Budget    ai.BudgetChecker // optional
	Model     string
	MaxTokens int           // default 4096
	Questions int           // questions per mock test (default 10)
	CacheTTL  time.Duration // default 24h
	Now       func() time.Time
}

// Generator implements the content generator gateway.
type Generator struct {
	completer ai.Completer
	reader    MaterialReader
	cache     ArtifactCache
	budget    ai.BudgetChecker
	model     string
	maxTokens int
	questions int
	cacheTTL  time.Duration
	now       func() time.Time
}

// New creates a generator.
func New(cfg Config) *Generator {
	g := &Generator{
		completer: cfg.Completer,
		reader:    cfg.Reader,
		cache:     cfg.Cache,
		budget:    cfg.Budget,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		questions: cfg.Questions,
		cacheTTL:  cfg.CacheTTL,
		now:       cfg.Now,
	}
	if g.maxTokens == 0 {
		g.maxTokens = defaultMaxTokens
	}
	if g.questions == 0 {
		g.questions = defaultQuestions
	}
	if g.cacheTTL == 0 {
		g.cacheTTL = defaultCacheTTL
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

type courseKey struct{}

// WithCourseID tags ctx with the course a generation is charged to.
func WithCourseID(ctx context.Context, courseID string) context.Context {
	return context.WithValue(ctx, courseKey{}, courseID)
}

func budgetKey(ctx context.Context) string {
	if id, ok := ctx.Value(courseKey{}).(string); ok && id != "" {
		return id
	}
	return globalBudgetKey
}

type testPayload struct {
	Questions []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Type     string `json:"type"`
	} `json:"questions"`
}

// GenerateTestData writes a mock test from the given materials. Choices are
// left empty; they are derived from the question text by the caller.
func (g *Generator) GenerateTestData(ctx context.Context, materials []course.PDFFile) (study.TestData, error) {
	text, err := g.readMaterials(ctx, materials)
	if err != nil {
		return study.TestData{}, err
	}
	if text == "" {
		return study.TestData{}, ErrNoMaterials
	}

	raw, err := g.cachedJSON(ctx, ai.TaskTestGeneration, buildTestPrompt(text, g.questions), testSchema)
	if err != nil {
		return study.TestData{}, fmt.Errorf("generate test: %w", err)
	}

	var payload testPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return study.TestData{}, fmt.Errorf("generate test: %w: %v", ErrMalformedOutput, err)
	}

	var data study.TestData
	for _, q := range payload.Questions {
		data.Questions = append(data.Questions, strings.TrimSpace(q.Question))
		data.Answers = append(data.Answers, strings.TrimSpace(q.Answer))
		data.QuestionTypes = append(data.QuestionTypes, strings.TrimSpace(q.Type))
	}
	return data, nil
}

type flashcardsPayload struct {
	Flashcards []study.Flashcard `json:"flashcards"`
}

// GenerateFlashcards builds a flashcard deck from already extracted content.
func (g *Generator) GenerateFlashcards(ctx context.Context, courseName, content string) (study.FlashcardSet, error) {
	if strings.TrimSpace(content) == "" {
		return study.FlashcardSet{}, ErrNoMaterials
	}

	raw, err := g.cachedJSON(ctx, ai.TaskFlashcards, buildFlashcardsPrompt(courseName, content, defaultFlashcards), flashcardsSchema)
	if err != nil {
		return study.FlashcardSet{}, fmt.Errorf("generate flashcards: %w", err)
	}

	var payload flashcardsPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return study.FlashcardSet{}, fmt.Errorf("generate flashcards: %w: %v", ErrMalformedOutput, err)
	}
	return study.FlashcardSet{CourseName: courseName, Cards: payload.Flashcards}, nil
}

type evaluationPayload struct {
	Results []struct {
		Correct  bool   `json:"correct"`
		Feedback string `json:"feedback"`
	} `json:"results"`
	Score float64 `json:"score"`
}

// GenerateEvaluation grades an attempt. The returned slices always have the
// length of questions.
func (g *Generator) GenerateEvaluation(ctx context.Context, materials []course.PDFFile, userAnswers, questions, answers []string) (study.EvaluationData, error) {
	if len(answers) != len(questions) || len(userAnswers) != len(questions) {
		return study.EvaluationData{}, fmt.Errorf("evaluate attempt: %d questions, %d answers, %d user answers",
			len(questions), len(answers), len(userAnswers))
	}

	text, err := g.readMaterials(ctx, materials)
	if err != nil {
		return study.EvaluationData{}, err
	}

	content, err := g.complete(ctx, ai.TaskEvaluation, buildEvaluationPrompt(text, questions, answers, userAnswers), true)
	if err != nil {
		return study.EvaluationData{}, fmt.Errorf("evaluate attempt: %w", err)
	}
	raw, err := decodeJSON(content, evaluationSchema)
	if err != nil {
		return study.EvaluationData{}, fmt.Errorf("evaluate attempt: %w", err)
	}

	var payload evaluationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return study.EvaluationData{}, fmt.Errorf("evaluate attempt: %w: %v", ErrMalformedOutput, err)
	}
	if len(payload.Results) != len(questions) {
		return study.EvaluationData{}, fmt.Errorf("evaluate attempt: %w: %d results for %d questions",
			ErrMalformedOutput, len(payload.Results), len(questions))
	}

	out := study.EvaluationData{
		Questions:   append([]string(nil), questions...),
		Answers:     append([]string(nil), answers...),
		UserAnswers: append([]string(nil), userAnswers...),
		Correct:     make([]bool, len(questions)),
		Feedback:    make([]string, len(questions)),
		Score:       clampScore(payload.Score),
	}
	for i, r := range payload.Results {
		out.Correct[i] = r.Correct
		out.Feedback[i] = strings.TrimSpace(r.Feedback)
	}
	return out, nil
}

// GenerateNotes writes lecture notes on topic for c.
func (g *Generator) GenerateNotes(ctx context.Context, c course.Course, topic string) (study.LectureNotes, error) {
	text, err := g.readMaterials(ctx, c.Files)
	if err != nil {
		return study.LectureNotes{}, err
	}

	name := c.Name
	if name == "" {
		name = c.ID
	}
	content, err := g.complete(WithCourseID(ctx, c.ID), ai.TaskLectureNotes, buildNotesPrompt(name, c.Description, topic, text), false)
	if err != nil {
		return study.LectureNotes{}, fmt.Errorf("generate notes: %w", err)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return study.LectureNotes{}, fmt.Errorf("generate notes: %w: empty response", ErrMalformedOutput)
	}

	return study.LectureNotes{
		CourseID:    c.ID,
		Topic:       topic,
		Content:     content,
		GeneratedAt: g.now(),
	}, nil
}

func (g *Generator) readMaterials(ctx context.Context, files []course.PDFFile) (string, error) {
	if len(files) == 0 || g.reader == nil {
		return "", nil
	}
	text, err := g.reader.ReadAll(ctx, files)
	if err != nil {
		return "", fmt.Errorf("read materials: %w", err)
	}
	return text, nil
}

// cachedJSON returns a validated JSON payload, consulting the cache first.
func (g *Generator) cachedJSON(ctx context.Context, task ai.TaskType, prompt string, schema *jsonSchema) ([]byte, error) {
	key := cacheKey(task, g.model, prompt)

	if g.cache != nil {
		cached, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			slog.Warn("artifact cache read failed", "task", task.String(), "error", err)
		} else if ok {
			slog.Debug("artifact cache hit", "task", task.String())
			return cached, nil
		}
	}

	content, err := g.complete(ctx, task, prompt, true)
	if err != nil {
		return nil, err
	}
	raw, err := decodeJSON(content, schema)
	if err != nil {
		return nil, err
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, key, raw, g.cacheTTL); err != nil {
			slog.Warn("artifact cache write failed", "task", task.String(), "error", err)
		}
	}
	return raw, nil
}

func (g *Generator) complete(ctx context.Context, task ai.TaskType, prompt string, jsonMode bool) (string, error) {
	if g.completer == nil {
		return "", errors.New("no AI completer configured")
	}

	scope := budgetKey(ctx)
	if g.budget != nil {
		ok, err := g.budget.Check(scope)
		if err != nil {
			return "", fmt.Errorf("check budget: %w", err)
		}
		if !ok {
			return "", ErrBudgetExceeded
		}
	}

	resp, err := g.completer.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Task:      task,
		JSON:      jsonMode,
	})
	if err != nil {
		return "", err
	}

	slog.Info("generation completed",
		"task", task.String(),
		"provider", resp.Provider,
		"model", resp.Model,
		"tokens", resp.TotalTokens(),
	)

	if g.budget != nil {
		if err := g.budget.Record(scope, resp.TotalTokens()); err != nil {
			slog.Warn("failed to record token usage", "scope", scope, "error", err)
		}
	}
	return resp.Content, nil
}

// cacheKey hashes the task, model and prompt into a stable key.
func cacheKey(task ai.TaskType, model, prompt string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(task.String()))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return "study:" + task.String() + ":" + hex.EncodeToString(h.Sum(nil))
}

func clampScore(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v + 0.5)
	}
}
