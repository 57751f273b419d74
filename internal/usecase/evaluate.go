package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-study/internal/generator"
	"github.com/p-n-ai/pai-study/internal/study"
)

// EvaluationInput is a completed attempt. The three slices are parallel.
type EvaluationInput struct {
	CourseID    string
	Questions   []string
	Answers     []string
	UserAnswers []string
}

// normalize pads unanswered trailing questions with empty answers. Inputs
// that still do not line up cannot be graded.
func (in EvaluationInput) normalize() (EvaluationInput, error) {
	if len(in.Answers) != len(in.Questions) || len(in.UserAnswers) > len(in.Questions) {
		return in, fmt.Errorf("%d questions, %d answers, %d user answers",
			len(in.Questions), len(in.Answers), len(in.UserAnswers))
	}
	user := make([]string, len(in.Questions))
	copy(user, in.UserAnswers)
	in.UserAnswers = user
	return in, nil
}

// Evaluate scores an attempt against the generated reference answers.
type Evaluate struct {
	materials MaterialsProvider
	gen       EvaluationGenerator
	out       EvaluationOutput
}

// NewEvaluate creates the evaluation interactor.
func NewEvaluate(materials MaterialsProvider, gen EvaluationGenerator, out EvaluationOutput) *Evaluate {
	return &Evaluate{materials: materials, gen: gen, out: out}
}

// EvaluateTest grades in. No partial result is ever presented.
func (e *Evaluate) EvaluateTest(ctx context.Context, in EvaluationInput) error {
	e.out.PresentLoading(TaskEvaluation)

	var eval study.EvaluationData
	err := protect(func() error {
		var err error
		if in, err = in.normalize(); err != nil {
			return err
		}
		files, err := e.materials.GetCourseMaterials(in.CourseID)
		if err != nil {
			return err
		}
		eval, err = e.gen.GenerateEvaluation(generator.WithCourseID(ctx, in.CourseID), files, in.UserAnswers, in.Questions, in.Answers)
		if err != nil {
			return err
		}
		return eval.Check()
	})
	if err != nil {
		slog.Warn("evaluation failed", "course_id", in.CourseID, "error", err)
		e.out.PresentEvaluationFailure(fmt.Sprintf("Failed to evaluate test: %v", err))
		return nil
	}

	slog.Info("test evaluated", "course_id", in.CourseID, "score", eval.Score)
	e.out.PresentEvaluation(EvaluationOutputData{CourseID: in.CourseID, Evaluation: eval})
	return nil
}
