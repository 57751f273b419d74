package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-study/internal/generator"
	"github.com/p-n-ai/pai-study/internal/study"
)

// MockTest generates a test from a course's materials.
type MockTest struct {
	materials MaterialsProvider
	gen       TestGenerator
	out       MockTestOutput
}

// NewMockTest creates the mock test interactor.
func NewMockTest(materials MaterialsProvider, gen TestGenerator, out MockTestOutput) *MockTest {
	return &MockTest{materials: materials, gen: gen, out: out}
}

// GenerateMockTest builds a test for courseID. Loading is signalled exactly
// once before the result or the failure.
func (m *MockTest) GenerateMockTest(ctx context.Context, courseID string) error {
	m.out.PresentLoading(TaskMockTest)

	var data study.TestData
	err := protect(func() error {
		files, err := m.materials.GetCourseMaterials(courseID)
		if err != nil {
			return err
		}
		data, err = m.gen.GenerateTestData(generator.WithCourseID(ctx, courseID), files)
		if err != nil {
			return err
		}
		data.Choices = BuildChoices(data)
		return data.Check()
	})
	if err != nil {
		slog.Warn("mock test generation failed", "course_id", courseID, "error", err)
		m.out.PresentTestFailure(fmt.Sprintf("Failed to generate mock test: %v", err))
		return nil
	}

	slog.Info("mock test generated", "course_id", courseID, "questions", data.Len())
	m.out.PresentTest(TestOutputData{
		CourseID:      courseID,
		Questions:     data.Questions,
		Answers:       data.Answers,
		QuestionTypes: data.QuestionTypes,
		Choices:       data.Choices,
	})
	return nil
}
