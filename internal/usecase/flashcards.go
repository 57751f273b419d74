package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/pai-study/internal/course"
	"github.com/p-n-ai/pai-study/internal/generator"
	"github.com/p-n-ai/pai-study/internal/study"
)

// Flashcards builds a flashcard deck from a course's materials.
type Flashcards struct {
	courses   CourseLookup
	materials MaterialsProvider
	reader    MaterialReader
	gen       FlashcardsGenerator
	out       FlashcardsOutput
}

// NewFlashcards creates the flashcards interactor.
func NewFlashcards(courses CourseLookup, materials MaterialsProvider, reader MaterialReader, gen FlashcardsGenerator, out FlashcardsOutput) *Flashcards {
	return &Flashcards{courses: courses, materials: materials, reader: reader, gen: gen, out: out}
}

// GenerateFlashcards creates a deck for courseID.
func (f *Flashcards) GenerateFlashcards(ctx context.Context, courseID string) error {
	f.out.PresentLoading(TaskFlashcards)

	c, err := f.courses.FindByID(courseID)
	if err != nil || c == nil {
		if err != nil && !errors.Is(err, course.ErrNotFound) {
			slog.Warn("flashcards course lookup failed", "course_id", courseID, "error", err)
		}
		f.out.PresentFlashcardsFailure(fmt.Sprintf("Course not found: %s", courseID))
		return nil
	}

	name := c.Name
	if name == "" {
		name = c.ID
	}

	var set study.FlashcardSet
	err = protect(func() error {
		files, err := f.materials.GetCourseMaterials(courseID)
		if err != nil {
			return err
		}
		content, err := f.reader.ReadAll(ctx, files)
		if err != nil {
			return err
		}
		set, err = f.gen.GenerateFlashcards(generator.WithCourseID(ctx, courseID), name, content)
		return err
	})
	if err != nil {
		slog.Warn("flashcards generation failed", "course_id", courseID, "error", err)
		f.out.PresentFlashcardsFailure(fmt.Sprintf("Failed to generate flashcards: %v", err))
		return nil
	}

	slog.Info("flashcards generated", "course_id", courseID, "cards", len(set.Cards))
	f.out.PresentFlashcards(FlashcardsOutputData{
		CourseID:   courseID,
		CourseName: set.CourseName,
		Cards:      set.Cards,
	})
	return nil
}
