// Package export renders test and evaluation screens as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-study/internal/viewstate"
)

const (
	testSheet       = "Test"
	evaluationSheet = "Evaluation"
)

// WriteTest writes the current mock test to w.
func WriteTest(w io.Writer, s viewstate.TestState) error {
	if len(s.Questions) == 0 {
		return fmt.Errorf("export test: no questions")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", testSheet); err != nil {
		return fmt.Errorf("export test: %w", err)
	}

	rows := [][]any{{"Course", s.CourseID}, {}, {"#", "Question", "Type", "Choices", "Answer"}}
	for i, q := range s.Questions {
		rows = append(rows, []any{
			i + 1,
			q,
			at(s.QuestionTypes, i),
			strings.Join(choicesAt(s.Choices, i), "\n"),
			at(s.Answers, i),
		})
	}
	if err := writeRows(f, testSheet, rows); err != nil {
		return fmt.Errorf("export test: %w", err)
	}
	if err := f.SetColWidth(testSheet, "B", "B", 60); err != nil {
		return fmt.Errorf("export test: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export test: %w", err)
	}
	return nil
}

// WriteEvaluation writes the graded attempt to w.
func WriteEvaluation(w io.Writer, s viewstate.EvaluationState) error {
	if len(s.Questions) == 0 {
		return fmt.Errorf("export evaluation: no questions")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", evaluationSheet); err != nil {
		return fmt.Errorf("export evaluation: %w", err)
	}

	rows := [][]any{
		{"Course", s.CourseID},
		{"Score", s.Score},
		{},
		{"#", "Question", "Reference answer", "Your answer", "Correct", "Feedback"},
	}
	for i, q := range s.Questions {
		correct := "no"
		if i < len(s.Correct) && s.Correct[i] {
			correct = "yes"
		}
		rows = append(rows, []any{
			i + 1,
			q,
			at(s.Answers, i),
			at(s.UserAnswers, i),
			correct,
			at(s.Feedback, i),
		})
	}
	if err := writeRows(f, evaluationSheet, rows); err != nil {
		return fmt.Errorf("export evaluation: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("export evaluation: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func at(s []string, i int) string {
	if i < len(s) {
		return s[i]
	}
	return ""
}

func choicesAt(c [][]string, i int) []string {
	if i < len(c) {
		return c[i]
	}
	return nil
}
