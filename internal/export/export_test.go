package export_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-study/internal/export"
	"github.com/p-n-ai/pai-study/internal/viewstate"
)

func open(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func cell(t *testing.T, f *excelize.File, sheet, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, axis)
	if err != nil {
		t.Fatalf("GetCellValue(%s) error = %v", axis, err)
	}
	return v
}

func TestWriteEvaluation(t *testing.T) {
	var buf bytes.Buffer
	err := export.WriteEvaluation(&buf, viewstate.EvaluationState{
		CourseID:    "math101",
		Questions:   []string{"2+2?", "Define a set."},
		Answers:     []string{"4", "A collection"},
		UserAnswers: []string{"4", "A list"},
		Correct:     []bool{true, false},
		Feedback:    []string{"Right.", "Sets are unordered."},
		Score:       50,
	})
	if err != nil {
		t.Fatalf("WriteEvaluation() error = %v", err)
	}

	f := open(t, &buf)
	tests := map[string]string{
		"B1": "math101",
		"B2": "50",
		"B4": "Question",
		"A5": "1",
		"D6": "A list",
		"E5": "yes",
		"E6": "no",
		"F6": "Sets are unordered.",
	}
	for axis, want := range tests {
		if got := cell(t, f, "Evaluation", axis); got != want {
			t.Errorf("%s = %q, want %q", axis, got, want)
		}
	}
}

func TestWriteTest(t *testing.T) {
	var buf bytes.Buffer
	err := export.WriteTest(&buf, viewstate.TestState{
		CourseID:      "math101",
		Questions:     []string{"2+2?", "Define a set."},
		Answers:       []string{"4", "A collection"},
		QuestionTypes: []string{"Multiple Choice", "Short Answer"},
		Choices:       [][]string{{"1", "2", "4", "3"}, {}},
	})
	if err != nil {
		t.Fatalf("WriteTest() error = %v", err)
	}

	f := open(t, &buf)
	if got := cell(t, f, "Test", "D4"); got != "1\n2\n4\n3" {
		t.Errorf("D4 = %q", got)
	}
	if got := cell(t, f, "Test", "D5"); got != "" {
		t.Errorf("D5 = %q, want empty", got)
	}
	if got := cell(t, f, "Test", "C5"); got != "Short Answer" {
		t.Errorf("C5 = %q", got)
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := export.WriteTest(&buf, viewstate.TestState{}); err == nil {
		t.Error("WriteTest() should fail without questions")
	}
	if err := export.WriteEvaluation(&buf, viewstate.EvaluationState{}); err == nil {
		t.Error("WriteEvaluation() should fail without questions")
	}
}
