package study

import "testing"

func TestTestData_Check(t *testing.T) {
	tests := []struct {
		name    string
		data    TestData
		wantErr bool
	}{
		{"empty", TestData{}, false},
		{"aligned", TestData{Questions: []string{"q"}, Answers: []string{"a"}, QuestionTypes: []string{TypeShortAnswer}}, false},
		{"missing answer", TestData{Questions: []string{"q", "r"}, Answers: []string{"a"}, QuestionTypes: []string{"x", "y"}}, true},
		{"choices short", TestData{
			Questions:     []string{"q", "r"},
			Answers:       []string{"a", "b"},
			QuestionTypes: []string{"x", "y"},
			Choices:       [][]string{{}},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.data.Check(); (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEvaluationData_Check(t *testing.T) {
	ok := EvaluationData{
		Questions:   []string{"q"},
		Answers:     []string{"a"},
		UserAnswers: []string{"a"},
		Correct:     []bool{true},
		Feedback:    []string{"good"},
		Score:       100,
	}
	if err := ok.Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}

	bad := ok
	bad.Feedback = nil
	if err := bad.Check(); err == nil {
		t.Error("Check() should fail when feedback is missing")
	}
}
