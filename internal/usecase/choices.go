package usecase

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"github.com/p-n-ai/pai-study/internal/study"
)

// optionPattern matches "A) text" or "B. text" on its own line.
var optionPattern = regexp.MustCompile(`(?m)^[ \t]*([A-D])[.)][ \t]*([^\r\n]+)\r?$`)

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// BuildChoices derives one choice list per question. Only questions tagged
// multiple choice get options; the rest get an empty list.
func BuildChoices(data study.TestData) [][]string {
	choices := make([][]string, len(data.Questions))
	for i, q := range data.Questions {
		choices[i] = []string{}
		if i < len(data.QuestionTypes) && isMultipleChoice(data.QuestionTypes[i]) {
			choices[i] = ExtractChoices(q)
		}
	}
	return choices
}

// ExtractChoices returns the labelled options in text in order of appearance.
// When nothing matches, as with bare carriage-return line breaks, each line is
// matched on its own.
func ExtractChoices(text string) []string {
	options := matchOptions(text)
	if len(options) > 0 {
		return options
	}

	for _, line := range lineBreak.Split(text, -1) {
		options = append(options, matchOptions(line)...)
	}
	return options
}

func matchOptions(text string) []string {
	out := []string{}
	for _, m := range optionPattern.FindAllStringSubmatch(text, -1) {
		if opt := strings.TrimSpace(m[2]); opt != "" {
			out = append(out, opt)
		}
	}
	return out
}

func isMultipleChoice(tag string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(tag)) == fold.String(study.TypeMultipleChoice)
}
