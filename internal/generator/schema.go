package generator

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type jsonSchema = gojsonschema.Schema

var (
	testSchema = mustSchema(`{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question", "answer", "type"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "answer": {"type": "string"},
          "type": {"type": "string"}
        }
      }
    }
  }
}`)

	flashcardsSchema = mustSchema(`{
  "type": "object",
  "required": ["flashcards"],
  "properties": {
    "flashcards": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["front", "back"],
        "properties": {
          "front": {"type": "string", "minLength": 1},
          "back": {"type": "string"}
        }
      }
    }
  }
}`)

	evaluationSchema = mustSchema(`{
  "type": "object",
  "required": ["results", "score"],
  "properties": {
    "results": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["correct"],
        "properties": {
          "correct": {"type": "boolean"},
          "feedback": {"type": "string"}
        }
      }
    },
    "score": {"type": "number"}
  }
}`)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return s
}

// decodeJSON strips Markdown fences and checks content against schema.
func decodeJSON(content string, schema *gojsonschema.Schema) ([]byte, error) {
	payload := stripFences(content)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedOutput, strings.Join(msgs, "; "))
	}
	return []byte(payload), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
