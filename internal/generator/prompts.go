package generator

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a study assistant that turns course materials into study aids.
Stay strictly within the supplied materials. If they do not cover something, say so instead of inventing facts.`

const testPrompt = `Write a mock test of %d questions from the course materials below.
Mix the question types "Multiple Choice", "Short Answer" and "True/False".
For a multiple choice question put each option on its own line inside the question text,
labelled "A)", "B)", "C)" and "D)", and give the correct option text as the answer.

Reply with a JSON object only:
{"questions":[{"question":"...","answer":"...","type":"Multiple Choice"}]}

COURSE MATERIALS:
%s`

const flashcardsPrompt = `Create up to %d flashcards for the course "%s" from the content below.
Each card has a short prompt on the front and a precise answer on the back.

Reply with a JSON object only:
{"flashcards":[{"front":"...","back":"..."}]}

CONTENT:
%s`

const evaluationPrompt = `Grade a student's mock test attempt using the course materials as the reference.
Accept answers that are equivalent in meaning to the reference answer.
Give one result per question, in order, with brief feedback, and an overall score from 0 to 100.

Reply with a JSON object only:
{"results":[{"correct":true,"feedback":"..."}],"score":0}

ATTEMPT:
%s
COURSE MATERIALS:
%s`

const notesPrompt = `Write lecture notes on the topic "%s" for the course "%s".
Use Markdown headings, short paragraphs and bullet points. End with a short summary.
%s
COURSE MATERIALS:
%s`

func buildTestPrompt(materials string, questions int) string {
	return fmt.Sprintf(testPrompt, questions, materials)
}

func buildFlashcardsPrompt(courseName, content string, cards int) string {
	return fmt.Sprintf(flashcardsPrompt, cards, courseName, content)
}

func buildEvaluationPrompt(materials string, questions, answers, userAnswers []string) string {
	var sb strings.Builder
	for i := range questions {
		fmt.Fprintf(&sb, "%d. Question: %s\n   Reference answer: %s\n   Student answer: %s\n",
			i+1, questions[i], answers[i], userAnswers[i])
	}
	return fmt.Sprintf(evaluationPrompt, sb.String(), materials)
}

func buildNotesPrompt(courseName, description, topic, materials string) string {
	about := ""
	if description != "" {
		about = "Course description: " + description + "\n"
	}
	if materials == "" {
		materials = "(no materials attached; rely on standard introductory coverage of the topic)"
	}
	return fmt.Sprintf(notesPrompt, topic, courseName, about, materials)
}
