package grading

import (
	"fmt"
	"sort"
	"strings"

	"quizmentor/internal/models"
)

// MaxMaterialChars is the character budget for reference material in a
// grading prompt. Material beyond the budget is cut at the tail so the
// question batch that follows is never truncated mid-stream.
const MaxMaterialChars = 15000

// gradingInstructions heads every grading prompt. The response schema
// mirrors models.ValidationResult so the parsed reply drops straight
// into the envelope.
const gradingInstructions = `You are an expert exam grader. Grade the student's answers against the reference material and the expected answers below.

Scoring rules:
- multiple-choice and true-false questions are binary: award 100 if the selected option matches the correct option, otherwise 0.
- short-answer and fill-in-blank questions allow partial credit. Award exactly one of 100, 75, 50, 25 or 0 based on conceptual correctness against the reference material, not exact wording.

Respond with ONLY a JSON object in this exact structure:
{
  "validation_results": [
    {
      "question_id": "id of the question",
      "question_type": "multiple-choice|true-false|short-answer|fill-in-blank",
      "student_answer": "what the student submitted",
      "expected_answer": "the correct answer",
      "is_correct": true,
      "score_percentage": 100,
      "feedback": "one or two sentences explaining the score",
      "partial_credit_details": "why partial credit was given, empty if not applicable"
    }
  ],
  "overall_score": 0,
  "total_questions": 0,
  "correct_answers": 0,
  "grading_summary": "two or three sentences summarizing the performance",
  "validation_confidence": "high|medium|low"
}
`

// gradingGuidance is the fixed per-type guidance embedded next to each
// question in the prompt.
var gradingGuidance = map[models.QuestionType]string{
	models.QuestionMultipleChoice: "Binary: 100 if the selected option index equals the correct index, else 0.",
	models.QuestionTrueFalse:      "Binary: 100 if the selected value matches the correct value, else 0.",
	models.QuestionShortAnswer:    "Partial credit allowed (100/75/50/25/0). Judge conceptual correctness and completeness against the reference material; wording differences do not matter.",
	models.QuestionFillInBlank:    "Partial credit allowed (100/75/50/25/0). Judge each blank against the expected entries; accept equivalent terms from the reference material.",
}

// BuildGradingPrompt assembles the single grading request sent to the
// LLM backend: truncated reference material, then each answered
// question with its type-specific guidance, expected answer and the
// student's submission. Only answers matching a known question are
// included, in question order.
func BuildGradingPrompt(material string, questions []models.Question, answers []models.StudentAnswer) string {
	var b strings.Builder
	b.WriteString(gradingInstructions)

	b.WriteString("\nReference material:\n\"\"\"\n")
	b.WriteString(TruncateMaterial(material))
	b.WriteString("\n\"\"\"\n")

	results := pairAnswers(questions, answers)
	b.WriteString(fmt.Sprintf("\nQuestions and student answers (%d):\n", len(results)))
	for i, pair := range results {
		q, a := pair.question, pair.answer
		b.WriteString(fmt.Sprintf("\nQuestion %d (id: %s, type: %s)\n", i+1, q.ID, q.Type))
		b.WriteString(fmt.Sprintf("Grading guidance: %s\n", gradingGuidance[q.Type]))
		b.WriteString(fmt.Sprintf("Text: %s\n", q.Text))
		for idx, opt := range q.Options {
			b.WriteString(fmt.Sprintf("  Option %d: %s\n", idx, opt))
		}
		if correct, err := NormalizeCorrectAnswer(q.CorrectAnswer, q.Type); err == nil {
			b.WriteString(fmt.Sprintf("Expected answer: %s\n", FormatExpectedAnswer(q, correct)))
		}
		if q.Explanation != "" {
			b.WriteString(fmt.Sprintf("Explanation: %s\n", q.Explanation))
		}
		b.WriteString(fmt.Sprintf("Student answer: %s\n", FormatStudentAnswer(q, a)))
	}

	return b.String()
}

// TruncateMaterial cuts reference material at the tail to fit the
// prompt's character budget.
func TruncateMaterial(material string) string {
	if len(material) <= MaxMaterialChars {
		return material
	}
	return material[:MaxMaterialChars] + "\n[...material truncated...]"
}

type questionAnswerPair struct {
	question models.Question
	answer   models.StudentAnswer
}

// pairAnswers matches answers to questions in display order, dropping
// answers whose question_id is unknown and questions with no answer.
func pairAnswers(questions []models.Question, answers []models.StudentAnswer) []questionAnswerPair {
	byID := make(map[string]models.StudentAnswer, len(answers))
	for _, a := range answers {
		byID[a.QuestionID.String()] = a
	}

	ordered := make([]models.Question, len(questions))
	copy(ordered, questions)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	var pairs []questionAnswerPair
	for _, q := range ordered {
		if a, ok := byID[q.ID.String()]; ok {
			pairs = append(pairs, questionAnswerPair{question: q, answer: a})
		}
	}
	return pairs
}
