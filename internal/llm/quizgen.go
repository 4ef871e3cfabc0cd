package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quizmentor/internal/grading"
)

// quizPrompt is the instruction block for quiz generation. The
// material and constraints are appended by GenerateQuiz.
const quizPrompt = `You are an educational AI that generates challenging, accurate, pedagogically-sound quizzes from course material.

Generate a quiz based on the content below. Follow these requirements exactly:

1. Create a descriptive title that reflects the main subject matter of the material.
2. Cover all main topics; do not ask about anything absent from the material.
3. Use a mix of question types: multiple-choice, true-false, short-answer and fill-in-blank.
4. Multiple-choice questions have exactly 4 options with exactly one correct answer, given as the 0-based option index. Make distractors plausible.
5. True-false questions use correct_answer 0 for true and 1 for false.
6. Short-answer questions give the expected answer as a string; fill-in-blank questions give an ordered list of strings, one per blank (mark blanks in the text with ____).
7. Every question includes a brief explanation justifying the correct answer.

Format your response as a JSON object with this structure:
{
  "title": "Quiz title",
  "questions": [
    {"text": "Question?", "type": "multiple-choice", "options": ["A", "B", "C", "D"], "correct_answer": 1, "explanation": "Why B is correct."},
    {"text": "Statement.", "type": "true-false", "correct_answer": 0, "explanation": "Why it is true."},
    {"text": "Question?", "type": "short-answer", "correct_answer": "expected answer", "explanation": "Key points."},
    {"text": "The ____ pumps blood.", "type": "fill-in-blank", "correct_answer": ["heart"], "explanation": "Basic anatomy."}
  ]
}
`

// GeneratedQuiz is the structured quiz-generation response.
type GeneratedQuiz struct {
	Title     string              `json:"title"`
	Questions []GeneratedQuestion `json:"questions"`
}

// GeneratedQuestion is one generated question. CorrectAnswer stays raw
// JSON because its shape depends on the question type; callers
// normalize it through grading.NormalizeCorrectAnswer.
type GeneratedQuestion struct {
	Text          string          `json:"text"`
	Type          string          `json:"type"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correct_answer"`
	Explanation   string          `json:"explanation"`
}

// CorrectAnswerText renders the raw correct_answer as the text form
// the answer normalizer accepts: JSON strings are unquoted, numbers
// and arrays pass through verbatim.
func (q GeneratedQuestion) CorrectAnswerText() string {
	var s string
	if err := json.Unmarshal(q.CorrectAnswer, &s); err == nil {
		return s
	}
	return string(q.CorrectAnswer)
}

// generateQuizAttempts is how many times a generation call is retried
// before giving up. Quiz generation is interactive but not
// latency-critical, so a couple of retries beat surfacing a flaky
// backend to the user.
const generateQuizAttempts = 3

// GenerateQuiz asks the backend for a quiz over the given material.
func (c *Client) GenerateQuiz(ctx context.Context, material, difficulty string, questionCount int) (*GeneratedQuiz, error) {
	prompt := fmt.Sprintf("%s\nDifficulty: %s. Generate approximately %d questions.\n\nContent:\n\"\"\"\n%s\n\"\"\"\n",
		quizPrompt, difficulty, questionCount, grading.TruncateMaterial(material))

	var lastErr error
	for attempt := 0; attempt < generateQuizAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(2 * time.Second)
		}

		raw, err := c.Generate(ctx, prompt)
		if err != nil {
			lastErr = fmt.Errorf("generation call failed (attempt %d): %w", attempt+1, err)
			continue
		}

		span, ok := grading.ExtractJSONObject(raw)
		if !ok {
			lastErr = fmt.Errorf("no JSON object in generation response (attempt %d)", attempt+1)
			continue
		}

		var quiz GeneratedQuiz
		if err := json.Unmarshal([]byte(span), &quiz); err != nil {
			lastErr = fmt.Errorf("failed to parse generation response (attempt %d): %w", attempt+1, err)
			continue
		}
		if len(quiz.Questions) == 0 {
			lastErr = fmt.Errorf("generation response contained no questions (attempt %d)", attempt+1)
			continue
		}
		return &quiz, nil
	}

	return nil, fmt.Errorf("failed to generate quiz after %d attempts: %w", generateQuizAttempts, lastErr)
}
