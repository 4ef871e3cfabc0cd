package grading

import (
	"fmt"
	"strings"

	"quizmentor/internal/models"
)

// PartialCreditScore is the fixed credit awarded offline for a
// non-empty free-text or fill-in-blank answer. There is no semantic
// comparator available without the LLM, so these types are capped
// below 100 here; only LLM grading can award them full marks.
const PartialCreditScore = 75

const manualReviewFeedback = "This answer requires manual review."

// GradeDeterministically grades a batch of answers against a quiz's
// questions without any external call. Questions are graded in their
// display order; answers referencing unknown question ids are dropped,
// and questions with no submitted answer produce no result.
func GradeDeterministically(questions []models.Question, answers []models.StudentAnswer) []models.PerQuestionResult {
	pairs := pairAnswers(questions, answers)
	results := make([]models.PerQuestionResult, 0, len(pairs))
	for _, pair := range pairs {
		results = append(results, gradeOne(pair.question, pair.answer))
	}
	return results
}

func gradeOne(q models.Question, a models.StudentAnswer) models.PerQuestionResult {
	result := models.PerQuestionResult{
		QuestionID:    q.ID.String(),
		QuestionType:  q.Type,
		StudentAnswer: FormatStudentAnswer(q, a),
	}

	switch q.Type {
	case models.QuestionMultipleChoice, models.QuestionTrueFalse:
		correct, err := NormalizeCorrectAnswer(q.CorrectAnswer, q.Type)
		if err != nil {
			// Creation should have rejected this question; grade it as
			// unanswerable rather than failing the batch.
			result.Feedback = "This question has an invalid stored answer and could not be graded."
			return result
		}
		result.ExpectedAnswer = FormatExpectedAnswer(q, correct)
		if a.SelectedOption != nil && *a.SelectedOption == correct.Choice {
			result.IsCorrect = true
			result.ScorePercentage = 100
			result.Feedback = fmt.Sprintf("Correct. The answer is %s.", result.ExpectedAnswer)
		} else {
			result.Feedback = fmt.Sprintf("Incorrect. The correct answer is %s.", result.ExpectedAnswer)
		}

	case models.QuestionShortAnswer:
		correct, _ := NormalizeCorrectAnswer(q.CorrectAnswer, q.Type)
		result.ExpectedAnswer = FormatExpectedAnswer(q, correct)
		if strings.TrimSpace(a.AnswerText) != "" {
			result.ScorePercentage = PartialCreditScore
			result.Feedback = manualReviewFeedback
			result.PartialCreditDetails = fmt.Sprintf("Awarded %d%% for a substantive answer pending manual review.", PartialCreditScore)
		} else {
			result.Feedback = "No answer provided."
		}

	case models.QuestionFillInBlank:
		correct, _ := NormalizeCorrectAnswer(q.CorrectAnswer, q.Type)
		result.ExpectedAnswer = FormatExpectedAnswer(q, correct)
		if anyNonEmpty(a.FillInAnswers) {
			result.ScorePercentage = PartialCreditScore
			result.Feedback = manualReviewFeedback
			result.PartialCreditDetails = fmt.Sprintf("Awarded %d%% for filled blanks pending manual review.", PartialCreditScore)
		} else {
			result.Feedback = "No answer provided."
		}

	default:
		result.Feedback = fmt.Sprintf("Unknown question type %q.", q.Type)
	}

	return result
}

func anyNonEmpty(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
