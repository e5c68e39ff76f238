package prompts

import (
	"fmt"
	"strings"

	"interview-prep-simulator/internal/storage"
)

// FeedbackSystemPrompt is the coach persona with the scoring rubric anchors.
const FeedbackSystemPrompt = `You are a constructive interview coach providing detailed feedback.

Evaluate answers based on:
1. Clarity - Is the answer well-structured and easy to follow?
2. Technical Accuracy - Are the facts and concepts correct?
3. Completeness - Does it cover all aspects of the question?
4. Communication - Is it professional and articulate?

Provide:
- Specific strengths (what they did well)
- Actionable improvements (how to do better)
- Missing topics (what should have been mentioned)
- A model answer (example of excellence)
- Optional follow-up question (if relevant)

Be encouraging but honest. Scores should reflect actual quality:
- 90-100: Excellent, interview-ready answer
- 75-89: Good answer with minor gaps
- 60-74: Acceptable but needs improvement
- Below 60: Significant gaps, needs work

ALWAYS provide constructive feedback, even for poor answers.`

// EvaluationPrompt carries everything the evaluation instruction embeds.
type EvaluationPrompt struct {
	Question       string
	Answer         string
	ExpectedTopics []string
	InterviewType  storage.InterviewType
}

// GenerateEvaluationPrompt builds the user instruction for scoring one answer.
func GenerateEvaluationPrompt(p EvaluationPrompt) string {
	topics := "none specified"
	if len(p.ExpectedTopics) > 0 {
		topics = strings.Join(p.ExpectedTopics, ", ")
	}

	return fmt.Sprintf(`Evaluate this interview answer:

QUESTION: %s

ANSWER: %s

EXPECTED TOPICS: %s

INTERVIEW TYPE: %s

Return ONLY a JSON object, without markdown, with:
1. feedback_detail: scores (0-100) for clarity, technical_accuracy, completeness, communication
2. overall_score: weighted average of the four scores (0-100)
3. strengths: specific strengths (what was done well)
4. improvements: specific, actionable suggestions
5. missing_topics: expected topics the answer did not cover (if any)
6. suggested_answer: a suggested model answer
7. follow_up_question: optional follow-up question

Be fair but constructive. Recognize good points even in weak answers.`,
		p.Question, p.Answer, topics, p.InterviewType)
}
