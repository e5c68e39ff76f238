package interviewer

import "interview-prep-simulator/internal/storage"

// Difficulty is the tier of a generated question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question bounds.
const (
	MinExpectedTopics = 3
	MaxExpectedTopics = 5
	MinTimeLimit      = 120
	MaxTimeLimit      = 300
)

// Question is one generated interview question.
type Question struct {
	SessionID        string     `json:"session_id"`
	Question         string     `json:"question"`
	Context          string     `json:"context"`
	Difficulty       Difficulty `json:"difficulty"`
	ExpectedTopics   []string   `json:"expected_topics"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`
}

// FeedbackDetail holds the four rubric sub-scores, each 0-100.
type FeedbackDetail struct {
	Clarity           int `json:"clarity"`
	TechnicalAccuracy int `json:"technical_accuracy"`
	Completeness      int `json:"completeness"`
	Communication     int `json:"communication"`
}

// Feedback is the evaluation of one answer.
type Feedback struct {
	OverallScore     int            `json:"overall_score"`
	FeedbackDetail   FeedbackDetail `json:"feedback_detail"`
	Strengths        []string       `json:"strengths"`
	Improvements     []string       `json:"improvements"`
	MissingTopics    []string       `json:"missing_topics"`
	SuggestedAnswer  string         `json:"suggested_answer"`
	FollowUpQuestion *string        `json:"follow_up_question"`
}

// QuestionRequest is the input of GenerateQuestion.
type QuestionRequest struct {
	SessionID       string
	InterviewType   storage.InterviewType
	Role            string
	ExperienceLevel storage.ExperienceLevel
	Domain          string
	PreviousScore   *int
}

// EvaluationRequest is the input of EvaluateAnswer.
type EvaluationRequest struct {
	Question       string
	Answer         string
	ExpectedTopics []string
	InterviewType  storage.InterviewType
}
