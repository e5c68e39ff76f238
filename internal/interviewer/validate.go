package interviewer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidOutput marks oracle output that decodes but breaks the expected shape.
var ErrInvalidOutput = errors.New("invalid oracle output")

type rawQuestion struct {
	Question         string   `json:"question"`
	Context          string   `json:"context"`
	Difficulty       string   `json:"difficulty"`
	ExpectedTopics   []string `json:"expected_topics"`
	TimeLimitSeconds *float64 `json:"time_limit_seconds"`
}

// parseQuestion decodes and normalizes a question. The session id is left empty.
func parseQuestion(raw string) (Question, error) {
	var rq rawQuestion
	if err := json.Unmarshal([]byte(raw), &rq); err != nil {
		return Question{}, fmt.Errorf("decode question: %w", err)
	}

	text := strings.TrimSpace(rq.Question)
	if text == "" {
		return Question{}, fmt.Errorf("%w: empty question", ErrInvalidOutput)
	}

	difficulty := Difficulty(strings.ToLower(strings.TrimSpace(rq.Difficulty)))
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return Question{}, fmt.Errorf("%w: difficulty %q", ErrInvalidOutput, rq.Difficulty)
	}

	topics := cleanList(rq.ExpectedTopics)
	if len(topics) < MinExpectedTopics {
		return Question{}, fmt.Errorf("%w: %d expected topics", ErrInvalidOutput, len(topics))
	}
	if len(topics) > MaxExpectedTopics {
		topics = topics[:MaxExpectedTopics]
	}

	if rq.TimeLimitSeconds == nil {
		return Question{}, fmt.Errorf("%w: missing time limit", ErrInvalidOutput)
	}
	limit := int(math.Round(*rq.TimeLimitSeconds))
	limit = min(max(limit, MinTimeLimit), MaxTimeLimit)

	return Question{
		Question:         text,
		Context:          strings.TrimSpace(rq.Context),
		Difficulty:       difficulty,
		ExpectedTopics:   topics,
		TimeLimitSeconds: limit,
	}, nil
}

type rawFeedback struct {
	OverallScore   *float64 `json:"overall_score"`
	FeedbackDetail *struct {
		Clarity           *float64 `json:"clarity"`
		TechnicalAccuracy *float64 `json:"technical_accuracy"`
		Completeness      *float64 `json:"completeness"`
		Communication     *float64 `json:"communication"`
	} `json:"feedback_detail"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	MissingTopics    []string `json:"missing_topics"`
	SuggestedAnswer  string   `json:"suggested_answer"`
	FollowUpQuestion *string  `json:"follow_up_question"`
}

// parseFeedback decodes and checks a feedback object. A missing overall score
// is derived as the rounded mean of the sub-scores.
func parseFeedback(raw string) (Feedback, error) {
	var rf rawFeedback
	if err := json.Unmarshal([]byte(raw), &rf); err != nil {
		return Feedback{}, fmt.Errorf("decode feedback: %w", err)
	}
	if rf.FeedbackDetail == nil {
		return Feedback{}, fmt.Errorf("%w: missing feedback_detail", ErrInvalidOutput)
	}

	var detail FeedbackDetail
	subScores := []struct {
		name string
		in   *float64
		out  *int
	}{
		{"clarity", rf.FeedbackDetail.Clarity, &detail.Clarity},
		{"technical_accuracy", rf.FeedbackDetail.TechnicalAccuracy, &detail.TechnicalAccuracy},
		{"completeness", rf.FeedbackDetail.Completeness, &detail.Completeness},
		{"communication", rf.FeedbackDetail.Communication, &detail.Communication},
	}
	for _, s := range subScores {
		score, err := checkScore(s.name, s.in)
		if err != nil {
			return Feedback{}, err
		}
		*s.out = score
	}

	overall := int(math.Round(float64(detail.Clarity+detail.TechnicalAccuracy+detail.Completeness+detail.Communication) / 4))
	if rf.OverallScore != nil {
		score, err := checkScore("overall_score", rf.OverallScore)
		if err != nil {
			return Feedback{}, err
		}
		overall = score
	}

	var followUp *string
	if rf.FollowUpQuestion != nil {
		if q := strings.TrimSpace(*rf.FollowUpQuestion); q != "" {
			followUp = &q
		}
	}

	return Feedback{
		OverallScore:     overall,
		FeedbackDetail:   detail,
		Strengths:        cleanList(rf.Strengths),
		Improvements:     cleanList(rf.Improvements),
		MissingTopics:    cleanList(rf.MissingTopics),
		SuggestedAnswer:  strings.TrimSpace(rf.SuggestedAnswer),
		FollowUpQuestion: followUp,
	}, nil
}

func checkScore(name string, v *float64) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: missing %s", ErrInvalidOutput, name)
	}
	if *v < 0 || *v > 100 {
		return 0, fmt.Errorf("%w: %s %v out of range", ErrInvalidOutput, name, *v)
	}
	return int(math.Round(*v)), nil
}

// cleanList trims items and drops empty ones. The result is never nil.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
