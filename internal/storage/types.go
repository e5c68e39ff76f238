package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSessionNotFound is returned when a session id is unknown or already swept.
var ErrSessionNotFound = errors.New("session not found")

// InterviewType is the kind of interview a session runs.
type InterviewType string

const (
	InterviewTechnical    InterviewType = "technical"
	InterviewBehavioral   InterviewType = "behavioral"
	InterviewHR           InterviewType = "hr"
	InterviewSystemDesign InterviewType = "system_design"
)

// InterviewTypes lists every supported interview type.
var InterviewTypes = []InterviewType{
	InterviewTechnical,
	InterviewBehavioral,
	InterviewHR,
	InterviewSystemDesign,
}

// ParseInterviewType normalizes s and checks it against the supported types.
func ParseInterviewType(s string) (InterviewType, error) {
	t := InterviewType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range InterviewTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unsupported interview type %q", s)
}

// ExperienceLevel is the candidate's seniority.
type ExperienceLevel string

const (
	LevelEntry        ExperienceLevel = "entry"
	LevelJunior       ExperienceLevel = "junior"
	LevelIntermediate ExperienceLevel = "intermediate"
	LevelSenior       ExperienceLevel = "senior"
)

var experienceLevels = []ExperienceLevel{LevelEntry, LevelJunior, LevelIntermediate, LevelSenior}

// ParseExperienceLevel normalizes s and checks it against the supported levels.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	l := ExperienceLevel(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range experienceLevels {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported experience level %q", s)
}

// Turn is one answered question recorded against a session.
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is the mutable state of one interview.
// QuestionsAsked == len(Scores) == len(History) at all times.
type Session struct {
	ID              string          `json:"session_id"`
	InterviewType   InterviewType   `json:"interview_type"`
	Role            string          `json:"role"`
	ExperienceLevel ExperienceLevel `json:"experience_level"`
	CreatedAt       time.Time       `json:"created_at"`
	QuestionsAsked  int             `json:"questions_asked"`
	TotalScore      int             `json:"total_score"`
	Scores          []int           `json:"scores"`
	History         []Turn          `json:"history"`
}

// LastScore returns the most recently recorded score, if any.
func (s *Session) LastScore() (int, bool) {
	if len(s.Scores) == 0 {
		return 0, false
	}
	return s.Scores[len(s.Scores)-1], true
}

func (s *Session) clone() *Session {
	c := *s
	c.Scores = append([]int(nil), s.Scores...)
	c.History = append([]Turn(nil), s.History...)
	if c.Scores == nil {
		c.Scores = []int{}
	}
	if c.History == nil {
		c.History = []Turn{}
	}
	return &c
}

// Stats is the progress summary of a session.
type Stats struct {
	SessionID      string    `json:"session_id"`
	QuestionsAsked int       `json:"questions_asked"`
	AverageScore   float64   `json:"average_score"`
	Scores         []int     `json:"scores"`
	CreatedAt      time.Time `json:"created_at"`
}

// StatsOf computes the stats of s. The average is 0 when nothing was recorded
// and is rounded to 2 decimals otherwise.
func StatsOf(s *Session) *Stats {
	var avg float64
	if s.QuestionsAsked > 0 {
		avg = roundTo2(float64(s.TotalScore) / float64(s.QuestionsAsked))
	}
	scores := append([]int{}, s.Scores...)
	return &Stats{
		SessionID:      s.ID,
		QuestionsAsked: s.QuestionsAsked,
		AverageScore:   avg,
		Scores:         scores,
		CreatedAt:      s.CreatedAt,
	}
}
