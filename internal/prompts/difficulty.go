package prompts

// DifficultyHint steers the difficulty of the next question from the previous score.
type DifficultyHint int

const (
	HintNone DifficultyHint = iota
	HintIncrease
	HintDecrease
)

// Score thresholds: >= IncreaseThreshold raises difficulty, < DecreaseThreshold lowers it.
const (
	IncreaseThreshold = 85
	DecreaseThreshold = 60
)

// HintFor maps the previous turn's score to a hint. A nil score means the
// session has no previous question.
func HintFor(previous *int) DifficultyHint {
	if previous == nil {
		return HintNone
	}
	switch score := *previous; {
	case score >= IncreaseThreshold:
		return HintIncrease
	case score < DecreaseThreshold:
		return HintDecrease
	default:
		return HintNone
	}
}

func (h DifficultyHint) String() string {
	switch h {
	case HintIncrease:
		return "increase"
	case HintDecrease:
		return "decrease"
	default:
		return "none"
	}
}

// Directive is the sentence embedded into the question prompt. Empty for HintNone.
func (h DifficultyHint) Directive() string {
	switch h {
	case HintIncrease:
		return "The candidate is doing well. Increase difficulty slightly."
	case HintDecrease:
		return "The candidate is struggling. Ask a more fundamental question."
	default:
		return ""
	}
}
