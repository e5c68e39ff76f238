package prompts

import (
	"fmt"
	"strings"

	"interview-prep-simulator/internal/config"
	"interview-prep-simulator/internal/storage"
)

// QuestionPrompt carries everything the question instruction embeds.
type QuestionPrompt struct {
	InterviewType   storage.InterviewType
	Role            string
	ExperienceLevel storage.ExperienceLevel
	Domain          string
	Hint            DifficultyHint
}

// QuestionSystemPrompt builds the interviewer persona, one focus line per catalog entry.
func QuestionSystemPrompt(catalog *config.Config) string {
	var builder strings.Builder

	builder.WriteString(`You are an expert technical interviewer with 15+ years of experience.
Your job is to generate thoughtful, relevant interview questions that:
1. Match the candidate's experience level
2. Are specific to the role and domain
3. Test both theoretical knowledge and practical application
4. Are clear and unambiguous
5. Have measurable evaluation criteria

`)

	for _, it := range catalog.InterviewTypes {
		fmt.Fprintf(&builder, "For %s: %s\n", strings.ToLower(it.Title)+"s", it.Focus)
	}

	builder.WriteString("\nGenerate ONE question at a time with clear context and expected topics to cover.")
	return builder.String()
}

// GenerateQuestionPrompt builds the user instruction for one question.
// focusAreas may be nil.
func GenerateQuestionPrompt(p QuestionPrompt, focusAreas []string) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "Generate a %s interview question for a %s-level %s", p.InterviewType, p.ExperienceLevel, p.Role)
	if p.Domain != "" {
		fmt.Fprintf(&builder, " with focus on %s", p.Domain)
	}
	builder.WriteString(".\n\n")

	if directive := p.Hint.Directive(); directive != "" {
		builder.WriteString(directive)
		builder.WriteString("\n\n")
	}

	if len(focusAreas) > 0 {
		fmt.Fprintf(&builder, "Areas worth probing: %s.\n\n", strings.Join(focusAreas, ", "))
	}

	builder.WriteString(`Return ONLY a JSON object, without markdown, with:
- question: The actual question to ask
- context: Brief hint about what to focus on
- difficulty: easy/medium/hard
- expected_topics: List of 3-5 topics that should be covered in a good answer
- time_limit_seconds: Reasonable time to answer (120-300 seconds)

Make it realistic and interview-appropriate.`)

	return builder.String()
}
