package prompts

import "encoding/json"

// Output schema names, used as json_schema names and to route stub responses.
const (
	QuestionSchemaName = "interview_question"
	FeedbackSchemaName = "answer_feedback"
)

// QuestionSchema describes the structured question object.
var QuestionSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "question": {"type": "string"},
    "context": {"type": "string"},
    "difficulty": {"type": "string", "enum": ["easy", "medium", "hard"]},
    "expected_topics": {"type": "array", "items": {"type": "string"}, "minItems": 3, "maxItems": 5},
    "time_limit_seconds": {"type": "integer", "minimum": 120, "maximum": 300}
  },
  "required": ["question", "context", "difficulty", "expected_topics", "time_limit_seconds"],
  "additionalProperties": false
}`)

// FeedbackSchema describes the structured feedback object.
var FeedbackSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "overall_score": {"type": "integer", "minimum": 0, "maximum": 100},
    "feedback_detail": {
      "type": "object",
      "properties": {
        "clarity": {"type": "integer", "minimum": 0, "maximum": 100},
        "technical_accuracy": {"type": "integer", "minimum": 0, "maximum": 100},
        "completeness": {"type": "integer", "minimum": 0, "maximum": 100},
        "communication": {"type": "integer", "minimum": 0, "maximum": 100}
      },
      "required": ["clarity", "technical_accuracy", "completeness", "communication"],
      "additionalProperties": false
    },
    "strengths": {"type": "array", "items": {"type": "string"}},
    "improvements": {"type": "array", "items": {"type": "string"}},
    "missing_topics": {"type": "array", "items": {"type": "string"}},
    "suggested_answer": {"type": "string"},
    "follow_up_question": {"type": ["string", "null"]}
  },
  "required": ["overall_score", "feedback_detail", "strengths", "improvements", "missing_topics", "suggested_answer"],
  "additionalProperties": false
}`)
