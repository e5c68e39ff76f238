package config

import "interview-prep-simulator/internal/storage"

// Config is the interview catalog loaded from YAML.
type Config struct {
	InterviewTypes []InterviewTypeConfig `yaml:"interview_types"`
}

// InterviewTypeConfig describes how questions of one interview type are framed.
type InterviewTypeConfig struct {
	Name       string   `yaml:"name"`
	Title      string   `yaml:"title"`
	Focus      string   `yaml:"focus"`
	FocusAreas []string `yaml:"focus_areas"`
}

// Lookup returns the catalog entry for t.
func (c *Config) Lookup(t storage.InterviewType) (InterviewTypeConfig, bool) {
	for _, it := range c.InterviewTypes {
		if it.Name == string(t) {
			return it, true
		}
	}
	return InterviewTypeConfig{}, false
}

// DefaultConfig is the built-in catalog used when no YAML file is present.
func DefaultConfig() *Config {
	return &Config{
		InterviewTypes: []InterviewTypeConfig{
			{
				Name:       string(storage.InterviewTechnical),
				Title:      "Technical interview",
				Focus:      "Focus on algorithms, system design, coding, problem-solving",
				FocusAreas: []string{"algorithms", "data structures", "coding", "problem-solving"},
			},
			{
				Name:       string(storage.InterviewBehavioral),
				Title:      "Behavioral interview",
				Focus:      "Focus on past experiences, teamwork, conflict resolution",
				FocusAreas: []string{"past experiences", "teamwork", "conflict resolution", "ownership"},
			},
			{
				Name:       string(storage.InterviewHR),
				Title:      "HR interview",
				Focus:      "Focus on career goals, company fit, motivations",
				FocusAreas: []string{"career goals", "company fit", "motivation"},
			},
			{
				Name:       string(storage.InterviewSystemDesign),
				Title:      "System design interview",
				Focus:      "Focus on architecture, scalability, trade-offs, reliability",
				FocusAreas: []string{"requirements", "architecture", "scalability", "trade-offs"},
			},
		},
	}
}
