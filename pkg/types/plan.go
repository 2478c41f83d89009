// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Subtopic is one research area in a plan, with the reason it was included.
type Subtopic struct {
	Name      string `json:"name" yaml:"name"`
	Rationale string `json:"rationale" yaml:"rationale"`
}

// Plan is the output of the rule-based research planner.
type Plan struct {
	NormalizedGoal   string     `json:"normalized_goal" yaml:"normalized_goal"`
	Subtopics        []Subtopic `json:"subtopics" yaml:"subtopics"`
	SuggestedQueries []string   `json:"suggested_queries" yaml:"suggested_queries"`
	SuggestedSources []string   `json:"suggested_sources" yaml:"suggested_sources"`
	NextActions      []string   `json:"next_actions" yaml:"next_actions"`
}
