package ai

import "context"

// Profile is the structured view of a resume produced by a language model.
type Profile struct {
	Name       string   `json:"name,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Education  []string `json:"education,omitempty"`
	Experience []string `json:"experience,omitempty"`
}

type ProfileExtractor interface {
	Extract(ctx context.Context, resumeText string) (*Profile, error)
}
