package model

import "fmt"

// ProfileName identifies the content type a document was classified as
type ProfileName string

const (
	ProfileJSON  ProfileName = "json"
	ProfileVerse ProfileName = "verso"
	ProfileProse ProfileName = "prosa"
)

// Valid returns true for the three known profile names
func (p ProfileName) Valid() bool {
	switch p {
	case ProfileJSON, ProfileVerse, ProfileProse:
		return true
	}
	return false
}

// ProfileCandidate is a classification decision together with its evidence
type ProfileCandidate struct {
	Profile    ProfileName        `json:"profile_name"`
	Confidence float64            `json:"confidence"`
	Reasons    []string           `json:"reasons"`
	Metrics    map[string]float64 `json:"structural_metrics,omitempty"`
}

// Validate checks the invariants every candidate must hold
func (c ProfileCandidate) Validate() error {
	if !c.Profile.Valid() {
		return fmt.Errorf("invalid profile name %q", c.Profile)
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", c.Confidence)
	}
	if len(c.Reasons) == 0 {
		return fmt.Errorf("candidate %q has no reasons", c.Profile)
	}
	return nil
}

// DetectionReport is the audit record of one classification
type DetectionReport struct {
	FilePath          string             `json:"file_path"`
	DetectedProfile   ProfileName        `json:"detected_profile"`
	Confidence        float64            `json:"confidence"`
	Reasons           []string           `json:"reasons"`
	StructuralMetrics map[string]float64 `json:"structural_metrics"`
	ThresholdsUsed    map[string]float64 `json:"thresholds_used"`
}
