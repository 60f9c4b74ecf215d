// Package model defines the core orchestration data types.
package model

import (
	"strings"
	"time"
)

// PrimaryIdentityID is the well-known id of the process's current identity.
const PrimaryIdentityID = "PRIMARY"

// Theme is an opaque visual tag carried on the identity.
type Theme string

const (
	ThemeSteel     Theme = "STEEL"
	ThemeTitanium  Theme = "TITANIUM"
	ThemeBrutalist Theme = "BRUTALIST"
	ThemeLight     Theme = "LIGHT"
)

// ValidThemes are the allowed theme tags.
var ValidThemes = map[Theme]bool{
	ThemeSteel:     true,
	ThemeTitanium:  true,
	ThemeBrutalist: true,
	ThemeLight:     true,
}

// CoreTraits hold the persona's tone and ordered rule lists.
type CoreTraits struct {
	Tone        string   `json:"tone" yaml:"tone"`
	Philosophy  []string `json:"philosophy" yaml:"philosophy"`
	Constraints []string `json:"constraints" yaml:"constraints"`
}

// CognitiveProfile is the numeric tuning profile. All values are in [0,1].
type CognitiveProfile struct {
	Verbosity     float64 `json:"verbosity" yaml:"verbosity"`
	Creativity    float64 `json:"creativity" yaml:"creativity"`
	RiskTolerance float64 `json:"riskTolerance" yaml:"riskTolerance"`
}

// VoicePreferences select the live bridge voice and model.
type VoicePreferences struct {
	PreferredVoiceName string `json:"preferredVoiceName" yaml:"preferredVoiceName"`
	ModelID            string `json:"modelId" yaml:"modelId"`
}

// Identity is the continuity anchor that drives directive compilation.
type Identity struct {
	ID               string           `json:"id" yaml:"id"`
	DisplayName      string           `json:"displayName" yaml:"displayName"`
	Version          int              `json:"version" yaml:"version"`
	CreatedAt        time.Time        `json:"createdAt" yaml:"createdAt"`
	LastActiveAt     time.Time        `json:"lastActiveAt" yaml:"lastActiveAt"`
	Theme            Theme            `json:"theme" yaml:"theme"`
	CoreTraits       CoreTraits       `json:"coreTraits" yaml:"coreTraits"`
	CognitiveProfile CognitiveProfile `json:"cognitiveProfile" yaml:"cognitiveProfile"`
	VoicePreferences VoicePreferences `json:"voicePreferences" yaml:"voicePreferences"`
}

// RecordID implements store.Record.
func (i Identity) RecordID() string { return i.ID }

// RecordTime implements store.Record.
func (i Identity) RecordTime() time.Time { return i.LastActiveAt }

// Validate reports missing identity fields before a save is attempted.
func (i Identity) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(i.ID) == "" {
		fields["id"] = "identity id required"
	}
	if strings.TrimSpace(i.DisplayName) == "" {
		fields["displayName"] = "display name required"
	}
	if strings.TrimSpace(i.CoreTraits.Tone) == "" {
		fields["tone"] = "operational tone required"
	}
	if i.Theme != "" && !ValidThemes[i.Theme] {
		fields["theme"] = "unknown theme " + string(i.Theme)
	}
	for name, v := range map[string]float64{
		"verbosity":     i.CognitiveProfile.Verbosity,
		"creativity":    i.CognitiveProfile.Creativity,
		"riskTolerance": i.CognitiveProfile.RiskTolerance,
	} {
		if v < 0 || v > 1 {
			fields[name] = "must be within [0,1]"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate lists safely.
func (i Identity) Clone() Identity {
	c := i
	c.CoreTraits.Philosophy = append([]string(nil), i.CoreTraits.Philosophy...)
	c.CoreTraits.Constraints = append([]string(nil), i.CoreTraits.Constraints...)
	return c
}
