package model

import (
	"strings"
	"time"
)

// ProviderType tags the remote backend family of a provider config.
type ProviderType string

const (
	ProviderOpenRouter     ProviderType = "OPENROUTER"
	ProviderOpenAI         ProviderType = "OPENAI"
	ProviderLocal          ProviderType = "LOCAL"
	ProviderStandardRemote ProviderType = "STANDARD_REMOTE"
	ProviderAnthropic      ProviderType = "ANTHROPIC"
)

// Model is one selectable model of a provider.
type Model struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	IsFree bool   `json:"isFree" yaml:"isFree"`
}

// ProviderConfig is a remote-provider profile.
type ProviderConfig struct {
	ID              string       `json:"id" yaml:"id"`
	Name            string       `json:"name" yaml:"name"`
	Type            ProviderType `json:"type" yaml:"type"`
	Enabled         bool         `json:"enabled" yaml:"enabled"`
	BaseURL         string       `json:"baseUrl" yaml:"baseUrl"`
	APIKey          string       `json:"apiKey" yaml:"apiKey"`
	Models          []Model      `json:"models" yaml:"models"`
	SelectedModelID string       `json:"selectedModelId" yaml:"selectedModelId"`
}

// RecordID implements store.Record.
func (p ProviderConfig) RecordID() string { return p.ID }

// RecordTime implements store.Record. Provider configs keep insertion order.
func (p ProviderConfig) RecordTime() time.Time { return time.Time{} }

// HasModel reports whether id is one of the configured models.
func (p ProviderConfig) HasModel(id string) bool {
	for _, m := range p.Models {
		if m.ID == id {
			return true
		}
	}
	return false
}

// ValidateEnable checks the fields required before Enabled may become true.
func (p ProviderConfig) ValidateEnable() error {
	fields := map[string]string{}
	if strings.TrimSpace(p.BaseURL) == "" {
		fields["baseUrl"] = "endpoint required for uplink"
	}
	if strings.TrimSpace(p.APIKey) == "" {
		fields["apiKey"] = "secure token required for authentication"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Validate checks a config before it is added or replaced.
func (p ProviderConfig) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(p.ID) == "" {
		fields["id"] = "provider id required"
	}
	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = "provider name required"
	}
	if p.SelectedModelID != "" && len(p.Models) > 0 && !p.HasModel(p.SelectedModelID) {
		fields["selectedModelId"] = "not one of the provider's models"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	if p.Enabled {
		return p.ValidateEnable()
	}
	return nil
}

// Clone returns a deep copy.
func (p ProviderConfig) Clone() ProviderConfig {
	c := p
	c.Models = append([]Model(nil), p.Models...)
	return c
}
