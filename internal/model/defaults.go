package model

import "time"

// DefaultVoiceName and DefaultLiveModel are used when an identity leaves
// its voice preferences empty.
const (
	DefaultVoiceName = "Zephyr"
	DefaultLiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"
)

// DefaultIdentity returns the built-in primary identity stamped with now.
func DefaultIdentity(now time.Time) Identity {
	return Identity{
		ID:           PrimaryIdentityID,
		DisplayName:  "Operator",
		Version:      1,
		CreatedAt:    now,
		LastActiveAt: now,
		Theme:        ThemeSteel,
		CoreTraits: CoreTraits{
			Tone:        "precise, cold, surgical",
			Philosophy:  []string{"offline-first", "systems over tools", "identity continuity"},
			Constraints: []string{"no vendor references", "no amnesia", "no hallucinated certainty"},
		},
		CognitiveProfile: CognitiveProfile{
			Verbosity:     0.6,
			Creativity:    0.7,
			RiskTolerance: 0.4,
		},
		VoicePreferences: VoicePreferences{
			PreferredVoiceName: DefaultVoiceName,
			ModelID:            DefaultLiveModel,
		},
	}
}

// DefaultProviderID is the provider selected when none is configured.
const DefaultProviderID = "provider_openrouter"

// DefaultProviders returns the built-in provider stack.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			ID:              DefaultProviderID,
			Name:            "OpenRouter",
			Type:            ProviderOpenRouter,
			Enabled:         true,
			BaseURL:         "https://openrouter.ai/api/v1",
			SelectedModelID: "kwaipilot/kat-coder-pro:free",
			Models: []Model{
				{ID: "kwaipilot/kat-coder-pro:free", Name: "Kat Coder Pro (Free)", IsFree: true},
				{ID: "nvidia/nemotron-nano-12b-v2-vl:free", Name: "Nemotron Nano 12B VL (Free)", IsFree: true},
				{ID: "nex-agi/deepseek-v3.1-nex-n1:free", Name: "DeepSeek v3.1 Nex (Free)", IsFree: true},
				{ID: "meta-llama/llama-3.3-70b-instruct:free", Name: "Llama 3.3 70B Instruct (Free)", IsFree: true},
				{ID: "openai/gpt-oss-120b:free", Name: "GPT OSS 120B (Free)", IsFree: true},
			},
		},
		{
			ID:              "provider_openai",
			Name:            "OpenAI",
			Type:            ProviderOpenAI,
			Enabled:         false,
			BaseURL:         "https://api.openai.com/v1",
			SelectedModelID: "gpt-reasoning",
			Models: []Model{
				{ID: "gpt-reasoning", Name: "Reasoning (o1/o3)"},
				{ID: "gpt-conversational", Name: "Conversational (4o)"},
				{ID: "gpt-rag", Name: "RAG Enhanced"},
				{ID: "gpt-vision", Name: "Vision Core"},
				{ID: "gpt-ui-creative", Name: "UI Creative Generation"},
			},
		},
	}
}
