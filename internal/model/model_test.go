package model

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"pgregory.net/rapid"
)

func TestTitleFromTask(t *testing.T) {
	tests := []struct {
		task, want string
	}{
		{"short", "short"},
		{strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"", ""},
	}
	for _, tt := range tests {
		if got := TitleFromTask(tt.task); got != tt.want {
			t.Errorf("TitleFromTask(%q) = %q, want %q", tt.task, got, tt.want)
		}
	}
}

func TestProperty_TitleIsPrefix(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		task := rapid.String().Draw(rt, "task")
		title := TitleFromTask(task)
		base := strings.TrimSuffix(title, "...")
		if utf8.RuneCountInString(task) > 30 && !strings.HasSuffix(title, "...") {
			rt.Fatalf("long task %q has no ellipsis", task)
		}
		if !strings.HasPrefix(task, base) {
			rt.Fatalf("title %q is not a prefix of %q", title, task)
		}
		if utf8.RuneCountInString(base) > 30 {
			rt.Fatalf("title base %q longer than 30 runes", base)
		}
	})
}

func TestParsePriority(t *testing.T) {
	for _, in := range []string{"low", " High ", "CRITICAL", "Normal"} {
		if _, err := ParsePriority(in); err != nil {
			t.Errorf("ParsePriority(%q): %v", in, err)
		}
	}
	if _, err := ParsePriority("urgent"); err == nil {
		t.Error("ParsePriority(urgent) succeeded")
	}
	if PriorityLow.Rank() >= PriorityCritical.Rank() {
		t.Error("priority order broken")
	}
}

func TestDefaultIdentityValid(t *testing.T) {
	id := DefaultIdentity(time.Unix(0, 0))
	if err := id.Validate(); err != nil {
		t.Fatalf("default identity invalid: %v", err)
	}
	if id.ID != PrimaryIdentityID || id.VoicePreferences.PreferredVoiceName != DefaultVoiceName {
		t.Errorf("unexpected defaults: %+v", id)
	}
}

func TestIdentityValidateFields(t *testing.T) {
	id := DefaultIdentity(time.Unix(0, 0))
	id.DisplayName = " "
	id.Theme = "NEON"
	id.CognitiveProfile.Creativity = 1.5

	err := id.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	for _, f := range []string{"displayName", "theme", "creativity"} {
		if _, ok := verr.Fields[f]; !ok {
			t.Errorf("missing field %s in %v", f, verr)
		}
	}
	if !strings.HasPrefix(err.Error(), "validation failed: creativity: ") {
		t.Errorf("error text not sorted: %s", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	id := DefaultIdentity(time.Unix(0, 0))
	c := id.Clone()
	c.CoreTraits.Philosophy[0] = "changed"
	if id.CoreTraits.Philosophy[0] == "changed" {
		t.Error("identity clone shares philosophy")
	}

	p := DefaultProviders()[0]
	pc := p.Clone()
	pc.Models[0].ID = "changed"
	if p.Models[0].ID == "changed" {
		t.Error("provider clone shares models")
	}
}

func TestProviderValidation(t *testing.T) {
	openai := DefaultProviders()[1]
	if err := openai.Validate(); err != nil {
		t.Fatalf("disabled default invalid: %v", err)
	}
	openai.Enabled = true
	var verr *ValidationError
	if err := openai.Validate(); !errors.As(err, &verr) || verr.Fields["apiKey"] == "" {
		t.Fatalf("enabled without key: %v", err)
	}
	openai.APIKey = "sk"
	if err := openai.Validate(); err != nil {
		t.Fatalf("enabled with key: %v", err)
	}
	openai.SelectedModelID = "nope"
	if err := openai.Validate(); err == nil {
		t.Fatal("unknown selected model accepted")
	}
}

func TestRoleIndex(t *testing.T) {
	for i, r := range TeamRoles {
		if r.Index() != i {
			t.Errorf("%s.Index() = %d", r, r.Index())
		}
	}
	if AgentRole("Oracle").Index() != -1 {
		t.Error("unknown role has index")
	}
}
