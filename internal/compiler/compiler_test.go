package compiler

import (
	"strings"
	"testing"
	"time"

	"github.com/rcliao/coldsteel/internal/model"
	"pgregory.net/rapid"
)

func TestCompileEmbedsIdentity(t *testing.T) {
	id := model.DefaultIdentity(time.Now())
	got := Compile(id, model.PriorityNormal)

	for _, want := range []string{
		"You are Operator.",
		"TONE: precise, cold, surgical",
		"- offline-first\n- systems over tools\n- identity continuity",
		"- no vendor references\n- no amnesia\n- no hallucinated certainty",
		"- Verbosity: 60%",
		"- Creativity: 70%",
		"- Risk Tolerance: 40%",
		"CURRENT TASK PRIORITY: NORMAL",
	} {
		if !strings.Contains(got.SystemDirectives, want) {
			t.Errorf("directives missing %q\n%s", want, got.SystemDirectives)
		}
	}
	if got.Tuning != id.CognitiveProfile {
		t.Errorf("tuning = %+v, want %+v", got.Tuning, id.CognitiveProfile)
	}
}

func TestCompileUnknownPriorityFallsBackToNormal(t *testing.T) {
	got := Compile(model.DefaultIdentity(time.Now()), "URGENT")
	if !strings.Contains(got.SystemDirectives, PriorityDirectives[model.PriorityNormal]) {
		t.Error("expected NORMAL directive for unknown priority")
	}
}

func TestPercent(t *testing.T) {
	cases := map[float64]string{0: "0", 0.7: "70", 1: "100", 0.125: "12.5", 0.333: "33.3"}
	for in, want := range cases {
		if got := percent(in); got != want {
			t.Errorf("percent(%v) = %q, want %q", in, got, want)
		}
	}
}

// Each priority's directive appears verbatim and no other level's does.
func TestProperty_PriorityDirectiveExclusive(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := rapid.SampledFrom(model.Priorities).Draw(rt, "priority")
		id := model.DefaultIdentity(time.Unix(0, 0))
		id.DisplayName = rapid.StringMatching(`[A-Za-z ]{1,20}`).Draw(rt, "name")
		id.CoreTraits.Tone = rapid.StringMatching(`[a-z, ]{1,30}`).Draw(rt, "tone")

		out := Compile(id, p).SystemDirectives
		for q, directive := range PriorityDirectives {
			has := strings.Contains(out, directive)
			if q == p && !has {
				rt.Fatalf("missing %s directive", q)
			}
			if q != p && has {
				rt.Fatalf("%s output contains %s directive", p, q)
			}
		}
	})
}

func TestCompileIsDeterministic(t *testing.T) {
	id := model.DefaultIdentity(time.Unix(100, 0))
	a := Compile(id, model.PriorityHigh)
	b := Compile(id, model.PriorityHigh)
	if a != b {
		t.Error("expected identical output for identical input")
	}
}
