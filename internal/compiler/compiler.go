// Package compiler turns an identity and a priority into system directives.
package compiler

import (
	"fmt"
	"strings"

	"github.com/rcliao/coldsteel/internal/model"
)

// PriorityDirectives is the fixed directive text per priority level.
var PriorityDirectives = map[model.PriorityLevel]string{
	model.PriorityLow:      "Efficiency is paramount. Maximal conciseness. Minimal output only.",
	model.PriorityNormal:   "Balanced standard output. Standard operational protocols apply.",
	model.PriorityHigh:     "High detail required. Explore edge cases. Provide comprehensive reasoning.",
	model.PriorityCritical: "Extreme precision. Multi-layer verification. Exhaustive rigor and logic is mandatory.",
}

// Compiled is the output of Compile.
type Compiled struct {
	SystemDirectives string
	Tuning           model.CognitiveProfile
}

// Compile builds the directive string for identity at priority. An unknown
// priority compiles as NORMAL.
func Compile(identity model.Identity, priority model.PriorityLevel) Compiled {
	if !priority.Valid() {
		priority = model.PriorityNormal
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.\n", identity.DisplayName)
	b.WriteString("You are an offline-first cognitive orchestration layer called Cold Steel.\n")
	b.WriteString("You must honor your core identity across all sessions.\n\n")

	fmt.Fprintf(&b, "CURRENT TASK PRIORITY: %s\n", priority)
	fmt.Fprintf(&b, "PRIORITY DIRECTIVE: %s\n\n", PriorityDirectives[priority])

	fmt.Fprintf(&b, "TONE: %s\n\n", identity.CoreTraits.Tone)

	b.WriteString("PHILOSOPHY:\n")
	writeBullets(&b, identity.CoreTraits.Philosophy)
	b.WriteString("\nCONSTRAINTS:\n")
	writeBullets(&b, identity.CoreTraits.Constraints)

	p := identity.CognitiveProfile
	b.WriteString("\nOperational Parameters:\n")
	fmt.Fprintf(&b, "- Verbosity: %s%%\n", percent(p.Verbosity))
	fmt.Fprintf(&b, "- Creativity: %s%%\n", percent(p.Creativity))
	fmt.Fprintf(&b, "- Risk Tolerance: %s%%", percent(p.RiskTolerance))

	return Compiled{
		SystemDirectives: b.String(),
		Tuning:           p,
	}
}

func writeBullets(b *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

// percent renders v*100 without trailing zeros, e.g. 0.7 -> "70", 0.125 -> "12.5".
func percent(v float64) string {
	s := fmt.Sprintf("%.2f", v*100)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
