package store

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/rcliao/coldsteel/internal/model"
)

// NoRecallSentinel is returned when nothing in memory matches the query.
const NoRecallSentinel = "No relevant semantic history found."

const (
	recallArtifactLimit = 3
	recallLogLimit      = 5
	recallExcerptLen    = 100
	minKeywordLen       = 4
)

// Keywords lowercases query and keeps whitespace-separated words longer
// than three characters.
func Keywords(query string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if len([]rune(w)) >= minKeywordLen {
			out = append(out, w)
		}
	}
	return out
}

// SemanticRecall assembles a context block of prior artifacts and user
// messages containing any keyword of query. Matching is plain substring
// containment with no scoring.
func (s *SQLiteStore) SemanticRecall(ctx context.Context, query string) (string, error) {
	logs, err := s.ListLogs(ctx)
	if err != nil {
		return "", err
	}
	artifacts, err := s.ListArtifacts(ctx)
	if err != nil {
		return "", err
	}
	out := Recall(query, logs, artifacts)
	s.logger.Debug("semantic recall",
		zap.Int("keywords", len(Keywords(query))),
		zap.Bool("hit", out != NoRecallSentinel))
	return out, nil
}

// Recall is the pure matching step of SemanticRecall. artifacts are expected
// newest first and logs oldest first, as ListAll returns them.
func Recall(query string, logs []model.Message, artifacts []model.Artifact) string {
	keywords := Keywords(query)
	matches := func(texts ...string) bool {
		for _, k := range keywords {
			for _, t := range texts {
				if strings.Contains(strings.ToLower(t), k) {
					return true
				}
			}
		}
		return false
	}

	var lines []string
	n := 0
	for _, a := range artifacts {
		if n == recallArtifactLimit {
			break
		}
		if matches(a.Title, a.Content) {
			lines = append(lines, "[ARTIFACT: "+a.Title+"] "+excerpt(a.Content)+"...")
			n++
		}
	}
	n = 0
	for _, l := range logs {
		if n == recallLogLimit {
			break
		}
		if l.Role == model.RoleUser && matches(l.Content) {
			lines = append(lines, "[USER PREVIOUSLY STATED]: "+l.Content)
			n++
		}
	}

	if len(lines) == 0 {
		return NoRecallSentinel
	}
	return "RELEVANT MEMORY FRAGMENTS:\n" + strings.Join(lines, "\n")
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) > recallExcerptLen {
		return string(r[:recallExcerptLen])
	}
	return s
}
