package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	for _, tc := range []struct {
		level string
		dev   bool
		want  zapcore.Level
	}{
		{"info", false, zapcore.InfoLevel},
		{"debug", true, zapcore.DebugLevel},
		{"WARN", false, zapcore.WarnLevel},
	} {
		l, err := New(tc.level, tc.dev)
		if err != nil {
			t.Fatalf("New(%q): %v", tc.level, err)
		}
		if !l.Core().Enabled(tc.want) {
			t.Errorf("New(%q): level %s not enabled", tc.level, tc.want)
		}
		if tc.want > zapcore.DebugLevel && l.Core().Enabled(tc.want-1) {
			t.Errorf("New(%q): level below %s enabled", tc.level, tc.want)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty", false); err == nil {
		t.Fatal("expected error")
	}
}
