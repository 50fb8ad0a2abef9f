package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevelFilter(t *testing.T) {
	tests := []struct {
		name  string
		level log.Level
		emit  func(*log.Logger)
		want  bool
	}{
		{"info passes at info", log.InfoLevel, func(l *log.Logger) { l.Info("played 6-4") }, true},
		{"debug filtered at info", log.InfoLevel, func(l *log.Logger) { l.Debug("cache key") }, false},
		{"debug passes at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("cache key") }, true},
		{"warn passes at info", log.InfoLevel, func(l *log.Logger) { l.Warn("redis down") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			tt.emit(newLogger(&sb, tt.level))
			if got := sb.Len() > 0; got != tt.want {
				t.Errorf("wrote output = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgressDoneIncludesDuration(t *testing.T) {
	var sb strings.Builder
	p := newProgress(newLogger(&sb, log.InfoLevel))
	p.done("simulated 3 rounds")

	out := sb.String()
	if !strings.Contains(out, "simulated 3 rounds") {
		t.Errorf("done() output %q missing message", out)
	}
	// Elapsed time renders in parentheses after the message.
	if !strings.Contains(out, "(") || !strings.Contains(out, ")") {
		t.Errorf("done() output %q missing elapsed duration", out)
	}
}

func TestLoggerContextRoundTrip(t *testing.T) {
	var sb strings.Builder
	custom := newLogger(&sb, log.DebugLevel)

	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Error("loggerFromContext did not return the attached logger")
	}

	// A bare context falls back to the package default instead of nil.
	if loggerFromContext(context.Background()) == nil {
		t.Error("loggerFromContext(bare ctx) = nil, want default logger")
	}
}
