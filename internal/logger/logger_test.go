package logger

import "testing"

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"", "dev", "prod", "debug"} {
		l, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q): %v", mode, err)
		}
		l.With("mode", mode).Debug("ok")
	}
	if _, err := New("verbose"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Info("ignored", "k", "v")
	l.With("k", "v").Warn("ignored")
	l.Sync()
	Nop().Error("ignored")
}
