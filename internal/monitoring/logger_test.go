package monitoring

import (
	"fmt"
	"strings"
	"testing"
)

func capture(t *testing.T) *[]string {
	t.Helper()
	original := Logf
	originalLevel := GetLevel()
	t.Cleanup(func() {
		Logf = original
		SetLevel(originalLevel)
	})
	var lines []string
	SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) {
		called = true
	})
	Logf("test message")
	if !called {
		t.Error("Custom logger was not called")
	}

	noOpCalled := false
	SetLogger(func(format string, v ...interface{}) {
		noOpCalled = true
	})
	SetLogger(nil)
	Logf("test")
	if noOpCalled {
		t.Error("No-op logger should not have triggered callback")
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}

func TestNamedLevels(t *testing.T) {
	lines := capture(t)
	lg := Named("Cluster")

	SetLevel(LevelLog)
	lg.Logf("summary %d", 1)
	lg.Infof("stats")
	lg.Verbosef("hit")
	if len(*lines) != 1 {
		t.Fatalf("got %d lines at LevelLog, want 1: %v", len(*lines), *lines)
	}
	if (*lines)[0] != "[Cluster] summary 1" {
		t.Errorf("line = %q, want %q", (*lines)[0], "[Cluster] summary 1")
	}

	SetLevel(LevelVerbose)
	lg.Verbosef("hit")
	if len(*lines) != 2 {
		t.Errorf("verbose line not emitted at LevelVerbose")
	}
	if !lg.Enabled(LevelInfo) {
		t.Error("Enabled(LevelInfo) = false at LevelVerbose")
	}
}

func TestErrorfAlwaysEmits(t *testing.T) {
	lines := capture(t)
	SetLevel(LevelError)
	Printf("quiet")
	Errorf("Invalid wire plane %d", 7)
	if len(*lines) != 1 {
		t.Fatalf("got %d lines, want 1: %v", len(*lines), *lines)
	}
	if !strings.HasPrefix((*lines)[0], "ERROR: Invalid wire plane 7") {
		t.Errorf("line = %q", (*lines)[0])
	}
}

func TestIndentation(t *testing.T) {
	lines := capture(t)
	SetLevel(LevelLog)
	IncreaseIndentation()
	Printf("inner")
	DecreaseIndentation()
	DecreaseIndentation()
	Printf("outer")
	if (*lines)[0] != "   inner" {
		t.Errorf("indented line = %q", (*lines)[0])
	}
	if (*lines)[1] != "outer" {
		t.Errorf("outer line = %q", (*lines)[1])
	}
}
