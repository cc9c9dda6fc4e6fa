package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	result := String("assistant")

	if !strings.HasPrefix(result, "assistant version") {
		t.Errorf("String() = %q, should start with 'assistant version'", result)
	}
	if !strings.Contains(result, Version) {
		t.Errorf("String() = %q, should contain version %q", result, Version)
	}
	if !strings.Contains(result, "built "+BuildTime) {
		t.Errorf("String() = %q, should contain build time", result)
	}
}

func TestString_EmptyBinary_UsesProjectName(t *testing.T) {
	if got := String(""); !strings.HasPrefix(got, "shopassist version") {
		t.Errorf("String(\"\") = %q, want shopassist prefix", got)
	}
}

func TestDefaultValues(t *testing.T) {
	if Version != "dev" {
		t.Errorf("Version = %q, want 'dev'", Version)
	}
	if BuildTime != "unknown" {
		t.Errorf("BuildTime = %q, want 'unknown'", BuildTime)
	}
}
