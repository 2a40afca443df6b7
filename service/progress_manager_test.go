package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/mattn/go-runewidth"
)

func TestNewProgressManager_Disabled(t *testing.T) {
	pm := NewProgressManager(false)
	if pm.IsInteractive() {
		t.Error("expected non-interactive progress manager when disabled")
	}
}

func TestNewProgressManager_CI(t *testing.T) {
	t.Setenv("CI", "true")
	if IsInteractiveEnvironment() {
		t.Error("CI environments are never interactive")
	}
	if NewProgressManager(true).IsInteractive() {
		t.Error("expected no-op progress manager under CI")
	}
}

func TestNoOpProgressManager(t *testing.T) {
	pm := &NoOpProgressManager{}

	task := pm.StartTask("test", 100)
	if task == nil {
		t.Fatal("expected non-nil task from StartTask")
	}
	task.Increment(10)
	task.Describe("testing")
	task.Complete()
	pm.Close()
}

func TestProgressManagerImpl_WritesBar(t *testing.T) {
	var buf bytes.Buffer
	pm := newProgressManager(&buf)

	var _ domain.ProgressManager = pm
	task := pm.StartTask("Analyzing files", 2)
	task.Increment(1)
	task.Describe("rules.expr")
	task.Increment(1)
	task.Complete()
	pm.Close()

	if !pm.IsInteractive() {
		t.Error("a progress bar manager is interactive")
	}
	if buf.Len() == 0 {
		t.Error("expected progress output")
	}
}

func TestFitLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  int
	}{
		{"short", "Analyzing files", 15},
		{"long path", "Analyzing files " + strings.Repeat("nested/", 10) + "rules.expr", maxLabelWidth},
		{"wide runes", "Analyzing files " + strings.Repeat("価格", 20), maxLabelWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runewidth.StringWidth(fitLabel(tt.label)); got > tt.want {
				t.Errorf("width %d exceeds %d", got, tt.want)
			}
		})
	}
}
