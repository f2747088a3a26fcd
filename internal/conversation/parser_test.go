package conversation

import (
	"context"
	"testing"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()

	tests := []struct {
		input       string
		wantType    domain.IntentType
		wantPayload string
	}{
		// Start
		{"start", domain.IntentStart, ""},
		{"Go!", domain.IntentStart, ""},
		{"let's go", domain.IntentStart, ""},
		{"start the session", domain.IntentStart, ""},

		// Stop
		{"stop", domain.IntentStop, ""},
		{"abort", domain.IntentStop, ""},
		{"Cancel.", domain.IntentStop, ""},

		// Status
		{"status", domain.IntentStatus, ""},
		{"how long?", domain.IntentStatus, ""},

		// Repeat
		{"repeat", domain.IntentRepeat, ""},
		{"what?", domain.IntentRepeat, ""},

		// Plan
		{"plan", domain.IntentPlan, ""},
		{"preview", domain.IntentPlan, ""},

		// Help
		{"help", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},

		// Quit
		{"quit", domain.IntentQuit, ""},
		{"q", domain.IntentQuit, ""},

		// Set
		{"set exercises 4", domain.IntentSet, "exercises 4"},
		{"set pause to 45", domain.IntentSet, "pause 45"},
		{"reps 3", domain.IntentSet, "reps 3"},
		{"D=20", domain.IntentSet, "d 20"},
		{"Duration twenty", domain.IntentSet, "duration twenty"},

		// Voice
		{"voice en-GB-SoniaNeural", domain.IntentVoice, "en-GB-SoniaNeural"},
		{"voices", domain.IntentVoice, ""},

		// Preset
		{"preset hiit", domain.IntentPreset, "hiit"},
		{"load box breathing", domain.IntentPreset, "box breathing"},
		{"presets", domain.IntentPreset, ""},

		// Unknown
		{"do a backflip", domain.IntentUnknown, "do a backflip"},
		{"", domain.IntentUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, err := parser.Parse(ctx, tt.input, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent.Type != tt.wantType {
				t.Errorf("input %q: expected intent %s, got %s", tt.input, tt.wantType, intent.Type)
			}
			if intent.Payload != tt.wantPayload {
				t.Errorf("input %q: expected payload %q, got %q", tt.input, tt.wantPayload, intent.Payload)
			}
		})
	}
}

func TestSplitSet(t *testing.T) {
	field, value := SplitSet("pause 45")
	if field != "pause" || value != "45" {
		t.Fatalf("expected pause/45, got %q/%q", field, value)
	}
	field, value = SplitSet("reps")
	if field != "reps" || value != "" {
		t.Fatalf("expected reps/empty, got %q/%q", field, value)
	}
}

func TestCLIAnnouncerPrints(t *testing.T) {
	var lines []string
	printFn := func(format string, a ...interface{}) {
		lines = append(lines, format)
	}
	a := NewCLIAnnouncer(logger.New(logger.LevelOff, nil), printFn)
	ctx := context.Background()

	if err := a.SpeakShort(ctx, "3"); err != nil {
		t.Fatal(err)
	}
	if err := a.PlayChime(ctx); err != nil {
		t.Fatal(err)
	}
	if err := a.SpeakSentence(ctx, "Well done!"); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected countdown and sentence printed, chime silent on screen; got %d lines", len(lines))
	}
}
