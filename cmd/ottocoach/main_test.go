package main

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/coach"
	"github.com/hammamikhairi/ottocoach/internal/conversation"
	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
	"github.com/hammamikhairi/ottocoach/internal/presets"
	"github.com/hammamikhairi/ottocoach/internal/speech"
	"github.com/hammamikhairi/ottocoach/internal/storage"
)

// fakeScreen records what the REPL prints.
type fakeScreen struct {
	mu      sync.Mutex
	chat    []string
	hints   []string
	urgent  []string
	summary string
	started int
	stopped int
	input   chan string
}

func (f *fakeScreen) PrintChat(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chat = append(f.chat, text)
}

func (f *fakeScreen) PrintHeader(text string) {}
func (f *fakeScreen) PrintLine(text string)   {}
func (f *fakeScreen) PrintVoice(text string)  {}

func (f *fakeScreen) PrintHint(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hints = append(f.hints, text)
}

func (f *fakeScreen) PrintUrgent(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urgent = append(f.urgent, text)
}

func (f *fakeScreen) InputChan() <-chan string { return f.input }

func (f *fakeScreen) SessionStarted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

func (f *fakeScreen) SessionStopped() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped++
}

func (f *fakeScreen) SetSummary(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summary = text
}

func (f *fakeScreen) saidLine(line string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.chat, line)
}

func newTestApp(t *testing.T) (*cliApp, *fakeScreen) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	c := coach.New(speech.NewNoOp(log), presets.NewMemorySource(log), storage.NewMemoryStore(log), log)
	t.Cleanup(c.Shutdown)

	scr := &fakeScreen{input: make(chan string, 4)}
	return &cliApp{
		coach:  c,
		parser: conversation.NewKeywordParser(log),
		log:    log,
		ui:     scr,
	}, scr
}

func TestFmtOffset(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{9 * time.Second, "0:09"},
		{90 * time.Second, "1:30"},
		{-3 * time.Second, "-0:03"},
		{570 * time.Second, "9:30"},
	}
	for _, tt := range tests {
		if got := fmtOffset(tt.in); got != tt.want {
			t.Errorf("fmtOffset(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWritePlan(t *testing.T) {
	var buf bytes.Buffer
	writePlan(&buf, domain.Params{Exercises: 2, ExerciseDuration: 10, Repetitions: 1, PauseDuration: 0})
	out := buf.String()

	for _, want := range []string{"3 announcements", "Exercise 1 of 2", "Exercise 2 of 2", "Well done!", "0:20"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestHandleSet(t *testing.T) {
	app, scr := newTestApp(t)
	ctx := context.Background()

	if !app.handleIntent(ctx, &domain.Intent{Type: domain.IntentSet, Payload: "reps 4"}) {
		t.Fatal("set should not quit")
	}
	if got := app.coach.Settings().Params.Repetitions; got != 4 {
		t.Fatalf("expected 4 repetitions, got %d", got)
	}
	if !scr.saidLine(speech.LineSettingUpdated(domain.FieldRepetitions, 4)) {
		t.Fatalf("expected confirmation, got %v", scr.chat)
	}
	if !strings.Contains(scr.summary, "x4") {
		t.Fatalf("expected summary to show 4 rounds, got %q", scr.summary)
	}
}

func TestHandlePreset(t *testing.T) {
	app, scr := newTestApp(t)
	ctx := context.Background()

	app.handleIntent(ctx, &domain.Intent{Type: domain.IntentPreset, Payload: "nope"})
	if !scr.saidLine(speech.LineUnknownPreset("nope")) {
		t.Fatalf("expected unknown preset line, got %v", scr.chat)
	}

	app.handleIntent(ctx, &domain.Intent{Type: domain.IntentPreset, Payload: "hiit"})
	if got := app.coach.Settings().Preset; got != "hiit" {
		t.Fatalf("expected hiit preset applied, got %q", got)
	}
}

func TestHandleStartStop(t *testing.T) {
	app, scr := newTestApp(t)
	ctx := context.Background()

	app.handleIntent(ctx, &domain.Intent{Type: domain.IntentStop})
	if !scr.saidLine(speech.LineNoSession()) {
		t.Fatalf("expected no-session line, got %v", scr.chat)
	}

	app.handleIntent(ctx, &domain.Intent{Type: domain.IntentStart})
	if !app.coach.Running() {
		t.Fatal("expected a running session")
	}

	app.handleIntent(ctx, &domain.Intent{Type: domain.IntentStop})
	if app.coach.Running() {
		t.Fatal("expected session stopped")
	}
	if !scr.saidLine(speech.LineAborted()) {
		t.Fatalf("expected aborted line, got %v", scr.chat)
	}
	if scr.started != 1 || scr.stopped != 1 {
		t.Fatalf("expected one start and one stop on screen, got %d/%d", scr.started, scr.stopped)
	}
}

func TestHandleQuit(t *testing.T) {
	app, scr := newTestApp(t)
	if app.handleIntent(context.Background(), &domain.Intent{Type: domain.IntentQuit}) {
		t.Fatal("quit should end the loop")
	}
	if !scr.saidLine(speech.LineBye()) {
		t.Fatalf("expected goodbye, got %v", scr.chat)
	}
}

func TestRunLoopReadsInput(t *testing.T) {
	app, scr := newTestApp(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	scr.input <- "set pause 15"
	scr.input <- "quit"

	app.run(ctx)

	if got := app.coach.Settings().Params.PauseDuration; got != 15 {
		t.Fatalf("expected pause 15, got %d", got)
	}
	if !scr.saidLine(speech.LineWelcome()) {
		t.Fatalf("expected welcome line, got %v", scr.chat)
	}
}
