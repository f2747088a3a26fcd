package coach

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
	"github.com/hammamikhairi/ottocoach/internal/presets"
	"github.com/hammamikhairi/ottocoach/internal/speech"
	"github.com/hammamikhairi/ottocoach/internal/storage"
	"github.com/hammamikhairi/ottocoach/internal/timeline"
	"github.com/hammamikhairi/ottocoach/internal/timer"
)

// fakeAnnouncer records timeline cues.
type fakeAnnouncer struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeAnnouncer) SpeakShort(_ context.Context, numeral string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "short:"+numeral)
	return nil
}

func (f *fakeAnnouncer) SpeakSentence(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "say:"+text)
	return nil
}

func (f *fakeAnnouncer) PlayChime(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "chime")
	return nil
}

func (f *fakeAnnouncer) has(event string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.events, event)
}

// fakeSpeaker records coach lines and implements VoiceSelector.
type fakeSpeaker struct {
	mu          sync.Mutex
	said        []string
	prefetched  []string
	interrupts  int
	voice       string
	knownVoices []string
}

func (f *fakeSpeaker) Say(_ context.Context, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.said = append(f.said, text)
}

func (f *fakeSpeaker) Interrupt() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interrupts++
}

func (f *fakeSpeaker) Prefetch(_ context.Context, sentences ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefetched = append(f.prefetched, sentences...)
}

func (f *fakeSpeaker) SelectVoice(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.knownVoices {
		if v == name {
			f.voice = v
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownVoice, name)
}

func (f *fakeSpeaker) Voices() []string {
	return f.knownVoices
}

// fakePresenter records the readout.
type fakePresenter struct {
	mu       sync.Mutex
	displays []string
	ended    int
}

func (f *fakePresenter) DisplayRemaining(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.displays = append(f.displays, text)
}

func (f *fakePresenter) SessionEnded() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended++
}

func (f *fakePresenter) endedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ended
}

func (f *fakePresenter) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.displays) == 0 {
		return "<none>"
	}
	return f.displays[len(f.displays)-1]
}

type harness struct {
	coach     *Coach
	announcer *fakeAnnouncer
	speaker   *fakeSpeaker
	presenter *fakePresenter
	store     *storage.MemoryStore
}

func setupCoach(t *testing.T) (*harness, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	h := &harness{
		announcer: &fakeAnnouncer{},
		speaker:   &fakeSpeaker{knownVoices: []string{"en-US-AndrewNeural", "en-GB-SoniaNeural"}},
		presenter: &fakePresenter{},
		store:     storage.NewMemoryStore(log),
	}
	h.coach = New(h.announcer, presets.NewMemorySource(log), h.store, log,
		WithSpeaker(h.speaker),
		WithVoiceSelector(h.speaker),
		WithPresenter(h.presenter),
		WithTickInterval(5*time.Millisecond),
		WithClockOptions(timer.WithPostChimeDelay(time.Millisecond)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		h.coach.Shutdown()
		cancel()
	})
	return h, ctx
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartRunsToCompletion(t *testing.T) {
	h, ctx := setupCoach(t)

	session, err := h.coach.StartWith(ctx, domain.Params{})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.ID == "" {
		t.Fatal("session ID is empty")
	}
	if session.Cues != 1 {
		t.Fatalf("expected a single completion cue, got %d", session.Cues)
	}

	waitFor(t, "completion", func() bool { return !h.coach.Running() })
	waitFor(t, "final sentence", func() bool { return h.announcer.has("say:" + timeline.LineComplete()) })

	st, err := h.coach.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Session.Status != domain.SessionCompleted {
		t.Fatalf("expected completed, got %s", st.Session.Status)
	}
	if st.Session.EndedAt.IsZero() {
		t.Fatal("expected EndedAt to be set")
	}
	if h.presenter.endedCount() != 1 {
		t.Fatalf("expected one session-ended signal, got %d", h.presenter.endedCount())
	}
}

func TestStartPrefetchesTimelineTexts(t *testing.T) {
	h, ctx := setupCoach(t)

	params := domain.Params{Exercises: 2, ExerciseDuration: 10, Repetitions: 1}
	if _, err := h.coach.StartWith(ctx, params); err != nil {
		t.Fatalf("start: %v", err)
	}

	h.speaker.mu.Lock()
	defer h.speaker.mu.Unlock()
	want := timeline.Texts(timeline.Build(params))
	if fmt.Sprint(h.speaker.prefetched) != fmt.Sprint(want) {
		t.Fatalf("expected prefetch of %v, got %v", want, h.speaker.prefetched)
	}
}

func TestStartNormalizesAndSavesParams(t *testing.T) {
	h, ctx := setupCoach(t)

	session, err := h.coach.StartWith(ctx, domain.Params{Exercises: -2, ExerciseDuration: 30, Repetitions: 1, PauseDuration: -1})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	want := domain.Params{Exercises: 0, ExerciseDuration: 30, Repetitions: 1, PauseDuration: 0}
	if session.Params != want {
		t.Fatalf("expected normalized params %+v, got %+v", want, session.Params)
	}

	saved, _ := h.store.Load(ctx)
	if saved.Params != want {
		t.Fatalf("expected saved params %+v, got %+v", want, saved.Params)
	}
}

func TestStopAbortsAndSpeaks(t *testing.T) {
	h, ctx := setupCoach(t)

	if _, err := h.coach.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !h.coach.Running() {
		t.Fatal("expected running session")
	}

	if err := h.coach.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	st, _ := h.coach.Status()
	if st.Session.Status != domain.SessionAborted {
		t.Fatalf("expected aborted, got %s", st.Session.Status)
	}

	h.speaker.mu.Lock()
	interrupts, said := h.speaker.interrupts, slices.Clone(h.speaker.said)
	h.speaker.mu.Unlock()
	if interrupts != 1 {
		t.Fatalf("expected speech interrupted once, got %d", interrupts)
	}
	if len(said) != 1 || said[0] != speech.LineAborted() {
		t.Fatalf("expected abort line, got %v", said)
	}

	if err := h.coach.Stop(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession on second stop, got %v", err)
	}
	if h.presenter.endedCount() != 0 {
		t.Fatal("an aborted session must not report natural completion")
	}
}

func TestCancelledContextAbortsSession(t *testing.T) {
	h, ctx := setupCoach(t)
	sessionCtx, cancel := context.WithCancel(ctx)

	params := domain.Params{Exercises: 1, ExerciseDuration: 600, Repetitions: 1}
	if _, err := h.coach.StartWith(sessionCtx, params); err != nil {
		t.Fatalf("start: %v", err)
	}
	cancel()

	waitFor(t, "session aborted", func() bool { return !h.coach.Running() })
	st, err := h.coach.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Session.Status != domain.SessionAborted || st.Session.EndedAt.IsZero() {
		t.Fatalf("expected aborted with EndedAt, got %s at %v", st.Session.Status, st.Session.EndedAt)
	}
	if st.Remaining != "" {
		t.Fatalf("expected cleared readout, got %q", st.Remaining)
	}

	if _, err := h.coach.StartWith(ctx, domain.Params{}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	waitFor(t, "restarted session completes", func() bool { return h.presenter.endedCount() == 1 })
}

func TestStopWithoutSession(t *testing.T) {
	h, ctx := setupCoach(t)
	if err := h.coach.Stop(ctx); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := h.coach.Status(); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession from status, got %v", err)
	}
}

func TestStartReplacesRunningSession(t *testing.T) {
	h, ctx := setupCoach(t)

	first, err := h.coach.Start(ctx)
	if err != nil {
		t.Fatalf("first start: %v", err)
	}
	second, err := h.coach.Start(ctx)
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("expected a fresh session ID")
	}

	st, _ := h.coach.Status()
	if st.Session.ID != second.ID || st.Session.Status != domain.SessionRunning {
		t.Fatalf("expected second session running, got %s (%s)", st.Session.ID, st.Session.Status)
	}
}

func TestRemainingReadoutForwarded(t *testing.T) {
	h, ctx := setupCoach(t)

	if _, err := h.coach.StartWith(ctx, domain.Params{Exercises: 1, ExerciseDuration: 10, Repetitions: 1}); err != nil {
		t.Fatalf("start: %v", err)
	}

	waitFor(t, "first readout", func() bool { return h.presenter.last() == "10" })
	st, _ := h.coach.Status()
	if st.Remaining != "10" {
		t.Fatalf("expected status remaining 10, got %q", st.Remaining)
	}

	if err := h.coach.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if h.presenter.last() != "" {
		t.Fatalf("expected readout cleared on stop, got %q", h.presenter.last())
	}
}

func TestSetField(t *testing.T) {
	h, ctx := setupCoach(t)

	params, err := h.coach.SetField(ctx, "pause", "45")
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if params.PauseDuration != 45 {
		t.Fatalf("expected pause 45, got %d", params.PauseDuration)
	}
	if params, _ = h.coach.SetField(ctx, "reps", "lots"); params.Repetitions != 0 {
		t.Fatalf("junk input should coerce to 0, got %d", params.Repetitions)
	}

	if _, err := h.coach.SetField(ctx, "tempo", "3"); !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if h.coach.Settings().Params.PauseDuration != 45 {
		t.Fatal("failed update must not change settings")
	}
	if h.store.Saves() != 2 {
		t.Fatalf("expected 2 saves, got %d", h.store.Saves())
	}
}

func TestApplyAndStartPreset(t *testing.T) {
	h, ctx := setupCoach(t)

	preset, err := h.coach.ApplyPreset(ctx, "Box breathing")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if h.coach.Settings().Params != preset.Params || h.coach.Settings().Preset != "box-breathing" {
		t.Fatalf("expected preset applied, got %+v", h.coach.Settings())
	}

	session, err := h.coach.StartPreset(ctx, "hiit")
	if err != nil {
		t.Fatalf("start preset: %v", err)
	}
	if session.Preset != "hiit" {
		t.Fatalf("expected session tagged with preset, got %q", session.Preset)
	}

	if _, err := h.coach.ApplyPreset(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEditingFieldClearsPreset(t *testing.T) {
	h, ctx := setupCoach(t)

	if _, err := h.coach.ApplyPreset(ctx, "hiit"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := h.coach.SetField(ctx, "e", "3"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if h.coach.Settings().Preset != "" {
		t.Fatalf("expected preset cleared, got %q", h.coach.Settings().Preset)
	}
}

func TestSelectVoice(t *testing.T) {
	h, ctx := setupCoach(t)

	voice, err := h.coach.SelectVoice(ctx, "en-GB-SoniaNeural")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if voice != "en-GB-SoniaNeural" || h.coach.Settings().Voice != voice {
		t.Fatalf("expected voice remembered, got %q / %q", voice, h.coach.Settings().Voice)
	}
	saved, _ := h.store.Load(ctx)
	if saved.Voice != voice {
		t.Fatalf("expected voice saved, got %q", saved.Voice)
	}

	if _, err := h.coach.SelectVoice(ctx, "fr-FR-DeniseNeural"); !errors.Is(err, domain.ErrUnknownVoice) {
		t.Fatalf("expected ErrUnknownVoice, got %v", err)
	}
}

func TestSelectVoiceWithoutAudio(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	c := New(speech.NewNoOp(log), nil, nil, log)

	if _, err := c.SelectVoice(context.Background(), "x"); !errors.Is(err, domain.ErrAudioUnavailable) {
		t.Fatalf("expected ErrAudioUnavailable, got %v", err)
	}
	if c.Voices() != nil {
		t.Fatal("expected no voices")
	}
}

func TestRestore(t *testing.T) {
	h, ctx := setupCoach(t)

	want := domain.Settings{
		Params: domain.Params{Exercises: 3, ExerciseDuration: 15, Repetitions: 2, PauseDuration: 5},
		Voice:  "en-GB-SoniaNeural",
	}
	if err := h.store.Save(ctx, want); err != nil {
		t.Fatal(err)
	}

	if err := h.coach.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if h.coach.Settings() != want {
		t.Fatalf("expected %+v, got %+v", want, h.coach.Settings())
	}
	if h.speaker.voice != "en-GB-SoniaNeural" {
		t.Fatalf("expected saved voice re-applied, got %q", h.speaker.voice)
	}
}

func TestPlanMatchesBuild(t *testing.T) {
	h, _ := setupCoach(t)
	plan := h.coach.Plan()
	if len(plan) != len(timeline.Build(domain.DefaultParams())) {
		t.Fatalf("plan length mismatch: %d", len(plan))
	}
}
