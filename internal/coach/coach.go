// Package coach runs guided sessions: it builds the timeline from the
// current settings, arms the clock, and tracks how the session ends.
package coach

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
	"github.com/hammamikhairi/ottocoach/internal/speech"
	"github.com/hammamikhairi/ottocoach/internal/timeline"
	"github.com/hammamikhairi/ottocoach/internal/timer"
)

// Compile-time interface check.
var _ domain.Presenter = (*Coach)(nil)

// Speaker says coach lines that are not part of a timeline.
// *speech.SpeakingAnnouncer implements it.
type Speaker interface {
	Say(ctx context.Context, text string)
	Interrupt()
	Prefetch(ctx context.Context, sentences ...string)
}

// VoiceSelector switches the coach's voice.
// *speech.SpeakingAnnouncer implements it.
type VoiceSelector interface {
	SelectVoice(ctx context.Context, name string) (string, error)
	Voices() []string
}

// Option configures the coach.
type Option func(*Coach)

// WithSpeaker sets where coach lines are spoken.
func WithSpeaker(s Speaker) Option {
	return func(c *Coach) {
		c.speaker = s
	}
}

// WithVoiceSelector enables voice switching.
func WithVoiceSelector(v VoiceSelector) Option {
	return func(c *Coach) {
		c.voices = v
	}
}

// WithPresenter sets the display the remaining-seconds readout is
// forwarded to.
func WithPresenter(p domain.Presenter) Option {
	return func(c *Coach) {
		c.presenter = p
	}
}

// WithClockOptions passes options through to the playback clock.
func WithClockOptions(opts ...timer.ClockOption) Option {
	return func(c *Coach) {
		c.clockOpts = append(c.clockOpts, opts...)
	}
}

// WithTickInterval sets the supervisor's polling interval.
func WithTickInterval(d time.Duration) Option {
	return func(c *Coach) {
		c.supervisorOpts = append(c.supervisorOpts, timer.WithTickInterval(d))
	}
}

// Coach owns the playback clock and the single current session.
type Coach struct {
	presets   domain.PresetSource
	store     domain.SettingsStore
	log       *logger.Logger
	speaker   Speaker
	voices    VoiceSelector
	presenter domain.Presenter
	runner    *timer.Supervisor

	clockOpts      []timer.ClockOption
	supervisorOpts []timer.Option

	// opMu serializes Start and Stop. It is never taken from clock
	// callbacks, so holding it while calling into the runner is safe.
	opMu sync.Mutex

	mu        sync.Mutex
	settings  domain.Settings
	session   *domain.Session
	remaining string
}

// New creates a coach. announcer receives timeline cues; presets and
// store may be nil.
func New(announcer domain.Announcer, presets domain.PresetSource, store domain.SettingsStore, log *logger.Logger, opts ...Option) *Coach {
	c := &Coach{
		presets:  presets,
		store:    store,
		log:      log,
		settings: domain.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(c)
	}

	clock := timer.NewClock(announcer, c, log.With("component", "clock"), c.clockOpts...)
	c.supervisorOpts = append(c.supervisorOpts, timer.WithOnCancel(c.sessionCancelled))
	c.runner = timer.New(clock, log, c.supervisorOpts...)
	return c
}

// Restore loads the saved settings and re-applies the saved voice.
func (c *Coach) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	settings, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()

	if settings.Voice != "" && c.voices != nil {
		if _, err := c.voices.SelectVoice(ctx, settings.Voice); err != nil {
			c.log.Warn("saved voice %q unavailable: %v", settings.Voice, err)
		}
	}
	c.log.Info("settings restored (%s)", settings.Params)
	return nil
}

// Settings returns the current form values.
func (c *Coach) Settings() domain.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Plan builds the timeline for the current settings without running it.
func (c *Coach) Plan() []domain.Cue {
	return timeline.Build(c.Settings().Params)
}

// Start begins a session with the current settings.
func (c *Coach) Start(ctx context.Context) (*domain.Session, error) {
	return c.StartWith(ctx, c.Settings().Params)
}

// StartWith begins a session with explicit params. Starting while a
// session runs replaces it; the old one is recorded as aborted. ctx bounds
// the session: cancelling it stops the polling loop.
func (c *Coach) StartWith(ctx context.Context, params domain.Params) (*domain.Session, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	params = params.Normalized()
	cues := timeline.Build(params)

	// Disarm first so the old timeline cannot report completion for the
	// session that replaces it.
	c.runner.Disarm()

	now := time.Now()
	c.mu.Lock()
	if prev := c.session; prev != nil && prev.Status == domain.SessionRunning {
		prev.Status = domain.SessionAborted
		prev.EndedAt = now
		c.log.Info("session %s replaced", prev.ID)
	}
	if c.settings.Params != params {
		c.settings.Params = params
		c.settings.Preset = ""
	}
	session := &domain.Session{
		ID:        uuid.NewString(),
		Params:    params,
		Preset:    c.settings.Preset,
		Cues:      len(cues),
		Status:    domain.SessionRunning,
		StartedAt: now,
	}
	c.session = session
	c.remaining = ""
	settings := c.settings
	c.mu.Unlock()

	c.saveSettings(ctx, settings)

	if c.speaker != nil {
		c.speaker.Prefetch(ctx, timeline.Texts(cues)...)
	}

	c.runner.Arm(ctx, cues)
	c.log.Info("started session %s (%s, %d cues, %s)", session.ID, params, len(cues), params.Total())

	cp := *session
	return &cp, nil
}

// StartPreset loads a preset and starts it.
func (c *Coach) StartPreset(ctx context.Context, id string) (*domain.Session, error) {
	if _, err := c.ApplyPreset(ctx, id); err != nil {
		return nil, err
	}
	return c.Start(ctx)
}

// Stop aborts the running session and says so.
func (c *Coach) Stop(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	running := c.session != nil && c.session.Status == domain.SessionRunning
	c.mu.Unlock()
	if !running {
		return domain.ErrNoSession
	}

	c.runner.Disarm()

	c.mu.Lock()
	// The timeline may have finished between the check and the disarm.
	aborted := c.session.Status == domain.SessionRunning
	if aborted {
		c.session.Status = domain.SessionAborted
		c.session.EndedAt = time.Now()
	}
	id := c.session.ID
	c.mu.Unlock()

	if !aborted {
		return domain.ErrNoSession
	}

	if c.speaker != nil {
		c.speaker.Interrupt()
		c.speaker.Say(ctx, speech.LineAborted())
	}
	c.log.Info("session %s aborted", id)
	return nil
}

// Running reports whether a session is in progress.
func (c *Coach) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.Status == domain.SessionRunning
}

// Status is a snapshot of the current or last session.
type Status struct {
	Session   domain.Session
	Elapsed   time.Duration
	Total     time.Duration
	Remaining string // seconds to the next announcement, "" when none
}

// Status returns the current or most recent session.
func (c *Coach) Status() (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return Status{}, domain.ErrNoSession
	}
	return Status{
		Session:   *c.session,
		Elapsed:   c.session.Elapsed(time.Now()),
		Total:     c.session.Params.Total(),
		Remaining: c.remaining,
	}, nil
}

// SetField updates one session parameter from raw user input.
func (c *Coach) SetField(ctx context.Context, field, raw string) (domain.Params, error) {
	c.mu.Lock()
	params := c.settings.Params
	if err := params.Set(field, raw); err != nil {
		c.mu.Unlock()
		return c.Settings().Params, err
	}
	c.settings.Params = params
	c.settings.Preset = ""
	settings := c.settings
	c.mu.Unlock()

	c.log.Debug("field %s set from %q (%s)", field, raw, params)
	c.saveSettings(ctx, settings)
	return params, nil
}

// ApplyPreset copies a preset's params into the settings.
func (c *Coach) ApplyPreset(ctx context.Context, id string) (*domain.Preset, error) {
	if c.presets == nil {
		return nil, domain.ErrNotFound
	}
	preset, err := c.presets.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("preset %q: %w", id, err)
	}

	c.mu.Lock()
	c.settings.Params = preset.Params
	c.settings.Preset = preset.ID
	settings := c.settings
	c.mu.Unlock()

	c.log.Info("preset %s applied (%s)", preset.ID, preset.Params)
	c.saveSettings(ctx, settings)
	return preset, nil
}

// Presets lists the available presets.
func (c *Coach) Presets(ctx context.Context) ([]domain.Preset, error) {
	if c.presets == nil {
		return nil, nil
	}
	return c.presets.List(ctx)
}

// Voices lists the selectable voices.
func (c *Coach) Voices() []string {
	if c.voices == nil {
		return nil
	}
	return c.voices.Voices()
}

// SelectVoice switches voices and remembers the choice.
func (c *Coach) SelectVoice(ctx context.Context, name string) (string, error) {
	if c.voices == nil {
		return "", fmt.Errorf("%w: voice output disabled", domain.ErrAudioUnavailable)
	}
	voice, err := c.voices.SelectVoice(ctx, name)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.settings.Voice = voice
	settings := c.settings
	c.mu.Unlock()

	c.saveSettings(ctx, settings)
	return voice, nil
}

// Say speaks a coach line, if a speaker is configured.
func (c *Coach) Say(ctx context.Context, text string) {
	if c.speaker != nil {
		c.speaker.Say(ctx, text)
	}
}

// Shutdown stops any running session without announcing it.
func (c *Coach) Shutdown() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.runner.Disarm()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.session.Status == domain.SessionRunning {
		c.session.Status = domain.SessionAborted
		c.session.EndedAt = time.Now()
	}
}

// DisplayRemaining records the readout and forwards it. Called by the
// clock with its lock held.
func (c *Coach) DisplayRemaining(text string) {
	c.mu.Lock()
	c.remaining = text
	c.mu.Unlock()
	if c.presenter != nil {
		c.presenter.DisplayRemaining(text)
	}
}

// SessionEnded marks the running session completed and forwards the
// signal. Called by the clock with its lock held.
func (c *Coach) SessionEnded() {
	c.mu.Lock()
	if c.session != nil && c.session.Status == domain.SessionRunning {
		c.session.Status = domain.SessionCompleted
		c.session.EndedAt = time.Now()
		c.log.Info("session %s completed after %s", c.session.ID, c.session.Elapsed(c.session.EndedAt).Round(time.Second))
	}
	c.remaining = ""
	c.mu.Unlock()

	if c.presenter != nil {
		c.presenter.SessionEnded()
	}
}

// sessionCancelled marks the running session aborted when the context it
// was started with is cancelled. Called by the supervisor.
func (c *Coach) sessionCancelled() {
	c.mu.Lock()
	if c.session != nil && c.session.Status == domain.SessionRunning {
		c.session.Status = domain.SessionAborted
		c.session.EndedAt = time.Now()
		c.log.Info("session %s cancelled", c.session.ID)
	}
	c.remaining = ""
	c.mu.Unlock()

	if c.presenter != nil {
		c.presenter.DisplayRemaining("")
	}
}

func (c *Coach) saveSettings(ctx context.Context, settings domain.Settings) {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ctx, settings); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Error("saving settings: %v", err)
	}
}
