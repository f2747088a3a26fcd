package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottocoach/internal/coach"
	"github.com/hammamikhairi/ottocoach/internal/conversation"
	"github.com/hammamikhairi/ottocoach/internal/display"
	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
	"github.com/hammamikhairi/ottocoach/internal/presets"
	"github.com/hammamikhairi/ottocoach/internal/speech"
)

var (
	runNoSpeech     bool
	runNoCueText    bool
	runDiskCache    bool
	runCacheDir     string
	runVoice        bool
	runWhisperBin   string
	runWhisperModel string
	runRecordSecs   int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive coach",
	Long: `Start the interactive coach in the terminal.

Type commands at the prompt, or enable voice input and say "hey coach"
followed by a command. Type 'help' for the command list.

Examples:
  # Spoken cues when Azure speech keys are set
  ottocoach run

  # On-screen cues only
  ottocoach run --no-speech

  # Hands-free commands through a local whisper model
  ottocoach run --voice --whisper-model bin/ggml-small.bin
`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runNoSpeech, "no-speech", false, "disable text-to-speech even if Azure keys are set")
	runCmd.Flags().BoolVar(&runNoCueText, "no-cue-text", false, "do not print timeline cues on screen")
	runCmd.Flags().BoolVar(&runDiskCache, "disk-cache", true, "persist TTS audio cache to disk (reads from disk even when false)")
	runCmd.Flags().StringVar(&runCacheDir, "cache-dir", ".ottocoach-cache", "directory for persistent TTS audio cache")
	runCmd.Flags().BoolVar(&runVoice, "voice", false, "enable voice input via local Whisper STT")
	runCmd.Flags().StringVar(&runWhisperBin, "whisper-bin", envOr("WHISPER_BIN", "whisper-cli"), "path to the whisper-cpp CLI binary")
	runCmd.Flags().StringVar(&runWhisperModel, "whisper-model", envOr("WHISPER_MODEL", "bin/ggml-small.bin"), "path to the Whisper GGML model file")
	runCmd.Flags().IntVar(&runRecordSecs, "record-secs", 2, "seconds per voice recording chunk")
	rootCmd.AddCommand(runCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func runRun(cmd *cobra.Command, args []string) error {
	log, closeLog := setupLogger()
	defer closeLog()

	if runVoice {
		if _, err := os.Stat(runWhisperModel); err != nil {
			return fmt.Errorf("whisper model not found at %s", runWhisperModel)
		}
	}

	// Cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ui := display.NewUI()

	var text domain.Announcer
	if !runNoCueText {
		text = conversation.NewCLIAnnouncer(log, ui.Printf)
	}
	voice := buildVoiceOutput(ctx, text, audioConfig{
		disabled:  runNoSpeech,
		cacheDir:  runCacheDir,
		diskCache: runDiskCache,
	}, log)

	opts := []coach.Option{coach.WithPresenter(ui)}
	if voice.speaking != nil {
		opts = append(opts,
			coach.WithSpeaker(voice.speaking),
			coach.WithVoiceSelector(voice.speaking),
		)
	}
	c := coach.New(voice.announcer, presets.NewMemorySource(log), openSettings(log), log, opts...)
	if err := c.Restore(ctx); err != nil {
		log.Error("%v", err)
	}
	defer c.Shutdown()
	ui.SetSummary(c.Settings().Params.String())

	var ear *speech.Ear
	if runVoice {
		_ = os.MkdirAll(".ottocoach-stt", 0o755)
		ear = speech.NewEar(runWhisperBin, runWhisperModel, voice.mouth, log.With("component", "ear"),
			speech.WithRecordDuration(time.Duration(runRecordSecs)*time.Second),
		)
		go ear.Run(ctx)
		log.Info("voice input enabled (bin=%s, model=%s, chunk=%ds)", runWhisperBin, runWhisperModel, runRecordSecs)
	}

	app := &cliApp{
		coach:    c,
		parser:   conversation.NewKeywordParser(log),
		speaking: voice.speaking,
		ear:      ear,
		log:      log,
		ui:       ui,
	}

	fmt.Println(display.RenderBanner())
	if ear != nil {
		fmt.Println(display.BannerStyle.Render("  Voice mode ON: say \"hey coach\" then a command, or type it."))
	}
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	return nil
}

// screen is the part of display.UI the REPL writes to.
type screen interface {
	PrintChat(text string)
	PrintHeader(text string)
	PrintLine(text string)
	PrintHint(text string)
	PrintUrgent(text string)
	PrintVoice(text string)
	InputChan() <-chan string
	SessionStarted()
	SessionStopped()
	SetSummary(text string)
}

type cliApp struct {
	coach    *coach.Coach
	parser   domain.IntentParser
	speaking *speech.SpeakingAnnouncer // nil when TTS is disabled
	ear      *speech.Ear               // nil when voice input is disabled
	log      *logger.Logger
	ui       screen
}

// say prints a coach line and speaks it when TTS is on.
func (a *cliApp) say(ctx context.Context, text string) {
	a.ui.PrintChat(text)
	a.coach.Say(ctx, text)
}

func (a *cliApp) run(ctx context.Context) {
	a.say(ctx, speech.LineWelcome())
	a.ui.PrintHint(fmt.Sprintf("Current settings: %s", a.coach.Settings().Params))

	// A nil channel never receives, so select ignores voice when off.
	var voiceCh <-chan string
	if a.ear != nil {
		voiceCh = a.ear.C()
	}
	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		case input = <-voiceCh:
			a.ui.PrintVoice(input)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		var session *domain.Session
		if st, err := a.coach.Status(); err == nil {
			session = &st.Session
		}

		intent, err := a.parser.Parse(ctx, input, session)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}
		a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)

		if !a.handleIntent(ctx, intent) {
			return
		}
	}
}

// handleIntent runs one command. It returns false when the user quits.
func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	switch intent.Type {
	case domain.IntentStart:
		a.start(ctx)
	case domain.IntentStop:
		a.stop(ctx)
	case domain.IntentStatus:
		a.status(ctx)
	case domain.IntentRepeat:
		a.repeat(ctx)
	case domain.IntentSet:
		a.set(ctx, intent.Payload)
	case domain.IntentVoice:
		a.voice(ctx, intent.Payload)
	case domain.IntentPreset:
		a.preset(ctx, intent.Payload)
	case domain.IntentPlan:
		a.plan()
	case domain.IntentHelp:
		a.help(ctx)
	case domain.IntentQuit:
		a.say(ctx, speech.LineBye())
		return false
	default:
		a.say(ctx, speech.LineUnknown(intent.Payload))
	}
	return true
}

func (a *cliApp) start(ctx context.Context) {
	session, err := a.coach.Start(ctx)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not start: %v", err))
		return
	}
	a.ui.SessionStarted()
	a.ui.PrintHeader(fmt.Sprintf("Session started: %s, %s", session.Params, speech.FormatDurationSpeech(session.Params.Total())))
	if session.Params.Total() == 0 {
		a.ui.PrintHint(speech.LineEmptySession())
	}
}

func (a *cliApp) stop(ctx context.Context) {
	err := a.coach.Stop(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		a.say(ctx, speech.LineNoSession())
		return
	}
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("Could not stop: %v", err))
		return
	}
	a.ui.SessionStopped()
	a.ui.PrintChat(speech.LineAborted())
}

func (a *cliApp) status(ctx context.Context) {
	st, err := a.coach.Status()
	if err != nil || st.Session.Status != domain.SessionRunning {
		a.say(ctx, speech.LineNoSession())
		if err == nil {
			a.ui.PrintHint(fmt.Sprintf("Last session %s after %s.", st.Session.Status, fmtOffset(st.Elapsed)))
		}
		return
	}
	a.say(ctx, speech.LineStatus(st.Elapsed, st.Total, st.Remaining))
}

func (a *cliApp) repeat(ctx context.Context) {
	if a.speaking == nil || !a.speaking.Repeat(ctx) {
		a.say(ctx, speech.LineNothingToRepeat())
	}
}

func (a *cliApp) set(ctx context.Context, payload string) {
	field, raw := conversation.SplitSet(payload)
	params, err := a.coach.SetField(ctx, field, raw)
	if err != nil {
		a.ui.PrintUrgent(err.Error())
		return
	}
	a.ui.SetSummary(params.String())
	name, _ := domain.CanonicalField(field)
	a.say(ctx, speech.LineSettingUpdated(name, params.Field(name)))
	if a.coach.Running() {
		a.ui.PrintHint("The running session keeps its settings; say start to restart with these.")
	}
}

func (a *cliApp) voice(ctx context.Context, name string) {
	if name == "" {
		voices := a.coach.Voices()
		if len(voices) == 0 {
			a.ui.PrintHint("No voices available. Set the Azure speech keys to enable speech.")
			return
		}
		a.ui.PrintHeader("Voices:")
		for _, v := range voices {
			a.ui.PrintLine(v)
		}
		a.ui.PrintHint("Pick one with: voice <name>")
		return
	}

	voice, err := a.coach.SelectVoice(ctx, name)
	switch {
	case errors.Is(err, domain.ErrUnknownVoice):
		a.say(ctx, speech.LineUnknownVoice(name))
	case errors.Is(err, domain.ErrAudioUnavailable):
		a.ui.PrintHint("Speech is off, so there is no voice to change.")
	case err != nil:
		a.ui.PrintUrgent(err.Error())
	default:
		a.ui.PrintChat(speech.LineVoiceIntro())
		a.ui.PrintHint("Voice: " + voice)
	}
}

func (a *cliApp) preset(ctx context.Context, id string) {
	if id == "" {
		list, err := a.coach.Presets(ctx)
		if err != nil {
			a.ui.PrintUrgent(err.Error())
			return
		}
		a.ui.PrintHeader("Presets:")
		for _, p := range list {
			a.ui.PrintLine(fmt.Sprintf("%-16s %s", p.ID, p.Params))
			if p.Description != "" {
				a.ui.PrintHint(p.Description)
			}
		}
		a.ui.PrintHint("Load one with: preset <name>")
		return
	}

	p, err := a.coach.ApplyPreset(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		a.say(ctx, speech.LineUnknownPreset(id))
		return
	}
	if err != nil {
		a.ui.PrintUrgent(err.Error())
		return
	}
	a.ui.SetSummary(p.Params.String())
	a.say(ctx, speech.LinePresetSelected(p.Name))
}

func (a *cliApp) plan() {
	params := a.coach.Settings().Params
	a.ui.PrintHeader(fmt.Sprintf("Plan for %s (%s):", params, fmtOffset(params.Total())))
	for _, c := range a.coach.Plan() {
		if c.Kind == domain.CueAnnouncement {
			a.ui.PrintLine(fmt.Sprintf("%6s  %s", fmtOffset(c.At), c.Spoken()))
		}
	}
}

func (a *cliApp) help(ctx context.Context) {
	a.say(ctx, speech.LineHelp())
	for _, line := range []string{
		"start                 start a session with the current settings",
		"stop                  abort the running session",
		"status                time done and time to the next change",
		"set <field> <n>       exercises, duration, repetitions or pause",
		"preset [name]         list or load a preset",
		"voice [name]          list or pick a voice",
		"plan                  show the announcements of the current settings",
		"repeat                say the last line again",
		"quit                  exit",
	} {
		a.ui.PrintHint(line)
	}
}
