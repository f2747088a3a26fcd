package conversation

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Compile-time interface check.
var _ domain.Announcer = (*CLIAnnouncer)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of both fmt.Printf and display.UI.Printf.
type PrintFunc func(format string, a ...interface{})

// CLIAnnouncer writes timeline cues to the terminal. Countdown numerals
// are yellow, announcements bold cyan. The chime has no text form and
// is only logged.
type CLIAnnouncer struct {
	log     *logger.Logger
	printFn PrintFunc
}

// NewCLIAnnouncer creates a terminal announcer.
// If printFn is nil, fmt.Printf is used.
func NewCLIAnnouncer(log *logger.Logger, printFn PrintFunc) *CLIAnnouncer {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &CLIAnnouncer{log: log, printFn: printFn}
}

// SpeakShort prints a countdown numeral.
func (a *CLIAnnouncer) SpeakShort(ctx context.Context, numeral string) error {
	a.printFn("  %s%s...%s", yellow, numeral, reset)
	return nil
}

// SpeakSentence prints an announcement.
func (a *CLIAnnouncer) SpeakSentence(ctx context.Context, text string) error {
	a.log.Debug("announce: %s", text)
	a.printFn("%s%s%s%s", cyan, bold, text, reset)
	return nil
}

// PlayChime logs the chime.
func (a *CLIAnnouncer) PlayChime(ctx context.Context) error {
	a.log.Debug("announce: chime")
	return nil
}
