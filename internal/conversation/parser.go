// Package conversation turns typed or spoken input into intents and shows
// timeline cues on screen.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*KeywordParser)(nil)

// KeywordParser matches user input to intents using keywords and simple
// patterns. Input from the ear arrives already stripped of the wake word.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// setPattern captures "<field> <value>", with an optional leading "set"
// and an optional "to" or "=".
var setPattern = regexp.MustCompile(`(?i)^(?:set\s+)?(exercises?|duration|repetitions|reps|rounds|pause|rest|[edrp])(?:\s+(?:to\s+)?|\s*=\s*)(\S+)$`)

// argPattern captures the argument of "voice <name>" and "preset <name>".
var argPattern = regexp.MustCompile(`(?i)^(voices?|presets?|load)\b\s*(.*)$`)

// NewKeywordParser creates a keyword-based intent parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(start|go|begin|let'?s go|start( the)? session)[.!]?$`), domain.IntentStart},
		{regexp.MustCompile(`(?i)^(stop|abort|cancel|end|halt|stop( the)? session)[.!]?$`), domain.IntentStop},
		{regexp.MustCompile(`(?i)^(status|where|progress|info|how long)\??$`), domain.IntentStatus},
		{regexp.MustCompile(`(?i)^(repeat|again|what\??|say that again|come again)$`), domain.IntentRepeat},
		{regexp.MustCompile(`(?i)^(plan|preview|timeline|show plan)$`), domain.IntentPlan},
		{regexp.MustCompile(`(?i)^(help|h|\?|commands)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q|bye)[.!]?$`), domain.IntentQuit},
	}
	return p
}

// Parse converts user input into an intent. It never fails; input that
// matches nothing comes back as IntentUnknown carrying the input.
func (p *KeywordParser) Parse(ctx context.Context, input string, session *domain.Session) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched intent: %s", rule.intent)
			return &domain.Intent{Type: rule.intent}, nil
		}
	}

	if m := argPattern.FindStringSubmatch(trimmed); m != nil {
		intent := domain.IntentPreset
		if strings.HasPrefix(strings.ToLower(m[1]), "voice") {
			intent = domain.IntentVoice
		}
		return &domain.Intent{Type: intent, Payload: strings.TrimSpace(m[2])}, nil
	}

	if m := setPattern.FindStringSubmatch(trimmed); m != nil {
		payload := strings.ToLower(m[1]) + " " + m[2]
		return &domain.Intent{Type: domain.IntentSet, Payload: payload}, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
}

// SplitSet splits an IntentSet payload into field and raw value.
func SplitSet(payload string) (field, value string) {
	field, value, _ = strings.Cut(strings.TrimSpace(payload), " ")
	return field, strings.TrimSpace(value)
}
