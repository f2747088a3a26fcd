package speech

import (
	"regexp"
	"strings"
)

// Default wake phrases. Whisper often mishears "coach", hence the
// variants.
var defaultWakeWords = []string{
	"hey coach",
	"hey, coach",
	"hey couch",
	"okay coach",
	"hey alfred",
	"alfred",
	"coach",
}

// annotation matches whisper environmental annotations such as
// "(keyboard clicking)", "[laughter]" or "[BLANK_AUDIO]".
var annotation = regexp.MustCompile(`[\(\[][a-zA-Z_][a-zA-Z_\s]*[\)\]]`)

// timestampPrefix matches "[00:00:00.000 --> 00:00:05.000]".
var timestampPrefix = regexp.MustCompile(`^\[[0-9:.]+\s*-->\s*[0-9:.]+\]`)

// whitespace collapses runs of spaces, tabs and newlines.
var whitespace = regexp.MustCompile(`\s+`)

// hallucinations are things whisper produces on silence or music.
var hallucinations = map[string]bool{
	"...":                     true,
	"you":                     true,
	"thank you.":              true,
	"thanks for watching!":    true,
	"thank you for watching.": true,
	"bye.":                    true,
	"bye!":                    true,
	"the end.":                true,
}

// cleanTranscription normalizes whitespace and strips whisper artifacts.
// Returns "" when nothing meaningful is left.
func cleanTranscription(s string) string {
	s = timestampPrefix.ReplaceAllString(strings.TrimSpace(s), "")
	s = annotation.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if hallucinations[strings.ToLower(s)] {
		return ""
	}
	return s
}

// wakeMatch looks for a wake phrase in text. found reports whether one
// was present; command is whatever followed it, trimmed of punctuation.
func wakeMatch(text string, wakeWords []string) (command string, found bool) {
	lower := strings.ToLower(text)
	for _, w := range wakeWords {
		idx := strings.Index(lower, strings.ToLower(w))
		if idx < 0 {
			continue
		}
		// Lowercasing can change byte lengths outside ASCII.
		if idx+len(w) > len(text) {
			return "", true
		}
		rest := text[idx+len(w):]
		return strings.Trim(rest, " ,.!?\n\r\t"), true
	}
	return "", false
}

// stripWakeWords removes every wake phrase from text. Used while actively
// listening, in case the user repeats it mid-sentence.
func stripWakeWords(text string, wakeWords []string) string {
	lower := strings.ToLower(text)
	for _, w := range wakeWords {
		lower = strings.ReplaceAll(lower, strings.ToLower(w), "")
	}
	return strings.Trim(whitespace.ReplaceAllString(lower, " "), " ,.!?")
}
