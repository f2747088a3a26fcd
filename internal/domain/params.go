package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Params are the four numbers a session is built from. Durations are
// whole seconds.
type Params struct {
	Exercises        int // E
	ExerciseDuration int // D, seconds
	Repetitions      int // R
	PauseDuration    int // P, seconds
}

// DefaultParams mirrors the form values shown on first launch.
func DefaultParams() Params {
	return Params{
		Exercises:        5,
		ExerciseDuration: 30,
		Repetitions:      3,
		PauseDuration:    60,
	}
}

// Upper bounds for each field. They keep a timeline to a few tens of
// thousands of cues and its offsets well inside time.Duration.
const (
	MaxCount   = 100   // exercises or repetitions
	MaxSeconds = 86400 // exercise or pause duration
)

// Normalized returns a copy with every field clamped to [0, its maximum].
func (p Params) Normalized() Params {
	return Params{
		Exercises:        clamp(p.Exercises, MaxCount),
		ExerciseDuration: clamp(p.ExerciseDuration, MaxSeconds),
		Repetitions:      clamp(p.Repetitions, MaxCount),
		PauseDuration:    clamp(p.PauseDuration, MaxSeconds),
	}
}

func clamp(n, hi int) int { return min(max(n, 0), hi) }

// Total returns the nominal session length.
func (p Params) Total() time.Duration {
	p = p.Normalized()
	secs := p.Repetitions*p.Exercises*p.ExerciseDuration + max(p.Repetitions-1, 0)*p.PauseDuration
	return time.Duration(secs) * time.Second
}

// String returns a compact summary like "5x30s x3, pause 60s".
func (p Params) String() string {
	return fmt.Sprintf("%dx%ds x%d, pause %ds", p.Exercises, p.ExerciseDuration, p.Repetitions, p.PauseDuration)
}

// Field names accepted by Set.
const (
	FieldExercises        = "exercises"
	FieldExerciseDuration = "duration"
	FieldRepetitions      = "repetitions"
	FieldPauseDuration    = "pause"
)

// CanonicalField maps a field name or alias ("reps", "d", "rest") to
// one of the Field constants.
func CanonicalField(field string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case FieldExercises, "exercise", "e":
		return FieldExercises, true
	case FieldExerciseDuration, "d":
		return FieldExerciseDuration, true
	case FieldRepetitions, "reps", "rounds", "r":
		return FieldRepetitions, true
	case FieldPauseDuration, "rest", "p":
		return FieldPauseDuration, true
	}
	return "", false
}

// Set assigns one field by name from raw user input. The value goes
// through ParseCount, so junk becomes zero rather than an error, and is
// capped at the field's maximum.
func (p *Params) Set(field, raw string) error {
	name, ok := CanonicalField(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	n := ParseCount(raw)
	switch name {
	case FieldExercises:
		p.Exercises = clamp(n, MaxCount)
	case FieldExerciseDuration:
		p.ExerciseDuration = clamp(n, MaxSeconds)
	case FieldRepetitions:
		p.Repetitions = clamp(n, MaxCount)
	case FieldPauseDuration:
		p.PauseDuration = clamp(n, MaxSeconds)
	}
	return nil
}

// Field returns the value of a canonical field name, or 0.
func (p Params) Field(name string) int {
	switch name {
	case FieldExercises:
		return p.Exercises
	case FieldExerciseDuration:
		return p.ExerciseDuration
	case FieldRepetitions:
		return p.Repetitions
	case FieldPauseDuration:
		return p.PauseDuration
	}
	return 0
}

// ParseCount converts user input into a non-negative whole number.
// Anything that is not a number, and any negative number, yields 0.
// Fractional input is truncated.
func ParseCount(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return min(max(n, 0), math.MaxInt32)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// ParamsFromStrings builds normalized Params from four raw form values.
func ParamsFromStrings(exercises, duration, repetitions, pause string) Params {
	return Params{
		Exercises:        ParseCount(exercises),
		ExerciseDuration: ParseCount(duration),
		Repetitions:      ParseCount(repetitions),
		PauseDuration:    ParseCount(pause),
	}.Normalized()
}
