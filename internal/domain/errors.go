package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound         = errors.New("not found")
	ErrNoSession        = errors.New("no session running")
	ErrUnknownVoice     = errors.New("unknown voice")
	ErrUnknownField     = errors.New("unknown session field")
	ErrAudioUnavailable = errors.New("audio output unavailable")
	ErrNotImplemented   = errors.New("not implemented")
)
