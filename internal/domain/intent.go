package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentStart
	IntentStop
	IntentStatus
	IntentRepeat
	IntentSet      // payload "field value"
	IntentVoice    // payload voice name, empty lists voices
	IntentPreset   // payload preset ID, empty lists presets
	IntentPlan     // print the timeline without running it
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentStart:
		return "start"
	case IntentStop:
		return "stop"
	case IntentStatus:
		return "status"
	case IntentRepeat:
		return "repeat"
	case IntentSet:
		return "set"
	case IntentVoice:
		return "voice"
	case IntentPreset:
		return "preset"
	case IntentPlan:
		return "plan"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string
}
