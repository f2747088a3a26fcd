package speech

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hammamikhairi/ottocoach/internal/domain"
)

// Voice is one TTS voice as reported by the voice list endpoint.
type Voice struct {
	ShortName   string `json:"ShortName"`
	DisplayName string `json:"DisplayName"`
	Locale      string `json:"Locale"`
	Gender      string `json:"Gender"`
}

// VoiceRegistry is the lookup table of voices the coach may use. It is
// built once when the session is configured and handed to the announcer.
type VoiceRegistry struct {
	byName map[string]Voice
	names  []string
}

// NewVoiceRegistry keeps the voices whose locale starts with one of the
// given prefixes (all voices when none are given).
func NewVoiceRegistry(voices []Voice, localePrefixes ...string) *VoiceRegistry {
	r := &VoiceRegistry{byName: make(map[string]Voice)}
	for _, v := range voices {
		if v.ShortName == "" || !hasLocale(v.Locale, localePrefixes) {
			continue
		}
		if _, dup := r.byName[v.ShortName]; dup {
			continue
		}
		r.byName[v.ShortName] = v
		r.names = append(r.names, v.ShortName)
	}
	sort.Strings(r.names)
	return r
}

// Names returns the registered voice names, sorted.
func (r *VoiceRegistry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns how many voices are registered.
func (r *VoiceRegistry) Len() int { return len(r.names) }

// Lookup finds a voice by short name, case-insensitively.
func (r *VoiceRegistry) Lookup(name string) (Voice, error) {
	if v, ok := r.byName[name]; ok {
		return v, nil
	}
	for _, n := range r.names {
		if strings.EqualFold(n, name) {
			return r.byName[n], nil
		}
	}
	return Voice{}, fmt.Errorf("%w: %q", domain.ErrUnknownVoice, name)
}

// Default returns the preferred voice if registered, else the first one.
func (r *VoiceRegistry) Default(preferred string) (Voice, bool) {
	if v, err := r.Lookup(preferred); err == nil {
		return v, true
	}
	if len(r.names) == 0 {
		return Voice{}, false
	}
	return r.byName[r.names[0]], true
}

func hasLocale(locale string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(strings.ToLower(locale), strings.ToLower(p)) {
			return true
		}
	}
	return false
}
