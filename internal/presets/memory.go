// Package presets provides built-in session parameter sets.
package presets

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Compile-time interface check.
var _ domain.PresetSource = (*MemorySource)(nil)

// MemorySource holds presets in memory. Safe for concurrent reads.
type MemorySource struct {
	mu      sync.RWMutex
	presets map[string]*domain.Preset
	log     *logger.Logger
}

// NewMemorySource creates a preset source preloaded with the built-ins.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := &MemorySource{
		presets: make(map[string]*domain.Preset),
		log:     log,
	}
	src.seed()
	return src
}

// List returns all presets sorted by name.
func (s *MemorySource) List(ctx context.Context) ([]domain.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing all presets, count=%d", len(s.presets))

	out := make([]domain.Preset, 0, len(s.presets))
	for _, p := range s.presets {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a preset by ID. Names work too: "Box breathing" finds
// "box-breathing".
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.presets[id]; ok {
		cp := *p
		return &cp, nil
	}
	slug := slugify(id)
	for _, p := range s.presets {
		if p.ID == slug || slugify(p.Name) == slug {
			cp := *p
			return &cp, nil
		}
	}
	s.log.Debug("preset not found: %s", id)
	return nil, domain.ErrNotFound
}

// Add registers or replaces a preset.
func (s *MemorySource) Add(ctx context.Context, preset domain.Preset) error {
	if preset.ID == "" {
		preset.ID = slugify(preset.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presets[preset.ID] = &preset
	s.log.Info("preset registered: %s (%s)", preset.Name, preset.Params)
	return nil
}

// Search returns presets whose name, description or tags contain the
// query, sorted by name.
func (s *MemorySource) Search(ctx context.Context, query string) ([]domain.Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	s.log.Debug("searching presets for: %s", q)

	var out []domain.Preset
	for _, p := range s.presets {
		if matches(p, q) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func matches(p *domain.Preset, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// slugify lowercases and joins words with dashes.
func slugify(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// seed populates the source with built-in presets.
func (s *MemorySource) seed() {
	for _, p := range builtin() {
		s.presets[p.ID] = p
	}
	s.log.Debug("seeded %d presets", len(s.presets))
}

func builtin() []*domain.Preset {
	return []*domain.Preset{
		{
			ID:          "sun-salutation",
			Name:        "Sun salutation",
			Description: "Five poses held for thirty seconds, three rounds with a minute of rest.",
			Params:      domain.DefaultParams(),
			Tags:        []string{"yoga", "morning", "stretch"},
		},
		{
			ID:          "hiit",
			Name:        "HIIT",
			Description: "Eight hard twenty-second efforts, four rounds, short recovery.",
			Params:      domain.Params{Exercises: 8, ExerciseDuration: 20, Repetitions: 4, PauseDuration: 10},
			Tags:        []string{"cardio", "intervals", "workout"},
		},
		{
			ID:          "box-breathing",
			Name:        "Box breathing",
			Description: "Four sixteen-second breathing boxes, five rounds with a calm pause.",
			Params:      domain.Params{Exercises: 4, ExerciseDuration: 16, Repetitions: 5, PauseDuration: 20},
			Tags:        []string{"meditation", "breathing", "calm"},
		},
		{
			ID:          "plank-ladder",
			Name:        "Plank ladder",
			Description: "One long plank per round, six rounds.",
			Params:      domain.Params{Exercises: 1, ExerciseDuration: 60, Repetitions: 6, PauseDuration: 30},
			Tags:        []string{"core", "workout"},
		},
	}
}
