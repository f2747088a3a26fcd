package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Compile-time interface check.
var _ domain.SettingsStore = (*YAMLStore)(nil)

const settingsFileName = "settings.yaml"

// yamlSettings is the on-disk shape. Pointers tell "absent" apart from an
// explicit zero, which is a legal value for every session field.
type yamlSettings struct {
	Exercises        *int   `yaml:"exercises,omitempty"`
	ExerciseDuration *int   `yaml:"exercise_duration_seconds,omitempty"`
	Repetitions      *int   `yaml:"repetitions,omitempty"`
	PauseDuration    *int   `yaml:"pause_duration_seconds,omitempty"`
	Voice            string `yaml:"voice,omitempty"`
	Preset           string `yaml:"preset,omitempty"`
}

// YAMLStore persists settings to a YAML file.
type YAMLStore struct {
	mu   sync.Mutex
	path string
	log  *logger.Logger
}

// NewYAMLStore creates a store backed by the file at path. The file and
// its directory are created on first Save.
func NewYAMLStore(path string, log *logger.Logger) *YAMLStore {
	return &YAMLStore{path: path, log: log}
}

// DefaultSettingsPath resolves <user config dir>/<appName>/settings.yaml.
func DefaultSettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// Path returns the backing file.
func (s *YAMLStore) Path() string { return s.path }

// Load reads settings from disk. A missing file yields the defaults;
// fields absent from the file keep their defaults too.
func (s *YAMLStore) Load(ctx context.Context) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("settings: %s not found, using defaults", s.path)
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var file yamlSettings
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYAMLSettings(&settings, file)
	s.log.Debug("settings: loaded %s (%s)", s.path, settings.Params)
	return settings, nil
}

// Save writes settings to disk, creating the directory if needed.
func (s *YAMLStore) Save(ctx context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	p := settings.Params.Normalized()
	file := yamlSettings{
		Exercises:        &p.Exercises,
		ExerciseDuration: &p.ExerciseDuration,
		Repetitions:      &p.Repetitions,
		PauseDuration:    &p.PauseDuration,
		Voice:            settings.Voice,
		Preset:           settings.Preset,
	}

	serialized, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	if err := os.WriteFile(s.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	s.log.Debug("settings: saved %s", s.path)
	return nil
}

func applyYAMLSettings(settings *domain.Settings, file yamlSettings) {
	if file.Exercises != nil {
		settings.Params.Exercises = max(*file.Exercises, 0)
	}
	if file.ExerciseDuration != nil {
		settings.Params.ExerciseDuration = max(*file.ExerciseDuration, 0)
	}
	if file.Repetitions != nil {
		settings.Params.Repetitions = max(*file.Repetitions, 0)
	}
	if file.PauseDuration != nil {
		settings.Params.PauseDuration = max(*file.PauseDuration, 0)
	}
	settings.Voice = file.Voice
	settings.Preset = file.Preset
}
