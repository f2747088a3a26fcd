// OttoCoach, a spoken interval coach for workouts and meditation.
//
// Usage:
//
//	ottocoach run [--no-speech] [--voice]
//	ottocoach plan [-e 5 -d 30 -r 3 -p 60 | --preset hiit]
//	ottocoach voices
//	ottocoach presets
package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
	"github.com/hammamikhairi/ottocoach/internal/storage"
)

const appName = "ottocoach"

var (
	verbose      bool
	quiet        bool
	logFile      string
	settingsPath string
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "OttoCoach - a spoken interval coach",
	Long: "OttoCoach runs timed exercise sessions: it counts down to each change, " +
		"chimes, and announces the next exercise or pause out loud.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose/debug logging")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "disable all logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", ".ottocoach-logs/ottocoach.log", "file to write logs to (use \"stderr\" to log to console)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings file (default: user config dir)")
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogger builds the application logger from the persistent flags.
// Logs go to a file by default so the terminal UI stays clean. The
// returned closer must be called on exit.
func setupLogger() (*logger.Logger, func()) {
	level := logger.LevelNormal
	if verbose {
		level = logger.LevelVerbose
	}
	if quiet {
		level = logger.LevelOff
	}

	closer := func() {}
	var out io.Writer = os.Stderr
	if logFile != "" && logFile != "stderr" {
		if dir := filepath.Dir(logFile); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", logFile, err)
		} else {
			out = f
			closer = func() { f.Close() }
		}
	}

	// Third-party libs such as the whisper transcriber use the standard
	// log package; keep them off the terminal too.
	stdlog.SetOutput(out)
	stdlog.SetFlags(stdlog.Ltime)

	return logger.New(level, out), closer
}

// openSettings returns the YAML settings store, or an in-memory one when
// no config directory can be resolved.
func openSettings(log *logger.Logger) domain.SettingsStore {
	path := settingsPath
	if path == "" {
		p, err := storage.DefaultSettingsPath(appName)
		if err != nil {
			log.Warn("no config directory, settings will not persist: %v", err)
			return storage.NewMemoryStore(log)
		}
		path = p
	}
	log.Debug("settings file: %s", path)
	return storage.NewYAMLStore(path, log)
}
