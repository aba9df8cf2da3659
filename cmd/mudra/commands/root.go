package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
	// configLoadErr is reported by GetConfig so that commands which never
	// read the config, like 'mudra version', still run.
	configLoadErr error
)

var rootCmd = &cobra.Command{
	Use:   "mudra",
	Short: "Control Spotify playback with hand gestures",
	Long: `mudra - control Spotify playback with hand gestures in front of a webcam.

Gestures:
  open palm    play / pause
  thumb right  next track
  thumb left   previous track
  thumb up     volume +10
  thumb down   volume -10

Credentials are read from SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET and
SPOTIFY_REDIRECT_URI (SPOTIPY_* names are accepted too), from the
secrets.env file, or from the spotify section of the config file.

Examples:
  # Authorize once, then start gesture control
  mudra auth
  mudra run

  # Run without the preview window
  mudra run --no-window`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/mudra/config.yaml)")
}

func initConfig() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	globalConfig, configLoadErr = nil, nil
	path, err := resolveConfigPath()
	if err != nil {
		configLoadErr = err
		return
	}
	cfg, err := config.Load(path)
	if err != nil {
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

// GetConfig returns the global configuration.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		return nil, fmt.Errorf("config not available")
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}

// openStore opens the database named by the config.
func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}
	st, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	slog.Debug("opened store", "path", path)
	return st, nil
}
