package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"viamboard"
)

const (
	// ConfigFileName is the base name of the configuration file.
	ConfigFileName = "boardfinder"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "BOARDFINDER"
)

// Config is everything the CLI reads from file, environment and flags.
type Config struct {
	LogLevel string             `mapstructure:"log_level"`
	Board    string             `mapstructure:"board"`
	Tunables viamboard.Tunables `mapstructure:"tunables"`
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return c.Tunables.Validate()
}

// Loader reads Config through viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on top of v.
func NewLoader(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// Load reads configFile, or searches the default locations when it is empty.
// A missing config file in the default locations is not an error.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "boardfinder"))
	}
	l.v.AddConfigPath("/etc/boardfinder")
}

func (l *Loader) setDefaults() {
	d := viamboard.DefaultTunables()

	l.v.SetDefault("log_level", "info")
	l.v.SetDefault("board", "board.json")

	l.v.SetDefault("tunables.working_size", d.WorkingSize)
	l.v.SetDefault("tunables.sharpen_sigma", d.SharpenSigma)
	l.v.SetDefault("tunables.sharpen_amount", *d.SharpenAmount)
	l.v.SetDefault("tunables.sharpen_threshold", d.SharpenThreshold)
	l.v.SetDefault("tunables.threshold_block_size", d.ThresholdBlockSize)
	l.v.SetDefault("tunables.threshold_c", *d.ThresholdC)
	l.v.SetDefault("tunables.approx_epsilon", d.ApproxEpsilon)
	l.v.SetDefault("tunables.edge_offset", d.EdgeOffset)
	l.v.SetDefault("tunables.canny_low", d.CannyLow)
	l.v.SetDefault("tunables.canny_high", d.CannyHigh)
	l.v.SetDefault("tunables.hough_theta_step", d.HoughThetaStep)
	l.v.SetDefault("tunables.hough_votes", d.HoughVotes)
	l.v.SetDefault("tunables.segment_reach", d.SegmentReach)
	l.v.SetDefault("tunables.dedupe_radius", d.DedupeRadius)
	l.v.SetDefault("tunables.row_tolerance", d.RowTolerance)
	l.v.SetDefault("tunables.roi_inset", d.ROIInset)
}
