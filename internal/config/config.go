// Package config loads gridterm settings from the XDG config file, the
// environment, and CLI flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/colorprofile"
	"github.com/pelletier/go-toml/v2"

	"github.com/Gaurav-Gosain/gridterm/pkg/palette"
	"github.com/Gaurav-Gosain/gridterm/pkg/sixel"
)

const configFile = "gridterm/config.toml"

// Config is the user's configuration.
type Config struct {
	Display DisplayConfig `toml:"display"`
	Debug   DebugConfig   `toml:"debug"`
}

// DisplayConfig holds rendering settings.
type DisplayConfig struct {
	TrueColor   *bool `toml:"true_color"`   // Emit 24-bit color sequences. Unset: auto-detect.
	Sixel       *bool `toml:"sixel"`        // Render images as sixel (default: true)
	PaletteSize int   `toml:"palette_size"` // Sixel palette size: 2, 256, 512, 1024, 2048 (default: 1024)
	CacheSize   int   `toml:"cache_size"`   // Sixel payload cache entries (default: 240)
}

// DebugConfig holds diagnostics settings.
type DebugConfig struct {
	Trace   bool   `toml:"trace"`    // Log every parser state transition
	LogFile string `toml:"log_file"` // Log destination; empty discards logs
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			PaletteSize: palette.DefaultSize,
			CacheSize:   sixel.DefaultCacheCapacity,
		},
	}
}

// Load reads the config file, creating a default one on first run, then
// applies GRIDTERM_* environment overrides.
func Load() (*Config, error) {
	cfg, err := loadFile()
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile() (*Config, error) {
	configPath, err := xdg.SearchConfigFile(configFile)
	if err != nil {
		return createDefaultConfig()
	}

	// #nosec G304 - configPath comes from XDG search, reading user config is intentional
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Display.PaletteSize == 0 {
		cfg.Display.PaletteSize = palette.DefaultSize
	}
	if cfg.Display.CacheSize == 0 {
		cfg.Display.CacheSize = sixel.DefaultCacheCapacity
	}
	return cfg, nil
}

// createDefaultConfig writes a commented default config file on first run.
func createDefaultConfig() (*Config, error) {
	cfg := DefaultConfig()

	configPath, err := xdg.ConfigFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	header := "# gridterm configuration\n" +
		"#\n" +
		"# [display]\n" +
		"# true_color: emit 24-bit color sequences (default: auto-detect)\n" +
		"# sixel: render images as sixel graphics (default: true)\n" +
		"# palette_size: sixel colors, one of 2, 256, 512, 1024, 2048 (default: 1024)\n" +
		"# cache_size: encoded sixel rows kept for reuse (default: 240)\n" +
		"#\n" +
		"# [debug]\n" +
		"# trace: log parser state transitions\n" +
		"# log_file: where logs go; empty discards them\n\n"

	if err := os.WriteFile(configPath, append([]byte(header), data...), 0600); err != nil {
		return nil, fmt.Errorf("failed to write config file: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays GRIDTERM_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v, ok := envBool("GRIDTERM_TRUECOLOR"); ok {
		cfg.Display.TrueColor = &v
	}
	if v, ok := envBool("GRIDTERM_SIXEL"); ok {
		cfg.Display.Sixel = &v
	}
	if v, ok := envInt("GRIDTERM_PALETTE"); ok {
		cfg.Display.PaletteSize = v
	}
	if v, ok := envInt("GRIDTERM_CACHE"); ok {
		cfg.Display.CacheSize = v
	}
	if v, ok := envBool("GRIDTERM_DEBUG"); ok {
		cfg.Debug.Trace = v
	}
}

func envBool(name string) (bool, bool) {
	s, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return v, true
}

func envInt(name string) (int, bool) {
	s, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func validate(cfg *Config) error {
	switch cfg.Display.PaletteSize {
	case palette.Size2, palette.Size256, palette.Size512,
		palette.Size1024, palette.Size2048:
	default:
		return fmt.Errorf("config: palette_size must be 2, 256, 512, 1024, or 2048, got %d",
			cfg.Display.PaletteSize)
	}
	if cfg.Display.CacheSize < 0 {
		return fmt.Errorf("config: cache_size must not be negative, got %d",
			cfg.Display.CacheSize)
	}
	return nil
}

// TrueColorEnabled resolves the truecolor setting, auto-detecting from the
// terminal environment when unset.
func (c *Config) TrueColorEnabled() bool {
	if c.Display.TrueColor != nil {
		return *c.Display.TrueColor
	}
	return colorprofile.Detect(os.Stdout, os.Environ()) == colorprofile.TrueColor
}

// SixelEnabled resolves the sixel setting; the default is on.
func (c *Config) SixelEnabled() bool {
	if c.Display.Sixel != nil {
		return *c.Display.Sixel
	}
	return true
}
