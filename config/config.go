package config

import (
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// TypingMode selects how key presses reach the target window.
type TypingMode string

const (
	// ModeBuffer accumulates text locally and flushes it with a single
	// clipboard paste on Enter.
	ModeBuffer TypingMode = "buffer"
	// ModeDirect synthesizes every key press into the target immediately.
	ModeDirect TypingMode = "direct"
)

// Config holds all persistent application settings.
type Config struct {
	// Appearance
	BackgroundColor string  `json:"backgroundColor"`
	KeyColor        string  `json:"keyColor"`
	KeyHoverColor   string  `json:"keyHoverColor"`
	TextColor       string  `json:"textColor"`
	Opacity         float64 `json:"opacity"`
	FontFamily      string  `json:"fontFamily"`
	FontSize        int     `json:"fontSize"`

	// Behavior
	TypingMode  TypingMode `json:"typingMode"`
	AlwaysOnTop bool       `json:"alwaysOnTop"`

	// Interface language (empty = auto/system)
	Language string `json:"language"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BackgroundColor: "#1B1B2E",
		KeyColor:        "#282838",
		KeyHoverColor:   "#4157FF",
		TextColor:       "#FFFFFF",
		Opacity:         0.95,
		FontFamily:      "Arial",
		FontSize:        28,
		TypingMode:      ModeBuffer,
		AlwaysOnTop:     true,
		Language:        "",
	}
}

var (
	configPath string
	configMu   sync.RWMutex
	current    Config
)

func init() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	configPath = filepath.Join(configDir, "glasskey", "config.json")

	current = DefaultConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() string {
	configMu.RLock()
	defer configMu.RUnlock()
	return configPath
}

// SetConfigPath overrides the config file location (tests).
func SetConfigPath(path string) {
	configMu.Lock()
	configPath = path
	configMu.Unlock()
}

// Load reads the configuration from disk. A missing file is not an error;
// defaults apply. Invalid values fall back to defaults.
func Load() error {
	configMu.Lock()
	defer configMu.Unlock()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			current = DefaultConfig()
			return nil
		}
		return err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}

	current = sanitize(cfg)
	return nil
}

func sanitize(cfg Config) Config {
	def := DefaultConfig()
	if _, err := ParseHexColor(cfg.BackgroundColor); err != nil {
		cfg.BackgroundColor = def.BackgroundColor
	}
	if _, err := ParseHexColor(cfg.KeyColor); err != nil {
		cfg.KeyColor = def.KeyColor
	}
	if _, err := ParseHexColor(cfg.KeyHoverColor); err != nil {
		cfg.KeyHoverColor = def.KeyHoverColor
	}
	if _, err := ParseHexColor(cfg.TextColor); err != nil {
		cfg.TextColor = def.TextColor
	}
	if cfg.Opacity <= 0 || cfg.Opacity > 1 {
		cfg.Opacity = def.Opacity
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = def.FontFamily
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}
	if cfg.TypingMode != ModeBuffer && cfg.TypingMode != ModeDirect {
		cfg.TypingMode = def.TypingMode
	}
	return cfg
}

// Save writes the current configuration to disk.
func Save() error {
	configMu.RLock()
	cfg := current
	configMu.RUnlock()

	return SaveConfig(cfg)
}

// SaveConfig writes a specific configuration to disk.
func SaveConfig(cfg Config) error {
	configMu.Lock()
	current = cfg
	path := configPath
	configMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Get returns a copy of the current configuration.
func Get() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return current
}

// Set updates the current configuration in memory.
func Set(cfg Config) {
	configMu.Lock()
	current = cfg
	configMu.Unlock()
}

// Update applies a function to modify the current configuration and saves it.
func Update(fn func(*Config)) error {
	configMu.Lock()
	fn(&current)
	cfg := current
	configMu.Unlock()

	return SaveConfig(cfg)
}

// ParseHexColor parses "#RRGGBB" into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xFF,
	}, nil
}

// MustColor is ParseHexColor for values already validated by sanitize.
func MustColor(s string) color.NRGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		return color.NRGBA{A: 0xFF}
	}
	return c
}
