package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Window size constants
const (
	defaultWidth  = 1024
	defaultHeight = 768
	minWidth      = 400
	minHeight     = 300
)

// Sort method constants
const (
	SortNatural    = 0 // Natural sort order (e.g., file1, file2, file10)
	SortSimple     = 1 // Simple string sort (lexicographical)
	SortEntryOrder = 2 // Maintain original order (no sort)
)

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

type Config struct {
	WindowWidth  int  `mapstructure:"window_width"`
	WindowHeight int  `mapstructure:"window_height"`
	Fullscreen   bool `mapstructure:"fullscreen"`
	SortMethod   int  `mapstructure:"sort_method"`

	// Cache budget. CacheLimitMB overrides the fraction of available memory.
	CacheMemoryFraction float64 `mapstructure:"cache_memory_fraction"`
	CacheLimitMB        int     `mapstructure:"cache_limit_mb"`
	FallbackCacheMB     int     `mapstructure:"fallback_cache_mb"`

	// Bulk loading
	AsyncLoadThreshold int  `mapstructure:"async_load_threshold"`
	PriorityCount      int  `mapstructure:"priority_count"`
	PreloadEnabled     bool `mapstructure:"preload_enabled"`

	// Navigation and playback
	NavigateDelayMs    int     `mapstructure:"navigate_delay_ms"`
	SpeedBoost         float64 `mapstructure:"speed_boost"`
	MinDelayMs         int     `mapstructure:"min_delay_ms"`
	PlaybackIntervalMs int     `mapstructure:"playback_interval_ms"`

	// Rendering
	QualityDelayMs     int     `mapstructure:"quality_delay_ms"`
	ZoomStep           float64 `mapstructure:"zoom_step"`
	ZoomCooldownMs     int     `mapstructure:"zoom_cooldown_ms"`
	RotateFrames       int     `mapstructure:"rotate_frames"`
	RotateDurationMs   int     `mapstructure:"rotate_duration_ms"`
	AdaptiveBackground bool    `mapstructure:"adaptive_background"`
	HelpFontSize       float64 `mapstructure:"help_font_size"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	Keybindings   map[string][]string `mapstructure:"keybindings"`
	Mousebindings map[string][]string `mapstructure:"mousebindings"`
	Mouse         MouseSettings       `mapstructure:"mouse"`
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "pview.json"
	}
	return filepath.Join(homeDir, ".pview.json")
}

func loadConfig() ConfigLoadResult {
	return loadConfigFromPath(getConfigPath())
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("window_width", defaultWidth)
	v.SetDefault("window_height", defaultHeight)
	v.SetDefault("fullscreen", false)
	v.SetDefault("sort_method", SortNatural)
	v.SetDefault("cache_memory_fraction", 0.4)
	v.SetDefault("cache_limit_mb", 0)
	v.SetDefault("fallback_cache_mb", 512)
	v.SetDefault("async_load_threshold", 30)
	v.SetDefault("priority_count", 3)
	v.SetDefault("preload_enabled", true)
	v.SetDefault("navigate_delay_ms", 50)
	v.SetDefault("speed_boost", 0.90)
	v.SetDefault("min_delay_ms", 30)
	v.SetDefault("playback_interval_ms", 30)
	v.SetDefault("quality_delay_ms", 200)
	v.SetDefault("zoom_step", 1.3)
	v.SetDefault("zoom_cooldown_ms", 50)
	v.SetDefault("rotate_frames", 10)
	v.SetDefault("rotate_duration_ms", 500)
	v.SetDefault("adaptive_background", true)
	v.SetDefault("help_font_size", 20.0)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	mouse := GetDefaultMouseSettings()
	v.SetDefault("mouse.wheel_sensitivity", mouse.WheelSensitivity)
	v.SetDefault("mouse.double_click_time", mouse.DoubleClickTime)
	v.SetDefault("mouse.enable_mouse", mouse.EnableMouse)
	v.SetDefault("mouse.wheel_inverted", mouse.WheelInverted)
	v.SetDefault("mouse.enable_drag_pan", mouse.EnableDragPan)
	v.SetDefault("mouse.drag_threshold", mouse.DragThreshold)
	v.SetDefault("mouse.drag_sensitivity", mouse.DragSensitivity)
}

func defaultConfig() Config {
	v := viper.New()
	setConfigDefaults(v)
	var config Config
	_ = v.Unmarshal(&config)
	config.Keybindings = GetDefaultKeybindings()
	config.Mousebindings = GetDefaultMousebindings()
	return config
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	result := ConfigLoadResult{
		Config:   defaultConfig(),
		Warnings: []string{},
		Status:   "OK",
	}

	v := viper.New()
	setConfigDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	v.SetEnvPrefix("PVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Config file not found is not an error - use defaults
			result.Status = "Default"
		} else {
			Log.Warnf("Invalid config file %s, using defaults: %v", configPath, err)
			result.HasError = true
			result.Status = "Error"
			result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
			return result
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		Log.Warnf("Cannot decode config %s, using defaults: %v", configPath, err)
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config values: %v", err))
		return result
	}

	warnings := validateConfig(&config)
	if len(warnings) > 0 {
		result.Status = "Warning"
		result.Warnings = append(result.Warnings, warnings...)
	}

	result.Config = config
	return result
}

// validateConfig resets out-of-range values to their defaults and returns
// a warning for each binding problem.
func validateConfig(config *Config) []string {
	var warnings []string
	defaults := defaultConfig()

	if config.WindowWidth < minWidth {
		config.WindowWidth = defaultWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaultHeight
	}
	if config.SortMethod < SortNatural || config.SortMethod > SortEntryOrder {
		config.SortMethod = SortNatural
	}
	if config.CacheMemoryFraction <= 0 || config.CacheMemoryFraction > 0.9 {
		config.CacheMemoryFraction = defaults.CacheMemoryFraction
	}
	if config.CacheLimitMB < 0 {
		config.CacheLimitMB = 0
	}
	if config.FallbackCacheMB < 16 {
		config.FallbackCacheMB = defaults.FallbackCacheMB
	}
	if config.AsyncLoadThreshold < 0 {
		config.AsyncLoadThreshold = defaults.AsyncLoadThreshold
	}
	if config.PriorityCount < 0 || config.PriorityCount > 64 {
		config.PriorityCount = defaults.PriorityCount
	}
	if config.NavigateDelayMs < 1 {
		config.NavigateDelayMs = defaults.NavigateDelayMs
	}
	if config.SpeedBoost <= 0 || config.SpeedBoost > 1 {
		config.SpeedBoost = defaults.SpeedBoost
	}
	if config.MinDelayMs < 1 || config.MinDelayMs > config.NavigateDelayMs {
		config.MinDelayMs = min(defaults.MinDelayMs, config.NavigateDelayMs)
	}
	if config.PlaybackIntervalMs < 1 {
		config.PlaybackIntervalMs = defaults.PlaybackIntervalMs
	}
	if config.QualityDelayMs < 1 {
		config.QualityDelayMs = defaults.QualityDelayMs
	}
	if config.ZoomStep <= 1.0 {
		config.ZoomStep = defaults.ZoomStep
	}
	if config.ZoomCooldownMs < 0 {
		config.ZoomCooldownMs = defaults.ZoomCooldownMs
	}
	if config.RotateFrames < 1 || config.RotateFrames > 60 {
		config.RotateFrames = defaults.RotateFrames
	}
	if config.RotateDurationMs < 0 {
		config.RotateDurationMs = defaults.RotateDurationMs
	}
	// Help font size minimum 12px for readability
	if config.HelpFontSize < 12.0 {
		config.HelpFontSize = defaults.HelpFontSize
	}
	if _, err := parseLogLevel(config.LogLevel); err != nil {
		config.LogLevel = defaults.LogLevel
	}
	if config.LogFormat != "json" && config.LogFormat != "console" {
		config.LogFormat = defaults.LogFormat
	}

	// Fill in missing bindings with defaults
	config.Keybindings = mergeBindings(config.Keybindings, defaults.Keybindings)
	config.Mousebindings = mergeBindings(config.Mousebindings, defaults.Mousebindings)

	if err := validateKeybindings(config.Keybindings); err != nil {
		Log.Warnf("Invalid keybindings detected, using defaults: %v", err)
		config.Keybindings = GetDefaultKeybindings()
		warnings = append(warnings, fmt.Sprintf("Keybinding errors: %v", err))
	}

	if config.Mouse.WheelSensitivity <= 0 {
		config.Mouse.WheelSensitivity = defaults.Mouse.WheelSensitivity
	}
	if config.Mouse.DoubleClickTime <= 0 {
		config.Mouse.DoubleClickTime = defaults.Mouse.DoubleClickTime
	}
	if config.Mouse.DragThreshold < 0 {
		config.Mouse.DragThreshold = defaults.Mouse.DragThreshold
	}
	if config.Mouse.DragSensitivity <= 0 {
		config.Mouse.DragSensitivity = defaults.Mouse.DragSensitivity
	}

	return warnings
}

func mergeBindings(bindings, defaults map[string][]string) map[string][]string {
	if bindings == nil {
		return defaults
	}
	for action, keys := range defaults {
		if _, exists := bindings[action]; !exists {
			bindings[action] = keys
		}
	}
	return bindings
}

// validateKeybindings checks key formats and detects conflicts
func validateKeybindings(keybindings map[string][]string) error {
	keyToAction := make(map[string]string)
	validKeys := getValidKeyNames()

	for action, keys := range keybindings {
		for _, keyStr := range keys {
			if err := validateKeyString(keyStr, validKeys); err != nil {
				return fmt.Errorf("invalid key '%s' for action '%s': %v", keyStr, action, err)
			}
			if existingAction, exists := keyToAction[keyStr]; exists {
				return fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", keyStr, existingAction, action)
			}
			keyToAction[keyStr] = action
		}
	}

	return nil
}

// validateKeyString validates a single key string format
func validateKeyString(keyStr string, validKeys map[string]bool) error {
	parts := strings.Split(keyStr, "+")
	keyName := parts[len(parts)-1]
	if keyName == "" {
		return fmt.Errorf("empty key string")
	}
	if !validKeys[keyName] {
		return fmt.Errorf("unknown key: %s", keyName)
	}

	for i := 0; i < len(parts)-1; i++ {
		modifier := strings.ToLower(parts[i])
		if modifier != "shift" && modifier != "ctrl" && modifier != "alt" {
			return fmt.Errorf("unknown modifier: %s", parts[i])
		}
	}

	return nil
}

// getValidKeyNames returns the set of key names understood by the keybinding manager
func getValidKeyNames() map[string]bool {
	valid := make(map[string]bool)
	for name := range getKeyMapping() {
		valid[name] = true
	}
	return valid
}

// getSortMethodName returns the human-readable name of a sort method
func getSortMethodName(sortMethod int) string {
	return GetSortStrategy(sortMethod).Name()
}

// saveWindowSize persists the window size, keeping the rest of the file intact.
func saveWindowSize(configPath string, width, height int) {
	if width < minWidth || height < minHeight {
		Log.Warnf("Not saving config with invalid window size: %dx%d", width, height)
		return
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		Log.Warnf("Not overwriting unreadable config %s: %v", configPath, err)
		return
	}
	v.Set("window_width", width)
	v.Set("window_height", height)

	if err := v.WriteConfigAs(configPath); err != nil {
		Log.Errorf("Failed to save config to %s: %v", configPath, err)
	}
}

// Duration helpers

func (c Config) QualityDelay() time.Duration {
	return time.Duration(c.QualityDelayMs) * time.Millisecond
}

func (c Config) ZoomCooldown() time.Duration {
	return time.Duration(c.ZoomCooldownMs) * time.Millisecond
}

func (c Config) RotateDuration() time.Duration {
	return time.Duration(c.RotateDurationMs) * time.Millisecond
}

// NavigationConfig returns the key-repeat and playback timings.
func (c Config) NavigationConfig() NavigationConfig {
	return NavigationConfig{
		NavigateDelay:    time.Duration(c.NavigateDelayMs) * time.Millisecond,
		SpeedBoost:       c.SpeedBoost,
		MinDelay:         time.Duration(c.MinDelayMs) * time.Millisecond,
		PlaybackInterval: time.Duration(c.PlaybackIntervalMs) * time.Millisecond,
	}
}
