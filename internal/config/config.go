// Package config loads the sandbox settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-sandbox/common"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/adapter"
	"github.com/Carmen-Shannon/oxy-sandbox/engine/renderer"
)

const configFile = "config.toml"

// Config mirrors the TOML file. Every key is optional; missing keys keep the values from Default.
type Config struct {
	Backend      string `toml:"backend"`
	AdapterIndex *int   `toml:"adapter_index"`
	AdapterClass string `toml:"adapter_class"`
	PowerPref    string `toml:"power_preference"`
	Width        int    `toml:"width"`
	Height       int    `toml:"height"`
	Title        string `toml:"title"`
	VSync        bool   `toml:"vsync"`
	FrameDelayMS int    `toml:"frame_delay_ms"`
	Profiling    bool   `toml:"profiling"`
}

// Settings is a validated Config converted to the types the engine consumes.
type Settings struct {
	Backend      renderer.BackendKind
	Adapter      adapter.Request
	PowerPref    wgpu.PowerPreference
	Width        int
	Height       int
	Title        string
	SyncInterval uint32
	FrameDelay   time.Duration
	Profiling    bool
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Backend:      renderer.BackendVulkan.String(),
		PowerPref:    "high-performance",
		Width:        800,
		Height:       600,
		Title:        "SdlSandbox",
		VSync:        true,
		FrameDelayMS: 10,
	}
}

// DefaultPath returns the config file location under the user configuration directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "oxy-sandbox", configFile)
}

// Load decodes the TOML file at path over the defaults.
//
// A missing file is not an error unless explicit is set, which means the user named the file.
// Unknown keys are rejected so that typos do not silently fall back to defaults.
//
// Parameters:
//   - path: the file to read; empty means DefaultPath
//   - explicit: whether the path was given by the user
//
// Returns:
//   - Config: the decoded configuration
//   - error: an error if the file could not be read or decoded
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Validate checks the configuration and converts it to Settings.
//
// Returns:
//   - Settings: the typed settings
//   - error: the first invalid value
func (c Config) Validate() (Settings, error) {
	kind, err := renderer.ParseBackendKind(c.Backend)
	if err != nil {
		return Settings{}, fmt.Errorf("backend: %w", err)
	}

	var req adapter.Request
	if c.AdapterIndex != nil {
		req = req.WithIndex(*c.AdapterIndex)
	}
	if c.AdapterClass != "" {
		class, err := adapter.ParseClass(c.AdapterClass)
		if err != nil {
			return Settings{}, fmt.Errorf("adapter_class: %w", err)
		}
		req = req.WithClass(class)
	}

	pref, err := renderer.ParsePowerPreference(c.PowerPref)
	if err != nil {
		return Settings{}, fmt.Errorf("power_preference: %w", err)
	}

	if c.Width <= 0 || c.Height <= 0 {
		return Settings{}, fmt.Errorf("window size %dx%d must be positive", c.Width, c.Height)
	}
	if c.FrameDelayMS < 0 {
		return Settings{}, fmt.Errorf("frame_delay_ms %d must not be negative", c.FrameDelayMS)
	}

	var syncInterval uint32
	if c.VSync {
		syncInterval = 1
	}

	return Settings{
		Backend:      kind,
		Adapter:      req,
		PowerPref:    pref,
		Width:        c.Width,
		Height:       c.Height,
		Title:        common.Coalesce(c.Title, Default().Title),
		SyncInterval: syncInterval,
		FrameDelay:   time.Duration(c.FrameDelayMS) * time.Millisecond,
		Profiling:    c.Profiling,
	}, nil
}
