package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	appName              = "carousel"
	defaultWindowLength  = 15
	defaultSettleDelayMS = 120
)

type Options struct {
	Debug bool `json:"debug,omitempty" jsonschema:"description=Enable debug logging and the bookkeeping panel"`
	// Relative to the working directory.
	DataDirectory string `json:"data_directory,omitempty" jsonschema:"description=Where reports and positions are stored"`
	Notify        bool   `json:"notify,omitempty" jsonschema:"description=Send a desktop notification when followed content arrives"`
	Spinner       bool   `json:"spinner,omitempty" jsonschema:"description=Animate the loading indicator"`
	Resume        bool   `json:"resume,omitempty" jsonschema:"description=Reopen a feed on the entry it was left on"`
	Markdown      bool   `json:"markdown,omitempty" jsonschema:"description=Render entry bodies as markdown"`
}

// Config holds the configuration for carousel.
type Config struct {
	WindowLength        int      `json:"window_length,omitempty" jsonschema:"description=Number of entries mounted at once,minimum=3,default=15"`
	RenderAll           bool     `json:"render_all,omitempty" jsonschema:"description=Mount every entry"`
	SettleDelayMS       int      `json:"settle_delay_ms,omitempty" jsonschema:"description=Animated scroll duration in milliseconds,default=120"`
	SkipBlockedRequests bool     `json:"skip_blocked_requests,omitempty" jsonschema:"description=Let queued scrolls run past a newer one that is not ready"`
	Options             *Options `json:"options,omitempty"`

	// Internal
	workingDir    string `json:"-"`
	dataConfigDir string `json:"-"`
}

func (c *Config) WorkingDir() string {
	return c.workingDir
}

// SettleDelay is the animated scroll duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMS) * time.Millisecond
}

// DataDir is the absolute data directory.
func (c *Config) DataDir() string {
	dir := c.Options.DataDirectory
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.workingDir, dir)
}

func (c *Config) setDefaults(workingDir string) {
	c.workingDir = workingDir
	if c.Options == nil {
		c.Options = &Options{}
	}
	if c.WindowLength <= 0 {
		c.WindowLength = defaultWindowLength
	}
	if c.SettleDelayMS < 0 {
		c.SettleDelayMS = 0
	}
	if c.Options.DataDirectory == "" {
		c.Options.DataDirectory = filepath.Dir(GlobalConfigData())
	}
}

// SetConfigField writes a single field to the global data config file.
func (c *Config) SetConfigField(key string, value any) error {
	// read the data
	data, err := os.ReadFile(c.dataConfigDir)
	if err != nil {
		if os.IsNotExist(err) {
			data = []byte("{}")
		} else {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	newValue, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("failed to set config field %s: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(c.dataConfigDir), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.dataConfigDir, []byte(newValue), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GetConfigField reads a single field from the global data config file.
func (c *Config) GetConfigField(key string) (gjson.Result, error) {
	data, err := os.ReadFile(c.dataConfigDir)
	if err != nil {
		if os.IsNotExist(err) {
			return gjson.Result{}, nil
		}
		return gjson.Result{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return gjson.GetBytes(data, key), nil
}
