package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

const projectConfigName = "." + appName + ".json"

// Init loads the configuration for workingDir: the global config, then the
// global data config written by SetConfigField, then the project config,
// then environment overrides.
func Init(workingDir string, debug bool) (*Config, error) {
	cfg, err := Load(workingDir, GlobalConfig(), GlobalConfigData(), filepath.Join(workingDir, projectConfigName))
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Options.Debug = true
	}
	return cfg, nil
}

// Load merges the given config files in order. Missing files are skipped.
func Load(workingDir string, paths ...string) (*Config, error) {
	cfg := &Config{
		SettleDelayMS: defaultSettleDelayMS,
		Options:       &Options{},
		dataConfigDir: GlobalConfigData(),
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		slog.Debug("Loaded config", "path", path)
	}
	applyEnv(cfg)
	cfg.setDefaults(workingDir)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if cfg.Options == nil {
		cfg.Options = &Options{}
	}
	if v := os.Getenv("CAROUSEL_WINDOW_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WindowLength = n
		} else {
			slog.Warn("Ignoring invalid CAROUSEL_WINDOW_LENGTH", "value", v, "error", err)
		}
	}
	if v := os.Getenv("CAROUSEL_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Options.Debug = b
		}
	}
	if v := os.Getenv("CAROUSEL_DATA_DIR"); v != "" {
		cfg.Options.DataDirectory = v
	}
}

// GlobalConfig returns the path to the main config file for the user.
func GlobalConfig() string {
	if path := os.Getenv("CAROUSEL_GLOBAL_CONFIG"); path != "" {
		return path
	}
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, appName, appName+".json")
	}
	return filepath.Join(homeDir(), ".config", appName, appName+".json")
}

// GlobalConfigData returns the path to the config file written by the
// application itself. Reports and positions are stored next to it.
func GlobalConfigData() string {
	if path := os.Getenv("CAROUSEL_GLOBAL_DATA"); path != "" {
		return path
	}
	xdgDataHome := os.Getenv("XDG_DATA_HOME")
	if xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName, appName+".json")
	}

	// return the path to the main data directory
	// for windows, it should be in `%LOCALAPPDATA%/carousel/`
	// for linux and macOS, it should be in `$HOME/.local/share/carousel/`
	if runtime.GOOS == "windows" {
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
		}
		return filepath.Join(localAppData, appName, appName+".json")
	}
	return filepath.Join(homeDir(), ".local", "share", appName, appName+".json")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
