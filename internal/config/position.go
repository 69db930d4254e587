package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/zeebo/xxh3"
)

const positionsFilename = "positions.json"

// Position is where a feed was left.
type Position struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
}

func positionKey(feedPath string) string {
	if abs, err := filepath.Abs(feedPath); err == nil {
		feedPath = abs
	}
	return fmt.Sprintf("%016x", xxh3.HashString(feedPath))
}

func (c *Config) positionsPath() string {
	return filepath.Join(c.DataDir(), positionsFilename)
}

// SavePosition remembers the entry a feed was left on.
func SavePosition(cfg *Config, feedPath string, pos Position) error {
	if cfg == nil {
		return fmt.Errorf("config not loaded")
	}
	path := cfg.positionsPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read positions: %w", err)
		}
		data = []byte("{}")
	}

	updated, err := sjson.SetBytes(data, positionKey(feedPath), pos)
	if err != nil {
		return fmt.Errorf("failed to set position: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(path, updated, 0o600); err != nil {
		return fmt.Errorf("failed to write positions: %w", err)
	}
	return nil
}

// LoadPosition returns where a feed was left, if it was saved.
func LoadPosition(cfg *Config, feedPath string) (Position, bool, error) {
	if cfg == nil {
		return Position{}, false, fmt.Errorf("config not loaded")
	}
	data, err := os.ReadFile(cfg.positionsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return Position{}, false, nil
		}
		return Position{}, false, fmt.Errorf("failed to read positions: %w", err)
	}
	result := gjson.GetBytes(data, positionKey(feedPath))
	if !result.Exists() {
		return Position{}, false, nil
	}
	return Position{
		ID:    result.Get("id").String(),
		Index: int(result.Get("index").Int()),
	}, true, nil
}
