package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/coalfork/wirebridge/internal/logging"
)

// ChannelConfig holds the tunables of one channel instance. Protocol
// limits (frame and body ceilings) are wire constants and not configurable.
type ChannelConfig struct {
	Name            string `toml:"name"`
	TeardownDelayMS int    `toml:"teardown_delay_ms"`
	ReadChunkBytes  int    `toml:"read_chunk_bytes"`
	LogLevel        string `toml:"log_level"`
}

func Default() ChannelConfig {
	return ChannelConfig{
		Name:            "channel",
		TeardownDelayMS: 200,
		ReadChunkBytes:  64 * 1024,
		LogLevel:        "info",
	}
}

func Load(path string) (ChannelConfig, error) {
	cfg := Default()
	if err := loadToml(path, &cfg); err != nil {
		return ChannelConfig{}, err
	}
	if err := Validate(cfg); err != nil {
		return ChannelConfig{}, err
	}
	return cfg, nil
}

func Validate(cfg ChannelConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("channel config missing name")
	}
	if cfg.TeardownDelayMS < 0 {
		return fmt.Errorf("channel config teardown_delay_ms must be >= 0")
	}
	if cfg.ReadChunkBytes <= 0 {
		return fmt.Errorf("channel config read_chunk_bytes must be > 0")
	}
	if lvl := strings.TrimSpace(cfg.LogLevel); lvl != "" {
		if _, ok := logging.ParseLevel(lvl); !ok {
			return fmt.Errorf("channel config invalid log_level %q", cfg.LogLevel)
		}
	}
	return nil
}

func (c ChannelConfig) TeardownDelay() time.Duration {
	return time.Duration(c.TeardownDelayMS) * time.Millisecond
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}
