package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigPath returns the default config file location under the user's
// config directory, creating the containing directory if needed.
func ConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine user config dir: %w", err)
	}
	appDir := filepath.Join(dir, "speechcore")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return filepath.Join(appDir, "config.toml"), nil
}

// Load reads and decodes the config file at path, filling in a zero
// retry count, disconnect timeout, disconnect poll interval, transcribe
// model, or upload limit from DefaultConfig. Other fields keep their
// decoded value: a file that omits client_info.voice_editing_enabled
// leaves it false. A missing file is not an error: it yields
// DefaultConfig() unchanged, since a speechcore SDK is usable with no
// file on disk as long as the host sets Stream.URL itself.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	} else if err != nil {
		return nil, fmt.Errorf("stat config file %s: %w", path, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}
