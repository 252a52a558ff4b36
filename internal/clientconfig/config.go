// Package clientconfig loads and validates the client's TOML configuration
// file from the OS user-config directory.
package clientconfig

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	concurrerrors "github.com/concurr/concurr/pkg/errors"
)

// NodeConfig is one configured remote worker.
type NodeConfig struct {
	Address string `toml:"address"`
	Domain  string `toml:"domain"`
}

// Config is the client's TOML configuration.
type Config struct {
	Nodes     []NodeConfig `toml:"nodes"`
	Localhost bool         `toml:"localhost"`
	Outputs   bool         `toml:"outputs"`
	Verbose   bool         `toml:"verbose"`
}

const defaultConfig = `localhost = true
outputs = true
verbose = false
`

// Default returns the configuration written on first run: localhost slots
// only, outputs requested, quiet.
func Default() Config {
	return Config{Localhost: true, Outputs: true, Verbose: false}
}

// Dir returns concurr's subdirectory of the OS user-config directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", concurrerrors.Setup("resolving user config directory", err)
	}
	return filepath.Join(base, "concurr"), nil
}

// Path returns the client config file's path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads and parses the client config, writing the default file first
// if none exists.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		return Config{}, err
	}

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if err := writeDefault(path); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, concurrerrors.Setup("parsing client config", err)
	}
	return cfg, nil
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return concurrerrors.Setup("creating config directory", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return concurrerrors.Setup("writing default config", err)
	}
	return nil
}
