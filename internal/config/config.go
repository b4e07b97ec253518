// Package config loads TOML configuration files for the client and
// daemon binaries, following the layout hinted at by the protocol spec:
// files live under $PDISTCC_DIR or ~/.config/pdistcc/.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ClientConfig mirrors the client CLI's tunables, loadable from
// client.toml so a team can share a fleet list without repeating
// --host on every invocation.
type ClientConfig struct {
	Hosts            []string
	LogFileName      string
	LogLevel         int64
	GCCCompilerDir   string
	MSVCUseClang     bool
	MSVCClangPath    string
	MSVCDistccCompat bool
}

// ServerConfig mirrors the daemon CLI's tunables, loadable from
// server.toml.
type ServerConfig struct {
	ListenAddr  string
	LogFileName string
	LogLevel    int64
	MetricsAddr string
}

func defaultClientConfig() ClientConfig {
	return ClientConfig{
		Hosts:       []string{"localhost:3632"},
		LogFileName: "stderr",
		LogLevel:    0,
	}
}

func defaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:  ":3632",
		LogFileName: "stderr",
		LogLevel:    0,
		MetricsAddr: ":9090",
	}
}

// Dir resolves the configuration directory: $PDISTCC_DIR if set,
// otherwise ~/.config/pdistcc.
func Dir() string {
	if dir := os.Getenv("PDISTCC_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/pdistcc"
	}
	return filepath.Join(home, ".config", "pdistcc")
}

// LoadClientConfig reads client.toml from dir, returning defaults
// overlaid with whatever the file sets. A missing file is not an error.
func LoadClientConfig(dir string) (ClientConfig, error) {
	cfg := defaultClientConfig()
	path := filepath.Join(dir, "client.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// LoadServerConfig reads server.toml from dir, returning defaults
// overlaid with whatever the file sets. A missing file is not an error.
func LoadServerConfig(dir string) (ServerConfig, error) {
	cfg := defaultServerConfig()
	path := filepath.Join(dir, "server.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}
