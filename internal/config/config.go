// Package config loads lsync's environment settings and the server
// profile file.
//
// Environment variables (optionally from a .env file) carry tool-level
// settings; the YAML profile file maps server names to host lists and
// remote base directories.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults for the ancestor directories a sync run may anchor to when the
// profile file does not set sync_roots.
var defaultSyncRoots = []string{"common_sync", "sglang", "docker_workspace"}

// Config holds tool-level settings resolved from the environment.
type Config struct {
	// Dir is the lsync home directory (config, ignore file, history DB).
	Dir string
	// ConfigFile is the server profile file path.
	ConfigFile string
	// LogLevel and LogFormat configure the stderr logger.
	LogLevel  string
	LogFormat string
}

// Load resolves tool settings from the environment. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dir := getEnv("LSYNC_DIR", "")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve home: %w", err)
		}
		dir = filepath.Join(home, ".lsync")
	}

	return &Config{
		Dir:        dir,
		ConfigFile: getEnv("LSYNC_CONFIG", filepath.Join(dir, "lsync_config.yaml")),
		LogLevel:   getEnv("LSYNC_LOG_LEVEL", "info"),
		LogFormat:  getEnv("LSYNC_LOG_FORMAT", "console"),
	}, nil
}

// IgnoreFile returns the path of the shared rsync exclude file.
func (c *Config) IgnoreFile() string {
	return filepath.Join(c.Dir, ".rsyncignore")
}

// HistoryFile returns the path of the run-history database.
func (c *Config) HistoryFile() string {
	return filepath.Join(c.Dir, "history.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Profile is one named server entry in the profile file.
type Profile struct {
	Hosts   hostList `yaml:"hosts"`
	BaseDir string   `yaml:"base_dir"`
}

// hostList accepts either a single scalar host or a list of hosts.
type hostList []string

func (h *hostList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*h = hostList{s}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*h = hostList(list)
		return nil
	default:
		return fmt.Errorf("config: hosts must be a string or a list")
	}
}

// Profiles is the parsed profile file.
type Profiles struct {
	// SyncRoots are directory names a sync run may anchor to.
	SyncRoots []string            `yaml:"sync_roots"`
	Servers   map[string]*Profile `yaml:"servers"`
}

// LoadProfiles reads and validates the profile file.
func LoadProfiles(path string) (*Profiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var p Profiles
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if len(p.SyncRoots) == 0 {
		p.SyncRoots = defaultSyncRoots
	}

	for name, prof := range p.Servers {
		if prof == nil || len(prof.Hosts) == 0 {
			return nil, fmt.Errorf("config: server %q: no hosts defined", name)
		}
		if prof.BaseDir == "" {
			return nil, fmt.Errorf("config: server %q: base_dir is required", name)
		}
	}

	return &p, nil
}

// Profile looks up a named server entry.
func (p *Profiles) Profile(name string) (*Profile, error) {
	prof, ok := p.Servers[name]
	if !ok {
		return nil, fmt.Errorf("config: unknown server %q", name)
	}
	return prof, nil
}
