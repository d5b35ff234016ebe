// Package config loads and persists the shuttle configuration file. The
// orchestrator consumes an immutable snapshot per cycle; saving replaces
// the file wholesale.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Task is one configured unit of a scan cycle. It is immutable for the
// duration of a cycle.
type Task struct {
	Name        string `yaml:"name"`
	Enabled     bool   `yaml:"enabled"`
	Source      string `yaml:"source"`
	Destination string `yaml:"destination,omitempty"` // overrides Config.Destination
	Rule        Rule   `yaml:"-"`
}

// taskSpec mirrors Task in the YAML file, with the rule spelled out.
type taskSpec struct {
	Name        string   `yaml:"name"`
	Enabled     bool     `yaml:"enabled"`
	Source      string   `yaml:"source"`
	Destination string   `yaml:"destination,omitempty"`
	Rule        ruleSpec `yaml:"rule"`
}

// UnmarshalYAML decodes the rule spec into the closed Rule union.
func (t *Task) UnmarshalYAML(node *yaml.Node) error {
	var spec taskSpec
	if err := node.Decode(&spec); err != nil {
		return err
	}
	rule, err := spec.Rule.rule()
	if err != nil {
		return fmt.Errorf("task %q: %w", spec.Name, err)
	}
	*t = Task{
		Name:        spec.Name,
		Enabled:     spec.Enabled,
		Source:      spec.Source,
		Destination: spec.Destination,
		Rule:        rule,
	}
	return nil
}

// MarshalYAML renders the rule back into its YAML spec.
func (t Task) MarshalYAML() (any, error) {
	return taskSpec{
		Name:        t.Name,
		Enabled:     t.Enabled,
		Source:      t.Source,
		Destination: t.Destination,
		Rule:        specFor(t.Rule),
	}, nil
}

// Target is one deployment destination. Read-only during a cycle.
type Target struct {
	ID         string `yaml:"id"`
	Enabled    bool   `yaml:"enabled"`
	Name       string `yaml:"name"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	RemotePath string `yaml:"remote_path"`
}

// Addr returns the host:port dial address, defaulting the port to 22.
func (t Target) Addr() string {
	port := t.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", t.Host, port)
}

// Deploy groups the deployment settings.
type Deploy struct {
	Enabled      bool     `yaml:"enabled"`
	Targets      []Target `yaml:"targets,omitempty"`
	PostCommands []string `yaml:"post_commands,omitempty"`
}

// Config is the full configuration snapshot.
type Config struct {
	Destination     string   `yaml:"destination"`
	IntervalMinutes int      `yaml:"interval_minutes"`
	TimeWindows     []string `yaml:"time_windows,omitempty"`
	Extensions      []string `yaml:"extensions,omitempty"`
	Includes        []string `yaml:"includes,omitempty"`
	Tasks           []Task   `yaml:"tasks,omitempty"`
	Deploy          Deploy   `yaml:"deploy"`
}

// Default returns the configuration used when no file exists yet.
func Default() *Config {
	return &Config{
		Destination:     defaultDestination(),
		IntervalMinutes: 10,
	}
}

func defaultDestination() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "artifacts"
	}
	return filepath.Join(home, "artifacts")
}

// DefaultPath returns the per-user config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "shuttle", "config.yaml"), nil
}

// Load reads the config file at path. A missing file is not an error: the
// defaults are written to path and returned, so a fresh install starts
// with an editable file on disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate checks the parts of the config that would otherwise fail deep
// inside a cycle.
func (c *Config) Validate() error {
	if c.Destination == "" {
		return fmt.Errorf("destination is required")
	}
	for _, task := range c.Tasks {
		if task.Name == "" {
			return fmt.Errorf("task with empty name")
		}
		if task.Source == "" {
			return fmt.Errorf("task %q: source is required", task.Name)
		}
		if task.Rule == nil {
			return fmt.Errorf("task %q: rule is required", task.Name)
		}
	}
	for _, target := range c.Deploy.Targets {
		if target.Host == "" {
			return fmt.Errorf("target %q: host is required", target.Name)
		}
	}
	return nil
}

// TargetByID finds a deployment target by its id.
func (c *Config) TargetByID(id string) (Target, bool) {
	for _, t := range c.Deploy.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}

// DestinationFor resolves the local destination parent for a task,
// honoring the per-task override.
func (c *Config) DestinationFor(task Task) string {
	if task.Destination != "" {
		return task.Destination
	}
	return c.Destination
}
