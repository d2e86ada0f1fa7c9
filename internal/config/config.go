// Package config loads server settings from a YAML or JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	workerpool "github.com/azargarov/connpool"
	"github.com/azargarov/connpool/internal/server"
)

const (
	DefaultMarkerFile       = "/tmp/operator-test"
	DefaultMetricsNamespace = "connpool"
)

// FileConfig mirrors the configuration file. Durations are strings
// accepted by time.ParseDuration.
type FileConfig struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Routes  RoutesConfig  `yaml:"routes" json:"routes"`
}

type ServerConfig struct {
	Addr            string      `yaml:"addr" json:"addr"`
	Workers         int         `yaml:"workers" json:"workers"`
	QueueCapacity   int         `yaml:"queue_capacity" json:"queue_capacity"`
	Overload        string      `yaml:"overload" json:"overload"`
	MaxConnections  int         `yaml:"max_connections" json:"max_connections"`
	ReadTimeout     string      `yaml:"read_timeout" json:"read_timeout"`
	PollInterval    string      `yaml:"poll_interval" json:"poll_interval"`
	ShutdownTimeout string      `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	AcceptRetry     RetryConfig `yaml:"accept_retry" json:"accept_retry"`
}

type RetryConfig struct {
	Attempts int    `yaml:"attempts" json:"attempts"`
	Initial  string `yaml:"initial" json:"initial"`
	Max      string `yaml:"max" json:"max"`
}

type MetricsConfig struct {
	// Addr serves /metrics when set.
	Addr      string `yaml:"addr" json:"addr"`
	Namespace string `yaml:"namespace" json:"namespace"`
}

type RoutesConfig struct {
	MarkerFile string `yaml:"marker_file" json:"marker_file"`
}

// Default returns an empty file config; every zero field falls back to
// the server defaults.
func Default() *FileConfig {
	return &FileConfig{
		Metrics: MetricsConfig{Namespace: DefaultMetricsNamespace},
		Routes:  RoutesConfig{MarkerFile: DefaultMarkerFile},
	}
}

// Load reads path. A missing file yields Default.
func Load(path string) (*FileConfig, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	return cfg, nil
}

// Validate checks value ranges. Durations are checked by ToServerConfig.
func (f *FileConfig) Validate() error {
	sc := f.Server

	if sc.Workers < 0 {
		return fmt.Errorf("server.workers must be non-negative")
	}
	if sc.Workers > workerpool.MaxWorkers {
		return fmt.Errorf("server.workers must be at most %d", workerpool.MaxWorkers)
	}
	if sc.QueueCapacity < 0 {
		return fmt.Errorf("server.queue_capacity must be non-negative")
	}
	if sc.MaxConnections < 0 {
		return fmt.Errorf("server.max_connections must be non-negative")
	}
	if sc.AcceptRetry.Attempts < 0 {
		return fmt.Errorf("server.accept_retry.attempts must be non-negative")
	}
	if _, err := ParseOverload(sc.Overload); err != nil {
		return err
	}
	return nil
}

// ToServerConfig converts f into a server.Config on top of the server
// defaults.
func (f *FileConfig) ToServerConfig() (server.Config, error) {
	sc := f.Server
	cfg := server.DefaultConfig()

	if sc.Addr != "" {
		cfg.Addr = sc.Addr
	}
	if sc.Workers > 0 {
		cfg.Workers = sc.Workers
	}
	cfg.QueueCapacity = sc.QueueCapacity
	cfg.MaxConnections = sc.MaxConnections

	overload, err := ParseOverload(sc.Overload)
	if err != nil {
		return cfg, err
	}
	cfg.Overload = overload

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"read_timeout", sc.ReadTimeout, &cfg.ReadTimeout},
		{"poll_interval", sc.PollInterval, &cfg.PollInterval},
		{"shutdown_timeout", sc.ShutdownTimeout, &cfg.ShutdownTimeout},
		{"accept_retry.initial", sc.AcceptRetry.Initial, &cfg.AcceptRetry.Initial},
		{"accept_retry.max", sc.AcceptRetry.Max, &cfg.AcceptRetry.Max},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.dst = v
	}
	if sc.AcceptRetry.Attempts > 0 {
		cfg.AcceptRetry.Attempts = sc.AcceptRetry.Attempts
	}

	return cfg, nil
}

// ParseOverload maps "block" (or "") and "reject" to a pool policy.
func ParseOverload(s string) (workerpool.OverloadPolicy, error) {
	switch strings.ToLower(s) {
	case "", "block":
		return workerpool.OverloadBlock, nil
	case "reject":
		return workerpool.OverloadReject, nil
	default:
		return 0, fmt.Errorf("unknown overload policy: %s", s)
	}
}
