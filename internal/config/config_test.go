package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	workerpool "github.com/azargarov/connpool"
	"github.com/azargarov/connpool/internal/server"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  addr: 127.0.0.1:9000
  workers: 8
  queue_capacity: 32
  overload: reject
  max_connections: 100
  read_timeout: 5s
  poll_interval: 10ms
  shutdown_timeout: 2s
  accept_retry:
    attempts: 4
    initial: 1ms
    max: 50ms
metrics:
  addr: 127.0.0.1:9100
routes:
  marker_file: /tmp/marker
`)

	fc, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if err := fc.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if fc.Metrics.Addr != "127.0.0.1:9100" {
		t.Errorf("metrics addr = %q", fc.Metrics.Addr)
	}
	if fc.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("namespace = %q, want default", fc.Metrics.Namespace)
	}
	if fc.Routes.MarkerFile != "/tmp/marker" {
		t.Errorf("marker file = %q", fc.Routes.MarkerFile)
	}

	cfg, err := fc.ToServerConfig()
	if err != nil {
		t.Fatalf("to server config: %v", err)
	}
	want := server.Config{
		Addr:            "127.0.0.1:9000",
		Workers:         8,
		QueueCapacity:   32,
		Overload:        workerpool.OverloadReject,
		MaxConnections:  100,
		ReadTimeout:     5 * time.Second,
		PollInterval:    10 * time.Millisecond,
		ShutdownTimeout: 2 * time.Second,
		AcceptRetry:     server.RetryPolicy{Attempts: 4, Initial: time.Millisecond, Max: 50 * time.Millisecond},
	}
	if cfg != want {
		t.Errorf("server config = %+v, want %+v", cfg, want)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "server": {"workers": 3, "overload": "block", "read_timeout": "1s"}
}`)

	fc, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg, err := fc.ToServerConfig()
	if err != nil {
		t.Fatalf("to server config: %v", err)
	}
	if cfg.Workers != 3 {
		t.Errorf("workers = %d, want 3", cfg.Workers)
	}
	if cfg.ReadTimeout != time.Second {
		t.Errorf("read timeout = %v, want 1s", cfg.ReadTimeout)
	}
	if cfg.Addr != server.DefaultConfig().Addr {
		t.Errorf("addr = %q, want default", cfg.Addr)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	fc, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg, err := fc.ToServerConfig()
	if err != nil {
		t.Fatalf("to server config: %v", err)
	}
	if cfg != server.DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
	if fc.Routes.MarkerFile != DefaultMarkerFile {
		t.Errorf("marker file = %q", fc.Routes.MarkerFile)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unsupported extension", "config.toml", "workers = 1"},
		{"bad yaml", "config.yaml", "server: [unterminated"},
		{"bad json", "config.json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.file, tt.content)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*FileConfig)
		wantErr bool
	}{
		{"defaults", func(*FileConfig) {}, false},
		{"negative workers", func(f *FileConfig) { f.Server.Workers = -1 }, true},
		{"too many workers", func(f *FileConfig) { f.Server.Workers = workerpool.MaxWorkers + 1 }, true},
		{"negative queue", func(f *FileConfig) { f.Server.QueueCapacity = -1 }, true},
		{"negative connections", func(f *FileConfig) { f.Server.MaxConnections = -1 }, true},
		{"negative attempts", func(f *FileConfig) { f.Server.AcceptRetry.Attempts = -1 }, true},
		{"unknown overload", func(f *FileConfig) { f.Server.Overload = "drop" }, true},
		{"reject overload", func(f *FileConfig) { f.Server.Overload = "REJECT" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := Default()
			tt.mutate(fc)
			if err := fc.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestToServerConfigInvalidDuration(t *testing.T) {
	fc := Default()
	fc.Server.PollInterval = "soon"
	if _, err := fc.ToServerConfig(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
