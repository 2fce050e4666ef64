package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Pause != DefaultPause {
		t.Errorf("Pause = %v, want %v", cfg.Pause, DefaultPause)
	}
	if cfg.TTS.Vendor != VendorElevenLabs {
		t.Errorf("TTS.Vendor = %q, want %q", cfg.TTS.Vendor, VendorElevenLabs)
	}
	if cfg.OutputFormat != OutputFormatText {
		t.Errorf("OutputFormat = %q, want %q", cfg.OutputFormat, OutputFormatText)
	}
	if cfg.Anchor.Workers != DefaultWorkers {
		t.Errorf("Anchor.Workers = %d, want %d", cfg.Anchor.Workers, DefaultWorkers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"zero pause is valid", func(c *Config) { c.Pause = 0 }, false},
		{"negative pause", func(c *Config) { c.Pause = -0.5 }, true},
		{"NaN pause", func(c *Config) { c.Pause = math.NaN() }, true},
		{"bad language tag", func(c *Config) { c.Language = "not a tag!" }, true},
		{"empty language ok", func(c *Config) { c.Language = "" }, false},
		{"google vendor", func(c *Config) { c.TTS.Vendor = VendorGoogle }, false},
		{"unknown vendor", func(c *Config) { c.TTS.Vendor = "acme" }, true},
		{"zero workers", func(c *Config) { c.Anchor.Workers = 0 }, true},
		{"bad output format", func(c *Config) { c.OutputFormat = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
station:
  station_name: Bayview Nine News
  location: Bayview
  anchor_name: Dana Reyes
pause: 0.5
brief: true
tts:
  vendor: google
  voice_id: en-US-Neural2-F
paths:
  generated_dir: ` + filepath.Join(dir, "out") + `
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}

	if cfg.Station.StationName != "Bayview Nine News" {
		t.Errorf("Station.StationName = %q", cfg.Station.StationName)
	}
	if cfg.Pause != 0.5 {
		t.Errorf("Pause = %v, want 0.5", cfg.Pause)
	}
	if !cfg.Brief {
		t.Error("Brief = false, want true")
	}
	if cfg.TTS.Vendor != VendorGoogle {
		t.Errorf("TTS.Vendor = %q, want google", cfg.TTS.Vendor)
	}
	if cfg.Paths.AudioDir != filepath.Join(dir, "out", "audio") {
		t.Errorf("Paths.AudioDir = %q, not derived from generated_dir", cfg.Paths.AudioDir)
	}
	if cfg.Paths.ManifestPath != filepath.Join(dir, "out", "manifest.json") {
		t.Errorf("Paths.ManifestPath = %q", cfg.Paths.ManifestPath)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("pause: 2.0\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("NEWSCAST_PAUSE", "0.25")
	t.Setenv("NEWSCAST_TTS_VENDOR", "google")
	t.Setenv("NEWSCAST_DEBUG", "1")

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}

	if cfg.Pause != 0.25 {
		t.Errorf("Pause = %v, want env override 0.25", cfg.Pause)
	}
	if cfg.TTS.Vendor != VendorGoogle {
		t.Errorf("TTS.Vendor = %q, want google", cfg.TTS.Vendor)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigFrom() error = %v", err)
	}
	if cfg.Pause != DefaultPause {
		t.Errorf("Pause = %v, want default %v", cfg.Pause, DefaultPause)
	}
}

func TestLoadConfigInvalidFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("pause: -1.0\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadConfigFrom(path); err == nil {
		t.Error("LoadConfigFrom() error = nil, want validation error")
	}
}

func TestRunLogConnString(t *testing.T) {
	rl := &RunLogConfig{Host: "db.local", Database: "newscast", User: "pipeline"}
	got := rl.ConnString()
	want := "host=db.local port=5432 dbname=newscast user=pipeline sslmode=require"
	if got != want {
		t.Errorf("ConnString() = %q, want %q", got, want)
	}

	var empty *RunLogConfig
	if empty.IsConfigured() {
		t.Error("nil RunLogConfig reported configured")
	}
}

func TestConfigDirEnvOverride(t *testing.T) {
	t.Setenv("NEWSCAST_CONFIG_DIR", "/tmp/nc-test")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if dir != "/tmp/nc-test" {
		t.Errorf("ConfigDir() = %q, want /tmp/nc-test", dir)
	}
}
