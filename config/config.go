// Package config provides CLI configuration management for the newscast command-line tool.
// It supports loading configuration from YAML files, environment variables, and command-line flags.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// TTS vendor identifiers.
const (
	VendorElevenLabs = "elevenlabs"
	VendorGoogle     = "google"
)

// Default configuration values.
const (
	DefaultPause        = 1.0
	DefaultLanguage     = "en-US"
	DefaultVendor       = VendorElevenLabs
	DefaultOutputFormat = OutputFormatText
	DefaultConfigDir    = ".newscast"
	DefaultConfigFile   = "config.yaml"
	DefaultServerAddr   = "localhost:8750"
	DefaultWorkers      = 2
)

// StationConfig identifies the broadcast and seeds the fallback script templates.
type StationConfig struct {
	// StationName is the on-air name of the broadcast (e.g. "Bayview Nine News").
	StationName string `yaml:"station_name"`

	// Location is the city or area the broadcast covers.
	Location string `yaml:"location"`

	// Region is the wider region used in weather and summary scripts.
	Region string `yaml:"region,omitempty"`

	// AnchorName is the presenter name used in greetings and sign-offs.
	AnchorName string `yaml:"anchor_name"`

	// Timezone is the IANA zone name used to pick the time-of-day greeting.
	Timezone string `yaml:"timezone,omitempty"`
}

// TTSConfig holds speech synthesis vendor settings.
type TTSConfig struct {
	// Vendor selects the synthesis backend: "elevenlabs" or "google".
	Vendor string `yaml:"vendor"`

	// VoiceID is the vendor voice identifier.
	VoiceID string `yaml:"voice_id"`

	// Model is the vendor synthesis model name.
	Model string `yaml:"model,omitempty"`

	// LanguageCode is the BCP-47 code sent to the vendor.
	LanguageCode string `yaml:"language_code,omitempty"`

	// SpeakingRate adjusts playback speed (1.0 = normal).
	SpeakingRate float64 `yaml:"speaking_rate,omitempty"`

	// Stability and SimilarityBoost are ElevenLabs voice tuning knobs.
	Stability       float64 `yaml:"stability,omitempty"`
	SimilarityBoost float64 `yaml:"similarity_boost,omitempty"`

	// Replacements maps literal text to its spoken form, applied before
	// synthesis (e.g. "km/h" -> "kilometers per hour").
	Replacements map[string]string `yaml:"replacements,omitempty"`

	// UseReplacements toggles the replacement pass.
	UseReplacements bool `yaml:"use_replacements,omitempty"`
}

// LLMConfig holds script generation collaborator settings.
type LLMConfig struct {
	// BaseURL is the chat-completions endpoint base (empty disables the LLM;
	// deterministic templates are used instead).
	BaseURL string `yaml:"base_url,omitempty"`

	// Model is the model name sent with each request.
	Model string `yaml:"model,omitempty"`

	// Temperature controls sampling randomness.
	Temperature float64 `yaml:"temperature,omitempty"`

	// MaxTokens caps the response length.
	MaxTokens int `yaml:"max_tokens,omitempty"`
}

// WeatherConfig holds the weather sub-pipeline settings.
type WeatherConfig struct {
	// Enabled turns the weather block on.
	Enabled bool `yaml:"enabled"`

	// SourceURL is the weather facts endpoint.
	SourceURL string `yaml:"source_url,omitempty"`

	// LocationHint is passed to the extractor to disambiguate the location.
	LocationHint string `yaml:"location_hint,omitempty"`
}

// PathsConfig holds the working directories and artifact paths.
type PathsConfig struct {
	// GeneratedDir is the root for pipeline artifacts.
	GeneratedDir string `yaml:"generated_dir,omitempty"`

	// AudioDir holds rendered audio files.
	AudioDir string `yaml:"audio_dir,omitempty"`

	// MediaDir holds source images and bookend videos.
	MediaDir string `yaml:"media_dir,omitempty"`

	// AnchorDir holds talking-head renders.
	AnchorDir string `yaml:"anchor_dir,omitempty"`

	// ManifestPath is where the final manifest is written.
	ManifestPath string `yaml:"manifest_path,omitempty"`

	// ScriptsPath is where the scripts step persists its output.
	ScriptsPath string `yaml:"scripts_path,omitempty"`

	// RenderedPath is where the render step persists its output.
	RenderedPath string `yaml:"rendered_path,omitempty"`

	// SourcesPath is the collected source items input file.
	SourcesPath string `yaml:"sources_path,omitempty"`
}

// ResolveDefaults fills unset paths relative to GeneratedDir.
func (p *PathsConfig) ResolveDefaults() {
	if p.GeneratedDir == "" {
		p.GeneratedDir = "generated"
	}
	p.GeneratedDir = expandPath(p.GeneratedDir)
	if p.AudioDir == "" {
		p.AudioDir = filepath.Join(p.GeneratedDir, "audio")
	}
	if p.AnchorDir == "" {
		p.AnchorDir = filepath.Join(p.GeneratedDir, "anchor")
	}
	if p.ManifestPath == "" {
		p.ManifestPath = filepath.Join(p.GeneratedDir, "manifest.json")
	}
	if p.ScriptsPath == "" {
		p.ScriptsPath = filepath.Join(p.GeneratedDir, "scripts.json")
	}
	if p.RenderedPath == "" {
		p.RenderedPath = filepath.Join(p.GeneratedDir, "rendered.json")
	}
	if p.MediaDir == "" {
		p.MediaDir = "media"
	}
	if p.SourcesPath == "" {
		p.SourcesPath = "sources.json"
	}
	p.AudioDir = expandPath(p.AudioDir)
	p.MediaDir = expandPath(p.MediaDir)
	p.AnchorDir = expandPath(p.AnchorDir)
	p.ManifestPath = expandPath(p.ManifestPath)
	p.ScriptsPath = expandPath(p.ScriptsPath)
	p.RenderedPath = expandPath(p.RenderedPath)
	p.SourcesPath = expandPath(p.SourcesPath)
}

// WeatherScriptsPath is where the weather block scripts are persisted.
func (p *PathsConfig) WeatherScriptsPath() string {
	return filepath.Join(p.GeneratedDir, "weather_scripts.json")
}

// WeatherRenderedPath is where the rendered weather block is persisted.
func (p *PathsConfig) WeatherRenderedPath() string {
	return filepath.Join(p.GeneratedDir, "weather_rendered.json")
}

// RedisConfig holds the shared anchor job queue settings.
type RedisConfig struct {
	// Addr is the Redis host:port. Empty means the in-memory queue is used.
	Addr string `yaml:"addr,omitempty"`

	// Password is the Redis AUTH password.
	Password string `yaml:"password,omitempty"`

	// DB is the Redis database number.
	DB int `yaml:"db,omitempty"`

	// Queue is the list key jobs are pushed to.
	Queue string `yaml:"queue,omitempty"`
}

// AnchorConfig holds the talking-head render step settings.
type AnchorConfig struct {
	// Workers is the fixed pool size.
	Workers int `yaml:"workers,omitempty"`

	// Command is the external renderer invocation. The placeholders
	// {audio}, {face} and {output} are substituted per job.
	Command string `yaml:"command,omitempty"`

	// FacePath is the presenter face asset passed to the renderer.
	FacePath string `yaml:"face_path,omitempty"`

	// Redis configures the shared job queue backend.
	Redis RedisConfig `yaml:"redis,omitempty"`
}

// RunLogConfig holds Postgres settings for the step run history.
type RunLogConfig struct {
	// Host is the database server hostname.
	Host string `yaml:"host,omitempty"`

	// Port is the database server port (default: 5432).
	Port int `yaml:"port,omitempty"`

	// Database is the database name.
	Database string `yaml:"database,omitempty"`

	// User is the database username.
	User string `yaml:"user,omitempty"`

	// SSLMode is the SSL connection mode (disable, require, verify-ca, verify-full).
	SSLMode string `yaml:"sslmode,omitempty"`
}

// ConnString returns the PostgreSQL connection string for the run log.
// Returns empty string if the run log is not configured.
func (c *RunLogConfig) ConnString() string {
	if !c.IsConfigured() {
		return ""
	}

	port := c.Port
	if port == 0 {
		port = 5432
	}

	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}

	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s sslmode=%s",
		c.Host, port, c.Database, c.User, sslmode)
}

// IsConfigured returns true if the run log has the required fields.
func (c *RunLogConfig) IsConfigured() bool {
	return c != nil && c.Host != "" && c.Database != "" && c.User != ""
}

// ServerConfig holds the player facade settings.
type ServerConfig struct {
	// Addr is the listen address (host:port).
	Addr string `yaml:"addr,omitempty"`
}

// Config holds the newscast CLI configuration settings.
type Config struct {
	// Station identifies the broadcast.
	Station StationConfig `yaml:"station"`

	// Language is the broadcast language tag (BCP-47).
	Language string `yaml:"language,omitempty"`

	// Pause is the gap inserted between segments, in seconds.
	Pause float64 `yaml:"pause"`

	// Brief selects the short-format duration tables.
	Brief bool `yaml:"brief,omitempty"`

	// TTS configures speech synthesis.
	TTS TTSConfig `yaml:"tts"`

	// LLM configures the script generation collaborator.
	LLM LLMConfig `yaml:"llm,omitempty"`

	// Weather configures the weather block.
	Weather WeatherConfig `yaml:"weather,omitempty"`

	// Paths configures artifact locations.
	Paths PathsConfig `yaml:"paths,omitempty"`

	// Anchor configures the talking-head render step.
	Anchor AnchorConfig `yaml:"anchor,omitempty"`

	// RunLog configures the Postgres step run history.
	RunLog *RunLogConfig `yaml:"run_log,omitempty"`

	// Server configures the player facade.
	Server ServerConfig `yaml:"server,omitempty"`

	// OutputFormat specifies the default output format for commands.
	OutputFormat OutputFormat `yaml:"output_format"`

	// Debug enables verbose debug logging.
	Debug bool `yaml:"debug,omitempty"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Language: DefaultLanguage,
		Pause:    DefaultPause,
		TTS: TTSConfig{
			Vendor:       DefaultVendor,
			LanguageCode: DefaultLanguage,
			SpeakingRate: 1.0,
		},
		Anchor: AnchorConfig{
			Workers: DefaultWorkers,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
		OutputFormat: DefaultOutputFormat,
	}
}

// ConfigDir returns the configuration directory path.
// Uses $NEWSCAST_CONFIG_DIR if set, otherwise ~/.newscast
func ConfigDir() (string, error) {
	if dir := os.Getenv("NEWSCAST_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the CLI configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.newscast/config.yaml or $NEWSCAST_CONFIG_DIR/config.yaml)
// 3. Environment variables (NEWSCAST_*)
func LoadConfig() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads configuration using an explicit file path.
func LoadConfigFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	loadFromEnv(cfg)

	cfg.Paths.ResolveDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("NEWSCAST_LANGUAGE"); v != "" {
		cfg.Language = v
	}

	if v := os.Getenv("NEWSCAST_PAUSE"); v != "" {
		if pause, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Pause = pause
		}
	}

	if v := os.Getenv("NEWSCAST_BRIEF"); v == "true" || v == "1" {
		cfg.Brief = true
	}

	if v := os.Getenv("NEWSCAST_TTS_VENDOR"); v != "" {
		cfg.TTS.Vendor = v
	}

	if v := os.Getenv("NEWSCAST_TTS_VOICE_ID"); v != "" {
		cfg.TTS.VoiceID = v
	}

	if v := os.Getenv("NEWSCAST_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}

	if v := os.Getenv("NEWSCAST_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}

	if v := os.Getenv("NEWSCAST_GENERATED_DIR"); v != "" {
		cfg.Paths.GeneratedDir = v
	}

	if v := os.Getenv("NEWSCAST_MEDIA_DIR"); v != "" {
		cfg.Paths.MediaDir = v
	}

	if v := os.Getenv("NEWSCAST_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	if v := os.Getenv("NEWSCAST_REDIS_ADDR"); v != "" {
		cfg.Anchor.Redis.Addr = v
	}

	if v := os.Getenv("NEWSCAST_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}

	if v := os.Getenv("NEWSCAST_DEBUG"); v == "true" || v == "1" {
		cfg.Debug = true
	}

	loadRunLogFromEnv(cfg)
}

// loadRunLogFromEnv overlays run log environment variables.
func loadRunLogFromEnv(cfg *Config) {
	host := os.Getenv("NEWSCAST_RUNLOG_HOST")
	database := os.Getenv("NEWSCAST_RUNLOG_DATABASE")
	user := os.Getenv("NEWSCAST_RUNLOG_USER")

	if host == "" && database == "" && user == "" {
		return // No env vars set.
	}

	if cfg.RunLog == nil {
		cfg.RunLog = &RunLogConfig{}
	}

	if host != "" {
		cfg.RunLog.Host = host
	}
	if database != "" {
		cfg.RunLog.Database = database
	}
	if user != "" {
		cfg.RunLog.User = user
	}
	if v := os.Getenv("NEWSCAST_RUNLOG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.RunLog.Port = port
		}
	}
	if v := os.Getenv("NEWSCAST_RUNLOG_SSLMODE"); v != "" {
		cfg.RunLog.SSLMode = v
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if math.IsNaN(c.Pause) || c.Pause < 0 {
		return fmt.Errorf("pause must be a non-negative number of seconds, got %v", c.Pause)
	}

	if c.Language != "" {
		if _, err := language.Parse(c.Language); err != nil {
			return fmt.Errorf("invalid language tag %q: %w", c.Language, err)
		}
	}

	switch c.TTS.Vendor {
	case VendorElevenLabs, VendorGoogle:
	default:
		return fmt.Errorf("invalid tts vendor: %q (must be %s or %s)",
			c.TTS.Vendor, VendorElevenLabs, VendorGoogle)
	}

	if c.Anchor.Workers <= 0 {
		return fmt.Errorf("anchor workers must be positive, got %d", c.Anchor.Workers)
	}

	if !c.OutputFormat.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.OutputFormat)
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// SaveConfig saves the configuration to the config file.
func SaveConfig(cfg *Config) error {
	configDir, err := ConfigDir()
	if err != nil {
		return fmt.Errorf("getting config directory: %w", err)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	configPath := filepath.Join(configDir, DefaultConfigFile)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path // Return original if home dir lookup fails.
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
