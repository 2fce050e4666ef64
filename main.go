// Package main provides the newscast CLI entry point.
// newscast builds timed news broadcasts: scripts, audio, anchor videos,
// and the manifest players pull.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nexcaster/newscast-cli/cmd"
	"github.com/nexcaster/newscast-cli/config"
	"github.com/nexcaster/newscast-cli/credentials"
	"github.com/nexcaster/newscast-cli/pkg/buildinfo"
	"github.com/nexcaster/newscast-cli/pkg/logging"
	"github.com/nexcaster/newscast-cli/pkg/runlog"
)

// Global flags and state.
var (
	cfgFile      string
	outputFormat string
	debug        bool

	// cfg holds the loaded configuration.
	cfg *config.Config

	// deps is shared by all step commands; built in PersistentPreRunE.
	deps *cmd.Deps
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "newscast",
	Short: "newscast builds timed news broadcasts from collected sources",
	Long: `newscast is the pipeline CLI for assembling a news broadcast.

It turns collected source items into narration scripts, renders them to
audio, optionally renders talking-head anchor videos, computes the timed
playback manifest, and serves the result to players.

PIPELINE STEPS:
  newscast scripts    Generate narration scripts from sources
  newscast render     Synthesize audio and measure durations
  newscast anchor     Render talking-head videos (optional)
  newscast build      Compute the timed manifest
  newscast serve      Serve the manifest and assets to players
  newscast run        All steps in order

Each step persists its output under the generated directory, so steps
can be re-run individually. Audio renders are content-addressed: a
re-run only calls the TTS vendor for segments whose text changed.`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		// Skip initialization for commands that don't need it.
		if c.Name() == "version" || c.Name() == "help" || c.Name() == "completion" {
			return nil
		}

		var err error
		if cfgFile != "" {
			cfg, err = config.LoadConfigFrom(cfgFile)
		} else {
			cfg, err = config.LoadConfig()
		}
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		// Override with command-line flags.
		if outputFormat != "" {
			format := config.OutputFormat(outputFormat)
			if !format.IsValid() {
				return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", outputFormat)
			}
			cfg.OutputFormat = format
		}
		if debug {
			cfg.Debug = true
		}

		level := logging.LevelInfo
		if cfg.Debug {
			level = logging.LevelDebug
		}
		log := logging.NewLogger(&logging.Config{
			Level:      level,
			Component:  "newscast",
			JSONFormat: cfg.OutputFormat == config.OutputFormatJSON,
		})

		deps = cmd.NewDeps(cfg, log)

		// The run log is best-effort; a missing database never blocks a run.
		if cfg.RunLog.IsConfigured() {
			ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
			defer cancel()
			recorder, err := runlog.Connect(ctx, cfg.RunLog.ConnString())
			if err != nil {
				log.Warn("run log unavailable, continuing without history", logging.Err(err))
			} else {
				deps.Recorder = recorder
			}
		}

		return nil
	},
	PersistentPostRunE: func(c *cobra.Command, args []string) error {
		if deps != nil && deps.Recorder != nil {
			deps.Recorder.Close()
		}
		return nil
	},
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build time of the newscast CLI.`,
	Run: func(c *cobra.Command, args []string) {
		info := buildinfo.Get()
		out := c.OutOrStdout()
		fmt.Fprintf(out, "newscast version %s\n", info.Version)
		fmt.Fprintf(out, "  commit:     %s\n", info.Commit)
		fmt.Fprintf(out, "  built:      %s\n", info.BuildTime)
	},
}

// configCmd manages CLI configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `View and modify the newscast CLI configuration settings.`,
}

// configShowCmd displays current configuration.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current CLI configuration values.`,
	RunE: func(c *cobra.Command, args []string) error {
		configPath, _ := config.ConfigPath()
		out := c.OutOrStdout()

		fmt.Fprintln(out, "Current configuration:")
		fmt.Fprintf(out, "  Config file:    %s\n", configPath)
		fmt.Fprintf(out, "  Station:        %s\n", valueOrDefault(cfg.Station.StationName, "(not set)"))
		fmt.Fprintf(out, "  Location:       %s\n", valueOrDefault(cfg.Station.Location, "(not set)"))
		fmt.Fprintf(out, "  Language:       %s\n", cfg.Language)
		fmt.Fprintf(out, "  Pause:          %.1fs\n", cfg.Pause)
		fmt.Fprintf(out, "  Brief:          %t\n", cfg.Brief)
		fmt.Fprintf(out, "  TTS vendor:     %s\n", cfg.TTS.Vendor)
		fmt.Fprintf(out, "  Voice:          %s\n", valueOrDefault(cfg.TTS.VoiceID, "(not set)"))
		fmt.Fprintf(out, "  Weather:        %t\n", cfg.Weather.Enabled)
		fmt.Fprintf(out, "  Generated dir:  %s\n", cfg.Paths.GeneratedDir)
		fmt.Fprintf(out, "  Server address: %s\n", cfg.Server.Addr)
		fmt.Fprintf(out, "  Output format:  %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "  Debug:          %t\n", cfg.Debug)

		return nil
	},
}

// configInitCmd initializes configuration.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	Long:  `Create a new configuration file with default values if one doesn't exist.`,
	RunE: func(c *cobra.Command, args []string) error {
		configPath, err := config.ConfigPath()
		if err != nil {
			return fmt.Errorf("getting config path: %w", err)
		}

		if _, err := os.Stat(configPath); err == nil {
			fmt.Printf("Configuration file already exists: %s\n", configPath)
			fmt.Println("Use 'newscast config show' to view current settings.")
			return nil
		}

		defaultCfg := config.DefaultConfig()
		if err := config.SaveConfig(defaultCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Printf("Created configuration file: %s\n", configPath)
		fmt.Println("\nNext steps:")
		fmt.Println("  newscast config set station_name \"Your Station\"")
		fmt.Println("  newscast config set voice_id <vendor voice id>")
		fmt.Printf("  newscast config set-key %s\n", defaultCfg.TTS.Vendor)

		return nil
	},
}

// configSetCmd sets a configuration value.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the config file.

Available keys:
  station_name   - On-air name of the broadcast
  location       - City or area the broadcast covers
  anchor_name    - Presenter name used in greetings
  language       - Broadcast language tag (BCP-47, e.g. en-US)
  pause          - Gap between segments in seconds (e.g. 1.0)
  brief          - Use the short-format durations (true/false)
  tts_vendor     - Speech vendor (elevenlabs or google)
  voice_id       - Vendor voice identifier
  output_format  - Default output format (text, json, yaml)
  debug          - Enable debug mode (true/false)

Examples:
  newscast config set station_name "Bayview Nine News"
  newscast config set pause 1.5
  newscast config set output_format json`,
	Args: cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		currentCfg, err := config.LoadConfig()
		if err != nil {
			currentCfg = config.DefaultConfig()
		}

		switch key {
		case "station_name":
			currentCfg.Station.StationName = value
		case "location":
			currentCfg.Station.Location = value
		case "anchor_name":
			currentCfg.Station.AnchorName = value
		case "language":
			currentCfg.Language = value
		case "pause":
			pause, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("invalid pause value: %w", err)
			}
			currentCfg.Pause = pause
		case "brief":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid brief value: %s (must be true or false)", value)
			}
			currentCfg.Brief = b
		case "tts_vendor":
			if value != config.VendorElevenLabs && value != config.VendorGoogle {
				return fmt.Errorf("invalid vendor: %s (must be %s or %s)", value, config.VendorElevenLabs, config.VendorGoogle)
			}
			currentCfg.TTS.Vendor = value
		case "voice_id":
			currentCfg.TTS.VoiceID = value
		case "output_format":
			format := config.OutputFormat(value)
			if !format.IsValid() {
				return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", value)
			}
			currentCfg.OutputFormat = format
		case "debug":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid debug value: %s (must be true or false)", value)
			}
			currentCfg.Debug = b
		default:
			return fmt.Errorf("unknown configuration key: %s", key)
		}

		if err := config.SaveConfig(currentCfg); err != nil {
			return fmt.Errorf("saving configuration: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

// configSetKeyCmd stores a vendor API key in the system keyring.
var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <vendor>",
	Short: "Store a vendor API key in the system keyring",
	Long: `Prompt for a vendor API key and store it in the system keyring.

The key never touches the config file. The NEWSCAST_<VENDOR>_API_KEY
environment variable takes precedence over the keyring when set.

Examples:
  newscast config set-key elevenlabs
  newscast config set-key google`,
	Args: cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		store := credentials.NewStore()
		if err := store.PromptAndSet(args[0]); err != nil {
			return fmt.Errorf("storing API key: %w", err)
		}
		fmt.Printf("Stored API key for %s\n", args[0])
		return nil
	},
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for newscast.

To load completions:

Bash:
  $ source <(newscast completion bash)

Zsh:
  $ newscast completion zsh > "${fpath[1]}/_newscast"

Fish:
  $ newscast completion fish | source
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(c *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func init() {
	// Global flags.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.newscast/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "", "output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	// Pipeline step commands share the lazily built deps. The indirection
	// exists because deps is only constructed in PersistentPreRunE.
	stepDeps := &cmd.Deps{}
	rootCmd.AddCommand(
		withDeps(stepDeps, cmd.NewScriptsCommand),
		withDeps(stepDeps, cmd.NewRenderCommand),
		withDeps(stepDeps, cmd.NewAnchorCommand),
		withDeps(stepDeps, cmd.NewBuildCommand),
		withDeps(stepDeps, cmd.NewServeCommand),
		withDeps(stepDeps, cmd.NewRunCommand),
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

// withDeps builds a step command around the shared deps and copies the
// loaded values in just before the step runs.
func withDeps(shared *cmd.Deps, build func(*cmd.Deps) *cobra.Command) *cobra.Command {
	c := build(shared)
	runE := c.RunE
	c.RunE = func(cc *cobra.Command, args []string) error {
		if deps == nil {
			return fmt.Errorf("configuration not loaded")
		}
		*shared = *deps
		return runE(cc, args)
	}
	return c
}

func main() {
	// Graceful shutdown on interrupt; a second signal kills the process.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
