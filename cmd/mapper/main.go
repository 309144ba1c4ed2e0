/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for the Aria State Mapper. Provides
command-line options, configuration management, and logging setup for mapping
web application UI state machines through the accessibility tree.
*/

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kleascm/aria-state-mapper/cmd/mapper/commands"
)

var (
	// Configuration
	configFile string
	logLevel   string
	jsonLogs   bool

	// Target configuration
	targetURL string
	username  string
	password  string

	// Exploration configuration
	maxStates          int
	maxDepth           int
	actionTimeout      time.Duration
	useBFS             bool
	safeButtons        []string
	skipLoginDiscovery bool

	// Seed configuration
	seedMap string

	// Output configuration
	outputPath string
	recordPath string

	// Browser configuration
	headless bool

	// Logging configuration
	logDir      string
	logFormat   string
	logMaxFiles int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "aria-mapper",
		Short: "Aria State Mapper - UI state machine discovery through the accessibility tree",
		Long: `Aria State Mapper drives a real browser against a web application and
reconstructs its UI as a finite state machine. States are identified by fuzzy
accessibility fingerprints rather than URLs, so client-side routing, modals,
and conditional flows all become first-class nodes in the exported graph.`,
		Version: "1.0.0",
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Use JSON log format")

	// Add logging-specific flags
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Log output directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of log files to keep")

	// Target and browser flags shared by every command
	rootCmd.PersistentFlags().StringVar(&targetURL, "url", "", "Target application URL (required)")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "Login username for authenticated flows")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Login password for authenticated flows")
	rootCmd.PersistentFlags().DurationVar(&actionTimeout, "timeout", 10*time.Second, "Timeout per browser action")
	rootCmd.PersistentFlags().BoolVar(&headless, "headless", true, "Run the browser in headless mode")

	// Bind persistent flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
	viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("username"))
	viper.BindPFlag("password", rootCmd.PersistentFlags().Lookup("password"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("headless", rootCmd.PersistentFlags().Lookup("headless"))

	rootCmd.MarkPersistentFlagRequired("url")

	// Add discover command
	discoverCmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover the UI state machine of a web application",
		Long: `Start a discovery session against a target application. The mapper captures
accessibility fingerprints, deduplicates states through weighted similarity,
executes safe actions to traverse transitions, and exports the resulting
state machine as a JSON graph.`,
		RunE: commands.RunDiscover,
	}

	discoverCmd.Flags().IntVar(&maxStates, "max-states", 100, "Maximum number of states to explore")
	discoverCmd.Flags().IntVar(&maxDepth, "max-depth", 10, "Maximum exploration depth")
	discoverCmd.Flags().BoolVar(&useBFS, "use-bfs", false, "Explore breadth-first instead of depth-first")
	discoverCmd.Flags().StringSliceVar(&safeButtons, "safe-buttons", []string{}, "Button name patterns considered safe to click")
	discoverCmd.Flags().BoolVar(&skipLoginDiscovery, "skip-login-discovery", false, "Skip automatic login flow discovery")

	discoverCmd.Flags().StringVar(&seedMap, "seed-map", "", "Previously exported graph to verify and extend")
	discoverCmd.Flags().StringVar(&outputPath, "output", "./state_graph.json", "Path for the exported graph")
	discoverCmd.Flags().StringVar(&recordPath, "record", "", "Path for the recorded action session (optional)")

	viper.BindPFlag("max_states", discoverCmd.Flags().Lookup("max-states"))
	viper.BindPFlag("max_depth", discoverCmd.Flags().Lookup("max-depth"))
	viper.BindPFlag("use_bfs", discoverCmd.Flags().Lookup("use-bfs"))
	viper.BindPFlag("safe_buttons", discoverCmd.Flags().Lookup("safe-buttons"))
	viper.BindPFlag("skip_login_discovery", discoverCmd.Flags().Lookup("skip-login-discovery"))
	viper.BindPFlag("seed_map", discoverCmd.Flags().Lookup("seed-map"))
	viper.BindPFlag("output", discoverCmd.Flags().Lookup("output"))
	viper.BindPFlag("record", discoverCmd.Flags().Lookup("record"))

	rootCmd.AddCommand(discoverCmd)

	// Add replay command
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a path through an exported state graph",
		Long: `Load an exported graph and drive the browser along its transitions to a
target state, or play back a recorded action session. Login edges are
re-executed with live credentials since the graph never stores secrets.`,
		RunE: commands.RunReplay,
	}

	// Graph and target-state are command-local: the same flag names exist on
	// verify, so they are read from the command instead of viper.
	replayCmd.Flags().String("graph", "", "Exported graph to replay")
	replayCmd.Flags().String("target-state", "", "State id to navigate to")
	replayCmd.Flags().String("recording", "", "Recorded action session to play back")

	replayCmd.MarkFlagsOneRequired("graph", "recording")
	replayCmd.MarkFlagsMutuallyExclusive("graph", "recording")
	replayCmd.MarkFlagsRequiredTogether("graph", "target-state")

	rootCmd.AddCommand(replayCmd)

	// Add verify command for seed-only verification
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an exported graph against the live application",
		Long: `Re-visit every state of an exported graph and grade it as unchanged,
modified, removed, or unreachable, writing the verification report alongside
the refreshed graph.`,
		RunE: commands.RunVerify,
	}

	verifyCmd.Flags().String("graph", "", "Exported graph to verify (required)")
	verifyCmd.Flags().String("output", "./state_graph_verified.json", "Path for the refreshed graph")

	verifyCmd.MarkFlagRequired("graph")

	rootCmd.AddCommand(verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
