package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Veraticus/hntax/internal/cli"
	"github.com/Veraticus/hntax/internal/common"
	"github.com/Veraticus/hntax/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = &cobra.Command{
		Use:   "hntax",
		Short: "Hotspot earnings tax report",
		Long: `hntax submits an account address and tax year to the earnings backend,
waits for the job to finish and shows the total earnings with a CSV export.

Run without a subcommand to start the interactive UI.`,
		PersistentPreRunE: initConfig,
		RunE:              runTUI,
		SilenceUsage:      true,
	}
	logCloser io.Closer
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/hntax/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("base-url", config.DefaultBaseURL, "backend base URL")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyBaseURL, rootCmd.PersistentFlags().Lookup("base-url"))

	addPrefillFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(cacheCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel() // Always cleanup

	if logCloser != nil {
		_ = logCloser.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		os.Exit(exitCode(err))
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := config.Dir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := setupLogging(interactive(cmd)); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	cmd.SetContext(common.WithLogger(cmd.Context(), slog.Default()))

	common.LogDebug("Configuration loaded", common.Fields{
		"file":    v.ConfigFileUsed(),
		"command": cmd.Name(),
	})
	return nil
}

// exitCode is 2 for rejected input and 1 for everything else.
func exitCode(err error) int {
	if common.IsValidation(err) {
		return 2
	}
	return 1
}

// interactive reports whether cmd takes over the terminal.
func interactive(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "tui"
}

// setupLogging configures the default logger. The interactive UI owns the
// screen, so its logs go to logging.file instead of stderr.
func setupLogging(toFile bool) error {
	level, err := common.ParseLevel(viper.GetString(config.KeyLogLevel))
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	if toFile {
		path := config.ExpandPath(viper.GetString(config.KeyLogFile))
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logCloser = f
		w = f
	}

	return common.SetupLogger(w, level, viper.GetString(config.KeyLogFormat))
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hntax %s\n", version)
		},
	}
}
