package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/framelock/capture-engine/internal/config"
	"github.com/framelock/capture-engine/internal/engine"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	flagProfile string
	flagEnvFile string
	flagVerbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "framelock",
		Short: "Identity document capture engine",
		Long: `framelock detects identity documents in camera frames, scores and
stabilizes the detection, rectifies the document, and drives a
head-turn liveness challenge. The commands below run the same pipeline
the embedding host uses, against images and recorded sessions.`,
		Version:      Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(fmt.Sprintf(
		"framelock {{.Version}}\n  Build time: %s\n  Git commit: %s\n", BuildTime, GitCommit))

	root.PersistentFlags().StringVar(&flagProfile, "profile", "",
		"configuration profile: strict or lenient")
	root.PersistentFlags().StringVar(&flagEnvFile, "env-file", "",
		"dotenv file with FRAMELOCK_* variables")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"debug logging")

	root.AddCommand(newDetectCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newLivenessCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "framelock %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  Build time: %s\n", BuildTime)
			fmt.Fprintf(cmd.OutOrStdout(), "  Git commit: %s\n", GitCommit)
		},
	}
}

// loadConfig resolves the configuration with flag > environment >
// profile precedence. The --profile flag is injected as the profile
// variable so the config package applies it before the overrides.
func loadConfig() (engine.Config, error) {
	if flagProfile != "" {
		if err := os.Setenv(config.EnvProfile, flagProfile); err != nil {
			return engine.Config{}, err
		}
	}
	return config.Load(flagEnvFile)
}

// newLogger builds the CLI logger on stderr; stdout carries command
// output only.
func newLogger() (*zap.Logger, error) {
	if flagVerbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
