package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/unicmd/unicmd/pkg/config"
	"github.com/unicmd/unicmd/pkg/envelope"
	"github.com/unicmd/unicmd/pkg/modules"
	"github.com/unicmd/unicmd/pkg/platform"
	"github.com/unicmd/unicmd/pkg/runner"
	"github.com/unicmd/unicmd/pkg/telemetry"
)

// exitError carries a module exit code through cobra's error return without
// triggering usage output. The error envelope has already been emitted by the
// time this surfaces.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, version, commit, buildDate string) int {
	rootCmd := newRootCommand(version, commit, buildDate)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	cfg := config.Load()

	var (
		outputFormat string
		outFile      string
		verbose      bool
	)

	rootCmd := &cobra.Command{
		Use:   "unicmd",
		Short: "Unicmd - Distro-agnostic system administration",
		Long: `Unicmd translates abstract system administration operations into the
concrete commands of whatever distribution it runs on.

The package manager, service manager, and firewall backend are probed once
per invocation; the same unicmd command line works unchanged on dnf, yum,
apt, apt-get, zypper, and pacman hosts.

Invocations follow the form:

  unicmd <module> <action> [target] [key:value ...]

Parameters use key:value syntax; a bare "key:" sets a boolean parameter to
true. Results are reported as a TOML envelope on stdout (or raw command
output with --output raw).`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			switch {
			case verbose:
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			case os.Getenv("LOG_LEVEL") == "":
				zerolog.SetGlobalLevel(telemetry.ParseLevel(cfg.Logging.Level))
			}
		},
	}

	// Persistent flags available to all commands. Config supplies the
	// defaults; flags win.
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", cfg.Output.Format, "output format (toml or raw)")
	rootCmd.PersistentFlags().StringVar(&outFile, "out-file", cfg.Output.File, "write the result envelope to this file or directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Dependencies are assembled per run, after flag parsing.
	deps := func() modules.Deps {
		emitter := envelope.New()
		if outFile != "" {
			emitter.SetOutputFile(outFile)
		}
		return modules.Deps{
			Env:     platform.Detect(),
			Exec:    runner.New(),
			Emitter: emitter,
			Format:  envelope.Format(outputFormat),
		}
	}

	for _, name := range moduleOrder {
		rootCmd.AddCommand(newModuleCommand(name, deps))
	}
	rootCmd.AddCommand(newFactsCommand(deps))

	return rootCmd
}
