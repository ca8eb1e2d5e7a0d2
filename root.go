package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bcomnes/versync/internal/config"
	"github.com/bcomnes/versync/internal/logging"
	"github.com/bcomnes/versync/internal/report"
)

// cli holds the global flags and writers shared by every command.
type cli struct {
	verbosity  int
	configFile string
	output     string
	noColor    bool

	stdout   io.Writer
	stderr   io.Writer
	logger   zerolog.Logger
	closeLog func() error
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *cli) {
	c := &cli{
		stdout:   stdout,
		stderr:   stderr,
		logger:   zerolog.Nop(),
		closeLog: func() error { return nil },
	}

	rootCmd := &cobra.Command{
		Use:   "versync",
		Short: "Synchronize a version number across files",
		Long: `versync writes one major.minor.patch version into every file named in its
rule table. Each rule pairs a file with a regular expression that captures the
version marker in it and a replacement template using {major}, {minor} and
{patch}. Every file is either fully updated or left untouched.

Rules are read from .versync.toml (or versync.toml, .versync.yaml, versync.yaml)
in the current directory, or from the file given with --config.`,
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			c.logger, c.closeLog = logging.Setup(c.stderr, c.verbosity, logging.LogFilePath())
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetVersionTemplate("versync version {{.Version}}\n")

	rootCmd.PersistentFlags().CountVarP(&c.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "Rule table file (default: ./.versync.toml)")
	rootCmd.PersistentFlags().StringVarP(&c.output, "output", "o", string(report.Text), "Output format (text|yaml|json)")
	rootCmd.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "Disable coloured output")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return report.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(
		newSyncCmd(c),
		newCheckCmd(c),
		newInitCmd(c),
		newRulesCmd(c),
		newInstallCmd(c),
		newVersionCmd(),
	)
	return rootCmd, c
}

// loadConfig loads the configuration named by --config or found in the
// working directory.
func (c *cli) loadConfig(opts config.Options) (*config.Config, error) {
	opts.File = c.configFile
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, err
	}
	if cfg.Found() {
		c.logger.Debug().Str("path", cfg.Path).Msg("Loaded configuration")
	}
	return cfg, nil
}

func (c *cli) reportOptions() (report.Options, error) {
	format, err := report.ParseFormat(c.output)
	if err != nil {
		return report.Options{}, err
	}
	wd, _ := os.Getwd()
	return report.Options{
		Format:  format,
		Color:   colorEnabled(c.stdout, c.noColor),
		Verbose: c.verbosity > 0,
		BaseDir: wd,
	}, nil
}

// colorEnabled reports whether w is a terminal and colour was not disabled.
func colorEnabled(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "versync CLI version %s\n", Version)
		},
	}
}
