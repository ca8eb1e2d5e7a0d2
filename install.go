package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bcomnes/versync/internal/buildtool"
	"github.com/bcomnes/versync/internal/config"
	"github.com/bcomnes/versync/internal/logging"
)

// newRunner is swapped in tests.
var newRunner = func(stream io.Writer) buildtool.Runner {
	return buildtool.ExecRunner{Stream: stream}
}

func newInstallCmd(c *cli) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Configure the project with CMake and build its install target",
		Long: `Run "cmake -H<source> -B<folder> -G<generator> ..." followed by
"cmake --build <folder> --target install". Settings come from the [build]
section of the configuration, VERSYNC_BUILD_* environment variables and the
flags below, in increasing order of precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig(config.Options{
				Dir:      ".",
				Flags:    cmd.Flags(),
				FlagKeys: config.BuildFlagKeys,
			})
			if err != nil {
				return fatal(err)
			}

			var stream io.Writer
			if !quiet {
				stream = c.stderr
			}
			inst := &buildtool.Installer{
				Runner: newRunner(stream),
				Config: cfg.Build,
				Log:    logging.GetLogger("install"),
			}
			if !quiet {
				fmt.Fprintln(c.stdout, "Installing package:")
				fmt.Fprintf(c.stdout, "cmake %s\n", strings.Join(inst.ConfigureArgs(), " "))
				fmt.Fprintf(c.stdout, "cmake %s\n", strings.Join(inst.BuildArgs(), " "))
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := inst.Install(ctx); err != nil {
				return &ExitError{Code: exitFailure, Err: err}
			}
			return nil
		},
	}

	d := buildtool.DefaultConfig()
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not report the cmake commands issued")
	cmd.Flags().String("source", d.Source, "Source directory containing CMakeLists.txt")
	cmd.Flags().String("build-folder", d.Folder, "CMake build folder")
	cmd.Flags().String("generator", d.Generator, "CMake generator")
	cmd.Flags().String("compiler", d.Compiler, "C++ compiler")
	cmd.Flags().String("build-type", "", "CMake configuration (Debug, Release)")
	cmd.Flags().String("install-prefix", "", "CMake install prefix")
	return cmd
}
