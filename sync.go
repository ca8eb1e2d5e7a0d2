package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/bcomnes/versync/internal/config"
	"github.com/bcomnes/versync/internal/logging"
	"github.com/bcomnes/versync/internal/report"
	versync "github.com/bcomnes/versync/pkg"
)

func newSyncCmd(c *cli) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "sync <version>",
		Short: "Write a version into every file of the rule table",
		Long: `Write <version> (major.minor.patch) into every file named in the rule table.

Each file is rewritten atomically. A rule whose file is missing or unwritable
is reported as failed and the other rules still run. A rule whose pattern no
longer matches its file is reported as no-match. The command exits 1 if any
rule failed and 2 if the version or the rule table is invalid, in which case
no file is touched.`,
		Example: `  versync sync 1.3.0
  versync sync --dry-run -v 2.0.0
  versync -c tools/versions.yaml sync 0.34.0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.synchronize(cmd.Context(), args[0], dryRun)
			if err != nil {
				return err
			}
			if !res.OK() {
				return &ExitError{Code: exitFailure}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report what would change without writing any file")
	return cmd
}

func newCheckCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "check <version>",
		Short: "Verify that every rule matches its file, without writing",
		Long: `Run every rule against its file without writing anything and exit 1 unless
every rule matches and no file carries a version newer than <version>. Use it
in CI to catch rules that have drifted from the files they edit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.synchronize(cmd.Context(), args[0], true)
			if err != nil {
				return err
			}
			if !res.Clean() || len(res.Ahead()) > 0 {
				return &ExitError{Code: exitFailure}
			}
			return nil
		},
	}
}

// synchronize validates the version and the rule table, runs the engine and
// prints the report. Validation errors are fatal and happen before any file
// is opened.
func (c *cli) synchronize(ctx context.Context, versionArg string, dryRun bool) (*versync.Result, error) {
	logger := logging.GetLogger("sync")
	defer logging.LogOperationStart(logger, "sync")()

	repOpts, err := c.reportOptions()
	if err != nil {
		return nil, fatal(err)
	}

	v, err := versync.ParseVersion(versionArg)
	if err != nil {
		return nil, fatal(err)
	}

	cfg, err := c.loadConfig(config.Options{Dir: "."})
	if err != nil {
		return nil, fatal(err)
	}
	table, err := cfg.RuleTable()
	if err != nil {
		return nil, fatal(err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	engine := versync.NewEngine(versync.WithLogger(logger), versync.WithDryRun(dryRun))
	res, runErr := engine.Run(ctx, v, table)

	// Files have been rewritten by now: exit 1, not 2.
	if err := report.Write(c.stdout, res, dryRun, repOpts); err != nil {
		return nil, &ExitError{Code: exitFailure, Err: fmt.Errorf("writing report: %w", err)}
	}
	if runErr != nil {
		return nil, &ExitError{Code: exitFailure, Err: runErr}
	}
	return res, nil
}
