package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bcomnes/versync/internal/config"
)

func newRulesCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Validate and print the effective configuration",
		Long: `Load the configuration with defaults, environment variables and flags
applied, validate the rule table and print the result. Rule paths are shown
resolved against the directory of the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig(config.Options{Dir: "."})
			if err != nil {
				return fatal(err)
			}
			table, err := cfg.RuleTable()
			if err != nil {
				return fatal(err)
			}

			shown := *cfg
			shown.Rules = cfg.ResolvedRules()
			data, err := shown.Encode(format)
			if err != nil {
				return fatal(err)
			}

			fmt.Fprintf(c.stdout, "# %d rules loaded from %s\n", table.Len(), cfg.Path)
			_, err = c.stdout.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "toml", "Output format (toml|yaml)")
	return cmd
}
