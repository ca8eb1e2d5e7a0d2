package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bcomnes/versync/internal/config"
	"github.com/bcomnes/versync/internal/logging"
)

func newInitCmd(c *cli) *cobra.Command {
	var (
		write  bool
		force  bool
		format string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Print or write a starter rule table",
		Long: `Print a commented starter configuration, or write it to .versync.toml
(.versync.yaml with --format yaml) in the current directory with --write.
An existing file is never overwritten unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.GetLogger("init")

			content, err := starterContent(format)
			if err != nil {
				return fatal(err)
			}
			if !write {
				_, err := fmt.Fprint(c.stdout, string(content))
				return err
			}

			target := c.configFile
			if target == "" {
				target = ".versync." + format
			}
			if _, err := os.Stat(target); err == nil && !force {
				return fatal(fmt.Errorf("%s already exists (use --force to overwrite)", target))
			}
			if err := os.WriteFile(target, content, 0644); err != nil {
				return fatal(fmt.Errorf("failed to write config to %s: %w", target, err))
			}
			logger.Info().Str("path", target).Msg("Written config file")
			fmt.Fprintf(c.stdout, "Wrote %s\n", target)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the configuration file instead of printing it")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")
	cmd.Flags().StringVar(&format, "format", "toml", "Configuration format (toml|yaml)")
	return cmd
}

// starterContent returns the embedded starter verbatim for TOML, which keeps
// its comments, and re-encodes it for YAML.
func starterContent(format string) ([]byte, error) {
	switch format {
	case "toml":
		return []byte(config.StarterContent()), nil
	case "yaml":
		cfg, err := config.Parse([]byte(config.StarterContent()), "toml")
		if err != nil {
			return nil, err
		}
		return cfg.Encode("yaml")
	default:
		return nil, fmt.Errorf("unsupported config format %q (want toml or yaml)", format)
	}
}
