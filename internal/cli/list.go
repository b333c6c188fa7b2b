package cli

import (
	"github.com/spf13/cobra"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var outdatedOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show dependencies with their available upgrades",
		Long: `List every declared dependency with the requirement from the manifest,
the version installed according to the lockfile, the newest version reachable
within the requirement, and the newest published version.`,
		Example: `  depman list
  depman list --outdated
  depman list -d ./services/api`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd, outdatedOnly)
		},
	}

	cmd.Flags().BoolVar(&outdatedOnly, "outdated", false, "only show dependencies with an upgrade available")
	return cmd
}

func (c *CLI) runList(cmd *cobra.Command, outdatedOnly bool) error {
	ctx := cmd.Context()
	s, err := c.newSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := s.parse(ctx, c.flags.dir, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if len(p.Lockfile) == 0 {
		printWarning(cmd.ErrOrStderr(), "No lockfile found, installed versions are unknown")
	}

	rows := p.Rows()
	if outdatedOnly {
		rows = outdated(rows)
	}
	printRows(cmd.OutOrStdout(), p, rows)
	return nil
}
