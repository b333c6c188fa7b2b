package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depman/pkg/deps"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "search <term>",
		Short:   "Search the project's registry",
		Example: `  depman search http client`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			term := strings.Join(args, " ")
			results, err := deps.Search(ctx, s.backend, term, s.opts)
			if err != nil {
				return err
			}
			printSearchResults(cmd.OutOrStdout(), term, results)
			return nil
		},
	}
}
