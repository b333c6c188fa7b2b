package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// deleteCommand creates the delete command.
func (c *CLI) deleteCommand() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm", "remove"},
		Short:   "Remove a dependency from the manifest",
		Example: `  depman delete lodash
  depman rm criterion --group dev-dependencies`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeDeclared,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := strings.TrimSpace(args[0])

			s, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.backend.Delete(group, name, c.flags.dir); err != nil {
				return err
			}
			loggerFromContext(ctx).Info("deleted dependency", "name", name, "group", group)

			out := cmd.OutOrStdout()
			printSuccess(out, "Removed %s from %s", name, group)
			printNextStep(out, "Update the lockfile", lockCommand(s.kind))
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", defaultGroup, "dependency group to remove from")
	_ = cmd.RegisterFlagCompletionFunc("group", c.completeGroups)
	return cmd
}
