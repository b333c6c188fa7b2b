package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/errors"
)

// defaultGroup is the group install and delete use without --group. Both
// package.json and Cargo.toml call it "dependencies".
const defaultGroup = "dependencies"

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:     "install <name> [version]",
		Aliases: []string{"add"},
		Short:   "Add or upgrade a dependency in the manifest",
		Long: `Write a dependency into the manifest. An existing entry keeps its position
and only its version changes. Without a version an interactive picker lists the
published versions with the best compatible one preselected.

The lockfile is not touched; run npm install or cargo update afterwards.`,
		Example: `  depman install lodash 4.17.21
  depman install jest --group devDependencies
  depman install serde`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := strings.TrimSpace(args[0])
			if err := errors.ValidatePackageName(name); err != nil {
				return err
			}

			s, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.parse(ctx, c.flags.dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var ver string
			if len(args) == 2 {
				ver = args[1]
			} else {
				if !isTerminal(cmd.InOrStdin()) {
					return errors.New(errors.ErrCodeInvalidInput, "a version is required when stdin is not a terminal")
				}
				info, ok := p.Info(name)
				if !ok {
					if info, err = s.fetch(ctx, name); err != nil {
						return err
					}
				}
				picker := NewVersionPicker(name, info.Versions, p.CurrentVersion(name), p.BestCompatibleVersion(group, name))
				picked, err := pickVersion(cmd.InOrStdin(), cmd.ErrOrStderr(), picker)
				if err != nil {
					return err
				}
				ver = picked.String()
			}

			if err := p.InstallDep(deps.InstallCandidate{Name: name, Version: ver, Group: group}); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Installed %s@%s in %s", name, ver, group)
			if err := printUpdatedRow(ctx, out, p, group, name); err != nil {
				return err
			}
			printNextStep(out, "Update the lockfile", lockCommand(p.Kind))
			return nil
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", defaultGroup, "dependency group to write to")
	_ = cmd.RegisterFlagCompletionFunc("group", c.completeGroups)
	return cmd
}

// printUpdatedRow reparses p and prints the row of name in group.
func printUpdatedRow(ctx context.Context, w io.Writer, p *deps.Project, group, name string) error {
	updated, err := p.Reparse(ctx)
	if err != nil {
		return err
	}
	for _, r := range updated.Rows() {
		if r.Group == group && r.Name == name {
			fmt.Fprintln(w, renderRows([]deps.Row{r}))
			return nil
		}
	}
	return nil
}

func lockCommand(kind deps.Kind) string {
	if kind == deps.KindCargo {
		return "cargo update"
	}
	return "npm install"
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
