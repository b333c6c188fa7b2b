package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/errors"
	"github.com/matzehuels/depman/pkg/integrations"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show registry metadata for a dependency",
		Long: `Show author, license, links and published versions of a package. The
package does not have to be declared in the project.`,
		Example: `  depman info lodash
  depman info serde -d ./crates/core`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeDeclared,
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

			info, ok := p.Info(name)
			if !ok {
				if info, err = s.fetch(ctx, name); err != nil {
					return err
				}
			}
			printDepInfo(cmd.OutOrStdout(), info, p)
			return nil
		},
	}
}

// fetch retrieves metadata for a single name, bounded by the request
// timeout.
func (s *session) fetch(ctx context.Context, name string) (*deps.DepInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.WithDefaults().RequestTimeout)
	defer cancel()

	info, err := s.backend.FetchDepInfo(ctx, name)
	if err != nil {
		return nil, integrations.CodedError(err, "fetch %s", name)
	}
	return info, nil
}
