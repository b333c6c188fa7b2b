package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/depman/pkg/deps"
	"github.com/matzehuels/depman/pkg/deps/javascript"
	"github.com/matzehuels/depman/pkg/deps/languages"
	"github.com/matzehuels/depman/pkg/deps/rust"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for depman.

  $ source <(depman completion bash)
  $ depman completion zsh > "${fpath[1]}/_depman"
  $ depman completion fish | source
  PS> depman completion powershell | Out-String | Invoke-Expression

Completion covers dependency names for info and delete, and group names
for --group, read from the manifest in --dir.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeGroups offers the dependency groups of the project kind in --dir.
func (c *CLI) completeGroups(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	kind, err := c.detect()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return groupsOf(kind), cobra.ShellCompDirectiveNoFileComp
}

// completeDeclared offers the dependency names declared in the manifest.
// Only the manifest is read; the registry is never contacted.
func (c *CLI) completeDeclared(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	kind, err := c.detect()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	b, err := languages.New(kind, deps.Options{})
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := b.ParseConfig(c.flags.dir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return deps.Names(cfg), cobra.ShellCompDirectiveNoFileComp
}

func groupsOf(kind deps.Kind) []string {
	switch kind {
	case deps.KindNpm:
		return javascript.Groups
	case deps.KindCargo:
		return rust.Groups
	}
	return nil
}
