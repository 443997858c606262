package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCompletionCmd creates the completion command for generating shell completions
func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for forkjoin.

Completion covers the subcommands (info, plan, bench, config) and their
flags, including the values of --kind and --output.

The completion script must be sourced to provide completions. After generating the
completion script, follow the instructions for your shell:

Bash:
  $ source <(forkjoin completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ forkjoin completion bash > /etc/bash_completion.d/forkjoin
  # macOS:
  $ forkjoin completion bash > $(brew --prefix)/etc/bash_completion.d/forkjoin

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ forkjoin completion zsh > "${fpath[1]}/_forkjoin"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ forkjoin completion fish | source

  # To load completions for each session, execute once:
  $ forkjoin completion fish > ~/.config/fish/completions/forkjoin.fish

PowerShell:
  PS> forkjoin completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> forkjoin completion powershell > forkjoin.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// Skip parent's PersistentPreRunE (config loading) for completion command
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompletion(cmd, args[0])
		},
	}

	return cmd
}

// runCompletion generates the completion script for the specified shell
func runCompletion(cmd *cobra.Command, shell string) error {
	out := cmd.OutOrStdout()
	switch shell {
	case "bash":
		return cmd.Root().GenBashCompletion(out)
	case "zsh":
		return cmd.Root().GenZshCompletion(out)
	case "fish":
		return cmd.Root().GenFishCompletion(out, true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(out)
	default:
		return fmt.Errorf("unsupported shell type %q", shell)
	}
}
