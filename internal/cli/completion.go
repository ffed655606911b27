package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tracegantt.

To load completions:

Bash:
  $ source <(tracegantt completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ tracegantt completion bash > /etc/bash_completion.d/tracegantt
  # macOS:
  $ tracegantt completion bash > $(brew --prefix)/etc/bash_completion.d/tracegantt

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ tracegantt completion zsh > "${fpath[1]}/_tracegantt"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ tracegantt completion fish | source

  # To load completions for each session, execute once:
  $ tracegantt completion fish > ~/.config/fish/completions/tracegantt.fish

PowerShell:
  PS> tracegantt completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> tracegantt completion powershell > tracegantt.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := c.out(cmd)
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(w, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
			return nil
		},
	}

	return cmd
}
