package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for Underwriter.

To load completions:

Bash:
  $ source <(underwriter completion bash)
  # To load permanently:
  $ underwriter completion bash > /etc/bash_completion.d/underwriter

Zsh:
  $ underwriter completion zsh > "${fpath[1]}/_underwriter"
  $ compinit

Fish:
  $ underwriter completion fish | source
  # To load permanently:
  $ underwriter completion fish > ~/.config/fish/completions/underwriter.fish

PowerShell:
  PS> underwriter completion powershell | Out-String | Invoke-Expression
  # To load permanently, add to your PowerShell profile
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := stdout(cmd)
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(w)
		case "zsh":
			return rootCmd.GenZshCompletion(w)
		case "fish":
			return rootCmd.GenFishCompletion(w, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(w)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
