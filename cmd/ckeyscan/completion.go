package ckeyscan

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
		Example: `
# Bash
ckeyscan completion bash > /etc/bash_completion.d/ckeyscan

# Zsh
ckeyscan completion zsh > "${fpath[1]}/_ckeyscan"

# Fish
ckeyscan completion fish > ~/.config/fish/completions/ckeyscan.fish

# PowerShell
ckeyscan completion powershell > $PROFILE\ckeyscan.ps1
`,
	}
	rootCmd.AddCommand(cmd)
}
