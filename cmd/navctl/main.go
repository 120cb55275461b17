// Command navctl previews and checks control panel navigation preferences
// without a running server.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linaspasv/cms/internal/platform/version"
)

var errUsage = errors.New("usage")

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "navctl",
		Short: "Inspect control panel navigation preferences",
		Long: strings.TrimSpace(`
Resolve navigation preference files into the tree the control panel would
render, validate preference documents, and compute nocache session keys.
`),
		SilenceUsage: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newKeyCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			return err
		},
	}
}

func exactArgs(n int, what string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return fmt.Errorf("%w: expected %s", errUsage, what)
		}
		return nil
	}
}
