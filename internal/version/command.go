package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand adds a `version` subcommand and a --version flag
// to root. Both print the binary name followed by the build metadata.
func AttachCobraVersionCommand(root *cobra.Command) {
	root.Version = Short()
	root.SetVersionTemplate(fmt.Sprintf("%s %s\n", root.Name(), Full()))

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long:  "Print the version, commit hash and build time embedded into " + root.Name() + " at build time.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), root.Name(), Full())
		},
	})
}
