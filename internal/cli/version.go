package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/requisition/client"
)

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "requisition version %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Library: %s\n", client.Version)
		},
	}
}
