package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const modulePath = "github.com/mesh-intelligence/studiobook"

// Version is the studio release. Builds override it with
// -ldflags "-X github.com/mesh-intelligence/studiobook/internal/cli.Version=...".
var Version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the studio version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "studio v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
