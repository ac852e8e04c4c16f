package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped by the release build with -ldflags "-X .../cli.Version=...".
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the realty version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if isJSON() {
				return printJSON(map[string]string{"version": Version})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "realty %s\n", Version)
			return err
		},
	}
}
