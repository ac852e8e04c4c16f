package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a property",
		Long:  "Remove a listing with its images and inquiries. Requires an admin token.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}
}

func runRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := newAPIClient().DeleteProperty(id); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]any{
			"id":      id,
			"removed": true,
		})
	}

	fmt.Printf("Property #%d removed.\n", id)
	return nil
}
