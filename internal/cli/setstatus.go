package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/models"
)

func newSetStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Change a listing's status",
		Long:  "Move a listing to Available, Sold, Rented or Pending. Requires the owner or an admin.",
		Args:  cobra.ExactArgs(2),
		RunE:  runSetStatus,
	}
}

func runSetStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	status, err := models.ParsePropertyStatus(args[1])
	if err != nil {
		return fmt.Errorf("invalid status %q (use Available, Sold, Rented or Pending)", args[1])
	}

	if err := newAPIClient().SetPropertyStatus(id, status); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]any{
			"id":     id,
			"status": status,
		})
	}

	fmt.Printf("Property #%d is now %s.\n", id, status)
	return nil
}
