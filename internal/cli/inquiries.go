package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/models"
)

func newInquiriesCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "inquiries",
		Short: "List inquiries",
		Long:  "Agents see inquiries on their listings, admins see all of them, and clients see the inquiries they sent.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInquiries(status)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "status (New|Pending|Contacted|Closed)")

	return cmd
}

func runInquiries(status string) error {
	c := newAPIClient()

	me, err := c.Me()
	if err != nil {
		return err
	}

	res, err := c.ListInquiries(status, me.Role == models.RoleClient)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(res)
	}

	return printInquiryTable(res)
}
