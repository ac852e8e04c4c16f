package cli

import (
	"github.com/spf13/cobra"
)

func newInboxCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "List received messages",
		Long:  "List received messages, newest first, with the unread count.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInbox(page, pageSize)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "page size (default 12, max 100)")

	return cmd
}

func runInbox(page, pageSize int) error {
	c := newAPIClient()

	res, err := c.Inbox(page, pageSize)
	if err != nil {
		return err
	}
	unread, err := c.UnreadCount()
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(map[string]any{
			"unread":   unread,
			"messages": res,
		})
	}

	return printMessageTable(res, unread)
}
