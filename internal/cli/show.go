package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show property details",
		Long:  "Show full details for a property, including its images.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	p, err := newAPIClient().GetProperty(id)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(p)
	}

	printPropertySummary(p)
	fmt.Println()
	printImages(p.Images)
	if len(p.Inquiries) > 0 {
		fmt.Printf("\nInquiries (%d):\n", len(p.Inquiries))
		for _, inq := range p.Inquiries {
			from := ""
			if inq.User != nil {
				from = " from " + inq.User.FullName
			}
			fmt.Printf("  #%d %s%s (%s)\n", inq.ID, inq.Status, from, inq.RequestDate.Local().Format("2006-01-02"))
		}
	}

	return nil
}

// parseID parses a positive numeric id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID: %s", arg)
	}
	return id, nil
}
