package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/realty/internal/client"
)

func newListCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search properties",
		Long:  "Search listings through the API. Enum filters accept a name (House, Sold, Rent) or its number.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.SearchTerm, "search", "", "match title, description or city")
	f.StringVar(&opts.City, "city", "", "city")
	f.StringVar(&opts.Type, "type", "", "property type (Apartment|House|Villa|Land|Commercial)")
	f.StringVar(&opts.Status, "status", "", "status (Available|Sold|Rented|Pending)")
	f.StringVar(&opts.Transaction, "transaction", "", "transaction (Sale|Rent)")
	f.Float64Var(&opts.MinPrice, "min-price", 0, "minimum price")
	f.Float64Var(&opts.MaxPrice, "max-price", 0, "maximum price")
	f.StringVar(&opts.SortBy, "sort", "", "sort by (price|date|views)")
	f.StringVar(&opts.SortOrder, "order", "", "sort order (asc|desc)")
	f.IntVar(&opts.Page, "page", 1, "page number")
	f.IntVar(&opts.PageSize, "page-size", 0, "page size (default 12, max 100)")

	return cmd
}

func runList(opts client.ListOptions) error {
	res, err := newAPIClient().ListProperties(opts)
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(res)
	}

	return printPropertyTable(res)
}
