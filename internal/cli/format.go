package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/evcraddock/realty/internal/inquiry"
	"github.com/evcraddock/realty/internal/message"
	"github.com/evcraddock/realty/internal/paging"
	"github.com/evcraddock/realty/internal/property"
)

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPropertySummary prints a single property in text format.
func printPropertySummary(p *property.DTO) {
	fmt.Printf("Property #%d: %s\n", p.ID, p.Title)
	fmt.Printf("  Address:  %s\n", joinNonEmpty(", ", p.Address, p.City))
	fmt.Printf("  Price:    $%s\n", formatPrice(p.Price))
	fmt.Printf("  Type:     %s for %s\n", p.Type, strings.ToLower(p.Transaction.String()))
	fmt.Printf("  Status:   %s\n", p.Status)
	fmt.Printf("  Area:     %g m²\n", p.Area)
	if p.Bedrooms != nil {
		fmt.Printf("  Beds:     %d\n", *p.Bedrooms)
	}
	if p.Bathrooms != nil {
		fmt.Printf("  Baths:    %d\n", *p.Bathrooms)
	}
	if p.YearBuilt != nil {
		fmt.Printf("  Built:    %d\n", *p.YearBuilt)
	}
	if p.IsFeatured {
		fmt.Println("  Featured: yes")
	}
	fmt.Printf("  Views:    %d\n", p.ViewCount)
	if p.Owner != nil {
		fmt.Printf("  Owner:    %s <%s>\n", p.Owner.FullName, p.Owner.Email)
	}
	if p.Description != "" {
		fmt.Printf("\n  %s\n", p.Description)
	}
}

// printImages lists a property's images, marking the primary one.
func printImages(imgs []property.ImageDTO) {
	if len(imgs) == 0 {
		fmt.Println("No images.")
		return
	}
	fmt.Printf("Images (%d):\n", len(imgs))
	for _, img := range imgs {
		mark := " "
		if img.IsPrimary {
			mark = "*"
		}
		fmt.Printf("  %s #%d %s\n", mark, img.ID, img.ImageURL)
	}
}

// printPropertyTable prints a page of properties as a formatted table.
func printPropertyTable(res *paging.Result[property.DTO]) error {
	if len(res.Items) == 0 {
		fmt.Println("No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tTITLE\tCITY\tPRICE\tTYPE\tSTATUS\tAREA"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t-----\t----\t-----\t----\t------\t----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range res.Items {
		city := p.City
		if city == "" {
			city = "-"
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t$%s\t%s\t%s\t%g\n",
			p.ID, truncate(p.Title, 40), city, formatPrice(p.Price), p.Type, p.Status, p.Area); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\n%s\n", pageFooter(res, "properties"))
	return nil
}

// printMessageTable prints a page of received messages.
func printMessageTable(res *paging.Result[message.DTO], unread int64) error {
	fmt.Printf("Unread: %d\n\n", unread)
	if len(res.Items) == 0 {
		fmt.Println("No messages.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\t \tFROM\tSUBJECT\tSENT"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, m := range res.Items {
		mark := " "
		if !m.IsRead {
			mark = "●"
		}
		from := m.SenderID
		if m.Sender != nil {
			from = m.Sender.FullName
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			m.ID, mark, truncate(from, 30), truncate(m.Subject, 40), m.SentDate.Local().Format("2006-01-02 15:04")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\n%s\n", pageFooter(res, "messages"))
	return nil
}

// printInquiryTable prints a page of inquiries.
func printInquiryTable(res *paging.Result[inquiry.DTO]) error {
	if len(res.Items) == 0 {
		fmt.Println("No inquiries.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tPROPERTY\tFROM\tSTATUS\tREQUESTED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, inq := range res.Items {
		prop := "#" + strconv.FormatInt(inq.PropertyID, 10)
		if inq.Property != nil {
			prop = truncate(inq.Property.Title, 30)
		}
		from := inq.UserID
		if inq.User != nil {
			from = inq.User.FullName
		}
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			inq.ID, prop, truncate(from, 30), inq.Status, inq.RequestDate.Local().Format("2006-01-02")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Printf("\n%s\n", pageFooter(res, "inquiries"))
	return nil
}

func pageFooter[T any](res *paging.Result[T], noun string) string {
	pages := res.TotalPages()
	if pages <= 1 {
		return fmt.Sprintf("Total: %d %s", res.TotalCount, noun)
	}
	footer := fmt.Sprintf("Page %d of %d, %d %s", res.PageNumber, pages, res.TotalCount, noun)
	if res.HasNext() {
		footer += fmt.Sprintf(", more on page %d", res.PageNumber+1)
	}
	return footer
}

// formatPrice formats an amount with thousands separators, dropping cents
// when there are none.
func formatPrice(amount float64) string {
	cents := int64(math.Round(math.Abs(amount) * 100))
	s := strconv.FormatInt(cents/100, 10)

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")

	if rem := cents % 100; rem > 0 {
		out += fmt.Sprintf(".%02d", rem)
	}
	if amount < 0 && cents > 0 {
		out = "-" + out
	}
	return out
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
