package reports

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"pharmaflow/m/domain"
)

// WriteInvoice renders a printable plain-text invoice for sale.
func WriteInvoice(w io.Writer, sale domain.Sale) error {
	var b strings.Builder
	fmt.Fprintf(&b, "PHARMAFLOW INVOICE\n")
	fmt.Fprintf(&b, "Invoice #: %s\n", sale.ID)
	fmt.Fprintf(&b, "Date:      %s\n", sale.Date.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Customer:  %s\n\n", sale.CustomerName)

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Item\tPrice\tQty\tTotal\t")
	for _, item := range sale.Items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t\n", item.Name, item.Price.StringFixed(2), item.Quantity, item.Total.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(&b, "\nTOTAL: %s\n", sale.TotalAmount.StringFixed(2))

	_, err := io.WriteString(w, b.String())
	return err
}
