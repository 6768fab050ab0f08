package view

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/kpozdnikin/nft-history/internal/service"
)

// RenderText writes the card and the transfer table for terminals. Regions
// that the page would leave empty produce no output.
func RenderText(w io.Writer, state service.State) error {
	page := NewPage(state)
	if page.Loading {
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	}

	if err := renderCardText(w, page.Card); err != nil {
		return err
	}
	if page.Table.Visible {
		renderTableText(w, page.Table)
	}
	return nil
}

func renderCardText(w io.Writer, card Card) error {
	if !card.Visible {
		return nil
	}
	if !card.HasRecord {
		_, err := fmt.Fprintln(w, card.Error)
		return err
	}

	image := card.ImageURL
	if image == "" {
		image = ImageUnavailable
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n\n", card.Name, image, card.Summary)
	return err
}

func renderTableText(w io.Writer, t Table) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(TableHeader)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, row := range t.Rows {
		table.Append(row.Cells())
	}
	table.Render()
}
