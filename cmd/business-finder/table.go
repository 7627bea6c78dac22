package main

import (
	"io"
	"strconv"
	"strings"

	"business-finder/internal/models"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var tableHeader = []string{"#", "Name", "Rating", "Reviews", "Status", "Phone", "Address"}

// newTable returns a borderless, left-aligned table.
func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
}

func renderBusinesses(w io.Writer, businesses []models.Business) error {
	table := newTable(w)

	rows := make([][]string, 0, len(businesses))
	for i, b := range businesses {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			b.Name,
			ratingCell(b),
			strconv.Itoa(b.ReviewCount),
			statusCell(b.OpenStatus),
			orDash(b.Phone),
			orDash(b.Address),
		})
	}

	table.Header(tableHeader)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func ratingCell(b models.Business) string {
	if !b.Rated() {
		return "-"
	}
	return strconv.FormatFloat(b.Rating, 'f', -1, 64)
}

func statusCell(s models.OpenStatus) string {
	switch s {
	case models.OpenStatusOpen:
		return "open"
	case models.OpenStatusClosed:
		return "closed"
	}
	return "?"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
