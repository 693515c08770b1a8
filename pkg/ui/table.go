package ui

import (
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"mdsexport/pkg/tokenstore"
)

// tokenDisplayWidth is how many characters of a token value are shown in
// listings. Resumption tokens run to hundreds of characters.
const tokenDisplayWidth = 20

// RenderTokenTable writes a table of stored tokens to w.
func RenderTokenTable(w io.Writer, tokens []tokenstore.Token) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Base", "Last", "Latest", "Least Remaining"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)

	for _, t := range tokens {
		table.Append([]string{
			t.Name,
			truncate(t.Base),
			truncate(t.Last),
			truncate(t.Latest),
			formatRemaining(t.LeastRemaining),
		})
	}

	table.Render()
}

// truncate shortens long token values for display.
func truncate(s string) string {
	if len(s) <= tokenDisplayWidth {
		return s
	}
	return s[:tokenDisplayWidth] + "..."
}

// formatRemaining renders the watermark, which is +Inf until the first
// cursor update arrives.
func formatRemaining(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return strconv.FormatInt(int64(v), 10)
}
