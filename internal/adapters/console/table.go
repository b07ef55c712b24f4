// Package console prints history and ranked offers as pipe tables sized by
// display width, so CJK airline names and the rupee sign stay aligned.
package console

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"flight_dashboard/internal/domain"
)

// Table is a header plus rows of cells. Short rows are padded with blanks.
type Table struct {
	Header []string
	Rows   [][]string
}

func (t Table) Write(w io.Writer) error {
	cols := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, c := range row {
			if n := runewidth.StringWidth(c); n > widths[i] {
				widths[i] = n
			}
		}
	}
	measure(t.Header)
	for _, r := range t.Rows {
		measure(r)
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	var sb strings.Builder
	line := func(row []string) {
		sb.WriteString("|")
		for j := 0; j < cols; j++ {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			sb.WriteString(" ")
			sb.WriteString(runewidth.FillRight(cell, widths[j]))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}
	line(t.Header)
	sep := make([]string, cols)
	for j := range sep {
		sep[j] = strings.Repeat("-", widths[j])
	}
	line(sep)
	for _, r := range t.Rows {
		line(r)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func HistoryTable(recs []domain.HistoryRecord, currency string) Table {
	t := Table{Header: []string{"#", "Timestamp", "Min price"}}
	for i, r := range recs {
		t.Rows = append(t.Rows, []string{strconv.Itoa(i + 1), r.Timestamp, currency + formatFloat(r.MinPrice)})
	}
	return t
}

func OffersTable(offers []domain.Offer, currency string) Table {
	t := Table{Header: []string{"#", "Airline", "Route", "Departure", "Arrival", "Duration", "Stops", "Price"}}
	for i, o := range offers {
		price := "-"
		if o.Price != nil {
			price = currency + formatFloat(*o.Price)
		}
		dur := "-"
		if o.DurationMinutes != nil {
			dur = fmt.Sprintf("%dh%02dm", *o.DurationMinutes/60, *o.DurationMinutes%60)
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(i + 1),
			deref(o.Airline),
			deref(o.FromCode) + "→" + deref(o.ToCode),
			deref(o.DepartureTime),
			deref(o.ArrivalTime),
			dur,
			strconv.Itoa(o.Stops),
			price,
		})
	}
	return t
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func deref(p *string) string {
	if p == nil {
		return "-"
	}
	return *p
}
