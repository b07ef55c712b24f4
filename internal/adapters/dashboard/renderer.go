// Package dashboard renders the static HTML report: query, headline prices,
// ranked offer tables and Chart.js charts for stops, departure slots and
// price history.
package dashboard

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"flight_dashboard/internal/domain"
)

//go:embed templates/dashboard.html.tmpl
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/dashboard.html.tmpl"))

const (
	na             = "N/A"
	generatedClock = "2006-01-02 15:04 MST"
)

var tableTitles = map[domain.StopType]string{
	domain.StopNonstop:   "Top 5 Non-stop Flights",
	domain.StopOne:       "Top 5 One-stop Flights",
	domain.StopMultistop: "Top 5 Multi-stop Flights",
}

var metricLabels = map[domain.StopType]string{
	domain.StopNonstop:   "Cheapest non-stop",
	domain.StopOne:       "Cheapest 1-stop",
	domain.StopMultistop: "Cheapest multi-stop",
}

type Renderer struct {
	currency string
	loc      *time.Location
}

// New returns a renderer printing prices with currency and clock times in loc.
func New(currency string, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{currency: currency, loc: loc}
}

type metric struct{ Label, Value string }

type row struct {
	Airline, From, To, Departure, Arrival, Duration, Price, Stops string
}

type table struct {
	Title string
	Rows  []row
}

type view struct {
	QueryJSON string
	Generated string
	Metrics   []metric
	Tables    []table

	StopsLabels   []string
	StopsCounts   []int
	SlotsLabels   []string
	SlotsCounts   []int
	HistoryLabel  string
	HistoryDates  []string
	HistoryPrices []float64
}

func (r *Renderer) Render(w io.Writer, d domain.Dashboard) error {
	v, err := r.view(d)
	if err != nil {
		return err
	}
	return page.Execute(w, v)
}

func (r *Renderer) view(d domain.Dashboard) (view, error) {
	q := d.Query
	if q == nil {
		q = map[string]any{}
	}
	qb, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return view{}, fmt.Errorf("encode query: %w", err)
	}
	s := d.Summary
	s.Normalize()

	gen := d.GeneratedAt
	if gen.IsZero() {
		gen = time.Now()
	}

	v := view{
		QueryJSON:     string(qb),
		Generated:     gen.In(r.loc).Format(generatedClock),
		Metrics:       []metric{{Label: "Cheapest overall", Value: r.price(s.MinPrice)}},
		StopsLabels:   make([]string, 0, len(s.Stops)),
		StopsCounts:   make([]int, 0, len(s.Stops)),
		SlotsLabels:   make([]string, 0, len(s.DepartureSlots)),
		SlotsCounts:   make([]int, 0, len(s.DepartureSlots)),
		HistoryLabel:  fmt.Sprintf("Min Price (%s)", r.currency),
		HistoryDates:  make([]string, 0, len(d.History)),
		HistoryPrices: make([]float64, 0, len(d.History)),
	}
	for _, st := range domain.StopTypes {
		v.Metrics = append(v.Metrics, metric{Label: metricLabels[st], Value: r.price(s.OffersByStops.CheapestPrice(st))})
		t := table{Title: tableTitles[st]}
		for _, o := range s.OffersByStops.Bucket(st) {
			t.Rows = append(t.Rows, r.row(o))
		}
		v.Tables = append(v.Tables, t)
	}
	for _, b := range s.Stops {
		label := na
		if b.NumberOfStops != nil {
			label = strconv.Itoa(*b.NumberOfStops)
		}
		v.StopsLabels = append(v.StopsLabels, label)
		v.StopsCounts = append(v.StopsCounts, intOr(b.Count))
	}
	for _, slot := range s.DepartureSlots {
		v.SlotsLabels = append(v.SlotsLabels, str(slot.Start))
		v.SlotsCounts = append(v.SlotsCounts, intOr(slot.Count))
	}
	for _, h := range d.History {
		v.HistoryDates = append(v.HistoryDates, h.Timestamp)
		v.HistoryPrices = append(v.HistoryPrices, h.MinPrice)
	}
	return v, nil
}

func (r *Renderer) row(o domain.Offer) row {
	dur := na
	if o.DurationMinutes != nil {
		dur = fmt.Sprintf("%dh %02dm", *o.DurationMinutes/60, *o.DurationMinutes%60)
	}
	return row{
		Airline:   str(o.Airline),
		From:      place(o.From, o.FromCode),
		To:        place(o.To, o.ToCode),
		Departure: str(o.DepartureTime),
		Arrival:   str(o.ArrivalTime),
		Duration:  dur,
		Price:     r.price(o.Price),
		Stops:     fmt.Sprintf("%d stops", o.Stops),
	}
}

func (r *Renderer) price(p *float64) string {
	if p == nil {
		return na
	}
	return r.currency + strconv.FormatFloat(*p, 'f', -1, 64)
}

func place(city, code *string) string {
	return fmt.Sprintf("%s (%s)", str(city), str(code))
}

func str(p *string) string {
	if p == nil {
		return na
	}
	return *p
}

func intOr(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
