package domain

import "time"

// HistoryRecord is one row of the append-only price log.
type HistoryRecord struct {
	Timestamp string  `json:"timestamp"`
	MinPrice  float64 `json:"min_price"`
}

// Run is one processed snapshot as kept by the run archive.
type Run struct {
	ID           string    `json:"id"`
	FetchedAt    string    `json:"fetched_at"`
	ProcessedAt  time.Time `json:"processed_at"`
	MinPrice     *float64  `json:"min_price"`
	TotalFlights int       `json:"total_flights"`
	Summary      Summary   `json:"summary"`
}

// HistoryTimeLayout is the timestamp layout of the price log, e.g.
// 2025-03-01T09:30:00+0530.
const HistoryTimeLayout = "2006-01-02T15:04:05-0700"

func NewHistoryRecord(at time.Time, loc *time.Location, minPrice float64) HistoryRecord {
	return HistoryRecord{Timestamp: at.In(loc).Format(HistoryTimeLayout), MinPrice: minPrice}
}
