package domain

import "sort"

type StopType string

const (
	StopNonstop   StopType = "nonstop"
	StopOne       StopType = "1stop"
	StopMultistop StopType = "multistop"
)

// StopTypes lists every bucket in display order.
var StopTypes = []StopType{StopNonstop, StopOne, StopMultistop}

func ParseStopType(s string) (StopType, bool) {
	for _, st := range StopTypes {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// ClassifyLegs maps the leg count of an itinerary's first segment to its
// bucket. Anything other than one or two legs, zero included, is multistop.
func ClassifyLegs(legs int) StopType {
	switch legs {
	case 1:
		return StopNonstop
	case 2:
		return StopOne
	default:
		return StopMultistop
	}
}

// Offer is one flight offer flattened out of the provider payload.
type Offer struct {
	Price           *float64 `json:"price"`
	Airline         *string  `json:"airline"`
	From            *string  `json:"from"`
	To              *string  `json:"to"`
	FromCode        *string  `json:"from_code"`
	ToCode          *string  `json:"to_code"`
	DepartureTime   *string  `json:"departure_time"`
	ArrivalTime     *string  `json:"arrival_time"`
	DurationMinutes *int     `json:"duration_minutes"`
	Stops           int      `json:"stops"`
}

// SortByPrice orders offers by ascending price in place. Offers without a
// price go last; equal keys keep their relative order.
func SortByPrice(offers []Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return PriceLess(offers[i].Price, offers[j].Price)
	})
}

// PriceLess treats a nil price as +Inf.
func PriceLess(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}

// Cheapest sorts a copy of offers and keeps at most n of them. The result is
// never nil.
func Cheapest(offers []Offer, n int) []Offer {
	out := make([]Offer, len(offers))
	copy(out, offers)
	SortByPrice(out)
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
