package domain

// StopBreakdown is the provider's own per-stop-count statistic.
type StopBreakdown struct {
	NumberOfStops   *int     `json:"numberOfStops"`
	Count           *int     `json:"count"`
	CheapestAirline *string  `json:"cheapestAirline"`
	MinPrice        *float64 `json:"minPrice"`
}

// AirlineBreakdown is the provider's own per-airline statistic.
type AirlineBreakdown struct {
	Name             *string  `json:"name"`
	Count            *int     `json:"count"`
	MinPrice         *float64 `json:"minPrice"`
	MinPricePerAdult *float64 `json:"minPricePerAdult"`
}

type DepartureSlot struct {
	Start *string `json:"start"`
	Count *int    `json:"count"`
}

// OffersByStops always carries the three stop-type keys.
type OffersByStops struct {
	Nonstop   []Offer `json:"nonstop"`
	OneStop   []Offer `json:"1stop"`
	Multistop []Offer `json:"multistop"`
}

func (o OffersByStops) Bucket(st StopType) []Offer {
	switch st {
	case StopNonstop:
		return o.Nonstop
	case StopOne:
		return o.OneStop
	case StopMultistop:
		return o.Multistop
	}
	return nil
}

func (o *OffersByStops) SetBucket(st StopType, offers []Offer) {
	if offers == nil {
		offers = []Offer{}
	}
	switch st {
	case StopNonstop:
		o.Nonstop = offers
	case StopOne:
		o.OneStop = offers
	case StopMultistop:
		o.Multistop = offers
	}
}

// CheapestPrice is the price of the first offer in a ranked bucket.
func (o OffersByStops) CheapestPrice(st StopType) *float64 {
	b := o.Bucket(st)
	if len(b) == 0 {
		return nil
	}
	return b[0].Price
}

// Summary is the document written once per processing run.
type Summary struct {
	TotalFlights    int                `json:"totalFlights"`
	FilteredFlights int                `json:"filteredFlights"`
	MinPrice        *float64           `json:"minPrice"`
	DurationMin     *int               `json:"durationMin"`
	DurationMax     *int               `json:"durationMax"`
	Stops           []StopBreakdown    `json:"stops"`
	Airlines        []AirlineBreakdown `json:"airlines"`
	DepartureSlots  []DepartureSlot    `json:"departureSlots"`
	OffersByStops   OffersByStops      `json:"offersByStops"`
	TopOffers       []Offer            `json:"topOffers"`
}

// EmptySummary has every list present and empty, so it encodes without nulls.
func EmptySummary() Summary {
	return Summary{
		Stops:          []StopBreakdown{},
		Airlines:       []AirlineBreakdown{},
		DepartureSlots: []DepartureSlot{},
		OffersByStops: OffersByStops{
			Nonstop:   []Offer{},
			OneStop:   []Offer{},
			Multistop: []Offer{},
		},
		TopOffers: []Offer{},
	}
}

// Normalize replaces nil lists with empty ones, e.g. after decoding a
// document written by an older version that omitted keys.
func (s *Summary) Normalize() {
	if s.Stops == nil {
		s.Stops = []StopBreakdown{}
	}
	if s.Airlines == nil {
		s.Airlines = []AirlineBreakdown{}
	}
	if s.DepartureSlots == nil {
		s.DepartureSlots = []DepartureSlot{}
	}
	for _, st := range StopTypes {
		if s.OffersByStops.Bucket(st) == nil {
			s.OffersByStops.SetBucket(st, nil)
		}
	}
	if s.TopOffers == nil {
		s.TopOffers = []Offer{}
	}
}
