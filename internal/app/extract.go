package app

import (
	"fmt"

	"flight_dashboard/internal/domain"
	"flight_dashboard/internal/rawdoc"
)

// Limits bound how much of a provider payload ends up in a summary.
type Limits struct {
	MaxOffers   int // raw offers considered, in provider order
	PerStopType int // ranked offers kept per stop-type bucket
	TopOffers   int // ranked offers kept overall
}

func DefaultLimits() Limits {
	return Limits{MaxOffers: 50, PerStopType: 5, TopOffers: 10}
}

// Extractor flattens one provider search document into a domain.Summary.
// It never fails: missing or mistyped fields become zero values or nil, and
// offers that cannot be normalized are dropped and reported as defects.
type Extractor struct {
	limits Limits
}

func NewExtractor(l Limits) *Extractor {
	d := DefaultLimits()
	if l.MaxOffers <= 0 {
		l.MaxOffers = d.MaxOffers
	}
	if l.PerStopType <= 0 {
		l.PerStopType = d.PerStopType
	}
	if l.TopOffers <= 0 {
		l.TopOffers = d.TopOffers
	}
	return &Extractor{limits: l}
}

func (e *Extractor) Extract(doc rawdoc.Value) domain.Summary {
	s, _ := e.ExtractReport(doc)
	return s
}

// ExtractReport is Extract plus one defect per skipped offer.
func (e *Extractor) ExtractReport(doc rawdoc.Value) (domain.Summary, []domain.ExtractionDefect) {
	data := providerData(doc)
	agg := data.Get("aggregation")

	s := domain.EmptySummary()
	s.TotalFlights = agg.Get("totalCount").IntOr(0)
	s.FilteredFlights = agg.Get("filteredTotalCount").IntOr(0)
	s.MinPrice = agg.Get("minPrice", "units").FloatPtr()
	s.DurationMin = agg.Get("durationMin").IntPtr()
	s.DurationMax = agg.Get("durationMax").IntPtr()

	for _, st := range agg.Get("stops").Items() {
		if !st.IsMapping() {
			continue
		}
		s.Stops = append(s.Stops, domain.StopBreakdown{
			NumberOfStops:   st.Get("numberOfStops").IntPtr(),
			Count:           st.Get("count").IntPtr(),
			CheapestAirline: st.Get("cheapestAirline", "name").StrPtr(),
			MinPrice:        st.Get("minPrice", "units").FloatPtr(),
		})
	}

	for _, a := range agg.Get("airlines").Items() {
		if !a.IsMapping() {
			continue
		}
		s.Airlines = append(s.Airlines, domain.AirlineBreakdown{
			Name:             a.Get("name").StrPtr(),
			Count:            a.Get("count").IntPtr(),
			MinPrice:         a.Get("minPrice", "units").FloatPtr(),
			MinPricePerAdult: a.Get("minPricePerAdult", "units").FloatPtr(),
		})
	}

	// only the first departure grouping is charted
	for _, slot := range agg.Get("flightTimes", 0, "departure").Items() {
		if !slot.IsMapping() {
			continue
		}
		s.DepartureSlots = append(s.DepartureSlots, domain.DepartureSlot{
			Start: slot.Get("start").StrPtr(),
			Count: slot.Get("count").IntPtr(),
		})
	}

	raw := e.rawOffers(data)

	var (
		all     []domain.Offer
		buckets = make(map[domain.StopType][]domain.Offer, len(domain.StopTypes))
		defects []domain.ExtractionDefect
	)
	for i, item := range raw {
		offer, st, defect := normalizeOffer(i, item)
		if defect != nil {
			defects = append(defects, *defect)
			continue
		}
		all = append(all, offer)
		buckets[st] = append(buckets[st], offer)
	}

	for _, st := range domain.StopTypes {
		s.OffersByStops.SetBucket(st, domain.Cheapest(buckets[st], e.limits.PerStopType))
	}
	s.TopOffers = domain.Cheapest(all, e.limits.TopOffers)
	return s, defects
}

// Considered is how many raw offers of doc the extractor looks at.
func (e *Extractor) Considered(doc rawdoc.Value) int {
	return len(e.rawOffers(providerData(doc)))
}

func (e *Extractor) rawOffers(data rawdoc.Value) []rawdoc.Value {
	raw := data.Get("flightOffers").Items()
	if len(raw) > e.limits.MaxOffers {
		raw = raw[:e.limits.MaxOffers]
	}
	return raw
}

// providerData finds the provider's "data" object. Snapshots wrap the payload
// in {"meta":…, "response":…}; a bare provider document is accepted too.
func providerData(doc rawdoc.Value) rawdoc.Value {
	resp := doc.Get("response")
	if !resp.IsMapping() {
		resp = doc
	}
	return resp.Get("data")
}

func normalizeOffer(idx int, offer rawdoc.Value) (domain.Offer, domain.StopType, *domain.ExtractionDefect) {
	fail := func(format string, args ...any) (domain.Offer, domain.StopType, *domain.ExtractionDefect) {
		return domain.Offer{}, "", &domain.ExtractionDefect{Index: idx, Reason: fmt.Sprintf(format, args...)}
	}

	if !offer.IsMapping() {
		return fail("offer is a %s, not a mapping", offer.Kind())
	}
	segs := offer.Get("segments")
	if !segs.IsSequence() {
		return fail("segments missing or not a list")
	}
	if segs.Len() == 0 {
		return fail("no segments")
	}

	var (
		totalSec int64
		integral = true
	)
	for i, seg := range segs.Items() {
		if !seg.IsMapping() {
			return fail("segment %d is a %s, not a mapping", i, seg.Kind())
		}
		tt := seg.Get("totalTime")
		switch {
		case tt.IsNull():
			if seg.Has("totalTime") {
				return fail("segment %d totalTime is null", i)
			}
			// absent counts as zero
		case tt.Kind() != rawdoc.Number:
			return fail("segment %d totalTime is a %s", i, tt.Kind())
		case tt.IsInteger():
			n, ok := tt.Int()
			if !ok {
				integral = false
				continue
			}
			totalSec += n
		default:
			integral = false
		}
	}

	first, last := segs.Get(0), segs.Get(-1)
	legs := first.Get("legs").Len()

	var duration *int
	if integral {
		d := int(floorDiv(totalSec, 60))
		duration = &d
	}

	return domain.Offer{
		Price:           offer.Get("priceBreakdown", "total", "units").FloatPtr(),
		Airline:         extractAirline(first),
		From:            first.Get("departureAirport", "cityName").StrPtr(),
		To:              last.Get("arrivalAirport", "cityName").StrPtr(),
		FromCode:        first.Get("departureAirport", "code").StrPtr(),
		ToCode:          last.Get("arrivalAirport", "code").StrPtr(),
		DepartureTime:   first.Get("departureTime").StrPtr(),
		ArrivalTime:     last.Get("arrivalTime").StrPtr(),
		DurationMinutes: duration,
		Stops:           legs - 1,
	}, domain.ClassifyLegs(legs), nil
}

// extractAirline names the carrier of a segment's first leg.
func extractAirline(seg rawdoc.Value) *string {
	carrier := seg.Get("legs", 0, "carriersData", 0)
	if !carrier.IsMapping() {
		return nil
	}
	for _, v := range []rawdoc.Value{
		carrier.Get("marketingCarrier", "name"),
		carrier.Get("name"),
		carrier.Get("displayName"),
	} {
		if s := v.NonEmptyStr(); s != nil {
			return s
		}
	}
	return nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
