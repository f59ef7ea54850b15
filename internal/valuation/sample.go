package valuation

import (
	"encoding/json"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// SampleStatus tells whether a comparable is an active listing or a closed sale.
type SampleStatus string

const (
	StatusActive SampleStatus = "active"
	StatusSold   SampleStatus = "sold"
)

// Comparable is one observed market data point. It is immutable; running the
// homogenizer produces new instances instead of mutating existing ones.
type Comparable struct {
	id          string
	location    string
	latitude    *float64
	longitude   *float64
	area        Area
	price       Money
	status      SampleStatus
	scores      map[string]float64
	homogenized Money
	listingDate *time.Time
	sellingDate *time.Time
}

// ComparableInput carries the fields needed to build a Comparable.
type ComparableInput struct {
	ID          string
	Location    string
	Latitude    *float64
	Longitude   *float64
	Area        Area
	Price       Money
	Status      SampleStatus
	Scores      map[string]float64
	ListingDate *time.Time
	SellingDate *time.Time
}

// NewComparable validates and builds a Comparable. The homogenized value
// starts equal to the original price until the homogenizer runs.
func NewComparable(in ComparableInput) (Comparable, error) {
	if in.ID == "" {
		return Comparable{}, NewValidationError("comparable.id", "id is required")
	}
	if in.Location == "" {
		return Comparable{}, NewValidationError("comparable.location", "location is required")
	}
	if in.Status != StatusActive && in.Status != StatusSold {
		return Comparable{}, NewValidationError("comparable.status", "status must be active or sold")
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return Comparable{}, NewValidationError("comparable.coordinates", "latitude and longitude must be provided together")
	}
	scores := make(map[string]float64, len(in.Scores))
	for name, score := range in.Scores {
		scores[name] = score
	}
	return Comparable{
		id:          in.ID,
		location:    in.Location,
		latitude:    copyFloat(in.Latitude),
		longitude:   copyFloat(in.Longitude),
		area:        in.Area,
		price:       in.Price,
		status:      in.Status,
		scores:      scores,
		homogenized: in.Price,
		listingDate: copyTime(in.ListingDate),
		sellingDate: copyTime(in.SellingDate),
	}, nil
}

func (c Comparable) ID() string           { return c.id }
func (c Comparable) Location() string     { return c.location }
func (c Comparable) Area() Area           { return c.area }
func (c Comparable) Price() Money         { return c.price }
func (c Comparable) Status() SampleStatus { return c.status }
func (c Comparable) Homogenized() Money   { return c.homogenized }

// Scores returns a copy of the factor score map.
func (c Comparable) Scores() map[string]float64 {
	scores := make(map[string]float64, len(c.scores))
	for name, score := range c.scores {
		scores[name] = score
	}
	return scores
}

// Coordinates returns copies of the optional WGS84 coordinates.
func (c Comparable) Coordinates() (lat, lon *float64) {
	return copyFloat(c.latitude), copyFloat(c.longitude)
}

// ListingDate returns a copy of the optional listing date.
func (c Comparable) ListingDate() *time.Time { return copyTime(c.listingDate) }

// SellingDate returns a copy of the optional selling date.
func (c Comparable) SellingDate() *time.Time { return copyTime(c.sellingDate) }

// PricePerArea returns the homogenized value divided by the floor area.
func (c Comparable) PricePerArea() float64 {
	return c.homogenized.Amount() / c.area.Value()
}

// DistanceTo returns the geodesic distance in meters to the given point, or
// false when the comparable carries no coordinates.
func (c Comparable) DistanceTo(lat, lon float64) (float64, bool) {
	if c.latitude == nil || c.longitude == nil {
		return 0, false
	}
	return geo.Distance(orb.Point{*c.longitude, *c.latitude}, orb.Point{lon, lat}), true
}

// withHomogenized returns a copy of the comparable carrying a new
// homogenized value.
func (c Comparable) withHomogenized(value Money) Comparable {
	result := c
	result.homogenized = value
	return result
}

type comparableJSON struct {
	ID          string             `json:"id"`
	Location    string             `json:"location"`
	Latitude    *float64           `json:"latitude,omitempty"`
	Longitude   *float64           `json:"longitude,omitempty"`
	Area        Area               `json:"area"`
	Price       Money              `json:"price"`
	Status      SampleStatus       `json:"status"`
	Scores      map[string]float64 `json:"scores"`
	Homogenized Money              `json:"homogenized"`
	ListingDate *time.Time         `json:"listing_date,omitempty"`
	SellingDate *time.Time         `json:"selling_date,omitempty"`
}

func (c Comparable) MarshalJSON() ([]byte, error) {
	return json.Marshal(comparableJSON{
		ID:          c.id,
		Location:    c.location,
		Latitude:    c.latitude,
		Longitude:   c.longitude,
		Area:        c.area,
		Price:       c.price,
		Status:      c.status,
		Scores:      c.Scores(),
		Homogenized: c.homogenized,
		ListingDate: c.listingDate,
		SellingDate: c.sellingDate,
	})
}

func (c *Comparable) UnmarshalJSON(data []byte) error {
	var raw comparableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewComparable(ComparableInput{
		ID:          raw.ID,
		Location:    raw.Location,
		Latitude:    raw.Latitude,
		Longitude:   raw.Longitude,
		Area:        raw.Area,
		Price:       raw.Price,
		Status:      raw.Status,
		Scores:      raw.Scores,
		ListingDate: raw.ListingDate,
		SellingDate: raw.SellingDate,
	})
	if err != nil {
		return err
	}
	*c = parsed.withHomogenized(raw.Homogenized)
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	t := *v
	return &t
}
