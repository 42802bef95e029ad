package domain

import "time"

// StationRecord is one entry from the archive's master station listing.
// Records are immutable once constructed; the catalog is rebuilt wholesale
// when refreshed.
type StationRecord struct {
	Init       string  `json:"init"` // short call code, e.g. "OAK"
	WBAN       string  `json:"wban"`
	WMO        string  `json:"wmo"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	ElevationM float64 `json:"elevation_m"`
	Name       string  `json:"name"`
	Region     string  `json:"region"`  // two-letter state/province code
	Country    string  `json:"country"` // two-letter country code
}

// Catalog holds the station listing in source order, stamped with the time it
// was fetched. The zero value is "never loaded" and any selection against it
// fails with ErrNoCatalog. Duplicate (WBAN, WMO) pairs from the source are a
// data-quality condition the catalog tolerates; it never deduplicates.
type Catalog struct {
	stations  []StationRecord
	fetchedAt time.Time
}

// NewCatalog wraps a fetched station listing, preserving its order.
// An empty listing still produces a loaded catalog.
func NewCatalog(stations []StationRecord) *Catalog {
	return &Catalog{
		stations:  stations,
		fetchedAt: clock.Now(),
	}
}

// Loaded reports whether the catalog came from an actual fetch, as opposed to
// being nil or the zero value.
func (c *Catalog) Loaded() bool {
	return c != nil && !c.fetchedAt.IsZero()
}

// Stations returns the listing in source order. Callers must not mutate it.
func (c *Catalog) Stations() []StationRecord {
	if c == nil {
		return nil
	}
	return c.stations
}

// Len returns the number of stations in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.stations)
}

// FetchedAt returns the time the listing was retrieved from the archive.
func (c *Catalog) FetchedAt() time.Time {
	if c == nil {
		return time.Time{}
	}
	return c.fetchedAt
}
