package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// combinedIDRe matches the "WBAN-WMO" combined identifier form, e.g. "23230-72493".
var combinedIDRe = regexp.MustCompile(`^\d+-\d+$`)

// maxListedCandidates is the largest match set returned as a full list;
// anything bigger collapses to a count-only outcome.
const maxListedCandidates = 100

// Field names a single station attribute for exact-match queries.
type Field string

const (
	FieldInit Field = "init"
	FieldWBAN Field = "wban"
	FieldWMO  Field = "wmo"
)

type queryKind int

const (
	queryCombinedID queryKind = iota
	queryName
	queryField
	queryRegionCountry
	queryBoundingBox
	queryElevation
)

// Query is a single-mode station search. Construct it only through the
// By* constructors; each constructor fixes the mode, so conflicting
// parameter combinations are unrepresentable.
type Query struct {
	kind queryKind

	combinedID string
	name       string

	field      Field
	fieldValue string

	region  string
	country string

	latLo, latHi float64
	lonLo, lonHi float64

	elevLo *float64
	elevHi *float64
}

// Mode returns a short label for the query's mode, used in logs and metrics.
func (q Query) Mode() string {
	switch q.kind {
	case queryCombinedID:
		return "combined_id"
	case queryName:
		return "name"
	case queryField:
		return "field_" + string(q.field)
	case queryRegionCountry:
		return "region_country"
	case queryBoundingBox:
		return "bounding_box"
	default:
		return "elevation"
	}
}

// ByCombinedID searches for an exact "WBAN-WMO" identifier.
func ByCombinedID(id string) Query {
	return Query{kind: queryCombinedID, combinedID: id}
}

// ByName searches station names for a case-insensitive substring.
func ByName(substr string) Query {
	return Query{kind: queryName, name: substr}
}

// ByField searches for an exact match on a single identifier field.
func ByField(f Field, value string) Query {
	return Query{kind: queryField, field: f, fieldValue: value}
}

// ByRegionCountry searches by region and/or country code; when both are given
// a station must match both.
func ByRegionCountry(region, country string) Query {
	return Query{kind: queryRegionCountry, region: region, country: country}
}

// ByBoundingBox searches for stations with latitude in [latLo, latHi] and
// longitude in [lonLo, lonHi]. All four bounds are required by construction.
func ByBoundingBox(latLo, latHi, lonLo, lonHi float64) Query {
	return Query{kind: queryBoundingBox, latLo: latLo, latHi: latHi, lonLo: lonLo, lonHi: lonHi}
}

// ByElevation searches by station elevation in meters. Either bound may be
// nil, but not both.
func ByElevation(lower, upper *float64) Query {
	return Query{kind: queryElevation, elevLo: lower, elevHi: upper}
}

// validate checks the mode's required parameter set.
func (q Query) validate() error {
	switch q.kind {
	case queryCombinedID:
		if !combinedIDRe.MatchString(q.combinedID) {
			return fmt.Errorf("%w: combined identifier %q must be \"WBAN-WMO\" with numeric parts", ErrInvalidArgument, q.combinedID)
		}
	case queryName:
		if strings.TrimSpace(q.name) == "" {
			return fmt.Errorf("%w: name substring is empty", ErrInvalidArgument)
		}
	case queryField:
		switch q.field {
		case FieldInit, FieldWBAN, FieldWMO:
		default:
			return fmt.Errorf("%w: unknown field %q", ErrInvalidArgument, string(q.field))
		}
		if q.fieldValue == "" {
			return fmt.Errorf("%w: empty %s value", ErrInvalidArgument, string(q.field))
		}
	case queryRegionCountry:
		if q.region == "" && q.country == "" {
			return fmt.Errorf("%w: region/country search needs at least one of region, country", ErrInvalidArgument)
		}
	case queryBoundingBox:
		if q.latLo > q.latHi || q.lonLo > q.lonHi {
			return fmt.Errorf("%w: bounding box has inverted bounds", ErrInvalidArgument)
		}
	case queryElevation:
		if q.elevLo == nil && q.elevHi == nil {
			return fmt.Errorf("%w: elevation search needs at least one bound", ErrInvalidArgument)
		}
	}
	return nil
}

// matches reports whether a station satisfies the query.
func (q Query) matches(s StationRecord) bool {
	switch q.kind {
	case queryCombinedID:
		return s.WBAN+"-"+s.WMO == q.combinedID
	case queryName:
		return strings.Contains(
			strings.ToLower(normalizeStationName(s.Name)),
			strings.ToLower(q.name),
		)
	case queryField:
		switch q.field {
		case FieldInit:
			return s.Init == q.fieldValue
		case FieldWBAN:
			return s.WBAN == q.fieldValue
		default:
			return s.WMO == q.fieldValue
		}
	case queryRegionCountry:
		if q.region != "" && s.Region != q.region {
			return false
		}
		if q.country != "" && s.Country != q.country {
			return false
		}
		return true
	case queryBoundingBox:
		return s.Lat >= q.latLo && s.Lat <= q.latHi &&
			s.Lon >= q.lonLo && s.Lon <= q.lonHi
	default: // elevation
		if q.elevLo != nil && s.ElevationM < *q.elevLo {
			return false
		}
		if q.elevHi != nil && s.ElevationM > *q.elevHi {
			return false
		}
		return true
	}
}

// nameNormalizer folds the punctuation the archive embeds in station names
// into spaces so substring searches don't have to reproduce it.
var nameNormalizer = strings.NewReplacer("(", " ", ")", " ", "/", " ", "\\", " ")

func normalizeStationName(name string) string {
	return nameNormalizer.Replace(name)
}

// OutcomeKind classifies a selection result.
type OutcomeKind int

const (
	// NoMatch means the query matched no stations. A normal outcome, not an error.
	NoMatch OutcomeKind = iota
	// Selected means exactly one station matched and became the target.
	Selected
	// Candidates means 2–100 stations matched; all are listed.
	Candidates
	// CountOnly means more than 100 stations matched; only the count is reported.
	CountOnly
)

func (k OutcomeKind) String() string {
	switch k {
	case NoMatch:
		return "no_match"
	case Selected:
		return "selected"
	case Candidates:
		return "candidates"
	default:
		return "count_only"
	}
}

// Confirmation identifies a newly selected target station.
type Confirmation struct {
	WMO  string `json:"wmo"`
	WBAN string `json:"wban"`
	Name string `json:"name"`
}

// Outcome is the result of a selection query. Target is non-nil only when
// Kind is Selected; Stations is non-nil only when Kind is Candidates; Count
// is set for every kind.
type Outcome struct {
	Kind     OutcomeKind
	Count    int
	Target   *StationRecord
	Stations []StationRecord
}

// Confirmation returns the single-match confirmation record. Only meaningful
// when Kind is Selected.
func (o Outcome) Confirmation() Confirmation {
	if o.Target == nil {
		return Confirmation{}
	}
	return Confirmation{WMO: o.Target.WMO, WBAN: o.Target.WBAN, Name: o.Target.Name}
}

// Select runs a single-mode query against the catalog and applies the uniform
// result-count policy: 0 matches → NoMatch, 1 → Selected (the record becomes
// the caller's target station), 2–100 → Candidates, >100 → CountOnly.
// Malformed queries fail with ErrInvalidArgument; an unloaded catalog fails
// with ErrNoCatalog.
func Select(c *Catalog, q Query) (Outcome, error) {
	if !c.Loaded() {
		return Outcome{}, ErrNoCatalog
	}
	if err := q.validate(); err != nil {
		return Outcome{}, err
	}

	var matched []StationRecord
	for _, s := range c.Stations() {
		if q.matches(s) {
			matched = append(matched, s)
		}
	}

	switch n := len(matched); {
	case n == 0:
		return Outcome{Kind: NoMatch}, nil
	case n == 1:
		target := matched[0]
		return Outcome{Kind: Selected, Count: 1, Target: &target}, nil
	case n <= maxListedCandidates:
		return Outcome{Kind: Candidates, Count: n, Stations: matched}, nil
	default:
		return Outcome{Kind: CountOnly, Count: n}, nil
	}
}
