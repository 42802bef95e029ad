package raob

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/airshedlabs/upperair/internal/domain"
)

// Station listing column layout. The archive emits one fixed-column line per
// station; a single structured slice-and-parse per line replaces the
// archive form's per-field regex extraction, so a malformed line produces one
// parse failure instead of a record with silently mismatched fields.
const (
	colInitLo, colInitHi       = 2, 6
	colWBANLo, colWBANHi       = 7, 12
	colWMOLo, colWMOHi         = 13, 18
	colLatLo, colLatHi         = 19, 26
	colLonLo, colLonHi         = 27, 35
	colElevLo, colElevHi       = 36, 42
	colNameLo, colNameHi       = 43, 73
	colRegionLo, colRegionHi   = 74, 76
	colCountryLo, colCountryHi = 77, 79

	stationLineLen = 79
)

// parseStationListing parses the full listing body, one record per line.
// Lines that fail to parse are logged and skipped; listing order is preserved
// and duplicate (WBAN, WMO) pairs from the source pass through untouched.
func (c *Client) parseStationListing(body []byte) []domain.StationRecord {
	var stations []domain.StationRecord

	scanner := bufio.NewScanner(bytes.NewReader(body))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		st, err := parseStationLine(line)
		if err != nil {
			c.logger.Warn("skipping malformed station listing line",
				"line", lineNo,
				"error", err,
			)
			continue
		}
		stations = append(stations, st)
	}

	return stations
}

// parseStationLine decodes one fixed-column listing line into a typed record.
func parseStationLine(line string) (domain.StationRecord, error) {
	if len(line) < stationLineLen {
		return domain.StationRecord{}, fmt.Errorf("line too short: %d columns", len(line))
	}

	field := func(lo, hi int) string {
		return strings.TrimSpace(line[lo:hi])
	}

	wban := field(colWBANLo, colWBANHi)
	wmo := field(colWMOLo, colWMOHi)
	if wban == "" || wmo == "" {
		return domain.StationRecord{}, fmt.Errorf("missing WBAN/WMO identifiers")
	}

	lat, err := strconv.ParseFloat(field(colLatLo, colLatHi), 64)
	if err != nil {
		return domain.StationRecord{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(field(colLonLo, colLonHi), 64)
	if err != nil {
		return domain.StationRecord{}, fmt.Errorf("longitude: %w", err)
	}
	elev, err := strconv.ParseFloat(field(colElevLo, colElevHi), 64)
	if err != nil {
		return domain.StationRecord{}, fmt.Errorf("elevation: %w", err)
	}

	return domain.StationRecord{
		Init:       field(colInitLo, colInitHi),
		WBAN:       wban,
		WMO:        wmo,
		Lat:        lat,
		Lon:        lon,
		ElevationM: elev,
		Name:       field(colNameLo, colNameHi),
		Region:     field(colRegionLo, colRegionHi),
		Country:    field(colCountryLo, colCountryHi),
	}, nil
}

// FormatStationLine renders a record back into the listing's fixed-column
// layout. Used by the fixture generator so test listings round-trip through
// the same column definitions as the parser.
func FormatStationLine(s domain.StationRecord) string {
	return fmt.Sprintf("  %-4s %5s %5s %7.2f %8.2f %5.0f. %-30s %2s %2s",
		s.Init, s.WBAN, s.WMO, s.Lat, s.Lon, s.ElevationM, s.Name, s.Region, s.Country)
}
