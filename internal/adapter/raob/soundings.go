package raob

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/airshedlabs/upperair/internal/domain"
)

// FSL-style sounding text line types. Every line starts with a numeric type:
// 254 opens a new sounding, 1–3 are identification lines, 4–9 carry level
// data (surface, mandatory, significant, wind, tropopause, max-wind).
const (
	lineNewSounding   = 254
	lineStationIdent  = 1
	lineSoundingIdent = 2
	lineStationName   = 3
	lineDataFirst     = 4
	lineDataLast      = 9
)

// rawMissing is the archive's raw missing sentinel before unit scaling.
const rawMissing = 99999

var monthNumbers = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

var monthNames = [13]string{"", "JAN", "FEB", "MAR", "APR", "MAY", "JUN",
	"JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// parseSoundingText decodes the archive's processed sounding text into
// time-ordered profiles. Pressure and temperature arrive in tenths (of hPa
// and °C); raw sentinels become nil optionals after scaling so they never
// enter arithmetic downstream. Any malformed line aborts the whole parse —
// a truncated sounding is worse than no sounding.
func parseSoundingText(body []byte) ([]domain.SoundingProfile, error) {
	var (
		profiles []domain.SoundingProfile
		current  *domain.SoundingProfile
	)

	scanner := bufio.NewScanner(bytes.NewReader(body))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		lineType, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: unrecognized line type %q", lineNo, fields[0])
		}

		switch {
		case lineType == lineNewSounding:
			if current != nil {
				profiles = append(profiles, *current)
			}
			lt, err := parseLaunchLine(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current = &domain.SoundingProfile{LaunchTime: lt}

		case current == nil:
			return nil, fmt.Errorf("line %d: type %d before any sounding header", lineNo, lineType)

		case lineType == lineSoundingIdent:
			lines, err := parseDeclaredLines(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current.DeclaredLines = lines

		case lineType == lineStationIdent || lineType == lineStationName:
			// Station identity is already known from the request.

		case lineType >= lineDataFirst && lineType <= lineDataLast:
			lv, err := parseLevelLine(fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			current.Levels = append(current.Levels, lv)

		default:
			return nil, fmt.Errorf("line %d: unknown line type %d", lineNo, lineType)
		}
	}
	if current != nil {
		profiles = append(profiles, *current)
	}

	return profiles, nil
}

// parseLaunchLine decodes "254 HOUR DAY MONTH YEAR" with a three-letter
// uppercase month name.
func parseLaunchLine(fields []string) (domain.LaunchTime, error) {
	if len(fields) < 5 {
		return domain.LaunchTime{}, fmt.Errorf("sounding header has %d fields, want 5", len(fields))
	}

	hour, err := strconv.Atoi(fields[1])
	if err != nil {
		return domain.LaunchTime{}, fmt.Errorf("hour: %w", err)
	}
	day, err := strconv.Atoi(fields[2])
	if err != nil {
		return domain.LaunchTime{}, fmt.Errorf("day: %w", err)
	}
	month, ok := monthNumbers[strings.ToUpper(fields[3])]
	if !ok {
		return domain.LaunchTime{}, fmt.Errorf("unknown month %q", fields[3])
	}
	year, err := strconv.Atoi(fields[4])
	if err != nil {
		return domain.LaunchTime{}, fmt.Errorf("year: %w", err)
	}

	return domain.LaunchTime{Year: year, Month: month, Day: day, Hour: hour}, nil
}

// parseDeclaredLines pulls the LINES field from the type-2 identification
// line ("2 HYDRO MXWD TROPL LINES TINDEX SOURCE").
func parseDeclaredLines(fields []string) (int, error) {
	if len(fields) < 5 {
		return 0, fmt.Errorf("sounding ident has %d fields, want at least 5", len(fields))
	}
	lines, err := strconv.Atoi(fields[4])
	if err != nil {
		return 0, fmt.Errorf("declared line count: %w", err)
	}
	return lines, nil
}

// parseLevelLine decodes one data line: pressure (tenths hPa), height (m),
// temperature (tenths °C), dewpoint (tenths °C, unused), wind direction
// (deg), wind speed.
func parseLevelLine(fields []string) (domain.Level, error) {
	if len(fields) < 7 {
		return domain.Level{}, fmt.Errorf("level line has %d fields, want 7", len(fields))
	}

	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return domain.Level{}, fmt.Errorf("level field %d: %w", i+1, err)
		}
		vals[i] = v
	}

	return domain.Level{
		PressureHPa: vals[0] / 10,
		HeightM:     vals[1],
		TempC:       domain.OptionalValue(vals[2] / 10),
		WindDirDeg:  domain.OptionalValue(vals[4]),
		WindSpeed:   domain.OptionalValue(vals[5]),
	}, nil
}

// FormatSounding renders a profile back into the archive's sounding text
// layout. Used by the fixture generator so synthetic soundings round-trip
// through the same line definitions as the parser. Wind direction and speed
// are whole-unit fields in this format, so fractional values are rounded on
// encode; a profile round-trips losslessly only when its wind values are
// whole numbers.
func FormatSounding(station domain.StationRecord, p domain.SoundingProfile) string {
	var b strings.Builder

	lt := p.LaunchTime
	fmt.Fprintf(&b, "%7d%7d%7d%7s%7d\n", lineNewSounding, lt.Hour, lt.Day, monthNames[lt.Month], lt.Year)
	fmt.Fprintf(&b, "%7d%7s%7s%7.2f%7.2f%7.0f%7d\n", lineStationIdent,
		station.WBAN, station.WMO, station.Lat, station.Lon, station.ElevationM, rawMissing)
	fmt.Fprintf(&b, "%7d%7d%7d%7d%7d%7d%7s\n", lineSoundingIdent,
		rawMissing, rawMissing, rawMissing, p.DeclaredLines, rawMissing, "FSL")
	fmt.Fprintf(&b, "%7d%13s%14d%7s\n", lineStationName, station.Init, rawMissing, "kt")

	for i, lv := range p.Levels {
		lineType := lineDataFirst + 1 // significant level
		if i == 0 {
			lineType = lineDataFirst // surface
		}
		fmt.Fprintf(&b, "%7d%7d%7d%7d%7d%7d%7d\n", lineType,
			encodeTenths(lv.PressureHPa), int(lv.HeightM),
			encodeOptionalTenths(lv.TempC), rawMissing,
			encodeOptional(lv.WindDirDeg), encodeOptional(lv.WindSpeed))
	}

	return b.String()
}

func encodeTenths(v float64) int {
	return int(math.Round(v * 10))
}

func encodeOptionalTenths(v *float64) int {
	if v == nil {
		return rawMissing
	}
	return encodeTenths(*v)
}

func encodeOptional(v *float64) int {
	if v == nil {
		return rawMissing
	}
	return int(math.Round(*v))
}
