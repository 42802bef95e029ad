// Command genprofiles generates synthetic sounding fixtures for test suites
// and format experiments. It uses the real domain and export packages so the
// fixtures match actual tool behavior: a station listing line, archive-format
// sounding text, and the UP.DAT rendering of the same profiles.
//
// Usage:
//
//	go run ./cmd/genprofiles \
//	  -stations-out testdata/stationlist.txt \
//	  -fsl-out testdata/soundings.txt \
//	  -updat-out testdata/up.dat \
//	  -days 3 -levels 20
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/airshedlabs/upperair/internal/adapter/raob"
	"github.com/airshedlabs/upperair/internal/domain"
	"github.com/airshedlabs/upperair/internal/updat"
)

// fixtureStation is the synthetic station all generated soundings belong to.
var fixtureStation = domain.StationRecord{
	Init:       "OAK",
	WBAN:       "23230",
	WMO:        "72493",
	Lat:        37.73,
	Lon:        -122.21,
	ElevationM: 3,
	Name:       "OAKLAND INT (CA/US)",
	Region:     "CA",
	Country:    "US",
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	stationsOut := flag.String("stations-out", "", "output path for the station listing fixture")
	fslOut := flag.String("fsl-out", "", "output path for the archive-format sounding fixture")
	updatOut := flag.String("updat-out", "", "output path for the UP.DAT fixture")
	days := flag.Int("days", 3, "number of days of twice-daily launches")
	levels := flag.Int("levels", 20, "levels per sounding")
	year := flag.Int("year", 2009, "launch year")
	flag.Parse()

	if *stationsOut == "" || *fslOut == "" || *updatOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -stations-out, -fsl-out, -updat-out")
	}

	profiles := buildProfiles(*year, *days, *levels)
	log.Printf("generated %d soundings of %d levels", len(profiles), *levels)

	if err := os.WriteFile(*stationsOut, []byte(raob.FormatStationLine(fixtureStation)+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing station listing fixture: %w", err)
	}
	log.Printf("wrote station listing fixture: %s", *stationsOut)

	var fsl strings.Builder
	for _, p := range profiles {
		fsl.WriteString(raob.FormatSounding(fixtureStation, p))
	}
	if err := os.WriteFile(*fslOut, []byte(fsl.String()), 0o644); err != nil {
		return fmt.Errorf("writing sounding fixture: %w", err)
	}
	log.Printf("wrote sounding fixture: %s", *fslOut)

	writer := updat.Writer{
		SiteID:         fixtureStation.WBAN,
		TopPressureHPa: 500,
	}
	win := domain.Window{
		Start: profiles[0].LaunchTime,
		End:   profiles[len(profiles)-1].LaunchTime,
	}
	written, err := writer.WriteFile(*updatOut, profiles, win)
	if err != nil {
		return fmt.Errorf("writing UP.DAT fixture: %w", err)
	}
	log.Printf("wrote UP.DAT fixture: %s", written)
	return nil
}

// buildProfiles produces twice-daily January launches with a plausible
// pressure/height ladder. The topmost level of every second sounding loses
// its wind data so sentinel handling stays covered, and the first sounding of
// each day carries one negative-height level to exercise invalid-record
// exclusion.
func buildProfiles(year, days, levels int) []domain.SoundingProfile {
	var profiles []domain.SoundingProfile
	for day := 1; day <= days; day++ {
		for launch, hour := range []int{0, 12} {
			p := domain.SoundingProfile{
				LaunchTime:    domain.LaunchTime{Year: year, Month: 1, Day: day, Hour: hour},
				DeclaredLines: levels + 3,
			}
			for i := 0; i < levels; i++ {
				lv := domain.Level{
					PressureHPa: 1013.2 - float64(i)*25,
					HeightM:     float64(i) * 250,
					TempC:       ptr(12.5 - float64(i)*1.8),
					WindDirDeg:  ptr(float64(200 + (i*10)%160)),
					// Whole units: the archive's sounding text carries wind as
					// integer fields, and fixtures should round-trip exactly.
					WindSpeed: ptr(float64(2 + i)),
				}
				if launch == 1 && i == levels-1 {
					lv.WindDirDeg = nil
					lv.WindSpeed = nil
				}
				if launch == 0 && i == 0 {
					lv.HeightM = -2
				}
				p.Levels = append(p.Levels, lv)
			}
			profiles = append(profiles, p)
		}
	}
	return profiles
}

func ptr(v float64) *float64 { return &v }
