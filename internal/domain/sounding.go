package domain

import "time"

// missingThreshold is the archive's sentinel convention: any measurement
// whose magnitude exceeds 900 (after unit scaling) encodes "no data".
const missingThreshold = 900

// LaunchTime identifies one balloon launch to whole-hour precision, UTC.
type LaunchTime struct {
	Year  int
	Month int
	Day   int
	Hour  int
}

// Time converts the launch time to a time.Time in UTC.
func (lt LaunchTime) Time() time.Time {
	return time.Date(lt.Year, time.Month(lt.Month), lt.Day, lt.Hour, 0, 0, 0, time.UTC)
}

// YearDay returns the day-of-year (1–366) of the launch date.
func (lt LaunchTime) YearDay() int {
	return lt.Time().YearDay()
}

// Before reports whether lt is strictly earlier than other.
func (lt LaunchTime) Before(other LaunchTime) bool {
	return lt.Time().Before(other.Time())
}

// After reports whether lt is strictly later than other.
func (lt LaunchTime) After(other LaunchTime) bool {
	return lt.Time().After(other.Time())
}

// Window is an inclusive [Start, End] launch-time range.
type Window struct {
	Start LaunchTime
	End   LaunchTime
}

// Contains reports whether lt falls inside the window, boundaries included.
func (w Window) Contains(lt LaunchTime) bool {
	return !lt.Before(w.Start) && !lt.After(w.End)
}

// Level is one measurement within a sounding: pressure and height are always
// present; temperature and wind are nil when the archive reported its missing
// sentinel for them.
type Level struct {
	PressureHPa float64
	HeightM     float64
	TempC       *float64
	WindDirDeg  *float64
	WindSpeed   *float64
}

// SoundingProfile is one radiosonde launch: a launch time and the levels as
// received from the archive, surface to top. Levels are never re-sorted here.
// DeclaredLines is the line count the archive announced for the sounding,
// which includes its identification lines; downstream formats derive their
// own record counts from it.
type SoundingProfile struct {
	LaunchTime    LaunchTime
	DeclaredLines int
	Levels        []Level
}

// OptionalValue applies the archive's missing-value convention: values with
// magnitude above 900 become nil, everything else is passed through.
func OptionalValue(v float64) *float64 {
	if v > missingThreshold || v < -missingThreshold {
		return nil
	}
	return &v
}
