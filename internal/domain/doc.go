// Package domain models upper-air radiosonde station metadata and sounding
// observations from the NOAA/ESRL radiosonde archive.
//
// # Data Source
//
// Station metadata comes from the archive's master station listing, one
// station per fixed-column line. Each station carries two independent numeric
// identifiers assigned by different agencies:
//
//	WBAN — Weather Bureau Army Navy number (US network)
//	WMO  — World Meteorological Organization index number
//
// Neither is unique on its own across the full archive; the (WBAN, WMO) pair
// is. The listing also carries a short alphabetic "init" call code (e.g. OAK),
// coordinates, elevation, a free-text name, and two-letter region and country
// codes. Listing order is preserved as-is; it is neither geographic nor
// alphabetical.
//
// # Sounding Conventions
//
// A sounding is one balloon launch: a launch time (whole hours, UTC) and an
// ordered sequence of levels from the surface upward — increasing height,
// decreasing pressure. The archive encodes missing measurements with large
// sentinel magnitudes (anything above 900 after unit scaling, typically
// 99999 raw). Sentinels are converted to nil optionals at parse time so they
// can never leak into arithmetic; output formats re-encode absence with their
// own sentinel text at serialization time only.
//
// # Selection
//
// Station selection is a single-mode query: exactly one of combined
// "WBAN-WMO" identifier, name substring, single-field exact match, region and
// country, bounding box, or elevation range. The archive's own search form
// guesses the mode from whichever parameters happen to be set, which can
// misroute when a lone optional bound is combined with unrelated parameters;
// here each mode is an explicit Query constructor with its own required
// parameter set, and ambiguous input is rejected up front.
package domain
