package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalValue(t *testing.T) {
	tests := []struct {
		name    string
		in      float64
		present bool
	}{
		{"ordinary value", 21.5, true},
		{"zero", 0, true},
		{"negative value", -45.2, true},
		{"upper edge kept", 900, true},
		{"just over sentinel threshold", 900.1, false},
		{"raw sentinel scaled", 9999.9, false},
		{"negative sentinel", -9999.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OptionalValue(tt.in)
			if tt.present {
				require.NotNil(t, got)
				assert.Equal(t, tt.in, *got)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestWindowContains(t *testing.T) {
	win := Window{
		Start: LaunchTime{Year: 2009, Month: 1, Day: 1, Hour: 0},
		End:   LaunchTime{Year: 2009, Month: 1, Day: 3, Hour: 12},
	}

	tests := []struct {
		name string
		lt   LaunchTime
		want bool
	}{
		{"exactly at start", LaunchTime{2009, 1, 1, 0}, true},
		{"exactly at end", LaunchTime{2009, 1, 3, 12}, true},
		{"inside", LaunchTime{2009, 1, 2, 12}, true},
		{"hour before start", LaunchTime{2008, 12, 31, 23}, false},
		{"hour after end", LaunchTime{2009, 1, 3, 13}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, win.Contains(tt.lt))
		})
	}
}

func TestLaunchTimeYearDay(t *testing.T) {
	assert.Equal(t, 1, LaunchTime{Year: 2009, Month: 1, Day: 1}.YearDay())
	assert.Equal(t, 32, LaunchTime{Year: 2009, Month: 2, Day: 1}.YearDay())
	// Leap year.
	assert.Equal(t, 366, LaunchTime{Year: 2008, Month: 12, Day: 31}.YearDay())
}

func TestCatalogLifecycle(t *testing.T) {
	fixed := time.Date(2009, 1, 15, 18, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	defer SetClock(nil)

	t.Run("loaded catalog is stamped", func(t *testing.T) {
		c := NewCatalog([]StationRecord{{WBAN: "23230", WMO: "72493"}})
		assert.True(t, c.Loaded())
		assert.Equal(t, fixed, c.FetchedAt())
		assert.Equal(t, 1, c.Len())
	})

	t.Run("nil and zero catalogs are not loaded", func(t *testing.T) {
		var nilCat *Catalog
		assert.False(t, nilCat.Loaded())
		assert.Zero(t, nilCat.Len())
		assert.False(t, (&Catalog{}).Loaded())
	})

	t.Run("duplicate identity pairs pass through", func(t *testing.T) {
		dup := StationRecord{WBAN: "11111", WMO: "22222"}
		c := NewCatalog([]StationRecord{dup, dup})
		assert.Equal(t, 2, c.Len())
	})
}
