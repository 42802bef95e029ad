package updat

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airshedlabs/upperair/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func lt(day, hour int) domain.LaunchTime {
	return domain.LaunchTime{Year: 2009, Month: 1, Day: day, Hour: hour}
}

// profile builds a sounding on the given day/hour with a fixed five-level
// ladder whose first level has negative height.
func profile(day, hour int) domain.SoundingProfile {
	p := domain.SoundingProfile{
		LaunchTime:    lt(day, hour),
		DeclaredLines: 8, // 3 identification lines + 5 data levels
	}
	for i := 0; i < 5; i++ {
		lv := domain.Level{
			PressureHPa: 1013.2 - float64(i)*100,
			HeightM:     float64(i) * 500,
			TempC:       ptr(12.5 - float64(i)*5),
			WindDirDeg:  ptr(float64(200 + i*10)),
			WindSpeed:   ptr(5.1 + float64(i)),
		}
		if i == 0 {
			lv.HeightM = -5
		}
		p.Levels = append(p.Levels, lv)
	}
	return p
}

func threeDays() []domain.SoundingProfile {
	return []domain.SoundingProfile{profile(1, 0), profile(2, 0), profile(3, 0)}
}

func TestCheckCoverage(t *testing.T) {
	profiles := threeDays()

	tests := []struct {
		name    string
		win     domain.Window
		wantErr bool
	}{
		{"exact span", domain.Window{Start: lt(1, 0), End: lt(3, 0)}, false},
		{"interior window", domain.Window{Start: lt(2, 0), End: lt(2, 0)}, false},
		{"start before data", domain.Window{Start: domain.LaunchTime{Year: 2008, Month: 12, Day: 31, Hour: 12}, End: lt(2, 0)}, true},
		{"end after data", domain.Window{Start: lt(2, 0), End: lt(3, 12)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckCoverage(profiles, tt.win)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrRangeUnavailable)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("no profiles at all", func(t *testing.T) {
		err := CheckCoverage(nil, domain.Window{Start: lt(1, 0), End: lt(1, 0)})
		assert.ErrorIs(t, err, domain.ErrRangeUnavailable)
	})
}

func TestTrimWindow_BoundaryInclusive(t *testing.T) {
	profiles := []domain.SoundingProfile{
		profile(1, 0), profile(1, 12), profile(2, 0), profile(2, 12), profile(3, 0),
	}
	win := domain.Window{Start: lt(1, 12), End: lt(2, 12)}

	trimmed := TrimWindow(profiles, win)

	require.Len(t, trimmed, 3)
	assert.Equal(t, lt(1, 12), trimmed[0].LaunchTime, "profile exactly at start retained")
	assert.Equal(t, lt(2, 12), trimmed[2].LaunchTime, "profile exactly at end retained")
}

func TestExport_Golden(t *testing.T) {
	w := Writer{SiteID: "23230", TopPressureHPa: 500}
	profiles := []domain.SoundingProfile{
		{
			LaunchTime:    lt(1, 0),
			DeclaredLines: 5,
			Levels: []domain.Level{
				{PressureHPa: 1013.2, HeightM: 3, TempC: ptr(12.5), WindDirDeg: ptr(200.0), WindSpeed: ptr(5.1)},
				{PressureHPa: 850.0, HeightM: 1457, TempC: domain.OptionalValue(950), WindDirDeg: nil, WindSpeed: nil},
			},
		},
	}
	win := domain.Window{Start: lt(1, 0), End: lt(1, 0)}

	var buf bytes.Buffer
	require.NoError(t, w.Export(&buf, profiles, win))

	want := strings.Join([]string{
		"UP.DAT          2.0             Header structure with coordinate parameters",
		"   1",
		"Produced by UPPERAIR Version: 1.0",
		"NONE",
		"  2009   1    1  2009   1    1     500.0    2    2",
		"F    F    F    F",
		"      232302009010100     2    2",
		"1013.2,    3,285.5,200,  5.1",
		" 850.0, 1457,999.9,999,999.9",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

// TestExport_EndToEnd pins the file's line accounting: three daily profiles
// of five levels each, one level per profile invalid for negative height,
// gives six header lines, three site headers, and twelve data lines.
func TestExport_EndToEnd(t *testing.T) {
	w := Writer{SiteID: "23230", TopPressureHPa: 500}
	win := domain.Window{Start: lt(1, 0), End: lt(3, 0)}

	var buf bytes.Buffer
	require.NoError(t, w.Export(&buf, threeDays(), win))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6+3+12)

	var siteHeaders, dataLines int
	for _, line := range lines[6:] {
		if strings.Contains(line, ",") {
			dataLines++
			height := strings.TrimSpace(strings.Split(line, ",")[1])
			assert.False(t, strings.HasPrefix(height, "-"), "negative height emitted: %q", line)
		} else {
			siteHeaders++
			assert.True(t, strings.HasPrefix(line, fmt.Sprintf("%11s", "23230")))
		}
	}
	assert.Equal(t, 3, siteHeaders)
	assert.Equal(t, 12, dataLines)
}

func TestExport_DegenerateDeclaredCount(t *testing.T) {
	w := Writer{SiteID: "23230", TopPressureHPa: 500}
	profiles := []domain.SoundingProfile{
		{LaunchTime: lt(1, 0), DeclaredLines: 1},
	}
	win := domain.Window{Start: lt(1, 0), End: lt(1, 0)}

	var buf bytes.Buffer
	require.NoError(t, w.Export(&buf, profiles, win))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "      232302009010100     0    0", lines[6],
		"level count clamps at zero for malformed declared counts")
}

func TestExport_Idempotent(t *testing.T) {
	w := Writer{SiteID: "23230", TopPressureHPa: 500}
	win := domain.Window{Start: lt(1, 0), End: lt(3, 0)}

	var first, second bytes.Buffer
	require.NoError(t, w.Export(&first, threeDays(), win))
	require.NoError(t, w.Export(&second, threeDays(), win))

	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestExport_CoverageFailureWritesNothing(t *testing.T) {
	w := Writer{SiteID: "23230", TopPressureHPa: 500}
	win := domain.Window{Start: lt(1, 0), End: lt(4, 0)}

	var buf bytes.Buffer
	err := w.Export(&buf, threeDays(), win)

	require.ErrorIs(t, err, domain.ErrRangeUnavailable)
	assert.Zero(t, buf.Len())
}

func TestWriteFile(t *testing.T) {
	win := domain.Window{Start: lt(1, 0), End: lt(3, 0)}

	t.Run("plain name", func(t *testing.T) {
		dir := t.TempDir()
		w := Writer{SiteID: "23230", TopPressureHPa: 500}

		path, err := w.WriteFile(filepath.Join(dir, "UP.DAT"), threeDays(), win)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "UP.DAT"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "UP.DAT          2.0"))
	})

	t.Run("decorated name", func(t *testing.T) {
		dir := t.TempDir()
		w := Writer{SiteID: "23230", TopPressureHPa: 500, DecorateNames: true}

		path, err := w.WriteFile(filepath.Join(dir, "UP.DAT"), threeDays(), win)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "UP_2009010100_2009010300_500MB.DAT"), path)

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("coverage failure creates no file", func(t *testing.T) {
		dir := t.TempDir()
		w := Writer{SiteID: "23230", TopPressureHPa: 500}
		badWin := domain.Window{Start: lt(1, 0), End: lt(9, 0)}

		_, err := w.WriteFile(filepath.Join(dir, "UP.DAT"), threeDays(), badWin)
		require.ErrorIs(t, err, domain.ErrRangeUnavailable)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
