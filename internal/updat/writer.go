// Package updat serializes sounding profiles to the UP.DAT fixed-format text
// file consumed by CALPUFF-family dispersion models.
//
// The layout is a file-format contract, not cosmetics: six fixed header
// lines, then one block per sounding consisting of a site header line and one
// comma-separated fixed-width data line per level. Field widths, the +273
// temperature offset, and the 999.9/999 missing-value sentinels all come from
// the consumer's reader and must be reproduced byte-for-byte so regression
// runs can diff output files directly.
package updat

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/airshedlabs/upperair/internal/domain"
)

const (
	// formatLine announces the dataset name and format version to the reader.
	formatLine = "UP.DAT          2.0             Header structure with coordinate parameters"
	flagsLine  = "F    F    F    F"

	defaultProducer = "Produced by UPPERAIR Version: 1.0"

	// identLineOverhead is subtracted from a sounding's declared line count to
	// get the level-record count the consumer expects in the site header.
	identLineOverhead = 3
)

// Writer emits UP.DAT files. The zero value is usable; SiteID and
// TopPressureHPa should be set to match the run being exported.
type Writer struct {
	// SiteID fills the 11-column site identifier field of every profile
	// header line, right-aligned.
	SiteID string

	// TopPressureHPa is the requested top pressure level, echoed in the
	// parameters header line.
	TopPressureHPa float64

	// Producer overrides the third header line when non-empty.
	Producer string

	// DecorateNames appends the window and top pressure to file names written
	// by WriteFile so successive runs stay distinguishable. Collisions are
	// neither detected nor prevented.
	DecorateNames bool
}

// CheckCoverage verifies that the supplied profiles span the requested
// window. A window starting before the first available launch or ending after
// the last fails with ErrRangeUnavailable; nothing is partially exported.
func CheckCoverage(profiles []domain.SoundingProfile, win domain.Window) error {
	if len(profiles) == 0 {
		return fmt.Errorf("%w: no soundings supplied", domain.ErrRangeUnavailable)
	}
	first := profiles[0].LaunchTime
	last := profiles[len(profiles)-1].LaunchTime
	if win.Start.Before(first) {
		return fmt.Errorf("%w: window starts %s but data begins %s",
			domain.ErrRangeUnavailable, stamp(win.Start), stamp(first))
	}
	if win.End.After(last) {
		return fmt.Errorf("%w: window ends %s but data ends %s",
			domain.ErrRangeUnavailable, stamp(win.End), stamp(last))
	}
	return nil
}

// TrimWindow drops leading profiles strictly before the window start and
// trailing profiles strictly after the window end. Profiles exactly on either
// boundary are retained.
func TrimWindow(profiles []domain.SoundingProfile, win domain.Window) []domain.SoundingProfile {
	trimmed := make([]domain.SoundingProfile, 0, len(profiles))
	for _, p := range profiles {
		if win.Contains(p.LaunchTime) {
			trimmed = append(trimmed, p)
		}
	}
	return trimmed
}

// Export validates coverage, trims the profiles to the window, and writes the
// complete UP.DAT stream to out. Output is byte-reproducible for identical
// input.
func (w *Writer) Export(out io.Writer, profiles []domain.SoundingProfile, win domain.Window) error {
	if err := CheckCoverage(profiles, win); err != nil {
		return err
	}
	trimmed := TrimWindow(profiles, win)

	bw := bufio.NewWriter(out)
	w.writeHeader(bw, win)
	for _, p := range trimmed {
		w.writeProfile(bw, p)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write UP.DAT: %w", err)
	}
	return nil
}

// WriteFile exports to the named file, decorating the name first when
// configured, and returns the path actually written. The file is only created
// after the coverage check passes; a failure mid-write leaves a truncated
// file the caller must treat as unusable.
func (w *Writer) WriteFile(path string, profiles []domain.SoundingProfile, win domain.Window) (string, error) {
	if err := CheckCoverage(profiles, win); err != nil {
		return "", err
	}
	if w.DecorateNames {
		path = decoratePath(path, win, w.TopPressureHPa)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := w.Export(f, profiles, win); err != nil {
		return path, err
	}
	if err := f.Close(); err != nil {
		return path, fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// writeHeader emits the six fixed header lines.
func (w *Writer) writeHeader(bw *bufio.Writer, win domain.Window) {
	producer := w.Producer
	if producer == "" {
		producer = defaultProducer
	}

	fmt.Fprintln(bw, formatLine)
	fmt.Fprintln(bw, "   1")
	fmt.Fprintln(bw, producer)
	fmt.Fprintln(bw, "NONE")
	fmt.Fprintf(bw, "%6d%4d%5d%6d%4d%5d%10.1f%5d%5d\n",
		win.Start.Year, win.Start.YearDay(), 1,
		win.End.Year, win.End.YearDay(), 1,
		w.TopPressureHPa, 2, 2)
	fmt.Fprintln(bw, flagsLine)
}

// writeProfile emits one sounding: the site header line and one data line per
// valid level. Levels with negative height are invalid records and are
// excluded entirely rather than emitted with sentinels.
func (w *Writer) writeProfile(bw *bufio.Writer, p domain.SoundingProfile) {
	// A declared count below the identification overhead is malformed input;
	// clamp so the site header never reports a negative level count.
	levels := p.DeclaredLines - identLineOverhead
	if levels < 0 {
		levels = 0
	}
	fmt.Fprintf(bw, "%11s%4d%02d%02d%02d%6d%5d\n",
		w.SiteID,
		p.LaunchTime.Year, p.LaunchTime.Month, p.LaunchTime.Day, p.LaunchTime.Hour,
		levels, levels)

	for _, lv := range p.Levels {
		if lv.HeightM < 0 {
			continue
		}
		fmt.Fprintln(bw, formatLevel(lv))
	}
}

// formatLevel renders one level as comma-separated fixed-width fields:
// pressure, height, temperature on the +273 offset scale, wind direction,
// wind speed. Absent values take the format's own sentinels. No separator
// follows the last field.
func formatLevel(lv domain.Level) string {
	fields := []string{
		fmt.Sprintf("%6.1f", lv.PressureHPa),
		fmt.Sprintf("%5.0f", lv.HeightM),
	}

	if lv.TempC != nil {
		fields = append(fields, fmt.Sprintf("%5.1f", *lv.TempC+273))
	} else {
		fields = append(fields, "999.9")
	}

	if lv.WindDirDeg != nil {
		fields = append(fields, fmt.Sprintf("%3.0f", *lv.WindDirDeg))
	} else {
		fields = append(fields, "999")
	}

	if lv.WindSpeed != nil {
		fields = append(fields, fmt.Sprintf("%5.1f", *lv.WindSpeed))
	} else {
		fields = append(fields, "999.9")
	}

	return strings.Join(fields, ",")
}

// decoratePath inserts the window bounds and top pressure before the file
// extension: UP.DAT → UP_2009010100_2009010300_500MB.DAT.
func decoratePath(path string, win domain.Window, ptop float64) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	return fmt.Sprintf("%s_%s_%s_%.0fMB%s", base, stamp(win.Start), stamp(win.End), ptop, ext)
}

// stamp renders a launch time as YYYYMMDDHH.
func stamp(lt domain.LaunchTime) string {
	return fmt.Sprintf("%04d%02d%02d%02d", lt.Year, lt.Month, lt.Day, lt.Hour)
}
