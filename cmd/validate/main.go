// Command validate performs structural integrity checks on an emitted UP.DAT
// file: header layout, per-sounding line accounting, field widths, sentinel
// usage, and ordering invariants. It exists so regression runs can verify a
// file against the consumer's format contract without feeding it to the
// dispersion model.
//
// Usage:
//
//	go run ./cmd/validate -file UP.DAT
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	headerLines    = 6
	formatPrefix   = "UP.DAT"
	flagsLine      = "F    F    F    F"
	siteHeaderLen  = 32
	dataFieldCount = 5
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "", "path to the UP.DAT file to validate")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read %s: %v\n", *file, err)
		os.Exit(1)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	fmt.Printf("=== UP.DAT Structure Validation: %s ===\n\n", *file)

	phases := []*phase{
		validateHeader(lines),
		validateSoundings(lines),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			allPassed = false
		}
		fmt.Printf("[%s] %s\n", status, p.name)
		for _, e := range p.errors {
			fmt.Printf("       - %s\n", e)
		}
	}

	if !allPassed {
		os.Exit(1)
	}
	fmt.Println("\nall checks passed")
}

// validateHeader checks the six fixed header lines.
func validateHeader(lines []string) *phase {
	p := &phase{name: "header layout"}

	if len(lines) < headerLines {
		p.errorf("file has %d lines, want at least %d header lines", len(lines), headerLines)
		return p
	}

	if !strings.HasPrefix(lines[0], formatPrefix) {
		p.errorf("line 1 does not start with %q: %q", formatPrefix, lines[0])
	}
	if strings.TrimSpace(lines[1]) != "1" {
		p.errorf("line 2 is %q, want constant 1", lines[1])
	}
	if strings.TrimSpace(lines[2]) == "" {
		p.errorf("line 3 (producer) is empty")
	}
	if lines[3] != "NONE" {
		p.errorf("line 4 is %q, want NONE", lines[3])
	}

	params := strings.Fields(lines[4])
	if len(params) != 9 {
		p.errorf("parameters line has %d fields, want 9: %q", len(params), lines[4])
	} else {
		for i, f := range params {
			if _, err := strconv.ParseFloat(f, 64); err != nil {
				p.errorf("parameters field %d is not numeric: %q", i+1, f)
			}
		}
	}

	if lines[5] != flagsLine {
		p.errorf("flags line is %q, want %q", lines[5], flagsLine)
	}

	return p
}

// soundingBlock is one parsed site header plus its data-line count.
type soundingBlock struct {
	line      int
	launch    time.Time
	declared  int
	dataLines int
	pressures []float64
}

// validateSoundings checks every block after the header: site header widths,
// data line field layout, sentinel usage, pressure monotonicity within a
// sounding, and launch-time ordering across soundings.
func validateSoundings(lines []string) *phase {
	p := &phase{name: "sounding blocks"}
	if len(lines) <= headerLines {
		p.errorf("no sounding blocks present")
		return p
	}

	var blocks []*soundingBlock
	var current *soundingBlock

	for i, line := range lines[headerLines:] {
		lineNo := headerLines + i + 1
		if strings.Contains(line, ",") {
			if current == nil {
				p.errorf("line %d: data line before any site header", lineNo)
				continue
			}
			if press, ok := checkDataLine(p, lineNo, line); ok {
				current.pressures = append(current.pressures, press)
			}
			current.dataLines++
			continue
		}

		block := checkSiteHeader(p, lineNo, line)
		if block != nil {
			blocks = append(blocks, block)
			current = block
		}
	}

	for _, b := range blocks {
		// Negative-height levels are excluded from output, so fewer data
		// lines than declared is legal; more is not.
		if b.dataLines > b.declared {
			p.errorf("line %d: %d data lines exceed declared count %d", b.line, b.dataLines, b.declared)
		}
		for i := 1; i < len(b.pressures); i++ {
			if b.pressures[i] >= b.pressures[i-1] {
				p.errorf("line %d: pressure not strictly decreasing at level %d", b.line, i+1)
			}
		}
	}

	for i := 1; i < len(blocks); i++ {
		if !blocks[i].launch.After(blocks[i-1].launch) {
			p.errorf("line %d: launch time not after previous sounding", blocks[i].line)
		}
	}

	return p
}

// checkSiteHeader validates one site header line and extracts its launch time
// and declared level count.
func checkSiteHeader(p *phase, lineNo int, line string) *soundingBlock {
	if len(line) != siteHeaderLen {
		p.errorf("line %d: site header is %d columns, want %d", lineNo, len(line), siteHeaderLen)
		return nil
	}

	year, err1 := strconv.Atoi(strings.TrimSpace(line[11:15]))
	month, err2 := strconv.Atoi(line[15:17])
	day, err3 := strconv.Atoi(line[17:19])
	hour, err4 := strconv.Atoi(line[19:21])
	count1, err5 := strconv.Atoi(strings.TrimSpace(line[21:27]))
	count2, err6 := strconv.Atoi(strings.TrimSpace(line[27:32]))

	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		p.errorf("line %d: unparsable site header: %q", lineNo, line)
		return nil
	}
	if count1 != count2 {
		p.errorf("line %d: level count fields disagree: %d vs %d", lineNo, count1, count2)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 {
		p.errorf("line %d: out-of-range date/hour", lineNo)
		return nil
	}

	return &soundingBlock{
		line:     lineNo,
		launch:   time.Date(year, time.Month(month), day, hour, 0, 0, 0, time.UTC),
		declared: count1,
	}
}

// checkDataLine validates one level record and returns its pressure.
func checkDataLine(p *phase, lineNo int, line string) (float64, bool) {
	fields := strings.Split(line, ",")
	if len(fields) != dataFieldCount {
		p.errorf("line %d: %d fields, want %d", lineNo, len(fields), dataFieldCount)
		return 0, false
	}

	widths := []int{6, 5, 5, 3, 5}
	names := []string{"pressure", "height", "temperature", "direction", "speed"}
	for i, f := range fields {
		if len(f) != widths[i] {
			p.errorf("line %d: %s field is %d columns, want %d: %q", lineNo, names[i], len(f), widths[i], f)
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(f), 64); err != nil {
			p.errorf("line %d: %s field not numeric: %q", lineNo, names[i], f)
		}
	}

	height, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err == nil && height < 0 {
		p.errorf("line %d: negative height %v should have been excluded", lineNo, height)
	}

	press, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return 0, false
	}
	return press, true
}
