// Package dataio reads measurement tables and writes analysis results.
package dataio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-elliot/analysis"
)

// Errors returned by ReadTable.
var (
	ErrNoData    = errors.New("dataio: no numeric rows")
	ErrBadRow    = errors.New("dataio: malformed row")
	ErrFewFields = errors.New("dataio: need an axis and at least one dataset column")
)

// ReadOptions control table parsing.
type ReadOptions struct {
	Comma bool // split on commas instead of whitespace
	Unit  analysis.AxisUnit
}

// ReadFile reads a table from path. Files ending in .csv are comma
// separated; everything else is whitespace separated.
func ReadFile(path string, unit analysis.AxisUnit) (analysis.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return analysis.Table{}, err
	}
	defer f.Close()

	opts := ReadOptions{
		Comma: strings.EqualFold(filepath.Ext(path), ".csv"),
		Unit:  unit,
	}

	t, err := ReadTable(f, opts)
	if err != nil {
		return analysis.Table{}, fmt.Errorf("%s: %w", path, err)
	}

	t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	return t, nil
}

// ReadTable parses an axis column followed by dataset columns. Leading
// lines are skipped until the first one whose first two fields are numeric;
// blank lines and lines starting with '#' are ignored throughout.
func ReadTable(r io.Reader, opts ReadOptions) (analysis.Table, error) {
	t := analysis.Table{Unit: opts.Unit}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	started := false
	lineNo := 0
	for sc.Scan() {
		lineNo++

		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := split(line, opts.Comma)
		row, ok := parseRow(fields)

		if !started {
			if len(fields) < 2 || !ok {
				continue
			}

			started = true
			t.Columns = make([][]float64, len(row)-1)
		}

		if !ok {
			return analysis.Table{}, fmt.Errorf("%w: line %d: %q", ErrBadRow, lineNo, line)
		}

		if len(row) != len(t.Columns)+1 {
			return analysis.Table{}, fmt.Errorf("%w: line %d has %d fields, want %d",
				ErrBadRow, lineNo, len(row), len(t.Columns)+1)
		}

		t.Axis = append(t.Axis, row[0])
		for j, v := range row[1:] {
			t.Columns[j] = append(t.Columns[j], v)
		}
	}

	if err := sc.Err(); err != nil {
		return analysis.Table{}, err
	}

	if !started {
		return analysis.Table{}, ErrNoData
	}

	if len(t.Columns) == 0 {
		return analysis.Table{}, ErrFewFields
	}

	return t, nil
}

func split(line string, comma bool) []string {
	if !comma {
		return strings.Fields(line)
	}

	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	// Trailing separators are common in spreadsheet exports.
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	return parts
}

func parseRow(fields []string) ([]float64, bool) {
	row := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}

		row[i] = v
	}

	return row, true
}
