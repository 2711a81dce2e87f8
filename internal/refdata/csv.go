package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/briangreenhill/marathoncoach/internal/table"
	"github.com/briangreenhill/marathoncoach/internal/timefmt"
)

// indexColumn is the header of the fitness score column. Matching ignores
// case and surrounding whitespace, so "VDot " is accepted.
const indexColumn = "vdot"

// ParseCSV reads a reference table whose first header naming the fitness
// score holds the row index and whose other columns hold durations. Blank or
// unparseable cells are left out of the row.
func ParseCSV(name string, r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}

	idxCol := -1
	var columns []string
	colAt := make(map[int]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if idxCol < 0 && strings.EqualFold(h, indexColumn) {
			idxCol = i
			continue
		}
		if h == "" {
			continue
		}
		columns = append(columns, h)
		colAt[i] = h
	}
	if idxCol < 0 {
		return nil, fmt.Errorf("%s: %w %q", name, ErrMissingColumn, "VDOT")
	}

	var rows []table.Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: %w", name, line, err)
		}
		if idxCol >= len(rec) || strings.TrimSpace(rec[idxCol]) == "" {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSpace(rec[idxCol]))
		if err != nil {
			return nil, fmt.Errorf("%s: line %d: bad index %q", name, line, rec[idxCol])
		}

		values := make(map[string]int, len(columns))
		for i, cell := range rec {
			col, ok := colAt[i]
			if !ok {
				continue
			}
			if sec, ok := timefmt.ParseDuration(cell); ok {
				values[col] = sec
			}
		}
		rows = append(rows, table.Row{Index: idx, Values: values})
	}

	return table.New(name, columns, rows)
}

// ParseTables parses both CSV documents and validates them together.
func ParseTables(times, paces io.Reader) (Tables, error) {
	tt, err := ParseCSV(TimesTable, times)
	if err != nil {
		return Tables{}, err
	}
	pt, err := ParseCSV(PacesTable, paces)
	if err != nil {
		return Tables{}, err
	}
	return NewTables(tt, pt)
}
