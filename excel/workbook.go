// Package excel maps entity lists to and from single-sheet .xlsx workbooks.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	excelize "github.com/xuri/excelize/v2"
)

// ContentType is the only upload type the API accepts.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TimeLayout is used for every timestamp cell.
const TimeLayout = time.RFC3339

func write(w io.Writer, sheet string, header []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, vals := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}

// row is one data row addressed by header name.
type row struct {
	line  int
	cells []string
	index map[string]int
}

func (r row) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r row) errorf(col, format string, args ...any) error {
	return fmt.Errorf("row %d, %s: %s", r.line, col, fmt.Sprintf(format, args...))
}

func (r row) boolean(col string) (bool, error) {
	v, err := r.optBool(col)
	if err != nil || v == nil {
		return false, err
	}
	return *v, nil
}

func (r row) optBool(col string) (*bool, error) {
	switch strings.ToLower(r.get(col)) {
	case "":
		return nil, nil
	case "true", "1", "yes", "y":
		v := true
		return &v, nil
	case "false", "0", "no", "n":
		v := false
		return &v, nil
	}
	return nil, r.errorf(col, "not a boolean: %q", r.get(col))
}

func (r row) number(col string) (int, error) {
	n, err := strconv.Atoi(r.get(col))
	if err != nil {
		return 0, r.errorf(col, "not a number: %q", r.get(col))
	}
	return n, nil
}

func (r row) timestamp(col string) (*time.Time, error) {
	v := r.get(col)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(TimeLayout, v)
	if err != nil {
		return nil, r.errorf(col, "not an RFC 3339 time: %q", v)
	}
	return &t, nil
}

// read returns the data rows of the first sheet. Every header column must
// be present; their order and any extra columns do not matter.
func read(r io.Reader, header []string) ([]row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range header {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}
	out := make([]row, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		out = append(out, row{line: i + 2, cells: cells, index: index})
	}
	return out, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(TimeLayout)
}
