// Package source decodes the raw observation, forecast and energy files and
// turns them into typed rows.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/tigerroll/surfin-energy/internal/domain/model"
)

// RawTable is a decoded CSV file. Every row has len(Header) cells.
type RawTable struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Index returns the position of column, or -1.
func (t *RawTable) Index(column string) int {
	for i, h := range t.Header {
		if h == column {
			return i
		}
	}
	return -1
}

// require resolves the named columns, reporting every missing one.
func (t *RawTable) require(columns ...string) (map[string]int, error) {
	idx := make(map[string]int, len(columns))
	var missing []error
	for _, c := range columns {
		i := t.Index(c)
		if i < 0 {
			missing = append(missing, fmt.Errorf("%s: missing column %q: %w", t.Name, c, ErrSchemaMismatch))
			continue
		}
		idx[c] = i
	}
	if len(missing) > 0 {
		return nil, joinErrors(missing)
	}
	return idx, nil
}

// decoder wraps r so that it yields UTF-8 without a byte order mark.
func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(encoding) {
	case "", "utf-8", "utf8":
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "euc-kr", "cp949":
		return transform.NewReader(r, korean.EUCKR.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// ReadCSV decodes a whole CSV file. Short rows are padded with empty cells and
// long rows are truncated to the header width.
func ReadCSV(r io.Reader, name, encoding string) (*RawTable, error) {
	dec, err := decoder(r, encoding)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file has no header: %w", name, ErrSchemaMismatch)
		}
		return nil, fmt.Errorf("%s: failed to read header: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	t := &RawTable{Name: name, Header: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" && len(header) > 1 {
			continue
		}
		row := make([]string, len(header))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ParseFloat reads a numeric cell. Empty and NaN cells are null.
func ParseFloat(cell string) (model.Float, error) {
	s := strings.TrimSpace(cell)
	switch strings.ToLower(s) {
	case "", "nan", "na", "null", "n/a":
		return model.Null(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Null(), err
	}
	if math.IsNaN(v) {
		return model.Null(), nil
	}
	return model.Some(v), nil
}

func cellError(t *RawTable, line int, column string, err error) error {
	// line indexes data rows; the message reports the file line.
	return fmt.Errorf("%s line %d column %q: %v: %w", t.Name, line+2, column, err, ErrSchemaMismatch)
}
