package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tigerroll/surfin-energy/internal/domain/model"
	"github.com/tigerroll/surfin-energy/internal/timenorm"
)

const (
	summarySheet   = "summary"
	maxSheetLength = 31
)

// SheetName turns a plant id into a valid worksheet name. Distinct ids may
// map to the same name; WriteXLSX makes them unique.
func SheetName(id string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, id)
	if name == "" {
		name = "_"
	}
	return truncateRunes(name, maxSheetLength)
}

func truncateRunes(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}

// sheetNames hands out worksheet names that are unique under Excel's
// case-insensitive comparison.
type sheetNames map[string]struct{}

func (s sheetNames) claim(id string) string {
	base := SheetName(id)
	name := base
	for n := 2; ; n++ {
		key := strings.ToLower(name)
		if _, taken := s[key]; !taken {
			s[key] = struct{}{}
			return name
		}
		suffix := fmt.Sprintf("_%d", n)
		name = truncateRunes(base, maxSheetLength-len(suffix)) + suffix
	}
}

// WriteXLSX renders a workbook with the boundary summary on the first sheet
// and every plant's rows on a sheet of its own.
func WriteXLSX(w io.Writer, rows []model.SplitRow, bounds []model.Boundaries) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	names := sheetNames{}
	names.claim(summarySheet)
	summary := [][]interface{}{{"ID", "rows", "#train", "#valid", "#test", "train_boundary", "valid_boundary"}}
	for _, b := range bounds {
		summary = append(summary, []interface{}{b.ID, b.Len, b.TrainLen(), b.ValidLen(), b.TestLen(), b.Train, b.Valid})
	}
	for i, rec := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &rec); err != nil {
			return err
		}
	}

	header := make([]interface{}, len(FinalHeader))
	for i, h := range FinalHeader {
		header[i] = h
	}

	var (
		sw      *excelize.StreamWriter
		current string
		line    int
	)
	flush := func() error {
		if sw == nil {
			return nil
		}
		return sw.Flush()
	}
	for _, r := range rows {
		if r.ID != current || sw == nil {
			if err := flush(); err != nil {
				return err
			}
			sheet := names.claim(r.ID)
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
			}
			var err error
			if sw, err = f.NewStreamWriter(sheet); err != nil {
				return err
			}
			if err := sw.SetRow("A1", header); err != nil {
				return err
			}
			current, line = r.ID, 1
		}
		line++
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		values := []interface{}{r.ID, timenorm.Format(r.Date), r.Month, r.WeekOfYear, r.DayOfMonth}
		for _, v := range r.Weather.Values() {
			values = append(values, cellValue(v))
		}
		values = append(values, cellValue(r.Energy), r.Region, r.DaysFromStart)
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	if err := flush(); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

func cellValue(f model.Float) interface{} {
	if !f.Valid {
		return nil
	}
	return f.Value
}
