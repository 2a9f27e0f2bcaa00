package reporting

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	v1 "github.com/rentops-lab/rentops/internal/api/v1"
)

// WriteWorkbook writes report as an xlsx workbook with Summary, Periods, Units and Platforms sheets.
func WriteWorkbook(w io.Writer, report v1.RevenueReport) error {
	wb := newWorkbookWriter()
	defer wb.close()

	if err := wb.addSheet("Summary", []string{"Metric", "Value"}); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"Start date", report.StartDate},
		{"End date", report.EndDate},
		{"Unit", report.UnitID},
		{"Granularity", report.Granularity},
		{"Total revenue", amount(report.TotalRevenue)},
		{"Occupancy rate (%)", report.OccupancyRate},
		{"Occupied nights", report.OccupiedNights},
		{"Possible nights", report.PossibleNights},
		{"Reservations", report.TotalReservations},
		{"Guests", report.TotalGuests},
	}
	for _, row := range summary {
		if err := wb.writeRow(row); err != nil {
			return err
		}
	}

	if err := wb.addSheet("Periods", []string{"Period", "Start", "End", "Revenue"}); err != nil {
		return err
	}
	for _, p := range report.Periods {
		if err := wb.writeRow([]interface{}{p.Label, p.StartDate, p.EndDate, amount(p.Revenue)}); err != nil {
			return err
		}
	}

	unitHeader := []string{"Unit"}
	for _, p := range report.Periods {
		unitHeader = append(unitHeader, p.Label)
	}
	unitHeader = append(unitHeader, "Peak period")
	if err := wb.addSheet("Units", unitHeader); err != nil {
		return err
	}
	for _, unitID := range sortedKeys(report.PerUnit) {
		row := []interface{}{unitID}
		for _, v := range report.PerUnit[unitID] {
			row = append(row, amount(v))
		}
		row = append(row, amount(report.PeakPerUnit[unitID]))
		if err := wb.writeRow(row); err != nil {
			return err
		}
	}

	if err := wb.addSheet("Platforms", []string{"Platform", "Revenue"}); err != nil {
		return err
	}
	for _, platform := range sortedKeys(report.PerPlatform) {
		if err := wb.writeRow([]interface{}{platform, amount(report.PerPlatform[platform])}); err != nil {
			return err
		}
	}

	return wb.file.Write(w)
}

// amount converts a cents string to a float cell value; unparsable input is written as text.
func amount(s string) interface{} {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	f, _ := d.Float64()
	return f
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type workbookWriter struct {
	file       *excelize.File
	sheet      string
	currentRow int
}

func newWorkbookWriter() *workbookWriter {
	return &workbookWriter{file: excelize.NewFile()}
}

// addSheet starts a sheet and writes its bold header row. The first call renames the
// default sheet.
func (w *workbookWriter) addSheet(name string, header []string) error {
	if w.sheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	w.sheet = name
	w.currentRow = 1

	row := make([]interface{}, len(header))
	for i, col := range header {
		row[i] = col
	}
	if err := w.writeRow(row); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	startCell, _ := excelize.CoordinatesToCellName(1, 1)
	endCell, _ := excelize.CoordinatesToCellName(len(header), 1)
	return w.file.SetCellStyle(name, startCell, endCell, style)
}

func (w *workbookWriter) writeRow(row []interface{}) error {
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.sheet, cell, val); err != nil {
			return err
		}
	}
	w.currentRow++
	return nil
}

func (w *workbookWriter) close() {
	_ = w.file.Close()
}
