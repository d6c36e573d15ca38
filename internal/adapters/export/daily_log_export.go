package export

import (
	"bytes"
	"eld-hos-service/internal/domain"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Graph grid geometry in mm, landscape A4.
const (
	gridLeft   = 55.0
	gridTop    = 45.0
	gridWidth  = 192.0
	rowHeight  = 10.0
	totalsLeft = gridLeft + gridWidth + 4
)

type span struct {
	status   domain.DutyStatus
	from, to float64 // hours since midnight
}

// spans places each log entry on the 24-hour axis. The active entry is drawn up to asOf.
func spans(sheet *domain.DailyLog, asOf time.Time) []span {
	dayStart := sheet.Date
	dayEnd := dayStart.AddDate(0, 0, 1)

	out := make([]span, 0, len(sheet.Entries))
	for _, e := range sheet.Entries {
		end := e.EndAt(asOf)
		if end.After(dayEnd) {
			end = dayEnd
		}
		if !end.After(e.Start) {
			continue
		}
		out = append(out, span{
			status: e.Status,
			from:   e.Start.Sub(dayStart).Hours(),
			to:     end.Sub(dayStart).Hours(),
		})
	}
	return out
}

func rowOf(s domain.DutyStatus) int {
	for i, st := range domain.AllDutyStatuses {
		if st == s {
			return i
		}
	}
	return 0
}

func header(sheet *domain.DailyLog, driver *domain.Driver) []string {
	name := fmt.Sprintf("Driver %d", sheet.DriverID)
	if driver != nil && driver.Name != "" {
		name = driver.Name
	}
	return []string{
		fmt.Sprintf("Driver: %s", name),
		fmt.Sprintf("Date: %s (%s)", sheet.Date.Format("2006-01-02"), sheet.Date.Location()),
		fmt.Sprintf("Miles driven: %.1f (odometer %.1f - %.1f)", sheet.MilesDriven, sheet.StartOdometer, sheet.EndOdometer),
		fmt.Sprintf("Cycle hours used at end of day: %.2f", sheet.CycleHoursUsed),
	}
}

// BuildDailyLogPDF renders the record-of-duty-status sheet with the 24-hour graph grid.
func BuildDailyLogPDF(sheet *domain.DailyLog, driver *domain.Driver, asOf time.Time) ([]byte, error) {
	if sheet == nil {
		return nil, errors.New("export pdf: nil daily log")
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Driver's Daily Log")
	pdf.Ln(9)
	pdf.SetFont("Arial", "", 10)
	for _, line := range header(sheet, driver) {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}

	drawGrid(pdf, sheet)
	drawDutyLine(pdf, spans(sheet, asOf))

	pdf.SetXY(10, gridTop+4*rowHeight+8)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Status", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Start", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "End", "1", 0, "C", false, 0, "")
	pdf.CellFormat(60, 6, "Location", "1", 0, "C", false, 0, "")
	pdf.CellFormat(100, 6, "Remarks", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, e := range sheet.Entries {
		end := "active"
		if e.End != nil {
			end = e.End.Format("15:04")
		}
		pdf.CellFormat(30, 6, string(e.Status), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, e.Start.Format("15:04"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, end, "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, e.Location, "1", 0, "L", false, 0, "")
		pdf.CellFormat(100, 6, e.Remarks, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	if sheet.IsCompliant {
		pdf.Cell(0, 6, "No HOS violations recorded for this day.")
		pdf.Ln(6)
	}
	for _, v := range sheet.Violations {
		pdf.SetTextColor(180, 0, 0)
		pdf.Cell(0, 6, fmt.Sprintf("[%s] %s at %s: %s", v.Severity, v.Kind, v.DetectedAt.Format("15:04"), v.Detail))
		pdf.Ln(6)
	}
	pdf.SetTextColor(0, 0, 0)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawGrid(pdf *gofpdf.Fpdf, sheet *domain.DailyLog) {
	hourWidth := gridWidth / 24

	pdf.SetFont("Arial", "", 7)
	for h := 0; h <= 24; h++ {
		label := fmt.Sprintf("%d", h%12)
		switch h {
		case 0, 24:
			label = "M"
		case 12:
			label = "N"
		}
		pdf.Text(gridLeft+float64(h)*hourWidth-1, gridTop-2, label)
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.SetFont("Arial", "", 9)
	for i, s := range domain.AllDutyStatuses {
		y := gridTop + float64(i)*rowHeight
		pdf.Rect(gridLeft, y, gridWidth, rowHeight, "D")
		pdf.Text(10, y+rowHeight/2+1.5, s.Label())
		pdf.Text(totalsLeft, y+rowHeight/2+1.5, fmt.Sprintf("%.2f", sheet.Totals[s]))
	}

	// Hour lines full height, quarter-hour ticks in each row.
	pdf.SetLineWidth(0.1)
	for h := 0; h < 24; h++ {
		x := gridLeft + float64(h)*hourWidth
		pdf.Line(x, gridTop, x, gridTop+4*rowHeight)
		for q := 1; q < 4; q++ {
			qx := x + float64(q)*hourWidth/4
			tick := rowHeight / 4
			if q == 2 {
				tick = rowHeight / 2
			}
			for i := range domain.AllDutyStatuses {
				y := gridTop + float64(i)*rowHeight
				pdf.Line(qx, y, qx, y+tick)
			}
		}
	}
	pdf.Text(totalsLeft, gridTop+4*rowHeight+4, fmt.Sprintf("= %.2f", sheet.TotalHours()))
}

func drawDutyLine(pdf *gofpdf.Fpdf, spans []span) {
	hourWidth := gridWidth / 24
	mid := func(s domain.DutyStatus) float64 {
		return gridTop + float64(rowOf(s))*rowHeight + rowHeight/2
	}

	pdf.SetDrawColor(0, 0, 160)
	pdf.SetLineWidth(0.8)
	for i, sp := range spans {
		y := mid(sp.status)
		x1 := gridLeft + sp.from*hourWidth
		x2 := gridLeft + sp.to*hourWidth
		pdf.Line(x1, y, x2, y)
		if i+1 < len(spans) && spans[i+1].from == sp.to {
			pdf.Line(x2, y, x2, mid(spans[i+1].status))
		}
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
}

// BuildDailyLogXLSX renders the daily log as a workbook with summary, entries and violations sheets.
func BuildDailyLogXLSX(sheet *domain.DailyLog, driver *domain.Driver, asOf time.Time) ([]byte, error) {
	if sheet == nil {
		return nil, errors.New("export xlsx: nil daily log")
	}

	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	entriesSheet := "entries"
	violationsSheet := "violations"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}
	if _, err := f.NewSheet(entriesSheet); err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}
	if _, err := f.NewSheet(violationsSheet); err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}

	_ = f.SetCellValue(summarySheet, "A1", "Driver's Daily Log")
	for i, line := range header(sheet, driver) {
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+3), line)
	}
	row := 8
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Status")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "Hours")
	for _, s := range domain.AllDutyStatuses {
		row++
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), s.Label())
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), sheet.Totals[s])
	}
	row++
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Total")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), sheet.TotalHours())
	row += 2
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Compliant")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), sheet.IsCompliant)

	_ = f.SetCellValue(entriesSheet, "A1", "Status")
	_ = f.SetCellValue(entriesSheet, "B1", "Start")
	_ = f.SetCellValue(entriesSheet, "C1", "End")
	_ = f.SetCellValue(entriesSheet, "D1", "Hours")
	_ = f.SetCellValue(entriesSheet, "E1", "Location")
	_ = f.SetCellValue(entriesSheet, "F1", "Odometer")
	_ = f.SetCellValue(entriesSheet, "G1", "Remarks")
	for i, e := range sheet.Entries {
		r := i + 2
		end := ""
		if e.End != nil {
			end = e.End.Format(time.RFC3339)
		}
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("A%d", r), string(e.Status))
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("B%d", r), e.Start.Format(time.RFC3339))
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("C%d", r), end)
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("D%d", r), e.Duration(asOf).Hours())
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("E%d", r), e.Location)
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("F%d", r), e.Odometer)
		_ = f.SetCellValue(entriesSheet, fmt.Sprintf("G%d", r), e.Remarks)
	}

	_ = f.SetCellValue(violationsSheet, "A1", "Kind")
	_ = f.SetCellValue(violationsSheet, "B1", "Severity")
	_ = f.SetCellValue(violationsSheet, "C1", "Detected At")
	_ = f.SetCellValue(violationsSheet, "D1", "Detail")
	for i, v := range sheet.Violations {
		r := i + 2
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("A%d", r), string(v.Kind))
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("B%d", r), string(v.Severity))
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("C%d", r), v.DetectedAt.Format(time.RFC3339))
		_ = f.SetCellValue(violationsSheet, fmt.Sprintf("D%d", r), v.Detail)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
