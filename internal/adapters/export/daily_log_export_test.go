package export

import (
	"bytes"
	"eld-hos-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleLog() (*domain.DailyLog, time.Time) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(h float64) time.Time { return day.Add(time.Duration(h * float64(time.Hour))) }
	end := func(h float64) *time.Time { t := at(h); return &t }

	sheet := &domain.DailyLog{
		DriverID: 1,
		Date:     day,
		Entries: []domain.DutyStatusEntry{
			{Status: domain.OffDuty, Start: at(0), End: end(6), Location: "Yard"},
			{Status: domain.OnDutyNotDriving, Start: at(6), End: end(7), Location: "Yard", Remarks: "pre-trip"},
			{Status: domain.Driving, Start: at(7), End: end(15), Location: "I-80"},
			{Status: domain.OffDuty, Start: at(15), Location: "Truck stop"},
		},
		Totals: map[domain.DutyStatus]float64{
			domain.OffDuty:          7,
			domain.SleeperBerth:     0,
			domain.OnDutyNotDriving: 1,
			domain.Driving:          8,
		},
		StartOdometer:  1000,
		EndOdometer:    1450,
		MilesDriven:    450,
		CycleHoursUsed: 9,
		Violations: []domain.Violation{{
			Kind:       domain.MissingRequiredBreak,
			DetectedAt: at(15),
			Severity:   domain.SeverityMedium,
			Detail:     "8h driving without a 30 minute break",
		}},
	}
	return sheet, at(16)
}

func TestSpansDrawsActiveEntryToAsOf(t *testing.T) {
	sheet, asOf := sampleLog()
	got := spans(sheet, asOf)
	require.Len(t, got, 4)
	assert.Equal(t, span{domain.Driving, 7, 15}, got[2])
	assert.Equal(t, span{domain.OffDuty, 15, 16}, got[3])
	assert.Equal(t, 2, rowOf(domain.Driving))
}

func TestBuildDailyLogPDF(t *testing.T) {
	sheet, asOf := sampleLog()
	out, err := BuildDailyLogPDF(sheet, &domain.Driver{DriverID: 1, Name: "Ana Ruiz"}, asOf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	_, err = BuildDailyLogPDF(nil, nil, asOf)
	assert.Error(t, err)
}

func TestBuildDailyLogXLSX(t *testing.T) {
	sheet, asOf := sampleLog()
	out, err := BuildDailyLogXLSX(sheet, nil, asOf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"summary", "entries", "violations"}, f.GetSheetList())

	v, err := f.GetCellValue("summary", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Driver: Driver 1", v)

	v, err = f.GetCellValue("entries", "A4")
	require.NoError(t, err)
	assert.Equal(t, "D", v)

	v, err = f.GetCellValue("violations", "A2")
	require.NoError(t, err)
	assert.Equal(t, string(domain.MissingRequiredBreak), v)
}
