package services

import (
	"eld-hos-service/internal/domain"
	"time"
)

// BuildDailyLog assembles the record-of-duty-status sheet for the calendar day
// starting at day (midnight in the driver's home terminal zone).
//
// entries must cover the replay lookback before the day so cycle hours and
// violations at the day's end are correct. Only the elapsed part of the day
// (up to now) is totalled.
func BuildDailyLog(
	driverID int,
	entries []domain.DutyStatusEntry,
	day time.Time,
	now time.Time,
	rules domain.RuleSet,
) (*domain.DailyLog, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	until := dayEnd
	if now.Before(until) {
		until = now
	}

	sheet := &domain.DailyLog{
		DriverID: driverID,
		Date:     dayStart,
		Totals:   make(map[domain.DutyStatus]float64, len(domain.AllDutyStatuses)),
	}
	for _, s := range domain.AllDutyStatuses {
		sheet.Totals[s] = 0
	}

	if !until.After(dayStart) {
		sheet.IsCompliant = true
		return sheet, nil
	}

	if err := checkHistory(entries, now); err != nil {
		return nil, err
	}

	first, last := -1, -1
	for i, e := range entries {
		end := e.EndAt(now)
		if end.After(until) {
			end = until
		}
		if !end.After(dayStart) || !e.Start.Before(until) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i

		start := e.Start
		if start.Before(dayStart) {
			start = dayStart
		}

		clipped := e
		clipped.Start = start
		// The active status stays open only when the sheet runs up to now.
		if e.End != nil || !until.Equal(now) {
			clippedEnd := end
			clipped.End = &clippedEnd
		}
		sheet.Entries = append(sheet.Entries, clipped)
		sheet.Totals[e.Status] += end.Sub(start).Hours()
	}

	if first >= 0 {
		sheet.StartOdometer = entries[first].Odometer
		sheet.EndOdometer = entries[last].Odometer
		// Readings are taken at status changes; the next change closes the day.
		if last+1 < len(entries) {
			sheet.EndOdometer = entries[last+1].Odometer
		}
		if sheet.EndOdometer > sheet.StartOdometer {
			sheet.MilesDriven = sheet.EndOdometer - sheet.StartOdometer
		}
	}

	state, err := Replay(entries, until, rules)
	if err != nil {
		return nil, err
	}
	sheet.CycleHoursUsed = state.Counters.CycleHoursUsed

	all, err := DetectViolations(entries, until, rules)
	if err != nil {
		return nil, err
	}
	for _, v := range all {
		if !v.DetectedAt.Before(dayStart) && v.DetectedAt.Before(until) {
			sheet.Violations = append(sheet.Violations, v)
		}
	}
	sheet.IsCompliant = len(sheet.Violations) == 0

	return sheet, nil
}
