package domain

import "time"

// DailyLog is the per-day ELD record sheet for one driver.
// Totals cover the part of the day that has elapsed; Entries are clipped to the day.
type DailyLog struct {
	DriverID       int
	Date           time.Time
	Entries        []DutyStatusEntry
	Totals         map[DutyStatus]float64
	StartOdometer  float64
	EndOdometer    float64
	MilesDriven    float64
	CycleHoursUsed float64
	Violations     []Violation
	IsCompliant    bool
	// Certification is nil until the driver certifies the day.
	Certification *LogCertification
}

// TotalHours sums all status totals.
func (l DailyLog) TotalHours() float64 {
	var sum float64
	for _, v := range l.Totals {
		sum += v
	}
	return sum
}
