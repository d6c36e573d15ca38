package domain

import "time"

// DutyStatusEntry is one interval of a driver's duty-status history.
// End is nil for the currently active status; at most one entry per driver is open.
type DutyStatusEntry struct {
	ID       string
	DriverID int
	Status   DutyStatus
	Start    time.Time
	End      *time.Time
	Location string
	Odometer float64
	Remarks  string
}

// IsOpen reports whether the entry is the currently active status.
func (e DutyStatusEntry) IsOpen() bool { return e.End == nil }

// EndAt returns the entry end, or now when the entry is still open.
func (e DutyStatusEntry) EndAt(now time.Time) time.Time {
	if e.End == nil {
		return now
	}
	return *e.End
}

// Duration returns end - start, measuring open entries up to now.
func (e DutyStatusEntry) Duration(now time.Time) time.Duration {
	return e.EndAt(now).Sub(e.Start)
}
