package domain

import "fmt"

// DutyStatus is the driver's recorded duty status. Exactly one is active at any instant.
// Codes match the ELD wire format used by the dispatch UI.
type DutyStatus string

const (
	OffDuty          DutyStatus = "OFF"
	SleeperBerth     DutyStatus = "SB"
	OnDutyNotDriving DutyStatus = "ON"
	Driving          DutyStatus = "D"
)

// AllDutyStatuses lists statuses in log-sheet row order.
var AllDutyStatuses = []DutyStatus{OffDuty, SleeperBerth, Driving, OnDutyNotDriving}

func ParseDutyStatus(s string) (DutyStatus, error) {
	switch DutyStatus(s) {
	case OffDuty, SleeperBerth, OnDutyNotDriving, Driving:
		return DutyStatus(s), nil
	}
	return "", fmt.Errorf("unknown duty status %q", s)
}

// IsRest reports whether the status counts toward 10-hour and 34-hour qualifying rest.
func (s DutyStatus) IsRest() bool { return s == OffDuty || s == SleeperBerth }

// IsOnDuty reports whether time in this status counts against the cycle.
func (s DutyStatus) IsOnDuty() bool { return s == OnDutyNotDriving || s == Driving }

func (s DutyStatus) Label() string {
	switch s {
	case OffDuty:
		return "Off Duty"
	case SleeperBerth:
		return "Sleeper Berth"
	case OnDutyNotDriving:
		return "On Duty (Not Driving)"
	case Driving:
		return "Driving"
	}
	return string(s)
}
