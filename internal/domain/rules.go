package domain

import (
	"fmt"
	"time"
)

// RuleSet holds the property-carrying driver limits the evaluator enforces.
type RuleSet struct {
	Name              string
	CycleLimit        time.Duration
	CycleDays         int
	DailyDriveLimit   time.Duration
	DutyWindow        time.Duration
	BreakAfterDriving time.Duration
	MinBreak          time.Duration
	DailyRest         time.Duration
	Restart           time.Duration
}

const (
	Cycle70Hour8Day = "70_8"
	Cycle60Hour7Day = "60_7"
)

// DefaultRules returns the 70-hour/8-day rule set.
func DefaultRules() RuleSet {
	return RuleSet{
		Name:              Cycle70Hour8Day,
		CycleLimit:        70 * time.Hour,
		CycleDays:         8,
		DailyDriveLimit:   11 * time.Hour,
		DutyWindow:        14 * time.Hour,
		BreakAfterDriving: 8 * time.Hour,
		MinBreak:          30 * time.Minute,
		DailyRest:         10 * time.Hour,
		Restart:           34 * time.Hour,
	}
}

// RulesFor returns the preset for a cycle name ("70_8" or "60_7").
func RulesFor(cycle string) (RuleSet, error) {
	r := DefaultRules()
	switch cycle {
	case "", Cycle70Hour8Day:
		return r, nil
	case Cycle60Hour7Day:
		r.Name = Cycle60Hour7Day
		r.CycleLimit = 60 * time.Hour
		r.CycleDays = 7
		return r, nil
	}
	return RuleSet{}, fmt.Errorf("unknown hos cycle %q", cycle)
}

// CycleWindow is the lookback covered by the cycle limit.
func (r RuleSet) CycleWindow() time.Duration {
	return time.Duration(r.CycleDays) * 24 * time.Hour
}

// Validate rejects rule sets that would make the evaluator meaningless.
func (r RuleSet) Validate() error {
	checks := []struct {
		name string
		d    time.Duration
	}{
		{"cycle_limit", r.CycleLimit},
		{"daily_drive_limit", r.DailyDriveLimit},
		{"duty_window", r.DutyWindow},
		{"break_after_driving", r.BreakAfterDriving},
		{"min_break", r.MinBreak},
		{"daily_rest", r.DailyRest},
		{"restart", r.Restart},
	}
	for _, c := range checks {
		if c.d <= 0 {
			return fmt.Errorf("rule set %q: %s must be positive", r.Name, c.name)
		}
	}
	if r.CycleDays <= 0 {
		return fmt.Errorf("rule set %q: cycle_days must be positive", r.Name)
	}
	if r.DailyDriveLimit > r.DutyWindow {
		return fmt.Errorf("rule set %q: daily_drive_limit exceeds duty_window", r.Name)
	}
	// A daily rest must also count as a break, or continuous driving could outgrow daily driving.
	if r.MinBreak > r.DailyRest {
		return fmt.Errorf("rule set %q: min_break exceeds daily_rest", r.Name)
	}
	return nil
}
