package services

import (
	"eld-hos-service/internal/domain"
	"slices"
	"time"
)

// DetectViolations replays a duty history and reports every rule broken by a
// driving period, stamped with the instant the limit was crossed.
//
// Each driving entry is evaluated as a proposed drive from the counters
// replayed at its start, so a single long drive can break several rules at
// different instants.
//
// A breach is reported once. Later driving in the same breach (the counter is
// still at or over its limit and the window that holds it has not changed)
// adds no new row.
func DetectViolations(entries []domain.DutyStatusEntry, now time.Time, rules domain.RuleSet) ([]domain.Violation, error) {
	if err := checkHistory(entries, now); err != nil {
		return nil, err
	}

	// open maps a kind to the window anchor of its ongoing breach.
	open := make(map[domain.ViolationKind]time.Time)

	var out []domain.Violation
	for _, e := range entries {
		if e.Status != domain.Driving || !e.Start.Before(now) {
			continue
		}

		state, err := Replay(entries, e.Start, rules)
		if err != nil {
			return nil, err
		}

		for k := range open {
			if headroom(k, state.Counters, rules) > 0 {
				delete(open, k)
			}
		}

		drove := e.Duration(now)
		if e.EndAt(now).After(now) {
			drove = now.Sub(e.Start)
		}
		hours := drove.Hours()

		res, err := EvaluateReplayed(EvaluateInput{
			Counters:           state.Counters,
			ProposedDriveHours: &hours,
			At:                 e.Start,
		}, rules)
		if err != nil {
			return nil, err
		}

		for _, v := range res.Violations {
			a := anchor(v.Kind, state, e.Start)
			if prev, ok := open[v.Kind]; ok && prev.Equal(a) {
				continue
			}
			open[v.Kind] = a
			v.DetectedAt = e.Start.Add(headroom(v.Kind, state.Counters, rules))
			out = append(out, v)
		}
	}

	slices.SortStableFunc(out, func(a, b domain.Violation) int {
		return a.DetectedAt.Compare(b.DetectedAt)
	})

	return out, nil
}

// anchor identifies the window a breach of kind k belongs to. The cycle is
// bounded by restarts, the other limits by the duty window, which opens at
// start when the drive follows a daily rest.
func anchor(k domain.ViolationKind, state ReplayResult, start time.Time) time.Time {
	if k == domain.CycleLimitExceeded {
		return state.LastRestartEndedAt
	}
	if state.WindowOpenedAt.IsZero() {
		return start
	}
	return state.WindowOpenedAt
}

// headroom is how much driving was still legal under the rule of kind k.
func headroom(k domain.ViolationKind, c domain.HOSCounters, rules domain.RuleSet) time.Duration {
	var left float64
	switch k {
	case domain.DailyDriveLimitExceeded:
		left = rules.DailyDriveLimit.Hours() - c.DailyDriveHours
	case domain.DailyDutyWindowExceeded:
		left = rules.DutyWindow.Hours() - c.DailyDutyHours
	case domain.CycleLimitExceeded:
		left = rules.CycleLimit.Hours() - c.CycleHoursUsed
	case domain.MissingRequiredBreak:
		left = rules.BreakAfterDriving.Hours() - c.ContinuousDriveHours
	}
	if left <= 0 {
		return 0
	}
	return time.Duration(left * float64(time.Hour))
}
