package services

import (
	"eld-hos-service/internal/domain"
	"time"
)

// ReplayResult is the counter projection of a duty history at one instant,
// with the boundaries that produced it.
type ReplayResult struct {
	Counters domain.HOSCounters
	// WindowOpenedAt is when the current 14-hour window opened (zero if closed).
	WindowOpenedAt time.Time
	// LastRestEndedAt is the end of the latest qualifying daily rest (zero if none seen).
	LastRestEndedAt time.Time
	// LastRestartEndedAt is the end of the latest qualifying restart (zero if none seen).
	LastRestartEndedAt time.Time
	// BreakSatisfied is true when the latest driving is preceded by a qualifying break,
	// or there is no driving since one.
	BreakSatisfied bool
}

type segment struct {
	status domain.DutyStatus
	start  time.Time
	end    time.Time
}

// run is a maximal sequence of adjacent segments sharing a predicate value.
type run struct {
	match bool
	start time.Time
	end   time.Time
}

func (r run) duration() time.Duration { return r.end.Sub(r.start) }

// Replay derives HOS counters from a driver's duty history, anchored at now.
//
// Entries must be ordered, contiguous and non-overlapping, with only the last
// one open. Anything else is an *InvariantError: a history that cannot be
// trusted must not produce hours. Entries starting at or after now are ignored
// and the entry spanning now is clipped to it.
func Replay(entries []domain.DutyStatusEntry, now time.Time, rules domain.RuleSet) (ReplayResult, error) {
	if err := checkHistory(entries, now); err != nil {
		return ReplayResult{}, err
	}

	segs := clip(entries, now)

	res := ReplayResult{}
	res.Counters.ContinuousDriveHours, res.BreakSatisfied = continuousDrive(segs, rules)

	restEnd, found := lastRest(segs, rules.DailyRest)
	if found {
		res.LastRestEndedAt = restEnd
	}
	dailyFrom := restEnd
	if !found && len(segs) > 0 {
		dailyFrom = segs[0].start
	}
	drive, opened := driveSince(segs, dailyFrom)
	res.Counters.DailyDriveHours = drive.Hours()
	if !opened.IsZero() {
		res.WindowOpenedAt = opened
		res.Counters.DailyDutyHours = now.Sub(opened).Hours()
	}

	windowStart := now.Add(-rules.CycleWindow())
	cycleFrom := windowStart
	if restartEnd, ok := lastRest(segs, rules.Restart); ok {
		res.LastRestartEndedAt = restartEnd
		if restartEnd.After(cycleFrom) {
			cycleFrom = restartEnd
		}
	}
	res.Counters.CycleHoursUsed = onDutySince(segs, cycleFrom).Hours()

	return res, nil
}

func checkHistory(entries []domain.DutyStatusEntry, now time.Time) error {
	for i, e := range entries {
		if _, err := domain.ParseDutyStatus(string(e.Status)); err != nil {
			return &domain.InvariantError{Index: i, Reason: err.Error()}
		}
		if e.End != nil && e.End.Before(e.Start) {
			return &domain.InvariantError{Index: i, Reason: "entry ends before it starts"}
		}
		if e.End == nil && i != len(entries)-1 {
			return &domain.InvariantError{Index: i, Reason: "open entry is not the latest"}
		}
		if i == 0 {
			continue
		}

		prev := entries[i-1]
		prevEnd := prev.EndAt(now)
		switch {
		case e.Start.Before(prev.Start):
			return &domain.InvariantError{Index: i, Reason: "entries out of chronological order"}
		case e.Start.Before(prevEnd):
			return &domain.InvariantError{Index: i, Reason: "entry overlaps the previous one"}
		case e.Start.After(prevEnd):
			return &domain.InvariantError{Index: i, Reason: "gap after the previous entry"}
		}
	}
	return nil
}

func clip(entries []domain.DutyStatusEntry, now time.Time) []segment {
	segs := make([]segment, 0, len(entries))
	for _, e := range entries {
		if !e.Start.Before(now) {
			break
		}
		end := e.EndAt(now)
		if end.After(now) {
			end = now
		}
		segs = append(segs, segment{status: e.Status, start: e.Start, end: end})
	}
	return segs
}

func runs(segs []segment, pred func(domain.DutyStatus) bool) []run {
	var out []run
	for _, s := range segs {
		m := pred(s.status)
		if n := len(out); n > 0 && out[n-1].match == m {
			out[n-1].end = s.end
			continue
		}
		out = append(out, run{match: m, start: s.start, end: s.end})
	}
	return out
}

func notDriving(s domain.DutyStatus) bool { return s != domain.Driving }

// continuousDrive walks back from now summing driving until a non-driving run
// of at least the minimum break.
func continuousDrive(segs []segment, rules domain.RuleSet) (float64, bool) {
	rs := runs(segs, notDriving)

	var total time.Duration
	for i := len(rs) - 1; i >= 0; i-- {
		r := rs[i]
		if !r.match {
			total += r.duration()
			continue
		}
		if r.duration() >= rules.MinBreak {
			return total.Hours(), true
		}
	}
	return total.Hours(), total == 0
}

// lastRest returns the end of the latest off-duty/sleeper run lasting at least atLeast.
// Adjacent OFF and SB segments count as one run.
func lastRest(segs []segment, atLeast time.Duration) (time.Time, bool) {
	rs := runs(segs, domain.DutyStatus.IsRest)
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].match && rs[i].duration() >= atLeast {
			return rs[i].end, true
		}
	}
	return time.Time{}, false
}

// driveSince sums driving after from and reports the first on-duty instant after it.
func driveSince(segs []segment, from time.Time) (time.Duration, time.Time) {
	var drive time.Duration
	var opened time.Time
	for _, s := range segs {
		if !s.end.After(from) {
			continue
		}
		start := s.start
		if start.Before(from) {
			start = from
		}
		if !s.status.IsOnDuty() {
			continue
		}
		if opened.IsZero() {
			opened = start
		}
		if s.status == domain.Driving {
			drive += s.end.Sub(start)
		}
	}
	return drive, opened
}

// onDutySince sums on-duty and driving time after from.
func onDutySince(segs []segment, from time.Time) time.Duration {
	var total time.Duration
	for _, s := range segs {
		if !s.status.IsOnDuty() || !s.end.After(from) {
			continue
		}
		start := s.start
		if start.Before(from) {
			start = from
		}
		total += s.end.Sub(start)
	}
	return total
}
