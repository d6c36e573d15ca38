package services

import (
	"eld-hos-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

type span struct {
	status domain.DutyStatus
	d      time.Duration
}

func off(d time.Duration) span   { return span{domain.OffDuty, d} }
func sb(d time.Duration) span    { return span{domain.SleeperBerth, d} }
func on(d time.Duration) span    { return span{domain.OnDutyNotDriving, d} }
func drive(d time.Duration) span { return span{domain.Driving, d} }

// history lays spans end to end from start. With open set, the last entry has no end.
func history(start time.Time, open bool, spans ...span) ([]domain.DutyStatusEntry, time.Time) {
	entries := make([]domain.DutyStatusEntry, 0, len(spans))
	at := start
	for i, s := range spans {
		end := at.Add(s.d)
		e := domain.DutyStatusEntry{DriverID: 1, Status: s.status, Start: at}
		if !open || i < len(spans)-1 {
			e.End = &end
		}
		entries = append(entries, e)
		at = end
	}
	return entries, at
}

func mustReplay(t *testing.T, entries []domain.DutyStatusEntry, now time.Time) ReplayResult {
	t.Helper()
	res, err := Replay(entries, now, domain.DefaultRules())
	require.NoError(t, err)
	return res
}

func TestReplayShift(t *testing.T) {
	entries, now := history(t0, false,
		off(10*time.Hour),
		drive(5*time.Hour),
		off(30*time.Minute),
		drive(3*time.Hour),
	)

	res := mustReplay(t, entries, now)

	assert.Equal(t, 3.0, res.Counters.ContinuousDriveHours)
	assert.Equal(t, 8.0, res.Counters.DailyDriveHours)
	assert.Equal(t, 8.5, res.Counters.DailyDutyHours)
	assert.Equal(t, 8.0, res.Counters.CycleHoursUsed)
	assert.True(t, res.BreakSatisfied)
	assert.Equal(t, t0.Add(10*time.Hour), res.WindowOpenedAt)
	assert.Equal(t, t0.Add(10*time.Hour), res.LastRestEndedAt)
}

func TestReplayEmptyHistory(t *testing.T) {
	res := mustReplay(t, nil, t0)
	assert.Equal(t, domain.HOSCounters{}, res.Counters)
	assert.True(t, res.BreakSatisfied)
	assert.True(t, res.WindowOpenedAt.IsZero())
}

func TestReplayClipsOpenEntryToNow(t *testing.T) {
	entries, _ := history(t0, true, off(10*time.Hour), drive(0))
	now := t0.Add(12 * time.Hour)

	res := mustReplay(t, entries, now)
	assert.Equal(t, 2.0, res.Counters.ContinuousDriveHours)
	assert.Equal(t, 2.0, res.Counters.DailyDriveHours)
	assert.Equal(t, 2.0, res.Counters.DailyDutyHours)
	assert.True(t, res.BreakSatisfied)

	entries, _ = history(t0, true, drive(0))
	res = mustReplay(t, entries, t0.Add(3*time.Hour))
	assert.Equal(t, 3.0, res.Counters.ContinuousDriveHours)
	assert.False(t, res.BreakSatisfied, "no break anywhere in the history")
}

func TestReplayBreakBoundary(t *testing.T) {
	exact, now := history(t0, false, off(10*time.Hour), drive(4*time.Hour), on(30*time.Minute), drive(2*time.Hour))
	res := mustReplay(t, exact, now)
	assert.Equal(t, 2.0, res.Counters.ContinuousDriveHours, "30 minutes not driving is a qualifying break")

	short, now := history(t0, false, off(10*time.Hour), drive(4*time.Hour), off(29*time.Minute), drive(2*time.Hour))
	res = mustReplay(t, short, now)
	assert.Equal(t, 6.0, res.Counters.ContinuousDriveHours)
}

func TestReplayBreakAcrossMixedStatuses(t *testing.T) {
	entries, now := history(t0, false,
		off(10*time.Hour),
		drive(4*time.Hour),
		on(15*time.Minute),
		off(15*time.Minute),
		drive(time.Hour),
	)
	res := mustReplay(t, entries, now)
	assert.Equal(t, 1.0, res.Counters.ContinuousDriveHours)
}

func TestReplayDailyRestBoundary(t *testing.T) {
	exact, now := history(t0, false, drive(5*time.Hour), off(10*time.Hour), drive(2*time.Hour))
	res := mustReplay(t, exact, now)
	assert.Equal(t, 2.0, res.Counters.DailyDriveHours)
	assert.Equal(t, 2.0, res.Counters.DailyDutyHours)
	assert.Equal(t, 7.0, res.Counters.CycleHoursUsed)

	short, now := history(t0, false, drive(5*time.Hour), off(10*time.Hour-time.Minute), drive(2*time.Hour))
	res = mustReplay(t, short, now)
	assert.Equal(t, 7.0, res.Counters.DailyDriveHours)
	assert.InDelta(t, 5+(10-1.0/60)+2, res.Counters.DailyDutyHours, 1e-9)
}

func TestReplayOffAndSleeperAreAdditive(t *testing.T) {
	entries, now := history(t0, false, drive(5*time.Hour), off(6*time.Hour), sb(4*time.Hour), drive(time.Hour))
	res := mustReplay(t, entries, now)
	assert.Equal(t, 1.0, res.Counters.DailyDriveHours)

	broken, now := history(t0, false, drive(5*time.Hour), off(6*time.Hour), on(time.Hour), sb(4*time.Hour), drive(time.Hour))
	res = mustReplay(t, broken, now)
	assert.Equal(t, 6.0, res.Counters.DailyDriveHours, "on-duty time between rests breaks the run")
}

func TestReplayRestartBoundary(t *testing.T) {
	exact, now := history(t0, false, drive(10*time.Hour), on(10*time.Hour), off(34*time.Hour), drive(2*time.Hour))
	res := mustReplay(t, exact, now)
	assert.Equal(t, 2.0, res.Counters.CycleHoursUsed)
	assert.Equal(t, t0.Add(54*time.Hour), res.LastRestartEndedAt)

	short, now := history(t0, false, drive(10*time.Hour), on(10*time.Hour), off(34*time.Hour-time.Minute), drive(2*time.Hour))
	res = mustReplay(t, short, now)
	assert.Equal(t, 22.0, res.Counters.CycleHoursUsed)
	assert.Equal(t, 2.0, res.Counters.DailyDriveHours, "a non-qualifying restart still counts as daily rest")
	assert.True(t, res.LastRestartEndedAt.IsZero())
}

func TestReplayRestartAfterCycleLimit(t *testing.T) {
	spans := make([]span, 0, 16)
	for range 7 {
		spans = append(spans, on(10*time.Hour), off(14*time.Hour))
	}
	entries, now := history(t0, false, spans...)

	res := mustReplay(t, entries, now)
	assert.Equal(t, 70.0, res.Counters.CycleHoursUsed)

	eval, err := EvaluateReplayed(EvaluateInput{Counters: res.Counters}, domain.DefaultRules())
	require.NoError(t, err)
	assert.True(t, eval.NeedsRestart)
	assert.False(t, eval.CanDrive)

	entries, now = history(t0, false, append(spans, off(20*time.Hour))...)
	res = mustReplay(t, entries, now)
	assert.Zero(t, res.Counters.CycleHoursUsed)

	eval, err = EvaluateReplayed(EvaluateInput{Counters: res.Counters}, domain.DefaultRules())
	require.NoError(t, err)
	assert.False(t, eval.NeedsRestart)
	assert.True(t, eval.CanDrive)
}

func TestReplayCycleWindowSlides(t *testing.T) {
	spans := make([]span, 0, 18)
	for range 9 {
		spans = append(spans, on(4*time.Hour), off(20*time.Hour))
	}
	entries, now := history(t0, false, spans...)

	res := mustReplay(t, entries, now)
	assert.Equal(t, 32.0, res.Counters.CycleHoursUsed, "only the last eight days count")
	assert.Zero(t, res.Counters.DailyDutyHours)
}

func TestReplaySixtyHourWindow(t *testing.T) {
	rules, err := domain.RulesFor(domain.Cycle60Hour7Day)
	require.NoError(t, err)

	spans := make([]span, 0, 18)
	for range 9 {
		spans = append(spans, on(4*time.Hour), off(20*time.Hour))
	}
	entries, now := history(t0, false, spans...)

	res, err := Replay(entries, now, rules)
	require.NoError(t, err)
	assert.Equal(t, 28.0, res.Counters.CycleHoursUsed)
}

func TestReplayIsIdempotent(t *testing.T) {
	entries, _ := history(t0, true, off(10*time.Hour), drive(3*time.Hour), on(time.Hour), drive(0))
	now := t0.Add(16 * time.Hour)

	a := mustReplay(t, entries, now)
	b := mustReplay(t, entries, now)
	assert.Equal(t, a, b)
}

func TestReplayIgnoresFutureEntries(t *testing.T) {
	entries, _ := history(t0, false, off(10*time.Hour), drive(2*time.Hour), off(time.Hour))
	now := t0.Add(11 * time.Hour)

	res := mustReplay(t, entries, now)
	assert.Equal(t, 1.0, res.Counters.DailyDriveHours)
	assert.Equal(t, 1.0, res.Counters.ContinuousDriveHours)
}

func TestReplayInvariantErrors(t *testing.T) {
	at := func(h float64) time.Time { return t0.Add(time.Duration(h * float64(time.Hour))) }
	end := func(h float64) *time.Time { v := at(h); return &v }

	tests := []struct {
		name    string
		entries []domain.DutyStatusEntry
		index   int
	}{
		{
			name: "overlap",
			entries: []domain.DutyStatusEntry{
				{Status: domain.OffDuty, Start: at(0), End: end(10)},
				{Status: domain.Driving, Start: at(9), End: end(12)},
			},
			index: 1,
		},
		{
			name: "gap",
			entries: []domain.DutyStatusEntry{
				{Status: domain.OffDuty, Start: at(0), End: end(10)},
				{Status: domain.Driving, Start: at(11), End: end(12)},
			},
			index: 1,
		},
		{
			name: "out of order",
			entries: []domain.DutyStatusEntry{
				{Status: domain.Driving, Start: at(10), End: end(12)},
				{Status: domain.OffDuty, Start: at(0), End: end(10)},
			},
			index: 1,
		},
		{
			name: "open entry not last",
			entries: []domain.DutyStatusEntry{
				{Status: domain.OffDuty, Start: at(0)},
				{Status: domain.Driving, Start: at(10), End: end(12)},
			},
			index: 0,
		},
		{
			name: "ends before start",
			entries: []domain.DutyStatusEntry{
				{Status: domain.OffDuty, Start: at(5), End: end(4)},
			},
			index: 0,
		},
		{
			name: "unknown status",
			entries: []domain.DutyStatusEntry{
				{Status: "YM", Start: at(0), End: end(1)},
			},
			index: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Replay(tt.entries, at(20), domain.DefaultRules())
			var ierr *domain.InvariantError
			require.ErrorAs(t, err, &ierr)
			assert.Equal(t, tt.index, ierr.Index)
		})
	}
}
