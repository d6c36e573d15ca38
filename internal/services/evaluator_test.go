package services

import (
	"eld-hos-service/internal/domain"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evalAt = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func hours(v float64) *float64 { return &v }

func mustEvaluate(t *testing.T, c domain.HOSCounters, proposed *float64) domain.ComplianceResult {
	t.Helper()
	res, err := Evaluate(EvaluateInput{Counters: c, ProposedDriveHours: proposed, At: evalAt}, domain.DefaultRules())
	require.NoError(t, err)
	return res
}

func TestEvaluateFreshDriver(t *testing.T) {
	res := mustEvaluate(t, domain.HOSCounters{}, nil)

	assert.True(t, res.CanDrive)
	assert.Empty(t, res.Violations)
	assert.Equal(t, 11.0, res.AvailableDriveHours)
	assert.Equal(t, 14.0, res.AvailableDutyHours)
	assert.Equal(t, 70.0, res.RemainingCycleHours)
	assert.Equal(t, 8.0, res.DriveHoursUntilBreak)
	assert.False(t, res.NeedsRestart)
	assert.Equal(t, "Driver can legally drive", res.Reason)
}

func TestEvaluateAllLimitsReached(t *testing.T) {
	res := mustEvaluate(t, domain.HOSCounters{CycleHoursUsed: 70, DailyDriveHours: 11, DailyDutyHours: 14}, nil)

	assert.False(t, res.CanDrive)
	assert.True(t, res.Has(domain.DailyDriveLimitExceeded))
	assert.True(t, res.Has(domain.DailyDutyWindowExceeded))
	assert.True(t, res.Has(domain.CycleLimitExceeded))
	assert.False(t, res.Has(domain.MissingRequiredBreak))
	assert.True(t, res.NeedsRestart)
	assert.Zero(t, res.AvailableDriveHours)
	assert.Zero(t, res.RemainingCycleHours)
	assert.Contains(t, res.Reason, "34-hour restart required")

	for _, v := range res.Violations {
		assert.Equal(t, evalAt, v.DetectedAt)
		assert.Equal(t, v.Kind.Severity(), v.Severity)
	}
}

func TestEvaluateSeverities(t *testing.T) {
	res := mustEvaluate(t, domain.HOSCounters{CycleHoursUsed: 70, DailyDriveHours: 11, DailyDutyHours: 14, ContinuousDriveHours: 8}, nil)

	got := map[domain.ViolationKind]domain.Severity{}
	for _, v := range res.Violations {
		got[v.Kind] = v.Severity
	}
	assert.Equal(t, map[domain.ViolationKind]domain.Severity{
		domain.DailyDriveLimitExceeded: domain.SeverityHigh,
		domain.DailyDutyWindowExceeded: domain.SeverityHigh,
		domain.CycleLimitExceeded:      domain.SeverityCritical,
		domain.MissingRequiredBreak:    domain.SeverityMedium,
	}, got)
}

func TestEvaluateProposalBoundaryIsInclusive(t *testing.T) {
	c := domain.HOSCounters{CycleHoursUsed: 30, DailyDriveHours: 9, DailyDutyHours: 10}

	res := mustEvaluate(t, c, hours(2))
	assert.True(t, res.CanDrive)
	assert.Zero(t, res.AvailableDriveHours)

	res = mustEvaluate(t, c, hours(2.000001))
	assert.False(t, res.CanDrive)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, domain.DailyDriveLimitExceeded, res.Violations[0].Kind)
}

func TestEvaluateAvailabilityAfterProposal(t *testing.T) {
	res := mustEvaluate(t, domain.HOSCounters{CycleHoursUsed: 65, DailyDriveHours: 9, DailyDutyHours: 12}, hours(2))

	assert.True(t, res.CanDrive)
	assert.Zero(t, res.AvailableDriveHours)
	assert.Zero(t, res.AvailableDutyHours)
	assert.Equal(t, 3.0, res.RemainingCycleHours)
}

func TestEvaluateCycleIsBinding(t *testing.T) {
	res := mustEvaluate(t, domain.HOSCounters{CycleHoursUsed: 68, DailyDriveHours: 2, DailyDutyHours: 3}, nil)

	assert.True(t, res.CanDrive)
	assert.Equal(t, 2.0, res.AvailableDriveHours)
	assert.Equal(t, 2.0, res.RemainingCycleHours)
}

func TestEvaluateMissingBreakOnly(t *testing.T) {
	res := mustEvaluate(t, domain.HOSCounters{CycleHoursUsed: 20, DailyDriveHours: 8, DailyDutyHours: 9, ContinuousDriveHours: 8}, nil)

	assert.False(t, res.CanDrive)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, domain.MissingRequiredBreak, res.Violations[0].Kind)
	assert.False(t, res.NeedsRestart)
	assert.Equal(t, 3.0, res.AvailableDriveHours, "a missing break does not consume drive time")
	assert.Zero(t, res.DriveHoursUntilBreak)
}

func TestEvaluateSixtyHourCycle(t *testing.T) {
	rules, err := domain.RulesFor(domain.Cycle60Hour7Day)
	require.NoError(t, err)

	res, err := Evaluate(EvaluateInput{Counters: domain.HOSCounters{CycleHoursUsed: 60, DailyDriveHours: 1, DailyDutyHours: 1}}, rules)
	require.NoError(t, err)
	assert.False(t, res.CanDrive)
	assert.True(t, res.Has(domain.CycleLimitExceeded))
	assert.True(t, res.NeedsRestart)

	_, err = Evaluate(EvaluateInput{Counters: domain.HOSCounters{CycleHoursUsed: 65}}, rules)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cycle_hours_used", verr.Field)
}

func TestEvaluateIsMonotonic(t *testing.T) {
	base := domain.HOSCounters{CycleHoursUsed: 40, DailyDriveHours: 5, DailyDutyHours: 7, ContinuousDriveHours: 3}
	prev := mustEvaluate(t, base, nil)

	for step := 1; step <= 12; step++ {
		c := base
		d := float64(step) * 0.25
		c.CycleHoursUsed += d
		c.DailyDriveHours += d
		c.DailyDutyHours += d
		c.ContinuousDriveHours += d

		cur := mustEvaluate(t, c, nil)
		assert.LessOrEqual(t, cur.AvailableDriveHours, prev.AvailableDriveHours)
		assert.LessOrEqual(t, cur.AvailableDutyHours, prev.AvailableDutyHours)
		assert.LessOrEqual(t, cur.RemainingCycleHours, prev.RemainingCycleHours)
		if !prev.CanDrive {
			assert.False(t, cur.CanDrive, "more hours used cannot restore the right to drive")
		}
		prev = cur
	}
}

func TestEvaluateIsPure(t *testing.T) {
	c := domain.HOSCounters{CycleHoursUsed: 69.5, DailyDriveHours: 10.75, DailyDutyHours: 13.5, ContinuousDriveHours: 7.25}
	a := mustEvaluate(t, c, hours(0.25))
	b := mustEvaluate(t, c, hours(0.25))
	assert.Equal(t, a, b)
}

func TestEvaluateValidation(t *testing.T) {
	tests := []struct {
		name     string
		counters domain.HOSCounters
		proposed *float64
		field    string
	}{
		{"negative cycle", domain.HOSCounters{CycleHoursUsed: -1}, nil, "cycle_hours_used"},
		{"nan drive", domain.HOSCounters{DailyDriveHours: math.NaN()}, nil, "daily_drive_hours"},
		{"inf duty", domain.HOSCounters{DailyDutyHours: math.Inf(1)}, nil, "daily_duty_hours"},
		{"drive above duty", domain.HOSCounters{DailyDriveHours: 5, DailyDutyHours: 4}, nil, "daily_drive_hours"},
		{"continuous above drive", domain.HOSCounters{DailyDriveHours: 2, DailyDutyHours: 4, ContinuousDriveHours: 3}, nil, "continuous_drive_hours"},
		{"cycle above cap", domain.HOSCounters{CycleHoursUsed: 70.5}, nil, "cycle_hours_used"},
		{"drive above cap", domain.HOSCounters{DailyDriveHours: 11.5, DailyDutyHours: 12}, nil, "daily_drive_hours"},
		{"duty above cap", domain.HOSCounters{DailyDutyHours: 14.25}, nil, "daily_duty_hours"},
		{"negative proposal", domain.HOSCounters{}, hours(-0.5), "proposed_drive_hours"},
		{"nan proposal", domain.HOSCounters{}, hours(math.NaN()), "proposed_drive_hours"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(EvaluateInput{Counters: tt.counters, ProposedDriveHours: tt.proposed}, domain.DefaultRules())
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestEvaluateReplayedAcceptsCountersPastCaps(t *testing.T) {
	res, err := EvaluateReplayed(EvaluateInput{
		Counters: domain.HOSCounters{CycleHoursUsed: 72, DailyDriveHours: 12, DailyDutyHours: 15},
	}, domain.DefaultRules())
	require.NoError(t, err)
	assert.False(t, res.CanDrive)
	assert.True(t, res.NeedsRestart)
	assert.Zero(t, res.AvailableDriveHours)
}
