package services

import (
	"eld-hos-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectViolationsStampsCrossingInstant(t *testing.T) {
	entries, now := history(t0, false, off(10*time.Hour), drive(12*time.Hour), off(10*time.Hour))

	got, err := DetectViolations(entries, now, domain.DefaultRules())
	require.NoError(t, err)
	require.Len(t, got, 2)

	driveStart := t0.Add(10 * time.Hour)

	assert.Equal(t, domain.MissingRequiredBreak, got[0].Kind)
	assert.Equal(t, driveStart.Add(8*time.Hour), got[0].DetectedAt)
	assert.Equal(t, domain.SeverityMedium, got[0].Severity)

	assert.Equal(t, domain.DailyDriveLimitExceeded, got[1].Kind)
	assert.Equal(t, driveStart.Add(11*time.Hour), got[1].DetectedAt)
}

func TestDetectViolationsLegalDay(t *testing.T) {
	entries, now := history(t0, false,
		off(34*time.Hour),
		on(time.Hour),
		drive(5*time.Hour),
		off(30*time.Minute),
		drive(5*time.Hour+30*time.Minute),
		on(30*time.Minute),
		off(10*time.Hour),
	)

	got, err := DetectViolations(entries, now, domain.DefaultRules())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectViolationsDutyWindow(t *testing.T) {
	// 12h on duty, then 3h of driving: the 14h window closes two hours in.
	entries, now := history(t0, false, off(10*time.Hour), on(12*time.Hour), drive(3*time.Hour), off(10*time.Hour))

	got, err := DetectViolations(entries, now, domain.DefaultRules())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.DailyDutyWindowExceeded, got[0].Kind)
	assert.Equal(t, t0.Add(24*time.Hour), got[0].DetectedAt)
}

func TestDetectViolationsOpenDrive(t *testing.T) {
	entries, _ := history(t0, true, off(10*time.Hour), drive(0))

	now := t0.Add(10*time.Hour + 8*time.Hour + 30*time.Minute)
	got, err := DetectViolations(entries, now, domain.DefaultRules())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.MissingRequiredBreak, got[0].Kind)

	now = t0.Add(10*time.Hour + 8*time.Hour)
	got, err = DetectViolations(entries, now, domain.DefaultRules())
	require.NoError(t, err)
	assert.Empty(t, got, "exactly eight hours of driving is legal")
}

func TestDetectViolationsReportsEachBreachOnce(t *testing.T) {
	// A short stop does not end the breach, so the second drive adds nothing.
	entries, now := history(t0, false,
		off(10*time.Hour),
		drive(12*time.Hour),
		on(15*time.Minute),
		drive(time.Hour),
		off(10*time.Hour),
	)

	got, err := DetectViolations(entries, now, domain.DefaultRules())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.MissingRequiredBreak, got[0].Kind)
	assert.Equal(t, domain.DailyDriveLimitExceeded, got[1].Kind)
}

func TestDetectViolationsNewWindowReportsAgain(t *testing.T) {
	entries, now := history(t0, false,
		off(10*time.Hour),
		drive(12*time.Hour),
		off(10*time.Hour),
		drive(12*time.Hour),
		off(10*time.Hour),
	)

	got, err := DetectViolations(entries, now, domain.DefaultRules())
	require.NoError(t, err)
	require.Len(t, got, 4)

	second := t0.Add(32 * time.Hour)
	assert.Equal(t, domain.MissingRequiredBreak, got[2].Kind)
	assert.Equal(t, second.Add(8*time.Hour), got[2].DetectedAt)
	assert.Equal(t, domain.DailyDriveLimitExceeded, got[3].Kind)
	assert.Equal(t, second.Add(11*time.Hour), got[3].DetectedAt)
}

func TestDetectViolationsInvariantError(t *testing.T) {
	end := t0.Add(time.Hour)
	entries := []domain.DutyStatusEntry{
		{Status: domain.Driving, Start: t0, End: &end},
		{Status: domain.OffDuty, Start: t0.Add(2 * time.Hour)},
	}

	_, err := DetectViolations(entries, t0.Add(3*time.Hour), domain.DefaultRules())
	var ierr *domain.InvariantError
	assert.ErrorAs(t, err, &ierr)
}
