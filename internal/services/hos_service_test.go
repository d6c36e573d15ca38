package services

import (
	"context"
	"eld-hos-service/internal/adapters/repositories"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/ports"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

type fakeClock interface {
	clockz.Clock
	Advance(d time.Duration)
}

func newTestService(t *testing.T, cycle string) (*HOSService, *repositories.MemoryRepository, fakeClock) {
	t.Helper()
	repo := repositories.NewMemoryRepository()
	repo.PutDriver(domain.Driver{DriverID: 1, Name: "Dana", HomeTerminalTimezone: "UTC", Cycle: cycle, IsActive: true})

	clock := clockz.NewFakeClock()
	svc := &HOSService{Drivers: repo, Entries: repo, Certifications: repo, Clock: clock, Rules: domain.DefaultRules()}
	return svc, repo, clock
}

func appendAll(t *testing.T, repo *repositories.MemoryRepository, entries []domain.DutyStatusEntry) {
	t.Helper()
	for _, e := range entries {
		e.End = nil
		_, err := repo.AppendDutyStatus(context.Background(), e)
		require.NoError(t, err)
	}
}

func TestHOSServiceStatus(t *testing.T) {
	svc, repo, clock := newTestService(t, "")
	now := clock.Now()

	entries, _ := history(now.Add(-16*time.Hour), true, off(10*time.Hour), drive(4*time.Hour), on(0))
	appendAll(t, repo, entries)

	st, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, st.Current)
	assert.Equal(t, domain.OnDutyNotDriving, st.Current.Status)
	assert.InDelta(t, 4.0, st.Replay.Counters.DailyDriveHours, 1e-9)
	assert.InDelta(t, 6.0, st.Replay.Counters.DailyDutyHours, 1e-9)
	assert.InDelta(t, 6.0, st.Replay.Counters.CycleHoursUsed, 1e-9)
	assert.Zero(t, st.Replay.Counters.ContinuousDriveHours)
	assert.True(t, st.Compliance.CanDrive)
	assert.InDelta(t, 7.0, st.Compliance.AvailableDriveHours, 1e-9)

	clock.Advance(8 * time.Hour)
	st, err = svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.InDelta(t, 14.0, st.Replay.Counters.DailyDutyHours, 1e-9)
	assert.False(t, st.Compliance.CanDrive)
	assert.True(t, st.Compliance.Has(domain.DailyDutyWindowExceeded))
}

func TestHOSServiceUsesDriverCycle(t *testing.T) {
	svc, _, _ := newTestService(t, domain.Cycle60Hour7Day)

	st, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Cycle60Hour7Day, st.Rules.Name)
	assert.Equal(t, 60.0, st.Compliance.RemainingCycleHours)
	assert.Nil(t, st.Current)
}

func TestHOSServiceUnknownDriver(t *testing.T) {
	svc, _, _ := newTestService(t, "")

	_, err := svc.Status(context.Background(), 42)
	assert.ErrorIs(t, err, ports.ErrDriverNotFound)
}

func TestHOSServiceChangeDutyStatus(t *testing.T) {
	svc, repo, clock := newTestService(t, "")
	ctx := context.Background()

	first, err := svc.ChangeDutyStatus(ctx, ChangeDutyStatusRequest{DriverID: 1, Status: domain.OnDutyNotDriving, Location: " Dallas, TX "})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "Dallas, TX", first.Location)
	assert.Equal(t, clock.Now(), first.Start)

	clock.Advance(time.Hour)
	odo := 1200.0
	second, err := svc.ChangeDutyStatus(ctx, ChangeDutyStatusRequest{DriverID: 1, Status: domain.Driving, Odometer: &odo})
	require.NoError(t, err)
	assert.Equal(t, 1200.0, second.Odometer)

	entries, err := repo.ListDutyEntries(ctx, 1, first.Start, clock.Now())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].End)
	assert.Equal(t, second.Start, *entries[0].End)
}

func TestHOSServiceChangeDutyStatusValidation(t *testing.T) {
	svc, _, clock := newTestService(t, "")
	ctx := context.Background()

	_, err := svc.ChangeDutyStatus(ctx, ChangeDutyStatusRequest{DriverID: 1, Status: domain.Driving})
	require.NoError(t, err)

	future := clock.Now().Add(time.Hour)
	past := clock.Now().Add(-time.Minute)
	lower := -1.0

	tests := []struct {
		name  string
		req   ChangeDutyStatusRequest
		field string
	}{
		{"unknown status", ChangeDutyStatusRequest{DriverID: 1, Status: "X"}, "new_status"},
		{"same status", ChangeDutyStatusRequest{DriverID: 1, Status: domain.Driving}, "new_status"},
		{"future", ChangeDutyStatusRequest{DriverID: 1, Status: domain.OffDuty, At: &future}, "at"},
		{"before current", ChangeDutyStatusRequest{DriverID: 1, Status: domain.OffDuty, At: &past}, "at"},
		{"odometer goes back", ChangeDutyStatusRequest{DriverID: 1, Status: domain.OffDuty, Odometer: &lower}, "odometer_reading"},
	}

	clock.Advance(time.Minute)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ChangeDutyStatus(ctx, tt.req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHOSServiceViolationsAndDailyLog(t *testing.T) {
	svc, repo, clock := newTestService(t, "")
	now := clock.Now()

	entries, _ := history(now.Add(-23*time.Hour), true, off(10*time.Hour), drive(12*time.Hour), off(0))
	appendAll(t, repo, entries)

	got, err := svc.Violations(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.MissingRequiredBreak, got[0].Kind)
	assert.Equal(t, domain.DailyDriveLimitExceeded, got[1].Kind)

	_, err = svc.Violations(context.Background(), 1, 0)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "days", verr.Field)

	sheet, err := svc.DailyLog(context.Background(), 1, now.UTC().Format("2006-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 1, sheet.DriverID)

	_, err = svc.DailyLog(context.Background(), 1, "03/02/2026")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Field)
}

func TestHOSServiceListEntries(t *testing.T) {
	svc, repo, clock := newTestService(t, "")
	now := clock.Now()

	entries, _ := history(now.Add(-12*time.Hour), true, off(10*time.Hour), drive(0))
	appendAll(t, repo, entries)

	got, err := svc.ListEntries(context.Background(), 1, now.Add(-time.Hour), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.Driving, got[0].Status)

	_, err = svc.ListEntries(context.Background(), 1, now, now.Add(-time.Hour))
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
