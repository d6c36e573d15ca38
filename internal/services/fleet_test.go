package services

import (
	"context"
	"eld-hos-service/internal/adapters/repositories"
	"eld-hos-service/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListDriversFilters(t *testing.T) {
	svc, repo, clock := newTestService(t, "")
	ctx := context.Background()
	repo.PutDriver(domain.Driver{DriverID: 2, Name: "Eli", IsActive: false})
	repo.PutDriver(domain.Driver{DriverID: 3, Name: "Fay", IsActive: true})

	_, err := repo.AppendDutyStatus(ctx, domain.DutyStatusEntry{
		DriverID: 1, Status: domain.OnDutyNotDriving, Start: clock.Now().Add(-time.Hour),
	})
	require.NoError(t, err)

	ids := func(list []DriverSummary) []int {
		out := make([]int, 0, len(list))
		for _, d := range list {
			out = append(out, d.Driver.DriverID)
		}
		return out
	}

	all, err := svc.ListDrivers(ctx, DriverFilter{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(all))
	require.NotNil(t, all[0].Current)
	assert.Nil(t, all[2].Current)

	active, inactive := true, false
	got, err := svc.ListDrivers(ctx, DriverFilter{Active: &active})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, ids(got))

	got, err = svc.ListDrivers(ctx, DriverFilter{Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids(got))

	got, err = svc.ListDrivers(ctx, DriverFilter{Status: domain.OnDutyNotDriving})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(got))

	_, err = svc.ListDrivers(ctx, DriverFilter{Status: "PARKED"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "duty_status", verr.Field)
}

func TestComplianceReport(t *testing.T) {
	svc, repo, clock := newTestService(t, "")
	ctx := context.Background()
	now := clock.Now()
	repo.PutDriver(domain.Driver{DriverID: 2, Name: "Eli", IsActive: true})
	repo.PutDriver(domain.Driver{DriverID: 3, Name: "Gil", IsActive: false})

	entries, _ := history(now.Add(-30*time.Hour), true, off(10*time.Hour), drive(12*time.Hour), off(0))
	appendAll(t, repo, entries)
	_, err := repo.AppendDutyStatus(ctx, domain.DutyStatusEntry{
		DriverID: 2, Status: domain.OffDuty, Start: now.Add(-10 * time.Hour),
	})
	require.NoError(t, err)

	threeDaysAgo := now.UTC().AddDate(0, 0, -3).Format(domain.LogDateLayout)
	_, err = svc.CertifyLogs(ctx, 1, []string{threeDaysAgo}, "")
	require.NoError(t, err)
	_, err = svc.CertifyLogs(ctx, 2, nil, "")
	require.NoError(t, err)

	rep, err := svc.ComplianceReport(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, 7, rep.Days)
	assert.True(t, rep.To.Equal(now))
	assert.Equal(t, 2, rep.ActiveDrivers)
	assert.Equal(t, 1, rep.ViolationCounts[domain.DailyDriveLimitExceeded])
	assert.Equal(t, 1, rep.ViolationCounts[domain.MissingRequiredBreak])
	assert.Equal(t, 0, rep.ViolationCounts[domain.CycleLimitExceeded])
	assert.Equal(t, 1, rep.Compliant[domain.DailyDriveLimitExceeded])
	assert.Equal(t, 2, rep.Compliant[domain.DailyDutyWindowExceeded])
	assert.Equal(t, 2, rep.Compliant[domain.CycleLimitExceeded])
	assert.InDelta(t, 50.0, rep.OverallComplianceRate, 1e-9)

	assert.Equal(t, 1, rep.CertifiedToday)
	assert.Equal(t, 2, rep.CertifiedThisWeek)
	assert.Zero(t, rep.NeverCertified)

	require.Len(t, rep.Drivers, 2)
	assert.Equal(t, 1, rep.Drivers[0].DriverID)
	assert.Len(t, rep.Drivers[0].Violations, 2)
	assert.Equal(t, threeDaysAgo, rep.Drivers[0].LastCertified)
	assert.Empty(t, rep.Drivers[1].Violations)
}

func TestComplianceReportSkipsInconsistentHistory(t *testing.T) {
	svc, repo, clock := newTestService(t, "")
	now := clock.Now()
	repo.Load(&repositories.Seed{
		Drivers: []repositories.DriverSeed{
			{DriverID: 1, Name: "Dana"},
			{DriverID: 2, Name: "Eli"},
		},
		DutyEntries: []repositories.DutyEntrySeed{
			{ID: "a", DriverID: 1, Status: "OFF", Start: now.Add(-20 * time.Hour), End: ptr(now.Add(-10 * time.Hour))},
			{ID: "b", DriverID: 1, Status: "D", Start: now.Add(-9 * time.Hour)},
		},
	})

	rep, err := svc.ComplianceReport(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 1, rep.InconsistentHistories)
	require.Len(t, rep.Drivers, 2)
	assert.True(t, rep.Drivers[0].Inconsistent)
	assert.False(t, rep.Drivers[1].Inconsistent)
	assert.Equal(t, 1, rep.Compliant[domain.CycleLimitExceeded])
	assert.InDelta(t, 50.0, rep.OverallComplianceRate, 1e-9)
	assert.Equal(t, 2, rep.NeverCertified)

	_, err = svc.ComplianceReport(context.Background(), 0)
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestComplianceReportEmptyFleet(t *testing.T) {
	svc, repo, _ := newTestService(t, "")
	repo.Load(&repositories.Seed{})

	rep, err := svc.ComplianceReport(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, rep.ActiveDrivers)
	assert.InDelta(t, 100.0, rep.OverallComplianceRate, 1e-9)
}

func ptr(t time.Time) *time.Time { return &t }
