package repositories

import (
	"context"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/ports"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepository keeps drivers and duty history in process memory.
// It backs the server when no DATABASE_URL is configured and is the test double
// for the HOS services.
type MemoryRepository struct {
	mu      sync.RWMutex
	drivers map[int]domain.Driver
	entries map[int][]domain.DutyStatusEntry
	certs   map[int]map[string]domain.LogCertification
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		drivers: make(map[int]domain.Driver),
		entries: make(map[int][]domain.DutyStatusEntry),
		certs:   make(map[int]map[string]domain.LogCertification),
	}
}

func (r *MemoryRepository) PutDriver(d domain.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[d.DriverID] = d
}

// Load replaces the stored data with a seed.
func (r *MemoryRepository) Load(s *Seed) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.drivers = make(map[int]domain.Driver, len(s.Drivers))
	r.entries = make(map[int][]domain.DutyStatusEntry)
	r.certs = make(map[int]map[string]domain.LogCertification)
	for _, d := range s.Drivers {
		r.drivers[d.DriverID] = d.Driver()
	}
	for _, e := range s.Entries(0) {
		r.entries[e.DriverID] = append(r.entries[e.DriverID], e)
	}
	for id := range r.entries {
		sortEntries(r.entries[id])
	}
}

func (r *MemoryRepository) GetDriver(ctx context.Context, driverID int) (*domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drivers[driverID]
	if !ok {
		return nil, fmt.Errorf("driver_id=%d: %w", driverID, ports.ErrDriverNotFound)
	}
	return &d, nil
}

func (r *MemoryRepository) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Driver, 0, len(r.drivers))
	for _, d := range r.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out, nil
}

func (r *MemoryRepository) ListDutyEntries(
	ctx context.Context,
	driverID int,
	from time.Time,
	to time.Time,
) ([]domain.DutyStatusEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.DutyStatusEntry, 0, 16)
	for _, e := range r.entries[driverID] {
		if e.End != nil && !e.End.After(from) {
			continue
		}
		if e.Start.After(to) {
			continue
		}
		out = append(out, copyEntry(e))
	}
	return out, nil
}

func (r *MemoryRepository) CurrentDutyStatus(ctx context.Context, driverID int) (domain.DutyStatusEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.entries[driverID]
	if n := len(list); n > 0 && list[n-1].IsOpen() {
		return copyEntry(list[n-1]), nil
	}
	return domain.DutyStatusEntry{}, ports.ErrNoOpenEntry
}

func (r *MemoryRepository) AppendDutyStatus(ctx context.Context, entry domain.DutyStatusEntry) (domain.DutyStatusEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drivers[entry.DriverID]; !ok {
		return domain.DutyStatusEntry{}, fmt.Errorf("append duty status driver_id=%d: %w", entry.DriverID, ports.ErrDriverNotFound)
	}

	list := r.entries[entry.DriverID]
	if n := len(list); n > 0 {
		last := &list[n-1]
		if !entry.Start.After(last.Start) {
			return domain.DutyStatusEntry{}, fmt.Errorf("append duty status driver_id=%d: start %s is not after the latest entry",
				entry.DriverID, entry.Start.Format(time.RFC3339))
		}
		if last.IsOpen() {
			end := entry.Start
			last.End = &end
		}
	}

	r.entries[entry.DriverID] = append(list, copyEntry(entry))
	return copyEntry(entry), nil
}

func (r *MemoryRepository) CertifyLog(ctx context.Context, c domain.LogCertification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.drivers[c.DriverID]; !ok {
		return fmt.Errorf("certify log driver_id=%d: %w", c.DriverID, ports.ErrDriverNotFound)
	}
	if r.certs[c.DriverID] == nil {
		r.certs[c.DriverID] = make(map[string]domain.LogCertification)
	}
	r.certs[c.DriverID][c.LogDate] = c
	return nil
}

func (r *MemoryRepository) UncertifyLog(ctx context.Context, driverID int, logDate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.certs[driverID][logDate]; !ok {
		return fmt.Errorf("uncertify log driver_id=%d date=%s: %w", driverID, logDate, ports.ErrLogNotCertified)
	}
	delete(r.certs[driverID], logDate)
	return nil
}

func (r *MemoryRepository) ListCertifications(ctx context.Context, driverID int) ([]domain.LogCertification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.LogCertification, 0, len(r.certs[driverID]))
	for _, c := range r.certs[driverID] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogDate < out[j].LogDate })
	return out, nil
}

func copyEntry(e domain.DutyStatusEntry) domain.DutyStatusEntry {
	if e.End != nil {
		end := *e.End
		e.End = &end
	}
	return e
}

func sortEntries(list []domain.DutyStatusEntry) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].Start.Before(list[j].Start) })
}
