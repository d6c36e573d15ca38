package repositories

import (
	"eld-hos-service/internal/domain"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DriverSeed struct {
	DriverID             int    `json:"driver_id"`
	Name                 string `json:"name"`
	HomeTerminalTimezone string `json:"home_terminal_timezone"`
	Cycle                string `json:"cycle"`
}

type DutyEntrySeed struct {
	ID       string     `json:"id"`
	DriverID int        `json:"driver_id"`
	Status   string     `json:"status"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end"`
	Location string     `json:"location"`
	Odometer float64    `json:"odometer"`
	Remarks  string     `json:"remarks"`
}

// Seed is the JSON document accepted by `hosctl seed` and `hosctl replay`.
type Seed struct {
	Drivers     []DriverSeed    `json:"drivers"`
	DutyEntries []DutyEntrySeed `json:"duty_entries"`
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) (*Seed, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", path, err)
	}

	var s Seed
	if err := json.Unmarshal(bytes, &s); err != nil {
		return nil, fmt.Errorf("load seed: parse json: %w", err)
	}

	for i, d := range s.Drivers {
		if d.DriverID <= 0 {
			return nil, fmt.Errorf("load seed: invalid driver_id at driver #%d: %d", i+1, d.DriverID)
		}
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("load seed: driver #%d: name cannot be empty", i+1)
		}
		if _, err := domain.RulesFor(d.Cycle); err != nil {
			return nil, fmt.Errorf("load seed: driver #%d: %w", i+1, err)
		}
	}

	for i, e := range s.DutyEntries {
		if _, err := domain.ParseDutyStatus(e.Status); err != nil {
			return nil, fmt.Errorf("load seed: entry #%d: %w", i+1, err)
		}
		if e.Start.IsZero() {
			return nil, fmt.Errorf("load seed: entry #%d: start is required", i+1)
		}
		if strings.TrimSpace(e.ID) == "" {
			s.DutyEntries[i].ID = uuid.NewString()
		}
	}

	return &s, nil
}

func (d DriverSeed) Driver() domain.Driver {
	return domain.Driver{
		DriverID:             d.DriverID,
		Name:                 strings.TrimSpace(d.Name),
		HomeTerminalTimezone: d.HomeTerminalTimezone,
		Cycle:                d.Cycle,
		IsActive:             true,
	}
}

func (e DutyEntrySeed) Entry() domain.DutyStatusEntry {
	return domain.DutyStatusEntry{
		ID:       e.ID,
		DriverID: e.DriverID,
		Status:   domain.DutyStatus(e.Status),
		Start:    e.Start,
		End:      e.End,
		Location: e.Location,
		Odometer: e.Odometer,
		Remarks:  e.Remarks,
	}
}

// Entries returns the seeded entries of one driver (all drivers when driverID is 0).
func (s *Seed) Entries(driverID int) []domain.DutyStatusEntry {
	out := make([]domain.DutyStatusEntry, 0, len(s.DutyEntries))
	for _, e := range s.DutyEntries {
		if driverID == 0 || e.DriverID == driverID {
			out = append(out, e.Entry())
		}
	}
	return out
}
