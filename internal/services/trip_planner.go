package services

import (
	"context"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/ports"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	metersPerMile = 1609.344
	// Anything shorter than a second is rounding residue, not driving.
	minChunkHours = 1.0 / 3600
	maxPlanSteps  = 10000
)

// TripRequest is a dispatcher's trip with the driver's current counters.
type TripRequest struct {
	CurrentLocation string
	PickupLocation  string
	DropoffLocation string
	Counters        domain.HOSCounters
	DepartAt        time.Time
}

// TripPlanner schedules a trip so that every driving period is legal.
//
// Leg distances come from the DistanceProvider; the schedule itself is
// computed here: driving is cut into chunks no longer than the evaluator
// allows, with a 30-minute break, a 10-hour rest or a 34-hour restart inserted
// whenever a limit is reached. Pickup and dropoff each take an hour on duty and
// the truck fuels every FuelEveryMiles.
type TripPlanner struct {
	Provider       ports.DistanceProvider
	Rules          domain.RuleSet
	PickupHours    float64
	DropoffHours   float64
	FuelEveryMiles float64
	FuelHours      float64
}

func NewTripPlanner(provider ports.DistanceProvider, rules domain.RuleSet) *TripPlanner {
	return &TripPlanner{
		Provider:       provider,
		Rules:          rules,
		PickupHours:    1,
		DropoffHours:   1,
		FuelEveryMiles: 1000,
		FuelHours:      0.5,
	}
}

// tripState is the running schedule while planning.
type tripState struct {
	rules      domain.RuleSet
	at         time.Time
	mile       float64
	counters   domain.HOSCounters
	windowOpen bool
	entries    []domain.DutyStatusEntry
	stops      []domain.TripStop
}

func (p *TripPlanner) Plan(ctx context.Context, req TripRequest) (*domain.TripPlan, error) {
	if p.Provider == nil {
		return nil, errors.New("plan trip: distance provider is nil")
	}

	points := []struct{ field, value string }{
		{"current_location", req.CurrentLocation},
		{"pickup_location", req.PickupLocation},
		{"dropoff_location", req.DropoffLocation},
	}
	for _, pt := range points {
		if strings.TrimSpace(pt.value) == "" {
			return nil, &domain.ValidationError{Field: pt.field, Reason: "must not be empty"}
		}
	}

	initial, err := Evaluate(EvaluateInput{Counters: req.Counters, At: req.DepartAt}, p.Rules)
	if err != nil {
		return nil, err
	}

	legs := make([]domain.TripLeg, 0, 2)
	for _, pair := range [][2]string{
		{req.CurrentLocation, req.PickupLocation},
		{req.PickupLocation, req.DropoffLocation},
	} {
		leg, err := p.leg(ctx, pair[0], pair[1])
		if err != nil {
			return nil, fmt.Errorf("plan trip: %w", err)
		}
		legs = append(legs, leg)
	}

	st := &tripState{
		rules:      p.Rules,
		at:         req.DepartAt,
		counters:   req.Counters,
		windowOpen: req.Counters.DailyDutyHours > 0,
	}

	nextFuel := p.FuelEveryMiles
	if err := p.drive(st, legs[0], &nextFuel); err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	st.stop(domain.StopPickup, req.PickupLocation, domain.OnDutyNotDriving, p.PickupHours, "Pickup")

	if err := p.drive(st, legs[1], &nextFuel); err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	st.stop(domain.StopDropoff, req.DropoffLocation, domain.OnDutyNotDriving, p.DropoffHours, "Dropoff")

	plan := &domain.TripPlan{
		Legs:     legs,
		Stops:    st.stops,
		Entries:  st.entries,
		DepartAt: req.DepartAt,
		ArriveAt: st.at,
		Initial:  initial,
	}
	for _, l := range legs {
		plan.TotalMiles += l.Miles
	}
	for _, e := range st.entries {
		if e.Status == domain.Driving {
			plan.TotalDriveHours += e.Duration(st.at).Hours()
		}
	}

	return plan, nil
}

func (p *TripPlanner) leg(ctx context.Context, from, to string) (domain.TripLeg, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == to {
		return domain.TripLeg{From: from, To: to}, nil
	}

	r, err := p.Provider.GetDistance(ctx, from, to)
	if err != nil {
		return domain.TripLeg{}, fmt.Errorf("get distance %q -> %q: %w", from, to, err)
	}
	if r.DistanceMeters < 0 || r.DurationSeconds < 0 {
		return domain.TripLeg{}, fmt.Errorf("negative distance result %q -> %q", from, to)
	}

	return domain.TripLeg{
		From:       from,
		To:         to,
		Miles:      float64(r.DistanceMeters) / metersPerMile,
		DriveHours: float64(r.DurationSeconds) / 3600,
	}, nil
}

// drive schedules one leg, inserting whatever rest the rules demand.
func (p *TripPlanner) drive(st *tripState, leg domain.TripLeg, nextFuel *float64) error {
	if leg.DriveHours <= 0 {
		st.mile += leg.Miles
		return nil
	}

	mph := leg.Miles / leg.DriveHours
	remaining := leg.DriveHours

	for step := 0; remaining >= minChunkHours; step++ {
		if step > maxPlanSteps {
			return fmt.Errorf("leg %q -> %q did not converge", leg.From, leg.To)
		}

		res := evaluate(EvaluateInput{Counters: st.counters, At: st.at}, st.rules)
		enRoute := fmt.Sprintf("en route to %s", leg.To)
		fuelDue := mph > 0 && p.FuelEveryMiles > 0

		switch {
		case fuelDue && (*nextFuel-st.mile)/mph < minChunkHours:
			*nextFuel += p.FuelEveryMiles
			st.stop(domain.StopFuel, enRoute, domain.OnDutyNotDriving, p.FuelHours, "Fuel")
			continue
		case res.RemainingCycleHours < minChunkHours:
			st.stop(domain.StopCycleRestart, enRoute, domain.OffDuty, st.rules.Restart.Hours(), "34-hour restart")
			continue
		case res.AvailableDriveHours < minChunkHours:
			st.stop(domain.StopRest, enRoute, domain.SleeperBerth, st.rules.DailyRest.Hours(), "10-hour rest")
			continue
		case res.DriveHoursUntilBreak < minChunkHours:
			st.stop(domain.StopMandatoryBreak, enRoute, domain.OffDuty, st.rules.MinBreak.Hours(), "30-minute break")
			continue
		}

		chunk := min(remaining, res.AvailableDriveHours, res.DriveHoursUntilBreak)
		if fuelDue {
			chunk = min(chunk, (*nextFuel-st.mile)/mph)
		}

		driven := st.add(domain.Driving, chunk, enRoute, "Driving")
		remaining -= driven
		st.mile += driven * mph
	}

	return nil
}

// stop records a stop and the duty status spent there.
func (st *tripState) stop(kind domain.StopType, location string, status domain.DutyStatus, hours float64, remarks string) {
	arrive := st.at
	st.add(status, hours, location, remarks)
	st.stops = append(st.stops, domain.TripStop{
		Type:       kind,
		Location:   location,
		MileMarker: st.mile,
		ArriveAt:   arrive,
		DepartAt:   st.at,
	})
}

// add appends an entry and advances the counters the same way Replay would
// derive them. Durations are truncated to whole seconds; the hours actually
// added are returned.
func (st *tripState) add(status domain.DutyStatus, hours float64, location, remarks string) float64 {
	d := time.Duration(math.Floor(hours*3600+1e-3)) * time.Second
	if d <= 0 {
		return 0
	}
	h := d.Hours()

	end := st.at.Add(d)
	st.entries = append(st.entries, domain.DutyStatusEntry{
		Status:   status,
		Start:    st.at,
		End:      &end,
		Location: location,
		Odometer: st.mile,
		Remarks:  remarks,
	})
	st.at = end

	c := &st.counters
	switch {
	case status.IsOnDuty():
		st.windowOpen = true
		c.CycleHoursUsed += h
		c.DailyDutyHours += h
		if status == domain.Driving {
			c.DailyDriveHours += h
			c.ContinuousDriveHours += h
		} else if d >= st.rules.MinBreak {
			c.ContinuousDriveHours = 0
		}
	case d >= st.rules.Restart:
		*c = domain.HOSCounters{}
		st.windowOpen = false
	case d >= st.rules.DailyRest:
		c.DailyDriveHours, c.DailyDutyHours, c.ContinuousDriveHours = 0, 0, 0
		st.windowOpen = false
	default:
		if st.windowOpen {
			c.DailyDutyHours += h
		}
		if d >= st.rules.MinBreak {
			c.ContinuousDriveHours = 0
		}
	}

	return h
}
