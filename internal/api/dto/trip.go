package dto

import (
	"eld-hos-service/internal/domain"
	"time"
)

type TripCheckRequest struct {
	CurrentLocation        string     `json:"current_location"`
	PickupLocation         string     `json:"pickup_location"`
	DropoffLocation        string     `json:"dropoff_location"`
	CurrentCycleHours      *float64   `json:"current_cycle_hours"`
	CurrentDailyDriveHours float64    `json:"current_daily_drive_hours"`
	CurrentDailyDutyHours  float64    `json:"current_daily_duty_hours"`
	ContinuousDriveHours   float64    `json:"continuous_drive_hours"`
	DepartAt               *time.Time `json:"depart_at"`
}

type TripLegResponse struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	DistanceMiles float64 `json:"distance_miles"`
	DriveHours    float64 `json:"drive_hours"`
}

type TripStopResponse struct {
	StopType               string    `json:"stop_type"`
	Location               string    `json:"location"`
	SequenceOrder          int       `json:"sequence_order"`
	MileMarker             float64   `json:"mile_marker"`
	EstimatedArrivalTime   time.Time `json:"estimated_arrival_time"`
	EstimatedDepartureTime time.Time `json:"estimated_departure_time"`
	DurationMinutes        float64   `json:"duration_minutes"`
	IsMandatory            bool      `json:"is_mandatory"`
}

type TripPlanResponse struct {
	TotalDistanceMiles     float64             `json:"total_distance_miles"`
	TotalDriveHours        float64             `json:"total_drive_hours"`
	EstimatedDurationHours float64             `json:"estimated_duration_hours"`
	DepartAt               time.Time           `json:"depart_at"`
	ArriveAt               time.Time           `json:"arrive_at"`
	InitialCompliance      ComplianceResponse  `json:"initial_compliance"`
	Legs                   []TripLegResponse   `json:"legs"`
	Stops                  []TripStopResponse  `json:"stops"`
	DutyEntries            []DutyEntryResponse `json:"duty_entries"`
}

// isMandatory marks stops the HOS rules force, as opposed to trip work and fueling.
func isMandatory(t domain.StopType) bool {
	switch t {
	case domain.StopMandatoryBreak, domain.StopRest, domain.StopCycleRestart:
		return true
	}
	return false
}

func FromTripPlan(p *domain.TripPlan) TripPlanResponse {
	out := TripPlanResponse{
		TotalDistanceMiles:     p.TotalMiles,
		TotalDriveHours:        p.TotalDriveHours,
		EstimatedDurationHours: p.ArriveAt.Sub(p.DepartAt).Hours(),
		DepartAt:               p.DepartAt,
		ArriveAt:               p.ArriveAt,
		InitialCompliance:      FromCompliance(p.Initial),
		Legs:                   make([]TripLegResponse, 0, len(p.Legs)),
		Stops:                  make([]TripStopResponse, 0, len(p.Stops)),
		DutyEntries:            FromEntries(p.Entries, p.ArriveAt),
	}
	for _, l := range p.Legs {
		out.Legs = append(out.Legs, TripLegResponse{
			From:          l.From,
			To:            l.To,
			DistanceMiles: l.Miles,
			DriveHours:    l.DriveHours,
		})
	}
	for i, s := range p.Stops {
		out.Stops = append(out.Stops, TripStopResponse{
			StopType:               string(s.Type),
			Location:               s.Location,
			SequenceOrder:          i + 1,
			MileMarker:             s.MileMarker,
			EstimatedArrivalTime:   s.ArriveAt,
			EstimatedDepartureTime: s.DepartAt,
			DurationMinutes:        s.DepartAt.Sub(s.ArriveAt).Minutes(),
			IsMandatory:            isMandatory(s.Type),
		})
	}
	return out
}
