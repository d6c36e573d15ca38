package domain

import "time"

type StopType string

const (
	StopPickup         StopType = "pickup"
	StopDropoff        StopType = "dropoff"
	StopFuel           StopType = "fuel"
	StopMandatoryBreak StopType = "mandatory_break"
	StopRest           StopType = "rest"
	StopCycleRestart   StopType = "restart"
)

// TripLeg is one routed segment of a trip.
type TripLeg struct {
	From       string
	To         string
	Miles      float64
	DriveHours float64
}

// TripStop is a planned stop along the trip, placed by mile marker.
type TripStop struct {
	Type       StopType
	Location   string
	MileMarker float64
	ArriveAt   time.Time
	DepartAt   time.Time
}

// TripPlan is the HOS-legal schedule for a trip. It is planning data only.
type TripPlan struct {
	Legs            []TripLeg
	Stops           []TripStop
	Entries         []DutyStatusEntry
	TotalMiles      float64
	TotalDriveHours float64
	DepartAt        time.Time
	ArriveAt        time.Time
	Initial         ComplianceResult
}
