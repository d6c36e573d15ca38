package domain

// Driver is the subset of the driver record the HOS service needs.
type Driver struct {
	DriverID             int
	Name                 string
	HomeTerminalTimezone string
	// Cycle selects the rule preset ("70_8" or "60_7"); empty means the service default.
	Cycle    string
	IsActive bool
}
