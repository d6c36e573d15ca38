package domain

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for the routing API.
func (c Coordinates) LonLat() []float64 { return []float64{c.Lon, c.Lat} }
