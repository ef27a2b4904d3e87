package geo

import (
	"math"
	"strings"

	"ride-share/internal/domain/apperr"
)

// Point is an address with its coordinate, used for ride route stops and booking pickup/dropoff.
type Point struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

var (
	ErrEmptyAddress     = apperr.New(apperr.KindInvalidInput, "EMPTY_ADDRESS", "address cannot be empty")
	ErrInvalidLatitude  = apperr.New(apperr.KindInvalidInput, "INVALID_LATITUDE", "latitude must be between -90 and 90")
	ErrInvalidLongitude = apperr.New(apperr.KindInvalidInput, "INVALID_LONGITUDE", "longitude must be between -180 and 180")
)

// NewPoint trims the address and validates the coordinate.
func NewPoint(address string, latitude, longitude float64) (Point, error) {
	p := Point{Address: strings.TrimSpace(address), Latitude: latitude, Longitude: longitude}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Validate checks the address and coordinate ranges.
func (point Point) Validate() error {
	if strings.TrimSpace(point.Address) == "" {
		return ErrEmptyAddress
	}
	if point.Latitude < -90 || point.Latitude > 90 || math.IsNaN(point.Latitude) {
		return ErrInvalidLatitude
	}
	if point.Longitude < -180 || point.Longitude > 180 || math.IsNaN(point.Longitude) {
		return ErrInvalidLongitude
	}
	return nil
}

// IsZero reports whether the point was left unset.
func (point Point) IsZero() bool {
	return point == Point{}
}

// HaversineKM returns the great-circle distance between two points in kilometers.
func HaversineKM(from, to Point) float64 {
	const R = 6371.0 // Earth radius in km
	a1 := from.Latitude * math.Pi / 180
	a2 := to.Latitude * math.Pi / 180
	da := (to.Latitude - from.Latitude) * math.Pi / 180
	db := (to.Longitude - from.Longitude) * math.Pi / 180

	a := math.Sin(da/2)*math.Sin(da/2) +
		math.Cos(a1)*math.Cos(a2)*math.Sin(db/2)*math.Sin(db/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// EstimateDurationMinutes converts a distance into whole minutes at the given average speed.
func EstimateDurationMinutes(distanceKM, avgSpeedKMH float64) int {
	if avgSpeedKMH <= 0 {
		avgSpeedKMH = 60
	}
	if distanceKM < 0 {
		distanceKM = 0
	}
	minutes := (distanceKM / avgSpeedKMH) * 60.0

	// ceil to whole minutes
	m := int(math.Ceil(minutes))
	if m < 1 {
		return 1
	}
	return m
}
