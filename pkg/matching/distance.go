package matching

import (
	"fmt"
	"math"
)

const (
	earthRadiusKm = 6371.0

	MetricHaversine       = "haversine"
	MetricEquirectangular = "equirectangular"
)

type (
	Point struct {
		Lat float64
		Lng float64
	}

	// DistanceFunc returns the distance between two points in kilometres.
	DistanceFunc func(a, b Point) float64
)

func torads(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine is the great-circle distance between a and b.
func Haversine(a, b Point) float64 {
	diffLat := torads(b.Lat - a.Lat)
	diffLng := torads(b.Lng - a.Lng)

	h := math.Sin(diffLat/2)*math.Sin(diffLat/2) +
		math.Sin(diffLng/2)*math.Sin(diffLng/2)*math.Cos(torads(a.Lat))*math.Cos(torads(b.Lat))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return c * earthRadiusKm
}

// Equirectangular is a flat projection, accurate enough at city scale.
func Equirectangular(a, b Point) float64 {
	x := torads(b.Lng-a.Lng) * math.Cos(torads((a.Lat+b.Lat)/2))
	y := torads(b.Lat - a.Lat)
	return math.Sqrt(x*x+y*y) * earthRadiusKm
}

func DistanceFuncByName(name string) (DistanceFunc, error) {
	switch name {
	case "", MetricHaversine:
		return Haversine, nil
	case MetricEquirectangular:
		return Equirectangular, nil
	default:
		return nil, fmt.Errorf("unknown distance metric %q", name)
	}
}
