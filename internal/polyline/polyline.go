// Package polyline decodes and encodes Google encoded polylines, the format
// Strava uses for activity and segment paths.
package polyline

import (
	"errors"
	"fmt"

	gopolyline "github.com/twpayne/go-polyline"
)

// ErrMalformed is returned for strings that are not valid encoded polylines
var ErrMalformed = errors.New("malformed polyline")

// Coordinate is a latitude/longitude pair in degrees
type Coordinate struct {
	Lat float64
	Lng float64
}

// Decode returns the coordinates encoded in s. An empty string decodes to an
// empty slice.
func Decode(s string) ([]Coordinate, error) {
	if s == "" {
		return []Coordinate{}, nil
	}

	pairs, rest, err := gopolyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(rest))
	}

	coords := make([]Coordinate, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("%w: point %d has %d values", ErrMalformed, i, len(p))
		}
		coords[i] = Coordinate{Lat: p[0], Lng: p[1]}
	}
	return coords, nil
}

// Encode returns the encoded polyline for coords
func Encode(coords []Coordinate) string {
	pairs := make([][]float64, len(coords))
	for i, c := range coords {
		pairs[i] = []float64{c.Lat, c.Lng}
	}
	return string(gopolyline.EncodeCoords(pairs))
}
