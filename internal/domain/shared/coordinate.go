package shared

import (
	"encoding/json"
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Coordinate is a geographic point in WGS84 degrees.
//
// JSON decoding is tolerant of the shapes clients actually send: objects with
// lat/latitude and lon/lng/longitude keys, or a bare two-element array. Arrays
// are read as [lon, lat]; when that is implausible (|first| <= 90 and
// |second| > 90) the pair is swapped. Anything else is rejected.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewCoordinate creates a coordinate with range validation.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if lat < -90 || lat > 90 {
		return Coordinate{}, NewValidationError("lat", fmt.Sprintf("latitude %v out of range [-90, 90]", lat))
	}
	if lon < -180 || lon > 180 {
		return Coordinate{}, NewValidationError("lon", fmt.Sprintf("longitude %v out of range [-180, 180]", lon))
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// UnmarshalJSON accepts {lat, lon} objects with alias keys or [lon, lat] pairs.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var obj map[string]json.Number
	if err := json.Unmarshal(data, &obj); err == nil {
		lat, latOK := numberField(obj, "lat", "latitude")
		lon, lonOK := numberField(obj, "lon", "lng", "longitude")
		if !latOK || !lonOK {
			return NewInputError("coordinate", "object must carry lat/latitude and lon/lng/longitude")
		}
		c.Lat = lat
		c.Lon = lon
		return nil
	}

	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) < 2 {
			return NewInputError("coordinate", "array form must have two elements [lon, lat]")
		}
		lon, lat := pair[0], pair[1]
		// Historical clients send [lat, lon]; only one reading is plausible
		// when one value exceeds the latitude range.
		if math.Abs(lon) <= 90 && math.Abs(lat) > 90 {
			lon, lat = lat, lon
		}
		c.Lat = lat
		c.Lon = lon
		return nil
	}

	return NewInputError("coordinate", "must be {lat, lon} or [lon, lat]")
}

func numberField(obj map[string]json.Number, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			f, err := v.Float64()
			if err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// HaversineKm returns the great-circle distance to other in kilometers.
func (c Coordinate) HaversineKm(other Coordinate) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - c.Lat) * math.Pi / 180
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// HaversineMeters returns the great-circle distance to other in meters.
func (c Coordinate) HaversineMeters(other Coordinate) float64 {
	return c.HaversineKm(other) * 1000
}

// Key returns a deduplication key with 6-decimal precision (about 0.1 m).
func (c Coordinate) Key() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}
