package matrix

import (
	"fmt"
	"sort"
	"strings"

	"github.com/andrescamacho/routing-go/internal/domain/shared"
)

// Travel modes accepted by every provider. Providers map them onto their own
// profile vocabulary.
const (
	ModeDriving = "driving"
	ModeWalking = "walking"
	ModeCycling = "cycling"
)

// Parameters tune how a provider computes and reports the matrix.
type Parameters struct {
	// Metrics selects a subset of {"distance", "duration"}. Empty means both.
	Metrics []string `json:"metrics,omitempty"`
	// Units is the preferred distance unit on the wire ("m" default).
	Units string `json:"units,omitempty"`
	// MetersPerUnit scales planar euclidean results into meters.
	MetersPerUnit float64 `json:"meters_per_unit,omitempty"`
	// DurationScale, when positive, makes planar providers emit durations as
	// distance times this factor.
	DurationScale float64 `json:"duration_scale,omitempty"`
}

// Request describes one matrix computation.
//
// Coordinates is a convenience field: when set it fills both origins and
// destinations. Destinations default to origins when absent.
type Request struct {
	Adapter      string              `json:"adapter"`
	Mode         string              `json:"mode,omitempty"`
	Origins      []shared.Coordinate `json:"origins,omitempty"`
	Destinations []shared.Coordinate `json:"destinations,omitempty"`
	Coordinates  []shared.Coordinate `json:"coordinates,omitempty"`
	Parameters   Parameters          `json:"parameters,omitempty"`
}

// Normalize resolves the coordinate conveniences and validates that at least
// one origin exists. It mutates the request into its canonical form.
func (r *Request) Normalize() error {
	if r.Mode == "" {
		r.Mode = ModeDriving
	}
	if len(r.Origins) == 0 && len(r.Coordinates) > 0 {
		r.Origins = r.Coordinates
	}
	if len(r.Destinations) == 0 {
		if len(r.Coordinates) > 0 {
			r.Destinations = r.Coordinates
		} else {
			r.Destinations = r.Origins
		}
	}
	if len(r.Origins) == 0 {
		return shared.NewInputError("origins", "at least one origin is required")
	}
	if len(r.Destinations) == 0 {
		return shared.NewInputError("destinations", "at least one destination is required")
	}
	switch r.Mode {
	case ModeDriving, ModeWalking, ModeCycling:
	default:
		return shared.NewInputError("mode", fmt.Sprintf("unsupported mode %q", r.Mode))
	}
	return nil
}

// Fingerprint returns a stable cache key for the request: adapter, mode, the
// coordinate lists at 6-decimal precision, and the sorted parameter set.
func (r *Request) Fingerprint() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(r.Adapter)))
	b.WriteByte('|')
	b.WriteString(r.Mode)
	b.WriteByte('|')
	for i, o := range r.Origins {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(o.Key())
	}
	b.WriteByte('|')
	for i, d := range r.Destinations {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(d.Key())
	}
	b.WriteByte('|')
	params := make([]string, 0, 4)
	if len(r.Parameters.Metrics) > 0 {
		metrics := append([]string(nil), r.Parameters.Metrics...)
		sort.Strings(metrics)
		params = append(params, "metrics="+strings.Join(metrics, ","))
	}
	if r.Parameters.Units != "" {
		params = append(params, "units="+r.Parameters.Units)
	}
	if r.Parameters.MetersPerUnit > 0 {
		params = append(params, fmt.Sprintf("mpu=%g", r.Parameters.MetersPerUnit))
	}
	if r.Parameters.DurationScale > 0 {
		params = append(params, fmt.Sprintf("scale=%g", r.Parameters.DurationScale))
	}
	sort.Strings(params)
	b.WriteString(strings.Join(params, "&"))
	return b.String()
}
