package soil

import (
	"fmt"
	"math"
	"slices"

	"github.com/x-thooh/geotech/internal/geotech/distribution"
)

// WaterUnitWeight in kN/m3.
const WaterUnitWeight = 9.81

// PorePressure models pore water pressure over elevation.
type PorePressure interface {
	// PressureAt returns the pore pressure in kPa at elevation z in
	// iteration i, never negative.
	PressureAt(i int, z float64) float64
	// PhreaticAt returns the elevation of zero pore pressure in iteration i.
	PhreaticAt(i int) float64
	String() string
}

// WaterTable is a hydrostatic distribution below a water table elevation.
// A positive gradient (m/m) adds artesian pressure in proportion.
type WaterTable struct {
	Elevation distribution.Distribution
	Gradient  distribution.Distribution
}

func (w *WaterTable) PressureAt(i int, z float64) float64 {
	head := w.Elevation.Samples()[i] - z
	if head <= 0 {
		return 0
	}
	g := 0.0
	if w.Gradient != nil {
		g = w.Gradient.Samples()[i]
	}
	return head * WaterUnitWeight * (1 + g)
}

func (w *WaterTable) PhreaticAt(i int) float64 {
	return w.Elevation.Samples()[i]
}

func (w *WaterTable) String() string {
	return fmt.Sprintf("Water table at %s m", w.Elevation)
}

// Measurement is a pore pressure reading in kPa at an elevation in m.
type Measurement struct {
	Elevation float64
	Pressure  distribution.Distribution
}

// Measured interpolates linearly between readings and holds the end values
// beyond them.
type Measured struct {
	points []Measurement
}

func NewMeasured(points []Measurement) (*Measured, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no pore pressure measurements", ErrInvalidProfile)
	}
	sorted := slices.Clone(points)
	// top down
	slices.SortFunc(sorted, func(a, b Measurement) int {
		switch {
		case a.Elevation > b.Elevation:
			return -1
		case a.Elevation < b.Elevation:
			return 1
		}
		return 0
	})
	return &Measured{points: sorted}, nil
}

func (m *Measured) PressureAt(i int, z float64) float64 {
	return math.Max(0, m.interpolate(i, z))
}

func (m *Measured) interpolate(i int, z float64) float64 {
	pts := m.points
	if z >= pts[0].Elevation {
		return pts[0].Pressure.Samples()[i]
	}
	for j := 1; j < len(pts); j++ {
		if z >= pts[j].Elevation {
			hi, lo := pts[j-1], pts[j]
			frac := (hi.Elevation - z) / (hi.Elevation - lo.Elevation)
			ph, pl := hi.Pressure.Samples()[i], lo.Pressure.Samples()[i]
			return ph + frac*(pl-ph)
		}
	}
	return pts[len(pts)-1].Pressure.Samples()[i]
}

// PhreaticAt is the highest elevation where pressure rises through zero,
// +Inf when the shallowest reading is already positive and -Inf when no
// reading is.
func (m *Measured) PhreaticAt(i int) float64 {
	pts := m.points
	if pts[0].Pressure.Samples()[i] > 0 {
		return math.Inf(1)
	}
	for j := 1; j < len(pts); j++ {
		ph, pl := pts[j-1].Pressure.Samples()[i], pts[j].Pressure.Samples()[i]
		if ph <= 0 && pl > 0 {
			return pts[j-1].Elevation - (0-ph)/(pl-ph)*(pts[j-1].Elevation-pts[j].Elevation)
		}
	}
	return math.Inf(-1)
}

func (m *Measured) String() string {
	return fmt.Sprintf("%d pore pressure measurements from %g m to %g m",
		len(m.points), m.points[0].Elevation, m.points[len(m.points)-1].Elevation)
}
