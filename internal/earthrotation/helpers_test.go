package earthrotation

import (
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/timescale"
)

var geomX = geom.Vector3{X: 1}

// zeroCIP keeps the celestial pole fixed.
type zeroCIP struct{}

func (zeroCIP) CIP(timescale.Time) (float64, float64, float64, error) { return 0, 0, 0, nil }
