package tides

import (
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/earthrotation"
	"go.ngs.io/geotides/internal/ephemeris"
	"go.ngs.io/geotides/internal/geom"
	"go.ngs.io/geotides/internal/harmonics"
	"go.ngs.io/geotides/internal/timescale"
)

// fixedRotation reports the same orientation at every epoch with the
// terrestrial frame aligned to the celestial one.
type fixedRotation struct {
	o earthrotation.Orientation
}

func (f fixedRotation) Orientation(timescale.Time) (earthrotation.Orientation, error) {
	return f.o, nil
}

func (f fixedRotation) Rotation(timescale.Time) (geom.Rotation, error) { return geom.Identity(), nil }

func (f fixedRotation) CelestialToTerrestrial(timescale.Time) (geom.Rotation, error) {
	return geom.Identity(), nil
}

func (f fixedRotation) RotaryAxis(timescale.Time) (geom.Vector3, error) {
	return earthrotation.RotationVector(f.o), nil
}

// fixedEphemeris places bodies at constant positions.
type fixedEphemeris map[ephemeris.Body]geom.Vector3

func (f fixedEphemeris) Position(b ephemeris.Body, _ timescale.Time) (geom.Vector3, error) {
	if p, ok := f[b]; ok {
		return p, nil
	}
	return geom.Vector3{}, domain.MissingDependency("no position for %s", b)
}

func (f fixedEphemeris) GM(b ephemeris.Body) float64 { return ephemeris.GM(b) }

func testEnv() Environment {
	return Environment{
		Rotation: fixedRotation{o: earthrotation.Orientation{
			Xp: 0.15 * domain.ArcsecToRad,
			Yp: 0.35 * domain.ArcsecToRad,
		}},
		Ephemeris: ephemeris.Analytic{},
	}
}

func testEpoch(mjd float64) Epoch {
	return Epoch{Time: timescale.FromMJD(mjd), RotEarth: geom.Identity()}
}

func surfacePoints() []geom.Vector3 {
	return []geom.Vector3{
		geom.GRS80.Cartesian(domain.Deg2Rad(11.5), domain.Deg2Rad(48.1), 500),
		geom.GRS80.Cartesian(domain.Deg2Rad(-77.0), domain.Deg2Rad(38.9), 30),
		geom.GRS80.Cartesian(domain.Deg2Rad(151.2), domain.Deg2Rad(-33.9), 50),
	}
}

func loveNumbers(maxDegree int) (hn, ln []float64) {
	hn = make([]float64, maxDegree+1)
	ln = make([]float64, maxDegree+1)
	for n := 2; n <= maxDegree; n++ {
		hn[n] = 0.6
		ln[n] = 0.08
	}
	return hn, ln
}

// stubLoader serves in-memory coefficients.
type stubLoader struct {
	harmonic  *HarmonicModel
	oceanPole *OceanPoleModel
}

func (s stubLoader) LoadHarmonicModel(string) (*HarmonicModel, error) {
	if s.harmonic == nil {
		return nil, domain.MissingDependency("no harmonic model")
	}
	return s.harmonic, nil
}

func (s stubLoader) LoadOceanPoleModel(string) (*OceanPoleModel, error) {
	if s.oceanPole == nil {
		return nil, domain.MissingDependency("no ocean pole model")
	}
	return s.oceanPole, nil
}

func m2Model() *HarmonicModel {
	cos := harmonics.NewField(2, domain.DefaultGM, domain.DefaultR)
	sin := harmonics.NewField(2, domain.DefaultGM, domain.DefaultR)
	cos.C[2][2] = 3e-10
	sin.S[2][2] = -1e-10
	return &HarmonicModel{
		GM: domain.DefaultGM,
		R:  domain.DefaultR,
		Constituents: []HarmonicConstituent{
			{Doodson: DoodsonNumber{2, 0, 0, 0, 0, 0}, Cos: cos, Sin: sin},
		},
	}
}
