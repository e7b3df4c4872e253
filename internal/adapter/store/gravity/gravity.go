// Package gravity provides surface gravity for converting tidal potential into
// displacement: a gridded NetCDF model or normal gravity on GRS80.
package gravity

import (
	"fmt"
	"sync"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/geotides/internal/adapter/interp"
	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/geom"
)

// freeAirGradient is the vertical gradient of normal gravity (1/s^2).
const freeAirGradient = -0.3086e-5

// Source returns gravity (m/s^2) at a terrestrial point.
type Source interface {
	Gravity(p geom.Vector3) (float64, error)
}

// Normal is Somigliana normal gravity with height reduction.
type Normal struct{}

// Gravity implements Source.
func (Normal) Gravity(p geom.Vector3) (float64, error) { return geom.NormalGravity(p), nil }

// Store serves gravity from a global lon/lat grid of surface values. The grid
// is read on first use.
type Store struct {
	path string
	grid *interp.Grid2D
	mu   sync.RWMutex
}

// NewStore creates a gravity grid store for the NetCDF file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Gravity implements Source. The surface value is continued to the point's
// ellipsoidal height with the free-air gradient.
func (s *Store) Gravity(p geom.Vector3) (float64, error) {
	grid, err := s.load()
	if err != nil {
		return 0, err
	}
	lon, lat, h := geom.GRS80.Geodetic(p)
	g, err := grid.InterpolateAt(domain.Rad2Deg(lon), domain.Rad2Deg(lat))
	if err != nil {
		return 0, fmt.Errorf("failed to interpolate gravity: %w", err)
	}
	return g + freeAirGradient*h, nil
}

func (s *Store) load() (*interp.Grid2D, error) {
	s.mu.RLock()
	grid := s.grid
	s.mu.RUnlock()
	if grid != nil {
		return grid, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grid != nil {
		return s.grid, nil
	}
	grid, err := loadGrid(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load gravity grid %s: %w", s.path, err)
	}
	s.grid = grid
	return grid, nil
}

func loadGrid(path string) (*interp.Grid2D, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	latData, err := readAxis(nc, []string{"lat", "latitude", "y"})
	if err != nil {
		return nil, err
	}
	lonData, err := readAxis(nc, []string{"lon", "longitude", "x"})
	if err != nil {
		return nil, err
	}

	dataNames := []string{"gravity", "g", "grav", "z"}
	var dataVar netcdf.Var
	found := false
	for _, name := range dataNames {
		if v, err := nc.Var(name); err == nil {
			dataVar, found = v, true
			break
		}
	}
	if !found {
		return nil, domain.MalformedInput("gravity variable not found (tried: %v)", dataNames)
	}

	dims, err := dataVar.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 2 {
		return nil, domain.MalformedInput("expected 2D data, got %dD", len(dims))
	}
	dim0, err := dims[0].Len()
	if err != nil {
		return nil, fmt.Errorf("failed to get dim0 length: %w", err)
	}
	dim1, err := dims[1].Len()
	if err != nil {
		return nil, fmt.Errorf("failed to get dim1 length: %w", err)
	}

	nLat, nLon := len(latData), len(lonData)
	if uint64(nLat*nLon) != dim0*dim1 {
		return nil, domain.MalformedInput("dimension mismatch: data is [%d, %d], axes are %d x %d", dim0, dim1, nLat, nLon)
	}
	flat, err := readFloats(dataVar, nLat*nLon)
	if err != nil {
		return nil, fmt.Errorf("failed to read gravity: %w", err)
	}

	values := make([][]float64, nLat)
	for i := range values {
		values[i] = make([]float64, nLon)
	}
	latFirst := dim0 == uint64(nLat) && dim1 == uint64(nLon)
	for i := 0; i < nLat; i++ {
		for j := 0; j < nLon; j++ {
			if latFirst {
				values[i][j] = flat[i*nLon+j]
			} else {
				values[i][j] = flat[j*nLat+i]
			}
		}
	}

	grid := &interp.Grid2D{X: lonData, Y: latData, Values: values}
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("invalid grid: %w", err)
	}
	return grid, nil
}

func readAxis(nc netcdf.Dataset, names []string) ([]float64, error) {
	for _, name := range names {
		v, err := nc.Var(name)
		if err != nil {
			continue
		}
		dims, err := v.Dims()
		if err != nil || len(dims) != 1 {
			continue
		}
		n, err := dims[0].Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get length of %s: %w", name, err)
		}
		data, err := readFloats(v, int(n))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, domain.MalformedInput("axis variable not found (tried: %v)", names)
}

// readFloats reads n DOUBLE or FLOAT values.
func readFloats(v netcdf.Var, n int) ([]float64, error) {
	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, n)
		if err := v.ReadFloat64s(data); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, n)
		if err := v.ReadFloat32s(tmp); err != nil {
			return nil, err
		}
		data := make([]float64, n)
		for i, x := range tmp {
			data[i] = float64(x)
		}
		return data, nil
	default:
		return nil, domain.MalformedInput("unsupported var type: %v", t)
	}
}
