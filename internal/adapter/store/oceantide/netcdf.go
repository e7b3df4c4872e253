package oceantide

import (
	"fmt"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/geotides/internal/domain"
	"go.ngs.io/geotides/internal/tides"
)

// NetCDF layout of a harmonic model.
const (
	dimConstituent = "constituent"
	dimArgument    = "argument"
	dimCoefficient = "coefficient"

	varDoodson = "doodson"
	varDegree  = "degree"
	varOrder   = "order"

	attrGM = "GM"
	attrR  = "R"
)

var coefficientVars = [4]string{"cnm_cos", "snm_cos", "cnm_sin", "snm_sin"}

// WriteNetCDF stores model in a new file at path, replacing any existing one.
// Coefficients are written for every (n, m) up to the model's degree.
func WriteNetCDF(path string, model *tides.HarmonicModel) error {
	if err := model.Validate(); err != nil {
		return err
	}
	maxDegree := model.MaxDegree()
	nCoef := (maxDegree + 1) * (maxDegree + 2) / 2
	nConst := len(model.Constituents)

	nc, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	constDim, err := nc.AddDim(dimConstituent, uint64(nConst))
	if err != nil {
		return fmt.Errorf("failed to add dimension %s: %w", dimConstituent, err)
	}
	argDim, err := nc.AddDim(dimArgument, 6)
	if err != nil {
		return fmt.Errorf("failed to add dimension %s: %w", dimArgument, err)
	}
	coefDim, err := nc.AddDim(dimCoefficient, uint64(nCoef))
	if err != nil {
		return fmt.Errorf("failed to add dimension %s: %w", dimCoefficient, err)
	}

	doodsonVar, err := nc.AddVar(varDoodson, netcdf.INT, []netcdf.Dim{constDim, argDim})
	if err != nil {
		return fmt.Errorf("failed to add variable %s: %w", varDoodson, err)
	}
	degreeVar, err := nc.AddVar(varDegree, netcdf.INT, []netcdf.Dim{coefDim})
	if err != nil {
		return fmt.Errorf("failed to add variable %s: %w", varDegree, err)
	}
	orderVar, err := nc.AddVar(varOrder, netcdf.INT, []netcdf.Dim{coefDim})
	if err != nil {
		return fmt.Errorf("failed to add variable %s: %w", varOrder, err)
	}
	var coefVars [4]netcdf.Var
	for i, name := range coefficientVars {
		if coefVars[i], err = nc.AddVar(name, netcdf.DOUBLE, []netcdf.Dim{constDim, coefDim}); err != nil {
			return fmt.Errorf("failed to add variable %s: %w", name, err)
		}
	}
	if err := nc.Attr(attrGM).WriteFloat64s([]float64{model.GM}); err != nil {
		return fmt.Errorf("failed to write attribute %s: %w", attrGM, err)
	}
	if err := nc.Attr(attrR).WriteFloat64s([]float64{model.R}); err != nil {
		return fmt.Errorf("failed to write attribute %s: %w", attrR, err)
	}
	if err := nc.EndDef(); err != nil {
		return fmt.Errorf("failed to leave define mode: %w", err)
	}

	degrees := make([]int32, 0, nCoef)
	orders := make([]int32, 0, nCoef)
	for n := 0; n <= maxDegree; n++ {
		for m := 0; m <= n; m++ {
			degrees = append(degrees, int32(n))
			orders = append(orders, int32(m))
		}
	}
	if err := degreeVar.WriteInt32s(degrees); err != nil {
		return fmt.Errorf("failed to write %s: %w", varDegree, err)
	}
	if err := orderVar.WriteInt32s(orders); err != nil {
		return fmt.Errorf("failed to write %s: %w", varOrder, err)
	}

	doodson := make([]int32, 0, nConst*6)
	var flat [4][]float64
	for i := range flat {
		flat[i] = make([]float64, 0, nConst*nCoef)
	}
	for _, c := range model.Constituents {
		for _, v := range c.Doodson {
			doodson = append(doodson, int32(v))
		}
		for k := range degrees {
			n, m := int(degrees[k]), int(orders[k])
			flat[0] = append(flat[0], coefficient(c.Cos.C, n, m))
			flat[1] = append(flat[1], coefficient(c.Cos.S, n, m))
			flat[2] = append(flat[2], coefficient(c.Sin.C, n, m))
			flat[3] = append(flat[3], coefficient(c.Sin.S, n, m))
		}
	}
	if err := doodsonVar.WriteInt32s(doodson); err != nil {
		return fmt.Errorf("failed to write %s: %w", varDoodson, err)
	}
	for i, v := range coefVars {
		if err := v.WriteFloat64s(flat[i]); err != nil {
			return fmt.Errorf("failed to write %s: %w", coefficientVars[i], err)
		}
	}
	return nil
}

func coefficient(cnm [][]float64, n, m int) float64 {
	if n >= len(cnm) {
		return 0
	}
	return cnm[n][m]
}

// ReadNetCDF loads a model written by WriteNetCDF.
func ReadNetCDF(path string) (*tides.HarmonicModel, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	gm, err := readScalarAttr(nc, attrGM)
	if err != nil {
		return nil, err
	}
	radius, err := readScalarAttr(nc, attrR)
	if err != nil {
		return nil, err
	}

	doodson, err := readInt32Var(nc, varDoodson)
	if err != nil {
		return nil, err
	}
	if len(doodson)%6 != 0 {
		return nil, domain.MalformedInput("%s holds %d values, not a multiple of 6", varDoodson, len(doodson))
	}
	degrees, err := readInt32Var(nc, varDegree)
	if err != nil {
		return nil, err
	}
	orders, err := readInt32Var(nc, varOrder)
	if err != nil {
		return nil, err
	}
	if len(degrees) != len(orders) {
		return nil, domain.MalformedInput("%d degrees but %d orders", len(degrees), len(orders))
	}

	nConst, nCoef := len(doodson)/6, len(degrees)
	var flat [4][]float64
	for i, name := range coefficientVars {
		v, err := nc.Var(name)
		if err != nil {
			return nil, fmt.Errorf("variable %s not found: %w", name, err)
		}
		flat[i] = make([]float64, nConst*nCoef)
		if err := v.ReadFloat64s(flat[i]); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
	}

	rows := make([]coefficientRow, 0, nConst*nCoef)
	for i := 0; i < nConst; i++ {
		var d tides.DoodsonNumber
		for j := range d {
			d[j] = int(doodson[6*i+j])
		}
		for k := 0; k < nCoef; k++ {
			n, m := int(degrees[k]), int(orders[k])
			if n < 0 || m < 0 || m > n {
				return nil, domain.MalformedInput("invalid degree/order %d/%d at index %d", n, m, k)
			}
			rows = append(rows, coefficientRow{
				doodson: d, n: n, m: m,
				cnmCos: flat[0][i*nCoef+k],
				snmCos: flat[1][i*nCoef+k],
				cnmSin: flat[2][i*nCoef+k],
				snmSin: flat[3][i*nCoef+k],
			})
		}
	}
	if len(rows) == 0 {
		return nil, domain.MalformedInput("no coefficients in %s", path)
	}
	return buildModel(rows, gm, radius)
}

func readScalarAttr(nc netcdf.Dataset, name string) (float64, error) {
	a := nc.Attr(name)
	n, err := a.Len()
	if err != nil || n != 1 {
		return 0, domain.MalformedInput("global attribute %s missing", name)
	}
	buf := make([]float64, 1)
	if err := a.ReadFloat64s(buf); err != nil {
		return 0, fmt.Errorf("failed to read attribute %s: %w", name, err)
	}
	return buf[0], nil
}

func readInt32Var(nc netcdf.Dataset, name string) ([]int32, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, fmt.Errorf("variable %s not found: %w", name, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions of %s: %w", name, err)
	}
	length := uint64(1)
	for _, d := range dims {
		n, err := d.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get length of %s: %w", name, err)
		}
		length *= n
	}
	data := make([]int32, length)
	if err := v.ReadInt32s(data); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
