package tides

import "math"

// nodalCoeff gives f and u from two series in the lunar node N:
// f·sin u = Σ a_k sin(kN), f·cos u = b0 + Σ b_k cos(kN).
type nodalCoeff struct {
	sinTerms map[int]float64
	cosConst float64
	cosTerms map[int]float64
}

// Nodal modulation of the major constituents (pyTMD-derived; N in radians).
var nodalCoeffs = map[DoodsonNumber]nodalCoeff{
	// M2: Principal lunar semidiurnal.
	{2, 0, 0, 0, 0, 0}: {sinTerms: map[int]float64{1: -0.03731, 2: 0.00052}, cosConst: 1.0, cosTerms: map[int]float64{1: -0.03731, 2: 0.00052}},
	// S2: Principal solar semidiurnal.
	{2, 2, -2, 0, 0, 0}: {sinTerms: map[int]float64{1: 0.00225}, cosConst: 1.0, cosTerms: map[int]float64{1: 0.00225}},
	// N2: Lunar elliptical semidiurnal.
	{2, -1, 0, 1, 0, 0}: {sinTerms: map[int]float64{1: -0.03731, 2: 0.00052}, cosConst: 1.0, cosTerms: map[int]float64{1: -0.03731, 2: 0.00052}},
	// K2: Lunisolar semidiurnal.
	{2, 2, 0, 0, 0, 0}: {sinTerms: map[int]float64{1: -0.3108, 2: -0.0324}, cosConst: 1.0, cosTerms: map[int]float64{1: 0.2852, 2: 0.0324}},
	// K1: Lunisolar diurnal.
	{1, 1, 0, 0, 0, 0}: {sinTerms: map[int]float64{1: -0.1554, 2: 0.0029}, cosConst: 1.0, cosTerms: map[int]float64{1: 0.1158, 2: -0.0029}},
	// O1: Principal lunar diurnal.
	{1, -1, 0, 0, 0, 0}: {sinTerms: map[int]float64{1: 0.189, 2: -0.0058}, cosConst: 1.0, cosTerms: map[int]float64{1: 0.189, 2: -0.0058}},
	// P1: Principal solar diurnal.
	{1, 1, -2, 0, 0, 0}: {sinTerms: map[int]float64{1: -0.0112}, cosConst: 1.0, cosTerms: map[int]float64{1: -0.0112}},
	// Q1: Lunar elliptical diurnal.
	{1, -2, 0, 1, 0, 0}: {sinTerms: map[int]float64{1: 0.1886}, cosConst: 1.0, cosTerms: map[int]float64{1: 0.1886}},
}

// Compound constituents take the product of their parents' factors.
var nodalCompounds = map[DoodsonNumber][]DoodsonNumber{
	{4, 0, 0, 0, 0, 0}:  {{2, 0, 0, 0, 0, 0}, {2, 0, 0, 0, 0, 0}},                     // M4
	{6, 0, 0, 0, 0, 0}:  {{2, 0, 0, 0, 0, 0}, {2, 0, 0, 0, 0, 0}, {2, 0, 0, 0, 0, 0}}, // M6
	{3, 1, 0, 0, 0, 0}:  {{2, 0, 0, 0, 0, 0}, {1, 1, 0, 0, 0, 0}},                     // MK3
	{4, -1, 0, 1, 0, 0}: {{2, 0, 0, 0, 0, 0}, {2, -1, 0, 1, 0, 0}},                    // MN4
	{4, 2, -2, 0, 0, 0}: {{2, 0, 0, 0, 0, 0}, {2, 2, -2, 0, 0, 0}},                    // MS4
}

// NodalCorrection returns the amplitude factor f and the phase correction u
// (radians) of a constituent for the longitude of the lunar node omega
// (radians). Constituents without a model get f = 1, u = 0.
func NodalCorrection(d DoodsonNumber, omega float64) (f, u float64) {
	if parents, ok := nodalCompounds[d]; ok {
		f = 1
		for _, p := range parents {
			fp, up := NodalCorrection(p, omega)
			f *= fp
			u += up
		}
		return f, u
	}
	c, ok := nodalCoeffs[d]
	if !ok {
		return 1, 0
	}
	term1 := 0.0
	for k, a := range c.sinTerms {
		term1 += a * math.Sin(float64(k)*omega)
	}
	term2 := c.cosConst
	for k, b := range c.cosTerms {
		term2 += b * math.Cos(float64(k)*omega)
	}
	return math.Hypot(term1, term2), math.Atan2(term1, term2)
}
