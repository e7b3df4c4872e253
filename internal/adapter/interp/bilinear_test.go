package interp

import (
	"math"
	"testing"
)

// TestCell_Center checks the average of the corners at the centre of a cell.
func TestCell_Center(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 2.0,
		Y0: 0.0, Y1: 2.0,
		V00: 1.0, V10: 3.0,
		V01: 5.0, V11: 7.0,
	}

	result, err := cell.Interpolate(1.0, 1.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(result-4.0) > 1e-9 {
		t.Errorf("Center point: expected 4.0, got %.10f", result)
	}
}

// TestCell_Corners checks that corners return the node values.
func TestCell_Corners(t *testing.T) {
	cell := Cell{
		X0: 0.0, X1: 10.0,
		Y0: 0.0, Y1: 10.0,
		V00: 1.0, V10: 2.0,
		V01: 3.0, V11: 4.0,
	}

	tests := []struct {
		name     string
		x, y     float64
		expected float64
	}{
		{"bottom-left", 0.0, 0.0, 1.0},
		{"bottom-right", 10.0, 0.0, 2.0},
		{"top-left", 0.0, 10.0, 3.0},
		{"top-right", 10.0, 10.0, 4.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := cell.Interpolate(tt.x, tt.y)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("expected %.10f, got %.10f", tt.expected, result)
			}
		})
	}
}

func TestCell_Outside(t *testing.T) {
	cell := Cell{X0: 0, X1: 1, Y0: 0, Y1: 1}
	if _, err := cell.Interpolate(1.5, 0.5); err == nil {
		t.Error("expected error for point outside cell")
	}
	if _, err := (Cell{X0: 1, X1: 1, Y0: 0, Y1: 1}).Interpolate(1, 0.5); err == nil {
		t.Error("expected error for degenerate cell")
	}
}

func gravityGrid() *Grid2D {
	return &Grid2D{
		X: []float64{0, 90, 180, 270, 360},
		Y: []float64{-90, 0, 90},
		Values: [][]float64{
			{9.832, 9.832, 9.832, 9.832, 9.832},
			{9.780, 9.781, 9.782, 9.783, 9.780},
			{9.832, 9.832, 9.832, 9.832, 9.832},
		},
	}
}

func TestGrid2D_InterpolateAt(t *testing.T) {
	g := gravityGrid()
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	tests := []struct {
		name     string
		lon, lat float64
		expected float64
	}{
		{"node", 90, 0, 9.781},
		{"between longitudes", 45, 0, 9.7805},
		{"negative longitude wraps", -90, 0, 9.783},
		{"mid latitude", 0, 45, 9.806},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.InterpolateAt(tt.lon, tt.lat)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %.6f, got %.6f", tt.expected, got)
			}
		})
	}
}

func TestGrid2D_Validate(t *testing.T) {
	tests := []struct {
		name string
		grid Grid2D
	}{
		{"too small", Grid2D{X: []float64{0}, Y: []float64{0, 1}, Values: [][]float64{{1}, {2}}}},
		{"row mismatch", Grid2D{X: []float64{0, 1}, Y: []float64{0, 1}, Values: [][]float64{{1, 2}}}},
		{"unsorted", Grid2D{X: []float64{1, 0}, Y: []float64{0, 1}, Values: [][]float64{{1, 2}, {3, 4}}}},
		{"duplicate", Grid2D{X: []float64{0, 0}, Y: []float64{0, 1}, Values: [][]float64{{1, 2}, {3, 4}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.grid.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGrid2D_OutsideLatitude(t *testing.T) {
	g := &Grid2D{X: []float64{0, 10}, Y: []float64{0, 10}, Values: [][]float64{{1, 2}, {3, 4}}}
	if _, err := g.InterpolateAt(5, 20); err == nil {
		t.Error("expected error outside latitude range")
	}
}
