package tides

import "strings"

// Constituent is a named tidal frequency.
type Constituent struct {
	Name          string
	Doodson       DoodsonNumber
	SpeedDegPerHr float64
}

// StandardConstituents lists the major ocean tide constituents with their
// angular speeds (deg/hour).
// Reference: https://www.pmel.noaa.gov/pubs/PDF/park2589/park2589.pdf
var StandardConstituents = []Constituent{
	// Semidiurnal.
	{"M2", DoodsonNumber{2, 0, 0, 0, 0, 0}, 28.9841042},
	{"S2", DoodsonNumber{2, 2, -2, 0, 0, 0}, 30.0000000},
	{"N2", DoodsonNumber{2, -1, 0, 1, 0, 0}, 28.4397295},
	{"K2", DoodsonNumber{2, 2, 0, 0, 0, 0}, 30.0821373},

	// Diurnal.
	{"K1", DoodsonNumber{1, 1, 0, 0, 0, 0}, 15.0410686},
	{"O1", DoodsonNumber{1, -1, 0, 0, 0, 0}, 13.9430356},
	{"P1", DoodsonNumber{1, 1, -2, 0, 0, 0}, 14.9589314},
	{"Q1", DoodsonNumber{1, -2, 0, 1, 0, 0}, 13.3986609},

	// Shallow water.
	{"M4", DoodsonNumber{4, 0, 0, 0, 0, 0}, 57.9682084},
	{"M6", DoodsonNumber{6, 0, 0, 0, 0, 0}, 86.9523127},
	{"MK3", DoodsonNumber{3, 1, 0, 0, 0, 0}, 44.0251729},
	{"S4", DoodsonNumber{4, 4, -4, 0, 0, 0}, 60.0000000},
	{"MN4", DoodsonNumber{4, -1, 0, 1, 0, 0}, 57.4238337},
	{"MS4", DoodsonNumber{4, 2, -2, 0, 0, 0}, 58.9841042},

	// Long period.
	{"Mf", DoodsonNumber{0, 2, 0, 0, 0, 0}, 1.0980331},
	{"Mm", DoodsonNumber{0, 1, 0, -1, 0, 0}, 0.5443747},
	{"Ssa", DoodsonNumber{0, 0, 2, 0, 0, 0}, 0.0821373},
	{"Sa", DoodsonNumber{0, 0, 1, 0, 0, -1}, 0.0410686},
}

var (
	constituentByName    = map[string]Constituent{}
	constituentByDoodson = map[DoodsonNumber]Constituent{}
)

func init() {
	for _, c := range StandardConstituents {
		constituentByName[strings.ToUpper(c.Name)] = c
		constituentByDoodson[c.Doodson] = c
	}
}
