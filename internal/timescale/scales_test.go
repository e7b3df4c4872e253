package timescale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGPSMinusUTC(t *testing.T) {
	tests := []struct {
		name string
		utc  Time
		want float64
	}{
		{"before 1980", FromDate(1975, 6, 1, 0, 0, 0), -5},
		{"GPS epoch", FromDate(1980, 1, 6, 0, 0, 0), 0},
		{"2016 end", FromDate(2016, 12, 31, 23, 59, 59), 17},
		{"2017 start", FromDate(2017, 1, 1, 0, 0, 0), 18},
		{"2024", FromDate(2024, 5, 1, 0, 0, 0), 18},
		{"pre 1972", FromDate(1965, 1, 1, 0, 0, 0), -9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GPSMinusUTC(tt.utc))
		})
	}
}

func TestGPSToUTC_InvertsAcrossLeapSecond(t *testing.T) {
	for _, utc := range []Time{
		FromDate(2016, 12, 31, 23, 59, 50),
		FromDate(2017, 1, 1, 0, 0, 0),
		FromDate(2017, 1, 1, 0, 0, 10),
		FromDate(2012, 6, 30, 12, 0, 0),
	} {
		back := GPSToUTC(UTCToGPS(utc))
		assert.InDelta(t, 0, back.Sub(utc).Seconds(), 1e-6, utc.String())
	}
}

func TestGPSToTT(t *testing.T) {
	gps := FromDate(2020, 1, 1, 0, 0, 0)
	assert.InDelta(t, 51.184, GPSToTT(gps).Sub(gps).Seconds(), 1e-6)
	assert.InDelta(t, 0, TTToGPS(GPSToTT(gps)).Sub(gps).Seconds(), 1e-6)
}

func TestJulianCenturies(t *testing.T) {
	assert.InDelta(t, 0.0, JulianCenturies(FromMJD(MJDJ2000)), 1e-15)
	assert.InDelta(t, 1.0, JulianCenturies(FromMJD(MJDJ2000+36525)), 1e-12)
}
