package timescale

// Offsets between atomic scales in seconds.
const (
	TAIMinusGPS = 19.0
	TTMinusTAI  = 32.184
	TTMinusGPS  = TTMinusTAI + TAIMinusGPS
)

type leapSecond struct {
	mjd         int64
	taiMinusUTC float64
}

// leapSeconds lists TAI-UTC from the given UTC day on.
var leapSeconds = []leapSecond{
	{41317, 10}, // 1972-01-01
	{41499, 11}, // 1972-07-01
	{41683, 12}, // 1973-01-01
	{42048, 13}, // 1974-01-01
	{42413, 14}, // 1975-01-01
	{42778, 15}, // 1976-01-01
	{43144, 16}, // 1977-01-01
	{43509, 17}, // 1978-01-01
	{43874, 18}, // 1979-01-01
	{44239, 19}, // 1980-01-01
	{44786, 20}, // 1981-07-01
	{45151, 21}, // 1982-07-01
	{45516, 22}, // 1983-07-01
	{46247, 23}, // 1985-07-01
	{47161, 24}, // 1988-01-01
	{47892, 25}, // 1990-01-01
	{48257, 26}, // 1991-01-01
	{48804, 27}, // 1992-07-01
	{49169, 28}, // 1993-07-01
	{49534, 29}, // 1994-07-01
	{50083, 30}, // 1996-01-01
	{50630, 31}, // 1997-07-01
	{51179, 32}, // 1999-01-01
	{53736, 33}, // 2006-01-01
	{54832, 34}, // 2009-01-01
	{56109, 35}, // 2012-07-01
	{57204, 36}, // 2015-07-01
	{57754, 37}, // 2017-01-01
}

// TAIMinusUTC returns TAI-UTC in seconds at a UTC time.
// Dates before 1972 use the initial offset of 10 s.
func TAIMinusUTC(timeUTC Time) float64 {
	for i := len(leapSeconds) - 1; i >= 0; i-- {
		if timeUTC.day >= leapSeconds[i].mjd {
			return leapSeconds[i].taiMinusUTC
		}
	}
	return leapSeconds[0].taiMinusUTC
}

// GPSMinusUTC returns GPS-UTC in seconds at a UTC time.
func GPSMinusUTC(timeUTC Time) float64 {
	return TAIMinusUTC(timeUTC) - TAIMinusGPS
}

// UTCToGPS converts UTC to GPS time.
func UTCToGPS(timeUTC Time) Time {
	return timeUTC.Add(GPSMinusUTC(timeUTC))
}

// GPSToUTC converts GPS time to UTC.
func GPSToUTC(timeGPS Time) Time {
	guess := timeGPS.Add(-GPSMinusUTC(timeGPS))
	return timeGPS.Add(-GPSMinusUTC(guess))
}

// GPSToTT converts GPS time to terrestrial time.
func GPSToTT(timeGPS Time) Time { return timeGPS.Add(TTMinusGPS) }

// TTToGPS converts terrestrial time to GPS time.
func TTToGPS(timeTT Time) Time { return timeTT.Add(-TTMinusGPS) }

// UTCToTT converts UTC to terrestrial time.
func UTCToTT(timeUTC Time) Time { return GPSToTT(UTCToGPS(timeUTC)) }

// JulianCenturies returns Julian centuries since J2000.0 of a TT time.
func JulianCenturies(timeTT Time) float64 {
	return (float64(timeTT.day-51544) + (timeTT.frac - 0.5)) / 36525.0
}

// GPSToJulianCenturies returns TT Julian centuries since J2000.0 of a GPS time.
func GPSToJulianCenturies(timeGPS Time) float64 {
	return JulianCenturies(GPSToTT(timeGPS))
}

// DecimalYear returns the year with fraction, e.g. 2017.5, counted in Julian years from J2000.0.
func DecimalYear(t Time) float64 {
	return 2000.0 + (t.MJD()-MJDJ2000)/365.25
}
