package model

import "math"

// Surface azimuths in degrees for the modeled envelope orientations. The
// horizontal plane is listed first; the eight vertical orientations are
// averaged for whole-house solar gain.
var surfaceAzimuthDeg = map[string]float64{
	"H":  360,
	"N":  180,
	"NE": 135,
	"E":  90,
	"SE": 45,
	"S":  0,
	"SW": -45,
	"W":  -90,
	"NW": -135,
}

var fluxOrientations = []string{"H", "N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// SolarFlux computes the incident solar flux on one envelope surface from
// direct normal and diffuse horizontal irradiance. The horizontal surface
// "H" is treated as a flat plane; all other orientations are vertical
// walls. Solar time is in hours, latitude in degrees.
func SolarFlux(orientation string, dayOfYear int, latitudeDeg, solarTime, directNormal, diffuseHorizontal float64) float64 {
	az := surfaceAzimuthDeg[orientation]
	verticalAngle := 90.0
	if orientation == "H" {
		// Azimuth is irrelevant on a flat plane; reuse east.
		az = surfaceAzimuthDeg["E"]
		verticalAngle = 0
	}

	azr := az * math.Pi / 180
	slope := verticalAngle * math.Pi / 180
	lat := latitudeDeg * math.Pi / 180
	hourAngle := -(15.0 * math.Pi / 180) * (solarTime - 12.0)
	decl := 0.409280 * math.Sin(2.0*math.Pi*float64(284+dayOfYear)/365)

	sinDecl, cosDecl := math.Sin(decl), math.Cos(decl)
	sinLat, cosLat := math.Sin(lat), math.Cos(lat)
	sinSlope, cosSlope := math.Sin(slope), math.Cos(slope)
	sinAz, cosAz := math.Sin(azr), math.Cos(azr)
	sinHr, cosHr := math.Sin(hourAngle), math.Cos(hourAngle)

	cosIncident := sinDecl*sinLat*cosSlope -
		sinDecl*cosLat*sinSlope*cosAz +
		cosDecl*cosLat*cosSlope*cosHr +
		cosDecl*sinLat*sinSlope*cosAz*cosHr +
		cosDecl*sinSlope*sinAz*sinHr
	if cosIncident < 0 {
		cosIncident = 0
	}
	return directNormal*cosIncident + diffuseHorizontal
}

// SolarGain computes the average incident solar flux over the vertical
// envelope surfaces in Btu/(h·ft²), given irradiance in W/ft². Hour is
// local clock time; tzOffsetHours is the UTC offset of the local zone
// (negative in the western hemisphere).
func SolarGain(dayOfYear int, hour, directNormal, diffuseHorizontal, latitudeDeg, longitudeDeg, tzOffsetHours float64) float64 {
	rad := 2.0 * math.Pi * float64(dayOfYear) / 365.0
	eqTime := (0.5501*math.Cos(rad) - 3.0195*math.Cos(2*rad) - 0.0771*math.Cos(3*rad) -
		7.3403*math.Sin(rad) - 9.4583*math.Sin(2*rad) - 0.3284*math.Sin(3*rad)) / 60.0
	stdMeridian := 15 * tzOffsetHours * math.Pi / 180
	solarTime := hour + eqTime + 12.0/math.Pi*(longitudeDeg*math.Pi/180-stdMeridian)

	sum := 0.0
	for _, cpt := range fluxOrientations[1:] {
		sum += SolarFlux(cpt, dayOfYear, latitudeDeg, solarTime, directNormal, diffuseHorizontal)
	}
	return sum / 8 * 3.412
}
