package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolarFluxZeroDirectLeavesDiffuse(t *testing.T) {
	for _, orientation := range fluxOrientations {
		flux := SolarFlux(orientation, 172, 40, 12, 0, 35)
		assert.Equal(t, 35.0, flux, "orientation %s", orientation)
	}
}

func TestSolarFluxWinterNoonGeometry(t *testing.T) {
	const (
		day = 355 // winter solstice, low southern sun
		lat = 40.0
		dnr = 250.0
		dhr = 30.0
	)
	south := SolarFlux("S", day, lat, 12, dnr, dhr)
	north := SolarFlux("N", day, lat, 12, dnr, dhr)
	horizontal := SolarFlux("H", day, lat, 12, dnr, dhr)

	assert.Greater(t, south, north)
	assert.Equal(t, dhr, north, "north wall sees no direct beam at winter noon")
	assert.Greater(t, horizontal, dhr)
	assert.Greater(t, south, horizontal, "low sun favors the south wall over the roof")
}

func TestSolarFluxNeverBelowDiffuse(t *testing.T) {
	for _, orientation := range fluxOrientations {
		for hour := 0.0; hour <= 24; hour += 3 {
			flux := SolarFlux(orientation, 100, 35, hour, 200, 40)
			assert.GreaterOrEqual(t, flux, 40.0, "orientation %s hour %v", orientation, hour)
		}
	}
}

func TestSolarGain(t *testing.T) {
	// Zero irradiance produces zero gain regardless of geometry.
	assert.Zero(t, SolarGain(172, 12, 0, 0, 40, -105, -7))

	// Summer noon in Denver: the vertical average must carry at least the
	// diffuse component.
	gain := SolarGain(172, 12, 300, 50, 39.7, -104.9, -7)
	assert.Greater(t, gain, 50*3.412)

	// More beam irradiance can only add gain.
	assert.Greater(t, SolarGain(172, 12, 400, 50, 39.7, -104.9, -7), gain)
}
