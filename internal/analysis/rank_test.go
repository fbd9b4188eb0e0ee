package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathantgray/tesp/internal/model"
)

// valleyPeakForecast prices the first half of the window cheap and the
// second half expensive, so storage size decides the harvest.
func valleyPeakForecast(slots int) *model.Forecast {
	f := rampForecast(slots)
	for i := range f.Price {
		if i < slots/2 {
			f.Price[i] = 0.10
		} else {
			f.Price[i] = 0.50
		}
	}
	return f
}

func TestRankBySavingsOrdersByStorage(t *testing.T) {
	houses := []House{
		testHouse(t, "narrow-band", 0.1),
		testHouse(t, "wide-band", 1.0),
	}
	f := valleyPeakForecast(24)

	ranked := RankBySavings(houses, "ercot_8500_hourly", f)
	require.Len(t, ranked, 2)

	assert.Equal(t, "wide-band", ranked[0].House)
	assert.Equal(t, "narrow-band", ranked[1].House)
	assert.Greater(t, ranked[0].OracleSavings, ranked[1].OracleSavings)
	assert.Equal(t, "ercot_8500_hourly", ranked[0].Series)
}

func TestRankBySavingsEmptyFleet(t *testing.T) {
	ranked := RankBySavings(nil, "s", valleyPeakForecast(4))
	assert.Empty(t, ranked)
}
