package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathantgray/tesp/internal/model"
)

func testStats() model.ForecastStats {
	return model.ForecastStats{
		PriceMin:   0.05,
		PriceMax:   0.25,
		PriceDelta: 0.20,
		PriceFirst: 0.15,
	}
}

func TestCreateBidFourPoint(t *testing.T) {
	r := &RealTime{cfg: testConfig()}
	qCurve := []float64{0, 1, 2, 2, 4}

	b := r.createBid(testStats(), qCurve, 2, 4)

	// Margin is 10% of the 0.20 spread; the slope spans the spread over
	// the plant size.
	wantQ := [4]float64{0, 2, 2, 4}
	wantP := [4]float64{0.27, 0.17, 0.13, 0.03}
	for i := range b {
		assert.InDelta(t, wantQ[i], b[i].Quantity, 1e-12, "point %d", i)
		assert.InDelta(t, wantP[i], b[i].Price, 1e-12, "point %d", i)
	}
}

func TestCreateBidMonotone(t *testing.T) {
	r := &RealTime{cfg: testConfig()}
	curves := [][]float64{
		{0, 1, 2, 2, 4},
		{3, 1, 0.5, 2, 4},
		{2, 2, 2, 2, 2},
		{0, 4, 4, 4, 4},
	}
	for _, qCurve := range curves {
		for _, qOpt := range []float64{0, 1.5, 5} {
			b := r.createBid(testStats(), qCurve, qOpt, 4)
			for i := 1; i < 4; i++ {
				assert.GreaterOrEqual(t, b[i].Quantity, b[i-1].Quantity, "curve %v qOpt %v", qCurve, qOpt)
				assert.LessOrEqual(t, b[i].Price, b[i-1].Price, "curve %v qOpt %v", qCurve, qOpt)
			}
			for i := range b {
				assert.GreaterOrEqual(t, b[i].Quantity, 0.0)
				assert.LessOrEqual(t, b[i].Quantity, 4.0)
				assert.GreaterOrEqual(t, b[i].Price, 0.0)
				assert.LessOrEqual(t, b[i].Price, r.cfg.PriceCap)
			}
		}
	}
}

func TestCreateBidFlatCurveBidsPriceExtremes(t *testing.T) {
	r := &RealTime{cfg: testConfig()}
	b := r.createBid(testStats(), []float64{1.5, 1.5, 1.5, 1.5, 1.5}, 1.5, 4)

	assert.Equal(t, b[0], b[1])
	assert.Equal(t, b[2], b[3])
	assert.InDelta(t, 0.27, b[0].Price, 1e-12, "upper segment sits at the max forecast price plus margin")
	assert.InDelta(t, 0.03, b[2].Price, 1e-12, "lower segment sits at the min forecast price less margin")
	assert.Equal(t, 1.5, b[0].Quantity)
	assert.Equal(t, 1.5, b[3].Quantity)
}

func TestCreateBidClampsToPriceCap(t *testing.T) {
	cfg := testConfig()
	cfg.PriceCap = 0.2
	r := &RealTime{cfg: cfg}
	b := r.createBid(testStats(), []float64{0, 1, 2, 2, 4}, 2, 4)
	assert.Equal(t, 0.2, b[0].Price)
	for i := 1; i < 4; i++ {
		assert.LessOrEqual(t, b[i].Price, b[i-1].Price)
	}
}

func TestTrackPlanInterpolation(t *testing.T) {
	cfg := testConfig()
	cfg.Interpolation = true
	r := &RealTime{cfg: cfg}
	plan := Result{Quantity: []float64{6, 3}, TempRoom: []float64{75, 74}}

	wantQ := []float64{1, 2, 3, 4, 5, 6, 5.75}
	for i, want := range wantQ {
		q, _ := r.trackPlan(plan, 74)
		assert.InDelta(t, want, q, 1e-9, "period %d", i)
	}

	// The temperature track ramps from the room toward the plan.
	r2 := &RealTime{cfg: cfg}
	_, temp := r2.trackPlan(plan, 74)
	assert.InDelta(t, 74+1.0/6, temp, 1e-9)
}

func TestTrackPlanReanchorsOffGridPeriods(t *testing.T) {
	// A 20-minute period never lands on minute 30; the mid-hour re-anchor
	// fires on the first period past it (minute 40) instead.
	cfg := testConfig()
	cfg.Interpolation = true
	cfg.PeriodSeconds = 1200
	r := &RealTime{cfg: cfg}
	plan := Result{Quantity: []float64{6, 3}, TempRoom: []float64{75, 74}}

	wantQ := []float64{4, 8, 8 - 2.5*2.0/3}
	for i, want := range wantQ {
		q, _ := r.trackPlan(plan, 74)
		assert.InDelta(t, want, q, 1e-9, "period %d", i)
	}
}

func TestTrackPlanWithoutInterpolation(t *testing.T) {
	r := &RealTime{cfg: testConfig()}
	plan := Result{Quantity: []float64{6, 3}, TempRoom: []float64{75, 74}}
	for i := 0; i < 3; i++ {
		q, temp := r.trackPlan(plan, 70)
		assert.Equal(t, 6.0, q)
		assert.Equal(t, 75.0, temp)
	}
}

func TestFormBidGates(t *testing.T) {
	s, eq, sch, etp := testHouse(t, 0.5)
	rt := NewRealTime(testConfig(), s, eq, sch, etp)
	plan := Result{Quantity: []float64{1.1, 1.0}, TempRoom: []float64{75, 75}}

	t.Run("off thermostat", func(t *testing.T) {
		in := coolingInputs(flatForecast(0.1), eq)
		in.State.Mode = model.ModeOff
		b, err := rt.FormBid(in, plan)
		require.NoError(t, err)
		assert.True(t, b.IsZero())
	})

	t.Run("no plant", func(t *testing.T) {
		in := coolingInputs(flatForecast(0.1), eq)
		in.HVACKW = 0
		b, err := rt.FormBid(in, plan)
		require.NoError(t, err)
		assert.True(t, b.IsZero())
	})

	t.Run("gas furnace cannot bid heating", func(t *testing.T) {
		sGas, eqGas, schGas, etpGas := testHouse(t, 0.5)
		p := eqGas.Params
		p.HeatingSystem = model.HeatingGas
		gas := model.NewEquipment(p, sGas)
		rtGas := NewRealTime(testConfig(), sGas, gas, schGas, etpGas)

		in := coolingInputs(flatForecast(0.1), gas)
		in.State.Mode = model.ModeHeating
		in.HVACKW = 3
		b, err := rtGas.FormBid(in, plan)
		require.NoError(t, err)
		assert.True(t, b.IsZero())
	})

	t.Run("short plan", func(t *testing.T) {
		in := coolingInputs(flatForecast(0.1), eq)
		b, err := rt.FormBid(in, Result{Quantity: []float64{1}, TempRoom: []float64{75}})
		require.NoError(t, err)
		assert.True(t, b.IsZero())
	})
}

func TestFormBidCooling(t *testing.T) {
	s, eq, sch, etp := testHouse(t, 0.5)
	cfg := testConfig()
	rt := NewRealTime(cfg, s, eq, sch, etp)

	f := flatForecast(0.1)
	f.Price[0] = 0.15
	f.Price[10] = 0.25
	f.Price[20] = 0.05
	in := coolingInputs(f, eq)
	plan := Result{Quantity: []float64{1.1, 1.0}, TempRoom: []float64{75, 75}}

	b, err := rt.FormBid(in, plan)
	require.NoError(t, err)
	require.False(t, b.IsZero())

	for i := 1; i < 4; i++ {
		assert.GreaterOrEqual(t, b[i].Quantity, b[i-1].Quantity)
		assert.LessOrEqual(t, b[i].Price, b[i-1].Price)
	}
	for i := range b {
		assert.GreaterOrEqual(t, b[i].Quantity, 0.0)
		assert.LessOrEqual(t, b[i].Quantity, in.HVACKW)
		assert.GreaterOrEqual(t, b[i].Price, 0.0)
		assert.LessOrEqual(t, b[i].Price, cfg.PriceCap)
	}
	assert.Greater(t, b[3].Quantity, b[0].Quantity,
		"the lookahead candidates must spread the quantity curve")
}

func TestSetpointForQuantity(t *testing.T) {
	r := &RealTime{
		lastQCurve:    []float64{0.3, 2.0, 1.5, 1.2, 0.8},
		lastTempCurve: []float64{76, 74.75, 75, 75.25, 75.5},
	}

	sp, ok := r.SetpointForQuantity(2.0)
	require.True(t, ok)
	assert.Equal(t, 74.75, sp, "full award lands on the coolest candidate")

	sp, ok = r.SetpointForQuantity(0.0)
	require.True(t, ok)
	assert.Equal(t, 76.0, sp, "no award relaxes to the warmest candidate")

	sp, ok = r.SetpointForQuantity(1.0)
	require.True(t, ok)
	assert.InDelta(t, 75.25, sp, 0.3, "partial awards interpolate between candidates")

	_, ok = (&RealTime{}).SetpointForQuantity(1.0)
	assert.False(t, ok, "no curve before the first bid")
}

func TestFormBidSliderZeroHasTwoPriceLevels(t *testing.T) {
	s, eq, sch, etp := testHouse(t, 0)
	cfg := testConfig()
	rt := NewRealTime(cfg, s, eq, sch, etp)

	in := coolingInputs(flatForecast(0.1), eq)
	in.Forecast.Price[0] = 0.15
	in.Forecast.Price[10] = 0.25
	in.Forecast.Price[20] = 0.05

	// A plan quantity beyond the lookahead range forces the two-segment
	// shape; with a zero slider the candidates collapse to the plan
	// temperature except the deadband probe.
	plan := Result{Quantity: []float64{10, 10}, TempRoom: []float64{75, 75}}
	b, err := rt.FormBid(in, plan)
	require.NoError(t, err)
	require.False(t, b.IsZero())

	assert.Equal(t, b[0].Price, b[1].Price)
	assert.Equal(t, b[2].Price, b[3].Price)
	assert.NotEqual(t, b[0].Price, b[2].Price, "a zero slider still yields two price levels")
	assert.Equal(t, b[0].Quantity, b[1].Quantity)
	assert.Equal(t, b[2].Quantity, b[3].Quantity)
}
