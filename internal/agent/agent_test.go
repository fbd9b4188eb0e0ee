package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/schedule"
	"github.com/nathantgray/tesp/internal/strategy"
)

func testStructureParams() model.StructureParams {
	return model.StructureParams{
		SquareFootage:             2500,
		Stories:                   1,
		CeilingHeight:             8,
		AspectRatio:               1.5,
		Doors:                     4,
		SingleDoorArea:            19.5,
		RRoof:                     30,
		RWall:                     19,
		RFloor:                    22,
		RDoors:                    5,
		WindowWallRatio:           0.15,
		GlazingLayers:             2,
		GlassType:                 model.GlassNormal,
		GlazingTreatment:          model.TreatmentClear,
		WindowFrame:               model.FrameAluminum,
		WETC:                      0.6,
		ExteriorCeilingFraction:   1,
		ExteriorFloorFraction:     1,
		ExteriorWallFraction:      1,
		InteriorExteriorWallRatio: 1.5,
		InteriorHeatTransferCoeff: 1.46,
		GrossAirHeatCapacity:      0.018,
		ThermalMassPerFloorArea:   3,
		MassInternalGainFraction:  0.5,
		MassSolarGainFraction:     0.5,
	}
}

func testEquipmentParams() model.EquipmentParams {
	return model.EquipmentParams{
		HeatingSystem:            model.HeatingHeatPump,
		CoolingSystem:            model.CoolingElectric,
		HeatingCOP:               2.5,
		CoolingCOP:               3.5,
		OverSizingFactor:         0.1,
		LatentLoadFraction:       0.3,
		CoolingDesignTemperature: 95,
		HeatingDesignTemperature: 0,
		DesignCoolingSetpoint:    75,
		DesignHeatingSetpoint:    70,
		DesignPeakSolar:          195,
		CoolingCapK0:             1.48924533,
		CoolingCapK1:             -0.00514995,
		HeatingCapK0:             0.34148808,
		HeatingCapK1:             0.00894102,
		HeatingCapK2:             0.00010787,
		CoolingCOPK0:             -0.01363961,
		CoolingCOPK1:             0.01066989,
		CoolingCOPLimit:          40,
		HeatingCOPK0:             2.03914613,
		HeatingCOPK1:             -0.03906753,
		HeatingCOPK2:             0.00045617,
		HeatingCOPK3:             -0.00000203,
	}
}

// testScheduleParams keeps a flat 75/65 occupant schedule so basepoints
// are stable across the simulated hours.
func testScheduleParams(slider float64) schedule.Params {
	return schedule.Params{
		WakeupStart: 6.5, DaylightStart: 9, EveningStart: 17, NightStart: 22,
		WeekendDayStart: 8, WeekendNightStart: 23,
		WakeupSetCool: 75, DaylightSetCool: 75, EveningSetCool: 75, NightSetCool: 75,
		WeekendDaySetCool: 75, WeekendNightSetCool: 75,
		WakeupSetHeat: 65, DaylightSetHeat: 65, EveningSetHeat: 65, NightSetHeat: 65,
		WeekendDaySetHeat: 65, WeekendNightSetHeat: 65,
		Deadband: 2, Slider: slider,
		RampHighLimit: 5, RampLowLimit: 5, RangeHighLimit: 5, RangeLowLimit: 5,
	}
}

func testStrategyConfig() strategy.Config {
	return strategy.Config{
		ProfitMarginIntercept: 10,
		ProfitMarginSlope:     0,
		PriceCap:              1.0,
		Window:                48,
		Interpolation:         false,
		Optimize:              true,
		BidDelaySeconds:       30,
		PeriodSeconds:         300,
		OptimizerBudgetMS:     2000,
	}
}

func testAgent(t *testing.T, slider float64) *Agent {
	t.Helper()
	a, err := New("house-1", testStructureParams(), testEquipmentParams(),
		testScheduleParams(slider), testStrategyConfig())
	require.NoError(t, err)
	return a
}

// rampForecast is a 48-slot summer window with prices rising linearly
// from 0.02 to 0.30 $/kWh, so the bid curve has a real spread to work
// with.
func rampForecast() *model.Forecast {
	const w = 48
	f := &model.Forecast{
		Price:          make([]float64, w),
		OutsideAirTemp: make([]float64, w),
		Humidity:       make([]float64, w),
		SolarDirect:    make([]float64, w),
		SolarDiffuse:   make([]float64, w),
		InternalGain:   make([]float64, w),
		SolarGain:      make([]float64, w),
	}
	for t := 0; t < w; t++ {
		f.Price[t] = 0.02 + 0.28*float64(t)/float64(w-1)
		f.OutsideAirTemp[t] = 95
		f.Humidity[t] = 0.5
		f.InternalGain[t] = 1000
	}
	return f
}

func TestNewAgentInitialState(t *testing.T) {
	a := testAgent(t, 0.5)

	assert.Equal(t, model.ModeOff, a.State.Mode)
	assert.InDelta(t, 70, a.State.IndoorAirTemp, 1e-12)
	assert.InDelta(t, 70, a.State.MassTemp, 1e-12)

	sp := a.Setpoints()
	assert.InDelta(t, 75, sp.Cooling, 1e-12)
	assert.InDelta(t, 65, sp.Heating, 1e-12)
	assert.InDelta(t, 2, sp.Deadband, 1e-12)
}

func TestNewAgentBadStructure(t *testing.T) {
	sp := testStructureParams()
	sp.GlazingLayers = 4

	_, err := New("house-bad", sp, testEquipmentParams(), testScheduleParams(0.5), testStrategyConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "house-bad")
}

func TestAgentPlanWindowMovesBasepoints(t *testing.T) {
	schp := testScheduleParams(0.5)
	schp.DaylightSetCool = 78
	schp.DaylightSetHeat = 66
	a, err := New("house-1", testStructureParams(), testEquipmentParams(), schp, testStrategyConfig())
	require.NoError(t, err)
	a.SetMode(model.ModeCooling)

	require.NoError(t, a.PlanWindow(context.Background(), rampForecast(), 10, 1))

	assert.InDelta(t, 78, a.Schedule.BasepointCooling, 1e-12)
	assert.InDelta(t, 66, a.Schedule.BasepointHeating, 1e-12)
	assert.InDelta(t, 78, a.Setpoints().Cooling, 1e-12)
	assert.InDelta(t, 66, a.Setpoints().Heating, 1e-12)
	assert.InDelta(t, 3.0144, a.State.HVACKW, 1e-3)
	assert.Len(t, a.Plan().Quantity, 48)
}

func TestAgentPlanBidAwardCycle(t *testing.T) {
	a := testAgent(t, 0.5)
	a.SetMode(model.ModeCooling)
	a.State.IndoorAirTemp = 75
	a.State.MassTemp = 75
	a.State.HouseKW = 4
	a.State.WaterHeaterKW = 0.5

	f := rampForecast()
	require.NoError(t, a.PlanWindow(context.Background(), f, 10, 1))

	bid, err := a.FormBid(f, 10, 1)
	require.NoError(t, err)
	require.False(t, bid.IsZero())
	for _, q := range bid.Quantities() {
		assert.GreaterOrEqual(t, q, 0.0)
		assert.LessOrEqual(t, q, a.State.HVACKW+1e-9)
	}

	market := &PriceTaker{Price: 0.16}
	price, awarded, err := market.Clear(context.Background(), time.Now(), bid)
	require.NoError(t, err)
	assert.InDelta(t, 0.16, price, 1e-12)
	assert.InDelta(t, bid.QuantityAt(0.16), awarded, 1e-12)

	got := a.AcceptAward(price)
	assert.InDelta(t, awarded, got, 1e-12)

	// The awarded setpoint must land inside the comfort band around the
	// 75°F basepoint.
	band := a.Schedule.Params.Band(a.Schedule.Params.ComfortSettings(),
		a.Schedule.BasepointCooling, a.Schedule.BasepointHeating)
	sp := a.Setpoints()
	assert.GreaterOrEqual(t, sp.Cooling, band.TempMinCool-1e-9)
	assert.LessOrEqual(t, sp.Cooling, band.TempMaxCool+1e-9)
	assert.InDelta(t, 65, sp.Heating, 1e-12)
}

func TestAgentAwardWithoutBidKeepsSetpoints(t *testing.T) {
	a := testAgent(t, 0.5)

	assert.Zero(t, a.AcceptAward(0.10))
	assert.InDelta(t, 75, a.Setpoints().Cooling, 1e-12)
	assert.InDelta(t, 65, a.Setpoints().Heating, 1e-12)

	// A gated zero bid must not open an award either.
	f := rampForecast()
	require.NoError(t, a.PlanWindow(context.Background(), f, 10, 1))
	bid, err := a.FormBid(f, 10, 1)
	require.NoError(t, err)
	assert.True(t, bid.IsZero())
	assert.Zero(t, a.AcceptAward(0.10))
	assert.InDelta(t, 75, a.Setpoints().Cooling, 1e-12)
}

func TestAgentAwardSettlesOnce(t *testing.T) {
	a := testAgent(t, 0.5)
	a.SetMode(model.ModeCooling)
	a.State.IndoorAirTemp = 75
	a.State.MassTemp = 75

	f := rampForecast()
	require.NoError(t, a.PlanWindow(context.Background(), f, 10, 1))
	_, err := a.FormBid(f, 10, 1)
	require.NoError(t, err)

	a.AcceptAward(0.30)
	after := a.Setpoints().Cooling

	// A second settlement without a fresh bid changes nothing.
	assert.Zero(t, a.AcceptAward(0.02))
	assert.InDelta(t, after, a.Setpoints().Cooling, 1e-12)
}

func TestAgentAdvanceStepsPhysics(t *testing.T) {
	a := testAgent(t, 0.5)
	a.SetMode(model.ModeCooling)
	a.State.IndoorAirTemp = 77
	a.State.MassTemp = 75
	a.State.HVACKW = a.Equipment.RatedKW(model.ModeCooling, 95)
	a.State.HouseKW = 4
	a.State.WaterHeaterKW = 0.5

	env := &model.Environment{OutsideAirTemp: 95, Humidity: 0.5}
	sawOn := false
	for i := 0; i < 24; i++ {
		a.Advance(env, 5*time.Minute)
		sawOn = sawOn || a.State.HVACOn
		assert.Greater(t, a.State.IndoorAirTemp, 55.0)
		assert.Less(t, a.State.IndoorAirTemp, 90.0)
	}

	// Starting above the deadband on a 95°F afternoon, the plant has to
	// run and pull the house back into the band.
	assert.True(t, sawOn)
	assert.Less(t, a.State.IndoorAirTemp, 78.0)
}

func TestPriceTakerClear(t *testing.T) {
	bid := strategy.Bid{
		{Quantity: 0, Price: 0.30},
		{Quantity: 2, Price: 0.20},
		{Quantity: 2, Price: 0.15},
		{Quantity: 4, Price: 0.05},
	}

	market := &PriceTaker{Price: 0.10}
	price, q, err := market.Clear(context.Background(), time.Now(), bid)
	require.NoError(t, err)
	assert.InDelta(t, 0.10, price, 1e-12)
	assert.InDelta(t, 3.0, q, 1e-12)

	market.Price = 0.50
	_, q, err = market.Clear(context.Background(), time.Now(), bid)
	require.NoError(t, err)
	assert.Zero(t, q)
}

func TestPriceSeriesClear(t *testing.T) {
	bid := strategy.Bid{
		{Quantity: 0, Price: 0.30},
		{Quantity: 2, Price: 0.20},
		{Quantity: 2, Price: 0.15},
		{Quantity: 4, Price: 0.05},
	}
	start := time.Date(2016, time.August, 1, 0, 0, 0, 0, time.UTC)
	market := &PriceSeries{Start: start, Slot: time.Hour, Prices: []float64{0.05, 0.20}}

	price, q, err := market.Clear(context.Background(), start.Add(90*time.Minute), bid)
	require.NoError(t, err)
	assert.InDelta(t, 0.20, price, 1e-12)
	assert.InDelta(t, 2.0, q, 1e-12)

	_, _, err = market.Clear(context.Background(), start.Add(3*time.Hour), bid)
	require.Error(t, err)

	empty := &PriceSeries{Start: start, Slot: time.Hour}
	_, _, err = empty.Clear(context.Background(), start, bid)
	require.Error(t, err)
}
