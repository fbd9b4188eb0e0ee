package sim

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathantgray/tesp/internal/agent"
	"github.com/nathantgray/tesp/internal/config"
	"github.com/nathantgray/tesp/internal/model"
)

// monday is a Monday midnight, so the run starts in the night schedule
// period.
var monday = time.Date(2016, time.August, 1, 0, 0, 0, 0, time.UTC)

func testAgent(t *testing.T) *agent.Agent {
	t.Helper()
	h := config.DefaultHouse()
	a, err := agent.New(h.Name, h.Structure, h.Equipment, h.Schedule, h.Bidding)
	require.NoError(t, err)
	return a
}

// testForecast lays out a summer series long enough for the run plus the
// planning window: flat 92°F weather with a cheap night and an expensive
// late afternoon.
func testForecast(slots int) *model.Forecast {
	f := &model.Forecast{
		Price:          make([]float64, slots),
		OutsideAirTemp: make([]float64, slots),
		Humidity:       make([]float64, slots),
		SolarDirect:    make([]float64, slots),
		SolarDiffuse:   make([]float64, slots),
		InternalGain:   make([]float64, slots),
		SolarGain:      make([]float64, slots),
	}
	for t := 0; t < slots; t++ {
		hour := t % 24
		f.Price[t] = 0.05
		if hour >= 14 && hour < 20 {
			f.Price[t] = 0.30
		}
		f.OutsideAirTemp[t] = 92
		f.Humidity[t] = 0.5
		f.InternalGain[t] = 1200
	}
	return f
}

func TestEngineRunLedger(t *testing.T) {
	a := testAgent(t)
	f := testForecast(6 + a.Window())
	market := &agent.PriceSeries{Start: monday, Slot: time.Hour, Prices: f.Price}
	cfg := Config{Start: monday, Hours: 6, Mode: model.ModeCooling, WaterHeaterKW: 0.5}

	res, err := New(cfg).Run(context.Background(), a, f, market)
	require.NoError(t, err)

	require.Len(t, res.Ledger, 6*12)
	sawOn := false
	for i, row := range res.Ledger {
		assert.Equal(t, i, row.Index)
		assert.Equal(t, monday.Add(time.Duration(i)*5*time.Minute), row.Time)
		assert.Equal(t, model.ModeCooling, row.Mode)

		assert.Greater(t, row.IndoorAirTemp, 60.0)
		assert.Less(t, row.IndoorAirTemp, 100.0)
		assert.LessOrEqual(t, row.Award, a.State.HVACKW+1e-9)

		if row.HVACOn {
			sawOn = true
			assert.InDelta(t, row.HVACKW/12, row.EnergyKWH, 1e-12)
		} else {
			assert.Zero(t, row.EnergyKWH)
		}
		if i > 0 {
			assert.GreaterOrEqual(t, row.CumEnergyKWH, res.Ledger[i-1].CumEnergyKWH)
		}
	}

	assert.True(t, sawOn, "a 92°F day must force the plant to run")
	assert.Greater(t, res.TotalEnergyKWH, 0.0)
	assert.Greater(t, res.TotalCost, 0.0)
	last := res.Ledger[len(res.Ledger)-1]
	assert.InDelta(t, res.TotalEnergyKWH, last.CumEnergyKWH, 1e-9)
	assert.InDelta(t, res.TotalCost, last.CumCost, 1e-9)
	assert.GreaterOrEqual(t, res.DiscomfortDegHrs, 0.0)
	assert.False(t, math.IsNaN(res.FinalIndoorTemp))
}

func TestEngineRunOffMode(t *testing.T) {
	a := testAgent(t)
	f := testForecast(2 + a.Window())
	market := &agent.PriceTaker{Price: 0.10}
	cfg := Config{Start: monday, Hours: 2, Mode: model.ModeOff, WaterHeaterKW: 0.5}

	res, err := New(cfg).Run(context.Background(), a, f, market)
	require.NoError(t, err)

	assert.Zero(t, res.TotalEnergyKWH)
	assert.Zero(t, res.TotalCost)
	for _, row := range res.Ledger {
		assert.False(t, row.HVACOn)
		assert.Zero(t, row.Award)
	}
}

func TestEngineRunValidation(t *testing.T) {
	a := testAgent(t)
	f := testForecast(24 + a.Window())
	market := &agent.PriceTaker{Price: 0.10}
	cfg := Config{Start: monday, Hours: 24, Mode: model.ModeCooling}

	t.Run("nil agent", func(t *testing.T) {
		_, err := New(cfg).Run(context.Background(), nil, f, market)
		require.Error(t, err)
	})

	t.Run("nil market", func(t *testing.T) {
		_, err := New(cfg).Run(context.Background(), a, f, nil)
		require.Error(t, err)
	})

	t.Run("zero horizon", func(t *testing.T) {
		_, err := New(Config{Start: monday}).Run(context.Background(), a, f, market)
		require.Error(t, err)
	})

	t.Run("short forecast", func(t *testing.T) {
		short := testForecast(a.Window())
		_, err := New(cfg).Run(context.Background(), a, short, market)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "forecast")
	})

	t.Run("missing solar gain", func(t *testing.T) {
		bare := testForecast(24 + a.Window())
		bare.SolarGain = nil
		_, err := New(cfg).Run(context.Background(), a, bare, market)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "solar gain")
	})

	t.Run("period does not divide an hour", func(t *testing.T) {
		h := config.DefaultHouse()
		h.Bidding.PeriodSeconds = 420
		odd, err := agent.New(h.Name, h.Structure, h.Equipment, h.Schedule, h.Bidding)
		require.NoError(t, err)
		_, err = New(cfg).Run(context.Background(), odd, f, market)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "period")
	})
}

func TestEngineRunContextCancelled(t *testing.T) {
	a := testAgent(t)
	f := testForecast(6 + a.Window())
	market := &agent.PriceTaker{Price: 0.10}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{Start: monday, Hours: 6, Mode: model.ModeCooling}).Run(ctx, a, f, market)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWeekdayAndHourHelpers(t *testing.T) {
	assert.Equal(t, 0, DayOfWeek(monday))
	assert.Equal(t, 6, DayOfWeek(monday.AddDate(0, 0, 6))) // Sunday
	assert.InDelta(t, 0.0, HourOfDay(monday), 1e-12)
	assert.InDelta(t, 13.5, HourOfDay(monday.Add(13*time.Hour+30*time.Minute)), 1e-12)
}
