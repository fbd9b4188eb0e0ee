package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathantgray/tesp/internal/agent"
	"github.com/nathantgray/tesp/internal/config"
	"github.com/nathantgray/tesp/internal/model"
)

func TestRunFleetKeepsOrderAndIsolatesFailures(t *testing.T) {
	h := config.DefaultHouse()

	names := []string{"house-a", "house-b", "house-c"}
	agents := make([]*agent.Agent, 0, len(names))
	for i, name := range names {
		hh := h
		if i == 1 {
			// A period that does not divide an hour fails this house's
			// run without touching the others.
			hh.Bidding.PeriodSeconds = 420
		}
		a, err := agent.New(name, hh.Structure, hh.Equipment, hh.Schedule, hh.Bidding)
		require.NoError(t, err)
		agents = append(agents, a)
	}

	f := testForecast(2 + agents[0].Window())
	market := &agent.PriceTaker{Price: 0.10}
	cfg := Config{Start: monday, Hours: 2, Mode: model.ModeCooling, WaterHeaterKW: 0.5}

	runs := RunFleet(context.Background(), cfg, agents, f, market, 2)

	require.Len(t, runs, 3)
	for i, run := range runs {
		assert.Equal(t, names[i], run.Name)
	}
	require.NoError(t, runs[0].Err)
	require.Error(t, runs[1].Err)
	require.NoError(t, runs[2].Err)
	assert.Len(t, runs[0].Result.Ledger, 2*12)
	assert.Nil(t, runs[1].Result)
}

func TestRunFleetWorkerClamp(t *testing.T) {
	h := config.DefaultHouse()
	a, err := agent.New("solo", h.Structure, h.Equipment, h.Schedule, h.Bidding)
	require.NoError(t, err)

	f := testForecast(1 + a.Window())
	cfg := Config{Start: monday.Add(26 * time.Hour), Hours: 1, Mode: model.ModeCooling}

	// More workers than agents and an unset worker count both run fine.
	runs := RunFleet(context.Background(), cfg, []*agent.Agent{a}, f, &agent.PriceTaker{Price: 0.10}, 16)
	require.Len(t, runs, 1)
	require.NoError(t, runs[0].Err)
	assert.Equal(t, "solo", runs[0].Name)
}
