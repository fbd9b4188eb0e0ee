// Package sim runs houses against a price series over a simulated
// horizon: plan hourly, bid every market period, clear, settle, then step
// the thermal state.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/nathantgray/tesp/internal/agent"
	"github.com/nathantgray/tesp/internal/metrics"
	"github.com/nathantgray/tesp/internal/model"
)

// Config fixes the horizon and the exogenous loads of one run.
type Config struct {
	Start time.Time
	Hours int
	Mode  model.ThermostatMode

	// WaterHeaterKW is the flat non-HVAC appliance draw used to
	// reconstruct whole-house telemetry for the internal gain balance.
	WaterHeaterKW float64
}

type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine { return &Engine{cfg: cfg} }

// Run executes one house over the configured horizon. The forecast must
// cover the horizon plus the agent's planning window, one slot per hour,
// with solar gains already derived.
func (e *Engine) Run(ctx context.Context, a *agent.Agent, f *model.Forecast, market agent.MarketClearing) (*Result, error) {
	if a == nil {
		return nil, fmt.Errorf("agent is nil")
	}
	if market == nil {
		return nil, fmt.Errorf("market is nil")
	}
	if e.cfg.Hours <= 0 {
		return nil, fmt.Errorf("run horizon must be positive")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	window := a.Window()
	if f.Window() < e.cfg.Hours+window {
		return nil, fmt.Errorf("forecast covers %d slots, the run needs %d", f.Window(), e.cfg.Hours+window)
	}
	if len(f.SolarGain) < f.Window() {
		return nil, fmt.Errorf("solar gain series has not been derived")
	}

	period := a.Period()
	perHour := int(time.Hour / period)
	if perHour < 1 || time.Duration(perHour)*period != time.Hour {
		return nil, fmt.Errorf("market period %s does not divide one hour", period)
	}

	a.SetMode(e.cfg.Mode)
	a.State.WaterHeaterKW = e.cfg.WaterHeaterKW

	res := &Result{Ledger: make([]LedgerRow, 0, e.cfg.Hours*perHour)}
	dtH := period.Hours()
	now := e.cfg.Start
	idx := 0

	for h := 0; h < e.cfg.Hours; h++ {
		win, err := f.Slice(h, window)
		if err != nil {
			return nil, fmt.Errorf("hour %d: %w", h, err)
		}
		if err := a.PlanWindow(ctx, win, HourOfDay(now), DayOfWeek(now)); err != nil {
			return nil, fmt.Errorf("hour %d: %w", h, err)
		}

		for p := 0; p < perHour; p++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			row, err := e.period(ctx, a, win, market, now, idx)
			if err != nil {
				return nil, fmt.Errorf("hour %d period %d: %w", h, p, err)
			}

			res.TotalEnergyKWH += row.EnergyKWH
			res.TotalCost += row.Cost
			res.DiscomfortDegHrs += deviation(a, row.IndoorAirTemp) * dtH
			row.CumEnergyKWH = res.TotalEnergyKWH
			row.CumCost = res.TotalCost
			res.Ledger = append(res.Ledger, row)

			metrics.PeriodsSimulated.Inc()
			now = now.Add(period)
			idx++
		}
	}

	res.FinalIndoorTemp = a.State.IndoorAirTemp
	return res, nil
}

// period runs one market period: bid, clear, settle, then step the
// physics under the settled setpoints.
func (e *Engine) period(ctx context.Context, a *agent.Agent, win *model.Forecast, market agent.MarketClearing, now time.Time, idx int) (LedgerRow, error) {
	bid, err := a.FormBid(win, HourOfDay(now), DayOfWeek(now))
	if err != nil {
		return LedgerRow{}, err
	}

	// A gated house pays the going slot price for whatever it draws.
	price, award := win.Price[0], 0.0
	if !bid.IsZero() {
		price, award, err = market.Clear(ctx, now, bid)
		if err != nil {
			return LedgerRow{}, err
		}
		a.AcceptAward(price)
	}

	// Reconstruct whole-house telemetry so the internal gain balance nets
	// back to the forecast series.
	draw := 0.0
	if a.State.HVACOn {
		draw = a.State.HVACKW
	}
	a.State.HouseKW = win.InternalGain[0]/model.KWToBTUPerHr + a.State.WaterHeaterKW + draw

	env := &model.Environment{
		OutsideAirTemp: win.OutsideAirTemp[0],
		SolarGainFlux:  win.SolarGain[0],
		Humidity:       win.Humidity[0],
	}
	on := a.State.HVACOn
	a.Advance(env, a.Period())

	energy := draw * a.Period().Hours()
	sp := a.Setpoints()
	return LedgerRow{
		Index:           idx,
		Time:            now,
		Mode:            a.State.Mode,
		Price:           price,
		Award:           award,
		CoolingSetpoint: sp.Cooling,
		HeatingSetpoint: sp.Heating,
		IndoorAirTemp:   a.State.IndoorAirTemp,
		MassTemp:        a.State.MassTemp,
		OutsideAirTemp:  env.OutsideAirTemp,
		HVACOn:          on,
		HVACKW:          draw,
		EnergyKWH:       energy,
		Cost:            energy * price,
	}, nil
}

// deviation measures how far the indoor temperature sits from the
// basepoint of the active mode.
func deviation(a *agent.Agent, indoor float64) float64 {
	base := a.Schedule.BasepointCooling
	if a.State.Mode == model.ModeHeating {
		base = a.Schedule.BasepointHeating
	}
	d := indoor - base
	if d < 0 {
		return -d
	}
	return d
}

// HourOfDay returns the fractional clock hour used by the occupant
// schedule.
func HourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}

// DayOfWeek maps Go's Sunday-first weekday onto the Monday-first
// convention the occupant schedule uses.
func DayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
