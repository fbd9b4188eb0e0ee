package strategy

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nathantgray/tesp/internal/metrics"
	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/schedule"
)

// Result is a day-ahead plan: the electrical quantity to buy each slot and
// the indoor temperature the plan expects to hold while doing so. The
// real-time strategy interpolates between its leading slots.
type Result struct {
	Quantity []float64 // kW per slot
	TempRoom []float64 // planned indoor temperature, °F
}

// DayAhead plans HVAC consumption over the forecast window. It always
// produces a schedule-tracking plan in closed form; when optimization is
// enabled and the house has any flexibility it refines that plan by
// dynamic programming over a discretized indoor temperature grid,
// degrading back to the closed form on any failure or timeout.
type DayAhead struct {
	cfg Config

	structure *model.Structure
	equipment *model.Equipment
	sched     *schedule.Schedule

	// tempGridSteps controls temperature discretization inside the comfort
	// range. Higher = more accurate, slower.
	tempGridSteps int
}

// NewDayAhead wires the planner to one house.
func NewDayAhead(cfg Config, s *model.Structure, eq *model.Equipment, sch *schedule.Schedule) *DayAhead {
	return &DayAhead{
		cfg:           cfg,
		structure:     s,
		equipment:     eq,
		sched:         sch,
		tempGridSteps: 24,
	}
}

// epsilon is the one-hour thermal retention factor of the whole house:
// the fraction of the indoor-outdoor temperature difference that survives
// one slot with no plant action.
func (d *DayAhead) epsilon() float64 {
	s := d.structure
	return math.Exp(-s.UA / (s.CA + s.CM))
}

// temperatureLimits builds the per-slot desired setpoints: the occupant
// schedule clipped into the comfort band around the current basepoints.
// The band is frozen once per plan so a mid-window basepoint change does
// not bend slots already planned.
func (d *DayAhead) temperatureLimits(simHour float64, dayOfWeek, window int) (desCool, desHeat []float64) {
	p := d.sched.Params
	band := p.Band(p.ComfortSettings(), d.sched.BasepointCooling, d.sched.BasepointHeating)

	desCool = make([]float64, window)
	desHeat = make([]float64, window)
	for t := 0; t < window; t++ {
		hour := simHour + float64(t) + 1.0/60
		cool, heat := p.ScheduledSetpoints(hour, dayOfWeek)
		desCool[t], desHeat[t] = band.Clip(cool, heat)
	}
	return desCool, desHeat
}

// Plan produces the day-ahead plan for one window. Optimization failures
// are logged and degrade to the closed form; only a malformed forecast is
// an error.
func (d *DayAhead) Plan(ctx context.Context, in Inputs) (Result, error) {
	if err := in.Forecast.Validate(); err != nil {
		return Result{}, fmt.Errorf("day-ahead plan: %w", err)
	}
	window := d.cfg.Window
	if in.Forecast.Window() < window {
		return Result{}, fmt.Errorf("day-ahead plan: forecast window %d is shorter than the configured %d", in.Forecast.Window(), window)
	}
	if len(in.Forecast.SolarGain) < window {
		return Result{}, fmt.Errorf("day-ahead plan: solar gain series has not been derived")
	}

	desCool, desHeat := d.temperatureLimits(in.SimHour, in.DayOfWeek, window)
	base := d.closedForm(in, desCool, desHeat)
	if !d.cfg.Optimize || in.State.Mode == model.ModeOff {
		return base, nil
	}

	// A house with no plant, no price spread or no temperature slack has
	// nothing to optimize over.
	stats := in.Forecast.Stats()
	c := d.sched.Params.ComfortSettings()
	rangeSum := c.RangeLowCool + c.RangeHighCool
	if in.State.Mode == model.ModeHeating {
		rangeSum = c.RangeLowHeat + c.RangeHighHeat
	}
	if in.HVACKW == 0 || stats.PriceDelta == 0 || rangeSum == 0 {
		return base, nil
	}

	// The solve gets its own deadline so one slow house degrades alone
	// instead of stalling its fleet worker.
	solveCtx := ctx
	if d.cfg.OptimizerBudgetMS > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, time.Duration(d.cfg.OptimizerBudgetMS)*time.Millisecond)
		defer cancel()
	}
	solveStart := time.Now()
	opt, err := d.optimize(solveCtx, in, desCool, desHeat, stats)
	metrics.PlanSolveSeconds.Observe(time.Since(solveStart).Seconds())
	if err != nil {
		metrics.PlanFallbacks.Inc()
		log.Debug().Err(err).Msg("day-ahead optimization degraded to schedule tracking")
		return base, nil
	}
	return opt, nil
}

// slotTransfer holds the per-slot constants of the thermal recursion
//
//	T[t] = eps·T[t-1] + (1-eps)·(Tout[t] + (gain[t] ± cop·q[t]·btu)/UA)
//
// so both the closed form and the optimizer invert the same physics.
type slotTransfer struct {
	tOut  float64
	gain  float64 // internal + solar gain, Btu/h
	plant float64 // signed Btu/h moved per kW bought
}

func (d *DayAhead) transfers(in Inputs, window int, heating bool) []slotTransfer {
	f := in.Forecast
	out := make([]slotTransfer, window)
	var cops []float64
	if heating {
		cops = d.equipment.HeatingCOPSeries(f.OutsideAirTemp[:window])
	} else {
		cops = d.equipment.CoolingCOPSeries(f.OutsideAirTemp[:window])
	}
	latents := f.LatentFactors(d.equipment.Params.LatentLoadFraction)
	for t := 0; t < window; t++ {
		tr := slotTransfer{
			tOut: f.OutsideAirTemp[t],
			gain: f.InternalGain[t] + f.SolarGain[t]*d.structure.SolarHeatgainFactor,
		}
		if heating {
			tr.plant = cops[t] * 1.02 * model.KWToBTUPerHr
		} else {
			tr.plant = -cops[t] * 0.98 * model.KWToBTUPerHr / latents[t]
		}
		out[t] = tr
	}
	return out
}

// quantityFor inverts the recursion: the kW needed to land on tNext given
// tPrev. Negative results mean the slot needs no plant at all.
func (d *DayAhead) quantityFor(tr slotTransfer, eps, tPrev, tNext float64) float64 {
	oneMinusEps := 1 - eps
	if oneMinusEps < 1e-9 || tr.plant == 0 {
		return 0
	}
	needed := (tNext-eps*tPrev)/oneMinusEps - tr.tOut
	return (needed*d.structure.UA - tr.gain) / tr.plant
}

// closedForm is the uncontrolled-load estimate: per slot, the quantity
// that holds the desired setpoint, solved separately for the cooling and
// heating balances with whichever branch is feasible taken. A hot slot
// needs cooling energy no matter which mode the thermostat happens to be
// in, so the plan never under-reports load in mode-mismatched weather.
func (d *DayAhead) closedForm(in Inputs, desCool, desHeat []float64) Result {
	window := len(desCool)
	res := Result{
		Quantity: make([]float64, window),
		TempRoom: make([]float64, window),
	}
	desired := desCool
	if in.State.Mode == model.ModeHeating {
		desired = desHeat
	}
	copy(res.TempRoom, desired)
	if in.State.Mode == model.ModeOff {
		return res
	}

	eps := d.epsilon()
	trsCool := d.transfers(in, window, false)
	trsHeat := d.transfers(in, window, true)
	tPrevCool := d.sched.BasepointCooling
	tPrevHeat := d.sched.BasepointHeating
	for t := 0; t < window; t++ {
		qCool := d.quantityFor(trsCool[t], eps, tPrevCool, desCool[t])
		qHeat := d.quantityFor(trsHeat[t], eps, tPrevHeat, desHeat[t])
		var q float64
		switch {
		case qCool > 0:
			q = qCool
			res.TempRoom[t] = desCool[t]
		case qHeat > 0:
			q = qHeat
			res.TempRoom[t] = desHeat[t]
		}
		if q > in.HVACKW {
			q = in.HVACKW
		}
		res.Quantity[t] = q
		tPrevCool = desCool[t]
		tPrevHeat = desHeat[t]
	}
	return res
}

// optimize refines the plan by dynamic programming over a temperature
// grid spanning the comfort range around each slot's desired setpoint.
// The stage cost trades purchase cost against comfort deviation, both
// scaled by the slider.
func (d *DayAhead) optimize(ctx context.Context, in Inputs, desCool, desHeat []float64, stats model.ForecastStats) (Result, error) {
	window := len(desCool)
	heating := in.State.Mode == model.ModeHeating
	c := d.sched.Params.ComfortSettings()

	desired := desCool
	rangeLow, rangeHigh := c.RangeLowCool, c.RangeHighCool
	tInit := d.sched.BasepointCooling
	if heating {
		desired = desHeat
		rangeLow, rangeHigh = c.RangeLowHeat, c.RangeHighHeat
		tInit = d.sched.BasepointHeating
	}

	slider := d.sched.Params.Slider
	rangeLimitSum := d.sched.Params.RangeLowLimit + d.sched.Params.RangeHighLimit
	if rangeLimitSum == 0 {
		rangeLimitSum = 1
	}
	eps := d.epsilon()
	trs := d.transfers(in, window, heating)

	n := d.tempGridSteps + 1
	tempAt := func(t, i int) float64 {
		lo := desired[t] - rangeLow
		return lo + (rangeLow+rangeHigh)*float64(i)/float64(d.tempGridSteps)
	}
	stageCost := func(t int, temp, q float64) float64 {
		price := slider * (in.Forecast.Price[t] - stats.PriceMin) / stats.PriceDelta * (q / in.HVACKW)
		dev := (temp - desired[t]) / rangeLimitSum
		wear := 0.001 * slider * (q / in.HVACKW) * (q / in.HVACKW)
		return price + 0.1*dev*dev + wear
	}

	const inf = math.MaxFloat64
	dp := make([]float64, n)
	next := make([]float64, n)
	parent := make([][]int, window)
	qChosen := make([][]float64, window)
	for t := range parent {
		parent[t] = make([]int, n)
		qChosen[t] = make([]float64, n)
	}

	// First slot transitions from the single initial temperature.
	for i := 0; i < n; i++ {
		temp := tempAt(0, i)
		q := d.quantityFor(trs[0], eps, tInit, temp)
		if q < -1e-9 || q > in.HVACKW+1e-9 {
			dp[i] = inf
			parent[0][i] = -1
			continue
		}
		q = clamp(q, 0, in.HVACKW)
		dp[i] = stageCost(0, temp, q)
		parent[0][i] = 0
		qChosen[0][i] = q
	}

	for t := 1; t < window; t++ {
		select {
		case <-ctx.Done():
			return Result{}, fmt.Errorf("optimizer budget exhausted at slot %d: %w", t, ctx.Err())
		default:
		}
		for i := 0; i < n; i++ {
			next[i] = inf
			parent[t][i] = -1
			temp := tempAt(t, i)
			for j := 0; j < n; j++ {
				if dp[j] == inf {
					continue
				}
				q := d.quantityFor(trs[t], eps, tempAt(t-1, j), temp)
				if q < -1e-9 || q > in.HVACKW+1e-9 {
					continue
				}
				q = clamp(q, 0, in.HVACKW)
				v := dp[j] + stageCost(t, temp, q)
				if v < next[i] {
					next[i] = v
					parent[t][i] = j
					qChosen[t][i] = q
				}
			}
		}
		dp, next = next, dp
	}

	best, bestIdx := inf, -1
	for i, v := range dp {
		if v < best {
			best, bestIdx = v, i
		}
	}
	if bestIdx < 0 {
		return Result{}, fmt.Errorf("no feasible temperature trajectory")
	}

	res := Result{
		Quantity: make([]float64, window),
		TempRoom: make([]float64, window),
	}
	for t, i := window-1, bestIdx; t >= 0; t-- {
		res.TempRoom[t] = tempAt(t, i)
		res.Quantity[t] = qChosen[t][i]
		i = parent[t][i]
	}
	return res, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
