package strategy

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/schedule"
)

// RealTime forms the four-point bid each market period. It tracks the
// day-ahead plan, smoothing the hourly plan into the shorter periods when
// interpolation is on, and prices the bid off the forecast price spread.
type RealTime struct {
	cfg Config

	structure *model.Structure
	equipment *model.Equipment
	sched     *schedule.Schedule
	etp       *model.ETP

	// Interpolation state. minuteCount walks the hour in period-sized
	// steps; the deltas re-anchor on the plan at the top and middle of
	// each hour.
	initialized bool
	minuteCount int
	previousQ   float64
	previousT   float64
	deltaQ      float64
	deltaT      float64

	// Last lookahead curves, kept so an awarded quantity can be mapped
	// back to the setpoint that consumes it.
	lastQCurve    []float64
	lastTempCurve []float64
}

// NewRealTime wires the bidder to one house.
func NewRealTime(cfg Config, s *model.Structure, eq *model.Equipment, sch *schedule.Schedule, etp *model.ETP) *RealTime {
	return &RealTime{cfg: cfg, structure: s, equipment: eq, sched: sch, etp: etp}
}

// FormBid produces the bid for the coming period. Houses that cannot
// respond this period (plant off, no electrical plant for the active
// mode) bid zero rather than erroring, so one house never stalls a fleet
// round.
func (r *RealTime) FormBid(in Inputs, plan Result) (Bid, error) {
	r.lastQCurve, r.lastTempCurve = nil, nil
	if err := in.Forecast.Validate(); err != nil {
		return ZeroBid(), err
	}
	if in.State.Mode == model.ModeOff || in.HVACKW <= 0 {
		return ZeroBid(), nil
	}
	if in.State.Mode == model.ModeHeating && r.equipment.Params.HeatingSystem != model.HeatingHeatPump {
		return ZeroBid(), nil
	}
	if len(plan.Quantity) < 2 || len(plan.TempRoom) < 2 {
		return ZeroBid(), nil
	}

	qOpt, tOpt := r.trackPlan(plan, in.State.IndoorAirTemp)
	candidates := r.candidates(in, tOpt)
	qCurve := r.lookahead(in, candidates)
	r.lastQCurve, r.lastTempCurve = qCurve, candidates
	bid := r.createBid(in.Forecast.Stats(), qCurve, qOpt, in.HVACKW)
	return bid, nil
}

// SetpointForQuantity maps an awarded quantity back onto the last
// lookahead curve by linear interpolation, returning the setpoint that
// would consume it. Reports false before any bid has been formed this
// period.
func (r *RealTime) SetpointForQuantity(q float64) (float64, bool) {
	if len(r.lastQCurve) == 0 {
		return 0, false
	}
	type pair struct{ q, temp float64 }
	pairs := make([]pair, len(r.lastQCurve))
	for i := range pairs {
		pairs[i] = pair{r.lastQCurve[i], r.lastTempCurve[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].q < pairs[j].q })

	if q <= pairs[0].q {
		return pairs[0].temp, true
	}
	last := pairs[len(pairs)-1]
	if q >= last.q {
		return last.temp, true
	}
	for i := 1; i < len(pairs); i++ {
		lo, hi := pairs[i-1], pairs[i]
		if q <= hi.q {
			if hi.q == lo.q {
				return lo.temp, true
			}
			frac := (q - lo.q) / (hi.q - lo.q)
			return lo.temp + frac*(hi.temp-lo.temp), true
		}
	}
	return last.temp, true
}

// trackPlan picks the optimal quantity and temperature for this period.
// With interpolation the plan's first two slots are blended in
// period-sized increments, re-anchored at the top and middle of the hour;
// without it the leading slot is used as-is. The temperature track starts
// from the room itself, the quantity track from zero.
func (r *RealTime) trackPlan(plan Result, indoorTemp float64) (qOpt, tOpt float64) {
	if !r.cfg.Interpolation {
		return plan.Quantity[0], plan.TempRoom[0]
	}
	if !r.initialized {
		r.previousT = indoorTemp
		r.initialized = true
	}

	step := int(r.cfg.Period().Minutes())
	switch {
	case r.minuteCount == 0:
		r.deltaQ = plan.Quantity[0] - r.previousQ
		r.deltaT = plan.TempRoom[0] - r.previousT
	case r.minuteCount >= 30 && r.minuteCount-step < 30:
		// First period at or past the half hour; periods that do not
		// land on minute 30 exactly still re-anchor on the next slot.
		r.deltaQ = (plan.Quantity[1] - r.previousQ) * 0.5
		r.deltaT = (plan.TempRoom[1] - r.previousT) * 0.5
	}

	frac := r.cfg.Period().Minutes() / 30
	qOpt = r.previousQ + r.deltaQ*frac
	tOpt = r.previousT + r.deltaT*frac
	r.previousQ = qOpt
	r.previousT = tOpt
	r.minuteCount = (r.minuteCount + step) % 60
	return qOpt, tOpt
}

// candidates spreads five setpoints around the plan temperature, slider/4
// apart. The first is pinned just past the deadband edge the plant is
// about to cross, so the lookahead always includes the must-run (or
// must-idle) extreme.
func (r *RealTime) candidates(in Inputs, tOpt float64) []float64 {
	slider := r.sched.Params.Slider
	deadband := r.sched.Params.Deadband
	cooling := in.State.Mode == model.ModeCooling

	candidates := make([]float64, 5)
	for i := range candidates {
		candidates[i] = tOpt + (float64(i)-2)/4*slider
	}
	if (cooling && in.State.HVACOn) || (!cooling && !in.State.HVACOn) {
		candidates[0] = in.State.IndoorAirTemp + deadband/2
	} else {
		candidates[0] = in.State.IndoorAirTemp - deadband/2
	}
	return candidates
}

// lookahead simulates the coming delivery interval at each candidate
// setpoint and returns the average plant draw each would take.
func (r *RealTime) lookahead(in Inputs, candidates []float64) []float64 {
	deadband := r.sched.Params.Deadband
	horizon := r.cfg.BidDelay() + r.cfg.Period()
	subStep := horizon / 10

	env := &model.Environment{
		OutsideAirTemp: in.Forecast.OutsideAirTemp[0],
		SolarGainFlux:  in.Forecast.SolarGain[0],
		Humidity:       in.Forecast.Humidity[0],
	}

	curve := make([]float64, len(candidates))
	for i, cand := range candidates {
		st := in.State.Clone()
		e := env.Clone()
		e.ComputeHeatFlows(r.structure, r.equipment, st)
		sp := model.Setpoints{Cooling: cand, Heating: cand, Deadband: deadband}

		var q float64
		for k := 0; k < 10; k++ {
			if st.HVACOn {
				q += in.HVACKW / 10
			}
			r.etp.Step(st, e, sp, subStep)
		}
		curve[i] = q
	}
	return curve
}

// createBid shapes the four-point curve: the quantity extremes of the
// lookahead bracket the bid, the plan quantity anchors the middle pair,
// and the forecast price spread sets the slope. The profit margin pushes
// the buy side up and the sell side down.
func (r *RealTime) createBid(stats model.ForecastStats, qCurve []float64, qOpt, hvacKW float64) Bid {
	margin := r.cfg.ProfitMarginIntercept / 100 * stats.PriceDelta
	qMin := floats.Min(qCurve)
	qMax := floats.Max(qCurve)

	var b Bid
	if qMin != qMax {
		slope := stats.PriceDelta / (0 - hvacKW) * (1 + r.cfg.ProfitMarginSlope/100)
		intercept := stats.PriceFirst - slope*qOpt

		var qs [4]float64
		if qMin < qOpt && qOpt < qMax {
			qs = [4]float64{qMin, qOpt, qOpt, qMax}
		} else {
			qs = [4]float64{qMin, qMin, qMax, qMax}
		}
		for i := range b {
			b[i] = BidPoint{Quantity: qs[i], Price: qs[i]*slope + intercept}
		}
		b[0].Price += margin
		b[1].Price += margin
		b[2].Price -= margin
		b[3].Price -= margin
	} else {
		b = Bid{
			{Quantity: qMin, Price: stats.PriceMax + margin},
			{Quantity: qMin, Price: stats.PriceMax + margin},
			{Quantity: qMax, Price: stats.PriceMin - margin},
			{Quantity: qMax, Price: stats.PriceMin - margin},
		}
	}
	return clampBid(b, hvacKW, r.cfg.PriceCap)
}

// Horizon is the stretch of time one bid commits: from submission now to
// the end of the delivered period.
func (r *RealTime) Horizon() time.Duration {
	return r.cfg.BidDelay() + r.cfg.Period()
}
