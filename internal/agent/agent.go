// Package agent composes one house's thermal model, occupant schedule and
// bidding strategies into a single market participant.
package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/schedule"
	"github.com/nathantgray/tesp/internal/strategy"
)

// Agent is one house participating in the retail energy market. It owns
// the canonical physical state and the thermostat setpoints in force;
// planning and bidding read that state but never mutate it.
type Agent struct {
	Name string

	Structure *model.Structure
	Equipment *model.Equipment
	Schedule  *schedule.Schedule
	ETP       *model.ETP
	State     *model.AssetState

	planner *strategy.DayAhead
	bidder  *strategy.RealTime
	cfg     strategy.Config

	plan    strategy.Result
	lastBid strategy.Bid
	bidOpen bool

	coolingSetpoint float64
	heatingSetpoint float64
}

// New builds an agent from house parameters. Advisory parameter warnings
// are logged under the house name; table lookup failures and a singular
// thermal model come back as errors.
func New(name string, sp model.StructureParams, ep model.EquipmentParams, schp schedule.Params, cfg strategy.Config) (*Agent, error) {
	for _, w := range sp.Warnings() {
		log.Warn().Str("house", name).Msg(w)
	}
	for _, w := range ep.Warnings() {
		log.Warn().Str("house", name).Msg(w)
	}
	structure, err := model.NewStructure(sp)
	if err != nil {
		return nil, fmt.Errorf("house %s: %w", name, err)
	}
	equipment := model.NewEquipment(ep, structure)
	etp, err := model.NewETP(structure)
	if err != nil {
		return nil, fmt.Errorf("house %s: %w", name, err)
	}
	sched := schedule.New(schp)
	mid := (sched.BasepointCooling + sched.BasepointHeating) / 2
	return &Agent{
		Name:            name,
		Structure:       structure,
		Equipment:       equipment,
		Schedule:        sched,
		ETP:             etp,
		State:           &model.AssetState{IndoorAirTemp: mid, MassTemp: mid, Mode: model.ModeOff},
		planner:         strategy.NewDayAhead(cfg, structure, equipment, sched),
		bidder:          strategy.NewRealTime(cfg, structure, equipment, sched, etp),
		cfg:             cfg,
		coolingSetpoint: sched.BasepointCooling,
		heatingSetpoint: sched.BasepointHeating,
	}, nil
}

// SetMode selects the thermostat mode for the coming periods. Planning,
// bidding and hysteresis all key off it.
func (a *Agent) SetMode(m model.ThermostatMode) { a.State.Mode = m }

// Period is the real-time market cadence this agent bids on.
func (a *Agent) Period() time.Duration { return a.cfg.Period() }

// Window is the number of day-ahead slots the agent plans over.
func (a *Agent) Window() int { return a.cfg.Window }

func (a *Agent) inputs(f *model.Forecast, simHour float64, dayOfWeek int) strategy.Inputs {
	return strategy.Inputs{
		Forecast:  f,
		State:     a.State,
		HVACKW:    a.State.HVACKW,
		SimHour:   simHour,
		DayOfWeek: dayOfWeek,
	}
}

// PlanWindow moves the basepoints to the scheduled pair for this hour,
// refreshes the rated plant draw against the first forecast temperature
// and re-plans the window.
func (a *Agent) PlanWindow(ctx context.Context, f *model.Forecast, simHour float64, dayOfWeek int) error {
	cool, heat := a.Schedule.Params.ScheduledSetpoints(simHour, dayOfWeek)
	if a.Schedule.ChangeBasepoint(cool, heat) {
		a.Schedule.CorrectBasepoints()
		a.coolingSetpoint = a.Schedule.BasepointCooling
		a.heatingSetpoint = a.Schedule.BasepointHeating
	}
	if f.Window() > 0 {
		a.State.HVACKW = a.Equipment.RatedKW(a.State.Mode, f.OutsideAirTemp[0])
	}
	plan, err := a.planner.Plan(ctx, a.inputs(f, simHour, dayOfWeek))
	if err != nil {
		return fmt.Errorf("house %s: plan: %w", a.Name, err)
	}
	a.plan = plan
	return nil
}

// Plan returns the standing day-ahead result.
func (a *Agent) Plan() strategy.Result { return a.plan }

// FormBid produces the four-point bid for the coming dispatch period from
// the standing plan.
func (a *Agent) FormBid(f *model.Forecast, simHour float64, dayOfWeek int) (strategy.Bid, error) {
	bid, err := a.bidder.FormBid(a.inputs(f, simHour, dayOfWeek), a.plan)
	if err != nil {
		return strategy.ZeroBid(), fmt.Errorf("house %s: bid: %w", a.Name, err)
	}
	a.lastBid = bid
	a.bidOpen = !bid.IsZero()
	return bid, nil
}

// AcceptAward settles the standing bid at the cleared price: the awarded
// quantity is read off the submitted curve and mapped back to the
// thermostat setpoint that realizes it. The awarded quantity is returned.
// With no open bid the setpoints stay where they are and the award is 0.
func (a *Agent) AcceptAward(price float64) float64 {
	if !a.bidOpen {
		return 0
	}
	a.bidOpen = false
	q := a.lastBid.QuantityAt(price)
	sp, ok := a.bidder.SetpointForQuantity(q)
	if !ok {
		return q
	}
	switch a.State.Mode {
	case model.ModeCooling:
		a.coolingSetpoint = sp
	case model.ModeHeating:
		a.heatingSetpoint = sp
	}
	return q
}

// Setpoints is the thermostat band currently in force.
func (a *Agent) Setpoints() model.Setpoints {
	return model.Setpoints{
		Cooling:  a.coolingSetpoint,
		Heating:  a.heatingSetpoint,
		Deadband: a.Schedule.Params.Deadband,
	}
}

// Advance computes the heat flows for env and steps the canonical state
// over dt under the setpoints in force.
func (a *Agent) Advance(env *model.Environment, dt time.Duration) {
	env.ComputeHeatFlows(a.Structure, a.Equipment, a.State)
	a.ETP.Step(a.State, env, a.Setpoints(), dt)
}
