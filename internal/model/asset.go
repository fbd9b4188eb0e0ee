package model

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
)

// ETP is the two-state equivalent thermal parameter model of the house:
// an indoor air node and a structure mass node coupled through HM, with UA
// to the outside air.
//
//	x = [indoor air temp, mass temp]
//	dx/dt = A·x + B
//
// A depends only on the frozen structure parameters, so it and its inverse
// are computed once. B carries the boundary conditions and is rebuilt from
// the environment every step. All rate terms are per hour, matching the
// Btu/h units of the conductances.
type ETP struct {
	structure *Structure
	a         *mat.Dense
	aInv      *mat.Dense
}

// NewETP builds the system matrix and its inverse. A structure with zero
// air or mass capacity yields a singular system, which is a configuration
// error.
func NewETP(s *Structure) (*ETP, error) {
	a := mat.NewDense(2, 2, nil)
	if s.CA != 0 {
		a.Set(0, 0, -(s.UA+s.HM)/s.CA)
		a.Set(0, 1, s.HM/s.CA)
	}
	if s.CM != 0 {
		a.Set(1, 0, s.HM/s.CM)
		a.Set(1, 1, -s.HM/s.CM)
	}
	var aInv mat.Dense
	if err := aInv.Inverse(a); err != nil {
		return nil, fmt.Errorf("thermal system matrix is singular: %w", err)
	}
	return &ETP{structure: s, a: a, aInv: &aInv}, nil
}

// Structure returns the frozen structure this model was built from.
func (m *ETP) Structure() *Structure {
	return m.structure
}

// Setpoints is the thermostat band applied for hysteresis after a step.
type Setpoints struct {
	Cooling  float64 // °F
	Heating  float64 // °F
	Deadband float64 // °F
}

// inputVectors builds the forcing vectors for the running and idle plant
// branches from the current environment heat flows.
func (m *ETP) inputVectors(env *Environment) (bOn, bOff *mat.VecDense) {
	s := m.structure
	bOn = mat.NewVecDense(2, nil)
	bOff = mat.NewVecDense(2, nil)
	if s.CA != 0 {
		base := s.UA * env.OutsideAirTemp / s.CA
		bOn.SetVec(0, base+env.QaOn/s.CA)
		bOff.SetVec(0, base+env.QaOff/s.CA)
	}
	if s.CM != 0 {
		bOn.SetVec(1, env.Qm/s.CM)
		bOff.SetVec(1, env.Qm/s.CM)
	}
	return bOn, bOff
}

// Step advances the thermal state by dt using the exact solution of the
// linear system (matrix exponential, not a finite-difference
// approximation, since A is constant over the step), then applies
// thermostat hysteresis. It mutates st in place and returns it so
// multi-step lookahead chains calls.
//
// The plant cannot change state mid-step; finer steps trade computation
// for switching fidelity.
func (m *ETP) Step(st *AssetState, env *Environment, sp Setpoints, dt time.Duration) *AssetState {
	bOn, bOff := m.inputVectors(env)
	b := bOff
	if st.HVACOn {
		b = bOn
	}

	var at mat.Dense
	at.Scale(dt.Hours(), m.a)
	var e mat.Dense
	e.Exp(&at)

	x := mat.NewVecDense(2, []float64{st.IndoorAirTemp, st.MassTemp})
	var axb mat.VecDense
	axb.MulVec(m.a, x)
	axb.AddVec(&axb, b)

	var eaxb mat.VecDense
	eaxb.MulVec(&e, &axb)

	var xNew mat.VecDense
	xNew.MulVec(m.aInv, &eaxb)
	var aib mat.VecDense
	aib.MulVec(m.aInv, b)
	xNew.SubVec(&xNew, &aib)

	st.IndoorAirTemp = xNew.AtVec(0)
	st.MassTemp = xNew.AtVec(1)

	m.applyHysteresis(st, sp)
	return st
}

// applyHysteresis flips the plant only at deadband boundary crossings. The
// thermostat mode itself is exogenous and never changes here.
func (m *ETP) applyHysteresis(st *AssetState, sp Setpoints) {
	half := sp.Deadband / 2
	if st.HVACOn {
		if (st.Mode == ModeCooling && st.IndoorAirTemp < sp.Cooling-half) ||
			(st.Mode == ModeHeating && st.IndoorAirTemp > sp.Heating+half) {
			st.HVACOn = false
		}
		return
	}
	if (st.Mode == ModeCooling && st.IndoorAirTemp > sp.Cooling+half) ||
		(st.Mode == ModeHeating && st.IndoorAirTemp < sp.Heating-half) {
		st.HVACOn = true
	}
}
