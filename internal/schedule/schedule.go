// Package schedule holds the occupant thermostat schedule: six daily
// periods with cooling and heating setpoints, the comfort-to-price slider,
// and the setpoint band the bidding strategy is allowed to move within.
package schedule

import (
	"github.com/rs/zerolog/log"
)

// Params is the schedule portion of a house configuration. Period starts
// are hours of day; a period runs from its start to the next period's
// start. Weekdays use the wakeup/daylight/evening/night cycle, weekends a
// two-period day/night cycle.
type Params struct {
	WakeupStart       float64 `yaml:"wakeup_start" default:"6.5" validate:"gte=0,lte=24"`
	DaylightStart     float64 `yaml:"daylight_start" default:"9" validate:"gte=0,lte=24"`
	EveningStart      float64 `yaml:"evening_start" default:"17" validate:"gte=0,lte=24"`
	NightStart        float64 `yaml:"night_start" default:"22" validate:"gte=0,lte=24"`
	WeekendDayStart   float64 `yaml:"weekend_day_start" default:"8" validate:"gte=0,lte=24"`
	WeekendNightStart float64 `yaml:"weekend_night_start" default:"23" validate:"gte=0,lte=24"`

	WakeupSetCool       float64 `yaml:"wakeup_set_cool" default:"75"`
	DaylightSetCool     float64 `yaml:"daylight_set_cool" default:"78"`
	EveningSetCool      float64 `yaml:"evening_set_cool" default:"75"`
	NightSetCool        float64 `yaml:"night_set_cool" default:"73"`
	WeekendDaySetCool   float64 `yaml:"weekend_day_set_cool" default:"76"`
	WeekendNightSetCool float64 `yaml:"weekend_night_set_cool" default:"73"`

	WakeupSetHeat       float64 `yaml:"wakeup_set_heat" default:"70"`
	DaylightSetHeat     float64 `yaml:"daylight_set_heat" default:"66"`
	EveningSetHeat      float64 `yaml:"evening_set_heat" default:"70"`
	NightSetHeat        float64 `yaml:"night_set_heat" default:"67"`
	WeekendDaySetHeat   float64 `yaml:"weekend_day_set_heat" default:"69"`
	WeekendNightSetHeat float64 `yaml:"weekend_night_set_heat" default:"67"`

	Deadband float64 `yaml:"deadband" default:"2" validate:"gt=0"`
	// Slider trades comfort for price response: 0 keeps the occupant
	// schedule exactly, 1 gives the strategy the full range limits.
	Slider float64 `yaml:"slider" default:"0.5" validate:"gte=0,lte=1"`

	RampHighLimit  float64 `yaml:"ramp_high_limit" default:"5"`
	RampLowLimit   float64 `yaml:"ramp_low_limit" default:"5"`
	RangeHighLimit float64 `yaml:"range_high_limit" default:"5"`
	RangeLowLimit  float64 `yaml:"range_low_limit" default:"5"`
}

// Nominal basepoint bounds for advisory logging.
const (
	nominalCoolingMin = 65.0
	nominalCoolingMax = 85.0
	nominalHeatingMin = 60.0
	nominalHeatingMax = 85.0
)

// ScheduledSetpoints returns the occupant cooling and heating setpoints
// for the given hour. The hour may run up to two days past the current
// one (0..72) so day-ahead lookahead can read future periods; dayOfWeek
// counts Monday as 0.
func (p Params) ScheduledSetpoints(hourOfDay float64, dayOfWeek int) (cooling, heating float64) {
	if hourOfDay > 23 && hourOfDay < 48 {
		hourOfDay -= 24
		dayOfWeek++
	} else if hourOfDay > 47 {
		hourOfDay -= 48
		dayOfWeek += 2
	}
	if dayOfWeek > 6 {
		dayOfWeek -= 7
	}

	if dayOfWeek > 4 {
		if p.WeekendDayStart <= hourOfDay && hourOfDay < p.WeekendNightStart {
			return p.WeekendDaySetCool, p.WeekendDaySetHeat
		}
		return p.WeekendNightSetCool, p.WeekendNightSetHeat
	}

	switch {
	case hourOfDay < p.WakeupStart:
		return p.NightSetCool, p.NightSetHeat
	case hourOfDay < p.DaylightStart:
		return p.WakeupSetCool, p.WakeupSetHeat
	case hourOfDay < p.EveningStart:
		return p.DaylightSetCool, p.DaylightSetHeat
	case hourOfDay < p.NightStart:
		return p.EveningSetCool, p.EveningSetHeat
	default:
		return p.NightSetCool, p.NightSetHeat
	}
}

// Comfort is the slider-scaled flexibility around the basepoints: ranges
// bound how far the strategy may move the setpoint, ramps shape how
// aggressively price moves it within that range.
type Comfort struct {
	RangeHighCool float64
	RangeLowCool  float64
	RangeHighHeat float64
	RangeLowHeat  float64

	RampHighCool float64
	RampLowCool  float64
	RampHighHeat float64
	RampLowHeat  float64
}

// ComfortSettings scales the configured limits by the slider. A slider of
// zero pins every range and ramp to exactly zero, so the occupant
// schedule is followed verbatim. Heating ramps swap the high and low
// limits because price pushes heating setpoints in the opposite
// direction from cooling ones.
func (p Params) ComfortSettings() Comfort {
	c := Comfort{
		RangeHighCool: p.RangeHighLimit * p.Slider,
		RangeLowCool:  p.RangeLowLimit * p.Slider,
		RangeHighHeat: p.RangeHighLimit * p.Slider,
		RangeLowHeat:  p.RangeLowLimit * p.Slider,
	}
	if p.Slider != 0 {
		c.RampHighCool = p.RampHighLimit * (1 - p.Slider)
		c.RampLowCool = p.RampLowLimit * (1 - p.Slider)
		c.RampHighHeat = p.RampLowLimit * (1 - p.Slider)
		c.RampLowHeat = p.RampHighLimit * (1 - p.Slider)
	}
	return c
}

// separationMargin is the minimum half-gap kept between the cooling and
// heating sides so the plant cannot be asked to heat and cool at once.
func (p Params) separationMargin() float64 {
	return p.Deadband/2 + 0.5
}

// separate pushes an overlapping cooling/heating pair apart around their
// midpoint. Returns the pair unchanged when already separated.
func separate(cooling, heating, margin float64) (float64, float64) {
	if cooling-margin < heating+margin {
		mid := (cooling + heating) / 2
		return mid + margin, mid - margin
	}
	return cooling, heating
}

// Band is the indoor temperature range the strategy may plan within,
// derived from the basepoints and comfort settings.
type Band struct {
	TempMaxCool float64
	TempMinCool float64
	TempMaxHeat float64
	TempMinHeat float64
}

// Band derives the planning band around the given basepoints. The inner
// edges (cooling low, heating high) are separated like setpoints and then
// clamped so neither crosses its own basepoint.
func (p Params) Band(c Comfort, coolingBasepoint, heatingBasepoint float64) Band {
	b := Band{
		TempMaxCool: coolingBasepoint + c.RangeHighCool,
		TempMinCool: coolingBasepoint - c.RangeLowCool,
		TempMaxHeat: heatingBasepoint + c.RangeHighHeat,
		TempMinHeat: heatingBasepoint - c.RangeLowHeat,
	}
	b.TempMinCool, b.TempMaxHeat = separate(b.TempMinCool, b.TempMaxHeat, p.separationMargin())
	if b.TempMinCool > coolingBasepoint {
		b.TempMinCool = coolingBasepoint
	}
	if b.TempMaxHeat < heatingBasepoint {
		b.TempMaxHeat = heatingBasepoint
	}
	return b
}

// Clip bounds a scheduled setpoint pair to the band.
func (b Band) Clip(cooling, heating float64) (float64, float64) {
	if cooling > b.TempMaxCool {
		cooling = b.TempMaxCool
	}
	if cooling < b.TempMinCool {
		cooling = b.TempMinCool
	}
	if heating > b.TempMaxHeat {
		heating = b.TempMaxHeat
	}
	if heating < b.TempMinHeat {
		heating = b.TempMinHeat
	}
	return cooling, heating
}

// Schedule tracks the occupant schedule plus the basepoints currently in
// force, which move each hour as the scheduled period changes.
type Schedule struct {
	Params Params

	BasepointCooling float64
	BasepointHeating float64
}

// New starts the basepoints at the night period; the first basepoint
// change aligns them with the clock.
func New(p Params) *Schedule {
	return &Schedule{
		Params:           p,
		BasepointCooling: p.NightSetCool,
		BasepointHeating: p.NightSetHeat,
	}
}

// CorrectBasepoints separates the stored basepoints if the schedule put
// them too close together.
func (s *Schedule) CorrectBasepoints() {
	s.BasepointCooling, s.BasepointHeating = separate(
		s.BasepointCooling, s.BasepointHeating, s.Params.separationMargin())
}

// ChangeBasepoint moves the basepoints to a new scheduled pair and
// reports whether either moved by more than 0.1°F. Values outside the
// nominal residential range are logged and kept; a misconfigured house
// must not halt the fleet.
func (s *Schedule) ChangeBasepoint(cooling, heating float64) bool {
	if cooling < nominalCoolingMin || cooling > nominalCoolingMax {
		log.Debug().Float64("cooling_basepoint", cooling).
			Msg("cooling basepoint outside nominal residential range")
	}
	if heating < nominalHeatingMin || heating > nominalHeatingMax {
		log.Debug().Float64("heating_basepoint", heating).
			Msg("heating basepoint outside nominal residential range")
	}
	moved := abs(cooling-s.BasepointCooling) > 0.1 || abs(heating-s.BasepointHeating) > 0.1
	s.BasepointCooling = cooling
	s.BasepointHeating = heating
	return moved
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
