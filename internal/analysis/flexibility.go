package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/schedule"
)

// FlexibilityPotential is a house-level summary you can use for ranking.
// It does not depend on market participation; it combines raw price stats
// with an "oracle" savings bound for the house's equivalent thermal battery.
type FlexibilityPotential struct {
	House  string
	Series string

	Slots int

	MinPrice  float64
	MaxPrice  float64
	MeanPrice float64
	P05Price  float64
	P95Price  float64

	SpreadP95P05 float64

	// StorageKWH is the energy the thermal mass can bank while the indoor
	// temperature stays inside the comfort band. PowerKW is the rated
	// plant draw that moves it.
	StorageKWH float64
	PowerKW    float64

	// OracleSavings is the arbitrage value ($) of the thermal battery:
	// - perfect price foresight over hourly slots
	// - no standing loss, charge bounds [0, StorageKWH], start half full
	// - dispatch choices {-PowerKW, 0, +PowerKW} each slot
	OracleSavings float64
}

// ComputePotential scores one house against a forecast window.
func ComputePotential(house, series string, s *model.Structure, eq *model.Equipment, sch *schedule.Schedule, f *model.Forecast) FlexibilityPotential {
	p := FlexibilityPotential{House: house, Series: series}
	if f == nil || f.Window() == 0 {
		return p
	}
	p.Slots = f.Window()

	stats := f.Stats()
	p.MinPrice = stats.PriceMin
	p.MaxPrice = stats.PriceMax
	p.MeanPrice = stats.PriceMean

	sorted := make([]float64, len(f.Price))
	copy(sorted, f.Price)
	sort.Float64s(sorted)
	p.P05Price = stat.Quantile(0.05, stat.LinInterp, sorted, nil)
	p.P95Price = stat.Quantile(0.95, stat.LinInterp, sorted, nil)
	p.SpreadP95P05 = p.P95Price - p.P05Price

	band := sch.Params.Band(sch.Params.ComfortSettings(), sch.BasepointCooling, sch.BasepointHeating)
	swing := band.TempMaxCool - band.TempMinCool
	p.StorageKWH = (s.CA + s.CM) * swing / model.KWToBTUPerHr
	p.PowerKW = eq.RatedKW(model.ModeCooling, stats.TempMax)

	p.OracleSavings = oracleSavings(f.Price, p.StorageKWH, p.PowerKW)
	return p
}

// oracleSavings computes a best-effort upper bound using a simple DP:
// charge discretized into steps of one slot's dispatch energy.
func oracleSavings(prices []float64, storageKWH, powerKW float64) float64 {
	if len(prices) == 0 || storageKWH <= 0 || powerKW <= 0 {
		return 0
	}
	stepKWH := powerKW // hourly slots, so one slot moves powerKW kWh
	if storageKWH < stepKWH {
		stepKWH = storageKWH
	}
	steps := int(math.Round(storageKWH / stepKWH))
	if steps < 1 {
		steps = 1
	}
	// Charge grid: 0..steps (inclusive) maps to stored = i*stepKWH.
	nStates := steps + 1
	negInf := -1e100
	dp := make([]float64, nStates)
	next := make([]float64, nStates)
	for i := range dp {
		dp[i] = negInf
	}
	// initial charge 0.5 snapped to nearest state
	init := int(math.Round(0.5 * float64(steps)))
	if init < 0 {
		init = 0
	}
	if init > steps {
		init = steps
	}
	dp[init] = 0

	for _, price := range prices {
		for i := range next {
			next[i] = negInf
		}

		for idx := 0; idx <= steps; idx++ {
			if dp[idx] <= negInf/2 {
				continue
			}

			// Idle
			if dp[idx] > next[idx] {
				next[idx] = dp[idx]
			}

			// Bank: run the plant a slot early, buying stepKWH now.
			if idx < steps {
				gain := -(price * stepKWH)
				if dp[idx]+gain > next[idx+1] {
					next[idx+1] = dp[idx] + gain
				}
			}

			// Coast: banked energy carries the slot, avoiding a buy.
			if idx > 0 {
				gain := price * stepKWH
				if dp[idx]+gain > next[idx-1] {
					next[idx-1] = dp[idx] + gain
				}
			}
		}
		dp, next = next, dp
	}

	best := negInf
	for _, v := range dp {
		if v > best {
			best = v
		}
	}
	if best <= negInf/2 {
		return 0
	}
	return best
}
