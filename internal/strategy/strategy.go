// Package strategy turns a house's thermal model, occupant schedule and
// forecast window into market bids: a day-ahead plan over the full window
// and a four-point real-time bid each market period.
package strategy

import (
	"sort"
	"time"

	"github.com/nathantgray/tesp/internal/model"
)

// Config tunes the bidding pipeline. Durations are carried as integer
// seconds so house YAML stays plain.
type Config struct {
	ProfitMarginIntercept float64 `yaml:"profit_margin_intercept" default:"10" validate:"gte=0"` // percent of forecast price spread
	ProfitMarginSlope     float64 `yaml:"profit_margin_slope" default:"0" validate:"gte=0"`      // percent steepening of the bid curve
	PriceCap              float64 `yaml:"price_cap" default:"1.0" validate:"gt=0"`               // $/kWh ceiling on bid prices
	Window                int     `yaml:"window" default:"48" validate:"gte=2"`                  // day-ahead slots
	Interpolation         bool    `yaml:"interpolation" default:"true"`                          // smooth DA quantities into RT periods
	Optimize              bool    `yaml:"optimize" default:"true"`                               // refine the DA plan, not just track the schedule
	BidDelaySeconds       int     `yaml:"bid_delay_seconds" default:"30" validate:"gte=0"`       // gap between bid submission and delivery
	PeriodSeconds         int     `yaml:"period_seconds" default:"300" validate:"gt=0"`          // real-time market period
	OptimizerBudgetMS     int     `yaml:"optimizer_budget_ms" default:"2000" validate:"gt=0"`    // per-plan time budget before degrading
}

// BidDelay returns the submission-to-delivery gap.
func (c Config) BidDelay() time.Duration { return time.Duration(c.BidDelaySeconds) * time.Second }

// Period returns the real-time market period.
func (c Config) Period() time.Duration { return time.Duration(c.PeriodSeconds) * time.Second }

// BidPoint is one vertex of a demand curve.
type BidPoint struct {
	Quantity float64 `json:"quantity"` // kW
	Price    float64 `json:"price"`    // $/kWh
}

// Bid is the four-point demand curve submitted each period: quantities
// non-decreasing, prices non-increasing.
type Bid [4]BidPoint

// ZeroBid is the bid of a house that cannot respond this period.
func ZeroBid() Bid {
	return Bid{}
}

// IsZero reports whether the bid carries no quantity at all.
func (b Bid) IsZero() bool {
	return b[0] == (BidPoint{}) && b[1] == (BidPoint{}) && b[2] == (BidPoint{}) && b[3] == (BidPoint{})
}

// Quantities returns the four quantities in submission order.
func (b Bid) Quantities() [4]float64 {
	return [4]float64{b[0].Quantity, b[1].Quantity, b[2].Quantity, b[3].Quantity}
}

// QuantityAt evaluates the demand curve at a clearing price by walking
// the four segments. Prices above the first vertex buy the first
// quantity; prices below the last buy the last.
func (b Bid) QuantityAt(price float64) float64 {
	if price >= b[0].Price {
		return b[0].Quantity
	}
	if price <= b[3].Price {
		return b[3].Quantity
	}
	for i := 0; i < 3; i++ {
		hi, lo := b[i], b[i+1]
		if price <= hi.Price && price >= lo.Price {
			if hi.Price == lo.Price {
				return lo.Quantity
			}
			frac := (hi.Price - price) / (hi.Price - lo.Price)
			return hi.Quantity + frac*(lo.Quantity-hi.Quantity)
		}
	}
	return b[3].Quantity
}

// clampBid bounds quantities to the plant size and prices to the cap.
func clampBid(b Bid, maxKW, priceCap float64) Bid {
	for i := range b {
		if b[i].Quantity < 0 {
			b[i].Quantity = 0
		}
		if b[i].Quantity > maxKW {
			b[i].Quantity = maxKW
		}
		if b[i].Price < 0 {
			b[i].Price = 0
		}
		if b[i].Price > priceCap {
			b[i].Price = priceCap
		}
	}
	return b
}

// Inputs bundles the per-window facts a bid is formed from.
type Inputs struct {
	Forecast *model.Forecast
	State    *model.AssetState
	HVACKW   float64 // rated plant draw for this window, kW

	SimHour   float64 // fractional hour of day at the window start
	DayOfWeek int     // Monday is 0
}

// MarginalPriceCurve aggregates bids into a cumulative supply-of-response
// curve: points sorted by price, quantities accumulated. Descending order
// gives the demand-side view.
func MarginalPriceCurve(bids []Bid, descending bool) []BidPoint {
	var pts []BidPoint
	for _, b := range bids {
		for _, p := range b {
			pts = append(pts, p)
		}
	}
	sort.SliceStable(pts, func(i, j int) bool {
		if descending {
			return pts[i].Price > pts[j].Price
		}
		return pts[i].Price < pts[j].Price
	})
	var cum float64
	out := make([]BidPoint, 0, len(pts))
	for _, p := range pts {
		cum += p.Quantity
		out = append(out, BidPoint{Quantity: cum, Price: p.Price})
	}
	return out
}
