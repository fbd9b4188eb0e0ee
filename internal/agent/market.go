package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/nathantgray/tesp/internal/strategy"
)

// MarketClearing settles one submitted bid into a clearing price and an
// awarded quantity. at is the start of the delivery period.
type MarketClearing interface {
	Clear(ctx context.Context, at time.Time, bid strategy.Bid) (price, quantity float64, err error)
}

// PriceTaker clears every bid at a fixed exogenous price: the house is
// too small to move the market, so its award is just its own curve
// evaluated at that price.
type PriceTaker struct {
	Price float64 // $/kWh
}

func (p *PriceTaker) Clear(_ context.Context, _ time.Time, bid strategy.Bid) (float64, float64, error) {
	return p.Price, bid.QuantityAt(p.Price), nil
}

// PriceSeries clears bids against an exogenous price series laid out in
// uniform slots from Start. Delivery periods shorter than a slot all
// clear at that slot's price.
type PriceSeries struct {
	Start  time.Time
	Slot   time.Duration
	Prices []float64 // $/kWh per slot
}

func (p *PriceSeries) Clear(_ context.Context, at time.Time, bid strategy.Bid) (float64, float64, error) {
	if p.Slot <= 0 || len(p.Prices) == 0 {
		return 0, 0, fmt.Errorf("price series is empty")
	}
	idx := int(at.Sub(p.Start) / p.Slot)
	if idx < 0 || idx >= len(p.Prices) {
		return 0, 0, fmt.Errorf("period %s is outside the price series", at.Format(time.RFC3339))
	}
	price := p.Prices[idx]
	return price, bid.QuantityAt(price), nil
}
