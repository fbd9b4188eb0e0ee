package sim

import (
	"context"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nathantgray/tesp/internal/agent"
	"github.com/nathantgray/tesp/internal/metrics"
	"github.com/nathantgray/tesp/internal/model"
)

// FleetRun pairs one house with its outcome. Err is set when that house's
// run failed; the rest of the fleet is unaffected.
type FleetRun struct {
	Name   string
	Result *Result
	Err    error
}

// RunFleet drives every agent through the same weather and market on a
// bounded worker pool. Agents are independent, so the slice order of the
// results always matches the input order.
func RunFleet(ctx context.Context, cfg Config, agents []*agent.Agent, f *model.Forecast, market agent.MarketClearing, workers int) []FleetRun {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(agents) {
		workers = len(agents)
	}

	engine := New(cfg)
	runs := make([]FleetRun, len(agents))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				a := agents[i]
				res, err := engine.Run(ctx, a, f, market)
				runs[i] = FleetRun{Name: a.Name, Result: res, Err: err}
				if err != nil {
					metrics.SimulationErrors.WithLabelValues("run").Inc()
					log.Error().Err(err).Str("house", a.Name).Msg("simulation failed")
					continue
				}
				metrics.HousesSimulated.Inc()
			}
		}()
	}

	for i := range agents {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return runs
}
