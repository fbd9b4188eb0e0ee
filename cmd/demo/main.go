package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"time"

	"github.com/nathantgray/tesp/internal/agent"
	"github.com/nathantgray/tesp/internal/config"
	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/sim"
)

// Demo:
// - Build the reference house and its bidding agent
// - Synthesize a hot August window with an evening price spike
// - Run a few market hours to show how the pieces fit together
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	hours := flag.Int("hours", 6, "Number of simulated hours")
	outCSV := flag.String("out", "", "Optional path to write ledger CSV (e.g. results/demo.csv)")
	flag.Parse()

	house := config.DefaultHouse()
	mode := model.ModeCooling
	waterHeaterKW := 0.5

	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		house = cfg.House
		mode = cfg.Run.Mode
		waterHeaterKW = cfg.Run.WaterHeaterKW
	}

	a, err := agent.New(house.Name, house.Structure, house.Equipment, house.Schedule, house.Bidding)
	if err != nil {
		panic(err)
	}

	start := time.Date(2016, 8, 1, 0, 0, 0, 0, time.UTC)
	f := syntheticWindow(*hours + a.Window())
	f.FillSolarGain(house.Location, start.YearDay(), sim.HourOfDay(start))

	fmt.Printf("House %s: %.0f sqft, %s heating, cooling COP %.1f\n",
		house.Name, house.Structure.SquareFootage, house.Equipment.HeatingSystem, house.Equipment.CoolingCOP)
	fmt.Printf("Simulating %d hours from %s at a %s market period\n\n",
		*hours, start.Format("2006-01-02 15:04"), a.Period())

	// Show the first-period demand curve before the run settles anything.
	ctx := context.Background()
	win0, err := f.Slice(0, a.Window())
	if err != nil {
		panic(err)
	}
	a.SetMode(mode)
	if err := a.PlanWindow(ctx, win0, sim.HourOfDay(start), sim.DayOfWeek(start)); err != nil {
		panic(err)
	}
	bid, err := a.FormBid(win0, sim.HourOfDay(start), sim.DayOfWeek(start))
	if err != nil {
		panic(err)
	}
	fmt.Println("First-period demand curve ($/kWh -> kW):")
	for _, p := range bid {
		fmt.Printf("  %8.4f -> %6.2f\n", p.Price, p.Quantity)
	}
	fmt.Println("")

	engine := sim.New(sim.Config{
		Start:         start,
		Hours:         *hours,
		Mode:          mode,
		WaterHeaterKW: waterHeaterKW,
	})
	res, err := engine.Run(ctx, a, f, &agent.PriceSeries{Start: start, Slot: time.Hour, Prices: f.Price})
	if err != nil {
		panic(err)
	}

	for i := 0; i < min(12, len(res.Ledger)); i++ {
		r := res.Ledger[i]
		fmt.Printf(
			"%s price=%7.4f award=%6.2f cool=%5.1f indoor=%5.1f out=%5.1f hvac=%-5v kw=%5.2f cost=%7.4f cum=%8.4f\n",
			r.Time.Format("2006-01-02 15:04"),
			r.Price,
			r.Award,
			r.CoolingSetpoint,
			r.IndoorAirTemp,
			r.OutsideAirTemp,
			r.HVACOn,
			r.HVACKW,
			r.Cost,
			r.CumCost,
		)
	}

	if *outCSV != "" {
		if err := sim.WriteLedgerCSV(*outCSV, res.Ledger); err != nil {
			panic(err)
		}
		fmt.Printf("\nWrote CSV: %s\n", *outCSV)
	}

	fmt.Printf("\nDone. Total energy=%.1f kWh  cost=$%.2f  discomfort=%.2f deg-hrs  final indoor=%.1f F\n",
		res.TotalEnergyKWH, res.TotalCost, res.DiscomfortDegHrs, res.FinalIndoorTemp)
}

// syntheticWindow builds an August Texas shape: the temperature peaks
// near 96 F in the late afternoon and the price spikes through the
// evening ramp.
func syntheticWindow(slots int) *model.Forecast {
	f := &model.Forecast{
		Price:          make([]float64, slots),
		OutsideAirTemp: make([]float64, slots),
		Humidity:       make([]float64, slots),
		SolarDirect:    make([]float64, slots),
		SolarDiffuse:   make([]float64, slots),
		InternalGain:   make([]float64, slots),
	}
	for i := 0; i < slots; i++ {
		hour := float64(i % 24)

		f.OutsideAirTemp[i] = 87 + 9*math.Sin((hour-10)*math.Pi/12)
		f.Humidity[i] = 0.55
		f.InternalGain[i] = 1200

		f.Price[i] = 0.025
		if hour >= 14 && hour < 20 {
			f.Price[i] = 0.12
		}
		if hour >= 16 && hour < 18 {
			f.Price[i] = 0.35
		}

		if hour > 6 && hour < 18 {
			s := math.Sin(math.Pi * (hour - 6) / 12)
			f.SolarDirect[i] = 850 * s
			f.SolarDiffuse[i] = 120 * s
		}
	}
	return f
}
