package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nathantgray/tesp/internal/agent"
	"github.com/nathantgray/tesp/internal/analysis"
	"github.com/nathantgray/tesp/internal/config"
	"github.com/nathantgray/tesp/internal/data"
	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/schedule"
	"github.com/nathantgray/tesp/internal/sim"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "fleet":
		cmdFleet(os.Args[2:])
	case "rank":
		cmdRank(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  hvacsim run --config examples/config.yaml --window data/windows/ercot_8500_hourly.json --out results/run.csv")
	fmt.Println("  hvacsim fleet --config examples/config.yaml --houses examples/houses --window data/windows/ercot_8500_hourly.json")
	fmt.Println("  hvacsim rank --window data/windows --houses examples/houses")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - run writes one CSV row per market period with the cleared price and thermal state")
	fmt.Println("  - fleet drives every house preset through the same window on a worker pool")
	fmt.Println("  - rank scores presets by the oracle value of their thermal storage")
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML run config")
	windowPath := fs.String("window", "", "Path to a forecast window fixture (JSON)")
	outPath := fs.String("out", "results/run.csv", "Output CSV path")
	hours := fs.Int("hours", 0, "Optional: override run hours from config (0=config)")
	_ = fs.Parse(args)

	if *cfgPath == "" || *windowPath == "" {
		fmt.Println("--config and --window are required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	if *hours > 0 {
		cfg.Run.Hours = *hours
	}

	a, err := agent.New(cfg.House.Name, cfg.House.Structure, cfg.House.Equipment, cfg.House.Schedule, cfg.House.Bidding)
	if err != nil {
		panic(err)
	}

	f, start, err := loadWindow(*windowPath, cfg.Run.Start, cfg.House.Location)
	if err != nil {
		panic(err)
	}

	market := &agent.PriceSeries{Start: start, Slot: time.Hour, Prices: f.Price}
	engine := sim.New(sim.Config{
		Start:         start,
		Hours:         cfg.Run.Hours,
		Mode:          cfg.Run.Mode,
		WaterHeaterKW: cfg.Run.WaterHeaterKW,
	})
	res, err := engine.Run(context.Background(), a, f, market)
	if err != nil {
		panic(err)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		panic(err)
	}
	if err := sim.WriteLedgerCSV(*outPath, res.Ledger); err != nil {
		panic(err)
	}

	fmt.Printf("Wrote %d rows to %s\n", len(res.Ledger), *outPath)
	fmt.Printf("Total energy=%.1f kWh cost=$%.2f discomfort=%.2f deg-hrs final indoor=%.1f F\n",
		res.TotalEnergyKWH, res.TotalCost, res.DiscomfortDegHrs, res.FinalIndoorTemp)
}

func cmdFleet(args []string) {
	fs := flag.NewFlagSet("fleet", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML run config")
	housesDir := fs.String("houses", "examples/houses", "Directory of house preset YAML files")
	windowPath := fs.String("window", "", "Path to a forecast window fixture (JSON)")
	outDir := fs.String("out", "", "Optional: directory for per-house ledger CSVs")
	_ = fs.Parse(args)

	if *cfgPath == "" || *windowPath == "" {
		fmt.Println("--config and --window are required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}

	agents := buildFleet(*housesDir)
	if len(agents) == 0 {
		fmt.Printf("no usable house presets in %s\n", *housesDir)
		os.Exit(1)
	}

	f, start, err := loadWindow(*windowPath, cfg.Run.Start, cfg.House.Location)
	if err != nil {
		panic(err)
	}

	market := &agent.PriceSeries{Start: start, Slot: time.Hour, Prices: f.Price}
	simCfg := sim.Config{
		Start:         start,
		Hours:         cfg.Run.Hours,
		Mode:          cfg.Run.Mode,
		WaterHeaterKW: cfg.Run.WaterHeaterKW,
	}
	runs := sim.RunFleet(context.Background(), simCfg, agents, f, market, cfg.Run.Workers)

	fmt.Printf("%-20s %-8s %-12s %-10s %-12s %-8s\n", "house", "periods", "energy_kwh", "cost", "discomfort", "indoor")
	var totalKWH, totalCost float64
	for _, run := range runs {
		if run.Err != nil {
			fmt.Printf("%-20s failed: %v\n", run.Name, run.Err)
			continue
		}
		r := run.Result
		fmt.Printf("%-20s %-8d %-12.1f $%-9.2f %-12.2f %-8.1f\n",
			run.Name, len(r.Ledger), r.TotalEnergyKWH, r.TotalCost, r.DiscomfortDegHrs, r.FinalIndoorTemp)
		totalKWH += r.TotalEnergyKWH
		totalCost += r.TotalCost

		if *outDir != "" {
			if err := os.MkdirAll(*outDir, 0o755); err != nil {
				panic(err)
			}
			path := filepath.Join(*outDir, run.Name+".csv")
			if err := sim.WriteLedgerCSV(path, r.Ledger); err != nil {
				panic(err)
			}
		}
	}
	fmt.Printf("fleet total: %d houses, %.1f kWh, $%.2f\n", len(runs), totalKWH, totalCost)
}

func cmdRank(args []string) {
	fs := flag.NewFlagSet("rank", flag.ExitOnError)
	windowPath := fs.String("window", "", "Window fixture JSON file or a directory of them")
	housesDir := fs.String("houses", "examples/houses", "Directory of house preset YAML files")
	_ = fs.Parse(args)

	if *windowPath == "" {
		fmt.Println("--window is required")
		os.Exit(2)
	}

	windows := map[string]*data.WindowResponse{}
	info, err := os.Stat(*windowPath)
	if err != nil {
		panic(err)
	}
	if info.IsDir() {
		windows, err = data.LoadWindowDir(*windowPath)
		if err != nil {
			panic(err)
		}
	} else {
		wr, err := data.LoadWindowJSON(*windowPath)
		if err != nil {
			panic(err)
		}
		key := wr.Series
		if key == "" {
			key = strings.TrimSuffix(filepath.Base(*windowPath), ".json")
		}
		windows[key] = wr
	}

	houses := loadAnalysisHouses(*housesDir)
	if len(houses) == 0 {
		fmt.Printf("no usable house presets in %s\n", *housesDir)
		os.Exit(1)
	}

	series := make([]string, 0, len(windows))
	for s := range windows {
		series = append(series, s)
	}
	sort.Strings(series)

	for _, s := range series {
		ranked := analysis.RankBySavings(houses, s, &windows[s].Window)
		fmt.Printf("%-4s %-18s %-22s %-6s %-9s %-15s %-9s %-7s %-10s\n",
			"rank", "house", "series", "slots", "p95-p05", "min/max", "storage", "kw", "oracle$")
		for i, r := range ranked {
			fmt.Printf("%-4d %-18s %-22s %-6d %-9.3f %6.3f/%-8.3f %-9.1f %-7.1f %-10.2f\n",
				i+1,
				r.House,
				r.Series,
				r.Slots,
				r.SpreadP95P05,
				r.MinPrice,
				r.MaxPrice,
				r.StorageKWH,
				r.PowerKW,
				r.OracleSavings,
			)
		}
		fmt.Println("")
	}
}

// loadWindow reads a window fixture and lines it up with the requested
// run start. A zero start adopts the window's own start; a later start
// must land on an hourly slot boundary inside the window. Solar gains
// are derived when the fixture does not carry them.
func loadWindow(path string, runStart time.Time, loc model.Location) (*model.Forecast, time.Time, error) {
	wr, err := data.LoadWindowJSON(path)
	if err != nil {
		return nil, time.Time{}, err
	}

	f := &wr.Window
	start := wr.Start
	if !runStart.IsZero() && !runStart.Equal(wr.Start) {
		off := runStart.Sub(wr.Start)
		slots := int(off / time.Hour)
		if off < 0 || time.Duration(slots)*time.Hour != off {
			return nil, time.Time{}, fmt.Errorf("run start %s is not an hourly offset into the window starting %s",
				runStart.Format(time.RFC3339), wr.Start.Format(time.RFC3339))
		}
		f, err = f.Slice(slots, f.Window()-slots)
		if err != nil {
			return nil, time.Time{}, err
		}
		start = runStart
	}

	if len(f.SolarGain) == 0 {
		f.FillSolarGain(loc, start.YearDay(), sim.HourOfDay(start))
	}
	return f, start, nil
}

// buildFleet turns every roster preset into an agent, skipping houses
// whose envelope the thermal model rejects.
func buildFleet(dir string) []*agent.Agent {
	agents := []*agent.Agent{}
	for _, p := range mustRoster(dir) {
		h := p.House
		a, err := agent.New(h.Name, h.Structure, h.Equipment, h.Schedule, h.Bidding)
		if err != nil {
			fmt.Printf("skipping %s: %v\n", h.Name, err)
			continue
		}
		agents = append(agents, a)
	}
	return agents
}

func loadAnalysisHouses(dir string) []analysis.House {
	houses := []analysis.House{}
	for _, p := range mustRoster(dir) {
		h := p.House
		structure, err := model.NewStructure(h.Structure)
		if err != nil {
			fmt.Printf("skipping %s: %v\n", h.Name, err)
			continue
		}
		houses = append(houses, analysis.House{
			Name:      h.Name,
			Structure: structure,
			Equipment: model.NewEquipment(h.Equipment, structure),
			Schedule:  schedule.New(h.Schedule),
		})
	}
	return houses
}

func mustRoster(dir string) []data.HousePreset {
	presets, err := data.LoadRoster(dir)
	if err != nil {
		panic(err)
	}
	return presets
}
