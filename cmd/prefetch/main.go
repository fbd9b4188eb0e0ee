package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nathantgray/tesp/internal/data"
)

func main() {
	var (
		seriesFlag  = flag.String("series", "ercot_8500_hourly", "Comma-separated series IDs to prefetch")
		startDate   = flag.String("start", "", "Window start date YYYY-MM-DD (default: today)")
		hours       = flag.Int("hours", 48, "Window length in hourly slots")
		outDir      = flag.String("out", filepath.Join("data", "windows"), "Directory for window fixtures")
		catalogPath = flag.String("catalog", "", "Series catalog path (default: ./data/series.json)")
	)
	flag.Parse()

	apiKey := os.Getenv("SCHEDULE_API_KEY")
	if apiKey == "" {
		log.Fatal("SCHEDULE_API_KEY environment variable is required")
	}

	if *catalogPath == "" {
		*catalogPath = data.GetDefaultSeriesPath()
	}
	if *startDate == "" {
		*startDate = time.Now().UTC().Format("2006-01-02")
	}

	names := splitSeries(*seriesFlag)
	if len(names) == 0 {
		log.Fatal("no series requested")
	}

	client := data.NewScheduleServerClient(apiKey, os.Getenv("SCHEDULE_SERVER_URL"))

	// Load the existing catalog as seed so series skipped today survive.
	known := map[string]data.Series{}
	if list, err := data.LoadSeries(*catalogPath); err == nil {
		for _, s := range list.Series {
			known[s.ID] = s
		}
		fmt.Printf("Loaded %d series from existing catalog\n", len(list.Series))
	}

	fmt.Printf("Prefetching %d series starting %s (%d hours)...\n", len(names), *startDate, *hours)

	successCount := 0
	for _, id := range names {
		resp, err := client.QueryWindowByString(id, *startDate, *hours)
		if err != nil {
			fmt.Printf("  ⚠️  Warning: Failed to fetch series %s: %v\n", id, err)
			// Keep the existing catalog entry even if the fetch fails
			continue
		}

		path := filepath.Join(*outDir, id+".json")
		if err := data.SaveWindowJSON(path, resp); err != nil {
			log.Fatalf("Failed to save window for %s: %v", id, err)
		}

		existing := known[id]
		known[id] = data.Series{
			ID:     id,
			Name:   inferSeriesName(id, existing.Name),
			Market: inferMarket(id, existing.Market),
			Zone:   existing.Zone,
		}
		successCount++
		fmt.Printf("  ✓ Fetched %s: %d slots -> %s\n", id, resp.Window.Window(), path)
	}

	fmt.Printf("Successfully fetched %d/%d series\n", successCount, len(names))

	merged := make([]data.Series, 0, len(known))
	for _, s := range known {
		merged = append(merged, s)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].ID < merged[j].ID })

	list := &data.SeriesList{
		UpdatedAt: time.Now().UTC(),
		Series:    merged,
	}
	if err := data.SaveSeries(*catalogPath, list); err != nil {
		log.Fatalf("Failed to save series catalog: %v", err)
	}

	fmt.Printf("Saved %d series to %s\n", len(merged), *catalogPath)
}

func splitSeries(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// inferSeriesName attempts to infer a human-readable name from a series ID.
// If existingName is provided and not empty, it's used; otherwise we try to infer
func inferSeriesName(id, existingName string) string {
	if existingName != "" {
		return existingName
	}

	nameMap := map[string]string{
		"ercot_8500_hourly": "ERCOT 8500 bus hourly",
		"ercot_200_hourly":  "ERCOT 200 bus hourly",
	}
	if mapped, ok := nameMap[id]; ok {
		return mapped
	}

	return id
}

// inferMarket reads the market from the series ID prefix, e.g.
// "ercot_8500_hourly" belongs to ERCOT.
func inferMarket(id, existingMarket string) string {
	if existingMarket != "" {
		return existingMarket
	}
	if i := strings.Index(id, "_"); i > 0 {
		return strings.ToUpper(id[:i])
	}
	return ""
}
