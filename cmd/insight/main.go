// Package main implements the insight CLI: it loads a history bundle and
// prints the pattern analysis, optional what-if simulations, and the
// next-meal recommendation.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/mealwise/insight/pkg/histload"
	"github.com/mealwise/insight/pkg/histogram"
	"github.com/mealwise/insight/pkg/histstore"
	"github.com/mealwise/insight/pkg/insight"
	"github.com/mealwise/insight/pkg/recommend"
	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/whatif"
)

var (
	dbPath    = flag.String("db", "", "Load history from a sqlite store instead of a bundle")
	jsonOut   = flag.Bool("json", false, "Print the raw JSON report")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	version   = flag.Bool("version", false, "Show version")
	simulate  = flag.String("simulate", "", "Run a what-if action (add_protein, increase_sleep, increase_steps, shift_last_meal)")
	simParams = flag.String("param", "", "Simulation parameters, e.g. proteinGrams=30,mealIndex=0")
	recAt     = flag.String("recommend-at", "", "Print a meal recommendation for this time (HH:MM)")
	lastMeal  = flag.String("last-meal", "", "Last meal time for the recommendation (HH:MM)")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("insight CLI v1.2.0")
		return
	}

	args := flag.Args()
	if len(args) != 1 && *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <bundle-file-or-url>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	bundle, err := loadBundle(ctx, args, logger)
	if err != nil {
		logger.Error("loading input failed", "error", err)
		os.Exit(1)
	}

	engine := insight.New(insight.WithLogger(logger))
	report := engine.Analyze(bundle.History, bundle.Profile, bundle.Products)

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			logger.Error("encoding report failed", "error", err)
			os.Exit(1)
		}
		return
	}

	printReport(report)
	fmt.Println()
	fmt.Print(histogram.Render(bundle.History, bundle.Products, bundle.Profile, report.AdaptedThresholds))

	if *simulate != "" {
		result := engine.Simulate(*simulate, parseParams(*simParams), bundle.History, bundle.Profile, bundle.Products)
		printSimulation(result)
	}

	if *recAt != "" {
		now, ok := record.ParseClock(*recAt)
		if !ok {
			logger.Error("invalid -recommend-at time", "value", *recAt)
			os.Exit(1)
		}
		last := -1
		if t, ok := record.ParseClock(*lastMeal); ok {
			last = t
		}
		rec := engine.Recommend(recommend.Context{CurrentTime: now, LastMealTime: last},
			bundle.History, bundle.Profile, bundle.Products)
		printRecommendation(rec)
	}
}

func loadBundle(ctx context.Context, args []string, logger *slog.Logger) (*histload.Bundle, error) {
	if *dbPath != "" {
		store, err := histstore.Open(*dbPath)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := store.Close(); cerr != nil {
				logger.Warn("closing history store", "error", cerr)
			}
		}()
		history, err := store.History()
		if err != nil {
			return nil, err
		}
		products, err := store.Products()
		if err != nil {
			return nil, err
		}
		return &histload.Bundle{History: history, Products: products}, nil
	}
	return histload.New(logger).Load(ctx, args[0])
}

// parseParams turns "k=v,k=v" into a parameter map, skipping anything
// non-numeric.
func parseParams(raw string) map[string]float64 {
	params := make(map[string]float64)
	for pair := range strings.SplitSeq(raw, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			continue
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params[k] = f
		}
	}
	return params
}

func printReport(report insight.Report) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)
	grey := color.New(color.FgHiBlack)

	bold.Printf("📈 Pattern Analysis (%d days)\n", report.GeneratedDays)
	fmt.Println(strings.Repeat("─", 50))

	if report.Phenotype == nil {
		grey.Println("Phenotype: not personalized (needs 30 days of history)")
	} else {
		p := report.Phenotype
		fmt.Printf("Phenotype: metabolic=%s (%.0f%%)  circadian=%s (%.0f%%)\n",
			p.Metabolic.Label, p.Metabolic.Confidence*100,
			p.Circadian.Label, p.Circadian.Confidence*100)
		fmt.Printf("           satiety=%s (%.0f%%)  stress=%s (%.0f%%)\n",
			p.Satiety.Label, p.Satiety.Confidence*100,
			p.Stress.Label, p.Stress.Confidence*100)
		if p.Stress.Degraded {
			yellow.Println("           stress analysis degraded; label is a fallback")
		}
	}
	fmt.Println()

	for _, res := range report.Patterns {
		if !res.Available {
			grey.Printf("%-16s —    %s\n", res.Pattern, res.Insight)
			continue
		}
		scoreColor := green
		switch {
		case res.Score < 50:
			scoreColor = red
		case res.Score < 75:
			scoreColor = yellow
		}
		fmt.Printf("%-16s ", res.Pattern)
		scoreColor.Printf("%3.0f ", res.Score)
		fmt.Printf("(conf %.0f%%)  %s\n", res.Confidence*100, res.Insight)
	}
}

func printSimulation(result whatif.Result) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	grey := color.New(color.FgHiBlack)

	fmt.Println()
	bold.Printf("🔮 What-if: %s\n", result.ActionType)
	fmt.Println(strings.Repeat("─", 50))
	for _, imp := range result.Impact {
		deltaColor := green
		if imp.Delta < 0 {
			deltaColor = red
		}
		fmt.Printf("%-16s %6.1f → %6.1f  ", imp.Pattern, imp.Baseline, imp.Predicted)
		deltaColor.Printf("%+.1f", imp.Delta)
		grey.Printf("  (%s)\n", imp.Significance)
	}
	for _, side := range result.SideBenefits {
		green.Printf("%-16s %+.1f side benefit\n", side.Pattern, side.Delta)
	}
	fmt.Printf("Health score: %+.1f (%+.1f%%)\n",
		result.HealthScoreChange.Delta, result.HealthScoreChange.Percent)
	for _, tip := range result.PracticalTips {
		grey.Printf("  • %s\n", tip)
	}
}

func printRecommendation(rec recommend.Recommendation) {
	bold := color.New(color.Bold)
	grey := color.New(color.FgHiBlack)

	fmt.Println()
	bold.Println("🥗 Next meal")
	fmt.Println(strings.Repeat("─", 50))
	if !rec.Available {
		grey.Println(rec.Insight)
		return
	}
	fmt.Println(rec.Insight)
	fmt.Printf("Targets: %.0fg protein, %.0fg carbs, %.0fg fat (~%.0f kcal)\n",
		rec.Targets.ProteinG, rec.Targets.CarbsG, rec.Targets.FatG, rec.Targets.Kcal)
	for _, s := range rec.Suggestions {
		name := s.Name
		if name == "" {
			name = s.ProductID
		}
		fmt.Printf("  • %s, %.0fg — %s\n", name, s.Grams, s.Reason)
	}
}
