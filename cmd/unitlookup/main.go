// Package main provides the unit lookup worker command: spreadsheet in,
// unit counts merged, spreadsheet out.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nycunits/internal/config"
	"nycunits/internal/logger"
	"nycunits/internal/lookup"
	"nycunits/internal/models"
	"nycunits/internal/pipeline"
	"nycunits/internal/sheet"
	"nycunits/pkg/progress"
)

func main() {
	inputPath := flag.String("input", "", "Input xlsx file holding parcel identifiers")
	outputPath := flag.String("output", "", "Output xlsx path (default: <output.dir>/<output.filename>)")
	configPath := flag.String("config", "", "Optional YAML config file")
	column := flag.String("column", "", "Column holding BBL values (default: Parcel_Number, else first column)")
	strategy := flag.String("strategy", "", "Lookup strategy override: pluto, portal, resilient")
	noPrompt := flag.Bool("no-prompt", false, "Never prompt for the column interactively")

	flag.Parse()

	cfg := config.DefaultConfig()

	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}

		cfg = loaded
	}

	if *strategy != "" {
		cfg.Lookup.Strategy = *strategy
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Logging.Level)

	if *inputPath == "" {
		log.Error("Please provide an input file with -input flag")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log.Info("🏙️  Starting NYC unit lookup", "strategy", cfg.Lookup.Strategy)

	// 1. Read the input table
	startTime := time.Now()

	table, err := sheet.ReadFile(*inputPath)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Failed to read input: %v", err))
		os.Exit(1)
	}

	log.Info(fmt.Sprintf("✅ Read %d rows from %s", len(table.Rows), *inputPath))

	// 2. Pick the key column
	keyColumn, err := pickColumn(table, *column, cfg.Lookup.KeyColumn, *noPrompt)
	if err != nil {
		log.Error(fmt.Sprintf("❌ %v", err))
		os.Exit(1)
	}

	log.Info("📍 Using BBL column", "column", keyColumn)

	// 3. Reconcile
	client, err := lookup.New(cfg, log)
	if err != nil {
		log.Error(fmt.Sprintf("❌ %v", err))
		os.Exit(1)
	}

	rec := pipeline.NewReconciler(client, cfg.Lookup.ChunkSize, log)

	var report pipeline.ProgressFunc

	var bar *progress.Bar

	if cfg.Logging.ShowProgress {
		bar = progress.NewBar(os.Stderr, "Looking up units")
		report = bar.Update
	}

	records, err := rec.Reconcile(context.Background(), table, keyColumn, report)
	if err != nil {
		log.Error(fmt.Sprintf("❌ Lookup failed: %v", err))
		os.Exit(1)
	}

	if bar != nil {
		bar.Done()
	}

	// 4. Write the merged table
	out := pipeline.OutputTable(table, records, cfg.Lookup.UnitColumn)

	dest := *outputPath
	if dest == "" {
		if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
			log.Error(fmt.Sprintf("❌ Failed to create output dir: %v", err))
			os.Exit(1)
		}

		dest = filepath.Join(cfg.Output.Dir, cfg.Output.Filename)
	}

	if err := sheet.WriteFile(dest, out); err != nil {
		log.Error(fmt.Sprintf("❌ Failed to write output: %v", err))
		os.Exit(1)
	}

	// 5. Final report
	log.Info("✨ Done!")
	printSummary(out, records, dest, time.Since(startTime))
}

// pickColumn resolves the BBL column: explicit flag, then config, then an
// interactive picker on a terminal, then auto-detection.
func pickColumn(table *models.Table, flagColumn, cfgColumn string, noPrompt bool) (string, error) {
	for _, name := range []string{flagColumn, cfgColumn} {
		if name == "" {
			continue
		}

		if table.ColumnIndex(name) < 0 {
			return "", fmt.Errorf("column %q not found in input (have: %s)", name, strings.Join(table.Columns, ", "))
		}

		return name, nil
	}

	defaultIdx := table.DetectKeyColumn()

	if !noPrompt {
		if idx, ok := selectColumn(table.Columns, defaultIdx); ok {
			return table.Columns[idx], nil
		}
	}

	return table.Columns[defaultIdx], nil
}

func printSummary(out *models.Table, records []models.OutputRecord, dest string, elapsed time.Duration) {
	counts := map[string]int{}
	numeric := 0

	for _, rec := range records {
		switch rec.UnitValue {
		case models.SentinelNotFound, models.SentinelInvalidFormat, models.SentinelInvalidBBL,
			models.SentinelConnectionError, models.SentinelNoData:
			counts[rec.UnitValue]++
		default:
			numeric++
		}
	}

	fmt.Println("\n------------------------------------------------")
	fmt.Printf("📊 Summary Report\n")
	fmt.Println("------------------------------------------------")
	fmt.Printf("Rows Processed: %d\n", len(records))
	fmt.Printf("Units Found: %d\n", numeric)

	for _, sentinel := range []string{
		models.SentinelNotFound, models.SentinelInvalidFormat, models.SentinelInvalidBBL,
		models.SentinelConnectionError, models.SentinelNoData,
	} {
		if counts[sentinel] > 0 {
			fmt.Printf("%s: %d\n", sentinel, counts[sentinel])
		}
	}

	fmt.Printf("Output: %s\n", dest)
	fmt.Printf("Total Duration: %v\n", elapsed)
	fmt.Println("------------------------------------------------")

	fmt.Println("\nPreview:")
	fmt.Println(strings.Join(out.Columns, "\t"))

	n := min(5, len(out.Rows))
	for _, row := range out.Rows[:n] {
		fmt.Println(strings.Join(row, "\t"))
	}
}
