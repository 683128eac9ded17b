package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/apdb"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/config"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/positioning/calculator"
	"github.com/rezhaque35/wifi-location-data-pipeline-sub006/internal/version"
)

var (
	configPath  = flag.String("config", "", "Optional JSON tuning config file")
	dbPath      = flag.String("db", "", "Path to the access point reference database (overrides config)")
	scansPath   = flag.String("scans", "", "JSON file with the scan results to position")
	timeout     = flag.Duration("timeout", 0, "Per-algorithm execution timeout (overrides config)")
	verbose     = flag.Bool("v", false, "Print the full calculation diagnostic dump")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	// Explicit flags win over the config file.
	databasePath := cfg.GetDatabasePath()
	if *dbPath != "" {
		databasePath = *dbPath
	}
	algorithmTimeout := cfg.GetAlgorithmTimeout()
	if *timeout > 0 {
		algorithmTimeout = *timeout
	}

	if *scansPath == "" {
		log.Fatal("-scans is required")
	}
	scans, err := readScans(*scansPath)
	if err != nil {
		log.Fatalf("failed to read scans: %v", err)
	}

	store, err := apdb.Open(databasePath)
	if err != nil {
		log.Fatalf("failed to open access point store: %v", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	macs := make([]string, len(scans))
	for i, s := range scans {
		macs[i] = s.MACAddress
	}
	knownAPs, err := store.GetByMACs(ctx, macs)
	if err != nil {
		log.Fatalf("failed to look up access points: %v", err)
	}
	// Hotspots and decayed records never contribute to a position.
	usable := knownAPs[:0]
	for _, ap := range knownAPs {
		if ap.UsableForPositioning() {
			usable = append(usable, ap)
		}
	}
	knownAPs = usable
	log.Printf("loaded %d usable access points for %d scanned MACs", len(knownAPs), len(macs))

	calc := calculator.New(calculator.Config{
		PoolSize:         cfg.GetPoolSize(),
		AlgorithmTimeout: algorithmTimeout,
	})
	defer calc.Shutdown(cfg.GetShutdownGrace())

	result, err := calc.CalculatePosition(ctx, scans, knownAPs)
	if err != nil {
		log.Fatalf("position calculation failed: %v", err)
	}
	if result == nil {
		fmt.Println("no position")
		return
	}

	out, err := json.MarshalIndent(struct {
		Position    positioning.Position `json:"position"`
		MethodsUsed []string             `json:"methodsUsed"`
	}{result.Position, result.MethodsUsedNames()}, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal result: %v", err)
	}
	fmt.Println(string(out))

	if *verbose {
		fmt.Fprintln(os.Stderr, result.CalculationInfo())
	}
}

func readScans(path string) ([]positioning.ScanResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var scans []positioning.ScanResult
	if err := json.Unmarshal(data, &scans); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scans) == 0 {
		return nil, fmt.Errorf("%s contains no scan results", path)
	}
	return scans, nil
}
