package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"StockPulse/internal/di"
	"StockPulse/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	symbols := flag.String("symbols", "", "comma-separated symbol override")
	clearCache := flag.Bool("clear-cache", false, "drop all cache entries before running")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *symbols != "" {
		cfg.Scan.Symbols = strings.Split(*symbols, ",")
	}

	log.Printf("env=%s cache=%s workers=%d", cfg.Environment, cfg.Cache.Backend, cfg.Scan.Workers)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if *clearCache {
		if err := app.ClearCache(context.Background()); err != nil {
			log.Fatalf("cache clear failed: %v", err)
		}
		log.Print("cache cleared")
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
