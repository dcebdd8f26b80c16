// Package main provides the HTTP shell: upload a spreadsheet, run the unit
// lookup, download the merged result.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"nycunits/internal/config"
	"nycunits/internal/logger"
	"nycunits/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML config file")
	addr := flag.String("addr", "", "Listen address override (default from config)")

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

	if *addr != "" {
		cfg.Server.ListenAddr = *addr
	}

	log := logger.NewLogger(cfg.Logging.Level)

	for _, dir := range []string{cfg.Server.UploadDir, cfg.Server.DownloadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Error(fmt.Sprintf("failed to create %s: %v", dir, err))
			os.Exit(1)
		}
	}

	srv := server.New(cfg, log)

	log.Info("🏙️  NYC unit lookup server started", "addr", cfg.Server.ListenAddr, "strategy", cfg.Lookup.Strategy)

	if err := http.ListenAndServe(cfg.Server.ListenAddr, srv.Routes()); err != nil {
		log.Error(fmt.Sprintf("server failed: %v", err))
		os.Exit(1)
	}
}
