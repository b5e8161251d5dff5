package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/theoremus-urban-solutions/transit-live/config"
	"github.com/theoremus-urban-solutions/transit-live/gtfs"
	"github.com/theoremus-urban-solutions/transit-live/internal"
)

func main() {
	configPath := flag.String("config", "", "path to config.yml (default: search config.yml, ./config/config.yml)")
	input := flag.String("input", "", "GTFS directory or zip (overrides gtfs.inputPath)")
	output := flag.String("output", "", "output directory (overrides gtfs.outputDir)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Converts static GTFS tables into stops.geojson, routes.geojson,\n")
		fmt.Fprintf(os.Stderr, "routes.json, stop_schedule.json and stops_by_route.json.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	internal.InitLogging()
	defer internal.SyncLogging()
	log := internal.Named("preprocess")

	var cfg config.AppConfig
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalw("Failed to load config", "path", *configPath, "error", err)
		}
		cfg = *loaded
	} else {
		if err := config.LoadAppConfig(); err != nil {
			log.Fatalw("Failed to load config", "error", err)
		}
		cfg = config.Config
	}

	in, out := cfg.GTFS.InputPath, cfg.GTFS.OutputDir
	if *input != "" {
		in = *input
	}
	if *output != "" {
		out = *output
	}

	feed, err := gtfs.Open(in)
	if err != nil {
		log.Fatalw("Failed to open GTFS feed", "input", in, "error", err)
	}
	defer feed.Close()

	written, err := gtfs.Run(feed, out)
	if err != nil {
		log.Fatalw("Preprocessing failed", "input", in, "error", err)
	}
	for _, p := range written {
		log.Infow("Generated artifact", "path", p)
	}
}
