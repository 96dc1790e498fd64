package main

import (
	"flag"
	"fmt"
	"os"

	"imgtriage/internal/config"
	"imgtriage/internal/scan"
	"imgtriage/internal/tui"
)

var version = "0.0.0-dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: imgtriage [flags] [config.toml]\n\n")
		fmt.Fprintf(os.Stderr, "Sorts images from a source directory into destinations, one keystroke each.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("imgtriage %s\n", version)
		return
	}

	configPath := config.DefaultPath
	if flag.NArg() > 0 {
		configPath = flag.Arg(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "imgtriage: %v\n", err)
		os.Exit(1)
	}

	paths, err := scan.ListImages(cfg.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "imgtriage: %v\n", err)
		os.Exit(1)
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "imgtriage: no images found in %s\n", cfg.Dir)
		os.Exit(1)
	}

	if err := tui.Run(cfg, paths); err != nil {
		fmt.Fprintf(os.Stderr, "imgtriage: tui error: %v\n", err)
		os.Exit(1)
	}
}
