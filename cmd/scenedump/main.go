// Command scenedump composes a scene file without a window and prints the frame summary,
// including the part inventory of every loaded asset, as YAML.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"scene-engine/internal/asset"
	"scene-engine/internal/compose"
	"scene-engine/internal/engineconfig"
	"scene-engine/internal/env"
	"scene-engine/internal/logger"
	"scene-engine/internal/scene"
	"scene-engine/internal/sim"
	"scene-engine/internal/synth"
)

func main() {
	at := flag.Duration("at", 0, "advance effects to this time after the first frame")
	fallback := flag.Bool("fallback", true, "draw a cube for assets that fail to load")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: scenedump [flags] <scene.json|scene.yaml>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Arg(0), *at, *fallback); err != nil {
		fmt.Fprintf(os.Stderr, "scenedump: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, at time.Duration, fallback bool) error {
	if err := env.Load(".env"); err != nil {
		return err
	}
	cfg, err := engineconfig.LoadEnv()
	if err != nil {
		return err
	}
	// stdout carries only the report.
	logs := logger.New(cfg.LogFile, logger.ParseLevel(cfg.LogLevel))
	defer logs.Close()
	log := logs.Slog()

	sc, err := scene.Load(path)
	if err != nil {
		return err
	}

	var fetcher asset.Router
	fetcher.Remote = asset.NewHTTPFetcher(cfg.AssetTimeout)
	if local, err := asset.NewDirFetcher(cfg.AssetRoot); err == nil {
		fetcher.Local = local
	} else {
		log.Warn("asset root unavailable", "root", cfg.AssetRoot, "err", err)
	}
	synthesizer := synth.New(nil)
	opts := compose.Options{Log: log, LoadTimeout: cfg.AssetTimeout}
	if fallback {
		opts.Fallback = compose.CubeFallback(synthesizer)
	}
	composer := compose.New(synthesizer, asset.NewCache(fetcher, nil, log), opts)
	stage := compose.NewStage(composer, sim.NewEngine(log))

	ctx := context.Background()
	start := time.Now()
	stage.Step(ctx, sc, start)
	composer.Wait()
	f := stage.Step(ctx, sc, start.Add(at))
	return compose.Summarize(f, composer.Pending()).WriteYAML(os.Stdout)
}
