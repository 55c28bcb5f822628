// Command viewer opens a window showing a scene file, animates its effects, and edits it
// from an in-window terminal (cmd lines or natural language).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"scene-engine/internal/agent"
	"scene-engine/internal/archive"
	"scene-engine/internal/asset"
	"scene-engine/internal/commands"
	"scene-engine/internal/compose"
	"scene-engine/internal/debug"
	"scene-engine/internal/engineconfig"
	"scene-engine/internal/env"
	"scene-engine/internal/graphics"
	"scene-engine/internal/llm"
	"scene-engine/internal/logger"
	"scene-engine/internal/primitives"
	"scene-engine/internal/scene"
	"scene-engine/internal/sim"
	"scene-engine/internal/synth"
	"scene-engine/internal/terminal"
	"scene-engine/internal/watch"
)

func main() {
	scenePath := flag.String("scene", "", "scene file to open (.json or .yaml); defaults to the last one used")
	windowed := flag.Bool("windowed", false, "run in a window instead of fullscreen")
	noWatch := flag.Bool("no-watch", false, "do not reload the scene file when it changes on disk")
	flag.Parse()

	if err := env.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "viewer: .env: %v\n", err)
	}
	cfg, err := engineconfig.LoadEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewer: %v\n", err)
		os.Exit(1)
	}
	prefs, prefsErr := engineconfig.Load()

	logs := logger.New(cfg.LogFile, logger.ParseLevel(cfg.LogLevel))
	defer logs.Close()
	log := logs.Slog()
	slog.SetDefault(log)
	if prefsErr != nil {
		log.Warn("preferences not loaded, using defaults", "err", prefsErr)
	}

	path := *scenePath
	if path == "" {
		path = prefs.LastScene
	}
	initial := scene.Scene{}
	if path != "" {
		if s, err := scene.Load(path); err != nil {
			log.Warn("scene not loaded", "path", path, "err", err)
		} else {
			initial = s
		}
	}
	ed := scene.NewEditor(initial)

	fetcher, err := newFetcher(cfg)
	if err != nil {
		log.Warn("asset root unavailable, only remote assets will load", "root", cfg.AssetRoot, "err", err)
	}
	cache := asset.NewCache(fetcher, nil, log)
	synthesizer := synth.New(primitives.NewRegistry())
	opts := compose.Options{Log: log, LoadTimeout: cfg.AssetTimeout}
	if prefs.FallbackCube {
		opts.Fallback = compose.CubeFallback(synthesizer)
	}
	composer := compose.New(synthesizer, cache, opts)
	stage := compose.NewStage(composer, sim.NewEngine(log))

	view := graphics.NewView()
	view.SetGridVisible(prefs.GridVisible)
	dbg := debug.New()
	dbg.SetShowFPS(prefs.ShowFPS)
	dbg.SetShowMemAlloc(prefs.ShowMemAlloc)

	// ui runs on the frame loop; commands issued by the agent goroutine post here.
	ui := make(chan func(), 16)
	post := func(f func()) {
		select {
		case ui <- f:
		default:
			log.Warn("ui queue full, dropping update")
		}
	}

	var frame atomic.Pointer[compose.Frame]
	var currentPath atomic.Value
	currentPath.Store(path)

	reg := commands.NewRegistry()
	commands.RegisterScene(reg, commands.SceneDeps{
		Editor: ed,
		Out:    logs,
		Parts: func(id string) ([]asset.Part, bool) {
			f := frame.Load()
			if f == nil {
				return nil, false
			}
			parts, ok := f.Parts[id]
			return parts, ok
		},
		Retry: composer.Retry,
		Import: func(zipPath string) ([]string, error) {
			root, err := asset.DirFS(cfg.AssetRoot)
			if err != nil {
				return nil, err
			}
			return archive.ExtractFile(zipPath, root, "packs")
		},
		Path:  func() string { return currentPath.Load().(string) },
		SetPath: func(p string) {
			currentPath.Store(p)
			post(func() {
				prefs.LastScene = p
				savePrefs(log, prefs)
			})
		},
		SetGrid: func(v bool) {
			post(func() {
				view.SetGridVisible(v)
				prefs.GridVisible = v
				savePrefs(log, prefs)
			})
		},
		SetFPS: func(v bool) {
			post(func() {
				dbg.SetShowFPS(v)
				prefs.ShowFPS = v
				savePrefs(log, prefs)
			})
		},
	})
	reg.Register("stats", "--show | --hide", func(fs *flag.FlagSet) func([]string) error {
		show := fs.Bool("show", false, "show")
		hide := fs.Bool("hide", false, "hide")
		return func([]string) error {
			if *show == *hide {
				return fmt.Errorf("pass exactly one of --show or --hide")
			}
			post(func() { dbg.SetShowStats(*show) })
			return nil
		}
	})
	reg.Register("help", "", func(*flag.FlagSet) func([]string) error {
		return func([]string) error {
			reg.Help(logs)
			return nil
		}
	})

	client := llm.FromConfig(llm.Config{OpenAIKey: cfg.OpenAIKey, GroqKey: cfg.GroqKey, OllamaURL: cfg.OllamaURL})
	ag := agent.New(client, func() string { return prefs.AIModel })
	ag.SetLogger(log)
	ag.SetOffline(agent.DescribeOffline(ed))
	agent.RegisterSceneHandlers(ag, ed, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	term := terminal.New(logs, reg)
	term.OnText = func(line string) {
		rctx, rcancel := context.WithTimeout(ctx, 2*time.Minute)
		defer rcancel()
		summary, err := ag.Run(rctx, line)
		if err != nil {
			log.Error("request failed", "err", err)
			return
		}
		logs.Log(summary)
	}
	if !cfg.HasLLM() {
		logs.Log("no LLM configured; text requests use the offline keyword parser")
	}

	if path != "" && !*noWatch {
		w := watch.New(path, ed, log)
		go func() {
			if err := w.Run(ctx); err != nil {
				log.Warn("scene watch stopped", "err", err)
			}
		}()
	}

	update := func(dt float32) {
		for drained := false; !drained; {
			select {
			case f := <-ui:
				f()
			default:
				drained = true
			}
		}
		term.Update()
		if !term.IsOpen() {
			view.Update()
		}
		frame.Store(stage.Step(ctx, ed.Snapshot(), time.Now()))
	}
	draw := func() {
		sc := ed.Snapshot()
		view.Draw(frame.Load().Root, sc.Environment, sc.Lighting)
		term.Draw()
		dbg.Draw(frame.Load(), composer.Pending())
	}
	graphics.Run(graphics.Window{Title: "scene viewer", Fullscreen: !*windowed}, update, draw)

	cancel()
	composer.Wait()
}

func newFetcher(cfg engineconfig.Env) (asset.Fetcher, error) {
	remote := asset.NewHTTPFetcher(cfg.AssetTimeout)
	local, err := asset.NewDirFetcher(cfg.AssetRoot)
	if err != nil {
		return asset.Router{Remote: remote}, err
	}
	return asset.Router{Local: local, Remote: remote}, nil
}

func savePrefs(log *slog.Logger, p engineconfig.EnginePrefs) {
	if err := engineconfig.Save(p); err != nil {
		log.Warn("prefs not saved", "err", err)
	}
}
