package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"inkpad/internal/app"
	"inkpad/internal/config"
	"inkpad/internal/pad"
	"inkpad/internal/platform"
	"inkpad/internal/platform/replay"
	"inkpad/pkg/ink"
)

func main() {
	configPath := flag.String("config", "", "config file (default: user config dir)")
	replayPath := flag.String("replay", "", "run a replay script headless instead of opening a window")
	outPath := flag.String("out", "inkpad.png", "PNG written after a replay run")
	batch := flag.Int("batch", 4, "events per frame during a replay run")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "inkpad: %v\n", err)
		os.Exit(1)
	}
	ink.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))

	if *replayPath != "" {
		err = runReplay(cfg, *replayPath, *outPath, *batch)
	} else {
		err = app.New(cfg).Run()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "inkpad failed: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return config.Default(), nil
		}
		path = p
	}
	return config.Load(path)
}

func runReplay(cfg config.Config, scriptPath, outPath string, batch int) error {
	script, err := replay.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	var backend platform.Platform = replay.New(script, batch)
	ink.Logger().Debug("replay backend", "name", backend.Name())
	win, err := backend.CreateWindow(platform.WindowConfig{
		Title:    "inkpad replay",
		WidthPx:  cfg.Canvas.Width,
		HeightPx: cfg.Canvas.Height,
	})
	if err != nil {
		return err
	}
	defer win.Close()

	p := pad.New(pad.Options{Config: cfg})
	defer p.Close()
	frames, err := pad.Run(context.Background(), win, p, 0)
	if err != nil {
		return err
	}

	if err := p.SavePNG(outPath); err != nil {
		return err
	}
	ink.Logger().Info("replay finished", "frames", frames, "strokes", p.Model().StrokeCount(), "out", outPath)
	return nil
}
