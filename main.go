package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/fractal-tree/internal/app"
	"github.com/iburimskiy/fractal-tree/internal/config"
	"github.com/iburimskiy/fractal-tree/internal/game"
	"github.com/iburimskiy/fractal-tree/internal/session"
	"github.com/iburimskiy/fractal-tree/internal/tree"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (default ~/.config/fractal-tree/config.yaml)")
	settingsPath := flag.String("settings", "", "Load tree settings from a JSON file at startup")
	seed := flag.Int64("seed", 0, "Random seed (0 = time based)")
	exportPath := flag.String("export", "", "Export the tree to a .png, .jpg or .svg file and exit")
	width := flag.Int("width", 0, "Export width in pixels")
	height := flag.Int("height", 0, "Export height in pixels")
	watch := flag.Bool("watch", false, "Reload the loaded settings file when it changes")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	writeConfigPath := flag.String("write-config", "", "Write the effective config to a YAML file and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = *seed
		case "width":
			cfg.Export.Width = *width
		case "height":
			cfg.Export.Height = *height
		case "watch":
			cfg.Watch = *watch
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *writeConfigPath != "" {
		if err := writeConfig(*writeConfigPath, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	logger.Debug("starting", "seed", cfg.Seed, "watch", cfg.Watch)

	s := session.New(
		session.WithSeed(cfg.Seed),
		session.WithLogger(logger),
		session.WithCanvas(
			tree.Point{X: cfg.Canvas.OriginX, Y: cfg.Canvas.OriginY},
			cfg.Canvas.AngleDegrees*math.Pi/180,
		),
		session.WithExportLayout(session.ExportLayout{
			AnchorX:       cfg.Export.AnchorX,
			AnchorY:       cfg.Export.AnchorY,
			ReferenceSize: cfg.Export.ReferenceSize,
			Background:    cfg.BackgroundColor(),
		}),
	)

	if *exportPath != "" {
		if err := exportHeadless(s, cfg, *settingsPath, *exportPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	a := app.New(s, cfg, app.WithLogger(logger))
	defer a.Close()
	if *settingsPath != "" {
		a.LoadSettingsFrom(*settingsPath)
	}

	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowTitle("Fractal Tree Generator")

	g := game.New(a)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("window closed with error", "err", err)
		a.Close()
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// writeConfig saves cfg, flag overrides included, as YAML at path.
func writeConfig(path string, cfg config.Config) error {
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("Wrote config to %s\n", path)
	return nil
}

// exportHeadless writes one tree to out without opening a window.
func exportHeadless(s *session.Session, cfg config.Config, settings, out string) error {
	if settings != "" {
		if err := s.LoadSettings(settings); err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
	}
	if err := s.ExportFile(out, cfg.Export.Width, cfg.Export.Height); err != nil {
		return err
	}
	fmt.Printf("Exported %dx%d tree to %s\n", cfg.Export.Width, cfg.Export.Height, out)
	return nil
}
