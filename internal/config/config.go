package config

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"inkpad/internal/dry"
	"inkpad/internal/session"
	"inkpad/pkg/ink"
)

type Config struct {
	Canvas    Canvas    `toml:"canvas"`
	Eraser    Eraser    `toml:"eraser"`
	Dry       Dry       `toml:"dry"`
	Pen       Pen       `toml:"pen"`
	Log       Log       `toml:"log"`
	Clipboard Clipboard `toml:"clipboard"`
}

type Canvas struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type Eraser struct {
	Size float64 `toml:"size"`
}

type Dry struct {
	// Delay is counted in frames.
	Delay int `toml:"delay"`
}

type Pen struct {
	Color string  `toml:"color"`
	Width float64 `toml:"width"`
	Tip   string  `toml:"tip"`
}

type Log struct {
	Level string `toml:"level"`
}

type Clipboard struct {
	Compress bool `toml:"compress"`
}

func Default() Config {
	return Config{
		Canvas:    Canvas{Width: 1280, Height: 720},
		Eraser:    Eraser{Size: session.DefaultEraserSize},
		Dry:       Dry{Delay: dry.DefaultDelay},
		Pen:       Pen{Color: "#000000ff", Width: 2, Tip: "circle"},
		Log:       Log{Level: "warn"},
		Clipboard: Clipboard{Compress: true},
	}
}

// Path returns the per-user config file location.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "inkpad", "config.toml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	b, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Eraser.Size <= 0 {
		return fmt.Errorf("eraser size must be positive, got %v", c.Eraser.Size)
	}
	if c.Dry.Delay < 1 {
		return fmt.Errorf("dry delay must be at least 1 frame, got %d", c.Dry.Delay)
	}
	if c.Pen.Width <= 0 {
		return fmt.Errorf("pen width must be positive, got %v", c.Pen.Width)
	}
	if _, err := ParseColor(c.Pen.Color); err != nil {
		return err
	}
	if _, err := parseTip(c.Pen.Tip); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// DrawingAttributes returns the pen settings as stroke attributes.
func (c Config) DrawingAttributes() ink.DrawingAttributes {
	attrs := ink.DefaultDrawingAttributes()
	if col, err := ParseColor(c.Pen.Color); err == nil {
		attrs.Color = col
	}
	if tip, err := parseTip(c.Pen.Tip); err == nil {
		attrs.Tip = tip
	}
	if c.Pen.Width > 0 {
		attrs.Width = c.Pen.Width
	}
	return attrs
}

func (c Config) LogLevel() slog.Level {
	lvl, err := parseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// ParseColor accepts #rrggbb and #rrggbbaa.
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseTip(s string) (ink.PenTip, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "circle":
		return ink.PenTipCircle, nil
	case "rectangle":
		return ink.PenTipRectangle, nil
	}
	return 0, fmt.Errorf("invalid pen tip %q", s)
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelWarn, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}
