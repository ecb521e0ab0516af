package main

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	tiff "github.com/mdouchement/tiffpix"
)

func main() {
	logLevel := parseLogLevel(envStr("TIFF2PPM_LOG_LEVEL", "info"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	opener := tiff.OpenFile
	if strings.EqualFold(envStr("TIFF2PPM_STORAGE", "file"), "mmap") {
		opener = tiff.OpenMmap
	}

	cfg := tiff.DefaultPoolConfig
	cfg.Slots = envInt("TIFF2PPM_POOL_SLOTS", cfg.Slots)
	pool, err := tiff.NewPool(cfg)
	if err != nil {
		slog.Error("invalid pool configuration", "err", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: tiff2ppm FILE...")
		os.Exit(2)
	}

	failed := false
	for _, path := range os.Args[1:] {
		if err := convert(path, tiff.WithOpener(opener), tiff.WithPool(pool), tiff.WithLogger(logger)); err != nil {
			slog.Error("conversion failed", "path", path, "err", err)
			failed = true
			continue
		}
		slog.Info("converted", "path", path, "out", path+".ppm")
	}
	if failed {
		os.Exit(1)
	}
}

func convert(path string, opts ...tiff.Option) error {
	r, err := tiff.Open(path, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	if r.PageCount() < 1 {
		return errors.New("no page")
	}
	p, err := r.Page(0)
	if err != nil {
		return err
	}
	if err = p.WriteInfo(os.Stdout); err != nil {
		return err
	}

	f, err := os.Create(path + ".ppm")
	if err != nil {
		return errors.Wrap(err, "could not create output")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err = writePPM(w, p); err != nil {
		return err
	}
	return errors.Wrap(w.Flush(), "could not flush output")
}

// writePPM writes m as a plain (P3) 8-bit PPM.
func writePPM(w *bufio.Writer, m image.Image) error {
	b := m.Bounds()
	fmt.Fprintf(w, "P3\n%d %d\n255\n", b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA)
			if _, err := fmt.Fprintf(w, "%d %d %d\n", c.R, c.G, c.B); err != nil {
				return errors.Wrap(err, "could not write pixel")
			}
		}
	}
	return nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
