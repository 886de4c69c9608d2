package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"glasskey/config"
	"glasskey/localization"
	"glasskey/platform"
)

// Version is set at build time via ldflags
var Version = "dev"

const (
	defaultX      = 100
	defaultY      = 100
	defaultWidth  = 1200
	defaultHeight = 400
)

type geometry struct {
	x, y          int
	width, height int
}

// normalizeGeometry falls back to the default size for values a window
// cannot have. Positions are taken as-is; off-screen windows can be dragged
// back.
func normalizeGeometry(x, y, width, height int) geometry {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return geometry{x: x, y: y, width: width, height: height}
}

var (
	flagX      int
	flagY      int
	flagWidth  int
	flagHeight int
)

var rootCmd = &cobra.Command{
	Use:           "glasskey",
	Short:         "Transparent on-screen keyboard that types into the last active window",
	Version:       Version,
	SilenceUsage:  false,
	SilenceErrors: false,
	RunE: func(_ *cobra.Command, _ []string) error {
		return run(normalizeGeometry(flagX, flagY, flagWidth, flagHeight))
	},
}

func init() {
	rootCmd.Flags().IntVar(&flagX, "x", defaultX, "window X position")
	rootCmd.Flags().IntVar(&flagY, "y", defaultY, "window Y position")
	rootCmd.Flags().IntVar(&flagWidth, "width", defaultWidth, "window width")
	rootCmd.Flags().IntVar(&flagHeight, "height", defaultHeight, "window height")
}

func run(geo geometry) error {
	log := logrus.WithField("component", "main")

	if err := config.Load(); err != nil {
		log.WithError(err).Warn("could not read config, using defaults")
	}
	cfg := config.Get()

	code := localization.ResolveCode(cfg.Language)
	if cfg.Language == "" {
		code = localization.DetectSystemLanguage()
	}
	labels := localization.Labels(code)

	backend, wm := platform.New()
	log.WithFields(logrus.Fields{
		"backend": backend.Name(),
		"mode":    string(cfg.TypingMode),
	}).Info("starting")

	s := newShell(cfg, labels, geo, backend, wm)
	s.Run()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
