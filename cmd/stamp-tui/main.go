package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/handiism/photo-timestamper/internal/config"
	"github.com/handiism/photo-timestamper/internal/logging"
	"github.com/handiism/photo-timestamper/internal/style"
	"github.com/handiism/photo-timestamper/internal/tui"
	flag "github.com/spf13/pflag"
)

func main() {
	configFlag := flag.StringP("config", "c", "settings.json", "Path to settings file")
	verboseFlag := flag.BoolP("verbose", "v", false, "Write debug output to the log file")
	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	base := filepath.Dir(*configFlag)
	settings.ResolvePaths(base)

	// The terminal belongs to the UI; logs only go to the log file.
	logger, closeLog, err := logging.New(logging.Options{Verbose: *verboseFlag, Out: io.Discard, File: settings.Paths.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	err = tui.Run(tui.Options{
		Settings:    settings,
		ConfigPath:  *configFlag,
		SessionPath: filepath.Join(base, "session.json"),
		Styles:      style.NewManager(settings.Paths.StylesDir, settings.Paths.FontsDir, logger),
		Logger:      logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
