package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/handiism/photo-timestamper/internal/batch"
	"github.com/handiism/photo-timestamper/internal/config"
	ioutils "github.com/handiism/photo-timestamper/internal/io"
	"github.com/handiism/photo-timestamper/internal/logging"
	"github.com/handiism/photo-timestamper/internal/model"
	"github.com/handiism/photo-timestamper/internal/processor"
	"github.com/handiism/photo-timestamper/internal/style"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// Exit codes
const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stamp", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// Command line flags
	var (
		styleFlag      = fs.StringP("style", "s", "", "Style name (defaults to the last used style)")
		configFlag     = fs.StringP("config", "c", "", "Path to settings file")
		recursiveFlag  = fs.BoolP("recursive", "r", false, "Scan directories recursively")
		outputDirFlag  = fs.StringP("output-dir", "o", "", "Write stamped photos to this directory")
		patternFlag    = fs.StringP("pattern", "p", "", "Output filename pattern ({original} {date} {time} {index})")
		qualityFlag    = fs.IntP("quality", "q", 0, "JPEG quality 1-100")
		overwriteFlag  = fs.Bool("overwrite", false, "Overwrite existing output files")
		timeSourceFlag = fs.String("time-source", "", "Time source: exif, file_modified, file_created, custom")
		fallbackFlag   = fs.String("fallback", "", "Fallback when EXIF has no time: error, file_modified, file_created, custom")
		customTimeFlag = fs.String("custom-time", "", `Custom time, "2006-01-02 15:04:05" or "2006-01-02"`)
		previewDirFlag = fs.String("preview-dir", "", "Also write a stamped preview of each photo to this directory (ui.preview_enabled must be on)")
		listFlag       = fs.BoolP("list-styles", "l", false, "List available styles and exit")
		verboseFlag    = fs.BoolP("verbose", "v", false, "Show verbose output")
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	// Load config
	settings := config.DefaultSettings()
	if *configFlag != "" {
		var err error
		settings, err = config.Load(*configFlag)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return exitFailure
		}
		settings.ResolvePaths(filepath.Dir(*configFlag))
	}

	// Apply flags
	if *outputDirFlag != "" {
		settings.Output.SameDirectory = false
		settings.Output.CustomDirectory = *outputDirFlag
	}
	if *patternFlag != "" {
		settings.Output.FilenamePattern = *patternFlag
	}
	if fs.Changed("quality") {
		settings.Output.JPEGQuality = *qualityFlag
	}
	if *overwriteFlag {
		settings.Output.OverwriteExisting = true
	}
	if *timeSourceFlag != "" {
		settings.TimeSource.Primary = model.TimeMode(*timeSourceFlag)
	}
	if *fallbackFlag != "" {
		settings.TimeSource.FallbackMode = model.TimeMode(*fallbackFlag)
	}
	if *customTimeFlag != "" {
		settings.TimeSource.CustomTime = *customTimeFlag
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}

	logOut := io.Discard
	if *verboseFlag {
		logOut = stderr
	}
	logger, closeLog, err := logging.New(logging.Options{Verbose: *verboseFlag, Out: logOut, File: settings.Paths.LogFile})
	if err != nil {
		fmt.Fprintf(stderr, "Error opening log file: %v\n", err)
		return exitFailure
	}
	defer closeLog()

	styles := style.NewManager(settings.Paths.StylesDir, settings.Paths.FontsDir, logger)

	if *listFlag {
		for _, name := range styles.List() {
			fmt.Fprintln(stdout, style.DisplayName(name, settings.General.Language))
		}
		return exitOK
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stdout, "Photo Timestamper - Burn capture dates into JPEG photos")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "Usage:")
		fmt.Fprintln(stdout, "  stamp [options] <photo or directory>...")
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "For interactive mode, use: stamp-tui")
		fmt.Fprintln(stdout)
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return exitFailure
	}

	styleName := *styleFlag
	if styleName == "" {
		styleName = settings.UI.LastStyle
	}

	// Handle interrupts
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	paths, err := ioutils.CollectImages(ctx, fs.Args(), *recursiveFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFailure
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "No JPEG files found.")
		return exitFailure
	}

	opts := []batch.Option{
		batch.WithMessages(func(msg batch.Message) {
			if msg.Level == batch.LevelVerbose && !*verboseFlag {
				return
			}
			fmt.Fprintln(stdout, prefix(msg.Level)+msg.Text)
		}),
		batch.WithProgress(func(current, total int, path string) {
			if *verboseFlag {
				fmt.Fprintf(stdout, "   [%d/%d] %s\n", current, total, filepath.Base(path))
			}
		}),
	}

	previews, err := previewOption(settings, *previewDirFlag, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating preview directory: %v\n", err)
		return exitFailure
	}
	if previews != nil {
		opts = append(opts, previews)
	} else if *previewDirFlag != "" {
		fmt.Fprintln(stderr, "Previews are disabled in settings (ui.preview_enabled), ignoring --preview-dir.")
	}

	files := processor.New(settings, styles, logger)
	runner := batch.New(files, styles, logger, opts...)

	fmt.Fprintln(stdout, "Photo Timestamper")
	fmt.Fprintln(stdout, "----------------------------------------")
	fmt.Fprintln(stdout)

	var result model.BatchResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-sigCh:
			fmt.Fprintln(stdout, "\nInterrupted, finishing current photo...")
			runner.Cancel()
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() error {
		defer stop()
		var err error
		result, err = runner.Process(gctx, paths, styleName)
		return err
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "Use --list-styles to see available styles.")
		return exitFailure
	}

	if *configFlag != "" {
		settings.UI.LastStyle = styleName
		if err := settings.Save(*configFlag); err != nil {
			logger.WithError(err).Warn("Cannot save settings")
		}
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, "----------------------------------------")
	fmt.Fprintf(stdout, "Stamped %d/%d photo(s)", result.SuccessCount, len(paths))
	if result.SkippedCount > 0 {
		fmt.Fprintf(stdout, ", %d skipped", result.SkippedCount)
	}
	fmt.Fprintln(stdout)
	for _, e := range result.Errors {
		fmt.Fprintln(stdout, "   "+e)
	}

	switch {
	case result.Cancelled:
		return exitInterrupted
	case result.FailedCount > result.SkippedCount:
		return exitFailure
	}
	return exitOK
}

// previewOption returns the batch option writing "<stem>_preview.jpg" files
// into dir, or nil when dir is empty or previews are disabled in settings.
func previewOption(settings *config.Settings, dir string, logger logrus.FieldLogger) (batch.Option, error) {
	if dir == "" || !settings.UI.PreviewEnabled {
		return nil, nil
	}
	if err := ioutils.EnsureDir(dir); err != nil {
		return nil, err
	}

	images := ioutils.NewImageService(logger)
	box := image.Pt(settings.UI.PreviewWidth, settings.UI.PreviewHeight)
	return batch.WithPreview(func(path string, img image.Image) {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out := filepath.Join(dir, stem+"_preview.jpg")
		if err := images.Save(out, img, ioutils.SaveOptions{Quality: 85}); err != nil {
			logger.WithError(err).WithField("file", filepath.Base(path)).Warn("Cannot write preview")
		}
	}, box), nil
}

func prefix(level batch.Level) string {
	switch level {
	case batch.LevelError:
		return "✗ "
	case batch.LevelWarning:
		return "!  "
	case batch.LevelSuccess:
		return "✓ "
	case batch.LevelInfo:
		return "›  "
	default:
		return "   "
	}
}
