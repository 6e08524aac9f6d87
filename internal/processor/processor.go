// Package processor stamps a single photo: it loads the style, resolves the
// timestamp, renders the watermark and writes the result next to the input
// or into the configured output directory.
package processor

import (
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/handiism/photo-timestamper/internal/config"
	ioutils "github.com/handiism/photo-timestamper/internal/io"
	"github.com/handiism/photo-timestamper/internal/logging"
	"github.com/handiism/photo-timestamper/internal/model"
	"github.com/handiism/photo-timestamper/internal/render"
	"github.com/handiism/photo-timestamper/internal/timesource"
	"github.com/sirupsen/logrus"
)

// StyleSource resolves styles and the faces they render with.
//
// *style.Manager satisfies it.
type StyleSource interface {
	render.FontProvider
	Load(name string) (model.Style, error)
}

// Processor runs the per-file pipeline. It is not safe for concurrent use.
type Processor struct {
	output model.OutputConfig
	styles StyleSource
	times  *timesource.Extractor
	images *ioutils.ImageService
	logger logrus.FieldLogger
}

// New creates a Processor from the time source and output sections of
// settings. A nil logger discards output.
func New(settings *config.Settings, styles StyleSource, logger logrus.FieldLogger) *Processor {
	return &Processor{
		output: settings.Output,
		styles: styles,
		times:  timesource.New(settings.TimeSource, logger),
		images: ioutils.NewImageService(logger),
		logger: logging.WithComponent(logger, "processor"),
	}
}

// OutputConfig returns the output settings the Processor writes with.
func (p *Processor) OutputConfig() model.OutputConfig {
	return p.output
}

// OutputPath returns where input would be written for a timestamp and a
// 1-based batch index.
func (p *Processor) OutputPath(input string, ts time.Time, index int) string {
	return model.OutputPath(input, ts, index, p.output)
}

// Process stamps input with the named style and writes it to output, or to
// a synthesized path (index 1) when output is empty.
//
// It returns false with a nil error when the target exists and overwriting
// is disabled.
func (p *Processor) Process(input, styleName, output string) (bool, error) {
	return p.process(input, styleName, output, 1)
}

// ProcessAt is Process with a synthesized output path for the given
// 1-based batch position.
func (p *Processor) ProcessAt(input, styleName string, index int) (bool, error) {
	return p.process(input, styleName, "", index)
}

func (p *Processor) process(input, styleName, output string, index int) (bool, error) {
	st, err := p.styles.Load(styleName)
	if err != nil {
		return false, err
	}

	img, err := p.images.Decode(input)
	if err != nil {
		return false, err
	}

	ts, err := p.times.Extract(input)
	if err != nil {
		return false, err
	}

	stamped, err := render.New(st, p.styles).Render(img, ts)
	if err != nil {
		return false, fmt.Errorf("render %s: %w", filepath.Base(input), err)
	}

	if output == "" {
		output = p.OutputPath(input, ts, index)
	}

	if err := ioutils.EnsureDir(filepath.Dir(output)); err != nil {
		return false, fmt.Errorf("create output directory: %w", err)
	}

	if !p.output.OverwriteExisting && ioutils.FileExists(output) {
		p.logger.WithField("output", output).Warn("Output exists, skipping")
		return false, nil
	}

	opts := ioutils.SaveOptions{Quality: p.output.JPEGQuality}
	if p.output.PreserveExif {
		opts.ExifSource = input
	}
	if err := p.images.Save(output, stamped, opts); err != nil {
		return false, err
	}

	p.logger.WithFields(logrus.Fields{
		"file":   filepath.Base(input),
		"output": output,
		"time":   ts.Format(time.DateTime),
	}).Info("Stamped")

	return true, nil
}

// Preview decodes input, resolves its timestamp and renders a stamped
// thumbnail that fits within box. Nothing is written to disk.
func (p *Processor) Preview(input, styleName string, box image.Point) (image.Image, error) {
	st, err := p.styles.Load(styleName)
	if err != nil {
		return nil, err
	}

	img, err := p.images.Decode(input)
	if err != nil {
		return nil, err
	}

	ts, err := p.times.Extract(input)
	if err != nil {
		return nil, err
	}

	return render.New(st, p.styles).RenderPreview(img, ts, box)
}
