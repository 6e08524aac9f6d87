package batch

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync/atomic"

	"github.com/handiism/photo-timestamper/internal/logging"
	"github.com/handiism/photo-timestamper/internal/model"
	"github.com/sirupsen/logrus"
)

// Level indicates the severity/type of a progress message.
type Level int

const (
	LevelInfo Level = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// Message is a human-readable progress update.
type Message struct {
	Text  string
	Level Level
}

// FileProcessor stamps single files. *processor.Processor satisfies it.
type FileProcessor interface {
	ProcessAt(input, styleName string, index int) (bool, error)
	Preview(input, styleName string, box image.Point) (image.Image, error)
}

// StyleLoader loads styles by name. *style.Manager satisfies it.
type StyleLoader interface {
	Load(name string) (model.Style, error)
}

// DefaultPreviewSize bounds previews when WithPreview is given no size.
var DefaultPreviewSize = image.Pt(3600, 2700)

type hooks struct {
	progress    func(current, total int, path string)
	preview     func(path string, img image.Image)
	message     func(Message)
	previews    bool
	previewSize image.Point
}

// Option configures a Processor.
type Option func(*Processor)

// WithProgress reports (current, total, path) before each item. current is 1-based.
func WithProgress(fn func(current, total int, path string)) Option {
	return func(p *Processor) { p.hooks.progress = fn }
}

// WithPreview renders a stamped preview of each item, bounded by size,
// before the item is saved. A zero size uses DefaultPreviewSize. fn may be
// nil when previews are only consumed through Events.
func WithPreview(fn func(path string, img image.Image), size image.Point) Option {
	return func(p *Processor) {
		p.hooks.preview = fn
		p.hooks.previews = true
		p.hooks.previewSize = size
	}
}

// WithMessages receives human-readable progress messages.
func WithMessages(fn func(Message)) Option {
	return func(p *Processor) { p.hooks.message = fn }
}

// Processor runs batches sequentially. One batch at a time may run on a
// Processor; Cancel is safe to call from any goroutine.
type Processor struct {
	files  FileProcessor
	styles StyleLoader
	logger logrus.FieldLogger
	hooks  hooks

	cancelled atomic.Bool
}

// New creates a Processor. A nil logger discards output.
func New(files FileProcessor, styles StyleLoader, logger logrus.FieldLogger, opts ...Option) *Processor {
	p := &Processor{
		files:  files,
		styles: styles,
		logger: logging.WithComponent(logger, "batch"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cancel stops the running batch before its next item.
func (p *Processor) Cancel() {
	p.cancelled.Store(true)
}

// Process stamps paths in order with the named style.
//
// The returned error is non-nil only when the style cannot be loaded, in
// which case no file was touched. Per-item failures are reported in the
// result. A cancelled batch returns the result of the items it reached.
func (p *Processor) Process(ctx context.Context, paths []string, styleName string) (model.BatchResult, error) {
	return p.run(ctx, paths, styleName, p.hooks)
}

func (p *Processor) run(ctx context.Context, paths []string, styleName string, h hooks) (model.BatchResult, error) {
	p.cancelled.Store(false)

	var result model.BatchResult

	if _, err := p.styles.Load(styleName); err != nil {
		p.emit(h, Message{Text: fmt.Sprintf("Cannot load style %s: %v", styleName, err), Level: LevelError})
		return result, fmt.Errorf("load style %q: %w", styleName, err)
	}

	total := len(paths)
	box := h.previewSize
	if box.X <= 0 || box.Y <= 0 {
		box = DefaultPreviewSize
	}

	p.logger.WithFields(logrus.Fields{"style": styleName, "files": total}).Info("Batch started")
	p.emit(h, Message{Text: fmt.Sprintf("Stamping %d file(s) with %s", total, styleName), Level: LevelInfo})

	for i, path := range paths {
		if p.cancelled.Load() || ctx.Err() != nil {
			result.Cancelled = true
			p.logger.WithField("remaining", total-i).Info("Batch cancelled")
			p.emit(h, Message{Text: fmt.Sprintf("Cancelled, %d file(s) not processed", total-i), Level: LevelWarning})
			break
		}

		index := i + 1
		name := filepath.Base(path)

		if h.progress != nil {
			h.progress(index, total, path)
		}

		if h.previews {
			img, err := p.files.Preview(path, styleName, box)
			if err != nil {
				p.logger.WithError(err).WithField("file", name).Debug("Preview failed")
			} else if h.preview != nil {
				h.preview(path, img)
			}
		}

		ok, err := p.files.ProcessAt(path, styleName, index)
		switch {
		case err != nil:
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			p.logger.WithError(err).WithField("file", name).Error("Stamping failed")
			p.emit(h, Message{Text: fmt.Sprintf("Failed %s: %v", name, err), Level: LevelError})
		case !ok:
			result.FailedCount++
			result.SkippedCount++
			p.emit(h, Message{Text: fmt.Sprintf("Skipped %s: output exists", name), Level: LevelWarning})
		default:
			result.SuccessCount++
			p.emit(h, Message{Text: fmt.Sprintf("Stamped %s", name), Level: LevelVerbose})
		}
	}

	p.logger.WithFields(logrus.Fields{
		"success": result.SuccessCount,
		"failed":  result.FailedCount,
		"skipped": result.SkippedCount,
	}).Info("Batch finished")

	level := LevelSuccess
	if result.FailedCount > result.SkippedCount {
		level = LevelWarning
	}
	p.emit(h, Message{
		Text:  fmt.Sprintf("Done: %d stamped, %d failed, %d skipped", result.SuccessCount, result.FailedCount-result.SkippedCount, result.SkippedCount),
		Level: level,
	})

	return result, nil
}

func (p *Processor) emit(h hooks, msg Message) {
	if h.message != nil {
		h.message(msg)
	}
}
