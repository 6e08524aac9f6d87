// Package timesource resolves the timestamp a photo is stamped with.
//
// The primary source is EXIF capture time, the file's timestamps or a fixed
// custom time. When EXIF is the primary source and the photo carries no
// usable time, a fallback mode decides between failing, using a file
// timestamp or using the custom time.
//
//	ex := timesource.New(model.TimeSourceConfig{
//	    Primary:      model.TimeExif,
//	    FallbackMode: model.TimeFileModified,
//	}, logger)
//	ts, err := ex.Extract("/photos/IMG_0001.jpg")
package timesource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	"github.com/handiism/photo-timestamper/internal/logging"
	"github.com/handiism/photo-timestamper/internal/model"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/sirupsen/logrus"
)

var (
	// ErrTimeUnavailable means EXIF had no usable time and the fallback mode is "error".
	ErrTimeUnavailable = errors.New("capture time unavailable")

	// ErrInvalidCustomTime means the custom time is empty or malformed.
	ErrInvalidCustomTime = errors.New("invalid custom time")

	// ErrUnknownTimeMode means the primary source or fallback mode is not recognised.
	ErrUnknownTimeMode = errors.New("unknown time mode")
)

const exifLayout = "2006:01:02 15:04:05"

// customLayouts are tried in order when parsing a custom time.
var customLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

// exifFields are read in priority order.
var exifFields = []exif.FieldName{exif.DateTimeOriginal, exif.DateTimeDigitized, exif.DateTime}

// Extractor resolves timestamps according to a TimeSourceConfig.
//
// Extractor keeps no state between calls: every Extract reads the file anew.
type Extractor struct {
	cfg    model.TimeSourceConfig
	logger logrus.FieldLogger
}

// New creates an Extractor. A nil logger discards log output.
func New(cfg model.TimeSourceConfig, logger logrus.FieldLogger) *Extractor {
	return &Extractor{
		cfg:    cfg,
		logger: logging.WithComponent(logger, "timesource"),
	}
}

// Config returns the configuration the Extractor was built with.
func (e *Extractor) Config() model.TimeSourceConfig {
	return e.cfg
}

// Extract returns the timestamp for the photo at path.
func (e *Extractor) Extract(path string) (time.Time, error) {
	if !e.cfg.Primary.ValidPrimary() {
		return time.Time{}, fmt.Errorf("%w: primary %q", ErrUnknownTimeMode, e.cfg.Primary)
	}
	if !e.cfg.FallbackMode.ValidFallback() {
		return time.Time{}, fmt.Errorf("%w: fallback %q", ErrUnknownTimeMode, e.cfg.FallbackMode)
	}

	switch e.cfg.Primary {
	case model.TimeCustom:
		return ParseCustomTime(e.cfg.CustomTime)
	case model.TimeFileModified, model.TimeFileCreated:
		return FileTime(path, e.cfg.Primary)
	}

	ts, field, err := ExifTime(path)
	if err == nil {
		e.logger.WithFields(logrus.Fields{"file": filepath.Base(path), "tag": field}).Debug("Using EXIF time")
		return ts, nil
	}
	e.logger.WithError(err).WithField("file", filepath.Base(path)).Debug("No usable EXIF time")

	switch e.cfg.FallbackMode {
	case model.TimeFileModified, model.TimeFileCreated:
		e.logger.WithFields(logrus.Fields{"file": filepath.Base(path), "fallback": e.cfg.FallbackMode}).
			Info("EXIF unavailable, using file time")
		return FileTime(path, e.cfg.FallbackMode)
	case model.TimeCustom:
		return ParseCustomTime(e.cfg.CustomTime)
	default:
		return time.Time{}, fmt.Errorf("%w: %s", ErrTimeUnavailable, path)
	}
}

// ExifTime reads the first parsable EXIF time of DateTimeOriginal,
// DateTimeDigitized and DateTime, and reports which tag it came from.
func ExifTime(path string) (time.Time, exif.FieldName, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, "", err
	}
	defer f.Close()

	// Sub-IFD and maker note failures are not critical: the main and Exif
	// IFDs are still usable.
	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return time.Time{}, "", fmt.Errorf("decode exif: %w", err)
	}

	for _, field := range exifFields {
		tag, err := x.Get(field)
		if err != nil || tag == nil {
			continue
		}
		s, err := tag.StringVal()
		if err != nil {
			continue
		}
		s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
		ts, err := time.ParseInLocation(exifLayout, s, time.Local)
		if err == nil {
			return ts, field, nil
		}
	}

	return time.Time{}, "", errors.New("no capture time in exif")
}

// FileTime reads a filesystem timestamp.
//
// TimeFileCreated prefers the birth time and falls back to the status-change
// time, then to the modification time, on filesystems that record neither.
func FileTime(path string, mode model.TimeMode) (time.Time, error) {
	ts, err := times.Stat(path)
	if err != nil {
		return time.Time{}, err
	}

	switch mode {
	case model.TimeFileModified:
		return ts.ModTime(), nil
	case model.TimeFileCreated:
		if ts.HasBirthTime() {
			return ts.BirthTime(), nil
		}
		if ts.HasChangeTime() {
			return ts.ChangeTime(), nil
		}
		return ts.ModTime(), nil
	default:
		return time.Time{}, fmt.Errorf("%w: file time %q", ErrUnknownTimeMode, mode)
	}
}

// ParseCustomTime parses "2006-01-02 15:04:05" or "2006-01-02" in local time.
func ParseCustomTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: not set", ErrInvalidCustomTime)
	}

	for _, layout := range customLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidCustomTime, s)
}
