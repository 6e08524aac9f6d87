package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	repeatedSpace    = regexp.MustCompile(`\s+`)
)

// OutputPath computes the destination path for a stamped photo.
//
// The directory is the input's directory when cfg.SameDirectory is set or
// cfg.CustomDirectory is empty, otherwise cfg.CustomDirectory. The file name
// is cfg.FilenamePattern with placeholders replaced:
//   - {original} - input file name without extension
//   - {date} - timestamp as YYYYMMDD
//   - {time} - timestamp as HHMMSS
//   - {index} - 1-based batch position, 3 digits zero-padded ("001" if index < 1)
//
// The input's extension is kept. OutputPath has no side effects.
//
// Example:
//
//	cfg := DefaultOutputConfig()
//	OutputPath("/photos/IMG_1.jpg", ts, 1, cfg) // "/photos/IMG_1_stamped.jpg"
func OutputPath(input string, ts time.Time, index int, cfg OutputConfig) string {
	dir := filepath.Dir(input)
	if !cfg.SameDirectory && cfg.CustomDirectory != "" {
		dir = cfg.CustomDirectory
	}

	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)

	pattern := cfg.FilenamePattern
	if pattern == "" {
		pattern = DefaultOutputConfig().FilenamePattern
	}
	if index < 1 {
		index = 1
	}

	r := strings.NewReplacer(
		"{original}", stem,
		"{date}", ts.Format("20060102"),
		"{time}", ts.Format("150405"),
		"{index}", fmt.Sprintf("%03d", index),
	)
	fileName := sanitizeFileName(r.Replace(pattern))
	if fileName == "" {
		fileName = stem
	}

	return filepath.Join(dir, fileName+ext)
}

// sanitizeFileName removes or replaces characters that are invalid in file names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
func sanitizeFileName(name string) string {
	name = invalidFileChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
