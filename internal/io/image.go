package ioutils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/handiism/photo-timestamper/internal/logging"
	"github.com/sirupsen/logrus"
)

var (
	// ErrDecode means a source image could not be read or decoded.
	ErrDecode = errors.New("decode image")

	// ErrEncode means a stamped image could not be encoded as JPEG.
	ErrEncode = errors.New("encode image")

	// ErrMetadataCopy means the source's EXIF segment could not be carried
	// over. It is reported but never aborts a save.
	ErrMetadataCopy = errors.New("copy metadata")
)

// SaveOptions controls how ImageService.Save writes a JPEG.
type SaveOptions struct {
	// Quality is the JPEG quality, 1-100.
	Quality int

	// ExifSource, when set, names the JPEG whose EXIF segment is copied
	// verbatim into the output.
	ExifSource string
}

// ImageService reads source photos and writes stamped JPEGs.
//
// Example usage:
//
//	svc := NewImageService(logger)
//
//	img, _ := svc.Decode("/photos/IMG_0001.jpg")
//	// ... stamp img ...
//	err := svc.Save("/photos/IMG_0001_stamped.jpg", stamped, SaveOptions{
//	    Quality:    95,
//	    ExifSource: "/photos/IMG_0001.jpg",
//	})
type ImageService struct {
	logger logrus.FieldLogger
}

// NewImageService creates a new ImageService. A nil logger discards output.
func NewImageService(logger logrus.FieldLogger) *ImageService {
	return &ImageService{logger: logging.WithComponent(logger, "image")}
}

// Decode opens and decodes the image at path. EXIF orientation is not applied.
//
// Errors wrap ErrDecode.
func (s *ImageService) Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDecode, filepath.Base(path), err)
	}
	return img, nil
}

// Encode encodes img as a baseline JPEG at the given quality, clamped to 1-100.
//
// Errors wrap ErrEncode.
func (s *ImageService) Encode(img image.Image, quality int) ([]byte, error) {
	quality = max(1, min(100, quality))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// Save encodes img and writes it atomically to path.
//
// When opts.ExifSource is set, the source's EXIF segment is inserted after
// SOI. A failure there is logged as a warning and the image is saved
// without metadata.
func (s *ImageService) Save(path string, img image.Image, opts SaveOptions) error {
	data, err := s.Encode(img, opts.Quality)
	if err != nil {
		return err
	}

	if opts.ExifSource != "" {
		withExif, err := CopyExif(opts.ExifSource, data)
		if err != nil {
			s.logger.WithError(err).WithField("file", filepath.Base(path)).Warn("Saving without EXIF")
		} else {
			data = withExif
		}
	}

	return WriteFileAtomic(path, data)
}

// CopyExif returns encoded with the EXIF segment of the JPEG at src
// inserted after SOI.
//
// Errors wrap ErrMetadataCopy.
func CopyExif(src string, encoded []byte) ([]byte, error) {
	raw, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetadataCopy, err)
	}

	app1, err := ExtractExif(raw)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrMetadataCopy, filepath.Base(src), err)
	}

	out, err := InsertSegment(encoded, markerAPP1, app1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMetadataCopy, err)
	}
	return out, nil
}
