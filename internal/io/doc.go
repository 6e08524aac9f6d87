// Package ioutils provides file system and JPEG utilities for the stamper.
//
// This package contains functions for:
//   - Decoding source photos and encoding stamped JPEGs
//   - Carrying the source's EXIF (APP1) segment over to the output
//   - Atomic file writes
//   - Directory scanning for JPEG inputs
//   - Directory creation
//
// Decoding never applies EXIF orientation: pixels are stamped as stored and
// the orientation tag travels with the copied EXIF segment.
package ioutils
