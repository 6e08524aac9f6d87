package ioutils

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP1 = 0xE1

	// maxSegmentPayload is the largest payload a length-prefixed segment can hold.
	maxSegmentPayload = 0xFFFF - 2
)

var exifHeader = []byte("Exif\x00\x00")

// errNoExif means the JPEG has no APP1 Exif segment.
var errNoExif = errors.New("no exif segment")

// segment is a JPEG marker segment. data excludes the marker and length.
type segment struct {
	marker byte
	data   []byte
}

// parseHeaderSegments reads the marker segments preceding the scan data.
// Standalone markers (SOI, EOI, RSTn, TEM) carry no data.
func parseHeaderSegments(data []byte) ([]segment, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, errors.New("not a JPEG")
	}

	segs := []segment{{marker: markerSOI}}
	i := 2
	for i < len(data) {
		if data[i] != 0xFF {
			return nil, fmt.Errorf("expected marker at offset %d", i)
		}
		// Fill bytes may pad a marker.
		for i < len(data) && data[i] == 0xFF {
			i++
		}
		if i >= len(data) {
			break
		}
		marker := data[i]
		i++

		if marker == markerEOI || marker == 0x01 || (marker >= 0xD0 && marker <= markerSOI) {
			segs = append(segs, segment{marker: marker})
			if marker == markerEOI {
				break
			}
			continue
		}

		if i+2 > len(data) {
			return nil, fmt.Errorf("truncated segment 0x%02X", marker)
		}
		n := int(binary.BigEndian.Uint16(data[i:i+2])) - 2
		i += 2
		if n < 0 || i+n > len(data) {
			return nil, fmt.Errorf("segment 0x%02X overruns file", marker)
		}
		segs = append(segs, segment{marker: marker, data: data[i : i+n]})
		i += n

		if marker == markerSOS {
			break
		}
	}
	return segs, nil
}

// ExtractExif returns the payload of the first APP1 Exif segment of a JPEG,
// including its "Exif\x00\x00" header.
func ExtractExif(data []byte) ([]byte, error) {
	segs, err := parseHeaderSegments(data)
	if err != nil {
		return nil, err
	}
	for _, s := range segs {
		if s.marker == markerAPP1 && bytes.HasPrefix(s.data, exifHeader) {
			return append([]byte(nil), s.data...), nil
		}
	}
	return nil, errNoExif
}

// InsertSegment returns a copy of a JPEG with a marker segment inserted
// directly after SOI.
func InsertSegment(data []byte, marker byte, payload []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, errors.New("not a JPEG")
	}
	if len(payload) > maxSegmentPayload {
		return nil, fmt.Errorf("segment payload of %d bytes exceeds %d", len(payload), maxSegmentPayload)
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + len(payload) + 4)
	buf.Write(data[:2])
	buf.Write([]byte{0xFF, marker})
	_ = binary.Write(&buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
	buf.Write(data[2:])
	return buf.Bytes(), nil
}
