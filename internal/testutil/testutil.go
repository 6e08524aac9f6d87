// Package testutil builds JPEG fixtures for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// EXIF tags understood by ExifPayload.
const (
	TagDateTime          uint16 = 0x0132
	TagDateTimeOriginal  uint16 = 0x9003
	TagDateTimeDigitized uint16 = 0x9004

	tagExifIFDPointer uint16 = 0x8769
	tagGPSIFDPointer  uint16 = 0x8825

	typeASCII uint16 = 2
	typeLong  uint16 = 4
)

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value []byte
}

// ExifPayload returns an APP1 payload ("Exif\x00\x00" + little-endian TIFF)
// carrying the given ASCII tags. TagDateTime goes to IFD0, the others to
// the Exif sub-IFD.
func ExifPayload(tags map[uint16]string) []byte {
	return exifPayload(tags, false)
}

// ExifPayloadBrokenGPS is ExifPayload plus a GPS IFD pointer that points
// past the end of the data, so decoders report a non-critical error.
func ExifPayloadBrokenGPS(tags map[uint16]string) []byte {
	return exifPayload(tags, true)
}

func exifPayload(tags map[uint16]string, brokenGPS bool) []byte {
	var ifd0, sub []ifdEntry
	for tag, val := range tags {
		e := ifdEntry{tag: tag, typ: typeASCII, count: uint32(len(val) + 1), value: append([]byte(val), 0)}
		if tag == TagDateTime {
			ifd0 = append(ifd0, e)
		} else {
			sub = append(sub, e)
		}
	}
	if len(sub) > 0 {
		ifd0 = append(ifd0, ifdEntry{tag: tagExifIFDPointer, typ: typeLong, count: 1})
	}
	if brokenGPS {
		ifd0 = append(ifd0, ifdEntry{tag: tagGPSIFDPointer, typ: typeLong, count: 1, value: []byte{0x00, 0x00, 0x0F, 0x00}})
	}
	sort.Slice(ifd0, func(i, j int) bool { return ifd0[i].tag < ifd0[j].tag })
	sort.Slice(sub, func(i, j int) bool { return sub[i].tag < sub[j].tag })

	ifdSize := func(n int) uint32 { return uint32(2 + 12*n + 4) }
	ifd0Off := uint32(8)
	subOff := ifd0Off + ifdSize(len(ifd0))
	dataOff := subOff
	if len(sub) > 0 {
		dataOff += ifdSize(len(sub))
	}

	le := binary.LittleEndian
	var data bytes.Buffer
	writeIFD := func(buf *bytes.Buffer, entries []ifdEntry) {
		_ = binary.Write(buf, le, uint16(len(entries)))
		for _, e := range entries {
			_ = binary.Write(buf, le, e.tag)
			_ = binary.Write(buf, le, e.typ)
			_ = binary.Write(buf, le, e.count)
			switch {
			case e.tag == tagExifIFDPointer:
				_ = binary.Write(buf, le, subOff)
			case len(e.value) <= 4:
				v := make([]byte, 4)
				copy(v, e.value)
				buf.Write(v)
			default:
				_ = binary.Write(buf, le, dataOff+uint32(data.Len()))
				data.Write(e.value)
			}
		}
		_ = binary.Write(buf, le, uint32(0))
	}

	var tiff bytes.Buffer
	tiff.WriteString("II")
	_ = binary.Write(&tiff, le, uint16(42))
	_ = binary.Write(&tiff, le, ifd0Off)
	writeIFD(&tiff, ifd0)
	if len(sub) > 0 {
		writeIFD(&tiff, sub)
	}
	tiff.Write(data.Bytes())

	return append([]byte("Exif\x00\x00"), tiff.Bytes()...)
}

// JPEG encodes a w x h image filled with c. A non-nil app1 payload is
// inserted as an APP1 segment right after SOI.
func JPEG(w, h int, c color.Color, app1 []byte) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		panic(err)
	}
	encoded := buf.Bytes()
	if app1 == nil {
		return encoded
	}

	var out bytes.Buffer
	out.Write(encoded[:2])
	out.Write([]byte{0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(len(app1)+2))
	out.Write(app1)
	out.Write(encoded[2:])
	return out.Bytes()
}

// WriteJPEG writes a gray w x h JPEG with optional EXIF tags to dir/name
// and returns its path.
func WriteJPEG(t testing.TB, dir, name string, w, h int, tags map[uint16]string) string {
	t.Helper()

	var app1 []byte
	if len(tags) > 0 {
		app1 = ExifPayload(tags)
	}

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, JPEG(w, h, color.RGBA{128, 128, 128, 255}, app1), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
