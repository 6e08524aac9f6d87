package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/photo-timestamper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractExif(t *testing.T) {
	payload := testutil.ExifPayload(map[uint16]string{testutil.TagDateTimeOriginal: "2023:07:04 10:15:00"})
	data := testutil.JPEG(8, 8, color.White, payload)

	got, err := ExtractExif(data)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = ExtractExif(testutil.JPEG(8, 8, color.White, nil))
	assert.ErrorIs(t, err, errNoExif)

	_, err = ExtractExif([]byte("not a jpeg"))
	assert.Error(t, err)

	_, err = ExtractExif(data[:30])
	assert.Error(t, err)
}

func TestInsertSegment(t *testing.T) {
	plain := testutil.JPEG(8, 8, color.Black, nil)
	payload := testutil.ExifPayload(map[uint16]string{testutil.TagDateTime: "2021:12:31 23:59:59"})

	out, err := InsertSegment(plain, markerAPP1, payload)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xE1}, out[:4])
	assert.Len(t, out, len(plain)+len(payload)+4)

	got, err := ExtractExif(out)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = InsertSegment(plain, markerAPP1, make([]byte, maxSegmentPayload+1))
	assert.Error(t, err)

	_, err = InsertSegment([]byte{0x00}, markerAPP1, payload)
	assert.Error(t, err)
}

func TestImageService_SaveWithExif(t *testing.T) {
	dir := t.TempDir()
	src := testutil.WriteJPEG(t, dir, "src.jpg", 32, 24,
		map[uint16]string{testutil.TagDateTimeOriginal: "2023:07:04 10:15:00"})

	svc := NewImageService(nil)
	img, err := svc.Decode(src)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 24), img.Bounds())

	dst := filepath.Join(dir, "out.jpg")
	require.NoError(t, svc.Save(dst, img, SaveOptions{Quality: 90, ExifSource: src}))

	srcRaw, err := os.ReadFile(src)
	require.NoError(t, err)
	dstRaw, err := os.ReadFile(dst)
	require.NoError(t, err)

	want, err := ExtractExif(srcRaw)
	require.NoError(t, err)
	got, err := ExtractExif(dstRaw)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(want, got), "exif segment must be copied byte for byte")

	decoded, err := svc.Decode(dst)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
}

func TestImageService_SaveWithoutSourceExif(t *testing.T) {
	dir := t.TempDir()
	src := testutil.WriteJPEG(t, dir, "plain.jpg", 16, 16, nil)

	svc := NewImageService(nil)
	img, err := svc.Decode(src)
	require.NoError(t, err)

	dst := filepath.Join(dir, "out.jpg")
	require.NoError(t, svc.Save(dst, img, SaveOptions{Quality: 90, ExifSource: src}))

	raw, err := os.ReadFile(dst)
	require.NoError(t, err)
	_, err = ExtractExif(raw)
	assert.ErrorIs(t, err, errNoExif)

	_, err = CopyExif(src, raw)
	assert.ErrorIs(t, err, ErrMetadataCopy)
	_, err = CopyExif(filepath.Join(dir, "missing.jpg"), raw)
	assert.ErrorIs(t, err, ErrMetadataCopy)
}

func TestImageService_Decode(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0644))

	svc := NewImageService(nil)
	_, err := svc.Decode(bad)
	assert.ErrorIs(t, err, ErrDecode)

	_, err = svc.Decode(filepath.Join(dir, "missing.jpg"))
	assert.ErrorIs(t, err, ErrDecode)
}

func TestImageService_EncodeQuality(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}

	svc := NewImageService(nil)
	low, err := svc.Encode(img, 10)
	require.NoError(t, err)
	high, err := svc.Encode(img, 100)
	require.NoError(t, err)
	assert.Less(t, len(low), len(high))

	clamped, err := svc.Encode(img, 500)
	require.NoError(t, err)
	assert.Equal(t, high, clamped)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.jpg")

	require.NoError(t, WriteFileAtomic(path, []byte("one")))
	require.NoError(t, WriteFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	assert.Error(t, WriteFileAtomic(filepath.Join(dir, "missing", "a.jpg"), []byte("x")))
}

func TestScanImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jpg", "a.JPEG", "c.png", ".hidden.jpg", "sub/d.jpg", ".git/e.jpg"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, nil, 0644))
	}

	flat, err := ScanImages(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.JPEG"), filepath.Join(dir, "b.jpg")}, flat)

	deep, err := ScanImages(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.JPEG"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "sub", "d.jpg"),
	}, deep)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ScanImages(ctx, dir, true)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"x.jpg", "y.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	y := filepath.Join(dir, "y.jpg")

	got, err := CollectImages(context.Background(), []string{y, dir}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{y, filepath.Join(dir, "x.jpg")}, got)

	_, err = CollectImages(context.Background(), []string{filepath.Join(dir, "nope")}, false)
	assert.Error(t, err)
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")

	assert.False(t, FileExists(nested))
	require.NoError(t, EnsureDir(nested))
	require.NoError(t, EnsureDir(nested))
	assert.True(t, FileExists(nested))

	assert.True(t, IsJPEG("IMG.JPG"))
	assert.True(t, IsJPEG("a/b.jpeg"))
	assert.False(t, IsJPEG("a.png"))
	assert.False(t, IsJPEG("jpg"))
}
