package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/photo-timestamper/internal/config"
	"github.com/handiism/photo-timestamper/internal/model"
	"github.com/handiism/photo-timestamper/internal/processor"
	"github.com/handiism/photo-timestamper/internal/style"
	"github.com/handiism/photo-timestamper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outcome struct {
	ok  bool
	err error
}

type fakeFiles struct {
	outcomes   map[string]outcome
	processed  []string
	indexes    []int
	previewErr error
}

func (f *fakeFiles) ProcessAt(input, _ string, index int) (bool, error) {
	f.processed = append(f.processed, input)
	f.indexes = append(f.indexes, index)
	if o, ok := f.outcomes[input]; ok {
		return o.ok, o.err
	}
	return true, nil
}

func (f *fakeFiles) Preview(_, _ string, box image.Point) (image.Image, error) {
	if f.previewErr != nil {
		return nil, f.previewErr
	}
	return image.NewRGBA(image.Rect(0, 0, box.X, box.Y)), nil
}

type fakeStyles struct{ err error }

func (f fakeStyles) Load(name string) (model.Style, error) {
	if f.err != nil {
		return model.Style{}, f.err
	}
	st := model.DefaultStyle()
	st.Name = name
	return st, nil
}

func paths(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("/photos/%02d.jpg", i+1)
	}
	return out
}

func TestProcessor_CountsEveryItem(t *testing.T) {
	files := &fakeFiles{outcomes: map[string]outcome{
		"/photos/02.jpg": {err: errors.New("boom")},
		"/photos/04.jpg": {ok: false},
	}}

	var progress [][2]int
	p := New(files, fakeStyles{}, nil, WithProgress(func(current, total int, _ string) {
		progress = append(progress, [2]int{current, total})
	}))

	result, err := p.Process(context.Background(), paths(5), "CANON")
	require.NoError(t, err)

	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 2, result.FailedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, 5, result.Processed())
	assert.Equal(t, []string{"02.jpg: boom"}, result.Errors)
	assert.False(t, result.Cancelled)

	assert.Equal(t, paths(5), files.processed)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, files.indexes)
	assert.Equal(t, [][2]int{{1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 5}}, progress)
}

func TestProcessor_StyleFailureTouchesNothing(t *testing.T) {
	files := &fakeFiles{}
	called := false
	p := New(files, fakeStyles{err: style.ErrStyleNotFound}, nil, WithProgress(func(int, int, string) { called = true }))

	result, err := p.Process(context.Background(), paths(3), "LEICA")
	assert.ErrorIs(t, err, style.ErrStyleNotFound)
	assert.Equal(t, model.BatchResult{}, result)
	assert.Empty(t, files.processed)
	assert.False(t, called)
}

func TestProcessor_CancelStopsBeforeNextItem(t *testing.T) {
	files := &fakeFiles{}

	var p *Processor
	p = New(files, fakeStyles{}, nil, WithProgress(func(current, _ int, _ string) {
		if current == 3 {
			p.Cancel()
		}
	}))

	result, err := p.Process(context.Background(), paths(6), "CANON")
	require.NoError(t, err)

	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 3, result.Processed())
	assert.True(t, result.Cancelled)
	assert.Len(t, files.processed, 3)

	// the flag is reset on every run
	result, err = p.Process(context.Background(), paths(2), "CANON")
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.False(t, result.Cancelled)
}

func TestProcessor_ContextCancel(t *testing.T) {
	files := &fakeFiles{}
	ctx, cancel := context.WithCancel(context.Background())

	p := New(files, fakeStyles{}, nil, WithProgress(func(current, _ int, _ string) {
		if current == 2 {
			cancel()
		}
	}))

	result, err := p.Process(ctx, paths(4), "CANON")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed())
	assert.True(t, result.Cancelled)

	result, err = p.Process(ctx, paths(4), "CANON")
	require.NoError(t, err)
	assert.Zero(t, result.Processed())
}

func TestProcessor_PreviewFailuresAreSwallowed(t *testing.T) {
	files := &fakeFiles{previewErr: errors.New("cannot decode")}
	previews := 0
	p := New(files, fakeStyles{}, nil, WithPreview(func(string, image.Image) { previews++ }, image.Pt(80, 60)))

	result, err := p.Process(context.Background(), paths(2), "CANON")
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Zero(t, previews)

	files.previewErr = nil
	var sizes []image.Rectangle
	p = New(files, fakeStyles{}, nil, WithPreview(func(_ string, img image.Image) {
		sizes = append(sizes, img.Bounds())
	}, image.Point{}))

	_, err = p.Process(context.Background(), paths(1), "CANON")
	require.NoError(t, err)
	assert.Equal(t, []image.Rectangle{image.Rectangle{Max: DefaultPreviewSize}}, sizes)
}

func TestProcessor_Messages(t *testing.T) {
	files := &fakeFiles{outcomes: map[string]outcome{"/photos/01.jpg": {err: errors.New("bad")}}}
	var msgs []Message
	p := New(files, fakeStyles{}, nil, WithMessages(func(m Message) { msgs = append(msgs, m) }))

	_, err := p.Process(context.Background(), paths(2), "CANON")
	require.NoError(t, err)

	require.NotEmpty(t, msgs)
	assert.Equal(t, LevelInfo, msgs[0].Level)
	assert.Contains(t, msgs[1].Text, "01.jpg")
	assert.Equal(t, LevelError, msgs[1].Level)
	last := msgs[len(msgs)-1]
	assert.Equal(t, LevelWarning, last.Level)
	assert.Contains(t, last.Text, "1 stamped, 1 failed, 0 skipped")
}

func TestProcessor_Events(t *testing.T) {
	files := &fakeFiles{outcomes: map[string]outcome{"/photos/02.jpg": {ok: false}}}
	p := New(files, fakeStyles{}, nil, WithPreview(nil, image.Pt(10, 10)))

	events, wait := p.Events(context.Background(), paths(3), "CANON")

	var progress, previews, messages int
	for ev := range events {
		switch ev.Kind {
		case EventProgress:
			progress++
			assert.Equal(t, 3, ev.Total)
		case EventPreview:
			previews++
			assert.Equal(t, image.Rect(0, 0, 10, 10), ev.Preview.Bounds())
		case EventMessage:
			messages++
		}
	}

	result, err := wait()
	require.NoError(t, err)
	assert.Equal(t, 3, progress)
	assert.Equal(t, 3, previews)
	assert.Positive(t, messages)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
}

func TestProcessor_WithFileProcessor(t *testing.T) {
	dir := t.TempDir()
	stylesDir := filepath.Join(dir, "styles")
	require.NoError(t, os.MkdirAll(stylesDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(stylesDir, "CANON.yml"), []byte("format:\n  date_pattern: \"%Y.%m.%d\"\n"), 0644))

	settings := config.DefaultSettings()
	settings.Output.FilenamePattern = "{original}_{index}"
	styles := style.NewManager(stylesDir, "", nil)
	files := processor.New(settings, styles, nil)

	tags := map[uint16]string{testutil.TagDateTimeOriginal: "2023:07:04 10:15:00"}
	inputs := []string{
		testutil.WriteJPEG(t, dir, "a.jpg", 64, 48, tags),
		testutil.WriteJPEG(t, dir, "b.jpg", 64, 48, nil),
		testutil.WriteJPEG(t, dir, "c.jpg", 48, 64, tags),
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c_003.jpg"), []byte("existing"), 0644))

	var previews []string
	p := New(files, styles, nil, WithPreview(func(path string, _ image.Image) {
		previews = append(previews, filepath.Base(path))
	}, image.Pt(32, 32)))

	result, err := p.Process(context.Background(), inputs, "CANON")
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailedCount)
	assert.Equal(t, 1, result.SkippedCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "b.jpg")

	assert.FileExists(t, filepath.Join(dir, "a_001.jpg"))
	assert.NoFileExists(t, filepath.Join(dir, "b_002.jpg"))
	assert.Equal(t, []string{"a.jpg", "c.jpg"}, previews)

	hits, misses := styles.CacheStats()
	assert.Equal(t, 1, misses)
	assert.Positive(t, hits)
}
