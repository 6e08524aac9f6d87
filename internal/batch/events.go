package batch

import (
	"context"
	"image"

	"github.com/handiism/photo-timestamper/internal/model"
)

// EventKind tells which fields of an Event are set.
type EventKind int

const (
	// EventProgress sets Current, Total and Path.
	EventProgress EventKind = iota
	// EventPreview sets Path and Preview.
	EventPreview
	// EventMessage sets Message.
	EventMessage
)

// Event is one progress notification delivered by Events.
type Event struct {
	Kind    EventKind
	Current int
	Total   int
	Path    string
	Preview image.Image
	Message Message
}

// Events runs a batch on a new goroutine and streams its notifications.
//
// The channel is closed when the batch ends; wait then returns the batch
// outcome. Callers must drain the channel or cancel ctx, otherwise the
// batch blocks on delivery. Previews are streamed when the Processor was
// built WithPreview. Callbacks given as options are not called.
func (p *Processor) Events(ctx context.Context, paths []string, styleName string) (<-chan Event, func() (model.BatchResult, error)) {
	ch := make(chan Event, 16)
	done := make(chan struct{})

	send := func(ev Event) {
		select {
		case ch <- ev:
		case <-ctx.Done():
		}
	}

	h := hooks{
		progress: func(current, total int, path string) {
			send(Event{Kind: EventProgress, Current: current, Total: total, Path: path})
		},
		message: func(msg Message) {
			send(Event{Kind: EventMessage, Message: msg})
		},
		previews:    p.hooks.previews,
		previewSize: p.hooks.previewSize,
	}
	if h.previews {
		h.preview = func(path string, img image.Image) {
			send(Event{Kind: EventPreview, Path: path, Preview: img})
		}
	}

	var (
		result model.BatchResult
		err    error
	)
	go func() {
		defer close(done)
		defer close(ch)
		result, err = p.run(ctx, paths, styleName, h)
	}()

	return ch, func() (model.BatchResult, error) {
		<-done
		return result, err
	}
}
