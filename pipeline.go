// Package gifcore binds the Ordered Queue, Frame Preparer, Delay
// Scheduler, and Container Writer into the encoding pipeline: ingest feeds
// the Collector's ordered queue, a prepare goroutine drains that queue and
// pushes FrameMessages onto a bounded channel, and Write drains that
// channel in the caller's goroutine. Three logical tasks run concurrently,
// each applying backpressure to its upstream neighbor.
package gifcore

import (
	"image"
	"io"

	"github.com/gifcore/gifcore/internal/model"
	"github.com/gifcore/gifcore/internal/orderedqueue"
	"github.com/gifcore/gifcore/internal/prep"
	"github.com/gifcore/gifcore/internal/write"
)

// queueCapacity is the ordered queue's buffering capacity.
const queueCapacity = 4

// frameChannelCapacity bounds how many prepared FrameMessages the prepare
// stage may run ahead of Write before blocking.
const frameChannelCapacity = 4

// ProgressReporter is the progress contract: Increase is called once per
// ordinal frame, including ones the pipeline ends up not emitting as a GIF
// image block; returning false aborts the write with ErrKind Aborted.
type ProgressReporter interface {
	Increase() bool
	Error(msg string)
	WrittenBytes(n int)
}

// Writer is the consumer-facing half of a pipeline: Write drains frames
// from its paired Collector and drives them through the Preparer and
// Container Writer until the stream ends or an error wins.
type Writer struct {
	collector *Collector
	settings  Settings
}

// New creates a paired Collector/Writer for one encode.
func New(settings Settings) (*Collector, *Writer) {
	q := orderedqueue.New(queueCapacity)
	c := &Collector{q: q}
	w := &Writer{collector: c, settings: settings}
	return c, w
}

// Write drains the paired Collector through a prepare stage running in its
// own goroutine, then encodes arriving frames in ascending ordinal order
// and writes the finished GIF89a stream to sink. The first error on any
// stage wins; no partial trailer is ever written on failure.
func (w *Writer) Write(sink io.Writer, progress ProgressReporter) error {
	first, ok := w.collector.q.Next()
	if !ok {
		return newErr(NoFrames, -1, nil)
	}
	cur, err := asFrame(first)
	if err != nil {
		return err
	}

	canvasW, canvasH := prep.TargetSize(cur.Width, cur.Height, w.settings.MaxWidth, w.settings.MaxHeight)
	preparer := prep.NewPreparer(canvasW, canvasH, w.settings.Quality, w.settings.Fast)
	container := write.NewContainerWriter(canvasW, canvasH, w.settings.Once)

	frames := make(chan model.FrameMessage, frameChannelCapacity)
	done := make(chan struct{})
	defer close(done)
	go w.prepareStage(cur, canvasW, canvasH, preparer, frames, done)

	var delayer write.DelayScheduler
	emittedAny := false

	for msg := range frames {
		if msg.Err != nil {
			return msg.Err
		}

		delay := delayer.Advance(msg.PTS, msg.HasNext, msg.NextPTS)

		if msg.Frame != nil && delay > 0 {
			container.WriteFrame(msg.Frame, delay)
			emittedAny = true
		}

		if progress != nil && !progress.Increase() {
			return newErr(Aborted, msg.Ordinal, nil)
		}
	}

	if !emittedAny {
		return newErr(NoFrames, -1, nil)
	}

	data := container.Close()
	n, writeErr := sink.Write(data)
	if writeErr != nil {
		return newErr(WriteFailed, -1, writeErr)
	}
	if progress != nil {
		progress.WrittenBytes(n)
	}
	return nil
}

// prepareStage is the prepare stage's goroutine body: it drains the
// Collector's ordered queue one ordinal ahead at a time (so the Preparer
// can see the next frame for identical-frame skipping and dispose
// decisions) and pushes one FrameMessage per ordinal onto frames, closing
// it when the stream ends or an in-band error is delivered. Sends respect
// done so Write returning early (abort, error) can't leak this goroutine
// blocked on a full channel.
func (w *Writer) prepareStage(first *DecodedImage, canvasW, canvasH int, preparer *prep.Preparer, frames chan<- model.FrameMessage, done <-chan struct{}) {
	defer close(frames)

	send := func(msg model.FrameMessage) bool {
		select {
		case frames <- msg:
			return true
		case <-done:
			return false
		}
	}

	curRGBA := prepareRaster(first, canvasW, canvasH)
	curPTS := first.PTS
	origWidth, origHeight := first.Width, first.Height

	ordinal := 1
	firstFrame := true

	for {
		nextRaw, hasNext := w.collector.q.Next()
		var nextRGBA []byte
		var nextPTS float64

		if hasNext {
			nextFrame, err := asFrame(nextRaw)
			if err != nil {
				send(model.FrameMessage{Ordinal: ordinal, Err: err})
				return
			}
			if nextFrame.Width != origWidth || nextFrame.Height != origHeight {
				send(model.FrameMessage{Ordinal: ordinal, Err: newErr(WrongSize, ordinal+1, nil)})
				return
			}
			nextRGBA = prepareRaster(nextFrame, canvasW, canvasH)
			nextPTS = nextFrame.PTS
		}

		frame, emit := preparer.Prepare(curRGBA, optionalNext(hasNext, nextRGBA), firstFrame)
		msg := model.FrameMessage{Ordinal: ordinal, PTS: curPTS, HasNext: hasNext, NextPTS: nextPTS}
		if emit {
			msg.Frame = frame
		}
		if !send(msg) {
			return
		}

		if !hasNext {
			return
		}

		curRGBA = nextRGBA
		curPTS = nextPTS
		firstFrame = false
		ordinal++
	}
}

// asFrame unwraps a queueItem pulled from the ordered queue, surfacing any
// producer-injected error delivered in-band.
func asFrame(v any) (*DecodedImage, error) {
	item := v.(queueItem)
	if item.err != nil {
		return nil, item.err
	}
	return item.img, nil
}

func optionalNext(hasNext bool, rgba []byte) []byte {
	if !hasNext {
		return nil
	}
	return rgba
}

// prepareRaster resizes a decoded image to the canvas size and binarizes
// its alpha channel, returning a tightly-packed RGBA buffer.
func prepareRaster(img *DecodedImage, w, h int) []byte {
	src := &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
	resized := prep.Resize(src, w, h)

	pix := resized.Pix
	if resized.Stride != w*4 {
		tight := make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			copy(tight[y*w*4:(y+1)*w*4], resized.Pix[y*resized.Stride:y*resized.Stride+w*4])
		}
		pix = tight
	}

	prep.BinarizeAlpha(pix, w, h)
	return pix
}
