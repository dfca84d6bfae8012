package gifcore

import (
	"image"
	"image/png"
	"os"

	"github.com/gifcore/gifcore/internal/orderedqueue"
)

// DecodedImage is a full-color RGBA raster with its presentation timestamp.
// Pix is 4 bytes/pixel, row-major, tightly packed.
type DecodedImage struct {
	Pix    []byte
	Width  int
	Height int
	PTS    float64
}

// queueItem is what actually flows through the ordered queue: either a
// decoded frame or an error injected at that ordinal position, preserving
// order for in-band failures.
type queueItem struct {
	img *DecodedImage
	err error
}

// Collector is the producer-facing half of a pipeline: callers push frames,
// in any order, keyed by index; AddFrameRGBA/AddFramePNGFile/Fail all funnel
// through the ordered queue so the Writer observes them strictly in
// ascending order.
type Collector struct {
	q *orderedqueue.Queue
}

// AddFrameRGBA submits a decoded frame at the given (caller-chosen, unique)
// index.
func (c *Collector) AddFrameRGBA(index int, img *DecodedImage) error {
	if err := c.q.Push(index, queueItem{img: img}); err != nil {
		return newErr(ThreadSend, index, err)
	}
	return nil
}

// AddFramePNGFile is an optional convenience path: it decodes a PNG file
// into a DecodedImage and submits it at index.
func (c *Collector) AddFramePNGFile(index int, path string, pts float64) error {
	f, err := os.Open(path)
	if err != nil {
		return c.Fail(index, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return c.Fail(index, err)
	}

	b := img.Bounds()
	nrgba := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			nrgba.Set(x, y, img.At(x, y))
		}
	}

	return c.AddFrameRGBA(index, &DecodedImage{
		Pix:    nrgba.Pix,
		Width:  b.Dx(),
		Height: b.Dy(),
		PTS:    pts,
	})
}

// Fail injects a decode failure at index: producer-side decode failures
// associated with a specific frame index are delivered in-band so the
// Writer surfaces them at the right ordinal position.
func (c *Collector) Fail(index int, err error) error {
	wrapped := newErr(DecodeFailed, index, err)
	if pushErr := c.q.Push(index, queueItem{err: wrapped}); pushErr != nil {
		return newErr(ThreadSend, index, pushErr)
	}
	return nil
}

// Close ends the stream: no more frames will be submitted.
func (c *Collector) Close() {
	c.q.CloseProducers()
}
