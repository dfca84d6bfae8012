// Package model holds the data types shared between the frame preparer,
// the delay scheduler, and the container writer: GifFrame, the disposal
// method enum, and FrameMessage.
package model

import "image/color"

// Disposal is the GIF playback directive for what happens to a frame's
// pixels before the next frame is drawn.
type Disposal int

const (
	// DisposeKeep leaves the frame's pixels on the canvas.
	DisposeKeep Disposal = iota
	// DisposeRestoreBackground clears the frame's rectangle to transparent
	// before the next frame is composited.
	DisposeRestoreBackground
)

// GifFrame is a packaged frame ready for writing.
// Invariants: len(Palette) <= 256; at most one palette entry has alpha 0,
// and TransparentIndex (if >= 0) names it; len(Indexed) == Width*Height.
type GifFrame struct {
	Top, Left        int
	Width, Height    int
	Indexed          []byte
	Palette          []color.RGBA
	Dispose          Disposal
	TransparentIndex int // -1 if no transparent entry
	Quality          int // color_quality used to build Palette, feeds the LZW loss budget
}

// FrameMessage is what the Preparer hands to the Writer over the bounded
// frame channel, one per original ordinal frame (including ones the
// Preparer decided not to emit as a GIF image block: Frame is nil then, but
// the message still carries the timing the Delay Scheduler needs to stay in
// sync). Err carries an in-band failure (a bad decode, a size mismatch)
// detected while preparing; when set, the Writer surfaces it and ignores
// the rest of the message.
type FrameMessage struct {
	Ordinal int // 1-based
	Frame   *GifFrame
	PTS     float64 // seconds
	HasNext bool
	NextPTS float64 // seconds; valid only when HasNext
	Err     error
}
