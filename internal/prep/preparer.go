package prep

import (
	"bytes"
	"image/color"

	"github.com/gifcore/gifcore/internal/model"
	"github.com/gifcore/gifcore/internal/quant"
)

// Preparer implements the per-frame pipeline: importance map, quantize,
// trim, and package into a GifFrame, blitting the result onto its owned
// Screen so later frames can diff against "what the decoder would
// currently show".
type Preparer struct {
	screen      *Screen
	width       int
	height      int
	quality     int
	fast        bool
	hasPrevKept bool
}

// NewPreparer creates a Preparer for a canvas of the given dimensions.
// quality is the caller's requested Settings.Quality (1..100); fast trades
// palette quality for a faster quantizing pass.
func NewPreparer(width, height, quality int, fast bool) *Preparer {
	return &Preparer{
		screen:  NewScreen(width, height),
		width:   width,
		height:  height,
		quality: quality,
		fast:    fast,
	}
}

// Screen exposes the preparer's canvas, mainly for tests.
func (p *Preparer) Screen() *Screen { return p.screen }

// Prepare runs the full per-frame procedure. cur and next are RGBA
// rasters (4 bytes/pixel); next is nil when cur is the last frame.
// firstFrame indicates this is ordinal 1, which always quantizes at
// quality 100. It returns the packaged frame and whether it should be
// emitted; when emit is false the screen is left untouched.
func (p *Preparer) Prepare(cur, next []byte, firstFrame bool) (*model.GifFrame, bool) {
	// Step 1: identical frame skip.
	if next != nil && bytes.Equal(cur, next) {
		return nil, false
	}

	// Step 2: dispose decision.
	dispose := model.DisposeKeep
	if next != nil {
		if anyAlphaDrop(cur, next, p.width, p.height) {
			dispose = model.DisposeRestoreBackground
		}
	} else {
		dispose = model.DisposeRestoreBackground
	}

	// Step 3: importance map (next-diff).
	imp := ImportanceFromNext(cur, next, p.width, p.height)

	// Step 4: importance map (prev-diff), only once a previous kept frame
	// exists on the screen.
	colorQuality := quant.ColorQuality(firstFrame, p.quality)
	var background []byte
	if p.hasPrevKept {
		ApplyPrevDiff(imp, p.screen.Pix, cur, p.width, p.height, colorQuality)
		background = p.screen.Pix
	}

	// Step 5: quantize.
	result := quant.Quantize(quant.Request{
		Source:     cur,
		Width:      p.width,
		Height:     p.height,
		Background: background,
		Importance: imp,
		Quality:    colorQuality,
		Fast:       p.fast,
	})

	// Step 6: trim.
	topTrim, bottomTrim, ok := p.trim(result.Indexed, result.Palette)
	if !ok {
		// Entire frame trimmable: skip emission, screen untouched.
		return nil, false
	}

	keptHeight := p.height - topTrim - bottomTrim
	indexed := make([]byte, p.width*keptHeight)
	copy(indexed, result.Indexed[topTrim*p.width:(topTrim+keptHeight)*p.width])

	transparentIndex := -1
	for i, c := range result.Palette {
		if c.A == 0 {
			transparentIndex = i
			break
		}
	}

	frame := &model.GifFrame{
		Top:              topTrim,
		Left:             0,
		Width:            p.width,
		Height:           keptHeight,
		Indexed:          indexed,
		Palette:          result.Palette,
		Dispose:          dispose,
		TransparentIndex: transparentIndex,
		Quality:          colorQuality,
	}

	// Step 8: blit onto the screen (sending to the writer is the caller's
	// responsibility, done after this call returns).
	p.screen.Blit(frame)
	p.hasPrevKept = true

	return frame, true
}

// anyAlphaDrop reports whether any aligned pixel in next has lower alpha
// than the matching pixel in cur.
func anyAlphaDrop(cur, next []byte, w, h int) bool {
	n := w * h
	for i := 0; i < n; i++ {
		o := i * 4
		if next[o+3] < cur[o+3] {
			return true
		}
	}
	return false
}

// trim strips rows from the bottom, then the top, where every pixel is
// either the transparent index or exactly equal (through the palette) to
// the matching screen pixel. ok is false when the whole frame is
// trimmable.
func (p *Preparer) trim(indexed []byte, palette []color.RGBA) (top, bottom int, ok bool) {
	transparentIndex := -1
	for i, c := range palette {
		if c.A == 0 {
			transparentIndex = i
			break
		}
	}

	rowTrimmable := func(row int) bool {
		for col := 0; col < p.width; col++ {
			idx := indexed[row*p.width+col]
			if int(idx) == transparentIndex {
				continue
			}
			if palette[idx] != p.screen.At(col, row) {
				return false
			}
		}
		return true
	}

	b := 0
	for row := p.height - 1; row >= 0; row-- {
		if !rowTrimmable(row) {
			break
		}
		b++
	}
	if b == p.height {
		return 0, 0, false
	}

	t := 0
	for row := 0; row < p.height-b; row++ {
		if !rowTrimmable(row) {
			break
		}
		t++
	}
	if t+b == p.height {
		return 0, 0, false
	}

	return t, b, true
}
