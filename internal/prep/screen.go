package prep

import (
	"image/color"

	"github.com/gifcore/gifcore/internal/model"
)

// Screen is the RGBA canvas that mirrors a GIF decoder's view of the last
// rendered frame. It starts fully transparent and is mutated only by Blit,
// after a frame is finalized.
type Screen struct {
	Width, Height int
	Pix           []byte // RGBA, 4 bytes/pixel, row-major
}

// NewScreen allocates a fully-transparent canvas of the given dimensions.
func NewScreen(w, h int) *Screen {
	return &Screen{Width: w, Height: h, Pix: make([]byte, w*h*4)}
}

// At returns the RGBA color at (x,y).
func (s *Screen) At(x, y int) color.RGBA {
	o := (y*s.Width + x) * 4
	return color.RGBA{s.Pix[o], s.Pix[o+1], s.Pix[o+2], s.Pix[o+3]}
}

func (s *Screen) set(x, y int, c color.RGBA) {
	o := (y*s.Width + x) * 4
	s.Pix[o] = c.R
	s.Pix[o+1] = c.G
	s.Pix[o+2] = c.B
	s.Pix[o+3] = c.A
}

// Blit composes a palettized frame onto the canvas using GIF disposal
// rules. Pixels equal to the transparent index do not overwrite the
// canvas. dispose controls what Blit does to the canvas AFTER drawing:
// DisposeKeep leaves the drawn pixels in place; DisposeRestoreBackground
// clears the just-drawn rectangle back to transparent, simulating what a
// GIF decoder would show before the next frame is composited.
func (s *Screen) Blit(f *model.GifFrame) {
	for row := 0; row < f.Height; row++ {
		for col := 0; col < f.Width; col++ {
			idx := f.Indexed[row*f.Width+col]
			if f.TransparentIndex >= 0 && int(idx) == f.TransparentIndex {
				continue
			}
			c := f.Palette[idx]
			s.set(f.Left+col, f.Top+row, c)
		}
	}

	if f.Dispose == model.DisposeRestoreBackground {
		transparent := color.RGBA{0, 0, 0, 0}
		for row := 0; row < f.Height; row++ {
			for col := 0; col < f.Width; col++ {
				s.set(f.Left+col, f.Top+row, transparent)
			}
		}
	}
}
