package prep

import (
	"image/color"
	"testing"

	"github.com/gifcore/gifcore/internal/model"
)

func solidRGBA(w, h int, r, g, b, a byte) []byte {
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = r, g, b, a
	}
	return pix
}

func TestPrepareIdenticalFramesSkipEmission(t *testing.T) {
	p := NewPreparer(2, 2, 100, false)
	cur := solidRGBA(2, 2, 10, 20, 30, 255)
	next := solidRGBA(2, 2, 10, 20, 30, 255)

	frame, ok := p.Prepare(cur, next, true)
	if ok || frame != nil {
		t.Fatalf("identical cur/next must not emit, got ok=%v frame=%v", ok, frame)
	}
	for _, b := range p.screen.Pix {
		if b != 0 {
			t.Fatalf("screen must stay untouched when a frame is skipped")
		}
	}
}

func TestPrepareLastFrameAlwaysRestoresBackground(t *testing.T) {
	p := NewPreparer(2, 2, 100, false)
	cur := solidRGBA(2, 2, 200, 0, 0, 255)

	frame, ok := p.Prepare(cur, nil, true)
	if !ok {
		t.Fatalf("expected emission for the final frame")
	}
	if frame.Dispose != model.DisposeRestoreBackground {
		t.Fatalf("last frame (next=nil) must always restore background, got %v", frame.Dispose)
	}
}

func TestPrepareKeepsWhenNoAlphaDrop(t *testing.T) {
	p := NewPreparer(2, 2, 100, false)
	cur := solidRGBA(2, 2, 200, 0, 0, 255)
	next := solidRGBA(2, 2, 0, 0, 200, 255)

	frame, ok := p.Prepare(cur, next, true)
	if !ok {
		t.Fatalf("expected emission")
	}
	if frame.Dispose != model.DisposeKeep {
		t.Fatalf("no alpha drop between cur and next: dispose = %v, want DisposeKeep", frame.Dispose)
	}
}

func TestPrepareRestoresBackgroundOnAlphaDrop(t *testing.T) {
	p := NewPreparer(2, 2, 100, false)
	cur := solidRGBA(2, 2, 200, 0, 0, 255)
	next := solidRGBA(2, 2, 200, 0, 0, 0)

	frame, ok := p.Prepare(cur, next, true)
	if !ok {
		t.Fatalf("expected emission")
	}
	if frame.Dispose != model.DisposeRestoreBackground {
		t.Fatalf("alpha drop to next frame: dispose = %v, want DisposeRestoreBackground", frame.Dispose)
	}
}

func TestPrepareAllTransparentFrameIsFullyTrimmed(t *testing.T) {
	p := NewPreparer(2, 2, 100, false)
	cur := solidRGBA(2, 2, 0, 0, 0, 0)

	// Every pixel maps to the transparent index, so every row is trimmable
	// and the frame is not emitted.
	frame, ok := p.Prepare(cur, nil, true)
	if ok {
		t.Fatalf("an all-transparent frame is fully trimmable and must not be emitted")
	}
	if frame != nil {
		t.Fatalf("expected no frame for a fully trimmed frame, got %v", frame)
	}
	for _, b := range p.screen.Pix {
		if b != 0 {
			t.Fatalf("screen must stay untouched when a frame is fully trimmed")
		}
	}
}

func TestTrimFullFrameMatchReturnsNotOK(t *testing.T) {
	p := NewPreparer(2, 2, 100, false)
	palette := []color.RGBA{{10, 20, 30, 255}}
	indexed := []byte{0, 0, 0, 0}
	for row := 0; row < 2; row++ {
		for col := 0; col < 2; col++ {
			p.screen.set(col, row, palette[0])
		}
	}

	_, _, ok := p.trim(indexed, palette)
	if ok {
		t.Fatalf("a frame matching the screen everywhere must be fully trimmable (ok=false)")
	}
}

func TestTrimStripsMatchingTopAndBottomRows(t *testing.T) {
	p := NewPreparer(3, 4, 100, false)
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	palette := []color.RGBA{red, blue}
	// rows 0,2,3 are red (matching the screen); row 1 is blue (differs).
	indexed := []byte{
		0, 0, 0,
		1, 1, 1,
		0, 0, 0,
		0, 0, 0,
	}
	for row := 0; row < 4; row++ {
		for col := 0; col < 3; col++ {
			p.screen.set(col, row, red)
		}
	}

	top, bottom, ok := p.trim(indexed, palette)
	if !ok {
		t.Fatalf("expected the frame to be partially trimmable")
	}
	if top != 1 || bottom != 2 {
		t.Fatalf("top=%d bottom=%d, want top=1 bottom=2", top, bottom)
	}
}

func TestAnyAlphaDropDetectsLoweredAlpha(t *testing.T) {
	cur := solidRGBA(2, 1, 1, 2, 3, 255)
	next := solidRGBA(2, 1, 1, 2, 3, 255)
	next[3] = 100 // first pixel's alpha drops

	if !anyAlphaDrop(cur, next, 2, 1) {
		t.Fatalf("expected a drop to be detected")
	}
	if anyAlphaDrop(cur, cur, 2, 1) {
		t.Fatalf("identical alpha channels must report no drop")
	}
}
