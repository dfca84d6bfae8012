package write

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/gifcore/gifcore/internal/model"
)

func TestContainerWriterHeaderAndTrailer(t *testing.T) {
	w := NewContainerWriter(4, 4, false)
	frame := &model.GifFrame{
		Top: 0, Left: 0, Width: 4, Height: 4,
		Indexed:          make([]byte, 16),
		Palette:          []color.RGBA{{255, 0, 0, 255}, {0, 0, 0, 0}},
		Dispose:          model.DisposeKeep,
		TransparentIndex: 1,
		Quality:          90,
	}
	w.WriteFrame(frame, 10)
	data := w.Close()

	if !bytes.HasPrefix(data, []byte("GIF89a")) {
		t.Fatalf("missing GIF89a header")
	}
	if data[len(data)-1] != 0x3b {
		t.Fatalf("missing trailer byte")
	}
	if !bytes.Contains(data, []byte("NETSCAPE2.0")) {
		t.Fatalf("expected looping extension when once=false")
	}
}

func TestContainerWriterOncePreventsLoopingExt(t *testing.T) {
	w := NewContainerWriter(2, 2, true)
	frame := &model.GifFrame{
		Width: 2, Height: 2,
		Indexed:          make([]byte, 4),
		Palette:          []color.RGBA{{1, 2, 3, 255}},
		TransparentIndex: -1,
		Quality:          90,
	}
	w.WriteFrame(frame, 5)
	data := w.Close()
	if bytes.Contains(data, []byte("NETSCAPE2.0")) {
		t.Fatalf("once=true must not write a looping extension")
	}
}

func TestPaletteSizeFieldRoundsToPowerOfTwo(t *testing.T) {
	cases := map[int]byte{1: 1, 2: 1, 4: 1, 5: 2, 16: 3, 17: 4, 256: 7}
	for n, want := range cases {
		if got := paletteSizeField(n); got != want {
			t.Errorf("paletteSizeField(%d) = %d, want %d", n, got, want)
		}
	}
}
