package quant

import "testing"

func solidSource(w, h int, r, g, b, a byte) []byte {
	pix := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = r, g, b, a
	}
	return pix
}

func TestQuantizeAllTransparentIsDeterministic(t *testing.T) {
	res := Quantize(Request{
		Source: solidSource(3, 2, 0, 0, 0, 0),
		Width:  3, Height: 2, Quality: 100,
	})
	if res.Palette[TransparentIndex].A != 0 {
		t.Fatalf("transparent slot must stay alpha=0")
	}
	for i, idx := range res.Indexed {
		if idx != TransparentIndex {
			t.Fatalf("pixel %d: index %d, want the reserved transparent index %d", i, idx, TransparentIndex)
		}
	}
}

func TestQuantizeSolidColorIndexesEveryPixelIdentically(t *testing.T) {
	res := Quantize(Request{
		Source: solidSource(4, 4, 200, 40, 10, 255),
		Width:  4, Height: 4, Quality: 100,
	})
	want := res.Indexed[0]
	if want == TransparentIndex {
		t.Fatalf("an opaque frame must not pick the transparent index")
	}
	for i, idx := range res.Indexed {
		if idx != want {
			t.Fatalf("pixel %d: index %d, want %d (a uniform frame trains one dominant color)", i, idx, want)
		}
	}
	if res.Palette[want].A != 255 {
		t.Fatalf("the chosen entry must be opaque")
	}
}

func TestQuantizeMixedBackgroundZeroesMatchingImportance(t *testing.T) {
	// Should not panic or mis-size results when Background/Importance are wired in.
	w, h := 2, 2
	src := solidSource(w, h, 10, 20, 30, 255)
	bg := solidSource(w, h, 10, 20, 30, 255)
	res := Quantize(Request{
		Source: src, Background: bg, Width: w, Height: h, Quality: 80,
	})
	if len(res.Indexed) != w*h {
		t.Fatalf("got %d indices, want %d", len(res.Indexed), w*h)
	}
	if len(res.Palette) != trainedColors+1 {
		t.Fatalf("got %d palette entries, want %d", len(res.Palette), trainedColors+1)
	}
}

func TestColorQualityFirstFrameIsAlwaysMax(t *testing.T) {
	if q := ColorQuality(true, 10); q != 100 {
		t.Fatalf("got %d, want 100 for the first frame regardless of settings", q)
	}
}

func TestColorQualityPassesThroughSettings(t *testing.T) {
	if q := ColorQuality(false, 42); q != 42 {
		t.Fatalf("got %d, want 42", q)
	}
}

func TestSampleFactorEndpoints(t *testing.T) {
	if s := sampleFactor(100, false); s != 1 {
		t.Fatalf("quality=100: sample=%d, want 1", s)
	}
	if s := sampleFactor(1, false); s != 30 {
		t.Fatalf("quality=1: sample=%d, want 30", s)
	}
}

func TestSampleFactorMidpoint(t *testing.T) {
	// 30 - (50*29)/100 = 30 - 14 = 16
	if s := sampleFactor(50, false); s != 16 {
		t.Fatalf("quality=50: sample=%d, want 16", s)
	}
}

func TestSampleFactorClampsOutOfRangeQuality(t *testing.T) {
	if s := sampleFactor(1000, false); s != 1 {
		t.Fatalf("quality=1000 clamps to 100: sample=%d, want 1", s)
	}
	if s := sampleFactor(-5, false); s != 30 {
		t.Fatalf("quality=-5 clamps to 1: sample=%d, want 30", s)
	}
}

func TestSampleFactorFastWidensStride(t *testing.T) {
	if s := sampleFactor(100, true); s != 2 {
		t.Fatalf("quality=100 fast: sample=%d, want 2", s)
	}
	if s := sampleFactor(50, true); s != 30 {
		t.Fatalf("quality=50 fast: sample=%d, want 30 (clamped from 2*16)", s)
	}
}
