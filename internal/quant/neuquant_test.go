package quant

import "testing"

func TestNewNeuQuantClampsNetsizeToMax(t *testing.T) {
	nq := newNeuQuant(make([]byte, 3), nil, 500, 1)
	if nq.netsize != maxNetsize {
		t.Fatalf("got netsize %d, want %d", nq.netsize, maxNetsize)
	}
}

func TestZeroImportanceSkipsLearningProducesInitialRamp(t *testing.T) {
	// With every pixel's importance 0, learn() never calls contest/alter, so
	// the network never moves off its initial ramp (ramp[i] = i*4096/netsize,
	// unbiased by >>4).
	pixels := make([]byte, 36)
	for i := range pixels {
		pixels[i] = byte(i * 7 % 256)
	}
	imp := make([]byte, 12)

	nq := newNeuQuant(pixels, imp, 4, 1)
	nq.buildColormap()
	cmap := nq.colormap()

	want := []byte{0, 0, 0, 64, 64, 64, 128, 128, 128, 192, 192, 192}
	for i, w := range want {
		if cmap[i] != w {
			t.Fatalf("cmap[%d] = %d, want %d", i, cmap[i], w)
		}
	}
}

func TestBuildColormapProducesNetsizeEntries(t *testing.T) {
	netsize := 16
	pixels := make([]byte, 3*64)
	imp := make([]byte, 64)
	for i := range imp {
		imp[i] = 255
	}
	for i := range pixels {
		pixels[i] = byte((i * 37) % 256)
	}

	nq := newNeuQuant(pixels, imp, netsize, 1)
	nq.buildColormap()
	cmap := nq.colormap()

	if len(cmap) != netsize*3 {
		t.Fatalf("got %d colormap bytes, want %d", len(cmap), netsize*3)
	}
}

func TestLookupRGBReturnsIndexInRange(t *testing.T) {
	netsize := 8
	pixels := make([]byte, 3*64)
	imp := make([]byte, 64)
	for i := range imp {
		imp[i] = 255
	}
	for i := range pixels {
		pixels[i] = byte((i * 53) % 256)
	}

	nq := newNeuQuant(pixels, imp, netsize, 1)
	nq.buildColormap()

	idx := nq.lookupRGB(120, 60, 200)
	if idx < 0 || idx >= netsize {
		t.Fatalf("lookupRGB returned %d, want an index in [0,%d)", idx, netsize)
	}
}

func TestLookupRGBIsConsistentForRepeatedQueries(t *testing.T) {
	netsize := 8
	pixels := make([]byte, 3*64)
	imp := make([]byte, 64)
	for i := range imp {
		imp[i] = 255
	}
	for i := range pixels {
		pixels[i] = byte((i * 53) % 256)
	}

	nq := newNeuQuant(pixels, imp, netsize, 1)
	nq.buildColormap()

	a := nq.lookupRGB(10, 10, 10)
	b := nq.lookupRGB(10, 10, 10)
	if a != b {
		t.Fatalf("lookupRGB is not deterministic for the same query: %d vs %d", a, b)
	}
}
