package quant

import "image/color"

// TransparentIndex is the reserved palette slot the adapter always keeps
// fully transparent: one slot is sacrificed from the 256 available network
// colors so every returned palette has an unambiguous transparent entry.
const TransparentIndex = 255

// trainedColors is the number of colors NeuQuant is allowed to learn; the
// 256th slot is always the reserved transparent entry.
const trainedColors = 255

// Request bundles the Quantizer Adapter's inputs.
type Request struct {
	// Source RGBA pixels, 4 bytes/pixel, len == Width*Height*4.
	Source []byte
	Width  int
	Height int

	// Background is the optional previous-frame RGBA raster (same
	// dimensions as Source), used to identify pixels that don't need to
	// move the network. May be nil.
	Background []byte

	// Importance is a per-pixel weight in [0,255], len == Width*Height.
	// Nil means "treat every pixel as importance 255".
	Importance []byte

	// Quality is the requested palette quality, 1..100 (see ColorQuality
	// below). Higher quality sharply reduces the NeuQuant sampling stride.
	Quality int

	// Fast trades palette quality for speed by widening the NeuQuant
	// sampling stride beyond what Quality alone would pick.
	Fast bool
}

// Result is what the Quantizer Adapter hands back to the Frame Preparer.
type Result struct {
	Indexed []byte        // one palette index per pixel, len == Width*Height
	Palette []color.RGBA  // <= 256 entries, one alpha=0 entry (the transparent index)
}

// Quantize builds a perceptual, importance-weighted, background-aware
// palette of at most 256 colors (one of them reserved and fully
// transparent) and indexes the source image against it.
func Quantize(req Request) Result {
	n := req.Width * req.Height

	rgb := make([]byte, 0, n*3)
	imp := make([]byte, 0, n)
	opaque := make([]bool, n)

	for i := 0; i < n; i++ {
		a := req.Source[i*4+3]
		if a == 0 {
			opaque[i] = false
			continue
		}
		opaque[i] = true
		rgb = append(rgb, req.Source[i*4], req.Source[i*4+1], req.Source[i*4+2])

		w := byte(255)
		if req.Importance != nil {
			w = req.Importance[i]
		}
		// Pixels that exactly match the background carry no new
		// information for the palette; they are already covered by
		// whatever color the background used last frame.
		if req.Background != nil && sameRGB(req.Source, req.Background, i) {
			w = 0
		}
		imp = append(imp, w)
	}

	result := Result{
		Indexed: make([]byte, n),
		Palette: make([]color.RGBA, trainedColors+1),
	}

	if len(rgb) == 0 {
		// Every pixel transparent: palette is just the transparent slot,
		// network colors all default to opaque black (never referenced).
		for i := 0; i < trainedColors; i++ {
			result.Palette[i] = color.RGBA{0, 0, 0, 255}
		}
		result.Palette[TransparentIndex] = color.RGBA{0, 0, 0, 0}
		for i := range result.Indexed {
			result.Indexed[i] = TransparentIndex
		}
		return result
	}

	sample := sampleFactor(req.Quality, req.Fast)
	nq := newNeuQuant(rgb, imp, trainedColors, sample)
	nq.buildColormap()
	cmap := nq.colormap()

	for i := 0; i < trainedColors; i++ {
		result.Palette[i] = color.RGBA{
			R: cmap[i*3],
			G: cmap[i*3+1],
			B: cmap[i*3+2],
			A: 255,
		}
	}
	result.Palette[TransparentIndex] = color.RGBA{0, 0, 0, 0}

	for i := 0; i < n; i++ {
		if !opaque[i] {
			result.Indexed[i] = TransparentIndex
			continue
		}
		r := req.Source[i*4]
		g := req.Source[i*4+1]
		b := req.Source[i*4+2]
		result.Indexed[i] = byte(nq.lookupRGB(r, g, b))
	}

	return result
}

// sampleFactor converts a 1..100 quality request into NeuQuant's 1..30
// sampling factor (lower = better/slower). fast doubles the stride on top
// of whatever Quality alone picks, trading palette fidelity for a faster
// learning pass over fewer sampled pixels.
func sampleFactor(quality int, fast bool) int {
	if quality < 1 {
		quality = 1
	}
	if quality > 100 {
		quality = 100
	}
	// quality 100 -> sample 1 (best); quality 1 -> sample 30 (fastest).
	sample := 30 - (quality*29)/100
	if fast {
		sample *= 2
	}
	if sample < 1 {
		sample = 1
	}
	if sample > 30 {
		sample = 30
	}
	return sample
}

func sameRGB(a, b []byte, pixel int) bool {
	o := pixel * 4
	return a[o] == b[o] && a[o+1] == b[o+1] && a[o+2] == b[o+2] && a[o+3] == b[o+3]
}

// ColorQuality reports the requested palette quality: always 100 for the
// first frame, otherwise the caller's requested quality.
func ColorQuality(firstFrame bool, settingsQuality int) int {
	if firstFrame {
		return 100
	}
	return settingsQuality
}
