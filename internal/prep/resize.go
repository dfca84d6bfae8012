// Package prep implements the perceptual frame preparation pipeline:
// resizing and alpha binarization (component B), the screen model
// (component C), and the per-frame preparer (component E).
package prep

import (
	"image"

	"github.com/nfnt/resize"
)

// TargetSize computes the output (w,h) for an input image:
//   - neither maxW nor maxH set: downscale only if img area exceeds
//     800*600, by an integer factor that keeps aspect ratio.
//   - both set: clamp each dimension independently (no aspect preservation).
//   - one set: clamp that dimension, scale the other proportionally.
func TargetSize(imgW, imgH int, maxW, maxH *int) (w, h int) {
	switch {
	case maxW == nil && maxH == nil:
		area := imgW * imgH
		if area <= 800*600 {
			return imgW, imgH
		}
		factor := (area + 480000) / 480000
		w = imgW / factor
		h = imgH / factor
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		return w, h

	case maxW != nil && maxH != nil:
		w, h = imgW, imgH
		if w > *maxW {
			w = *maxW
		}
		if h > *maxH {
			h = *maxH
		}
		return w, h

	case maxW != nil:
		w = *maxW
		if w > imgW {
			w = imgW
		}
		h = imgH * w / imgW
		return w, h

	default: // maxH != nil
		h = *maxH
		if h > imgH {
			h = imgH
		}
		w = imgW * h / imgH
		return w, h
	}
}

// Resize maps src to (w,h) using a Lanczos-3 filter when dimensions differ
// from the input. If (w,h) already equals src's bounds, src is returned
// unchanged.
func Resize(src *image.NRGBA, w, h int) *image.NRGBA {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	out := resize.Resize(uint(w), uint(h), src, resize.Lanczos3)
	return toNRGBA(out)
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}
