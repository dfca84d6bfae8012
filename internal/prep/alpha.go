package prep

// ditherMatrix is the fixed 8x8 ordered-dither threshold table, verbatim.
// Row-major, 8 rows x 8 cols.
var ditherMatrix = [64]byte{
	8, 104, 32, 128, 14, 110, 38, 134,
	72, 40, 96, 64, 78, 46, 102, 70,
	24, 120, 16, 112, 30, 126, 22, 118,
	88, 56, 80, 48, 94, 62, 86, 54,
	12, 108, 36, 132, 10, 106, 34, 130,
	76, 44, 100, 68, 74, 42, 98, 66,
	28, 124, 20, 116, 26, 122, 18, 114,
	92, 60, 84, 52, 90, 58, 82, 50,
}

// BinarizeAlpha converts every fractional alpha value in an RGBA raster
// (4 bytes/pixel, row-major) to either 0 or 255, using an ordered-dither
// threshold: a pixel's alpha a < 255 becomes 0 if a is below the
// dither-matrix threshold for its (x,y) position, else 255. Pixels already
// at alpha 0 or 255 are left untouched.
func BinarizeAlpha(pix []byte, w, h int) {
	for y := 0; y < h; y++ {
		rowBase := (y & 7) * 8
		for x := 0; x < w; x++ {
			off := (y*w+x)*4 + 3
			a := pix[off]
			if a == 255 || a == 0 {
				continue
			}
			t := ditherMatrix[rowBase+(x&7)]
			if a < t {
				pix[off] = 0
			} else {
				pix[off] = 255
			}
		}
	}
}
