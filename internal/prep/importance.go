package prep

import (
	"runtime"
	"sync"
)

// colordiffHuge is the penalty returned by colordiff when exactly one of
// the two pixels is fully transparent.
const colordiffHuge = 255 * 255 * 6

// colordiff is a per-pixel perceptual distance: a huge penalty when
// transparency disagrees, else a green-weighted squared channel distance
// (2*dr^2 + 3*dg^2 + db^2).
func colordiff(ar, ag, ab, aa, br, bg, bb, ba byte) int {
	aTrans := aa == 0
	bTrans := ba == 0
	if aTrans != bTrans {
		return colordiffHuge
	}
	if aTrans && bTrans {
		return 0
	}
	dr := int(ar) - int(br)
	dg := int(ag) - int(bg)
	db := int(ab) - int(bb)
	return 2*dr*dr + 3*dg*dg + db*db
}

// nextDiffK is the normalization divisor K = 255*255*6/170.
const nextDiffK = 255 * 255 * 6 / 170

// forEachRowChunk splits [0,h) into row ranges and runs fn on each range
// concurrently: rows are split across goroutines bounded by a
// sync.WaitGroup rather than routed through a worker-pool abstraction, a
// plain fit for this kind of embarrassingly parallel row work.
func forEachRowChunk(h int, fn func(yStart, yEnd int)) {
	workers := runtime.NumCPU()
	if workers > h {
		workers = h
	}
	if workers < 1 {
		workers = 1
	}
	rowsPerWorker := h / workers
	if rowsPerWorker < 1 {
		rowsPerWorker = 1
	}

	var wg sync.WaitGroup
	for start := 0; start < h; start += rowsPerWorker {
		end := start + rowsPerWorker
		if end > h || h-end < rowsPerWorker {
			end = h
		}
		wg.Add(1)
		go func(ys, ye int) {
			defer wg.Done()
			fn(ys, ye)
		}(start, end)
		if end == h {
			break
		}
	}
	wg.Wait()
}

// ImportanceFromNext computes per-pixel importance derived from how much
// the next frame differs from the current one. If next is nil, every
// pixel is maximally important (255).
func ImportanceFromNext(cur, next []byte, w, h int) []byte {
	imp := make([]byte, w*h)
	if next == nil {
		for i := range imp {
			imp[i] = 255
		}
		return imp
	}

	forEachRowChunk(h, func(ys, ye int) {
		for y := ys; y < ye; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				o := i * 4
				d := colordiff(next[o], next[o+1], next[o+2], next[o+3],
					cur[o], cur[o+1], cur[o+2], cur[o+3])
				v := 255 - d/nextDiffK
				imp[i] = clampByte(v)
			}
		}
	})
	return imp
}

// ApplyPrevDiff scales imp down in regions that are close to the previous
// (screen) frame, using min_diff derived from the requested quality.
// prevScreen and cur are RGBA rasters.
func ApplyPrevDiff(imp []byte, prevScreen, cur []byte, w, h, quality int) {
	q := 100 - quality
	minDiff := 80 + q*q

	forEachRowChunk(h, func(ys, ye int) {
		for y := ys; y < ye; y++ {
			for x := 0; x < w; x++ {
				i := y*w + x
				o := i * 4
				d := colordiff(prevScreen[o], prevScreen[o+1], prevScreen[o+2], prevScreen[o+3],
					cur[o], cur[o+1], cur[o+2], cur[o+3])
				if d < minDiff {
					imp[i] = 0
					continue
				}
				t := d / 32
				scale := t * t
				if scale > 256 {
					scale = 256
				}
				imp[i] = clampByte(scale * int(imp[i]) / 256)
			}
		}
	})
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
