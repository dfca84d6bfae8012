// Package write implements the Delay Scheduler (component F) and the
// Container Writer (component H): converting presentation timestamps to
// GIF delay units and framing packaged frames into a GIF89a byte stream.
package write

import "math"

// DelayScheduler converts presentation timestamps (seconds) into GIF delay
// units (1/100s). Advance must be called once per frame in the original
// ordinal sequence, including frames that end up not being emitted as a
// GIF image block (duplicate collapses, full-frame trims) — the running
// ptsInDelayUnits total and the "reuse previous delay" fallback both
// depend on seeing every original frame's timestamp.
type DelayScheduler struct {
	started           bool
	ptsInDelayUnits   int
	lastFrameDelayS   float64
	hasLastFrameDelay bool
	prevDelay         int
	havePrevDelay     bool
}

// Advance computes the delay (in 1/100s units) for the current frame given
// its own pts and, if there is a successor, the successor's pts.
func (d *DelayScheduler) Advance(pts float64, hasNext bool, nextPts float64) int {
	if !d.started {
		d.started = true
		if pts >= 0.01 {
			d.hasLastFrameDelay = true
			d.lastFrameDelayS = pts
			d.ptsInDelayUnits = int(math.Floor(pts * 100))
		}
	}

	var target float64
	switch {
	case hasNext:
		target = nextPts
	case d.hasLastFrameDelay:
		target = float64(d.ptsInDelayUnits)/100 + d.lastFrameDelayS
	case d.havePrevDelay:
		delay := d.prevDelay
		d.ptsInDelayUnits += delay
		return delay
	default:
		return 0
	}

	raw := int(math.Round(target*100)) - d.ptsInDelayUnits
	delay := clampInt(raw, 0, 10000)
	d.ptsInDelayUnits += delay
	d.prevDelay = delay
	d.havePrevDelay = true
	return delay
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
