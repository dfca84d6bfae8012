package lzw

import "image/color"

// LossBudget derives loss = (100 - quality) * 6, a squared-color-distance
// budget a substituted dictionary entry is allowed to cost per step.
func LossBudget(quality int) int {
	return (100 - quality) * 6
}

// runEwma tracks a fixed-point (scale bits of fraction) exponential moving
// average of the match-run length chosen by the lookahead search, used to
// decide whether a dictionary reset is worth forcing once the table nears
// capacity.
const (
	runEwmaShift = 4
	runEwmaScale = 19
	runInvThresh = (1 << 19) / 3000
)

type clearHeuristic struct {
	ewma int64 // fixed point, scale 1<<runEwmaScale
}

func (h *clearHeuristic) update(run int) {
	sample := int64(run) << runEwmaScale
	h.ewma += (sample - h.ewma) >> runEwmaShift
}

// shouldClear reports whether the average match run is short enough,
// relative to how many pixels remain, that resetting the dictionary now is
// expected to pay for itself before the stream ends.
func (h *clearHeuristic) shouldClear(remaining int) bool {
	if remaining <= 0 {
		return false
	}
	want := (int64(runInvThresh) << runEwmaScale) / int64(remaining)
	return h.ewma < want
}

// minCodeSizeFor returns max(3, ceil(log2(paletteLen))).
func minCodeSizeFor(paletteLen int) int {
	bits := 0
	for (1 << uint(bits)) < paletteLen {
		bits++
	}
	if bits < 3 {
		bits = 3
	}
	return bits
}

// delta is the running per-channel error-diffusion term carried along a
// lookahead search path.
type delta struct{ r, g, b int32 }

// stepColorDiff computes the admissibility distance of substituting
// expected (a palette index already present as some child suffix) for
// actual (the real next source pixel), given the diffusion state carried
// in from previous steps on this path. It returns the distance and the
// diffusion state to carry into the next step.
func stepColorDiff(palette []color.RGBA, expected, actual byte, d delta) (dist int64, next delta) {
	if expected == actual {
		// An exact dictionary match: always admissible, no color math
		// needed, but the diffusion state still decays.
		return 0, delta{
			r: round34(d.r),
			g: round34(d.g),
			b: round34(d.b),
		}
	}
	ec := palette[expected]
	ac := palette[actual]
	eTrans := ec.A == 0
	aTrans := ac.A == 0
	if eTrans != aTrans {
		return 1 << 30, delta{}
	}
	if eTrans && aTrans {
		return 0, delta{}
	}

	dr := int32(ac.R) - int32(ec.R)
	dg := int32(ac.G) - int32(ec.G)
	db := int32(ac.B) - int32(ec.B)

	f := func(vr, vg, vb int32) int64 {
		a := int64(dr + vr)
		b := int64(dg + vg)
		c := int64(db + vb)
		return a*a + b*b + c*c
	}

	dith := f(d.r, d.g, d.b)
	undith := f(d.r/2, d.g/2, d.b/2)
	dist = dith
	if undith < dist {
		dist = undith
	}

	next = delta{
		r: dr + round34(d.r),
		g: dg + round34(d.g),
		b: db + round34(d.b),
	}
	return dist, next
}

// round34 computes round(v*3/4) with integer arithmetic.
func round34(v int32) int32 {
	n := v * 3
	if n >= 0 {
		return (n + 2) / 4
	}
	return -((-n + 2) / 4)
}

// Writer encodes an indexed pixel stream into a GIF-conformant LZW byte
// stream, substituting near-matching dictionary entries for the literal
// next pixel whenever that stays within loss. loss == 0 degenerates to
// classic greedy LZW: no substitution ever passes the admissibility check
// except an exact index match.
type Writer struct {
	palette []color.RGBA
	loss    int

	minCodeSize int
	clearCode   int32
	eoiCode     int32
	nextCode    int32
	curCodeBits int

	dict *trie
	bits *bitWriter
}

// NewWriter creates a Writer for the given palette (of any length; the
// length sets the minimum code size) and loss budget.
func NewWriter(palette []color.RGBA, loss int) *Writer {
	w := &Writer{
		palette: palette,
		loss:    loss,
		dict:    newTrie(),
	}
	w.resetDict()
	return w
}

func (w *Writer) resetDict() {
	w.minCodeSize = minCodeSizeFor(len(w.palette))
	w.clearCode = int32(1) << uint(w.minCodeSize)
	w.eoiCode = w.clearCode + 1
	w.nextCode = w.clearCode + 2
	w.curCodeBits = w.minCodeSize + 1
	w.dict.reset()
}

func (w *Writer) emit(code int32) {
	w.bits.WriteCode(code, w.curCodeBits)
}

// bumpWidth grows the current code width once the last assigned code
// (nextCode-1) no longer fits in it, the standard LZW code-width schedule,
// capped at 12 bits.
func (w *Writer) bumpWidth() {
	if w.curCodeBits < 12 && int(w.nextCode) > 1<<uint(w.curCodeBits) {
		w.curCodeBits++
	}
}

const maxLookahead = 12 // the LZW code-width ceiling bounds the search depth

// bestChild performs one greedy step of the bounded lookahead search:
// among every existing child of node, pick the admissible one (distance
// <= loss, or an exact suffix match regardless of loss) with the smallest
// distance. This is a tractable approximation of an exhaustive best-first
// search over the full lookahead window: rather than enumerating every
// combination of substitutions up to depth 12, it commits to the locally
// best admissible extension at each step, which still guarantees every
// substituted pixel individually satisfies the per-step admissibility
// bound.
func (w *Writer) bestChild(node int32, actual byte, d delta) (code int32, nd delta, ok bool) {
	bestDist := int64(1 << 62)
	found := false
	w.dict.nodes[node].forEach(func(suffix byte, childCode int32) {
		dist, cd := stepColorDiff(w.palette, suffix, actual, d)
		admissible := suffix == actual || (w.loss > 0 && dist <= int64(w.loss))
		if !admissible {
			return
		}
		if !found || dist < bestDist {
			found = true
			bestDist = dist
			code = childCode
			nd = cd
		}
	})
	ok = found
	return
}

// Encode runs the lossy LZW procedure over pixels (palette indices, one
// byte each) and returns the GIF initial-code-size byte and the packed,
// un-blocked LZW data stream (the container writer splits this into <=255
// byte sub-blocks).
func (w *Writer) Encode(pixels []byte) (initCodeSize byte, data []byte) {
	w.bits = newBitWriter()
	w.emit(w.clearCode)

	var heuristic clearHeuristic
	safeValid := false
	var safeBitPos, safeSourcePos, safeCodeBits int

	n := len(pixels)
	pos := 0
	for pos < n {
		iterStart := pos
		iterBitPos := w.bits.BitPos()
		iterCodeBits := w.curCodeBits

		lastCode := int32(pixels[pos])
		d := delta{}
		lookPos := pos + 1
		length := 1
		for length < maxLookahead && lookPos < n {
			code, nd, ok := w.bestChild(lastCode, pixels[lookPos], d)
			if !ok {
				break
			}
			lastCode = code
			d = nd
			lookPos++
			length++
		}

		w.emit(lastCode)

		if w.nextCode <= maxCode {
			if lookPos < n {
				w.dict.nodes[lastCode].add(pixels[lookPos], w.nextCode, &w.dict.linkBudget)
			}
			// A decoder counts the final code too, so the width schedule
			// advances even when there is no next pixel to extend with.
			w.nextCode++
			w.bumpWidth()
		}
		pos = lookPos

		heuristic.update(length)
		if length <= 2 {
			safeBitPos = iterBitPos
			safeSourcePos = iterStart
			safeCodeBits = iterCodeBits
			safeValid = true
		} else if length > 50 {
			safeValid = false
		}

		if w.nextCode > maxCode {
			// Dictionary exhausted: an unconditional reset is the only
			// option left, regardless of the EWMA heuristic.
			w.emit(w.clearCode)
			w.resetDict()
			safeValid = false
			continue
		}
		if w.nextCode >= maxCode-1 && heuristic.shouldClear(n-pos) && safeValid {
			w.bits.RewindTo(safeBitPos)
			// The clear code goes out at the width a decoder reads at the
			// rewound position; the width resets only after it.
			w.curCodeBits = safeCodeBits
			w.emit(w.clearCode)
			w.resetDict()
			pos = safeSourcePos
			safeValid = false
			heuristic = clearHeuristic{}
		}
	}

	w.emit(w.eoiCode)
	w.bits.Flush()
	return byte(w.minCodeSize), w.bits.Bytes()
}
