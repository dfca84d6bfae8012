// Package quant implements the palette quantizer adapter (component D).
package quant

/*
NeuQuant Neural-Net Quantization Algorithm
------------------------------------------

Copyright (c) 1994 Anthony Dekker

NEUQUANT Neural-Net quantization algorithm by Anthony Dekker, 1994.
See "Kohonen neural networks for optimal colour quantization"
in "Network: Computation in Neural Systems" Vol. 5 (1994) pp 351-367.
for a discussion of the algorithm.
See also http://members.ozemail.com.au/~dekker/NEUQUANT.HTML

Any party obtaining a copy of these files from the author, directly or
indirectly, is granted, free of charge, a full and unrestricted irrevocable,
world-wide, paid up, royalty-free, nonexclusive right and license to deal
in this software and documentation files (the "Software"), including without
limitation the rights to use, copy, modify, merge, publish, distribute, sublicense,
and/or sell copies of the Software, and to permit persons who receive
copies from any such party to do so, with the only requirement being
that this copyright notice remain intact.

(Go port 2024, adapted for importance-weighted sampling)
*/

const (
	ncycles         = 100 // number of learning cycles
	maxNetsize      = 256
	netbiasshift    = 4  // bias for colour values
	intbiasshift    = 16 // bias for fractions
	intbias         = 1 << intbiasshift
	gammashift      = 10
	gamma           = 1 << gammashift
	betashift       = 10
	beta            = intbias >> betashift // beta = 1/1024
	betagamma       = intbias << (gammashift - betashift)
	radiusbiasshift = 6 // at 32.0 biased by 6 bits
	radiusbias      = 1 << radiusbiasshift
	radiusdec       = 30 // factor of 1/30 each cycle
	alphabiasshift  = 10 // alpha starts at 1.0
	initalpha       = 1 << alphabiasshift
	radbiasshift    = 8
	radbias         = 1 << radbiasshift
	alpharadbshift  = alphabiasshift + radbiasshift
	alpharadbias    = 1 << alpharadbshift
	prime1          = 499
	prime2          = 491
	prime3          = 487
	prime4          = 503
	minpicturebytes = 3 * prime4
)

// neuQuant is a neural network color quantizer, generalized to accept a
// per-pixel importance weight that scales how strongly each sample moves
// the network: unimportant pixels (importance 0) are skipped entirely,
// and partially-important pixels move the network proportionally less.
type neuQuant struct {
	netsize int // number of colors the network will produce (<= maxNetsize)

	network  [][]int32 // [netsize][4] - the network itself
	netindex []int32   // [256] - for network lookup
	bias     []int32   // [netsize] - bias array for learning
	freq     []int32   // [netsize] - freq array for learning
	radpower []int32   // [initrad] - for radpower calculation

	pixels     []byte // input image in RGB format, 3 bytes/pixel
	importance []byte // per-pixel importance, len(pixels)/3, may be nil (all 255)
	samplefac  int    // sampling factor 1..30
}

// newNeuQuant creates a quantizer targeting netsize colors (<= maxNetsize).
// importance, if non-nil, must have one entry per pixel (len(pixels)/3).
func newNeuQuant(pixels []byte, importance []byte, netsize, samplefac int) *neuQuant {
	if netsize > maxNetsize {
		netsize = maxNetsize
	}
	initrad := netsize >> 3
	return &neuQuant{
		netsize:    netsize,
		network:    make([][]int32, netsize),
		netindex:   make([]int32, 256),
		bias:       make([]int32, netsize),
		freq:       make([]int32, netsize),
		radpower:   make([]int32, initrad+1),
		pixels:     pixels,
		importance: importance,
		samplefac:  samplefac,
	}
}

func (nq *neuQuant) init() {
	for i := 0; i < nq.netsize; i++ {
		v := int32((i << (netbiasshift + 8)) / nq.netsize)
		nq.network[i] = []int32{v, v, v, 0}
		nq.freq[i] = intbias / int32(nq.netsize)
		nq.bias[i] = 0
	}
}

// buildColormap initializes, trains, unbiases and indexes the network.
func (nq *neuQuant) buildColormap() {
	nq.init()
	nq.learn()
	nq.unbiasnet()
	nq.inxbuild()
}

// colormap returns the color map as [r,g,b,r,g,b,...], nq.netsize entries.
func (nq *neuQuant) colormap() []byte {
	cmap := make([]byte, nq.netsize*3)
	index := make([]int, nq.netsize)

	for i := 0; i < nq.netsize; i++ {
		index[nq.network[i][3]] = i
	}

	k := 0
	for i := 0; i < nq.netsize; i++ {
		j := index[i]
		cmap[k] = byte(nq.network[j][0])
		k++
		cmap[k] = byte(nq.network[j][1])
		k++
		cmap[k] = byte(nq.network[j][2])
		k++
	}
	return cmap
}

// lookupRGB returns the index of the closest network color to (r,g,b).
func (nq *neuQuant) lookupRGB(r, g, b byte) int {
	return nq.inxsearch(int32(r), int32(g), int32(b))
}

func (nq *neuQuant) unbiasnet() {
	for i := 0; i < nq.netsize; i++ {
		nq.network[i][0] >>= netbiasshift
		nq.network[i][1] >>= netbiasshift
		nq.network[i][2] >>= netbiasshift
		nq.network[i][3] = int32(i)
	}
}

func (nq *neuQuant) altersingle(alpha, i int32, b, g, r int32) {
	nq.network[i][0] -= (alpha * (nq.network[i][0] - b)) / initalpha
	nq.network[i][1] -= (alpha * (nq.network[i][1] - g)) / initalpha
	nq.network[i][2] -= (alpha * (nq.network[i][2] - r)) / initalpha
}

func (nq *neuQuant) alterneigh(radius int, i int, b, g, r, imp int32) {
	lo := abs32(i - radius)
	hi := i + radius
	if hi > nq.netsize {
		hi = nq.netsize
	}

	j := i + 1
	k := i - 1
	m := 1

	for j < hi || k > lo {
		a := nq.radpower[m] * imp / 255
		m++

		if j < hi {
			p := nq.network[j]
			p[0] -= (a * (p[0] - b)) / alpharadbias
			p[1] -= (a * (p[1] - g)) / alpharadbias
			p[2] -= (a * (p[2] - r)) / alpharadbias
			j++
		}

		if k > lo {
			p := nq.network[k]
			p[0] -= (a * (p[0] - b)) / alpharadbias
			p[1] -= (a * (p[1] - g)) / alpharadbias
			p[2] -= (a * (p[2] - r)) / alpharadbias
			k--
		}
	}
}

// contest finds the closest neuron (updates freq/bias) and returns the
// best bias-adjusted neuron position.
func (nq *neuQuant) contest(b, g, r int32) int {
	bestd := int32(0x7FFFFFFF)
	bestbiasd := bestd
	bestpos := -1
	bestbiaspos := bestpos

	for i := 0; i < nq.netsize; i++ {
		n := nq.network[i]
		dist := abs32int(n[0]-b) + abs32int(n[1]-g) + abs32int(n[2]-r)

		if dist < bestd {
			bestd = dist
			bestpos = i
		}

		biasdist := dist - ((nq.bias[i]) >> (intbiasshift - netbiasshift))
		if biasdist < bestbiasd {
			bestbiasd = biasdist
			bestbiaspos = i
		}

		betafreq := nq.freq[i] >> betashift
		nq.freq[i] -= betafreq
		nq.bias[i] += betafreq << gammashift
	}

	nq.freq[bestpos] += beta
	nq.bias[bestpos] -= betagamma

	return bestbiaspos
}

// learn is the main learning loop. Pixels with importance 0 are skipped;
// partially-important pixels move the network proportionally less, biasing
// the final palette toward perceptually important regions of the frame.
func (nq *neuQuant) learn() {
	lengthcount := len(nq.pixels)
	alphadec := int32(30 + ((nq.samplefac - 1) / 3))
	samplepixels := lengthcount / (3 * nq.samplefac)
	delta := samplepixels / ncycles
	if delta == 0 {
		delta = 1
	}

	alpha := int32(initalpha)
	initradius := (nq.netsize >> 3) * radiusbias
	radius := int32(initradius)

	rad := int(radius >> radiusbiasshift)
	if rad <= 1 {
		rad = 0
	}

	for i := 0; i < rad; i++ {
		nq.radpower[i] = alpha * ((int32(rad*rad-i*i) * radbias) / int32(rad*rad))
	}

	var step int
	if lengthcount < minpicturebytes {
		nq.samplefac = 1
		step = 3
	} else if lengthcount%prime1 != 0 {
		step = 3 * prime1
	} else if lengthcount%prime2 != 0 {
		step = 3 * prime2
	} else if lengthcount%prime3 != 0 {
		step = 3 * prime3
	} else {
		step = 3 * prime4
	}

	pix := 0
	i := 0

	for i < samplepixels {
		imp := int32(255)
		if nq.importance != nil {
			imp = int32(nq.importance[pix/3])
		}

		if imp > 0 {
			b := (int32(nq.pixels[pix]) & 0xff) << netbiasshift
			g := (int32(nq.pixels[pix+1]) & 0xff) << netbiasshift
			r := (int32(nq.pixels[pix+2]) & 0xff) << netbiasshift

			j := nq.contest(b, g, r)

			weightedAlpha := (alpha * imp) / 255
			nq.altersingle(weightedAlpha, int32(j), b, g, r)
			if rad != 0 {
				nq.alterneigh(rad, j, b, g, r, imp)
			}
		}

		pix += step
		if pix >= lengthcount {
			pix -= lengthcount
		}

		i++

		if i%delta == 0 {
			alpha -= alpha / alphadec
			radius -= radius / radiusdec
			rad = int(radius >> radiusbiasshift)

			if rad <= 1 {
				rad = 0
			}
			for j := 0; j < rad; j++ {
				nq.radpower[j] = alpha * ((int32(rad*rad-j*j) * radbias) / int32(rad*rad))
			}
		}
	}
}

func (nq *neuQuant) inxbuild() {
	previouscol := int32(0)
	startpos := 0
	maxnetpos := nq.netsize - 1

	for i := 0; i < nq.netsize; i++ {
		p := nq.network[i]
		smallpos := i
		smallval := p[1]

		for j := i + 1; j < nq.netsize; j++ {
			q := nq.network[j]
			if q[1] < smallval {
				smallpos = j
				smallval = q[1]
			}
		}

		if i != smallpos {
			nq.network[i], nq.network[smallpos] = nq.network[smallpos], nq.network[i]
			p = nq.network[i]
		}

		if smallval != previouscol {
			nq.netindex[previouscol] = int32((startpos + i) >> 1)
			for j := previouscol + 1; j < smallval; j++ {
				nq.netindex[j] = int32(i)
			}
			previouscol = smallval
			startpos = i
		}
	}

	nq.netindex[previouscol] = int32((startpos + maxnetpos) >> 1)
	for j := previouscol + 1; j < 256; j++ {
		nq.netindex[j] = int32(maxnetpos)
	}
}

func (nq *neuQuant) inxsearch(b, g, r int32) int {
	bestd := int32(1000)
	best := -1

	i := int(nq.netindex[g])
	j := i - 1

	for i < nq.netsize || j >= 0 {
		if i < nq.netsize {
			p := nq.network[i]
			dist := p[1] - g

			if dist >= bestd {
				i = nq.netsize
			} else {
				i++
				if dist < 0 {
					dist = -dist
				}
				a := p[0] - b
				if a < 0 {
					a = -a
				}
				dist += a

				if dist < bestd {
					a = p[2] - r
					if a < 0 {
						a = -a
					}
					dist += a

					if dist < bestd {
						bestd = dist
						best = int(p[3])
					}
				}
			}
		}

		if j >= 0 {
			p := nq.network[j]
			dist := g - p[1]

			if dist >= bestd {
				j = -1
			} else {
				j--
				if dist < 0 {
					dist = -dist
				}
				a := p[0] - b
				if a < 0 {
					a = -a
				}
				dist += a

				if dist < bestd {
					a = p[2] - r
					if a < 0 {
						a = -a
					}
					dist += a

					if dist < bestd {
						bestd = dist
						best = int(p[3])
					}
				}
			}
		}
	}

	return best
}

func abs32(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func abs32int(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
