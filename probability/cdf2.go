package probability

// CDF2 is a two-symbol distribution backed by two saturating counters in
// [1,255] and a derived 8-bit probability of symbol 0 in [0,255].
type CDF2 struct {
	counts [2]uint8
	prob   uint8
}

// NewCDF2 returns a CDF2 with both counters seeded to 1 (uniform prior).
func NewCDF2() CDF2 {
	return CDF2{counts: [2]uint8{1, 1}, prob: 128}
}

// NumSymbols implements BaseCDF.
func (c *CDF2) NumSymbols() int { return 2 }

// Max implements BaseCDF.
func (c *CDF2) Max() Prob { return 256 }

// CDF implements BaseCDF. Symbol 0's cumulative probability is prob; symbol 1
// (the last symbol) is cumulative up to Max, so PDF(1) is the complement of
// prob.
func (c *CDF2) CDF(s int) Prob {
	switch s {
	case 0:
		return Prob(c.prob)
	case 1:
		return c.Max()
	default:
		panic("probability: CDF2 symbol out of range")
	}
}

// PDF implements BaseCDF.
func (c *CDF2) PDF(s int) Prob { return pdfFromCDF(c, s) }

// Used reports whether any observation has been blended in.
func (c *CDF2) Used() bool {
	return c.counts[0] != 1 || c.counts[1] != 1
}

// Blend folds in an observation of the given boolean symbol. Speed is part
// of the CDF2 contract but, per the original design, CDF2 does not vary its
// increment by speed — every observation increments the observed counter by
// exactly one.
func (c *CDF2) Blend(symbol bool, _ Speed) {
	obs := 0
	notObs := 1
	if symbol {
		obs, notObs = 1, 0
	}
	fcount := c.counts[0]
	tcount := c.counts[1]
	overflow := c.counts[obs] == 0xff
	c.counts[obs]++ // wraps to 0 on overflow, matching the original's wrapping_add
	if overflow {
		neverSeen := c.counts[notObs] == 1
		if neverSeen {
			c.counts[obs] = 0xff
			if symbol {
				c.prob = 0
			} else {
				c.prob = 0xff
			}
			return
		}
		c.counts[0] = uint8((1 + uint16(fcount)) >> 1)
		c.counts[1] = uint8((1 + uint16(tcount)) >> 1)
		c.counts[obs] = 129
		c.prob = uint8((uint16(c.counts[0]) << 8) / (uint16(c.counts[0]) + uint16(c.counts[1])))
		return
	}
	c.prob = uint8((uint16(c.counts[0]) << 8) / (uint16(fcount) + uint16(tcount) + 1))
}
