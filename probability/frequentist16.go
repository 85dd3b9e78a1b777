package probability

// frequentistSaturationLimit is the point at which FrequentistCDF16 must
// renormalize: 32767 - 16 - 384, where 384 is the largest possible
// per-update increment (Speed::Rocket). Renormalizing before cdf[15] can
// overflow int16 keeps every bucket comparison well-defined.
const frequentistSaturationLimit = CDFMax - 16 - 384

// frequentistBias is the bias term used during renormalization, 1-indexed
// by bucket.
var frequentistBias = [16]Prob{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

// FrequentistCDF16 is a 16-symbol cumulative histogram, cheap to update and
// accurate on stationary sources.
type FrequentistCDF16 struct {
	cdf [16]Prob
}

// NewFrequentistCDF16 returns a FrequentistCDF16 seeded with the arithmetic
// prior {4,8,...,64}.
func NewFrequentistCDF16() FrequentistCDF16 {
	var f FrequentistCDF16
	for i := range f.cdf {
		f.cdf[i] = Prob(4 * (i + 1))
	}
	return f
}

// NumSymbols implements BaseCDF.
func (f *FrequentistCDF16) NumSymbols() int { return NumSymbols16 }

// Max implements BaseCDF. The histogram's own top bucket is the
// normalization ceiling (unlike BlendCDF16, there is no implicit bias term).
func (f *FrequentistCDF16) Max() Prob { return f.cdf[15] }

// CDF implements BaseCDF.
func (f *FrequentistCDF16) CDF(s int) Prob { return f.cdf[s] }

// PDF implements BaseCDF.
func (f *FrequentistCDF16) PDF(s int) Prob { return pdfFromCDF(f, s) }

// Used reports whether any observation differs from the initial prior.
func (f *FrequentistCDF16) Used() bool {
	init := NewFrequentistCDF16()
	return f.cdf != init.cdf
}

// Valid reports whether the histogram is still strictly increasing up to
// bucket 14 (bucket 15 is the running total and need not exceed bucket 14
// strictly once the table wraps, but in practice never does before a
// renormalization pass intervenes).
func (f *FrequentistCDF16) Valid() bool {
	var prev Prob
	for i := 0; i < 15; i++ {
		if f.cdf[i] <= prev {
			return false
		}
		prev = f.cdf[i]
	}
	return true
}

// Blend folds in an observation of symbol at the given speed: every bucket
// from symbol through 15 is incremented by a speed-dependent step, and the
// whole table is renormalized once the running total nears saturation.
func (f *FrequentistCDF16) Blend(symbol int, speed Speed) {
	increment := frequentistIncrement[speed]
	for i := symbol; i < 16; i++ {
		f.cdf[i] += increment
	}
	if f.cdf[15] >= frequentistSaturationLimit {
		for i := range f.cdf {
			biased := f.cdf[i] + frequentistBias[i]
			f.cdf[i] = biased - (biased >> 2)
		}
	}
}
