package probability

// externalMaxProb is ExternalProbCDF16's normalization ceiling. The original
// source computes this as `(1<<15 - 1)`, which Rust operator precedence
// evaluates as `1 << (15-1) == 1<<14 == 16384` — almost certainly a bug,
// called out explicitly as such in this codec's design notes. This port
// uses the clearly-intended value, `(1<<15)-1 == 32767`.
const externalMaxProb Prob = (1 << 15) - 1

// ExternalProbCDF16 is a one-shot CDF seeded from an externally supplied
// probability and a prior CDF. It is immutable under Blend: once seeded, an
// ExternalProbCDF16 always reports the same distribution.
type ExternalProbCDF16 struct {
	cdf    [16]Prob
	nibble int
	maxp   Prob
}

// NewExternalProbCDF16 returns a zeroed ExternalProbCDF16; call Init before
// querying it.
func NewExternalProbCDF16() ExternalProbCDF16 {
	return ExternalProbCDF16{maxp: externalMaxProb}
}

// Init seeds the CDF for the given nibble from an externally supplied
// probability (in [0,1]) and a prior BaseCDF mix, averaging the two before
// scaling to maxp. Every other symbol shares the remaining probability mass
// evenly, so every symbol keeps a non-zero PDF.
func (e *ExternalProbCDF16) Init(nibble int, prob float64, mix BaseCDF) {
	e.nibble = nibble
	p := float64(mix.CDF(nibble)) / float64(mix.Max())
	r := Prob(((p+prob)/2.0)*float64(e.maxp)) //nolint:gosec // bounded by maxp
	i := (e.maxp - r) / 15
	for s := range e.cdf {
		e.cdf[s] = i
	}
	e.cdf[nibble] = r
}

// NumSymbols implements BaseCDF.
func (e *ExternalProbCDF16) NumSymbols() int { return NumSymbols16 }

// Max implements BaseCDF.
func (e *ExternalProbCDF16) Max() Prob { return e.maxp }

// CDF implements BaseCDF. Only the seeded nibble may be queried; any other
// symbol indicates a caller bug (the whole point of an externally seeded
// CDF is that the caller already knows which nibble it is coding).
func (e *ExternalProbCDF16) CDF(s int) Prob {
	if s != e.nibble {
		panic("probability: ExternalProbCDF16 queried for a symbol other than its seeded nibble")
	}
	return e.cdf[s]
}

// PDF implements BaseCDF.
func (e *ExternalProbCDF16) PDF(s int) Prob { return pdfFromCDF(e, s) }

// Blend is a no-op: ExternalProbCDF16 never adapts past its initial seed.
func (e *ExternalProbCDF16) Blend(int, Speed) {}
