package rangecoder

import (
	"math/rand"
	"testing"

	"github.com/mewkiz/divans/probability"
)

// encodeAll drives an encoder's nibble loop followed by Close, draining the
// internal buffer into a single byte slice.
func encodeAll(t *testing.T, symbols []int, freshCDF func() probability.AdaptiveCDF) []byte {
	t.Helper()
	enc := NewEncoder()
	cdf := freshCDF()
	var out []byte
	scratch := make([]byte, 17)

	drain := func() {
		for {
			off := 0
			r := enc.DrainOrFillInternalBuffer(nil, new(int), scratch, &off)
			out = append(out, scratch[:off]...)
			if !r.IsSuspension() {
				return
			}
		}
	}

	for _, s := range symbols {
		n := uint8(s)
		for {
			r := enc.GetOrPutNibble(&n, cdf)
			if r.IsSuspension() {
				drain()
				continue
			}
			break
		}
		cdf.Blend(s, probability.Med)
	}
	for {
		r := enc.Close()
		if r.IsSuspension() {
			drain()
			continue
		}
		break
	}
	drain()
	return out
}

// decodeAll drives a decoder's nibble loop over a byte stream fed in small
// chunks, exercising the NeedsMoreInput suspension path.
func decodeAll(t *testing.T, stream []byte, n int, freshCDF func() probability.AdaptiveCDF) []int {
	t.Helper()
	dec := NewDecoder()
	cdf := freshCDF()
	got := make([]int, 0, n)
	pos := 0

	fill := func() bool {
		if pos >= len(stream) {
			return false
		}
		off := 0
		end := pos + 3
		if end > len(stream) {
			end = len(stream)
		}
		chunk := stream[pos:end]
		dec.DrainOrFillInternalBuffer(chunk, &off, nil, new(int))
		pos += off
		return off > 0
	}

	for i := 0; i < n; i++ {
		var nib uint8
		for {
			r := dec.GetOrPutNibble(&nib, cdf)
			if r.IsSuspension() {
				if !fill() {
					t.Fatalf("decoder starved for input at symbol %d", i)
				}
				continue
			}
			break
		}
		got = append(got, int(nib))
		cdf.Blend(int(nib), probability.Med)
	}
	return got
}

func TestRoundTripFrequentist(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	symbols := make([]int, 2000)
	for i := range symbols {
		symbols[i] = rng.Intn(16)
	}
	fresh := func() probability.AdaptiveCDF {
		f := probability.NewFrequentistCDF16()
		return &f
	}
	stream := encodeAll(t, symbols, fresh)
	got := decodeAll(t, stream, len(symbols), fresh)
	for i, want := range symbols {
		if got[i] != want {
			t.Fatalf("symbol %d: got %d want %d", i, got[i], want)
		}
	}
}

func TestRoundTripBlend(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	symbols := make([]int, 2000)
	for i := range symbols {
		symbols[i] = rng.Intn(16)
	}
	fresh := func() probability.AdaptiveCDF {
		b := probability.NewBlendCDF16()
		return &b
	}
	stream := encodeAll(t, symbols, fresh)
	got := decodeAll(t, stream, len(symbols), fresh)
	for i, want := range symbols {
		if got[i] != want {
			t.Fatalf("symbol %d: got %d want %d", i, got[i], want)
		}
	}
}

func TestRoundTripSkewedCompresses(t *testing.T) {
	symbols := make([]int, 5000)
	for i := range symbols {
		symbols[i] = 3
	}
	fresh := func() probability.AdaptiveCDF {
		f := probability.NewFrequentistCDF16()
		return &f
	}
	stream := encodeAll(t, symbols, fresh)
	if len(stream) >= len(symbols)/2 {
		t.Fatalf("expected a skewed distribution to compress well below nibble-per-symbol, got %d bytes for %d symbols", len(stream), len(symbols))
	}
}
