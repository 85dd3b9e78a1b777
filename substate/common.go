// Package substate holds the nested, independently-suspendable state
// machines the top-level command state machine delegates to once it has
// read a command-type nibble: one per command kind (literal, copy, dict,
// the three block-switch flavors, and prediction mode).
//
// Every sub-state exposes an EncodeOrDecode method with the same shape:
// given a coder and a command struct (read from on encode, filled in on
// decode), it drives the coder's nibble-at-a-time protocol and returns
// result.Success, a suspension, or result.Failure. A suspension leaves the
// sub-state's internal progress exactly where it left off, so calling
// EncodeOrDecode again with more input/output room resumes instead of
// restarting.
package substate

import (
	"github.com/mewkiz/divans/internal/bitutil"
	"github.com/mewkiz/divans/probability"
	"github.com/mewkiz/divans/rangecoder"
	"github.com/mewkiz/divans/result"
)

// varint is a resumable nibble-count-prefixed unsigned integer coder shared
// by every sub-state that needs to code a length or distance field: one
// nibble for how many base-16 digits follow (0 means 1 digit), then the
// digits themselves, most significant first. The specific nibble
// decomposition of a command's fields is explicitly left to collaborators
// by the core design; this is this port's concrete choice.
type varint struct {
	countCDF probability.FrequentistCDF16
	digitCDF [8]probability.FrequentistCDF16
	stage    int
	count    uint8
	digit    int
	value    uint32
}

func newVarint() varint {
	v := varint{countCDF: probability.NewFrequentistCDF16()}
	for i := range v.digitCDF {
		v.digitCDF[i] = probability.NewFrequentistCDF16()
	}
	return v
}

// code drives one resumable step. On encode, v.value must hold the source
// value before the first call. On decode, the decoded value is in v.value
// once code returns result.Success.
func (v *varint) code(coder *rangecoder.Coder, encoding bool) result.Result {
	if v.stage == 0 {
		var n uint8
		if encoding {
			n = uint8(bitutil.NibbleCount(v.value) - 1)
		}
		if r := coder.GetOrPutNibble(&n, &v.countCDF); r != result.Success {
			return r
		}
		v.countCDF.Blend(int(n), probability.Med)
		v.count = n + 1
		if !encoding {
			v.value = 0
		}
		v.digit = 0
		v.stage = 1
	}
	for v.digit < int(v.count) {
		var nib uint8
		if encoding {
			shift := uint(int(v.count)-1-v.digit) * 4
			nib = uint8((v.value >> shift) & 0xf)
		}
		cdf := &v.digitCDF[v.digit%len(v.digitCDF)]
		if r := coder.GetOrPutNibble(&nib, cdf); r != result.Success {
			return r
		}
		cdf.Blend(int(nib), probability.Med)
		if !encoding {
			v.value = v.value<<4 | uint32(nib)
		}
		v.digit++
	}
	v.stage = 0
	return result.Success
}

// bitCDF codes a single boolean through a CDF2, the sub-states' equivalent
// of a flag field (Literal.HighEntropy, and so on).
type bitCDF struct {
	cdf probability.CDF2
}

func newBitCDF() bitCDF {
	return bitCDF{cdf: probability.NewCDF2()}
}

func (b *bitCDF) code(coder *rangecoder.Coder, encoding bool, value *bool) result.Result {
	var n uint8
	if encoding && *value {
		n = 1
	}
	if r := coder.GetOrPutNibble(&n, &b.cdf); r != result.Success {
		return r
	}
	b.cdf.Blend(n == 1, probability.Med)
	if !encoding {
		*value = n == 1
	}
	return result.Success
}

// byteCoder codes raw bytes two nibbles at a time (high nibble then low
// nibble), each through its own small order-1 context model keyed by the
// nibble that immediately preceded it. It resumes mid-byte and mid-run.
type byteCoder struct {
	hiCDF   [16]probability.FrequentistCDF16
	loCDF   [16]probability.FrequentistCDF16
	prevNib int
	haveHi  bool
	hi      uint8
	cursor  uint32
}

func newByteCoder() byteCoder {
	bc := byteCoder{}
	for i := range bc.hiCDF {
		bc.hiCDF[i] = probability.NewFrequentistCDF16()
		bc.loCDF[i] = probability.NewFrequentistCDF16()
	}
	return bc
}

// codeRun codes length bytes of data (read from data[cursor:] on encode,
// written into data[cursor:] on decode; data must already be sized to
// length on decode). length is the caller's responsibility to track
// separately; codeRun returns Success once cursor reaches length.
func (bc *byteCoder) codeRun(coder *rangecoder.Coder, encoding bool, data []byte, length uint32) result.Result {
	for bc.cursor < length {
		var b byte
		if encoding {
			b = data[bc.cursor]
		}
		if !bc.haveHi {
			n := b >> 4
			if r := coder.GetOrPutNibble(&n, &bc.hiCDF[bc.prevNib]); r != result.Success {
				return r
			}
			bc.hiCDF[bc.prevNib].Blend(int(n), probability.Med)
			bc.hi = n
			bc.haveHi = true
		}
		n := b & 0xf
		if r := coder.GetOrPutNibble(&n, &bc.loCDF[bc.hi]); r != result.Success {
			return r
		}
		bc.loCDF[bc.hi].Blend(int(n), probability.Med)
		if !encoding {
			data[bc.cursor] = bc.hi<<4 | n
		}
		bc.prevNib = int(n)
		bc.haveHi = false
		bc.cursor++
	}
	bc.cursor = 0
	return result.Success
}
