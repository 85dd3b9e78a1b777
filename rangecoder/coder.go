// Package rangecoder implements the byte-oriented entropy coder that backs
// every get_or_put_nibble call in the command state machine.
//
// The design is adapted from the libopus-derived range encoder in this
// corpus (thesyncim/gopus's internal/rangecoding), but that encoder only
// ships libopus's carry-propagating half of the RFC 6716 coder — no
// decoder counterpart exists anywhere in the corpus to verify a
// bit-exact carry-propagation port against. This package instead adapts
// the same rng/val/normalize shape into a carryless (Subbotin-style)
// range coder: carry propagation is avoided by shrinking the range
// whenever the top byte of low and low+rng could still differ, which
// keeps the encoder and decoder halves symmetric and independently
// testable without a carry side-channel.
package rangecoder

import (
	"github.com/mewkiz/divans/probability"
	"github.com/mewkiz/divans/result"
)

const (
	topValue    = uint32(1) << 24
	bottomValue = uint32(1) << 16
	// bufCapacity bounds the internal FIFO: the pending-output queue for an
	// encoder, the buffered-but-unconsumed input queue for a decoder. It
	// exists so a caller that never drains/fills can't make the coder grow
	// without bound: an encoder that hits it returns NeedsMoreOutput, and a
	// decoder's fill accepts only as many input bytes as fit, leaving the
	// rest of the input unconsumed.
	bufCapacity = 1 << 16
)

// Coder is a carryless range coder usable as either the encode or decode
// half of the arithmetic coder, selected at construction.
type Coder struct {
	decoding bool
	closed   bool

	low uint32
	rng uint32

	// decode-only
	code        uint32
	primedBytes int

	// encode: pending output bytes awaiting DrainOrFillInternalBuffer.
	// decode: buffered input bytes awaiting consumption by GetOrPutNibble.
	buf    []byte
	bufPos int
}

// NewEncoder returns a Coder in encoding mode.
func NewEncoder() *Coder {
	return &Coder{rng: 0xFFFFFFFF}
}

// NewDecoder returns a Coder in decoding mode. The first GetOrPutNibble call
// primes its code register from the first four bytes of input, so an empty
// stream never decodes a symbol.
func NewDecoder() *Coder {
	return &Coder{decoding: true, rng: 0xFFFFFFFF}
}

// IsDecoding reports whether c was constructed with NewDecoder.
func (c *Coder) IsDecoding() bool { return c.decoding }

// GetOrPutNibble codes a single symbol under cdf. In encoding mode *nibble
// is read and its bits are written into the coder's internal register. In
// decoding mode the next symbol is read from the internal register into
// *nibble. The caller is responsible for blending cdf with the decoded or
// encoded symbol afterward; GetOrPutNibble never mutates cdf.
func (c *Coder) GetOrPutNibble(nibble *uint8, cdf probability.BaseCDF) result.Result {
	if c.closed {
		panic("rangecoder: GetOrPutNibble called after Close")
	}
	if !c.decoding {
		if len(c.buf)-c.bufPos >= bufCapacity {
			return result.NeedsMoreOutput
		}
		c.encodeSymbol(int(*nibble), cdf)
		return result.Success
	}
	if !c.ensurePrimed() {
		return result.NeedsMoreInput
	}
	sym, ok := c.decodeSymbol(cdf)
	if !ok {
		return result.NeedsMoreInput
	}
	*nibble = uint8(sym)
	return result.Success
}

// DrainOrFillInternalBuffer moves bytes between the coder's internal FIFO
// and the caller's slices: for an encoder, it drains pending output bytes
// into output; for a decoder, it fills the internal buffer from input.
// Either direction advances the matching offset by however many bytes it
// moved, even when it returns a suspension.
func (c *Coder) DrainOrFillInternalBuffer(input []byte, inputOffset *int, output []byte, outputOffset *int) result.Result {
	if !c.decoding {
		return c.drainOutput(output, outputOffset)
	}
	return c.fillInput(input, inputOffset)
}

func (c *Coder) drainOutput(output []byte, outputOffset *int) result.Result {
	pending := c.buf[c.bufPos:]
	room := len(output) - *outputOffset
	n := len(pending)
	if n > room {
		n = room
	}
	copy(output[*outputOffset:], pending[:n])
	*outputOffset += n
	c.bufPos += n
	c.compact()
	if c.bufPos < len(c.buf) {
		return result.NeedsMoreOutput
	}
	return result.Success
}

func (c *Coder) fillInput(input []byte, inputOffset *int) result.Result {
	avail := input[*inputOffset:]
	room := bufCapacity - (len(c.buf) - c.bufPos)
	n := len(avail)
	if n > room {
		n = room
	}
	c.buf = append(c.buf, avail[:n]...)
	*inputOffset += n
	return result.Success
}

// compact drops the already-consumed prefix of buf once it grows large, so
// a long-running encoder doesn't retain every byte it ever emitted.
func (c *Coder) compact() {
	if c.bufPos == 0 {
		return
	}
	if c.bufPos == len(c.buf) {
		c.buf = c.buf[:0]
		c.bufPos = 0
		return
	}
	if c.bufPos > 4096 {
		c.buf = append(c.buf[:0], c.buf[c.bufPos:]...)
		c.bufPos = 0
	}
}

// Close finalizes the coder. For an encoder this flushes enough bytes of
// the low register to disambiguate the final interval, queuing them for
// DrainOrFillInternalBuffer exactly like any other encoded byte. For a
// decoder it is a cheap terminal marker; no further GetOrPutNibble call is
// valid afterward either way.
func (c *Coder) Close() result.Result {
	if c.closed {
		return result.Success
	}
	if !c.decoding {
		if len(c.buf)-c.bufPos+4 > bufCapacity {
			return result.NeedsMoreOutput
		}
		for i := 0; i < 4; i++ {
			c.buf = append(c.buf, byte(c.low>>24))
			c.low <<= 8
		}
	}
	c.closed = true
	return result.Success
}

func (c *Coder) peekByte() (byte, bool) {
	if c.bufPos >= len(c.buf) {
		return 0, false
	}
	return c.buf[c.bufPos], true
}

func (c *Coder) consumeByte() {
	c.bufPos++
	c.compact()
}

func (c *Coder) ensurePrimed() bool {
	for c.primedBytes < 4 {
		b, ok := c.peekByte()
		if !ok {
			return false
		}
		c.consumeByte()
		c.code = (c.code << 8) | uint32(b)
		c.primedBytes++
	}
	return true
}

func (c *Coder) encodeSymbol(symbol int, cdf probability.BaseCDF) {
	max := uint32(cdf.Max())
	var cumLow uint32
	if symbol > 0 {
		cumLow = uint32(cdf.CDF(symbol - 1))
	}
	freq := uint32(cdf.PDF(symbol))
	r := c.rng / max
	c.low += cumLow * r
	if symbol == cdf.NumSymbols()-1 {
		c.rng -= cumLow * r
	} else {
		c.rng = r * freq
	}
	c.normalizeEncode()
}

func (c *Coder) normalizeEncode() {
	for {
		sameTopByte := (c.low ^ (c.low + c.rng)) < topValue
		if !sameTopByte {
			if c.rng >= bottomValue {
				return
			}
			c.rng = -c.low & (bottomValue - 1)
		}
		c.buf = append(c.buf, byte(c.low>>24))
		c.low <<= 8
		c.rng <<= 8
	}
}

func (c *Coder) decodeSymbol(cdf probability.BaseCDF) (int, bool) {
	if !c.normalizeDecode() {
		return 0, false
	}
	max := uint32(cdf.Max())
	r := c.rng / max
	value := (c.code - c.low) / r
	if value >= max {
		value = max - 1
	}
	sym := 0
	for sym < cdf.NumSymbols()-1 && uint32(cdf.CDF(sym)) <= value {
		sym++
	}
	var cumLow uint32
	if sym > 0 {
		cumLow = uint32(cdf.CDF(sym - 1))
	}
	freq := uint32(cdf.PDF(sym))
	c.low += cumLow * r
	if sym == cdf.NumSymbols()-1 {
		c.rng -= cumLow * r
	} else {
		c.rng = r * freq
	}
	return sym, true
}

// normalizeDecode brings low/rng/code back into the coder's invariant range,
// consuming one buffered byte per shift. If a shift needs a byte that isn't
// buffered yet, it leaves all state untouched and reports false so the
// caller can retry once more input has been supplied.
func (c *Coder) normalizeDecode() bool {
	for {
		sameTopByte := (c.low ^ (c.low + c.rng)) < topValue
		forceShift := !sameTopByte && c.rng < bottomValue
		if !sameTopByte && !forceShift {
			return true
		}
		b, ok := c.peekByte()
		if !ok {
			return false
		}
		c.consumeByte()
		if forceShift {
			c.rng = -c.low & (bottomValue - 1)
		}
		c.low <<= 8
		c.rng <<= 8
		c.code = (c.code << 8) | uint32(b)
	}
}
