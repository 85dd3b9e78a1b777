package recoder

import (
	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/result"
)

// Recoder owns the ring buffer history and turns a decoded Command into
// output bytes. Each divans.Codec holds its own Recoder, so in the worker
// package's threaded decoder it runs on the worker goroutine together with
// the arithmetic coder and command state machine.
type Recoder struct {
	ring       *ringBuffer
	dict       Dictionary
	bytesOut   uint64
	copyCursor uint32 // bytes of the in-progress Copy already emitted
	dictCursor uint32 // bytes of the in-progress Dict already emitted
	dictBytes  []byte // resolved bytes of the in-progress Dict command
	litCursor  uint32 // bytes of the in-progress Literal already emitted
}

// New returns a Recoder with a ring buffer of 2^log2RingSize bytes. dict may
// be nil, in which case any DictCommand fails.
func New(log2RingSize uint, dict Dictionary) *Recoder {
	return &Recoder{
		ring: newRingBuffer(log2RingSize),
		dict: dict,
	}
}

// NumBytesEncoded returns the total number of output bytes this Recoder has
// materialized across its lifetime.
func (r *Recoder) NumBytesEncoded() uint64 { return r.bytesOut }

// Last8Literals returns the most recent 8 bytes written to the ring buffer,
// the literal-context window the command state machine's bookkeeping keys
// its per-context models on.
func (r *Recoder) Last8Literals() [8]byte { return r.ring.last8() }

// EncodeCmd emits cmd's bytes to both the ring buffer and output, resuming
// a partially emitted command across calls (tracked by the cursor fields).
// It returns NeedsMoreOutput when output runs out of room before the
// command is fully emitted, and Failure on an invalid back-reference or
// unresolved dictionary entry.
func (r *Recoder) EncodeCmd(cmd command.Command, output []byte, outputOffset *int) result.Result {
	switch c := cmd.(type) {
	case command.LiteralCommand:
		return r.encodeLiteral(c, output, outputOffset)
	case command.CopyCommand:
		return r.encodeCopy(c, output, outputOffset)
	case command.DictCommand:
		return r.encodeDict(c, output, outputOffset)
	case command.BlockSwitchLiteralCommand, command.BlockSwitchCommandCommand,
		command.BlockSwitchDistanceCommand, command.PredictionModeCommand:
		// These commands carry no output bytes; they only retarget which
		// model the next Literal/Copy/Dict command uses.
		return result.Success
	default:
		return result.Failure
	}
}

// Observe replays cmd against the ring buffer without the bounded-output
// cursor protocol EncodeCmd uses: the encoder side already holds every
// command's bytes in full (there is no caller-supplied output buffer to
// exhaust), so it can afford to materialize and return them in one call for
// the checksum digest to consume. Failure modes mirror EncodeCmd's.
func (r *Recoder) Observe(cmd command.Command) ([]byte, result.Result) {
	switch c := cmd.(type) {
	case command.LiteralCommand:
		for _, b := range c.Data {
			r.ring.writeByte(b)
		}
		r.bytesOut += uint64(len(c.Data))
		return c.Data, result.Success
	case command.CopyCommand:
		if c.Distance == 0 || uint64(c.Distance) > r.ring.filled {
			return nil, result.Failure
		}
		data := make([]byte, c.Length)
		for i := range data {
			b := r.ring.readBack(c.Distance)
			r.ring.writeByte(b)
			data[i] = b
		}
		r.bytesOut += uint64(c.Length)
		return data, result.Success
	case command.DictCommand:
		if r.dict == nil {
			return nil, result.Failure
		}
		data, ok := r.dict.Lookup(c.WordID, c.TransformID)
		if !ok {
			return nil, result.Failure
		}
		for _, b := range data {
			r.ring.writeByte(b)
		}
		r.bytesOut += uint64(len(data))
		return data, result.Success
	case command.BlockSwitchLiteralCommand, command.BlockSwitchCommandCommand,
		command.BlockSwitchDistanceCommand, command.PredictionModeCommand:
		return nil, result.Success
	default:
		return nil, result.Failure
	}
}

func (r *Recoder) encodeLiteral(c command.LiteralCommand, output []byte, outputOffset *int) result.Result {
	for r.litCursor < uint32(len(c.Data)) {
		if *outputOffset >= len(output) {
			return result.NeedsMoreOutput
		}
		b := c.Data[r.litCursor]
		r.ring.writeByte(b)
		output[*outputOffset] = b
		*outputOffset++
		r.bytesOut++
		r.litCursor++
	}
	r.litCursor = 0
	return result.Success
}

func (r *Recoder) encodeCopy(c command.CopyCommand, output []byte, outputOffset *int) result.Result {
	if c.Distance == 0 || uint64(c.Distance) > r.ring.filled {
		return result.Failure
	}
	for r.copyCursor < c.Length {
		if *outputOffset >= len(output) {
			return result.NeedsMoreOutput
		}
		b := r.ring.readBack(c.Distance)
		r.ring.writeByte(b)
		output[*outputOffset] = b
		*outputOffset++
		r.bytesOut++
		r.copyCursor++
	}
	r.copyCursor = 0
	return result.Success
}

func (r *Recoder) encodeDict(c command.DictCommand, output []byte, outputOffset *int) result.Result {
	if r.dictBytes == nil {
		if r.dict == nil {
			return result.Failure
		}
		data, ok := r.dict.Lookup(c.WordID, c.TransformID)
		if !ok {
			return result.Failure
		}
		r.dictBytes = data
	}
	for r.dictCursor < uint32(len(r.dictBytes)) {
		if *outputOffset >= len(output) {
			return result.NeedsMoreOutput
		}
		b := r.dictBytes[r.dictCursor]
		r.ring.writeByte(b)
		output[*outputOffset] = b
		*outputOffset++
		r.bytesOut++
		r.dictCursor++
	}
	r.dictCursor = 0
	r.dictBytes = nil
	return result.Success
}
