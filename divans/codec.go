// Package divans implements the command state machine: the per-command
// nested sub-state machines in substate, the rangecoder.Coder they share,
// and the recoder.Recoder that turns a fully-coded command into bytes.
package divans

import (
	"github.com/mewkiz/pkg/dbg"
	"github.com/mewkiz/pkg/errutil"

	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/internal/crc32c"
	"github.com/mewkiz/divans/probability"
	"github.com/mewkiz/divans/rangecoder"
	"github.com/mewkiz/divans/recoder"
	"github.com/mewkiz/divans/result"
	"github.com/mewkiz/divans/substate"
)

// Codec drives one direction (encode XOR decode) of the command state
// machine to completion. Construct one with NewEncoder or NewDecoder; the
// two share every sub-state and the bookkeeping/traits plumbing, differing
// only in where the tag nibble at Begin comes from and how they drive the
// recoder (Recoder.Observe when encoding, Recoder.EncodeCmd's cursor-bound
// loop when decoding).
type Codec struct {
	opts     Options
	encoding bool

	coder *rangecoder.Coder
	rec   *recoder.Recoder
	bk    crossCommandBookKeeping
	tr    codecTraits
	crc   *crc32c.Digest

	lit        substate.LiteralState
	cpy        substate.CopyState
	dct        substate.DictState
	litSwitch  substate.LiteralBlockSwitchState
	cmdSwitch  substate.BlockTypeState
	distSwitch substate.BlockTypeState
	predMode   substate.PredictionModeState

	state           encodeOrDecodeState
	curTag          command.Tag
	checksumCount   uint8
	frozenCRC       *uint32
	pendingPopulate command.Command

	// encode-only.
	queue    []command.Command
	finished bool

	// decode-only: the command completed by the most recent PopulateRingBuffer step.
	lastCommand command.Command

	// onCommand, if set, is invoked once per successfully decoded command,
	// right after its bytes have been applied to the ring buffer/output.
	// worker.ThreadedDecoder uses this to notify the main thread of each
	// decoded command without re-running the recoder itself.
	onCommand func(command.Command)

	lastErr error
}

// SetCommandObserver installs f to be called after every command Decode
// finishes applying to the ring buffer. Valid only on a decoder; pass nil to
// remove a previously installed observer.
func (c *Codec) SetCommandObserver(f func(command.Command)) {
	if c.encoding {
		panic("divans: SetCommandObserver called on an encoder")
	}
	c.onCommand = f
}

func newCodec(opts Options, encoding bool) *Codec {
	bk := newCrossCommandBookKeeping(opts)
	c := &Codec{
		opts:       opts,
		encoding:   encoding,
		rec:        recoder.New(opts.RingBufferSizeLog2, opts.Dictionary),
		bk:         bk,
		crc:        crc32c.New(),
		lit:        substate.NewLiteralState(),
		cpy:        substate.NewCopyState(),
		dct:        substate.NewDictState(),
		litSwitch:  substate.NewLiteralBlockSwitchState(),
		cmdSwitch:  substate.NewBlockTypeState(substate.BlockTypeCommandSwitch),
		distSwitch: substate.NewBlockTypeState(substate.BlockTypeDistanceSwitch),
		predMode:   substate.NewPredictionModeState(),
	}
	c.tr = recomputeTraits(opts, &c.bk)
	if encoding {
		c.coder = rangecoder.NewEncoder()
	} else {
		c.coder = rangecoder.NewDecoder()
	}
	return c
}

// NewEncoder returns a Codec that turns PushCommand-ed commands into a
// compressed byte stream via Encode.
func NewEncoder(opts Options) *Codec { return newCodec(opts, true) }

// NewDecoder returns a Codec that turns a compressed byte stream into
// decompressed output bytes via Decode.
func NewDecoder(opts Options) *Codec { return newCodec(opts, false) }

// LastError returns the reason the most recent Encode/Decode call returned
// result.Failure, or nil if the codec hasn't failed.
func (c *Codec) LastError() error { return c.lastErr }

// CommandCount returns the number of commands fully coded so far.
func (c *Codec) CommandCount() uint64 { return c.bk.CommandCount() }

// PushCommand queues cmd for Encode to code next. Valid only on an encoder,
// and only before Finish.
func (c *Codec) PushCommand(cmd command.Command) {
	c.queue = append(c.queue, cmd)
}

// Finish tells an encoder that no further commands will be pushed: once the
// queue drains, Encode codes the end-of-stream marker and checksum trailer.
func (c *Codec) Finish() { c.finished = true }

// LastCommand returns the command most recently finished decoding, valid
// once Decode has made progress past a PopulateRingBuffer step.
func (c *Codec) LastCommand() command.Command { return c.lastCommand }

// Done reports whether the stream has been fully coded (checksum trailer
// included).
func (c *Codec) Done() bool { return c.state == stateDivansSuccess }

// Encode drives the encoder, writing compressed bytes to output starting at
// *outputOffset. It returns result.Success once every pushed command
// (through the Finish call) has been coded and the checksum trailer
// written, result.NeedsMoreOutput if output filled up first, or
// result.Failure on an invalid queued command (see LastError).
func (c *Codec) Encode(output []byte, outputOffset *int) result.Result {
	if !c.encoding {
		panic("divans: Encode called on a decoder")
	}
	return c.run(nil, new(int), output, outputOffset)
}

// Decode drives the decoder, consuming compressed bytes from input starting
// at *inputOffset and writing decompressed bytes to output starting at
// *outputOffset. See Encode for the Result contract.
func (c *Codec) Decode(input []byte, inputOffset *int, output []byte, outputOffset *int) result.Result {
	if c.encoding {
		panic("divans: Decode called on an encoder")
	}
	return c.run(input, inputOffset, output, outputOffset)
}

// run is the shared encode_or_decode loop: a state machine cursor
// (c.state) advanced one step per iteration until a step is incomplete
// (suspension) or the stream reaches DivansSuccess.
func (c *Codec) run(input []byte, inputOffset *int, output []byte, outputOffset *int) result.Result {
	for {
		switch c.state {
		case stateBegin:
			if r := c.stepBegin(input, inputOffset, output, outputOffset); r != result.Success {
				return r
			}
		case stateLiteral:
			if r := c.pump(func() result.Result { return c.lit.EncodeOrDecode(c.coder, c.encoding) }, input, inputOffset, output, outputOffset); r != result.Success {
				return r
			}
			c.finishCommand(c.lit.Cmd)
		case stateDict:
			if r := c.pump(func() result.Result { return c.dct.EncodeOrDecode(c.coder, c.encoding) }, input, inputOffset, output, outputOffset); r != result.Success {
				return r
			}
			c.finishCommand(c.dct.Cmd)
		case stateCopy:
			if r := c.pump(func() result.Result { return c.cpy.EncodeOrDecode(c.coder, c.encoding) }, input, inputOffset, output, outputOffset); r != result.Success {
				return r
			}
			c.bk.observeDistance(c.cpy.Cmd)
			c.finishCommand(c.cpy.Cmd)
		case stateBlockSwitchLiteral:
			if r := c.pump(func() result.Result { return c.litSwitch.EncodeOrDecode(c.coder, c.encoding) }, input, inputOffset, output, outputOffset); r != result.Success {
				return r
			}
			if c.bk.observeBlockSwitchLiteral(c.litSwitch.Cmd) {
				c.tr = recomputeTraits(c.opts, &c.bk)
			}
			c.finishCommand(c.litSwitch.Cmd)
		case stateBlockSwitchCommand:
			if c.encoding {
				c.cmdSwitch.SetSourceCommand(c.pendingQueueCmd())
			}
			if r := c.pump(func() result.Result { return c.cmdSwitch.EncodeOrDecode(c.coder, c.encoding) }, input, inputOffset, output, outputOffset); r != result.Success {
				return r
			}
			cmd := c.cmdSwitch.Command()
			c.bk.observeBlockSwitchCommand(cmd.(command.BlockSwitchCommandCommand))
			c.finishCommand(cmd)
		case stateBlockSwitchDistance:
			if c.encoding {
				c.distSwitch.SetSourceCommand(c.pendingQueueCmd())
			}
			if r := c.pump(func() result.Result { return c.distSwitch.EncodeOrDecode(c.coder, c.encoding) }, input, inputOffset, output, outputOffset); r != result.Success {
				return r
			}
			cmd := c.distSwitch.Command()
			c.bk.observeBlockSwitchDistance(cmd.(command.BlockSwitchDistanceCommand))
			c.finishCommand(cmd)
		case statePredictionMode:
			if r := c.pump(func() result.Result { return c.predMode.EncodeOrDecode(c.coder, c.encoding) }, input, inputOffset, output, outputOffset); r != result.Success {
				return r
			}
			c.finishCommand(c.predMode.Cmd)
		case statePopulateRingBuffer:
			if r := c.populateRingBuffer(output, outputOffset); r != result.Success {
				return r
			}
			c.state = stateBegin
		case stateEncodedShutdownNode:
			if r := c.coder.DrainOrFillInternalBuffer(nil, new(int), output, outputOffset); r != result.Success {
				return r
			}
			c.state = stateShutdownCoder
		case stateShutdownCoder:
			if r := c.coder.Close(); r != result.Success {
				return r
			}
			c.state = stateCoderBufferDrain
		case stateCoderBufferDrain:
			if r := c.coder.DrainOrFillInternalBuffer(nil, new(int), output, outputOffset); r != result.Success {
				return r
			}
			c.state = stateWriteChecksum
		case stateWriteChecksum:
			if r := c.stepWriteChecksum(input, inputOffset, output, outputOffset); r != result.Success {
				return r
			}
		case stateDivansSuccess:
			return result.Success
		}
	}
}

// pendingQueueCmd returns (without consuming) the command Begin most
// recently dispatched on, for sub-states that need to re-read the source
// command across resumptions (block-type switches key off it by value, not
// by copying into their own Cmd field the way other sub-states do).
func (c *Codec) pendingQueueCmd() command.Command {
	if len(c.queue) == 0 {
		return nil
	}
	return c.queue[0]
}

// pump drives one sub-state step, translating a coder-buffer-exhaustion
// suspension into a drain/fill against the caller's real buffer and
// retrying, so bufCapacity is invisible to callers of Encode/Decode.
func (c *Codec) pump(step func() result.Result, input []byte, inputOffset *int, output []byte, outputOffset *int) result.Result {
	for {
		r := step()
		switch r {
		case result.Success:
			return result.Success
		case result.Failure:
			c.lastErr = errutil.Newf("divans: command coding failed in state %s", c.state)
			return result.Failure
		case result.NeedsMoreOutput:
			if c.encoding {
				if dr := c.coder.DrainOrFillInternalBuffer(nil, new(int), output, outputOffset); dr != result.Success {
					return dr
				}
				continue
			}
			return result.NeedsMoreOutput
		case result.NeedsMoreInput:
			if !c.encoding {
				if fr := c.coder.DrainOrFillInternalBuffer(input, inputOffset, nil, new(int)); fr != result.Success {
					return fr
				}
				if *inputOffset == len(input) {
					return result.NeedsMoreInput
				}
				continue
			}
			return result.NeedsMoreInput
		}
	}
}

func (c *Codec) stepBegin(input []byte, inputOffset *int, output []byte, outputOffset *int) result.Result {
	if c.encoding && len(c.queue) == 0 && !c.finished {
		// Nothing queued yet and the caller hasn't called Finish: this
		// mirrors the original's input_commands-exhausted check, which runs
		// before Begin ever dispatches on a command.
		return result.NeedsMoreInput
	}
	// Opportunistically drain/fill before coding a new tag, matching the
	// original's drain-at-Begin placement.
	if c.encoding {
		if r := c.coder.DrainOrFillInternalBuffer(nil, new(int), output, outputOffset); r != result.Success {
			return r
		}
	}

	var tag uint8
	if c.encoding {
		isEnd := c.finished && len(c.queue) == 0
		if isEnd {
			tag = uint8(command.TagEndOfStream)
		} else {
			tag = uint8(command.TagForCommand(c.queue[0], false))
		}
	}
	cdf := c.bk.commandTypeCDF()
	r := c.pump(func() result.Result {
		return c.coder.GetOrPutNibble(&tag, cdf)
	}, input, inputOffset, output, outputOffset)
	if r != result.Success {
		return r
	}
	cdf.Blend(int(tag), probability.Rocket)
	c.curTag = command.Tag(tag)
	if !c.curTag.Valid() {
		c.lastErr = errutil.Newf("divans: invalid command tag nibble %d", tag)
		return result.Failure
	}
	dbg.Println("divans: begin tag", c.curTag)

	isEnd := c.curTag == command.TagEndOfStream
	if isEnd {
		if c.encoding {
			// Matches internal_flush's Begin arm: coding the end-of-stream
			// nibble falls through to shutting down the coder and writing
			// the checksum trailer, rather than finishing immediately.
			c.state = stateEncodedShutdownNode
			return result.Success
		}
		c.state = stateWriteChecksum
		return result.Success
	}

	switch c.curTag {
	case command.TagCopy:
		c.cpy.Begin()
		if c.encoding {
			c.cpy.Cmd = c.popQueue().(command.CopyCommand)
		}
		c.bk.observeCopy()
		c.state = stateCopy
	case command.TagDict:
		c.dct.Begin()
		if c.encoding {
			c.dct.Cmd = c.popQueue().(command.DictCommand)
		}
		c.bk.observeDict()
		c.state = stateDict
	case command.TagLiteral:
		c.lit.Begin()
		if c.encoding {
			c.lit.Cmd = c.popQueue().(command.LiteralCommand)
		}
		c.bk.observeLiteral()
		c.state = stateLiteral
	case command.TagBlockSwitchLiteral:
		c.litSwitch.Begin()
		if c.encoding {
			c.litSwitch.Cmd = c.popQueue().(command.BlockSwitchLiteralCommand)
		}
		c.state = stateBlockSwitchLiteral
	case command.TagBlockSwitchCommand:
		c.cmdSwitch.Begin()
		c.state = stateBlockSwitchCommand
	case command.TagBlockSwitchDist:
		c.distSwitch.Begin()
		c.state = stateBlockSwitchDistance
	case command.TagPredictionMode:
		c.predMode.Begin()
		if c.encoding {
			c.predMode.Cmd = c.popQueue().(command.PredictionModeCommand)
		}
		c.state = statePredictionMode
	}
	return result.Success
}

// popQueue consumes and returns the head of the encode queue. Block-type
// switch states read it via pendingQueueCmd/SetSourceCommand instead,
// since their Begin call above doesn't know the concrete type ahead of
// dispatch; pop it here once dispatch has happened for every other kind.
func (c *Codec) popQueue() command.Command {
	cmd := c.queue[0]
	c.queue = c.queue[1:]
	return cmd
}

// finishCommand is reached once a sub-state's EncodeOrDecode call returns
// Success: for block-type switches the queued command still needs popping
// (stepBegin left it for SetSourceCommand to read), then the command moves
// to PopulateRingBuffer regardless of kind.
func (c *Codec) finishCommand(cmd command.Command) {
	if c.encoding {
		switch cmd.(type) {
		case command.BlockSwitchCommandCommand, command.BlockSwitchDistanceCommand:
			if len(c.queue) > 0 {
				c.popQueue()
			}
		}
	}
	c.pendingPopulate = cmd
	c.state = statePopulateRingBuffer
}

// populateRingBuffer runs the command through the recoder, a step both
// directions share (via Observe on encode, EncodeCmd on decode): it
// advances the ring buffer and CRC32C
// digest over the plain (uncompressed) bytes the command represents,
// whether those bytes were just read from the encoder's queued command or
// just produced for the decoder's caller.
func (c *Codec) populateRingBuffer(output []byte, outputOffset *int) result.Result {
	cmd := c.pendingPopulate
	if c.encoding {
		data, r := c.rec.Observe(cmd)
		c.crc.Write(data)
		if r != result.Success {
			c.lastErr = errutil.Newf("divans: recoder rejected command during encode")
			return r
		}
	} else {
		before := *outputOffset
		r := c.rec.EncodeCmd(cmd, output, outputOffset)
		if *outputOffset > before {
			c.crc.Write(output[before:*outputOffset])
		}
		if r != result.Success {
			if r == result.Failure {
				c.lastErr = errutil.Newf("divans: recoder rejected decoded command")
			}
			return r
		}
	}
	c.bk.setLast8Literals(c.rec.Last8Literals())
	c.bk.setDecodeByteCount(uint32(c.rec.NumBytesEncoded()))
	c.bk.incrementCommandCount()
	c.lastCommand = cmd
	if !c.encoding && c.onCommand != nil {
		c.onCommand(cmd)
	}
	return result.Success
}

func (c *Codec) finishedCRC() uint32 {
	if c.frozenCRC == nil {
		sum := c.crc.Sum32()
		c.frozenCRC = &sum
	}
	return *c.frozenCRC
}

func (c *Codec) stepWriteChecksum(input []byte, inputOffset *int, output []byte, outputOffset *int) result.Result {
	if c.encoding {
		crc := c.finishedCRC()
		count, done := writeChecksumStep(crc, c.checksumCount, output, outputOffset)
		c.checksumCount = count
		if !done {
			return result.NeedsMoreOutput
		}
		c.state = stateDivansSuccess
		return result.Success
	}
	crc := c.finishedCRC()
	count, done, ok := readChecksumStep(crc, c.checksumCount, c.opts.SkipChecksum, input, inputOffset)
	c.checksumCount = count
	if !ok {
		c.lastErr = errutil.Newf("divans: checksum trailer mismatch")
		return result.Failure
	}
	if !done {
		return result.NeedsMoreInput
	}
	c.state = stateDivansSuccess
	return result.Success
}
