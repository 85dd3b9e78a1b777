package divans

import (
	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/probability"
)

// crossCommandBookKeeping tracks the observations that outlive a single
// command: the command-type prior that every Begin-state nibble is coded
// against, the active literal stride, and the running counters a CLI
// inspector or benchmark wants without re-walking the command stream.
//
// The original's cross-command bookkeeping also feeds a literal
// context-mixing predictor; that predictor's internals are the spec's
// explicit non-goal. Of the per-command-kind observation hooks below,
// observeLiteral/observeCopy/observeDict only count commands,
// observeDistance and the command/distance block-switch hooks record
// nothing, and only observeBlockSwitchLiteral changes coding state (the
// stride, which can trigger the trait recompute).
type crossCommandBookKeeping struct {
	commandTypePrior probability.FrequentistCDF16

	stride          uint8
	forcedStride    uint8 // 0 = auto (ForceStride.Auto); otherwise pinned
	commandCount    uint64
	decodeByteCount uint32
	last8Literals   [8]byte

	literalObservations uint64
	copyObservations    uint64
	dictObservations    uint64
}

func newCrossCommandBookKeeping(opts Options) crossCommandBookKeeping {
	bk := crossCommandBookKeeping{
		commandTypePrior: probability.NewFrequentistCDF16(),
		stride:           1,
	}
	if !opts.ForceStride.Auto {
		bk.forcedStride = opts.ForceStride.Explicit
		bk.stride = opts.ForceStride.Explicit
	}
	return bk
}

// commandTypeCDF returns the prior every Begin-state tag nibble is coded
// against and updates.
func (bk *crossCommandBookKeeping) commandTypeCDF() *probability.FrequentistCDF16 {
	return &bk.commandTypePrior
}

func (bk *crossCommandBookKeeping) observeLiteral() { bk.literalObservations++ }
func (bk *crossCommandBookKeeping) observeCopy()    { bk.copyObservations++ }
func (bk *crossCommandBookKeeping) observeDict()    { bk.dictObservations++ }

// observeDistance records the distance of a just-decoded/encoded copy, the
// hook a distance context-mixing model would key on.
func (bk *crossCommandBookKeeping) observeDistance(cmd command.CopyCommand) {
	_ = cmd // reserved for a future distance-context predictor
}

// observeBlockSwitchLiteral applies a literal block-type switch and reports
// whether the stride crossed the single/multi-byte-context boundary (the
// codec uses this to decide whether its trait selector needs recomputing).
func (bk *crossCommandBookKeeping) observeBlockSwitchLiteral(cmd command.BlockSwitchLiteralCommand) (strideBoundaryCrossed bool) {
	oldSingleByte := bk.stride <= 1
	if bk.forcedStride == 0 && cmd.Stride > 0 {
		bk.stride = cmd.Stride
	}
	return oldSingleByte != (bk.stride <= 1)
}

func (bk *crossCommandBookKeeping) observeBlockSwitchCommand(command.BlockSwitchCommandCommand)   {}
func (bk *crossCommandBookKeeping) observeBlockSwitchDistance(command.BlockSwitchDistanceCommand) {}

func (bk *crossCommandBookKeeping) incrementCommandCount() { bk.commandCount++ }

func (bk *crossCommandBookKeeping) setDecodeByteCount(n uint32) { bk.decodeByteCount = n }

func (bk *crossCommandBookKeeping) setLast8Literals(b [8]byte) { bk.last8Literals = b }

// Stride returns the active literal context stride.
func (bk *crossCommandBookKeeping) Stride() uint8 { return bk.stride }

// CommandCount returns the number of commands fully coded so far.
func (bk *crossCommandBookKeeping) CommandCount() uint64 { return bk.commandCount }

// DecodeByteCount returns the number of plain bytes produced/consumed so far.
func (bk *crossCommandBookKeeping) DecodeByteCount() uint32 { return bk.decodeByteCount }

// Last8Literals returns the most recent 8 output bytes, refreshed after
// every command that reaches the PopulateRingBuffer step.
func (bk *crossCommandBookKeeping) Last8Literals() [8]byte { return bk.last8Literals }
