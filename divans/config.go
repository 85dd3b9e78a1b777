package divans

import (
	"github.com/mewkiz/divans/probability"
	"github.com/mewkiz/divans/recoder"
)

// StrideSelection controls how many prior output bytes feed the literal
// context model: Auto lets the codec take the stride carried by each
// BlockSwitchLiteral command, Explicit pins it to a fixed width for the
// whole stream.
type StrideSelection struct {
	Auto     bool
	Explicit uint8 // 1..8, meaningful only when Auto is false
}

// AutoStride requests the codec's own stride heuristic.
func AutoStride() StrideSelection { return StrideSelection{Auto: true} }

// FixedStride pins the literal context stride to n (1..8).
func FixedStride(n uint8) StrideSelection { return StrideSelection{Explicit: n} }

// Options configures a Codec at construction, matching the core's
// external-interface contract: every option is read once, at New, and
// never changes for the lifetime of the instance.
type Options struct {
	// RingBufferSizeLog2 is log2 of the recoder's ring buffer size in
	// bytes.
	RingBufferSizeLog2 uint
	// DynamicContextMixing is 0..15; values above 0 enable mixed-context
	// literal modeling.
	DynamicContextMixing uint8
	// PriorDepth optionally overrides the literal prior depth; 0 means
	// "use the default".
	PriorDepth uint8
	// LiteralAdaptationRate optionally overrides the per-context-class
	// Speed used when blending literal byte models.
	LiteralAdaptationRate *[4]probability.Speed
	// DoContextMap enables per-literal context map encoding.
	DoContextMap bool
	// ForceStride overrides automatic stride selection.
	ForceStride StrideSelection
	// SkipChecksum tolerates a mismatched CRC on decode, but still
	// enforces the literal "ans~" magic at trailer positions 4..7.
	SkipChecksum bool
	// Dictionary resolves DictCommand word/transform references; nil
	// means decoding any DictCommand fails.
	Dictionary recoder.Dictionary
}

// DefaultOptions returns reasonable defaults: a 1MiB ring buffer, no
// dynamic context mixing, automatic stride, and checksum enforcement on.
func DefaultOptions() Options {
	return Options{
		RingBufferSizeLog2: 20,
		ForceStride:        AutoStride(),
	}
}
