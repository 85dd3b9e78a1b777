package divans

// encodeOrDecodeState is the command state machine's top-level cursor. It
// mirrors the original design's single enum with one payload-carrying
// variant (WriteChecksum); Go can't attach a payload to an enum value
// directly, so the checksum byte cursor lives in Codec.checksumCount and is
// only meaningful while state == stateWriteChecksum.
type encodeOrDecodeState int

const (
	stateBegin encodeOrDecodeState = iota
	stateLiteral
	stateDict
	stateCopy
	stateBlockSwitchLiteral
	stateBlockSwitchCommand
	stateBlockSwitchDistance
	statePredictionMode
	statePopulateRingBuffer
	stateDivansSuccess
	stateEncodedShutdownNode
	stateShutdownCoder
	stateCoderBufferDrain
	stateWriteChecksum
)

func (s encodeOrDecodeState) String() string {
	switch s {
	case stateBegin:
		return "Begin"
	case stateLiteral:
		return "Literal"
	case stateDict:
		return "Dict"
	case stateCopy:
		return "Copy"
	case stateBlockSwitchLiteral:
		return "BlockSwitchLiteral"
	case stateBlockSwitchCommand:
		return "BlockSwitchCommand"
	case stateBlockSwitchDistance:
		return "BlockSwitchDistance"
	case statePredictionMode:
		return "PredictionMode"
	case statePopulateRingBuffer:
		return "PopulateRingBuffer"
	case stateDivansSuccess:
		return "DivansSuccess"
	case stateEncodedShutdownNode:
		return "EncodedShutdownNode"
	case stateShutdownCoder:
		return "ShutdownCoder"
	case stateCoderBufferDrain:
		return "CoderBufferDrain"
	case stateWriteChecksum:
		return "WriteChecksum"
	default:
		return "?"
	}
}
