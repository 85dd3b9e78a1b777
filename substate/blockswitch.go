package substate

import (
	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/probability"
	"github.com/mewkiz/divans/rangecoder"
	"github.com/mewkiz/divans/result"
)

type blockSwitchStage int

const (
	blockSwitchBegin blockSwitchStage = iota
	blockSwitchType
	blockSwitchStride
	blockSwitchDone
)

// LiteralBlockSwitchState codes a BlockSwitchLiteralCommand: a block-type
// nibble plus a stride nibble (the literal block switch is the only one of
// the three with a stride field).
type LiteralBlockSwitchState struct {
	stage     blockSwitchStage
	typeCDF   probability.FrequentistCDF16
	strideCDF probability.FrequentistCDF16
	Cmd       command.BlockSwitchLiteralCommand
}

// NewLiteralBlockSwitchState returns a ready-to-use LiteralBlockSwitchState.
func NewLiteralBlockSwitchState() LiteralBlockSwitchState {
	return LiteralBlockSwitchState{
		typeCDF:   probability.NewFrequentistCDF16(),
		strideCDF: probability.NewFrequentistCDF16(),
	}
}

// Begin resets the state machine to code a new command.
func (s *LiteralBlockSwitchState) Begin() {
	s.stage = blockSwitchBegin
	s.Cmd = command.BlockSwitchLiteralCommand{}
}

// EncodeOrDecode drives one resumable step, mirroring LiteralState's contract.
func (s *LiteralBlockSwitchState) EncodeOrDecode(coder *rangecoder.Coder, encoding bool) result.Result {
	if s.stage == blockSwitchBegin {
		s.stage = blockSwitchType
	}
	if s.stage == blockSwitchType {
		n := s.Cmd.BlockType
		if r := coder.GetOrPutNibble(&n, &s.typeCDF); r != result.Success {
			return r
		}
		s.typeCDF.Blend(int(n), probability.Med)
		if !encoding {
			s.Cmd.BlockType = n
		}
		s.stage = blockSwitchStride
	}
	if s.stage == blockSwitchStride {
		n := s.Cmd.Stride
		if r := coder.GetOrPutNibble(&n, &s.strideCDF); r != result.Success {
			return r
		}
		s.strideCDF.Blend(int(n), probability.Med)
		if !encoding {
			s.Cmd.Stride = n
		}
		s.stage = blockSwitchDone
	}
	return result.Success
}

// blockTypeKind selects which of a codec's three block-type models (command
// or distance) a BlockTypeState instance is coding, matching the original
// design's single BlockTypeState type reused for both with a selector
// constant (BLOCK_TYPE_COMMAND_SWITCH / BLOCK_TYPE_DISTANCE_SWITCH).
type blockTypeKind int

const (
	// BlockTypeCommandSwitch selects the command-type block model.
	BlockTypeCommandSwitch blockTypeKind = iota
	// BlockTypeDistanceSwitch selects the distance block model.
	BlockTypeDistanceSwitch
)

// BlockTypeState codes a plain block-type nibble, shared by
// BlockSwitchCommandCommand and BlockSwitchDistanceCommand (neither carries
// a stride field, unlike the literal flavor).
type BlockTypeState struct {
	stage   blockSwitchStage
	typeCDF probability.FrequentistCDF16
	kind    blockTypeKind
	// cmdBlockType and distBlockType hold whichever field kind selects;
	// only one is meaningful per instance's lifetime.
	cmdBlockType  command.BlockSwitchCommandCommand
	distBlockType command.BlockSwitchDistanceCommand
}

// NewBlockTypeState returns a BlockTypeState coding the given kind of
// block-type switch.
func NewBlockTypeState(kind blockTypeKind) BlockTypeState {
	return BlockTypeState{typeCDF: probability.NewFrequentistCDF16(), kind: kind}
}

// Begin resets the state machine to code a new command.
func (s *BlockTypeState) Begin() {
	s.stage = blockSwitchBegin
	s.cmdBlockType = command.BlockSwitchCommandCommand{}
	s.distBlockType = command.BlockSwitchDistanceCommand{}
}

// Command returns the decoded/source command for whichever kind this
// instance codes.
func (s *BlockTypeState) Command() command.Command {
	if s.kind == BlockTypeCommandSwitch {
		return s.cmdBlockType
	}
	return s.distBlockType
}

// SetSourceCommand installs the command to encode, before the first
// EncodeOrDecode call.
func (s *BlockTypeState) SetSourceCommand(cmd command.Command) {
	switch c := cmd.(type) {
	case command.BlockSwitchCommandCommand:
		s.cmdBlockType = c
	case command.BlockSwitchDistanceCommand:
		s.distBlockType = c
	}
}

// EncodeOrDecode drives one resumable step, mirroring LiteralState's contract.
func (s *BlockTypeState) EncodeOrDecode(coder *rangecoder.Coder, encoding bool) result.Result {
	if s.stage == blockSwitchBegin {
		s.stage = blockSwitchType
	}
	var n uint8
	if encoding {
		if s.kind == BlockTypeCommandSwitch {
			n = s.cmdBlockType.BlockType
		} else {
			n = s.distBlockType.BlockType
		}
	}
	if r := coder.GetOrPutNibble(&n, &s.typeCDF); r != result.Success {
		return r
	}
	s.typeCDF.Blend(int(n), probability.Med)
	if !encoding {
		if s.kind == BlockTypeCommandSwitch {
			s.cmdBlockType.BlockType = n
		} else {
			s.distBlockType.BlockType = n
		}
	}
	s.stage = blockSwitchDone
	return result.Success
}
