package substate

import (
	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/rangecoder"
	"github.com/mewkiz/divans/result"
)

// literalStage enumerates LiteralState's resumable steps.
type literalStage int

const (
	literalBegin literalStage = iota
	literalHighEntropy
	literalLength
	literalBytes
	literalDone
)

// LiteralState codes a LiteralCommand: a high-entropy flag, a varint byte
// count, and the raw bytes themselves.
type LiteralState struct {
	stage  literalStage
	flag   bitCDF
	length varint
	bytes  byteCoder
	Cmd    command.LiteralCommand
}

// NewLiteralState returns a LiteralState ready to code its first command.
func NewLiteralState() LiteralState {
	return LiteralState{
		flag:   newBitCDF(),
		length: newVarint(),
		bytes:  newByteCoder(),
	}
}

// Begin resets the state machine to code a new command, discarding any
// previously completed Cmd.
func (s *LiteralState) Begin() {
	s.stage = literalBegin
	s.Cmd = command.LiteralCommand{}
}

// EncodeOrDecode drives one resumable step. On encode, s.Cmd must be set by
// the caller before the first call. On decode, s.Cmd is populated as
// decoding proceeds and is complete once Success is returned.
func (s *LiteralState) EncodeOrDecode(coder *rangecoder.Coder, encoding bool) result.Result {
	if s.stage == literalBegin {
		s.stage = literalHighEntropy
	}
	if s.stage == literalHighEntropy {
		if r := s.flag.code(coder, encoding, &s.Cmd.HighEntropy); r != result.Success {
			return r
		}
		s.stage = literalLength
	}
	if s.stage == literalLength {
		if encoding {
			s.length.value = uint32(len(s.Cmd.Data))
		}
		if r := s.length.code(coder, encoding); r != result.Success {
			return r
		}
		if !encoding {
			s.Cmd.Data = make([]byte, s.length.value)
		}
		s.stage = literalBytes
	}
	if s.stage == literalBytes {
		if r := s.bytes.codeRun(coder, encoding, s.Cmd.Data, uint32(len(s.Cmd.Data))); r != result.Success {
			return r
		}
		s.stage = literalDone
	}
	return result.Success
}
