package substate

import (
	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/rangecoder"
	"github.com/mewkiz/divans/result"
)

type copyStage int

const (
	copyBegin copyStage = iota
	copyDistance
	copyLength
	copyDone
)

// CopyState codes a CopyCommand: a distance then a length, each a varint.
type CopyState struct {
	stage    copyStage
	distance varint
	length   varint
	Cmd      command.CopyCommand
}

// NewCopyState returns a CopyState ready to code its first command.
func NewCopyState() CopyState {
	return CopyState{distance: newVarint(), length: newVarint()}
}

// Begin resets the state machine to code a new command.
func (s *CopyState) Begin() {
	s.stage = copyBegin
	s.Cmd = command.CopyCommand{}
}

// EncodeOrDecode drives one resumable step, mirroring LiteralState's contract.
func (s *CopyState) EncodeOrDecode(coder *rangecoder.Coder, encoding bool) result.Result {
	if s.stage == copyBegin {
		s.stage = copyDistance
	}
	if s.stage == copyDistance {
		if encoding {
			s.distance.value = s.Cmd.Distance
		}
		if r := s.distance.code(coder, encoding); r != result.Success {
			return r
		}
		if !encoding {
			s.Cmd.Distance = s.distance.value
		}
		s.stage = copyLength
	}
	if s.stage == copyLength {
		if encoding {
			s.length.value = s.Cmd.Length
		}
		if r := s.length.code(coder, encoding); r != result.Success {
			return r
		}
		if !encoding {
			s.Cmd.Length = s.length.value
		}
		s.stage = copyDone
	}
	return result.Success
}
