package substate

import (
	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/probability"
	"github.com/mewkiz/divans/rangecoder"
	"github.com/mewkiz/divans/result"
)

type dictStage int

const (
	dictBegin dictStage = iota
	dictWordID
	dictWordLength
	dictTransform
	dictFinalSize
	dictDone
)

// DictState codes a DictCommand: a word ID and word length varint, a
// transform ID nibble, and a final-size varint (the decompressed size after
// the transform is applied, which may differ from the raw dictionary
// entry's length).
type DictState struct {
	stage       dictStage
	wordID      varint
	wordLength  varint
	transformID probability.FrequentistCDF16
	finalSize   varint
	Cmd         command.DictCommand
}

// NewDictState returns a DictState ready to code its first command.
func NewDictState() DictState {
	return DictState{
		wordID:      newVarint(),
		wordLength:  newVarint(),
		transformID: probability.NewFrequentistCDF16(),
		finalSize:   newVarint(),
	}
}

// Begin resets the state machine to code a new command.
func (s *DictState) Begin() {
	s.stage = dictBegin
	s.Cmd = command.DictCommand{}
}

// EncodeOrDecode drives one resumable step, mirroring LiteralState's contract.
func (s *DictState) EncodeOrDecode(coder *rangecoder.Coder, encoding bool) result.Result {
	if s.stage == dictBegin {
		s.stage = dictWordID
	}
	if s.stage == dictWordID {
		if encoding {
			s.wordID.value = s.Cmd.WordID
		}
		if r := s.wordID.code(coder, encoding); r != result.Success {
			return r
		}
		if !encoding {
			s.Cmd.WordID = s.wordID.value
		}
		s.stage = dictWordLength
	}
	if s.stage == dictWordLength {
		if encoding {
			s.wordLength.value = uint32(s.Cmd.WordLength)
		}
		if r := s.wordLength.code(coder, encoding); r != result.Success {
			return r
		}
		if !encoding {
			s.Cmd.WordLength = uint8(s.wordLength.value)
		}
		s.stage = dictTransform
	}
	if s.stage == dictTransform {
		n := s.Cmd.TransformID
		if r := coder.GetOrPutNibble(&n, &s.transformID); r != result.Success {
			return r
		}
		s.transformID.Blend(int(n), probability.Med)
		if !encoding {
			s.Cmd.TransformID = n
		}
		s.stage = dictFinalSize
	}
	if s.stage == dictFinalSize {
		if encoding {
			s.finalSize.value = s.Cmd.FinalSize
		}
		if r := s.finalSize.code(coder, encoding); r != result.Success {
			return r
		}
		if !encoding {
			s.Cmd.FinalSize = s.finalSize.value
		}
		s.stage = dictDone
	}
	return result.Success
}
