package substate

import (
	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/probability"
	"github.com/mewkiz/divans/rangecoder"
	"github.com/mewkiz/divans/result"
)

type predictionModeStage int

const (
	predictionModeBegin predictionModeStage = iota
	predictionModeMode
	predictionModeLiteralMapLen
	predictionModeLiteralMapBytes
	predictionModeSpeedMapLen
	predictionModeSpeedMapBytes
	predictionModeStrideMapLen
	predictionModeStrideMapBytes
	predictionModeDone
)

// PredictionModeState codes a PredictionModeCommand: a mode nibble followed
// by three variable-length context maps (literal context, prediction
// speed, stride), each coded as a varint length then that many raw bytes.
type PredictionModeState struct {
	stage       predictionModeStage
	modeCDF     probability.FrequentistCDF16
	litLen      varint
	litBytes    byteCoder
	speedLen    varint
	speedBytes  byteCoder
	strideLen   varint
	strideBytes byteCoder
	Cmd         command.PredictionModeCommand
}

// NewPredictionModeState returns a ready-to-use PredictionModeState.
func NewPredictionModeState() PredictionModeState {
	return PredictionModeState{
		modeCDF:     probability.NewFrequentistCDF16(),
		litLen:      newVarint(),
		litBytes:    newByteCoder(),
		speedLen:    newVarint(),
		speedBytes:  newByteCoder(),
		strideLen:   newVarint(),
		strideBytes: newByteCoder(),
	}
}

// Begin resets the state machine to code a new command.
func (s *PredictionModeState) Begin() {
	s.stage = predictionModeBegin
	s.Cmd = command.PredictionModeCommand{}
}

func codeByteSlice(coder *rangecoder.Coder, encoding bool, length *varint, bytes *byteCoder, slice *[]byte, lengthDone, bytesDone predictionModeStage, s *PredictionModeState) (result.Result, bool) {
	if s.stage < lengthDone {
		if encoding {
			length.value = uint32(len(*slice))
		}
		if r := length.code(coder, encoding); r != result.Success {
			return r, false
		}
		if !encoding {
			*slice = make([]byte, length.value)
		}
		s.stage = lengthDone
	}
	if s.stage < bytesDone {
		if r := bytes.codeRun(coder, encoding, *slice, uint32(len(*slice))); r != result.Success {
			return r, false
		}
		s.stage = bytesDone
	}
	return result.Success, true
}

// EncodeOrDecode drives one resumable step, mirroring LiteralState's contract.
func (s *PredictionModeState) EncodeOrDecode(coder *rangecoder.Coder, encoding bool) result.Result {
	if s.stage == predictionModeBegin {
		s.stage = predictionModeMode
	}
	if s.stage == predictionModeMode {
		n := s.Cmd.PredictionMode
		if r := coder.GetOrPutNibble(&n, &s.modeCDF); r != result.Success {
			return r
		}
		s.modeCDF.Blend(int(n), probability.Med)
		if !encoding {
			s.Cmd.PredictionMode = n
		}
		s.stage = predictionModeLiteralMapLen
	}
	if r, ok := codeByteSlice(coder, encoding, &s.litLen, &s.litBytes, &s.Cmd.LiteralContextMap,
		predictionModeLiteralMapBytes, predictionModeSpeedMapLen, s); !ok {
		return r
	}
	if r, ok := codeByteSlice(coder, encoding, &s.speedLen, &s.speedBytes, &s.Cmd.PredictionSpeedMap,
		predictionModeSpeedMapBytes, predictionModeStrideMapLen, s); !ok {
		return r
	}
	if r, ok := codeByteSlice(coder, encoding, &s.strideLen, &s.strideBytes, &s.Cmd.StrideContextMap,
		predictionModeStrideMapBytes, predictionModeDone, s); !ok {
		return r
	}
	return result.Success
}
