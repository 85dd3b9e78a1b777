package divans

import (
	"bytes"
	"testing"

	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/result"
)

// driveEncode drives enc against a small scratch buffer until it returns
// something other than NeedsMoreOutput, collecting the compressed bytes;
// driveDecode does the same for a decoder, feeding compressed in small
// chunks and collecting the plain bytes.
func driveEncode(t *testing.T, enc *Codec) []byte {
	t.Helper()
	var compressed bytes.Buffer
	scratch := make([]byte, 7)
	for {
		off := 0
		r := enc.Encode(scratch, &off)
		compressed.Write(scratch[:off])
		switch r {
		case result.Success:
			return compressed.Bytes()
		case result.NeedsMoreOutput:
			continue
		default:
			t.Fatalf("encode returned %v: %v", r, enc.LastError())
		}
	}
}

func driveDecode(t *testing.T, dec *Codec, compressed []byte) []byte {
	t.Helper()
	var plain bytes.Buffer
	inPos := 0
	outScratch := make([]byte, 5)
	for {
		inOff := 0
		end := inPos + 3
		if end > len(compressed) {
			end = len(compressed)
		}
		outOff := 0
		r := dec.Decode(compressed[inPos:end], &inOff, outScratch, &outOff)
		inPos += inOff
		plain.Write(outScratch[:outOff])
		switch r {
		case result.Success:
			return plain.Bytes()
		case result.NeedsMoreInput:
			if inOff == 0 && inPos >= len(compressed) {
				t.Fatal("decoder starved for input")
			}
			continue
		case result.NeedsMoreOutput:
			continue
		default:
			t.Fatalf("decode returned %v: %v", r, dec.LastError())
		}
	}
}

func pushSampleStream(enc *Codec) {
	enc.PushCommand(command.PredictionModeCommand{PredictionMode: 1})
	enc.PushCommand(command.BlockSwitchLiteralCommand{BlockType: 1, Stride: 1})
	enc.PushCommand(command.LiteralCommand{Data: []byte("hello ")})
	enc.PushCommand(command.BlockSwitchCommandCommand{BlockType: 2})
	enc.PushCommand(command.CopyCommand{Distance: 6, Length: 6})
	enc.PushCommand(command.BlockSwitchDistanceCommand{BlockType: 3})
	enc.PushCommand(command.LiteralCommand{Data: []byte("world")})
	enc.Finish()
}

func TestRoundTripBasicStream(t *testing.T) {
	opts := DefaultOptions()
	enc := NewEncoder(opts)
	pushSampleStream(enc)
	compressed := driveEncode(t, enc)

	dec := NewDecoder(opts)
	plain := driveDecode(t, dec, compressed)

	want := "hello hello world"
	if string(plain) != want {
		t.Fatalf("got %q, want %q", plain, want)
	}
	if dec.CommandCount() == 0 {
		t.Fatal("expected a nonzero command count")
	}
}

func TestRoundTripEmptyStream(t *testing.T) {
	opts := DefaultOptions()
	enc := NewEncoder(opts)
	enc.Finish()
	compressed := driveEncode(t, enc)

	dec := NewDecoder(opts)
	plain := driveDecode(t, dec, compressed)
	if len(plain) != 0 {
		t.Fatalf("got %q, want empty", plain)
	}
}

func TestRoundTripSingleByte(t *testing.T) {
	opts := DefaultOptions()
	enc := NewEncoder(opts)
	enc.PushCommand(command.LiteralCommand{Data: []byte("A")})
	enc.Finish()
	compressed := driveEncode(t, enc)

	// The trailer is the fixed magic "ans~" following 4 CRC bytes.
	if !bytes.Equal(compressed[len(compressed)-4:], []byte("ans~")) {
		t.Fatalf("trailer magic missing: %x", compressed)
	}

	dec := NewDecoder(opts)
	plain := driveDecode(t, dec, compressed)
	if string(plain) != "A" {
		t.Fatalf("got %q", plain)
	}
}

func TestChecksumMismatchFails(t *testing.T) {
	opts := DefaultOptions()
	enc := NewEncoder(opts)
	enc.PushCommand(command.LiteralCommand{Data: []byte("corruption target")})
	enc.Finish()
	compressed := driveEncode(t, enc)

	corrupt := append([]byte(nil), compressed...)
	corrupt[len(corrupt)-1] ^= 0xff // flip a bit in the "ans~" magic

	dec := NewDecoder(opts)
	_, _, _, lastErr := decodeExpectFailure(t, dec, corrupt)
	if lastErr == nil {
		t.Fatal("expected a checksum failure")
	}
}

func TestSkipChecksumTolerantOfCRCMismatchOnly(t *testing.T) {
	opts := DefaultOptions()
	opts.SkipChecksum = true
	enc := NewEncoder(opts)
	enc.PushCommand(command.LiteralCommand{Data: []byte("tolerant")})
	enc.Finish()
	compressed := driveEncode(t, enc)

	corruptCRC := append([]byte(nil), compressed...)
	corruptCRC[len(corruptCRC)-8] ^= 0xff // a CRC byte, not the magic

	dec := NewDecoder(opts)
	plain := driveDecode(t, dec, corruptCRC)
	if string(plain) != "tolerant" {
		t.Fatalf("got %q", plain)
	}

	corruptMagic := append([]byte(nil), compressed...)
	corruptMagic[len(corruptMagic)-1] ^= 0xff // byte 7, always fatal
	dec2 := NewDecoder(opts)
	_, _, _, lastErr := decodeExpectFailure(t, dec2, corruptMagic)
	if lastErr == nil {
		t.Fatal("expected the magic mismatch to be fatal even with SkipChecksum")
	}
}

// decodeExpectFailure drives dec until it returns result.Failure, returning
// whatever partial plain bytes were produced and the codec's LastError.
func decodeExpectFailure(t *testing.T, dec *Codec, compressed []byte) (plain []byte, _ int, _ int, lastErr error) {
	t.Helper()
	var buf bytes.Buffer
	inPos := 0
	outScratch := make([]byte, 5)
	for i := 0; i < 10000; i++ {
		inOff := 0
		end := inPos + 3
		if end > len(compressed) {
			end = len(compressed)
		}
		outOff := 0
		r := dec.Decode(compressed[inPos:end], &inOff, outScratch, &outOff)
		inPos += inOff
		buf.Write(outScratch[:outOff])
		if r == result.Failure {
			return buf.Bytes(), 0, 0, dec.LastError()
		}
		if r == result.Success {
			return buf.Bytes(), 0, 0, nil
		}
		if inOff == 0 && inPos >= len(compressed) && r == result.NeedsMoreInput {
			t.Fatal("decoder starved without failing")
		}
	}
	t.Fatal("decodeExpectFailure: too many iterations")
	return nil, 0, 0, nil
}
