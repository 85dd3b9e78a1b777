package recoder

import (
	"bytes"
	"testing"

	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/result"
)

func TestEncodeLiteralThenCopy(t *testing.T) {
	r := New(16, nil)
	out := make([]byte, 64)
	off := 0

	lit := command.LiteralCommand{Data: []byte("hello")}
	if res := r.EncodeCmd(lit, out, &off); res.IsSuspension() {
		t.Fatalf("unexpected suspension: %v", res)
	}

	cp := command.CopyCommand{Distance: 5, Length: 5}
	if res := r.EncodeCmd(cp, out, &off); res.IsSuspension() {
		t.Fatalf("unexpected suspension: %v", res)
	}

	want := "hellohello"
	if got := string(out[:off]); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestEncodeCopyInvalidDistanceFails(t *testing.T) {
	r := New(4, nil)
	out := make([]byte, 16)
	off := 0
	cp := command.CopyCommand{Distance: 1, Length: 1}
	if res := r.EncodeCmd(cp, out, &off); res != result.Failure {
		t.Fatalf("expected Failure copying with no history, got %v", res)
	}
}

func TestEncodeResumesAcrossSmallOutputBuffers(t *testing.T) {
	r := New(16, nil)
	lit := command.LiteralCommand{Data: []byte("0123456789")}
	var got bytes.Buffer
	scratch := make([]byte, 3)
	for {
		off := 0
		res := r.EncodeCmd(lit, scratch, &off)
		got.Write(scratch[:off])
		if !res.IsSuspension() {
			break
		}
	}
	if got.String() != "0123456789" {
		t.Fatalf("got %q", got.String())
	}
}

func TestLast8Literals(t *testing.T) {
	r := New(16, nil)
	out := make([]byte, 32)
	off := 0
	r.EncodeCmd(command.LiteralCommand{Data: []byte("abc")}, out, &off)
	last := r.Last8Literals()
	want := [8]byte{0, 0, 0, 0, 0, 'a', 'b', 'c'}
	if last != want {
		t.Fatalf("got %v, want %v", last, want)
	}
}

func TestDictLookup(t *testing.T) {
	dict := NewStaticDictionary(map[uint32][]byte{7: []byte("dictword")})
	r := New(16, dict)
	out := make([]byte, 32)
	off := 0
	dc := command.DictCommand{WordID: 7, TransformID: 0}
	if res := r.EncodeCmd(dc, out, &off); res.IsSuspension() {
		t.Fatalf("unexpected suspension: %v", res)
	}
	if string(out[:off]) != "dictword" {
		t.Fatalf("got %q", out[:off])
	}
}

func TestDictLookupMissingFails(t *testing.T) {
	dict := NewStaticDictionary(nil)
	r := New(16, dict)
	out := make([]byte, 32)
	off := 0
	dc := command.DictCommand{WordID: 99}
	if res := r.EncodeCmd(dc, out, &off); res != result.Failure {
		t.Fatalf("expected Failure, got %v", res)
	}
}
