package worker

import "testing"

func TestDemultiplexerAccumulatesUntilEdit(t *testing.T) {
	var d Demultiplexer
	if got := d.Edit(CmdCoder); got != nil {
		t.Fatalf("got %v, want nil before any write", got)
	}

	d.WriteLinear(CmdCoder, []byte("ab"))
	d.WriteLinear(CmdCoder, []byte("cd"))

	got := d.Edit(CmdCoder)
	if string(got) != "abcd" {
		t.Fatalf("got %q, want %q", got, "abcd")
	}

	// Edit drains the pending buffer; a second call with nothing new
	// written returns nil.
	if got := d.Edit(CmdCoder); got != nil {
		t.Fatalf("got %v, want nil after drain", got)
	}
}

func TestDemultiplexerEOF(t *testing.T) {
	var d Demultiplexer
	if d.EncounteredEOF() {
		t.Fatal("EncounteredEOF true before MarkEOF")
	}
	d.MarkEOF()
	if !d.EncounteredEOF() {
		t.Fatal("EncounteredEOF false after MarkEOF")
	}
}
