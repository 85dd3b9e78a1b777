package main

import (
	"bytes"
	"testing"

	"github.com/mewkiz/divans/divans"
)

func TestContainerRoundTrip(t *testing.T) {
	opts := divans.DefaultOptions()
	opts.SkipChecksum = true
	opts.DynamicContextMixing = 7

	var buf bytes.Buffer
	if err := writeContainer(&buf, opts); err != nil {
		t.Fatalf("writeContainer: %v", err)
	}

	got, err := readContainer(&buf)
	if err != nil {
		t.Fatalf("readContainer: %v", err)
	}
	if got.SkipChecksum != opts.SkipChecksum {
		t.Errorf("SkipChecksum = %v, want %v", got.SkipChecksum, opts.SkipChecksum)
	}
	if got.DynamicContextMixing != opts.DynamicContextMixing {
		t.Errorf("DynamicContextMixing = %d, want %d", got.DynamicContextMixing, opts.DynamicContextMixing)
	}
	if got.RingBufferSizeLog2 != opts.RingBufferSizeLog2 {
		t.Errorf("RingBufferSizeLog2 = %d, want %d", got.RingBufferSizeLog2, opts.RingBufferSizeLog2)
	}
}

func TestReadContainerRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBufferString("nope")
	if _, err := readContainer(buf); err == nil {
		t.Fatal("expected an error for a non-divans file")
	}
}
