// Package worker implements the threaded decoder variant: a worker
// goroutine runs a whole divans.Codec decoder (arithmetic coder, command
// state machine, ring buffer and CRC digest) while the calling goroutine
// only pushes compressed bytes in and pulls results out.
package worker

import "sync"

// StreamID identifies one of a Demultiplexer's independently buffered byte
// streams. The original's StreamDemuxer generalizes over several
// interleaved streams; this port only ever decodes one (the command
// coder's byte stream), so CmdCoder is the only value in use.
type StreamID uint8

// CmdCoder is the (only) stream this port's Demultiplexer carries.
const CmdCoder StreamID = 0

// Demultiplexer buffers compressed input bytes pushed from the main thread
// until the worker goroutine claims them with Edit. It is the Go
// counterpart of the original's StreamDemuxer, narrowed to a single stream.
type Demultiplexer struct {
	mu      sync.Mutex
	pending []byte
	eof     bool
}

// WriteLinear appends data to the pending buffer for stream id and reports
// how many bytes were accepted (always all of them: this port doesn't cap
// the pending buffer's size, unlike the original's fixed-capacity ring).
func (d *Demultiplexer) WriteLinear(id StreamID, data []byte) (consumed int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(d.pending, data...)
	return len(data)
}

// Edit hands the worker goroutine everything buffered for id so far,
// resetting the pending buffer. A nil/empty return means nothing is
// available yet.
func (d *Demultiplexer) Edit(id StreamID) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return nil
	}
	out := d.pending
	d.pending = nil
	return out
}

// MarkEOF records that the main thread will push no further input.
func (d *Demultiplexer) MarkEOF() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eof = true
}

// EncounteredEOF reports whether MarkEOF has been called.
func (d *Demultiplexer) EncounteredEOF() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.eof
}
