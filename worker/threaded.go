package worker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mewkiz/pkg/errutil"

	"github.com/mewkiz/divans/command"
	"github.com/mewkiz/divans/divans"
	"github.com/mewkiz/divans/result"
)

// CommandResult is the worker goroutine's message to the main thread:
// either a chunk of decompressed output bytes, a notification that a
// command finished decoding, or the end-of-stream marker.
//
// In the original, the worker goroutine decodes commands but leaves
// applying them to the ring buffer for the main thread to do, so Cmd there
// carries an owned, not-yet-applied command.Command. This port's
// divans.Codec fuses command decoding with ring-buffer application into a
// single resumable step (see divans/codec.go's populateRingBuffer), so by
// the time Cmd fires here the bytes are already in Data — Cmd is kept as an
// observability hook (an inspector can log it) rather than work the main
// thread still has to perform.
type CommandResult struct {
	Eof  bool
	Data []byte
	Cmd  command.Command
}

// ThreadedDecoder runs a divans.Codec decode loop on its own goroutine,
// decoupling the caller's Push/Pull calls from the arithmetic coder's own
// pace. Compressed bytes flow in through Push, CommandResults flow out
// through Pull.
type ThreadedDecoder struct {
	codec *divans.Codec
	demux Demultiplexer

	pushCh   chan []byte
	resultCh chan CommandResult

	group  *errgroup.Group
	cancel context.CancelFunc
}

// NewThreadedDecoder starts the worker goroutine and returns a decoder
// ready for Push/Pull.
func NewThreadedDecoder(opts divans.Options) *ThreadedDecoder {
	ctx, cancel := context.WithCancel(context.Background())
	group, gctx := errgroup.WithContext(ctx)

	t := &ThreadedDecoder{
		codec:    divans.NewDecoder(opts),
		pushCh:   make(chan []byte, 4),
		resultCh: make(chan CommandResult, 4),
		group:    group,
		cancel:   cancel,
	}
	t.codec.SetCommandObserver(func(cmd command.Command) {
		t.send(gctx, CommandResult{Cmd: cmd})
	})
	group.Go(func() error { return t.run(gctx) })
	return t
}

// Push feeds compressed input bytes to the worker. Safe to call repeatedly;
// call Finish once no more input will arrive.
func (t *ThreadedDecoder) Push(data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	t.pushCh <- cp
}

// Finish signals that no further Push calls will be made.
func (t *ThreadedDecoder) Finish() { close(t.pushCh) }

// Pull returns the next CommandResult, blocking until one is available.
// Once a CommandResult with Eof set is returned, no further results will
// arrive; Pull also returns one with Eof set once the worker has exited.
func (t *ThreadedDecoder) Pull() CommandResult {
	r, ok := <-t.resultCh
	if !ok {
		return CommandResult{Eof: true}
	}
	return r
}

// Wait blocks until the worker goroutine exits, returning any decode error
// (the same value divans.Codec.LastError would report).
func (t *ThreadedDecoder) Wait() error {
	err := t.group.Wait()
	t.cancel()
	return err
}

func (t *ThreadedDecoder) send(ctx context.Context, r CommandResult) bool {
	select {
	case t.resultCh <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// run is the worker goroutine's body: demultiplex pushed bytes, feed them
// to the codec, and forward each produced output chunk and the terminal
// Eof notification.
func (t *ThreadedDecoder) run(ctx context.Context) error {
	defer close(t.resultCh)
	scratch := make([]byte, 32*1024)
	pushClosed := false

	for {
		if !pushClosed {
			select {
			case chunk, ok := <-t.pushCh:
				if !ok {
					pushClosed = true
					t.demux.MarkEOF()
				} else {
					t.demux.WriteLinear(CmdCoder, chunk)
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		data := t.demux.Edit(CmdCoder)
		if data == nil {
			if pushClosed {
				return errutil.Newf("worker: input exhausted before decode reached end of stream")
			}
			continue
		}

		inOff := 0
	readLoop:
		for {
			outOff := 0
			r := t.codec.Decode(data, &inOff, scratch, &outOff)
			if outOff > 0 {
				out := make([]byte, outOff)
				copy(out, scratch[:outOff])
				if !t.send(ctx, CommandResult{Data: out}) {
					return ctx.Err()
				}
			}
			switch r {
			case result.Success:
				t.send(ctx, CommandResult{Eof: true})
				return nil
			case result.Failure:
				return t.codec.LastError()
			case result.NeedsMoreOutput:
				continue readLoop
			case result.NeedsMoreInput:
				if inOff < len(data) {
					// Shouldn't happen (Decode only returns NeedsMoreInput
					// once it has consumed everything offered), but keep
					// any unread tail buffered rather than drop it.
					t.demux.WriteLinear(CmdCoder, data[inOff:])
				}
				break readLoop
			}
		}
	}
}
