package main

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mewkiz/divans/divans"
	"github.com/mewkiz/divans/result"
)

// chunkSize is the scratch buffer size used to drive Encode/Decode; large
// enough that most files finish in a handful of calls without mattering for
// correctness (Encode/Decode are suspend/resume safe at any chunk size).
const chunkSize = 32 * 1024

// driveEncode runs enc to completion, writing compressed bytes to w.
func driveEncode(enc *divans.Codec, w io.Writer) error {
	buf := make([]byte, chunkSize)
	for {
		off := 0
		r := enc.Encode(buf, &off)
		if off > 0 {
			if _, err := w.Write(buf[:off]); err != nil {
				return errors.WithStack(err)
			}
		}
		switch r {
		case result.Success:
			return nil
		case result.NeedsMoreOutput:
			continue
		case result.Failure:
			return errors.Wrap(enc.LastError(), "encoder failure")
		}
	}
}

// driveDecode runs dec to completion, reading compressed bytes from r and
// writing decompressed bytes to w.
func driveDecode(dec *divans.Codec, r io.Reader, w io.Writer) error {
	in := make([]byte, chunkSize)
	out := make([]byte, chunkSize)
	pending := in[:0]
	eof := false

	for {
		if len(pending) == 0 && !eof {
			n, err := r.Read(in)
			if err != nil && err != io.EOF {
				return errors.WithStack(err)
			}
			if err == io.EOF {
				eof = true
			}
			pending = in[:n]
		}

		inOff := 0
		outOff := 0
		res := dec.Decode(pending, &inOff, out, &outOff)
		pending = pending[inOff:]
		if outOff > 0 {
			if _, err := w.Write(out[:outOff]); err != nil {
				return errors.WithStack(err)
			}
		}
		switch res {
		case result.Success:
			return nil
		case result.NeedsMoreOutput:
			continue
		case result.NeedsMoreInput:
			if eof && len(pending) == 0 {
				return errors.New("unexpected end of compressed stream")
			}
			continue
		case result.Failure:
			return errors.Wrap(dec.LastError(), "decoder failure")
		}
	}
}
