package main

import (
	"bytes"
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"

	"github.com/mewkiz/divans/divans"
)

// containerMagic identifies a divans container file, mirroring the role
// flacSignature plays at the front of a FLAC stream.
var containerMagic = [4]byte{'D', 'V', 'A', 'N'}

const containerVersion = 1

// writeContainer writes the fixed preamble ahead of a compressed divans
// stream: magic, format version, and enough of Options to reconstruct a
// matching Options on decode. Like the teacher's Encode, it builds the
// header in a byte buffer via a bitio.Writer and closes that writer (to
// flush any pending bits) before copying the buffer to w, so w itself is
// never closed out from under the caller.
func writeContainer(w io.Writer, opts divans.Options) error {
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)

	if _, err := bw.Write(containerMagic[:]); err != nil {
		return errors.Wrap(err, "write container magic")
	}
	if err := bw.WriteByte(containerVersion); err != nil {
		return errors.Wrap(err, "write container version")
	}

	var flags byte
	if opts.SkipChecksum {
		flags |= 0x1
	}
	if err := bw.WriteByte(flags); err != nil {
		return errors.Wrap(err, "write container flags")
	}
	if err := bw.WriteBits(uint64(opts.DynamicContextMixing), 8); err != nil {
		return errors.Wrap(err, "write dynamic context mixing level")
	}
	if err := bw.WriteBits(uint64(opts.RingBufferSizeLog2), 8); err != nil {
		return errors.Wrap(err, "write ring buffer size")
	}

	if err := bw.Close(); err != nil {
		return errors.Wrap(err, "flush container header")
	}
	if _, err := io.Copy(w, buf); err != nil {
		return errors.Wrap(err, "copy container header")
	}
	return nil
}

// readContainer reads and validates the preamble writeContainer wrote,
// returning an Options seeded from it (every other field keeps
// divans.DefaultOptions's value, since the container doesn't round-trip
// PriorDepth/LiteralAdaptationRate/DoContextMap/ForceStride/Dictionary, and
// the decode subcommand takes no flags that set them).
func readContainer(r io.Reader) (divans.Options, error) {
	br := bitio.NewReader(r)
	opts := divans.DefaultOptions()

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return opts, errors.Wrap(err, "read container magic")
	}
	if magic != containerMagic {
		return opts, errors.Errorf("not a divans container: bad magic %q", magic)
	}

	version, err := br.ReadByte()
	if err != nil {
		return opts, errors.Wrap(err, "read container version")
	}
	if version != containerVersion {
		return opts, errors.Errorf("unsupported divans container version %d", version)
	}

	flags, err := br.ReadByte()
	if err != nil {
		return opts, errors.Wrap(err, "read container flags")
	}
	opts.SkipChecksum = flags&0x1 != 0

	dcm, err := br.ReadBits(8)
	if err != nil {
		return opts, errors.Wrap(err, "read dynamic context mixing level")
	}
	opts.DynamicContextMixing = uint8(dcm)

	ring, err := br.ReadBits(8)
	if err != nil {
		return opts, errors.Wrap(err, "read ring buffer size")
	}
	opts.RingBufferSizeLog2 = uint(ring)

	return opts, nil
}
