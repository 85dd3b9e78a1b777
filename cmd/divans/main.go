// Command divans compresses and decompresses files using the divans command
// state machine and adaptive entropy coder.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/kylelemons/godebug/pretty"
	"github.com/pkg/errors"

	"github.com/mewkiz/divans/divans"
	"github.com/mewkiz/divans/command"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: divans [encode|decode|inspect] [OPTION]... FILE")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "encode [OPTION]... FILE")
	fmt.Fprintln(os.Stderr, "  Compress FILE to FILE.divans.")
	fmt.Fprintln(os.Stderr, "decode [OPTION]... FILE.divans")
	fmt.Fprintln(os.Stderr, "  Decompress FILE.divans to FILE.")
	fmt.Fprintln(os.Stderr, "inspect FILE.divans")
	fmt.Fprintln(os.Stderr, "  Pretty-print the container header and decoded command trace.")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func main() {
	var (
		skipChecksum bool
		dcm          uint
		force        bool
	)
	flag.BoolVar(&skipChecksum, "skip-checksum", false, "tolerate a mismatched checksum on decode")
	flag.UintVar(&dcm, "dynamic-context-mixing", 0, "dynamic context mixing level (0-15)")
	flag.BoolVar(&force, "f", false, "force overwrite of output files")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 2 {
		usage()
		os.Exit(1)
	}
	subcommand := flag.Arg(0)
	path := flag.Arg(1)

	opts := divans.DefaultOptions()
	opts.SkipChecksum = skipChecksum
	opts.DynamicContextMixing = uint8(dcm)

	var err error
	switch subcommand {
	case "encode":
		err = encodeFile(path, opts, force)
	case "decode":
		err = decodeFile(path, force)
	case "inspect":
		err = inspectFile(path)
	default:
		log.Fatalf("unknown subcommand: %s", subcommand)
	}
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func encodeFile(path string, opts divans.Options, force bool) error {
	in, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()

	outPath := path + ".divans"
	if !force {
		if _, err := os.Stat(outPath); err == nil {
			return errors.Errorf("output file %q already present; use -f to force overwrite", outPath)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer out.Close()

	if err := writeContainer(out, opts); err != nil {
		return errors.Wrap(err, "write container header")
	}

	raw, err := io.ReadAll(bufio.NewReader(in))
	if err != nil {
		return errors.Wrap(err, "read input")
	}

	enc := divans.NewEncoder(opts)
	enc.PushCommand(command.LiteralCommand{Data: raw})
	enc.Finish()

	w := bufio.NewWriter(out)
	if err := driveEncode(enc, w); err != nil {
		return errors.Wrap(err, "encode")
	}
	return errors.WithStack(w.Flush())
}

func decodeFile(path string, force bool) error {
	in, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()
	br := bufio.NewReader(in)

	opts, err := readContainer(br)
	if err != nil {
		return errors.Wrap(err, "read container header")
	}

	outPath := trimDivansExt(path)
	if !force {
		if _, err := os.Stat(outPath); err == nil {
			return errors.Errorf("output file %q already present; use -f to force overwrite", outPath)
		}
	}
	out, err := os.Create(outPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	dec := divans.NewDecoder(opts)
	if err := driveDecode(dec, br, w); err != nil {
		return errors.Wrap(err, "decode")
	}
	return errors.WithStack(w.Flush())
}

func inspectFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer in.Close()
	br := bufio.NewReader(in)

	opts, err := readContainer(br)
	if err != nil {
		return errors.Wrap(err, "read container header")
	}
	pretty.Print(opts)

	dec := divans.NewDecoder(opts)
	var trace []command.Command
	dec.SetCommandObserver(func(cmd command.Command) { trace = append(trace, cmd) })

	if err := driveDecode(dec, br, io.Discard); err != nil {
		return errors.Wrap(err, "decode")
	}
	pretty.Print(trace)
	fmt.Printf("commands: %d\n", dec.CommandCount())
	return nil
}

// trimDivansExt strips a trailing ".divans" extension, matching the
// teacher's pathutil.TrimExt role in cmd/wav2flac/main.go.
func trimDivansExt(path string) string {
	const ext = ".divans"
	if strings.HasSuffix(path, ext) {
		return path[:len(path)-len(ext)]
	}
	return path + ".out"
}
