// Command lzma2dec decodes an LZMA2 stream (a property byte followed by
// chunks) from a file or standard input, and writes the reconstructed
// bytes to standard output or a named file.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ogier/pflag"

	"github.com/ascheglov/lzma2/lzma"
	"github.com/ascheglov/lzma2/lzma2"
)

const usageStr = `Usage: lzma2dec [OPTION]... [FILE]
Decode an LZMA2 stream from FILE, or standard input if FILE is - or absent,
and write the reconstructed bytes to standard output or -o FILE.

  -o, --output FILE   write output to FILE instead of standard output
  -v, --verbose        trace chunk-framing transitions on standard error
      --finish-end     assert the stream ends exactly at end of input
  -h, --help           show this help
`

func usage(w io.Writer) {
	fmt.Fprint(w, usageStr)
}

func main() {
	cmdName := filepath.Base(os.Args[0])
	log.SetPrefix(fmt.Sprintf("%s: ", cmdName))
	log.SetFlags(0)

	pflag.CommandLine = pflag.NewFlagSet(cmdName, pflag.ExitOnError)
	pflag.Usage = func() { usage(os.Stderr); os.Exit(1) }

	var (
		output    = pflag.StringP("output", "o", "", "")
		verbose   = pflag.BoolP("verbose", "v", false, "")
		finishEnd = pflag.Bool("finish-end", false, "")
		help      = pflag.BoolP("help", "h", false, "")
	)
	pflag.Parse()

	if *help {
		usage(os.Stdout)
		os.Exit(0)
	}

	var in io.Reader = os.Stdin
	if pflag.NArg() > 0 && pflag.Arg(0) != "-" {
		f, err := os.Open(pflag.Arg(0))
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		out = f
	}

	src, err := io.ReadAll(in)
	if err != nil {
		log.Fatal(err)
	}
	if len(src) == 0 {
		log.Fatal("empty input: missing LZMA2 property byte")
	}

	prop := src[0]
	bd, err := lzma2.NewBufferedDecoder(prop)
	if err != nil {
		log.Fatalf("property byte %#02x: %v", prop, err)
	}
	if *verbose {
		bd.SetLogger(log.New(os.Stderr, "", 0))
	}

	finishMode := lzma.FinishAny
	if *finishEnd {
		finishMode = lzma.FinishEnd
	}

	srcLen := 1
	dest := make([]byte, 1<<20)
	for {
		n, consumed, status, err := bd.Decode(dest, src[srcLen:], finishMode)
		if err != nil {
			log.Fatal(err)
		}
		if n > 0 {
			if _, werr := out.Write(dest[:n]); werr != nil {
				log.Fatal(werr)
			}
		}
		srcLen += consumed

		switch status {
		case lzma.StatusFinishedWithMark:
			return
		case lzma.StatusNeedsMoreInput:
			log.Fatal("truncated LZMA2 stream")
		case lzma.StatusMaybeFinishedWithoutMark, lzma.StatusNotFinished:
			if consumed == 0 && n == 0 {
				log.Fatal("decoder made no progress")
			}
		}
	}
}
