// Command alzw compresses a file or a line of standard input with Alphabetized LZW
// and writes the result to standard output.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	"github.com/woozymasta/alzw"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	fileFlag    = flag.String("f", "", "file to process; standard input when empty")
	decompFlag  = flag.Bool("d", false, "decompress instead of compress")
	streamFlag  = flag.Bool("stream", false, "use the chunked container")
	chunkFlag   = flag.Int("chunk", alzw.DefaultChunkSize, "input bytes per chunk with -stream")
	strictFlag  = flag.Bool("strict", false, "fail instead of freezing the dictionary at 255 codes")
	indexFlag   = flag.String("index", "", "chunk index sidecar: written by -stream, read by -at")
	atFlag      = flag.Int64("at", -1, "extract original bytes from this offset of a -stream file")
	lenFlag     = flag.Int("n", 0, "number of bytes to extract with -at")
	versionFlag = flag.Bool("version", false, "display the version")
)

func usage() {
	fmt.Fprintf(os.Stderr, "%s %s\n\n", os.Args[0], version)
	fmt.Fprintf(os.Stderr, "usage: %s [-d] [-stream [-chunk N] [-index FILE]] [-strict] [-f FILE]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "       %s -at OFFSET -n LEN -f FILE [-index FILE]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "The result is written to stdout. Without -f a single line is read from stdin.\n\n")
	flag.PrintDefaults()
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("alzw: ")
	flag.Usage = usage
	flag.Parse()

	if *versionFlag {
		fmt.Printf("%s %s\n", os.Args[0], version)
		return
	}

	out := bufio.NewWriter(os.Stdout)
	err := run(out, os.Stdin)
	if ferr := out.Flush(); err == nil {
		err = ferr
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("file %s NOT FOUND", pathErr.Path)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func run(stdout io.Writer, stdin io.Reader) error {
	copts := alzw.DefaultCompressOptions()
	copts.ChunkSize = *chunkFlag
	if *strictFlag {
		copts.Overflow = alzw.OverflowError
	}

	if *atFlag >= 0 {
		if *fileFlag == "" {
			return errors.New("-at requires -f")
		}

		return extract(stdout, *fileFlag, *indexFlag, *atFlag, *lenFlag)
	}

	if *streamFlag {
		in := stdin
		if *fileFlag != "" {
			f, err := os.Open(*fileFlag)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		if *decompFlag {
			_, _, err := alzw.DecompressStream(stdout, in, nil)
			return err
		}

		return compressStream(stdout, in, copts, *indexFlag)
	}

	data, err := readInput(stdin)
	if err != nil {
		return err
	}

	var result []byte
	if *decompFlag {
		result, err = alzw.Decompress(data, nil)
	} else {
		result, err = alzw.Compress(data, copts)
	}
	if err != nil {
		return err
	}

	_, err = stdout.Write(result)

	return err
}

// readInput returns the whole -f file, all of stdin when decompressing,
// or one line of stdin without its line ending.
func readInput(stdin io.Reader) ([]byte, error) {
	if *fileFlag != "" {
		return os.ReadFile(*fileFlag)
	}
	if *decompFlag {
		return io.ReadAll(stdin)
	}

	line, err := bufio.NewReader(stdin).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	line = bytes.TrimSuffix(line, []byte("\n"))

	return bytes.TrimSuffix(line, []byte("\r")), nil
}

// compressStream writes the chunked container to stdout and the index sidecar to indexPath.
func compressStream(stdout io.Writer, in io.Reader, opts *alzw.CompressOptions, indexPath string) error {
	w, err := alzw.NewWriter(stdout, opts)
	if err != nil {
		return err
	}
	if _, err := w.ReadFrom(in); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if indexPath == "" {
		return nil
	}

	sidecar, err := w.Index().MarshalBinary()
	if err != nil {
		return err
	}

	return os.WriteFile(indexPath, sidecar, 0o644)
}

// extract writes n original bytes starting at off of a chunked container file.
func extract(stdout io.Writer, path, indexPath string, off int64, n int) error {
	ra, err := alzw.OpenFile(path, indexPath, nil)
	if err != nil {
		return err
	}
	defer ra.Close()

	if n <= 0 {
		n = int(max(ra.Size()-off, 0))
	}

	_, err = io.Copy(stdout, io.NewSectionReader(ra, off, int64(n)))

	return err
}
