// The decode-entities command decodes the character references (&amp;,
// &#169;, &#xA9;) in the files named on its command line, or in standard
// input, and prints the result on standard output.
//
// Compressed files (.gz, .br, .zst, .lz4) are decompressed first, and input
// in other encodings can be converted with -charset.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/andybalholm/charref"
)

var (
	configFile   = flag.String("config", "", "path to configuration file")
	entitiesFile = flag.String("entities", "", "path to a JSON or YAML table of named references (default: the HTML5 list)")
	inputCharset = flag.String("charset", "utf-8", `input encoding ("auto" to guess)`)
	cacheSize    = flag.Int64("cache", 0, "bytes of decoded lines to cache (0 disables caching)")
)

// A decoder is a *charref.Decoder or a *charref.Cache.
type decoder interface {
	Decode(s string) string
}

func main() {
	flag.Parse()
	if *configFile != "" {
		readConfigFile(*configFile)
		// Let the command line override the configuration file.
		flag.Parse()
	}

	dec, cleanup := newDecoder()
	defer cleanup()

	files := flag.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	out := bufio.NewWriter(os.Stdout)
	failed := false
	for _, f := range files {
		if err := decodeFile(out, f, *inputCharset, dec); err != nil {
			log.Printf("Error decoding %s: %v", f, err)
			failed = true
		}
	}

	if err := out.Flush(); err != nil {
		log.Println("Error writing output:", err)
		failed = true
	}
	if failed {
		cleanup()
		os.Exit(1)
	}
}

// newDecoder builds the decoder selected by the command-line flags.
// A table that can't be loaded is fatal.
func newDecoder() (decoder, func()) {
	var table charref.Table = charref.HTML5
	if *entitiesFile != "" {
		m, err := charref.ReadTableFile(*entitiesFile)
		if err != nil {
			log.Fatalf("Could not load entity table: %v", err)
		}
		table = m
	}

	d := charref.NewDecoder(table)
	if *cacheSize <= 0 {
		return d, func() {}
	}

	c, err := charref.NewCache(d, *cacheSize)
	if err != nil {
		log.Fatalf("Could not create cache: %v", err)
	}
	return c, c.Close
}

// decodeFile decodes filename ("-" for standard input) one line at a time and
// writes the result to w. A character reference can't contain a line break,
// so decoding each line separately gives the same result as decoding the
// whole file at once.
func decodeFile(w io.Writer, filename, cs string, dec decoder) error {
	in, err := openInput(filename, cs)
	if err != nil {
		return err
	}
	defer in.Close()

	r := bufio.NewReader(in)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			if _, werr := io.WriteString(w, dec.Decode(line)); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading input: %w", err)
		}
	}
}
