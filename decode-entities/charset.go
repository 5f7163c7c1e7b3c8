package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// Character-set conversion of the input.

// sniffLen is how much of the input is examined to guess its encoding.
const sniffLen = 1024

// toUTF8 returns a reader that converts r from the cs encoding to UTF-8.
// If cs is "auto", the encoding is guessed from the first part of the
// content: a byte-order mark, a <meta> tag, or whether it is valid UTF-8,
// falling back to windows-1252.
func toUTF8(r io.Reader, cs string) (io.Reader, error) {
	cs = strings.ToLower(strings.TrimSpace(cs))

	if cs == "auto" {
		br := bufio.NewReaderSize(r, sniffLen)
		// A short read just means a short file; whatever was read is used.
		preview, _ := br.Peek(sniffLen)
		_, cs, _ = charset.DetermineEncoding(preview, "")
		r = br
	}

	switch cs {
	case "", "utf-8", "utf8":
		return r, nil
	}

	e, _ := charset.Lookup(cs)
	if e == nil {
		return nil, fmt.Errorf("unsupported charset %q", cs)
	}
	return transform.NewReader(r, e.NewDecoder()), nil
}
