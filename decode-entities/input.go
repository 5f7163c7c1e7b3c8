package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// An input is a reader with the things that need closing when it is done.
type input struct {
	io.Reader
	closers []func() error
}

func (in *input) Close() error {
	var firstErr error
	for i := len(in.closers) - 1; i >= 0; i-- {
		if err := in.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// openInput opens filename ("-" for standard input), decompresses it if its
// extension calls for it, and converts it from the cs encoding to UTF-8
// (see toUTF8).
func openInput(filename, cs string) (io.ReadCloser, error) {
	in := new(input)
	if filename == "-" {
		in.Reader = os.Stdin
	} else {
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		in.Reader = f
		in.closers = append(in.closers, f.Close)
	}

	if err := in.decompress(filepath.Ext(filename)); err != nil {
		in.Close()
		return nil, err
	}

	r, err := toUTF8(in.Reader, cs)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.Reader = r

	return in, nil
}

// decompress wraps in.Reader with a decompressor chosen by the file
// extension ext. Unrecognized extensions are read as they are.
func (in *input) decompress(ext string) error {
	switch strings.ToLower(ext) {
	case ".gz":
		gz, err := gzip.NewReader(in.Reader)
		if err != nil {
			return fmt.Errorf("could not create gzip decoder: %w", err)
		}
		in.Reader = gz
		in.closers = append(in.closers, gz.Close)

	case ".br":
		in.Reader = brotli.NewReader(in.Reader)

	case ".zst":
		zr, err := zstd.NewReader(in.Reader, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return fmt.Errorf("could not create zstd decoder: %w", err)
		}
		in.Reader = zr
		in.closers = append(in.closers, func() error {
			zr.Close()
			return nil
		})

	case ".lz4":
		in.Reader = lz4.NewReader(in.Reader)
	}

	return nil
}
