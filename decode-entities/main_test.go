package main

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/andybalholm/charref"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
)

const (
	sampleInput  = "Fish &amp; chips &hellip; &#163;4.50\nAT&T &#x192; &#x192\n&copy\n"
	sampleOutput = "Fish & chips … £4.50\nAT&T ƒ &#x192\n&copy\n"
)

func writeFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(filename, content, 0644))
	return filename
}

func compressed(t *testing.T, newWriter func(io.Writer) io.WriteCloser) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := newWriter(buf)
	_, err := io.WriteString(w, sampleInput)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecodeFile(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"plain.txt", []byte(sampleInput)},
		{"page.gz", compressed(t, func(w io.Writer) io.WriteCloser {
			return gzip.NewWriter(w)
		})},
		{"page.br", compressed(t, func(w io.Writer) io.WriteCloser {
			return brotli.NewWriter(w)
		})},
		{"page.zst", compressed(t, func(w io.Writer) io.WriteCloser {
			zw, err := zstd.NewWriter(w)
			require.NoError(t, err)
			return zw
		})},
		{"page.lz4", compressed(t, func(w io.Writer) io.WriteCloser {
			return lz4.NewWriter(w)
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filename := writeFile(t, tt.name, tt.content)

			out := new(bytes.Buffer)
			require.NoError(t, decodeFile(out, filename, "utf-8", charref.NewDecoder(nil)))
			require.Equal(t, sampleOutput, out.String())
		})
	}
}

func TestDecodeFileNoTrailingNewline(t *testing.T) {
	filename := writeFile(t, "short.txt", []byte("a &lt; b &"))

	out := new(bytes.Buffer)
	require.NoError(t, decodeFile(out, filename, "", charref.NewDecoder(nil)))
	require.Equal(t, "a < b &", out.String())
}

func TestDecodeFileCharset(t *testing.T) {
	// "café &amp; crème" in windows-1252
	filename := writeFile(t, "latin1.txt", []byte("caf\xe9 &amp; cr\xe8me\n"))

	out := new(bytes.Buffer)
	require.NoError(t, decodeFile(out, filename, "windows-1252", charref.NewDecoder(nil)))
	require.Equal(t, "café & crème\n", out.String())
}

func TestDecodeFileCharsetAuto(t *testing.T) {
	d := charref.NewDecoder(nil)

	latin1 := writeFile(t, "latin1.txt", []byte("caf\xe9 &amp; cr\xe8me\n"))
	out := new(bytes.Buffer)
	require.NoError(t, decodeFile(out, latin1, "auto", d))
	require.Equal(t, "café & crème\n", out.String())

	utf8 := writeFile(t, "utf8.txt", []byte("café &amp; crème\n"))
	out.Reset()
	require.NoError(t, decodeFile(out, utf8, "auto", d))
	require.Equal(t, "café & crème\n", out.String())

	empty := writeFile(t, "empty.txt", nil)
	out.Reset()
	require.NoError(t, decodeFile(out, empty, "auto", d))
	require.Equal(t, "", out.String())
}

func TestDecodeFileWithCache(t *testing.T) {
	filename := writeFile(t, "repeat.txt", []byte(strings.Repeat(sampleInput, 20)))

	c, err := charref.NewCache(charref.NewDecoder(nil), 1<<20)
	require.NoError(t, err)
	defer c.Close()

	out := new(bytes.Buffer)
	require.NoError(t, decodeFile(out, filename, "utf-8", c))
	require.Equal(t, strings.Repeat(sampleOutput, 20), out.String())
}

func TestDecodeFileErrors(t *testing.T) {
	d := charref.NewDecoder(nil)

	err := decodeFile(io.Discard, filepath.Join(t.TempDir(), "missing.txt"), "utf-8", d)
	require.ErrorIs(t, err, os.ErrNotExist)

	filename := writeFile(t, "plain.txt", []byte(sampleInput))
	err = decodeFile(io.Discard, filename, "no-such-charset", d)
	require.ErrorContains(t, err, "unsupported charset")

	notGzip := writeFile(t, "bad.gz", []byte(sampleInput))
	err = decodeFile(io.Discard, notGzip, "utf-8", d)
	require.ErrorContains(t, err, "gzip")
}

func TestParseConfig(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	entities := fs.String("entities", "", "")
	cs := fs.String("charset", "utf-8", "")
	cache := fs.Int64("cache", 0, "")
	config := fs.String("config", "", "")

	input := `# decode-entities configuration
entities "tables/legacy # pages.json"  # quoted
charset = windows-1252   # legacy pages
cache=65536

config /etc/other.conf
unknown-key 1
`
	require.NoError(t, parseConfig(strings.NewReader(input), fs, "/etc/charref"))

	require.Equal(t, "/etc/charref/tables/legacy # pages.json", *entities)
	require.Equal(t, "windows-1252", *cs)
	require.Equal(t, int64(65536), *cache)
	require.Equal(t, "", *config)
}

func TestParseConfigBadLines(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cs := fs.String("charset", "utf-8", "")
	cache := fs.Int64("cache", 4096, "")

	input := `charset "unterminated
cache lots
charset koi8-r
`
	require.NoError(t, parseConfig(strings.NewReader(input), fs, "."))
	require.Equal(t, "koi8-r", *cs)
	require.Equal(t, int64(4096), *cache)
}

func TestParseConfigAbsoluteEntities(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	entities := fs.String("entities", "", "")

	require.NoError(t, parseConfig(strings.NewReader("entities /usr/share/charref/html5.yaml\n"), fs, "/etc/charref"))
	require.Equal(t, "/usr/share/charref/html5.yaml", *entities)
}

func TestParseConfigLastLineWithoutNewline(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cs := fs.String("charset", "utf-8", "")

	require.NoError(t, parseConfig(strings.NewReader("charset koi8-r"), fs, "."))
	require.Equal(t, "koi8-r", *cs)
}

func TestSplitConfigLine(t *testing.T) {
	tests := []struct {
		line       string
		key, value string
	}{
		{"charset koi8-r", "charset", "koi8-r"},
		{"charset\tkoi8-r", "charset", "koi8-r"},
		{"charset=koi8-r", "charset", "koi8-r"},
		{"charset = koi8-r # Russian", "charset", "koi8-r"},
		{`entities "a \"b\".json" # comment`, "entities", `a "b".json`},
		{"entities", "entities", ""},
	}

	for _, tt := range tests {
		key, value, err := splitConfigLine(tt.line)
		require.NoError(t, err, tt.line)
		require.Equal(t, tt.key, key, tt.line)
		require.Equal(t, tt.value, value, tt.line)
	}

	_, _, err := splitConfigLine(`entities "open`)
	require.Error(t, err)
}

func TestReadConfigFileRelativeEntities(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "decode-entities.conf")
	require.NoError(t, os.WriteFile(filename, []byte("entities tables/html5.json\n"), 0644))

	old := *entitiesFile
	t.Cleanup(func() { *entitiesFile = old })

	readConfigFile(filename)
	require.Equal(t, filepath.Join(dir, "tables", "html5.json"), *entitiesFile)
}
