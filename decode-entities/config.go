package main

// reading the configuration file

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// configOptions are the flags that a configuration file may set.
var configOptions = map[string]bool{
	"entities": true,
	"charset":  true,
	"cache":    true,
}

// readConfigFile reads the specified configuration file.
// For each line of the form "key value" or "key = value", it sets the flag
// named key. A relative entities path is taken relative to the directory
// the configuration file is in.
func readConfigFile(filename string) {
	f, err := os.Open(filename)
	if err != nil {
		log.Println("Error reading config file:", err)
		return
	}
	defer f.Close()

	if err := parseConfig(f, flag.CommandLine, filepath.Dir(filename)); err != nil {
		log.Println("Error reading config file:", err)
	}
}

// parseConfig reads configuration lines from r and sets the corresponding
// flags in fs, resolving relative table paths against dir. Problems with
// individual lines are logged and skipped.
func parseConfig(r io.Reader, fs *flag.FlagSet, dir string) error {
	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimSpace(s.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		key, value, err := splitConfigLine(line)
		if err == nil {
			err = setOption(fs, key, value, dir)
		}
		if err != nil {
			log.Printf("Config line %d: %v", lineNo, err)
		}
	}
	return s.Err()
}

// splitConfigLine separates a line into its key and value. The value may be
// a Go-style quoted string; otherwise anything after a '#' is a comment.
func splitConfigLine(line string) (key, value string, err error) {
	end := strings.IndexAny(line, " \t=")
	if end == -1 {
		return line, "", nil
	}
	key = line[:end]
	rest := strings.TrimSpace(line[end:])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "="))

	if strings.HasPrefix(rest, `"`) {
		q, err := strconv.QuotedPrefix(rest)
		if err != nil {
			return "", "", fmt.Errorf("improperly-quoted value for %s: %s", key, rest)
		}
		value, _ = strconv.Unquote(q)
		return key, value, nil
	}

	value, _, _ = strings.Cut(rest, "#")
	return key, strings.TrimSpace(value), nil
}

func setOption(fs *flag.FlagSet, key, value, dir string) error {
	if !configOptions[key] {
		return fmt.Errorf("unknown option %q", key)
	}
	if key == "entities" && value != "" && !filepath.IsAbs(value) {
		value = filepath.Join(dir, value)
	}
	if err := fs.Set(key, value); err != nil {
		return fmt.Errorf("could not set %s to %q: %w", key, value, err)
	}
	return nil
}
