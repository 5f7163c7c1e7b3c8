package charref

// reading character reference tables from data files

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

var (
	// ErrEmptyTable is returned for a table file with no entries.
	ErrEmptyTable = errors.New("charref: table has no entries")

	// ErrInvalidName is returned for a name that isn't made of ASCII letters
	// and digits, or that is missing from "characters".
	ErrInvalidName = errors.New("charref: invalid reference name")

	// ErrInvalidValue is returned for an empty value, a value that isn't
	// UTF-8, or a code point outside the Unicode range.
	ErrInvalidValue = errors.New("charref: invalid reference value")
)

// tableFile is the layout of a table file: the names and the characters they
// stand for, plus the names that browsers also accept without a trailing
// semicolon. The decoder always requires the semicolon, so the second list
// is only checked for consistency.
type tableFile struct {
	Characters map[string]string `yaml:"characters"`
	Optional   []string          `yaml:"optional-;"`
}

// whatwgEntry is one entry of the HTML standard's entities.json.
type whatwgEntry struct {
	Codepoints []int  `json:"codepoints"`
	Characters string `json:"characters"`
}

// LoadJSON reads a table in JSON format. It accepts either an object with a
// "characters" field mapping names to characters (and optionally an
// "optional-;" list), or the entities.json file published with the HTML
// standard, whose keys are complete references like "&copy;".
func LoadJSON(r io.Reader) (Map, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("charref: error parsing JSON table: %w", err)
	}

	if _, ok := raw["characters"]; ok {
		var tf tableFile
		if err := json.Unmarshal(raw["characters"], &tf.Characters); err != nil {
			return nil, fmt.Errorf("charref: error parsing \"characters\": %w", err)
		}
		if opt, ok := raw["optional-;"]; ok {
			if err := json.Unmarshal(opt, &tf.Optional); err != nil {
				return nil, fmt.Errorf("charref: error parsing \"optional-;\": %w", err)
			}
		}
		return tf.table()
	}

	m := make(Map, len(raw))
	for key, msg := range raw {
		if !strings.HasPrefix(key, "&") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, key)
		}
		if !strings.HasSuffix(key, ";") {
			// Legacy form without the semicolon; the decoder never uses it.
			continue
		}
		var e whatwgEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, fmt.Errorf("charref: error parsing entry %q: %w", key, err)
		}
		if e.Characters == "" {
			for _, cp := range e.Codepoints {
				if cp < 0 || cp > utf8.MaxRune || !utf8.ValidRune(rune(cp)) {
					return nil, fmt.Errorf("%w: code point %d for %q", ErrInvalidValue, cp, key)
				}
				e.Characters += string(rune(cp))
			}
		}
		m[key[1:len(key)-1]] = e.Characters
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadYAML reads a table in YAML format, laid out like the "characters"
// form accepted by LoadJSON.
func LoadYAML(r io.Reader) (Map, error) {
	var tf tableFile
	if err := yaml.NewDecoder(r).Decode(&tf); err != nil {
		if err == io.EOF {
			return nil, ErrEmptyTable
		}
		return nil, fmt.Errorf("charref: error parsing YAML table: %w", err)
	}
	return tf.table()
}

// ReadTableFile loads a table from a file, choosing the format by the file's
// extension (.json, .yaml or .yml).
func ReadTableFile(filename string) (Map, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var m Map
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		m, err = LoadJSON(f)
	case ".yaml", ".yml":
		m, err = LoadYAML(f)
	default:
		return nil, fmt.Errorf("charref: unsupported table file type %q (%s)", ext, filename)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return m, nil
}

func (tf *tableFile) table() (Map, error) {
	m := Map(tf.Characters)
	if err := m.validate(); err != nil {
		return nil, err
	}
	for _, name := range tf.Optional {
		if _, ok := m[name]; !ok {
			return nil, fmt.Errorf("%w: %q is listed in \"optional-;\" but not in \"characters\"", ErrInvalidName, name)
		}
	}
	return m, nil
}

// validate checks that m is non-empty, that every name is made of ASCII
// letters and digits, and that every value is non-empty UTF-8.
func (m Map) validate() error {
	if len(m) == 0 {
		return ErrEmptyTable
	}
	for name, value := range m {
		if !validName(name) {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		if value == "" || !utf8.ValidString(value) {
			return fmt.Errorf("%w: %q for %q", ErrInvalidValue, value, name)
		}
	}
	return nil
}
