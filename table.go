package charref

import (
	"sort"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// A Table maps character reference names (without the leading '&' or the
// trailing ';') to the text they stand for. Names are matched exactly,
// including case.
//
// Implementations must be safe for concurrent use, which in practice means
// they must not change after they are built.
type Table interface {
	Lookup(name string) (value string, ok bool)
}

// A Map is a Table held in a Go map. It is usually built by LoadJSON,
// LoadYAML or ReadTableFile, but a literal works just as well.
type Map map[string]string

// Lookup returns the value stored for name.
func (m Map) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Names returns the names in m, sorted.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// HTML5 is the table of named character references defined by the HTML
// standard (the same list as https://html.spec.whatwg.org/entities.json).
var HTML5 Table = html5Table{}

type html5Table struct{}

// html5Extra holds the references that x/net/html leaves out of its table
// because its in-place unescaper can't write a result longer than the
// reference it replaces.
var html5Extra = map[string]string{
	"nGt": "\u226B\u20D2",
	"nLt": "\u226A\u20D2",
}

func (html5Table) Lookup(name string) (string, bool) {
	if !validName(name) {
		return "", false
	}

	if v, ok := html5Extra[name]; ok {
		return v, true
	}

	ref := "&" + name + ";"
	s := html.UnescapeString(ref)
	if s == ref {
		return "", false
	}

	// Every named reference expands to one or two code points. Anything
	// longer is x/net/html matching a legacy name (like "amp" in
	// "&ampx;") and copying the rest of the reference after it.
	if utf8.RuneCountInString(s) > 2 {
		return "", false
	}
	return s, true
}

// validName reports whether name is a non-empty string of ASCII letters and
// digits.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isAlnum(name[i]) {
			return false
		}
	}
	return true
}

func isLetter(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c rune) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func isAlnum(b byte) bool {
	return isLetter(rune(b)) || isDigit(rune(b))
}
