// Package fetch models the standards-shaped request and response the auth
// engine speaks, independent of net/http.
package fetch

import (
	"net/http"
	"sort"
	"strings"
)

// Header is a single name/value entry. Names are stored lower-cased.
type Header struct {
	Name  string
	Value string
}

// Headers is an ordered header list. Unlike http.Header it keeps the order
// entries were added in, and a name may appear any number of times.
type Headers struct {
	entries []Header
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Append adds an entry without touching existing entries of the same name.
func (h *Headers) Append(name, value string) {
	h.entries = append(h.entries, Header{Name: normalizeName(name), Value: value})
}

// Set replaces every entry of name with a single one. The replacement takes
// the position of the first removed entry.
func (h *Headers) Set(name, value string) {
	name = normalizeName(name)
	idx := -1
	kept := make([]Header, 0, len(h.entries))
	for _, e := range h.entries {
		if e.Name == name {
			if idx < 0 {
				idx = len(kept)
				kept = append(kept, Header{Name: name, Value: value})
			}
			continue
		}
		kept = append(kept, e)
	}
	h.entries = kept
	if idx < 0 {
		h.entries = append(h.entries, Header{Name: name, Value: value})
	}
}

func (h *Headers) Del(name string) {
	name = normalizeName(name)
	kept := make([]Header, 0, len(h.entries))
	for _, e := range h.entries {
		if e.Name != name {
			kept = append(kept, e)
		}
	}
	h.entries = kept
}

// Get returns the first value of name, or "".
func (h Headers) Get(name string) string {
	name = normalizeName(name)
	for _, e := range h.entries {
		if e.Name == name {
			return e.Value
		}
	}
	return ""
}

func (h Headers) Values(name string) []string {
	name = normalizeName(name)
	var out []string
	for _, e := range h.entries {
		if e.Name == name {
			out = append(out, e.Value)
		}
	}
	return out
}

func (h Headers) Has(name string) bool {
	name = normalizeName(name)
	for _, e := range h.entries {
		if e.Name == name {
			return true
		}
	}
	return false
}

func (h Headers) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the entries in order.
func (h Headers) Entries() []Header {
	out := make([]Header, len(h.entries))
	copy(out, h.entries)
	return out
}

// HTTP converts h into an http.Header, keeping repeated names as
// separate values.
func (h Headers) HTTP() http.Header {
	out := make(http.Header, len(h.entries))
	for _, e := range h.entries {
		out.Add(e.Name, e.Value)
	}
	return out
}

// HeaderValue is either a SingleValue or a MultiValue.
type HeaderValue interface {
	apply(h *Headers, name string)
}

// SingleValue is a header that carried exactly one value.
type SingleValue string

// MultiValue is a header that carried several values, such as repeated
// Cookie or Set-Cookie lines.
type MultiValue []string

func (v SingleValue) apply(h *Headers, name string) {
	h.Set(name, string(v))
}

func (v MultiValue) apply(h *Headers, name string) {
	for _, s := range v {
		h.Append(name, s)
	}
}

// Field is one named header with its tagged value.
type Field struct {
	Name  string
	Value HeaderValue
}

// Fields classifies every entry of src. Names are sorted so the result does
// not depend on map iteration order. Names without values are skipped.
func Fields(src http.Header) []Field {
	names := make([]string, 0, len(src))
	for name, values := range src {
		if len(values) == 0 {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		values := src[name]
		var v HeaderValue
		if len(values) == 1 {
			v = SingleValue(values[0])
		} else {
			v = MultiValue(append([]string(nil), values...))
		}
		fields = append(fields, Field{Name: name, Value: v})
	}
	return fields
}

// FromFields builds Headers from classified fields.
func FromFields(fields []Field) Headers {
	var h Headers
	for _, f := range fields {
		f.Value.apply(&h, f.Name)
	}
	return h
}

// FromHTTP is FromFields(Fields(src)).
func FromHTTP(src http.Header) Headers {
	return FromFields(Fields(src))
}
