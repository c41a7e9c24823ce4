package model

import (
	"net/http"
	"sort"
	"strings"
)

// HeaderContentType is the header whose inbound value labels the returned document.
const HeaderContentType = "Content-Type"

// HeaderEntry is a single header name and its first value, as received.
type HeaderEntry struct {
	Name  string
	Value string
}

// HeaderTable is a read-only snapshot of the inbound request headers.
// Names keep the spelling they arrived with. Only the first value of a
// repeated header is kept. A HeaderTable belongs to exactly one request.
type HeaderTable struct {
	entries []HeaderEntry
}

// NewHeaderTable copies every header of h into a new HeaderTable, ordered by name.
// A header present with no values is recorded with an empty value.
func NewHeaderTable(h http.Header) HeaderTable {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]HeaderEntry, 0, len(names))
	for _, name := range names {
		value := ""
		if values := h[name]; len(values) > 0 {
			value = values[0]
		}
		entries = append(entries, HeaderEntry{Name: name, Value: value})
	}
	return HeaderTable{entries: entries}
}

// Lookup returns the value for name and whether it was present.
// Names are matched case-insensitively.
func (t HeaderTable) Lookup(name string) (string, bool) {
	for _, e := range t.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Value, true
		}
	}
	return "", false
}

// Get returns the value for name, or "" if the header was not sent.
func (t HeaderTable) Get(name string) string {
	v, _ := t.Lookup(name)
	return v
}

// ContentType returns the inbound Content-Type value, or "" if absent.
func (t HeaderTable) ContentType() string {
	return t.Get(HeaderContentType)
}

// Len returns the number of distinct header names.
func (t HeaderTable) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the table's entries in order.
func (t HeaderTable) Entries() []HeaderEntry {
	out := make([]HeaderEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
