package check

import (
	"encoding/json"
	"io"
	"sort"
	"sync"
)

// Mismatch records one failed conformance property: the code point (or raw
// register value) it was checked at, the stage that diverged, and the
// expected/observed images.
type Mismatch struct {
	Code  uint32 `json:"code"`
	Stage string `json:"stage"`
	Want  string `json:"want"`
	Got   string `json:"got"`
}

// Table accumulates mismatches from concurrent workers.
type Table struct {
	mu sync.Mutex
	ms []Mismatch
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// Add inserts a mismatch.
func (t *Table) Add(m Mismatch) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ms = append(t.ms, m)
}

// Mismatches returns a copy of all records, sorted by code point.
func (t *Table) Mismatches() []Mismatch {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Mismatch, len(t.ms))
	copy(out, t.ms)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Stage < out[j].Stage
	})
	return out
}

// Len returns the number of records.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ms)
}

// WriteJSON writes mismatches as indented JSON.
func WriteJSON(w io.Writer, ms []Mismatch) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ms)
}
