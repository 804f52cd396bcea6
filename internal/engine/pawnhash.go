package engine

import "github.com/lp--/Cfish/internal/board"

// Table is a hash table for caching pawn structure evaluations. It is lossy
// by design: a slot holds one entry, and a key collision silently rebuilds
// the slot for the new key. Probe therefore always validates the stored key
// against the query key before trusting a slot.
//
// A table is intended to be owned by a single worker; it does no locking.
type Table struct {
	entries []Entry
	mask    uint64

	hits   uint64
	misses uint64
}

// NewTable creates a new pawn hash table with the given size in MB.
func NewTable(sizeMB int) *Table {
	// Each entry is roughly 200 bytes; round the count down to a power of 2.
	const entrySize = 200
	numEntries := (sizeMB * 1024 * 1024) / entrySize

	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &Table{
		entries: make([]Entry, size),
		mask:    uint64(size - 1),
	}
}

// Probe looks up the position's pawn structure in the table, computing and
// storing it on a miss. The returned entry is owned by the table and stays
// valid until the same slot is overwritten by a colliding key.
func (t *Table) Probe(pos *board.Position) *Entry {
	key := pos.PawnKey
	e := &t.entries[key&t.mask]
	if e.key == key {
		t.hits++
		return e
	}

	t.misses++
	e.fill(pos.Pawns(board.White), pos.Pawns(board.Black), key)
	return e
}

// Stats returns the probe hit and miss counts since creation or Clear.
func (t *Table) Stats() (hits, misses uint64) {
	return t.hits, t.misses
}

// Clear clears the pawn hash table and its counters.
func (t *Table) Clear() {
	for i := range t.entries {
		t.entries[i] = Entry{}
	}
	t.hits = 0
	t.misses = 0
}
