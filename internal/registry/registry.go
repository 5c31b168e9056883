// Package registry keeps the identifier, vector and metadata of every stored
// entry as one row, addressed by the same offset the metric index uses.
//
// Rows are only ever appended or removed whole, so the three views can not
// drift apart. A Table is not safe for concurrent use; the owning store
// serializes access.
package registry

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/vecstore/metadata"
)

// ErrNotFound is returned when an identifier is not live.
var ErrNotFound = errors.New("registry: id not found")

// ErrDuplicateID reports an identifier that is already live or repeated
// within one batch.
type ErrDuplicateID struct {
	ID string
}

func (e *ErrDuplicateID) Error() string {
	return fmt.Sprintf("registry: duplicate id %q", e.ID)
}

// Row is one logical entry.
type Row struct {
	ID       string
	Vector   []float32
	Metadata metadata.Document
}

// Table is the ordered row table.
type Table struct {
	rows []Row
	byID map[string]uint32
}

// New returns an empty table.
func New() *Table {
	return &Table{byID: make(map[string]uint32)}
}

// FromRows builds a table from rows in offset order.
func FromRows(rows []Row) (*Table, error) {
	t := New()
	if err := t.Append(rows); err != nil {
		return nil, err
	}
	return t, nil
}

// Len returns the number of live rows.
func (t *Table) Len() int { return len(t.rows) }

// CheckNew returns *ErrDuplicateID if any id is live or repeated.
func (t *Table) CheckNew(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := t.byID[id]; ok {
			return &ErrDuplicateID{ID: id}
		}
		if _, ok := seen[id]; ok {
			return &ErrDuplicateID{ID: id}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Append adds rows at offsets Len(), Len()+1, ... Nothing is appended when
// an id collides.
func (t *Table) Append(rows []Row) error {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	if err := t.CheckNew(ids); err != nil {
		return err
	}

	base := uint32(len(t.rows))
	for i, r := range rows {
		if r.Metadata == nil {
			r.Metadata = metadata.New()
		}
		t.rows = append(t.rows, r)
		t.byID[r.ID] = base + uint32(i)
	}
	return nil
}

// OffsetOf returns the offset of a live id.
func (t *Table) OffsetOf(id string) (uint32, error) {
	off, ok := t.byID[id]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return off, nil
}

// Row returns the row at offset. The returned row shares storage with the table.
func (t *Table) Row(offset uint32) (Row, bool) {
	if int(offset) >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[offset], true
}

// Lookup returns the row for a live id.
func (t *Table) Lookup(id string) (Row, bool) {
	off, ok := t.byID[id]
	if !ok {
		return Row{}, false
	}
	return t.rows[off], true
}

// Offsets collects the offsets of the live ids among ids. Unknown ids are
// skipped.
func (t *Table) Offsets(ids []string) *roaring.Bitmap {
	bm := roaring.New()
	for _, id := range ids {
		if off, ok := t.byID[id]; ok {
			bm.Add(off)
		}
	}
	return bm
}

// RemoveOffsets drops the rows in bm, keeping the relative order of the
// survivors, and returns how many rows were removed.
func (t *Table) RemoveOffsets(bm *roaring.Bitmap) int {
	if bm == nil || bm.IsEmpty() {
		return 0
	}

	kept := t.rows[:0]
	removed := 0
	for off, r := range t.rows {
		if bm.Contains(uint32(off)) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	clear(t.rows[len(kept):])
	t.rows = kept

	clear(t.byID)
	for off, r := range t.rows {
		t.byID[r.ID] = uint32(off)
	}
	return removed
}

// Clear drops every row.
func (t *Table) Clear() {
	t.rows = nil
	clear(t.byID)
}

// Vectors returns the vectors in offset order. The slices share storage with
// the table.
func (t *Table) Vectors() [][]float32 {
	out := make([][]float32, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Vector
	}
	return out
}

// IDs returns the identifiers in offset order.
func (t *Table) IDs() []string {
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.ID
	}
	return out
}

// Metadata returns deep copies of the metadata records in offset order.
func (t *Table) Metadata() []metadata.Document {
	out := make([]metadata.Document, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Metadata.Clone()
	}
	return out
}
