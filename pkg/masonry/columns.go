package masonry

import (
	"github.com/matzehuels/masonry/pkg/errors"
)

// Column is a single vertical lane. Indexes lists item indexes in assignment
// order, which is also their top-to-bottom render order.
type Column struct {
	ID      int   `json:"id"`
	Indexes []int `json:"indexes"`
}

// Columns is the column store. A column's ID always equals its position.
type Columns []Column

// NewColumns returns count empty columns labeled 0..count-1.
// A non-positive count yields an empty store.
func NewColumns(count int) Columns {
	if count < 0 {
		count = 0
	}
	cols := make(Columns, count)
	for i := range cols {
		cols[i] = Column{ID: i, Indexes: []int{}}
	}
	return cols
}

// SeedRoundRobin returns count columns holding every index in [0, n),
// index i going to column i mod count.
func SeedRoundRobin(count, n int) Columns {
	cols := NewColumns(count)
	if len(cols) == 0 {
		return cols
	}
	for i := 0; i < n; i++ {
		cols[i%count].Indexes = append(cols[i%count].Indexes, i)
	}
	return cols
}

// Assign appends index to the column with the given id.
// It returns an ErrCodeColumnOutOfRange error if no such column exists.
func (c Columns) Assign(id, index int) error {
	if id < 0 || id >= len(c) {
		return errors.New(errors.ErrCodeColumnOutOfRange, "column %d out of range [0, %d)", id, len(c))
	}
	c[id].Indexes = append(c[id].Indexes, index)
	return nil
}

// Placed returns the number of indexes held across all columns.
func (c Columns) Placed() int {
	n := 0
	for _, col := range c {
		n += len(col.Indexes)
	}
	return n
}

// ColumnOf returns the column holding index, or -1.
func (c Columns) ColumnOf(index int) int {
	for _, col := range c {
		for _, i := range col.Indexes {
			if i == index {
				return col.ID
			}
		}
	}
	return -1
}

// Clone returns a deep copy of the store.
func (c Columns) Clone() Columns {
	if c == nil {
		return nil
	}
	out := make(Columns, len(c))
	for i, col := range c {
		out[i] = Column{ID: col.ID, Indexes: append([]int{}, col.Indexes...)}
	}
	return out
}

// Verify checks that the columns hold exactly the indexes 0..cursor-1, each
// once, and that every column's ID matches its position.
func (c Columns) Verify(cursor int) error {
	seen := make([]bool, max(cursor, 0))
	count := 0
	for pos, col := range c {
		if col.ID != pos {
			return errors.New(errors.ErrCodeInternal, "column at position %d has id %d", pos, col.ID)
		}
		for _, i := range col.Indexes {
			if i < 0 || i >= cursor {
				return errors.New(errors.ErrCodeInternal, "column %d holds index %d outside [0, %d)", col.ID, i, cursor)
			}
			if seen[i] {
				return errors.New(errors.ErrCodeInternal, "index %d placed twice", i)
			}
			seen[i] = true
			count++
		}
	}
	if count != max(cursor, 0) {
		return errors.New(errors.ErrCodeInternal, "%d indexes placed, cursor at %d", count, cursor)
	}
	return nil
}
