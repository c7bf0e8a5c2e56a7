package dataset

import (
	"crypto/sha1"
	"fmt"
	"strings"
)

// Fingerprint derives a cache key for a table from its shape, column names,
// column kinds, and the first five rows of values. It is deliberately not a
// full-content hash: two tables sharing headers and their first five rows
// collide. That keeps fingerprinting O(columns) regardless of table size,
// at the cost of staleness on such collisions.
func Fingerprint(t *Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dx%d|", t.RowCount(), t.ColumnCount())
	for _, c := range t.Columns() {
		fmt.Fprintf(&b, "%s:%s|", c.Name, c.Kind)
	}
	head := t.RowCount()
	if head > 5 {
		head = 5
	}
	for i := 0; i < head; i++ {
		for _, c := range t.Columns() {
			b.WriteString(c.Value(i))
			b.WriteByte('\x1f')
		}
		b.WriteByte('\x1e')
	}
	sum := sha1.Sum([]byte(b.String()))
	return fmt.Sprintf("%x", sum[:])
}
