package entity

// Edge is where new rows enter the visual table.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
)

// UpdateMode says what happens to the position of a row whose record was updated.
type UpdateMode int

const (
	KeepPosition UpdateMode = iota
	MoveToEdge
)

// Placement is the per-entity row positioning policy.
// The zero value inserts new rows at the top and keeps updated rows in place.
type Placement struct {
	Insert   Edge
	OnUpdate UpdateMode
}

// Column is one rendered cell. Style is a hint for the host (e.g. "badge-danger").
type Column struct {
	Name  string `json:"name"`
	Text  string `json:"text"`
	Style string `json:"style,omitempty"`
}

// RowView is the view model of one visual row; hosts render it however they like.
type RowView struct {
	Key     Key      `json:"key"`
	Columns []Column `json:"columns"`
}

// Text returns the text of the named column.
func (r RowView) Text(name string) string {
	for _, c := range r.Columns {
		if c.Name == name {
			return c.Text
		}
	}
	return ""
}

// RenderFunc maps a record to its row view model. It must be pure.
type RenderFunc func(rec Record) RowView

// Grid is the ordered visual table: at most one row per key.
type Grid struct {
	rows []RowView
}

func (g *Grid) index(key Key) int {
	for i, r := range g.rows {
		if r.Key == key {
			return i
		}
	}
	return -1
}

func (g *Grid) Has(key Key) bool { return g.index(key) >= 0 }

// Replace swaps the row carrying row.Key in place. It reports false if there is none.
func (g *Grid) Replace(row RowView) bool {
	i := g.index(row.Key)
	if i < 0 {
		return false
	}
	g.rows[i] = row
	return true
}

// Insert adds row at the given edge. Callers make sure the key is not already present.
func (g *Grid) Insert(row RowView, edge Edge) {
	if edge == EdgeBottom {
		g.rows = append(g.rows, row)
		return
	}
	g.rows = append(g.rows, RowView{})
	copy(g.rows[1:], g.rows)
	g.rows[0] = row
}

// Detach removes the row with key and reports whether it existed.
func (g *Grid) Detach(key Key) bool {
	i := g.index(key)
	if i < 0 {
		return false
	}
	g.rows = append(g.rows[:i], g.rows[i+1:]...)
	return true
}

func (g *Grid) Len() int { return len(g.rows) }

// Rows returns a copy of the rows in display order.
func (g *Grid) Rows() []RowView {
	rows := make([]RowView, len(g.rows))
	copy(rows, g.rows)
	return rows
}
