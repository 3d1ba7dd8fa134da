package engine

import "strings"

// Cell is one addressable grid position
type Cell struct {
	row       int
	col       int
	totalRows int
	state     CellState
	neighbors []*Cell
}

// Row returns the 0-based row index
func (c *Cell) Row() int { return c.row }

// Col returns the 0-based column index
func (c *Cell) Col() int { return c.col }

// Position returns the cell coordinate
func (c *Cell) Position() Position { return Position{Row: c.row, Col: c.col} }

// State returns the current state tag
func (c *Cell) State() CellState { return c.state }

// SetState overwrites the state tag. Start/End uniqueness is the caller's job.
func (c *Cell) SetState(state CellState) { c.state = state }

// Reset makes the cell Free
func (c *Cell) Reset() { c.state = Free }

// IsBarrier reports whether the cell blocks traversal
func (c *Cell) IsBarrier() bool { return c.state == Barrier }

// Neighbors returns the adjacency computed by the last UpdateNeighbors call
func (c *Cell) Neighbors() []*Cell { return c.neighbors }

// UpdateNeighbors recomputes the cached adjacency from the grid
func (c *Cell) UpdateNeighbors(g *Grid) {
	c.neighbors = g.NeighborsOf(c)
}

// Grid is a fixed N×N collection of cells
type Grid struct {
	rows  int
	width int
	cells [][]*Cell
}

// NewGrid allocates rows×rows free cells on the default display width
func NewGrid(rows int) *Grid {
	return NewGridWithWidth(rows, DefaultWidth)
}

// NewGridWithWidth allocates rows×rows free cells for a display of the given pixel width
func NewGridWithWidth(rows, width int) *Grid {
	cells := make([][]*Cell, rows)
	for i := range cells {
		cells[i] = make([]*Cell, rows)
		for j := range cells[i] {
			cells[i][j] = &Cell{row: i, col: j, totalRows: rows, state: Free}
		}
	}
	return &Grid{rows: rows, width: width, cells: cells}
}

// Rows returns the number of rows (and columns)
func (g *Grid) Rows() int { return g.rows }

// Width returns the display width in pixels
func (g *Grid) Width() int { return g.width }

// TileSize returns the pixel size of one cell
func (g *Grid) TileSize() int { return g.width / g.rows }

// Cell returns the cell at row/col. Indices are not clamped.
func (g *Grid) Cell(row, col int) *Cell { return g.cells[row][col] }

// CellAt returns the cell at pos. Indices are not clamped.
func (g *Grid) CellAt(pos Position) *Cell { return g.cells[pos.Row][pos.Col] }

// InBounds reports whether pos addresses a cell
func (g *Grid) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < g.rows && pos.Col >= 0 && pos.Col < g.rows
}

// CoordinateOf maps a display point to a cell index
func (g *Grid) CoordinateOf(p Pixel) Position {
	return PixelToCell(p, g.rows, g.width)
}

// PixelToCell maps a display point to a cell index by integer division by the tile size
func PixelToCell(p Pixel, rows, width int) Position {
	tile := width / rows
	return Position{Row: p.Y / tile, Col: p.X / tile}
}

// NeighborsOf scans the grid for the orthogonal non-barrier cells around c,
// in the order down, up, left, right.
func (g *Grid) NeighborsOf(c *Cell) []*Cell {
	neighbors := make([]*Cell, 0, 4)
	if c.row < c.totalRows-1 && !g.cells[c.row+1][c.col].IsBarrier() { // down
		neighbors = append(neighbors, g.cells[c.row+1][c.col])
	}
	if c.row > 0 && !g.cells[c.row-1][c.col].IsBarrier() { // up
		neighbors = append(neighbors, g.cells[c.row-1][c.col])
	}
	if c.col > 0 && !g.cells[c.row][c.col-1].IsBarrier() { // left
		neighbors = append(neighbors, g.cells[c.row][c.col-1])
	}
	if c.col < c.totalRows-1 && !g.cells[c.row][c.col+1].IsBarrier() { // right
		neighbors = append(neighbors, g.cells[c.row][c.col+1])
	}
	return neighbors
}

// UpdateNeighbors recomputes adjacency for every cell. Call it once before each search.
func (g *Grid) UpdateNeighbors() {
	for _, row := range g.cells {
		for _, c := range row {
			c.UpdateNeighbors(g)
		}
	}
}

// Reset makes every cell Free
func (g *Grid) Reset() {
	for _, row := range g.cells {
		for _, c := range row {
			c.Reset()
		}
	}
}

// ClearSearch removes Open, Closed and Path marks, keeping barriers and endpoints
func (g *Grid) ClearSearch() {
	for _, row := range g.cells {
		for _, c := range row {
			switch c.state {
			case Open, Closed, Path:
				c.Reset()
			}
		}
	}
}

// CountState counts cells holding the given state
func (g *Grid) CountState(state CellState) int {
	count := 0
	for _, row := range g.cells {
		for _, c := range row {
			if c.state == state {
				count++
			}
		}
	}
	return count
}

// Layout renders every row as a string of state glyphs
func (g *Grid) Layout() []string {
	layout := make([]string, g.rows)
	var b strings.Builder
	for i, row := range g.cells {
		b.Reset()
		b.Grow(g.rows)
		for _, c := range row {
			b.WriteByte(c.state.Glyph())
		}
		layout[i] = b.String()
	}
	return layout
}

// String renders the layout one row per line
func (g *Grid) String() string {
	return strings.Join(g.Layout(), "\n")
}

// ManhattanDistance is the 4-directional heuristic |r1-r2| + |c1-c2|
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}
