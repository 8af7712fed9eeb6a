package render

// gridUnits is the width of one grid row
const gridUnits = 12

// Row is one row of a grid layout
type Row[T any] struct {
	Cells []T
}

// Chunk lays items out in rows of cols cells. The last row may be short.
// cols below 1 is treated as 1.
func Chunk[T any](items []T, cols int) []Row[T] {
	if cols < 1 {
		cols = 1
	}
	var rows []Row[T]
	for start := 0; start < len(items); start += cols {
		end := min(start+cols, len(items))
		rows = append(rows, Row[T]{Cells: items[start:end]})
	}
	return rows
}

// CellWidth returns how many of the row's 12 units one of cols cells spans
func CellWidth(cols int) int {
	if cols < 1 {
		cols = 1
	}
	return max(gridUnits/cols, 1)
}
