package seatmap

import (
	"sort"
	"strconv"
	"strings"

	"cine-reservas-cli/model"
)

// Position is where a label sits in the grid, zero-based.
type Position struct {
	Row int
	Col int
}

// Labels longer than this never come out of Generate for any practical seat
// count; rejecting them keeps column and row arithmetic bounded.
const (
	maxColumnLetters = 3
	maxRowDigits     = 6
)

// ParseLabel splits a label such as "AB12" into its grid position.
func ParseLabel(label string) (Position, bool) {
	split := 0
	for split < len(label) && label[split] >= 'A' && label[split] <= 'Z' {
		split++
	}
	if split == 0 || split == len(label) || split > maxColumnLetters {
		return Position{}, false
	}
	digits := label[split:]
	if len(digits) > maxRowDigits || digits[0] == '0' || strings.IndexFunc(digits, notDigit) >= 0 {
		return Position{}, false
	}
	row, err := strconv.Atoi(digits)
	if err != nil {
		return Position{}, false
	}
	col := ColumnIndex(label[:split])
	if col < 0 {
		return Position{}, false
	}
	return Position{Row: row - 1, Col: col}, true
}

func notDigit(r rune) bool {
	return r < '0' || r > '9'
}

// Grid is the rectangular view of a seat map. Cells without a seat hold "".
type Grid struct {
	Rows     int
	Cols     int
	Cells    [][]string
	Unplaced []string
}

func (g Grid) At(row, col int) string {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return ""
	}
	return g.Cells[row][col]
}

// Layout arranges the seats of m by parsing their labels. Labels that do not
// parse, or that sit outside a len(m) x len(m) square, are returned sorted in
// Unplaced.
func Layout(m model.SeatMap) Grid {
	var grid Grid
	positions := make(map[string]Position, len(m))
	for label := range m {
		pos, ok := ParseLabel(label)
		if !ok || pos.Row >= len(m) || pos.Col >= len(m) {
			grid.Unplaced = append(grid.Unplaced, label)
			continue
		}
		positions[label] = pos
		grid.Rows = max(grid.Rows, pos.Row+1)
		grid.Cols = max(grid.Cols, pos.Col+1)
	}
	sort.Strings(grid.Unplaced)

	grid.Cells = make([][]string, grid.Rows)
	for i := range grid.Cells {
		grid.Cells[i] = make([]string, grid.Cols)
	}
	for label, pos := range positions {
		grid.Cells[pos.Row][pos.Col] = label
	}
	return grid
}

// Ordered returns the labels of m row by row, left to right, which is the
// order Generate created them in. Unparseable labels come last.
func Ordered(m model.SeatMap) []string {
	grid := Layout(m)
	out := make([]string, 0, len(m))
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols; c++ {
			if label := grid.Cells[r][c]; label != "" {
				out = append(out, label)
			}
		}
	}
	return append(out, grid.Unplaced...)
}
