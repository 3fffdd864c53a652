package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"cine-reservas-cli/model"
	"cine-reservas-cli/seatmap"
)

var (
	seatStyleFree     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	seatStyleOccupied = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	seatStyleSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	seatStyleCursor   = lipgloss.NewStyle().Reverse(true)
)

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func seatToken(state model.SeatState, selected bool) string {
	switch {
	case selected:
		return "<>"
	case state == model.SeatFree:
		return "[]"
	default:
		return "XX"
	}
}

// renderSeatMap draws the grid with the screen on top, row numbers on both
// sides and column letters above the seats.
func renderSeatMap(grid seatmap.Grid, seats model.SeatMap, selected map[string]bool, cursorRow, cursorCol int, showLabels bool) string {
	if grid.Rows == 0 || grid.Cols == 0 {
		return "No seat map data."
	}

	rowWidth := len(fmt.Sprint(grid.Rows))
	cellWidth := 2
	if showLabels {
		for r := 0; r < grid.Rows; r++ {
			for c := 0; c < grid.Cols; c++ {
				cellWidth = max(cellWidth, len(grid.At(r, c)))
			}
		}
	}
	gridWidth := grid.Cols*(cellWidth+1) - 1
	indent := strings.Repeat(" ", rowWidth+1)

	var b strings.Builder
	screenStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(lipgloss.Color("214"))
	screenBorderStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Background(lipgloss.Color("236"))
	screenBar := screenBarBlock(gridWidth, "SCREEN")
	b.WriteString(indent + screenBorderStyle.Render(screenBar.top) + "\n")
	b.WriteString(indent + screenStyle.Render(screenBar.mid) + "\n")
	b.WriteString(indent + screenBorderStyle.Render(screenBar.bot) + "\n\n")

	b.WriteString(indent)
	for c := 0; c < grid.Cols; c++ {
		b.WriteString(hint(padCell(seatmap.ColumnLabel(c), cellWidth)))
		if c < grid.Cols-1 {
			b.WriteString(" ")
		}
	}
	b.WriteString("\n")

	for r := 0; r < grid.Rows; r++ {
		label := fmt.Sprint(r + 1)
		b.WriteString(fmt.Sprintf("%*s ", rowWidth, label))
		for c := 0; c < grid.Cols; c++ {
			seat := grid.At(r, c)
			rendered := padCell("", cellWidth)
			if seat != "" {
				text := seatToken(seats[seat], selected[seat])
				if showLabels {
					text = seat
				}
				rendered = padCell(text, cellWidth)
				switch {
				case selected[seat]:
					rendered = seatStyleSelected.Render(rendered)
				case seats[seat] == model.SeatFree:
					rendered = seatStyleFree.Render(rendered)
				default:
					rendered = seatStyleOccupied.Render(rendered)
				}
				if r == cursorRow && c == cursorCol {
					rendered = seatStyleCursor.Render(rendered)
				}
			}
			b.WriteString(rendered)
			if c < grid.Cols-1 {
				b.WriteString(" ")
			}
		}
		b.WriteString(fmt.Sprintf(" %*s\n", rowWidth, label))
	}

	if len(grid.Unplaced) > 0 {
		b.WriteString("\n")
		b.WriteString(hint(fmt.Sprintf("Not on the grid (book with --seats): %s", strings.Join(grid.Unplaced, ", "))))
		b.WriteString("\n")
	}

	free := seats.Count(model.SeatFree)
	total := len(seats)
	percent := float64(free) / float64(max(1, total)) * 100
	legend := "Legend: [] free • XX occupied • <> selected"
	if showLabels {
		legend = "Legend: color shows status • labels shown"
	}
	counts := fmt.Sprintf("Free: %d • Pairs: %d • Occupied: %d • Total: %d • %.0f%% free",
		free, countAdjacentPairs(grid, seats), total-free, total, percent)
	return b.String() + "\n" + hint(legend) + "\n" + hint(counts)
}

// countAdjacentPairs counts disjoint pairs of free seats side by side in a row.
func countAdjacentPairs(grid seatmap.Grid, seats model.SeatMap) int {
	count := 0
	for r := 0; r < grid.Rows; r++ {
		for c := 0; c < grid.Cols-1; {
			if seats.IsFree(grid.At(r, c)) && seats.IsFree(grid.At(r, c+1)) {
				count++
				c += 2
				continue
			}
			c++
		}
	}
	return count
}

func padCell(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if text == "" {
		return strings.Repeat(" ", width)
	}
	if len(text) >= width {
		return text[:width]
	}
	padding := width - len(text)
	left := padding / 2
	right := padding - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

type screenBlock struct {
	top string
	mid string
	bot string
}

func screenBarBlock(width int, label string) screenBlock {
	if width < len(label)+4 {
		width = len(label) + 4
	}
	if width < 10 {
		width = 10
	}

	border := "╭" + strings.Repeat("─", width-2) + "╮"
	bottom := "╰" + strings.Repeat("─", width-2) + "╯"

	labelText := " " + label + " "
	padding := width - len(labelText) - 2
	left := padding / 2
	right := padding - left
	mid := "│" + strings.Repeat(" ", left) + labelText + strings.Repeat(" ", right) + "│"
	return screenBlock{top: border, mid: mid, bot: bottom}
}
