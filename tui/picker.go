package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cine-reservas-cli/model"
	"cine-reservas-cli/seatmap"
	"cine-reservas-cli/service"
)

// ErrCancelled is returned when the customer leaves the picker without confirming.
var ErrCancelled = errors.New("seat selection cancelled")

// SeatPicker asks for seats on an interactive seat map.
type SeatPicker struct {
	// Title is shown above the map, e.g. the movie name.
	Title string
}

var _ service.SeatSelector = (*SeatPicker)(nil)

func NewSeatPicker(title string) *SeatPicker {
	return &SeatPicker{Title: title}
}

// SelectSeats runs the picker until the customer confirms or cancels.
func (p *SeatPicker) SelectSeats(ctx context.Context, fn model.Function) ([]string, error) {
	program := tea.NewProgram(newPicker(fn, p.Title), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	m, ok := final.(pickerModel)
	if !ok || !m.confirmed {
		return nil, ErrCancelled
	}
	return m.Selection(), nil
}

type pickerModel struct {
	fn         model.Function
	title      string
	grid       seatmap.Grid
	row, col   int
	selected   map[string]bool
	order      []string
	showLabels bool
	status     string
	keys       keyMap
	help       help.Model
	confirmed  bool
	cancelled  bool
}

func newPicker(fn model.Function, title string) pickerModel {
	m := pickerModel{
		fn:       fn,
		title:    title,
		grid:     seatmap.Layout(fn.Seats),
		selected: map[string]bool{},
		keys:     defaultKeys(),
		help:     help.New(),
	}
	m.row, m.col = m.firstFreeCell()
	return m
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m pickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Confirm):
		if len(m.order) == 0 {
			m.status = "Select at least one seat, or press esc to cancel."
			return m, nil
		}
		m.confirmed = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.move(1, 0)
	case key.Matches(msg, m.keys.Left):
		m.move(0, -1)
	case key.Matches(msg, m.keys.Right):
		m.move(0, 1)
	case key.Matches(msg, m.keys.Toggle):
		m.toggle()
	case key.Matches(msg, m.keys.Numbers):
		m.showLabels = !m.showLabels
	}
	return m, nil
}

// move steps in one direction, skipping holes in a partial last row.
func (m *pickerModel) move(dr, dc int) {
	r, c := m.row+dr, m.col+dc
	for r >= 0 && r < m.grid.Rows && c >= 0 && c < m.grid.Cols {
		if m.grid.At(r, c) != "" {
			m.row, m.col = r, c
			return
		}
		r, c = r+dr, c+dc
	}
}

func (m *pickerModel) toggle() {
	label := m.grid.At(m.row, m.col)
	if label == "" {
		return
	}
	if m.selected[label] {
		delete(m.selected, label)
		for i, l := range m.order {
			if l == label {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
		return
	}
	if !m.fn.Seats.IsFree(label) {
		m.status = fmt.Sprintf("%s is occupied.", label)
		return
	}
	m.selected[label] = true
	m.order = append(m.order, label)
}

// Selection returns the chosen labels in the order they were picked.
func (m pickerModel) Selection() []string {
	return append([]string(nil), m.order...)
}

func (m pickerModel) firstFreeCell() (int, int) {
	for r := 0; r < m.grid.Rows; r++ {
		for c := 0; c < m.grid.Cols; c++ {
			if m.fn.Seats.IsFree(m.grid.At(r, c)) {
				return r, c
			}
		}
	}
	return 0, 0
}

func (m pickerModel) View() string {
	if m.confirmed || m.cancelled {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")
	b.WriteString(renderSeatMap(m.grid, m.fn.Seats, m.selected, m.row, m.col, m.showLabels))
	b.WriteString("\n\n")

	selection := "Selected: none"
	if len(m.order) > 0 {
		selection = fmt.Sprintf("Selected (%d): %s", len(m.order), strings.Join(m.order, ", "))
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(selection))
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.status))
	}
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m pickerModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("Seat selection")
	if m.title != "" {
		title += " " + lipgloss.NewStyle().Bold(true).Render("· "+m.title)
	}
	meta := fmt.Sprintf("Function %s • Room %s • %s • %d/%d free", m.fn.ID, m.fn.Room, m.fn.Time, m.fn.FreeCount(), len(m.fn.Seats))
	return title + "\n" + hint(meta)
}
