package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"cine-reservas-cli/model"
	"cine-reservas-cli/service"
)

var rowConfigAutoMerge = table.RowConfig{AutoMerge: true}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	return t
}

func renderFunctions(out io.Writer, functions []model.Function, titles map[string]string) {
	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Movie", "Room", "Time", "Free", "Seats"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 30},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	for _, fn := range functions {
		free := fmt.Sprint(fn.FreeCount())
		if fn.SoldOut() {
			free = "sold out"
		}
		t.AppendRow(table.Row{fn.ID, movieLabel(fn.MovieID, titles), fn.Room, fn.Time, free, len(fn.Seats)})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", totalFree(functions), ""})
	t.Render()
}

func renderReservations(out io.Writer, functionIDs []string, grouped map[string][]model.Reservation) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Function", "Reservation", "Customer", "Seats", "Tickets"}, rowConfigAutoMerge)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 4, WidthMax: 40},
	})
	t.Style().Options.SeparateRows = true
	for _, id := range functionIDs {
		var rows []table.Row
		for _, r := range grouped[id] {
			rows = append(rows, table.Row{id, r.ID, r.CustomerName, strings.Join(r.Seats, ", "), r.TicketCount})
		}
		t.AppendRows(rows, rowConfigAutoMerge)
	}
	t.Render()
}

func renderMovies(out io.Writer, movies []model.Movie) {
	t := newTable(out)
	t.AppendHeader(table.Row{"ID", "Title", "Genre", "Duration"})
	for _, m := range movies {
		t.AppendRow(table.Row{m.ID, m.Title, m.Genre, m.Duration})
	}
	t.Render()
}

func renderBooking(out io.Writer, result service.Result) {
	fmt.Fprintf(out, "Reservation %d confirmed for %s: %s (%d ticket(s)).\n",
		result.Reservation.ID, result.Reservation.CustomerName,
		strings.Join(result.Booked, ", "), len(result.Booked))
	if result.Partial() {
		fmt.Fprintf(out, "Only %d of %d requested seats were booked.\n", len(result.Booked), result.Requested)
	}
	renderRejections(out, result.Rejected)
}

func renderRejections(out io.Writer, rejected []service.SeatRejection) {
	for _, r := range rejected {
		fmt.Fprintf(out, "  skipped %s\n", r)
	}
}

func movieLabel(id string, titles map[string]string) string {
	if title := titles[id]; title != "" {
		return fmt.Sprintf("%s (%s)", title, id)
	}
	return id
}

func totalFree(functions []model.Function) int {
	total := 0
	for _, fn := range functions {
		total += fn.FreeCount()
	}
	return total
}
