package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cine-reservas-cli/service"
	"cine-reservas-cli/tui"
	"cine-reservas-cli/validate"
)

func newReserveCmd(get func() *app) *cobra.Command {
	var (
		functionID string
		customer   string
		seats      []string
	)
	reserve := &cobra.Command{
		Use:     "reserve",
		Aliases: []string{"reservar"},
		Short:   "Book seats for a function",
		Long: `Book seats for a function. Without --seats an interactive seat map opens.
Seats that do not exist or are already taken are skipped; the rest are booked.`,
		RunE: func(c *cobra.Command, args []string) error {
			a := get()
			out := c.OutOrStdout()
			titles := a.movieTitles()

			var err error
			if functionID == "" {
				functions, err := a.schedule.List()
				if err != nil {
					return err
				}
				if functionID, err = promptSelectFunction(functions, titles); err != nil {
					return err
				}
			}
			if customer == "" {
				if customer, err = promptText("Customer name", discard(validate.CustomerName)); err != nil {
					return err
				}
			}

			var selector service.SeatSelector = service.SeatList(splitSeats(seats))
			if len(seats) == 0 {
				fn, err := a.schedule.Get(functionID)
				if err != nil {
					return err
				}
				selector = tui.NewSeatPicker(movieLabel(fn.MovieID, titles))
			}

			result, err := a.engine.Book(c.Context(), customer, functionID, selector)
			switch {
			case errors.Is(err, tui.ErrCancelled):
				fmt.Fprintln(out, "Reservation cancelled.")
				return nil
			case errors.Is(err, service.ErrNoValidSeats):
				renderRejections(out, result.Rejected)
				return err
			case err != nil:
				return err
			}
			renderBooking(out, result)
			return nil
		},
	}
	reserve.Flags().StringVarP(&functionID, "function", "f", "", "function id")
	reserve.Flags().StringVarP(&customer, "name", "n", "", "customer name")
	reserve.Flags().StringSliceVarP(&seats, "seats", "s", nil, "seat labels, e.g. A1,B1 (skips the seat map)")
	return reserve
}

// splitSeats accepts "A1,B1", "A1 B1" or repeated flags.
func splitSeats(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Fields(v)...)
	}
	return out
}
