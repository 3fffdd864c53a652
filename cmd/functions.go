package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cine-reservas-cli/service"
	"cine-reservas-cli/validate"
)

func newFunctionsCmd(get func() *app) *cobra.Command {
	functions := &cobra.Command{
		Use:     "functions",
		Aliases: []string{"funciones"},
		Short:   "List, schedule and edit functions",
	}
	functions.AddCommand(newFunctionsListCmd(get), newFunctionsCreateCmd(get), newFunctionsEditCmd(get))
	return functions
}

func newFunctionsListCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List functions with their free seats",
		RunE: func(c *cobra.Command, args []string) error {
			a := get()
			functions, err := a.schedule.List()
			if err != nil {
				return err
			}
			if len(functions) == 0 {
				fmt.Fprintln(c.OutOrStdout(), "No functions scheduled.")
				return nil
			}
			renderFunctions(c.OutOrStdout(), functions, a.movieTitles())
			return nil
		},
	}
}

func newFunctionsCreateCmd(get func() *app) *cobra.Command {
	var in service.CreateFunctionInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Schedule a new function; missing values are prompted for",
		RunE: func(c *cobra.Command, args []string) error {
			a := get()
			var err error
			if in.MovieID == "" {
				if in.MovieID, err = promptText("Movie ID", func(v string) error {
					_, err := validate.Text(v, "Movie ID")
					return err
				}); err != nil {
					return err
				}
			}
			if in.Room == "" {
				if in.Room, err = promptText("Room", discard(validate.Room)); err != nil {
					return err
				}
			}
			if in.Time == "" {
				if in.Time, err = promptText("Time (HH:MM)", discard(validate.Time)); err != nil {
					return err
				}
			}
			if in.Seats == 0 {
				seatCount := func(v string) (int, error) { return validate.SeatCount(v, 1, a.cfg.MaxSeats) }
				value, err := promptText(fmt.Sprintf("Seats (1-%d)", a.cfg.MaxSeats), discard(seatCount))
				if err != nil {
					return err
				}
				if in.Seats, err = strconv.Atoi(value); err != nil {
					return err
				}
			}

			fn, err := a.schedule.Create(in)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Function %s created: room %s at %s with %d seats.\n", fn.ID, fn.Room, fn.Time, fn.Capacity)
			return nil
		},
	}
	create.Flags().StringVar(&in.MovieID, "movie", "", "movie id from the movie catalog")
	create.Flags().StringVar(&in.Room, "room", "", "room number")
	create.Flags().StringVar(&in.Time, "time", "", "start time, HH:MM")
	create.Flags().IntVar(&in.Seats, "seats", 0, "number of seats")
	return create
}

func newFunctionsEditCmd(get func() *app) *cobra.Command {
	var room, hora string
	edit := &cobra.Command{
		Use:   "edit <function-id>",
		Short: "Change the room or time of a function",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			a := get()
			current, err := a.schedule.Get(args[0])
			if err != nil {
				return err
			}
			if room == "" && hora == "" {
				keep := func(check func(string) error) func(string) error {
					return func(v string) error {
						if v == "" {
							return nil
						}
						return check(v)
					}
				}
				if room, err = promptText(fmt.Sprintf("Room [%s]", current.Room), keep(func(v string) error {
					_, err := validate.Text(v, "Room")
					return err
				})); err != nil {
					return err
				}
				if hora, err = promptText(fmt.Sprintf("Time [%s]", current.Time), keep(discard(validate.Time))); err != nil {
					return err
				}
			}

			fn, err := a.schedule.Edit(current.ID, room, hora)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "Function %s updated: room %s at %s.\n", fn.ID, fn.Room, fn.Time)
			return nil
		},
	}
	edit.Flags().StringVar(&room, "room", "", "new room")
	edit.Flags().StringVar(&hora, "time", "", "new start time, HH:MM")
	return edit
}
