package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"

	"cine-reservas-cli/model"
)

func newReservationsCmd(get func() *app) *cobra.Command {
	var functionID string
	reservations := &cobra.Command{
		Use:     "reservations",
		Aliases: []string{"reservas"},
		Short:   "List reservations grouped by function",
		RunE: func(c *cobra.Command, args []string) error {
			a := get()
			grouped, err := a.ledger.ByFunction()
			if err != nil {
				return err
			}
			if functionID != "" {
				grouped = map[string][]model.Reservation{functionID: grouped[functionID]}
			}

			ids := maps.Keys(grouped)
			sortFunctionIDs(ids)
			total := 0
			for _, id := range ids {
				total += len(grouped[id])
			}
			if total == 0 {
				fmt.Fprintln(c.OutOrStdout(), "No reservations yet.")
				return nil
			}
			renderReservations(c.OutOrStdout(), ids, grouped)
			return nil
		},
	}
	reservations.Flags().StringVarP(&functionID, "function", "f", "", "only show this function")
	return reservations
}

// sortFunctionIDs orders numeric ids by value and puts them before other ids.
func sortFunctionIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
